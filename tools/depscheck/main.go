package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
)

type packageInfo struct {
	ImportPath string
	Imports    []string
}

// rule forbids packages under From from importing anything under a
// Forbidden prefix.
type rule struct {
	From      string
	Forbidden []string
}

const modulePath = "salvo/server"

// The simulation core stays free of transport and process wiring.
var rules = []rule{
	{
		From: modulePath + "/internal/",
		Forbidden: []string{
			modulePath + "/internal/app",
			modulePath + "/cmd/",
		},
	},
	{
		From: modulePath + "/internal/sim",
		Forbidden: []string{
			modulePath + "/internal/net",
			"github.com/gorilla/websocket",
			"github.com/vmihailenco/msgpack",
		},
	},
	{
		From: modulePath + "/internal/combat",
		Forbidden: []string{
			modulePath + "/internal/sim",
			modulePath + "/internal/net",
		},
	},
	{
		From: modulePath + "/internal/archetype",
		Forbidden: []string{
			modulePath + "/internal/sim",
			modulePath + "/internal/combat",
			modulePath + "/internal/world",
		},
	},
}

func main() {
	cmd := exec.Command("go", "list", "-json", "./...")
	cmd.Env = os.Environ()
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			os.Stderr.Write(exitErr.Stderr)
		}
		fmt.Fprintf(os.Stderr, "depscheck: failed to list packages: %v\n", err)
		os.Exit(1)
	}

	pkgs, err := decodePackages(bytes.NewReader(output))
	if err != nil {
		fmt.Fprintf(os.Stderr, "depscheck: failed to decode package info: %v\n", err)
		os.Exit(1)
	}

	if found := violations(pkgs, rules); len(found) > 0 {
		fmt.Fprintln(os.Stderr, "depscheck: found forbidden imports:")
		for _, violation := range found {
			fmt.Fprintf(os.Stderr, "  %s\n", violation)
		}
		os.Exit(1)
	}
}

func decodePackages(r io.Reader) ([]packageInfo, error) {
	decoder := json.NewDecoder(r)
	var pkgs []packageInfo
	for {
		var pkg packageInfo
		if err := decoder.Decode(&pkg); err != nil {
			if errors.Is(err, io.EOF) {
				return pkgs, nil
			}
			return nil, err
		}
		pkgs = append(pkgs, pkg)
	}
}

func violations(pkgs []packageInfo, rules []rule) []string {
	var out []string
	for _, pkg := range pkgs {
		for _, r := range rules {
			if !strings.HasPrefix(pkg.ImportPath, r.From) {
				continue
			}
			for _, imp := range pkg.Imports {
				for _, forbidden := range r.Forbidden {
					if strings.HasPrefix(imp, forbidden) {
						out = append(out, fmt.Sprintf("%s -> %s", pkg.ImportPath, imp))
					}
				}
			}
		}
	}
	sort.Strings(out)
	return out
}
