package app

import (
	"strconv"
	"strings"

	"salvo/server/internal/archetype"
	"salvo/server/internal/observability"
	"salvo/server/internal/telemetry"
	"salvo/server/logging"
)

const (
	defaultAddr     = ":8080"
	defaultTickRate = 60
	defaultSeed     = 1
)

// Config carries process level settings. Zero values select defaults.
type Config struct {
	Logger telemetry.Logger

	Addr         string
	TickRate     int
	Seed         int64
	CatalogPaths []string
	Parallel     bool

	LogSinks    []string
	LogJSONPath string

	Observability observability.Config

	// Reload triggers a catalog reload and recompilation on every receive.
	Reload <-chan struct{}
}

// DefaultConfig returns the settings used when no overrides are present.
func DefaultConfig() Config {
	return Config{
		Addr:         defaultAddr,
		TickRate:     defaultTickRate,
		Seed:         defaultSeed,
		CatalogPaths: archetype.DefaultPaths(),
		LogSinks:     logging.DefaultConfig().EnabledSinks,
		LogJSONPath:  logging.DefaultConfig().JSON.FilePath,
	}
}

func (c Config) normalized() Config {
	defaults := DefaultConfig()
	if c.Logger == nil {
		c.Logger = telemetry.NopLogger()
	}
	if strings.TrimSpace(c.Addr) == "" {
		c.Addr = defaults.Addr
	}
	if c.TickRate <= 0 {
		c.TickRate = defaults.TickRate
	}
	if len(c.CatalogPaths) == 0 {
		c.CatalogPaths = defaults.CatalogPaths
	}
	if len(c.LogSinks) == 0 {
		c.LogSinks = defaults.LogSinks
	}
	if c.LogJSONPath == "" {
		c.LogJSONPath = defaults.LogJSONPath
	}
	return c
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overlays SALVO_* environment overrides onto cfg. Invalid values
// are logged and ignored.
func ApplyEnv(cfg Config, lookup LookupFunc, logger telemetry.Logger) Config {
	if lookup == nil {
		return cfg
	}
	if logger == nil {
		logger = telemetry.NopLogger()
	}

	if raw, ok := lookup("SALVO_ADDR"); ok && strings.TrimSpace(raw) != "" {
		cfg.Addr = strings.TrimSpace(raw)
	}
	if raw, ok := lookup("SALVO_TICK_RATE"); ok && raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.TickRate = value
		} else {
			logger.Printf("invalid SALVO_TICK_RATE=%q: must be a positive integer", raw)
		}
	}
	if raw, ok := lookup("SALVO_SEED"); ok && raw != "" {
		if value, err := strconv.ParseInt(raw, 10, 64); err == nil {
			cfg.Seed = value
		} else {
			logger.Printf("invalid SALVO_SEED=%q: %v", raw, err)
		}
	}
	if raw, ok := lookup("SALVO_CATALOG"); ok && raw != "" {
		if paths := logging.ParseSinks(raw); len(paths) > 0 {
			cfg.CatalogPaths = paths
		}
	}
	if raw, ok := lookup("SALVO_PARALLEL"); ok && raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.Parallel = value
		} else {
			logger.Printf("invalid SALVO_PARALLEL=%q: %v", raw, err)
		}
	}
	if raw, ok := lookup("SALVO_LOG_SINKS"); ok && raw != "" {
		cfg.LogSinks = logging.ParseSinks(raw)
	}
	if raw, ok := lookup("SALVO_LOG_JSON_PATH"); ok && raw != "" {
		cfg.LogJSONPath = raw
	}
	if raw, ok := lookup("SALVO_PPROF"); ok && raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.Observability.EnablePprof = value
		} else {
			logger.Printf("invalid SALVO_PPROF=%q: %v", raw, err)
		}
	}
	return cfg
}
