// Profiling:
// go build ./cmd/profile
// ./profile -mode=mem
// go tool pprof -http=":8000" -nodefraction=0.001 ./profile mem.pprof

package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/pkg/profile"

	"salvo/server/internal/app"
	"salvo/server/internal/archetype"
	"salvo/server/internal/sim"
	"salvo/server/internal/vecmath"
	"salvo/server/internal/world"
)

func main() {
	var (
		mode     string
		catalog  string
		steps    int
		perStep  int
		parallel bool
		lifetime float64
		tickRate int
	)
	flag.StringVar(&mode, "mode", "cpu", "profile kind: cpu or mem")
	flag.StringVar(&catalog, "catalog", "", "weapon catalog path (defaults to config/weapons/definitions.json)")
	flag.IntVar(&steps, "steps", 3000, "simulation steps to run")
	flag.IntVar(&perStep, "spawn", 40, "projectiles fired per weapon per step")
	flag.BoolVar(&parallel, "parallel", false, "step archetype lanes concurrently")
	flag.Float64Var(&lifetime, "lifetime", 2, "projectile lifetime in seconds")
	flag.IntVar(&tickRate, "tick-rate", 60, "fixed steps per simulated second")
	flag.Parse()

	paths := archetype.DefaultPaths()
	if catalog != "" {
		paths = []string{catalog}
	}
	defs, err := archetype.LoadCatalog(paths...)
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}

	simulation := sim.New(app.Collaborators(app.DemoArena(), world.NewRecorder()), sim.Config{Parallel: parallel}, sim.Deps{Seed: 1})
	weapons, err := app.CompileCatalog(simulation, defs, nil)
	if err != nil {
		log.Fatalf("compile catalog: %v", err)
	}
	if len(weapons) == 0 {
		log.Fatalf("catalog %v has no weapons", paths)
	}

	var p interface{ Stop() }
	switch mode {
	case "mem":
		p = profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	default:
		p = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	}
	start := time.Now()
	report := run(simulation, weapons, steps, perStep, lifetime, 1/float64(tickRate))
	elapsed := time.Since(start)
	p.Stop()

	fmt.Printf("%d steps in %s (%.1fµs/step), %d hits, %d active at end\n",
		steps, elapsed, float64(elapsed.Microseconds())/float64(steps), report.Hits, report.Active)
}

func run(simulation *sim.Simulation, weapons []string, steps, perStep int, lifetime, dt float64) sim.StepReport {
	var total sim.StepReport
	for step := 0; step < steps; step++ {
		for w, weapon := range weapons {
			for _, id := range simulation.ArchetypesFor(weapon) {
				for i := 0; i < perStep; i++ {
					angle := float64((step*perStep+i)%360) * 0.0174533
					velocity := vecmath.Vec3{X: 30, Y: float64(w%3) - 1, Z: 10 * math.Sin(angle)}
					simulation.Spawn(id, vecmath.Vec3{Y: 1}, velocity, 25, lifetime)
				}
			}
		}
		report := simulation.Step(dt)
		total.Hits += report.Hits
		total.Active = report.Active
	}
	return total
}
