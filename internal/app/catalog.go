package app

import (
	"context"
	"fmt"

	"salvo/server/internal/archetype"
	"salvo/server/internal/sim"
	"salvo/server/internal/telemetry"
	"salvo/server/logging"
	logginglifecycle "salvo/server/logging/lifecycle"
)

// Compiler is the slice of the simulation that owns archetypes.
type Compiler interface {
	CompileArchetype(weaponID string, physics archetype.Physics, providers []any) (archetype.ID, []archetype.Warning)
	Recompile(id archetype.ID, weaponID string, physics archetype.Physics, providers []any) ([]archetype.Warning, error)
	ArchetypesFor(weaponID string) []archetype.ID
	Tick() uint64
}

var _ Compiler = (*sim.Simulation)(nil)

// CompileCatalog compiles every weapon in catalog. Weapons that already have
// an archetype are recompiled in place so live projectiles keep their ids.
func CompileCatalog(compiler Compiler, catalog *archetype.Catalog, logger telemetry.Logger) ([]string, error) {
	if compiler == nil || catalog == nil {
		return nil, nil
	}
	if logger == nil {
		logger = telemetry.NopLogger()
	}
	ids := catalog.IDs()
	for _, weaponID := range ids {
		def, _ := catalog.Weapon(weaponID)
		existing := compiler.ArchetypesFor(weaponID)
		if len(existing) == 0 {
			id, warnings := compiler.CompileArchetype(weaponID, def.Physics, def.Providers())
			logger.Printf("compiled weapon %s as archetype %d (%d warnings)", weaponID, id, len(warnings))
			continue
		}
		warnings, err := compiler.Recompile(existing[0], weaponID, def.Physics, def.Providers())
		if err != nil {
			return ids, fmt.Errorf("app: recompile %s: %w", weaponID, err)
		}
		logger.Printf("recompiled weapon %s (archetype %d, %d warnings)", weaponID, existing[0], len(warnings))
	}
	return ids, nil
}

// ReloadCatalog re-reads the catalog sources and recompiles. The outcome is
// published either way; a failed read leaves the previous archetypes intact.
func ReloadCatalog(ctx context.Context, compiler Compiler, catalog *archetype.Catalog, pub logging.Publisher, logger telemetry.Logger) error {
	if logger == nil {
		logger = telemetry.NopLogger()
	}
	tick := compiler.Tick()
	if err := catalog.Reload(); err != nil {
		logger.Printf("catalog reload failed: %v", err)
		logginglifecycle.CatalogReloaded(ctx, pub, tick, logginglifecycle.CatalogReloadedPayload{Error: err.Error()}, nil)
		return err
	}
	weapons, err := CompileCatalog(compiler, catalog, logger)
	payload := logginglifecycle.CatalogReloadedPayload{Weapons: weapons}
	if err != nil {
		payload.Error = err.Error()
	}
	logginglifecycle.CatalogReloaded(ctx, pub, tick, payload, nil)
	return err
}
