package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"salvo/server/internal/archetype"
	"salvo/server/internal/combat"
	"salvo/server/internal/projectile"
	"salvo/server/internal/telemetry"
	"salvo/server/internal/vecmath"
	"salvo/server/internal/world"
	"salvo/server/logging"
	loggingprojectiles "salvo/server/logging/projectiles"
	loggingsimulation "salvo/server/logging/simulation"
)

var (
	// ErrUnknownEntity is returned for projectile ids not in any pool.
	ErrUnknownEntity = errors.New("unknown projectile")
	// ErrInvalidSpawn is returned when spawn parameters are not finite.
	ErrInvalidSpawn = errors.New("invalid spawn parameters")
)

const defaultPoolCapacity = 256

// Config tunes the simulation. Zero values select defaults.
type Config struct {
	// Parallel steps archetype lanes concurrently. Collaborator calls are
	// serialized either way.
	Parallel bool
	// PoolCapacity preallocates each lane's pool.
	PoolCapacity int
	// MaxLanes bounds the errgroup when Parallel is set. Zero means one
	// goroutine per lane.
	MaxLanes int
}

func (c Config) normalized() Config {
	if c.PoolCapacity <= 0 {
		c.PoolCapacity = defaultPoolCapacity
	}
	if c.MaxLanes < 0 {
		c.MaxLanes = 0
	}
	return c
}

// lane is one archetype's pool, random stream and pipeline environment.
type lane struct {
	id        archetype.ID
	pool      *projectile.Pool
	env       *combat.Env
	publisher logging.Publisher
}

// StepReport summarizes one call to Step.
type StepReport struct {
	Tick      uint64
	Active    int
	Spawned   int
	Expired   int
	Destroyed int
	Hits      int
}

// Simulation owns the archetype table and every projectile. All exported
// methods are safe for concurrent use; they serialize with Step.
type Simulation struct {
	mu    sync.Mutex
	cfg   Config
	deps  Deps
	world world.Collaborators
	table *archetype.Table
	lanes []*lane
	// reports is indexed like lanes and reused by every Step.
	reports []StepReport

	nextEntity projectile.EntityID
	tick       atomic.Uint64
	now        float64
	spawned    int
}

// New constructs a simulation around the given collaborators.
func New(collaborators world.Collaborators, cfg Config, deps Deps) *Simulation {
	cfg = cfg.normalized()
	deps = deps.normalized()
	shared := collaborators.Normalized()
	if cfg.Parallel {
		shared = serialize(shared)
	}
	return &Simulation{
		cfg:     cfg,
		deps:    deps,
		world:   shared,
		table:   archetype.NewTable(),
		lanes:   []*lane{nil},
		reports: make([]StepReport, 1),
	}
}

// Deps returns the normalized dependencies.
func (s *Simulation) Deps() Deps {
	if s == nil {
		return Deps{}
	}
	return s.deps
}

// Tick returns the number of completed steps.
func (s *Simulation) Tick() uint64 {
	if s == nil {
		return 0
	}
	return s.tick.Load()
}

// CompileArchetype compiles providers into a new archetype and registers it.
// Warnings are logged and published; they never fail compilation.
func (s *Simulation) CompileArchetype(weaponID string, physics archetype.Physics, providers []any) (archetype.ID, []archetype.Warning) {
	result := archetype.Compile(weaponID, physics, providers)

	s.mu.Lock()
	id := s.table.Register(result.Archetype)
	s.lanes = append(s.lanes, s.newLane(id))
	s.reports = append(s.reports, StepReport{})
	s.mu.Unlock()

	s.reportCompiled(id, result, false)
	return id, result.Warnings
}

// Recompile swaps the archetype stored under id. In-flight projectiles keep
// their counters and pick up the new pipelines on the next step.
func (s *Simulation) Recompile(id archetype.ID, weaponID string, physics archetype.Physics, providers []any) ([]archetype.Warning, error) {
	result := archetype.Compile(weaponID, physics, providers)

	s.mu.Lock()
	err := s.table.Replace(id, result.Archetype)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("sim: recompile %q: %w", weaponID, err)
	}

	s.reportCompiled(id, result, true)
	return result.Warnings, nil
}

// ArchetypesFor returns the ids compiled for weaponID in registration order.
func (s *Simulation) ArchetypesFor(weaponID string) []archetype.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.ByWeapon(weaponID)
}

// Archetype returns a copy of the compiled archetype stored under id.
func (s *Simulation) Archetype(id archetype.ID) (archetype.Archetype, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	arch, ok := s.table.Get(id)
	if !ok {
		return archetype.Archetype{}, fmt.Errorf("sim: archetype %d: %w", id, archetype.ErrUnknownArchetype)
	}
	return *arch, nil
}

func (s *Simulation) reportCompiled(id archetype.ID, result archetype.CompileResult, replaced bool) {
	payload := loggingsimulation.ArchetypeCompiledPayload{
		Weapon:    result.Archetype.WeaponID,
		PreSteps:  len(result.Archetype.PreSteps),
		PostSteps: len(result.Archetype.PostSteps),
		Replaced:  replaced,
	}
	for _, op := range result.Archetype.Collision {
		payload.Collision = append(payload.Collision, op.Kind.String())
	}
	for _, w := range result.Warnings {
		payload.Warnings = append(payload.Warnings, w.String())
		s.deps.Logger.Printf("[archetype] %s (id %d): %s", result.Archetype.WeaponID, id, w)
	}
	loggingsimulation.ArchetypeCompiled(context.Background(), s.deps.Publisher, s.Tick(), logging.ArchetypeRef(uint32(id)), payload, nil)
}

func (s *Simulation) newLane(id archetype.ID) *lane {
	rng := rand.New(rand.NewSource(s.deps.Seed + int64(id)))
	hooks := combat.NewHooks(combat.HooksConfig{
		Publisher:   s.deps.Publisher,
		Metrics:     s.deps.Metrics,
		Logger:      s.deps.Logger,
		Archetype:   uint32(id),
		CurrentTick: s.Tick,
	})
	return &lane{
		id:        id,
		pool:      projectile.NewPool(s.cfg.PoolCapacity),
		env:       combat.NewEnv(s.world, rng, hooks),
		publisher: s.deps.Publisher,
	}
}

// Spawn adds a projectile of archetype id. Aim-assist may re-aim velocity.
func (s *Simulation) Spawn(id archetype.ID, origin, velocity vecmath.Vec3, damage, lifetime float64) (projectile.EntityID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spawnLocked(id, origin, velocity, damage, lifetime)
}

func (s *Simulation) spawnLocked(id archetype.ID, origin, velocity vecmath.Vec3, damage, lifetime float64) (projectile.EntityID, error) {
	arch, ok := s.table.Get(id)
	if !ok {
		err := fmt.Errorf("sim: spawn archetype %d: %w", id, archetype.ErrUnknownArchetype)
		s.rejectSpawn(id, err)
		return 0, err
	}
	if !origin.IsFinite() || !velocity.IsFinite() || math.IsNaN(damage) || math.IsNaN(lifetime) {
		err := fmt.Errorf("sim: spawn archetype %d: %w", id, ErrInvalidSpawn)
		s.rejectSpawn(id, err)
		return 0, err
	}
	if damage < 0 {
		damage = 0
	}

	l := s.lanes[id]
	l.env.Now, l.env.Tick = s.now, s.Tick()
	aimed := combat.AimAssist(l.env, arch, origin, velocity)

	s.nextEntity++
	entity := l.pool.Spawn(projectile.Entity{
		ID:           s.nextEntity,
		Archetype:    id,
		Position:     origin,
		PrevPosition: origin,
		Velocity:     aimed,
		Damage:       damage,
		Life:         lifetime,
		InitialSpeed: aimed.Len(),
	})
	s.spawned++
	s.deps.Metrics.Add(telemetry.MetricSpawned, 1)
	loggingprojectiles.Spawned(context.Background(), s.deps.Publisher, s.Tick(), logging.ProjectileRef(uint64(entity.ID)), loggingprojectiles.SpawnedPayload{
		Archetype: uint32(id),
		Origin:    origin.Array(),
		Velocity:  aimed.Array(),
		Damage:    damage,
		Lifetime:  lifetime,
		Assisted:  aimed != velocity,
	}, nil)
	return entity.ID, nil
}

func (s *Simulation) rejectSpawn(id archetype.ID, err error) {
	s.deps.Metrics.Add(telemetry.MetricSpawnRejected, 1)
	s.deps.Logger.Printf("[sim] %v", err)
	loggingprojectiles.SpawnRejected(context.Background(), s.deps.Publisher, s.Tick(), loggingprojectiles.SpawnRejectedPayload{
		Archetype: uint32(id),
		Reason:    err.Error(),
	}, nil)
}

// NotifyReload clears reload-sensitive metronome streaks on every archetype
// compiled for weaponID and returns how many were cleared.
func (s *Simulation) NotifyReload(weaponID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reloadLocked(weaponID)
}

func (s *Simulation) reloadLocked(weaponID string) int {
	cleared := 0
	for _, id := range s.table.ByWeapon(weaponID) {
		arch, _ := s.table.Get(id)
		cleared += arch.ResetOnReload()
	}
	return cleared
}

// Unregister removes a projectile immediately.
func (s *Simulation) Unregister(id projectile.EntityID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unregisterLocked(id)
}

func (s *Simulation) unregisterLocked(id projectile.EntityID) error {
	for _, l := range s.lanes[1:] {
		if l.pool.Unregister(id) {
			return nil
		}
	}
	return fmt.Errorf("sim: unregister %d: %w", id, ErrUnknownEntity)
}

// GetState returns a copy of a live projectile.
func (s *Simulation) GetState(id projectile.EntityID) (projectile.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.lanes[1:] {
		if slot, ok := l.pool.Find(id); ok {
			if e := l.pool.At(slot); !e.Released() {
				return *e, nil
			}
		}
	}
	return projectile.Entity{}, fmt.Errorf("sim: state %d: %w", id, ErrUnknownEntity)
}

// ActiveCount reports the live projectiles of archetype id.
func (s *Simulation) ActiveCount(id archetype.ID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.validLane(id) {
		return 0
	}
	return s.lanes[id].pool.Active()
}

// Positions appends the position of every live projectile of id to dst.
func (s *Simulation) Positions(id archetype.ID, dst []vecmath.Vec3) []vecmath.Vec3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.validLane(id) {
		return dst
	}
	return s.lanes[id].pool.Positions(dst)
}

func (s *Simulation) validLane(id archetype.ID) bool {
	return id != 0 && int(id) < len(s.lanes)
}

// Apply executes staged commands in order. Individual failures are logged and
// collected; the remaining commands still run.
func (s *Simulation) Apply(cmds []Command) error {
	if len(cmds) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	for _, cmd := range cmds {
		switch cmd.Type {
		case CommandFire:
			if cmd.Fire == nil {
				continue
			}
			f := cmd.Fire
			if _, err := s.spawnLocked(f.Archetype, f.Origin, f.Velocity, f.Damage, f.Lifetime); err != nil {
				errs = append(errs, err)
			}
		case CommandReload:
			if cmd.Reload != nil {
				s.reloadLocked(cmd.Reload.WeaponID)
			}
		case CommandUnregister:
			if cmd.Unregister == nil {
				continue
			}
			if err := s.unregisterLocked(cmd.Unregister.Entity); err != nil {
				s.deps.Logger.Printf("[sim] %v", err)
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Step advances every lane by dt seconds.
func (s *Simulation) Step(dt float64) StepReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !(dt > 0) || math.IsInf(dt, 0) {
		dt = 0
	}
	tick := s.tick.Add(1)
	s.now += dt

	clear(s.reports)
	if s.cfg.Parallel && len(s.lanes) > 2 {
		var g errgroup.Group
		if s.cfg.MaxLanes > 0 {
			g.SetLimit(s.cfg.MaxLanes)
		}
		for idx := 1; idx < len(s.lanes); idx++ {
			if s.lanes[idx].pool.Len() == 0 {
				continue
			}
			g.Go(func() error {
				s.stepLaneAt(idx, tick, dt)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for idx := 1; idx < len(s.lanes); idx++ {
			if s.lanes[idx].pool.Len() > 0 {
				s.stepLaneAt(idx, tick, dt)
			}
		}
	}

	report := StepReport{Tick: tick, Spawned: s.spawned}
	s.spawned = 0
	for _, r := range s.reports {
		report.Active += r.Active
		report.Expired += r.Expired
		report.Destroyed += r.Destroyed
		report.Hits += r.Hits
	}
	s.deps.Metrics.Add(telemetry.MetricTicks, 1)
	s.deps.Metrics.Add(telemetry.MetricExpired, uint64(report.Expired))
	s.deps.Metrics.Add(telemetry.MetricDestroyed, uint64(report.Destroyed))
	s.deps.Metrics.Store(telemetry.MetricActive, uint64(report.Active))
	return report
}

// stepLaneAt steps one lane into its slot of s.reports. Lanes own disjoint
// slots, so parallel callers never share a write.
func (s *Simulation) stepLaneAt(idx int, tick uint64, dt float64) {
	l := s.lanes[idx]
	arch, ok := s.table.Get(l.id)
	if !ok {
		return
	}
	l.env.Now, l.env.Tick = s.now, tick
	s.reports[idx] = stepLane(l, arch, dt)
}

// Snapshot captures the live projectiles of every archetype.
func (s *Simulation) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := Snapshot{Tick: s.Tick(), Time: s.now}
	for _, l := range s.lanes[1:] {
		arch, ok := s.table.Get(l.id)
		if !ok {
			continue
		}
		entry := ArchetypeSnapshot{ID: l.id, Weapon: arch.WeaponID}
		l.pool.Each(func(e *projectile.Entity) {
			entry.Projectiles = append(entry.Projectiles, ProjectileSnapshot{
				ID:       e.ID,
				Position: e.Position,
				Velocity: e.Velocity,
				Damage:   e.Damage,
				Stuck:    e.Stuck(),
			})
		})
		entry.Active = len(entry.Projectiles)
		snapshot.Archetypes = append(snapshot.Archetypes, entry)
	}
	return snapshot
}
