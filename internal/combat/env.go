package combat

import (
	"fmt"
	"math/rand"

	"salvo/server/internal/projectile"
	"salvo/server/internal/vecmath"
	"salvo/server/internal/world"
)

// Env carries everything a pipeline call may read besides the entity and its
// archetype: collaborators, the lane's random stream, and the clock.
type Env struct {
	World world.Collaborators
	RNG   *rand.Rand
	// Now is simulation time in seconds.
	Now   float64
	Tick  uint64
	Hooks Hooks
}

// Hooks observe pipeline outcomes for telemetry. Every member is optional.
type Hooks struct {
	OpFault   func(stage string, entity projectile.EntityID, recovered any)
	Damage    func(entity projectile.EntityID, target world.ActorID, snapshot world.DamageSnapshot)
	Overkill  func(entity projectile.EntityID, source, target world.ActorID, amount float64)
	Explosion func(entity projectile.EntityID, center vecmath.Vec3, radius, amount float64, hits int)
	Adhesion  func(entity projectile.EntityID, collider world.ColliderID, attached bool)
}

// NewEnv normalizes collaborators so pipeline code never checks for nil.
func NewEnv(collaborators world.Collaborators, rng *rand.Rand, hooks Hooks) *Env {
	return &Env{World: collaborators.Normalized(), RNG: rng, Hooks: hooks}
}

// guard runs fn and converts a panic into a reported fault. It returns false
// when fn panicked.
func (env *Env) guard(stage string, e *projectile.Entity, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			env.fault(stage, e, r)
		}
	}()
	fn()
	return true
}

func (env *Env) fault(stage string, e *projectile.Entity, recovered any) {
	if env == nil || env.Hooks.OpFault == nil {
		return
	}
	var id projectile.EntityID
	if e != nil {
		id = e.ID
	}
	env.Hooks.OpFault(stage, id, recovered)
}

// FaultError formats a recovered panic value for logs.
func FaultError(recovered any) error {
	if err, ok := recovered.(error); ok {
		return err
	}
	return fmt.Errorf("%v", recovered)
}
