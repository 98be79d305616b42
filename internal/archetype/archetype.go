package archetype

import "salvo/server/internal/world"

// CollisionOpKind tags a collision behavior.
type CollisionOpKind uint8

const (
	CollisionPierce CollisionOpKind = iota + 1
	CollisionBounce
	CollisionSticky
	CollisionExplode
)

func (k CollisionOpKind) String() string {
	switch k {
	case CollisionPierce:
		return "pierce"
	case CollisionBounce:
		return "bounce"
	case CollisionSticky:
		return "sticky"
	case CollisionExplode:
		return "explode"
	default:
		return "unknown"
	}
}

// CollisionOp is one entry of the resolution pipeline. Only the config that
// matches Kind is meaningful.
type CollisionOp struct {
	Kind    CollisionOpKind
	Pierce  PierceConfig
	Bounce  BounceConfig
	Sticky  StickyConfig
	Explode ExplosiveConfig
}

// SteeringKind tags a steering behavior.
type SteeringKind uint8

const (
	SteeringHoming SteeringKind = iota + 1
	SteeringTracking
)

// SteeringOp bends velocity each tick.
type SteeringOp struct {
	Kind           SteeringKind
	Strength       float64
	Radius         float64
	MaxRayDistance float64
}

// DamageStep is a compiled damage pipeline step. Slot indexes the archetype's
// metronome state array and is -1 for stateless steps.
type DamageStep struct {
	DamageStepConfig
	Slot  int
	order int
}

// MetronomeState is the streak counter owned by one metronome step.
type MetronomeState struct {
	Target  world.ActorID
	Streak  int
	LastHit float64
}

// Reset clears the streak.
func (m *MetronomeState) Reset() {
	if m == nil {
		return
	}
	*m = MetronomeState{}
}

// Archetype is the compiled, per-weapon projectile definition. Everything but
// Metronomes and AimLock is read-only after compilation; those two are written
// only by the tick slice of this archetype.
type Archetype struct {
	WeaponID  string
	Physics   Physics
	Collision []CollisionOp
	Steering  []SteeringOp
	PreSteps  []DamageStep
	PostSteps []DamageStep
	AimAssist AimAssistConfig

	Metronomes []MetronomeState
	AimLock    world.ActorID
}

// HasSticky reports whether the archetype carries a sticky op.
func (a *Archetype) HasSticky() bool {
	return a.opIndex(CollisionSticky) >= 0
}

// HasTracking reports whether any steering op needs the shared aim target.
func (a *Archetype) HasTracking() bool {
	if a == nil {
		return false
	}
	for _, op := range a.Steering {
		if op.Kind == SteeringTracking {
			return true
		}
	}
	return false
}

// Tracking returns the first tracking op.
func (a *Archetype) Tracking() (SteeringOp, bool) {
	if a == nil {
		return SteeringOp{}, false
	}
	for _, op := range a.Steering {
		if op.Kind == SteeringTracking {
			return op, true
		}
	}
	return SteeringOp{}, false
}

// Op returns the collision op of the requested kind.
func (a *Archetype) Op(kind CollisionOpKind) (CollisionOp, bool) {
	idx := a.opIndex(kind)
	if idx < 0 {
		return CollisionOp{}, false
	}
	return a.Collision[idx], true
}

func (a *Archetype) opIndex(kind CollisionOpKind) int {
	if a == nil {
		return -1
	}
	for i, op := range a.Collision {
		if op.Kind == kind {
			return i
		}
	}
	return -1
}

// ResetOnReload clears every metronome streak configured to reset when the
// weapon reloads and returns how many were cleared.
func (a *Archetype) ResetOnReload() int {
	if a == nil {
		return 0
	}
	cleared := 0
	for _, step := range a.PreSteps {
		if step.Kind != StepMetronome || !step.ResetOnReload {
			continue
		}
		if step.Slot >= 0 && step.Slot < len(a.Metronomes) {
			a.Metronomes[step.Slot].Reset()
			cleared++
		}
	}
	return cleared
}
