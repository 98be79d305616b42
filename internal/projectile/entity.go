package projectile

import (
	"salvo/server/internal/archetype"
	"salvo/server/internal/vecmath"
	"salvo/server/internal/world"
)

// EntityID correlates a projectile with external systems. IDs increase
// monotonically for the lifetime of a simulation.
type EntityID uint64

// Adhesion captures a projectile stuck to a collider. Offsets are expressed
// in the collider's local frame so the projectile follows it.
type Adhesion struct {
	Active        bool             `json:"active"`
	Target        world.ColliderID `json:"target,omitempty"`
	Actor         world.ActorID    `json:"actor,omitempty"`
	Hostile       bool             `json:"hostile,omitempty"`
	LocalOffset   vecmath.Vec3     `json:"localOffset"`
	LocalNormal   vecmath.Vec3     `json:"localNormal"`
	WorldNormal   vecmath.Vec3     `json:"worldNormal"`
	Remaining     float64          `json:"remaining"`
	SavedVelocity vecmath.Vec3     `json:"savedVelocity"`
}

// Entity is a single in-flight projectile.
type Entity struct {
	ID        EntityID     `json:"id"`
	Archetype archetype.ID `json:"archetype"`

	Position     vecmath.Vec3 `json:"position"`
	PrevPosition vecmath.Vec3 `json:"prevPosition"`
	Velocity     vecmath.Vec3 `json:"velocity"`
	Damage       float64      `json:"damage"`
	Life         float64      `json:"life"`
	InitialSpeed float64      `json:"initialSpeed"`

	Bounces      int `json:"bounces"`
	Penetrations int `json:"penetrations"`
	Hits         int `json:"hits"`

	LastCollider world.ColliderID `json:"lastCollider,omitempty"`
	Cooldown     float64          `json:"cooldown,omitempty"`

	Adhesion Adhesion `json:"adhesion"`
	// Pending is the collision op deferred by adhesion, zero when none.
	Pending archetype.CollisionOpKind `json:"pending,omitempty"`

	Crit           bool    `json:"crit,omitempty"`
	CritMultiplier float64 `json:"critMultiplier,omitempty"`

	released bool
}

// Speed returns the current velocity magnitude.
func (e *Entity) Speed() float64 {
	if e == nil {
		return 0
	}
	return e.Velocity.Len()
}

// Stuck reports whether the projectile is attached to a collider.
func (e *Entity) Stuck() bool {
	return e != nil && e.Adhesion.Active
}

// Release marks the entity for removal at the next compaction.
func (e *Entity) Release() {
	if e == nil {
		return
	}
	e.released = true
}

// Released reports whether the entity is awaiting compaction.
func (e *Entity) Released() bool {
	return e == nil || e.released
}

// ArmCooldown ignores further hits on collider for the given duration.
func (e *Entity) ArmCooldown(collider world.ColliderID, seconds float64) {
	if e == nil {
		return
	}
	e.LastCollider = collider
	e.Cooldown = seconds
}

// Suppressed reports whether a hit on collider falls inside the cooldown.
func (e *Entity) Suppressed(collider world.ColliderID) bool {
	if e == nil || collider == 0 {
		return false
	}
	return e.Cooldown > 0 && e.LastCollider == collider
}
