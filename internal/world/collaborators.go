package world

//go:generate go tool mockgen -destination=./mocks/world_mock.go -package=mocks . Raycaster,Barriers,Anchors,DamageSink,Events,Viewpoint

import "salvo/server/internal/vecmath"

type Vec3 = vecmath.Vec3

// ColliderID identifies any physical collider. Zero means "none".
type ColliderID uint64

// ActorID identifies a damageable actor. Zero means "none".
type ActorID uint64

// DamageKind tags the damage source for barrier filtering.
type DamageKind string

const (
	DamageKindProjectile DamageKind = "projectile"
	DamageKindExplosion  DamageKind = "explosion"
)

// RayHit is the first blocking surface along a segment.
type RayHit struct {
	Point    Vec3
	Normal   Vec3
	Fraction float64
	Collider ColliderID
	Actor    ActorID
	Hostile  bool
}

// BarrierHit is an intersection with a non-physical occluding volume.
type BarrierHit struct {
	Point    Vec3
	Normal   Vec3
	Fraction float64
	Barrier  ColliderID
}

// DamageResult reports what a damage application actually did.
type DamageResult struct {
	Applied   float64
	Overkill  float64
	Remaining float64
	Killed    bool
}

// DamageSnapshot accompanies damage events for feedback consumers.
type DamageSnapshot struct {
	Amount         float64 `json:"amount"`
	Applied        float64 `json:"applied"`
	Remaining      float64 `json:"remaining"`
	Crit           bool    `json:"crit,omitempty"`
	CritMultiplier float64 `json:"critMultiplier,omitempty"`
	Overkill       bool    `json:"overkill,omitempty"`
}

// Raycaster answers segment queries against the physical world.
type Raycaster interface {
	Raycast(from, to Vec3, mask uint32) (RayHit, bool)
}

// Barriers answers segment queries against shields and safe-zone volumes.
type Barriers interface {
	QueryBarrier(from, to Vec3, padding float64, kind DamageKind) (BarrierHit, bool)
}

// Anchors resolves the current frame of a collider that a projectile is
// attached to. A false return means the collider no longer exists.
type Anchors interface {
	ColliderTransform(id ColliderID) (vecmath.Transform, bool)
}

// DamageSink commits damage to actors and answers proximity queries.
type DamageSink interface {
	ApplyDamage(target ActorID, amount float64) DamageResult
	NearestHostile(point Vec3, radius float64, exclude ActorID) (ActorID, Vec3, bool)
	ApplyAreaDamage(center Vec3, radius, amount float64, exclude ActorID) int
}

// Events receives fire-and-forget feedback notifications.
type Events interface {
	EmitImpact(position, normal, travelDir Vec3)
	EmitDamageDealt(target ActorID, snapshot DamageSnapshot, knockbackDir Vec3, knockbackStrength float64)
	EmitExpired(archetype uint32, entity uint64, position Vec3)
}

// Viewpoint exposes the active aim ray used by tracking projectiles.
type Viewpoint interface {
	AimRay() (origin, dir Vec3, ok bool)
}

// Collaborators groups every external dependency of the simulation. Nil
// members are replaced with inert implementations by Normalized.
type Collaborators struct {
	Raycaster Raycaster
	Barriers  Barriers
	Anchors   Anchors
	Sink      DamageSink
	Events    Events
	Viewpoint Viewpoint
}

// Normalized fills nil collaborators with no-op implementations.
func (c Collaborators) Normalized() Collaborators {
	out := c
	if out.Raycaster == nil {
		out.Raycaster = nopWorld{}
	}
	if out.Barriers == nil {
		out.Barriers = nopWorld{}
	}
	if out.Anchors == nil {
		out.Anchors = nopWorld{}
	}
	if out.Sink == nil {
		out.Sink = nopWorld{}
	}
	if out.Events == nil {
		out.Events = nopWorld{}
	}
	if out.Viewpoint == nil {
		out.Viewpoint = nopWorld{}
	}
	return out
}

type nopWorld struct{}

func (nopWorld) Raycast(Vec3, Vec3, uint32) (RayHit, bool) { return RayHit{}, false }

func (nopWorld) QueryBarrier(Vec3, Vec3, float64, DamageKind) (BarrierHit, bool) {
	return BarrierHit{}, false
}

func (nopWorld) ColliderTransform(ColliderID) (vecmath.Transform, bool) {
	return vecmath.Transform{}, false
}

func (nopWorld) ApplyDamage(ActorID, float64) DamageResult { return DamageResult{} }

func (nopWorld) NearestHostile(Vec3, float64, ActorID) (ActorID, Vec3, bool) {
	return 0, Vec3{}, false
}

func (nopWorld) ApplyAreaDamage(Vec3, float64, float64, ActorID) int { return 0 }

func (nopWorld) EmitImpact(Vec3, Vec3, Vec3) {}

func (nopWorld) EmitDamageDealt(ActorID, DamageSnapshot, Vec3, float64) {}

func (nopWorld) EmitExpired(uint32, uint64, Vec3) {}

func (nopWorld) AimRay() (Vec3, Vec3, bool) { return Vec3{}, Vec3{}, false }
