package sim

import (
	"salvo/server/internal/archetype"
	"salvo/server/internal/projectile"
	"salvo/server/internal/vecmath"
)

// ProjectileSnapshot mirrors one live projectile to feed subscribers.
type ProjectileSnapshot struct {
	ID       projectile.EntityID `json:"id" msgpack:"id"`
	Position vecmath.Vec3        `json:"position" msgpack:"position"`
	Velocity vecmath.Vec3        `json:"velocity" msgpack:"velocity"`
	Damage   float64             `json:"damage" msgpack:"damage"`
	Stuck    bool                `json:"stuck,omitempty" msgpack:"stuck,omitempty"`
}

// ArchetypeSnapshot groups the live projectiles of one archetype.
type ArchetypeSnapshot struct {
	ID          archetype.ID         `json:"id" msgpack:"id"`
	Weapon      string               `json:"weapon" msgpack:"weapon"`
	Active      int                  `json:"active" msgpack:"active"`
	Projectiles []ProjectileSnapshot `json:"projectiles,omitempty" msgpack:"projectiles,omitempty"`
}

// Snapshot captures the state exposed to non-simulation callers.
type Snapshot struct {
	Tick       uint64              `json:"tick" msgpack:"tick"`
	Time       float64             `json:"time" msgpack:"time"`
	Archetypes []ArchetypeSnapshot `json:"archetypes,omitempty" msgpack:"archetypes,omitempty"`
}

// ActiveTotal sums the live projectiles across archetypes.
func (s Snapshot) ActiveTotal() int {
	total := 0
	for _, a := range s.Archetypes {
		total += a.Active
	}
	return total
}
