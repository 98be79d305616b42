package combat

import (
	"context"

	"salvo/server/logging"
)

const (
	// EventDamage is emitted when a projectile hit applies damage to an actor.
	EventDamage logging.EventType = "combat.damage"
	// EventOverkill is emitted when surplus damage hops to a second actor.
	EventOverkill logging.EventType = "combat.overkill_transfer"
	// EventExplosion is emitted when an explosive projectile detonates.
	EventExplosion logging.EventType = "combat.explosion"
	// EventDefeat is emitted when a hit reduces an actor to zero health.
	EventDefeat logging.EventType = "combat.defeat"
)

// DamagePayload captures a single resolved hit.
type DamagePayload struct {
	Archetype  uint32  `json:"archetype"`
	Amount     float64 `json:"amount"`
	Applied    float64 `json:"applied"`
	Overkill   float64 `json:"overkill,omitempty"`
	Remaining  float64 `json:"remaining"`
	Crit       bool    `json:"crit,omitempty"`
	Multiplier float64 `json:"multiplier,omitempty"`
}

// OverkillPayload captures a transferred remainder.
type OverkillPayload struct {
	Archetype uint32  `json:"archetype"`
	Amount    float64 `json:"amount"`
	Applied   float64 `json:"applied"`
}

// ExplosionPayload captures an area detonation.
type ExplosionPayload struct {
	Archetype uint32     `json:"archetype"`
	Center    [3]float64 `json:"center"`
	Radius    float64    `json:"radius"`
	Amount    float64    `json:"amount"`
	Hits      int        `json:"hits"`
}

// DefeatPayload names the archetype responsible for a kill.
type DefeatPayload struct {
	Archetype uint32 `json:"archetype"`
}

// Damage publishes a combat damage event for a single target.
func Damage(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload DamagePayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDamage,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	})
}

// OverkillTransfer publishes the hop from source to target.
func OverkillTransfer(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, source, target logging.EntityRef, payload OverkillPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventOverkill,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{source, target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	})
}

func Explosion(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ExplosionPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventExplosion,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	})
}

// Defeat publishes a combat defeat event for the eliminated actor.
func Defeat(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload DefeatPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDefeat,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	})
}
