package projectiles

import (
	"context"

	"salvo/server/logging"
)

const (
	EventSpawned       logging.EventType = "projectile.spawned"
	EventSpawnRejected logging.EventType = "projectile.spawn_rejected"
	EventExpired       logging.EventType = "projectile.expired"
	EventAdhesion      logging.EventType = "projectile.adhesion"
	// EventOpFault is emitted when a collision op, damage step or steering
	// step panics. The projectile keeps simulating.
	EventOpFault logging.EventType = "projectile.op_fault"
)

type SpawnedPayload struct {
	Archetype uint32     `json:"archetype"`
	Origin    [3]float64 `json:"origin"`
	Velocity  [3]float64 `json:"velocity"`
	Damage    float64    `json:"damage"`
	Lifetime  float64    `json:"lifetime"`
	Assisted  bool       `json:"assisted,omitempty"`
}

type SpawnRejectedPayload struct {
	Archetype uint32 `json:"archetype"`
	Reason    string `json:"reason"`
}

type ExpiredPayload struct {
	Archetype uint32     `json:"archetype"`
	Position  [3]float64 `json:"position"`
	Hits      int        `json:"hits"`
}

type AdhesionPayload struct {
	Archetype uint32 `json:"archetype"`
	Collider  uint64 `json:"collider"`
	Attached  bool   `json:"attached"`
}

type OpFaultPayload struct {
	Archetype uint32 `json:"archetype"`
	Stage     string `json:"stage"`
	Error     string `json:"error"`
}

func Spawned(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload SpawnedPayload, extra map[string]any) {
	publish(ctx, pub, tick, actor, EventSpawned, logging.SeverityDebug, payload, extra)
}

// SpawnRejected reports a spawn call that referenced no registered archetype.
func SpawnRejected(ctx context.Context, pub logging.Publisher, tick uint64, payload SpawnRejectedPayload, extra map[string]any) {
	publish(ctx, pub, tick, logging.ArchetypeRef(payload.Archetype), EventSpawnRejected, logging.SeverityWarn, payload, extra)
}

func Expired(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ExpiredPayload, extra map[string]any) {
	publish(ctx, pub, tick, actor, EventExpired, logging.SeverityDebug, payload, extra)
}

func Adhesion(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload AdhesionPayload, extra map[string]any) {
	publish(ctx, pub, tick, actor, EventAdhesion, logging.SeverityDebug, payload, extra)
}

func OpFault(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload OpFaultPayload, extra map[string]any) {
	publish(ctx, pub, tick, actor, EventOpFault, logging.SeverityError, payload, extra)
}

func publish(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, eventType logging.EventType, severity logging.Severity, payload any, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     eventType,
		Tick:     tick,
		Actor:    actor,
		Severity: severity,
		Category: logging.CategoryProjectile,
		Payload:  payload,
		Extra:    extra,
	})
}
