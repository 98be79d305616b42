package combat

import (
	"context"

	"salvo/server/internal/projectile"
	"salvo/server/internal/telemetry"
	"salvo/server/internal/vecmath"
	"salvo/server/internal/world"
	"salvo/server/logging"
	loggingcombat "salvo/server/logging/combat"
	loggingprojectiles "salvo/server/logging/projectiles"
)

// HooksConfig captures the dependencies required to publish pipeline
// telemetry for one archetype lane.
type HooksConfig struct {
	Publisher   logging.Publisher
	Metrics     telemetry.Metrics
	Logger      telemetry.Logger
	Archetype   uint32
	CurrentTick func() uint64
}

// NewHooks constructs pipeline hooks that publish combat and projectile
// events and bump the shared counters. Missing dependencies are replaced by
// no-ops.
func NewHooks(cfg HooksConfig) Hooks {
	pub := cfg.Publisher
	if pub == nil {
		pub = logging.NopPublisher()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = telemetry.NopMetrics()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.NopLogger()
	}
	tick := cfg.CurrentTick
	if tick == nil {
		tick = func() uint64 { return 0 }
	}
	arch := cfg.Archetype
	ctx := context.Background()

	return Hooks{
		OpFault: func(stage string, entity projectile.EntityID, recovered any) {
			err := FaultError(recovered)
			metrics.Add(telemetry.MetricOpFaults, 1)
			logger.Printf("[combat] archetype %d projectile %d fault in %s: %v", arch, entity, stage, err)
			loggingprojectiles.OpFault(ctx, pub, tick(), logging.ProjectileRef(uint64(entity)), loggingprojectiles.OpFaultPayload{
				Archetype: arch,
				Stage:     stage,
				Error:     err.Error(),
			}, nil)
		},
		Damage: func(entity projectile.EntityID, target world.ActorID, snapshot world.DamageSnapshot) {
			metrics.Add(telemetry.MetricHits, 1)
			actor := logging.ProjectileRef(uint64(entity))
			targetRef := logging.ActorRef(uint64(target))
			loggingcombat.Damage(ctx, pub, tick(), actor, targetRef, loggingcombat.DamagePayload{
				Archetype:  arch,
				Amount:     snapshot.Amount,
				Applied:    snapshot.Applied,
				Overkill:   max(snapshot.Amount-snapshot.Applied, 0),
				Remaining:  snapshot.Remaining,
				Crit:       snapshot.Crit,
				Multiplier: snapshot.CritMultiplier,
			}, nil)
			if snapshot.Applied > 0 && snapshot.Remaining <= 0 {
				loggingcombat.Defeat(ctx, pub, tick(), actor, targetRef, loggingcombat.DefeatPayload{Archetype: arch}, nil)
			}
		},
		Overkill: func(entity projectile.EntityID, source, target world.ActorID, amount float64) {
			loggingcombat.OverkillTransfer(ctx, pub, tick(),
				logging.ProjectileRef(uint64(entity)),
				logging.ActorRef(uint64(source)),
				logging.ActorRef(uint64(target)),
				loggingcombat.OverkillPayload{Archetype: arch, Amount: amount, Applied: amount},
				nil,
			)
		},
		Explosion: func(entity projectile.EntityID, center vecmath.Vec3, radius, amount float64, hits int) {
			loggingcombat.Explosion(ctx, pub, tick(), logging.ProjectileRef(uint64(entity)), loggingcombat.ExplosionPayload{
				Archetype: arch,
				Center:    center.Array(),
				Radius:    radius,
				Amount:    amount,
				Hits:      hits,
			}, nil)
		},
		Adhesion: func(entity projectile.EntityID, collider world.ColliderID, attached bool) {
			loggingprojectiles.Adhesion(ctx, pub, tick(), logging.ProjectileRef(uint64(entity)), loggingprojectiles.AdhesionPayload{
				Archetype: arch,
				Collider:  uint64(collider),
				Attached:  attached,
			}, nil)
		},
	}
}
