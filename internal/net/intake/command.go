package intake

import (
	"math"
	"time"

	"salvo/server/internal/archetype"
	"salvo/server/internal/net/proto"
	"salvo/server/internal/sim"
)

// Reject reasons beyond the loop's queue reasons.
const (
	RejectUnknownWeapon  = "unknown_weapon"
	RejectInvalidRequest = "invalid_request"
)

// Queue stages commands for the next tick.
type Queue interface {
	Enqueue(cmd sim.Command) (bool, string)
}

// Archetypes resolves a weapon id to its compiled archetypes.
type Archetypes interface {
	ArchetypesFor(weaponID string) []archetype.ID
}

type CommandContext struct {
	Queue      Queue
	Archetypes Archetypes
	Now        func() time.Time
}

func (ctx CommandContext) now() time.Time {
	if ctx.Now != nil {
		return ctx.Now()
	}
	return time.Now()
}

// StageFire enqueues one fire command per archetype compiled for the weapon.
// It stops at the first queue rejection and returns how many were staged.
func StageFire(ctx CommandContext, source string, req proto.FireRequest) (int, bool, string) {
	if req.Weapon == "" || !req.Origin.IsFinite() || !req.Velocity.IsFinite() ||
		math.IsNaN(req.Damage) || math.IsNaN(req.Lifetime) || req.Lifetime <= 0 {
		return 0, false, RejectInvalidRequest
	}
	if ctx.Queue == nil || ctx.Archetypes == nil {
		return 0, false, sim.CommandRejectQueueFull
	}
	ids := ctx.Archetypes.ArchetypesFor(req.Weapon)
	if len(ids) == 0 {
		return 0, false, RejectUnknownWeapon
	}

	issuedAt := ctx.now()
	staged := 0
	for _, id := range ids {
		ok, reason := ctx.Queue.Enqueue(sim.Command{
			Source:   source,
			Type:     sim.CommandFire,
			IssuedAt: issuedAt,
			Fire: &sim.FireCommand{
				Archetype: id,
				Origin:    req.Origin,
				Velocity:  req.Velocity,
				Damage:    req.Damage,
				Lifetime:  req.Lifetime,
			},
		})
		if !ok {
			return staged, false, reason
		}
		staged++
	}
	return staged, true, ""
}

// StageReload enqueues a reload notification for the weapon.
func StageReload(ctx CommandContext, source string, req proto.ReloadRequest) (bool, string) {
	if req.Weapon == "" {
		return false, RejectInvalidRequest
	}
	if ctx.Queue == nil || ctx.Archetypes == nil {
		return false, sim.CommandRejectQueueFull
	}
	if len(ctx.Archetypes.ArchetypesFor(req.Weapon)) == 0 {
		return false, RejectUnknownWeapon
	}
	return ctx.Queue.Enqueue(sim.Command{
		Source:   source,
		Type:     sim.CommandReload,
		IssuedAt: ctx.now(),
		Reload:   &sim.ReloadCommand{WeaponID: req.Weapon},
	})
}

// Retryable reports whether a client may resend after a rejection.
func Retryable(reason string) bool {
	return reason == sim.CommandRejectQueueLimit || reason == sim.CommandRejectQueueFull
}
