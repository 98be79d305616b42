package sim

import (
	"context"

	"salvo/server/internal/archetype"
	"salvo/server/internal/combat"
	"salvo/server/internal/projectile"
	"salvo/server/internal/world"
	"salvo/server/logging"
	loggingprojectiles "salvo/server/logging/projectiles"
)

// lifeEpsilon absorbs the rounding left over after subtracting dt from a
// lifetime that is an exact multiple of it.
const lifeEpsilon = 1e-9

// stepLane advances every projectile of one archetype in slot order, then
// compacts the pool.
func stepLane(l *lane, arch *archetype.Archetype, dt float64) StepReport {
	env := l.env
	var report StepReport

	var cache combat.SteeringCache
	if arch.HasTracking() {
		cache = combat.ComputeSteeringCache(env, arch)
	}

	for i := 0; i < l.pool.Len(); i++ {
		e := l.pool.At(i)
		if e.Released() {
			continue
		}

		e.Life -= dt
		if e.Life <= lifeEpsilon {
			expire(l, arch, e)
			report.Expired++
			continue
		}

		if e.Cooldown > 0 {
			e.Cooldown -= dt
			if e.Cooldown <= 0 {
				e.Cooldown = 0
				e.LastCollider = 0
			}
		}

		if e.Stuck() {
			e.Adhesion.Remaining -= dt
			combat.Follow(env, e)
			if e.Adhesion.Remaining <= 0 {
				if out := combat.Detach(env, arch, e); out.Destroyed {
					report.Destroyed++
				}
			}
			continue
		}

		hits := e.Hits
		if advance(env, arch, cache, e, dt) {
			report.Destroyed++
		}
		report.Hits += e.Hits - hits
	}

	l.pool.Compact()
	report.Active = l.pool.Len()
	return report
}

// advance integrates one free-flying projectile and resolves any contact. It
// reports whether the projectile was destroyed.
func advance(env *combat.Env, arch *archetype.Archetype, cache combat.SteeringCache, e *projectile.Entity, dt float64) bool {
	combat.Steer(env, arch, cache, e)
	e.Velocity.Y -= arch.Physics.Gravity * dt

	next := e.Position.Add(e.Velocity.Scale(dt))
	e.PrevPosition = e.Position

	var skip world.ColliderID
	if e.Suppressed(e.LastCollider) {
		skip = e.LastCollider
	}
	hit, ok := combat.Sweep(env, e.Position, next, arch.Physics.Radius, arch.Physics.CollisionMask, skip)
	if !ok {
		e.Position = next
		return false
	}

	env.World.Events.EmitImpact(hit.Point, hit.Normal, e.Velocity.Normalize())
	e.Position = hit.Contact

	if hit.Hostile && hit.Actor != 0 && !hit.Barrier {
		combat.ApplyHit(env, arch, e, hit)
	}
	outcome := combat.Resolve(env, arch, e, hit)
	switch {
	case outcome.Destroyed:
		if e.Hits == 0 && !hit.Hostile {
			combat.RegisterMiss(env, arch, e)
		}
		return true
	case outcome.Claimed == 0:
		e.Position = next
	}
	return false
}

// expire records the lifetime ending as a miss, notifies collaborators and
// releases the slot.
func expire(l *lane, arch *archetype.Archetype, e *projectile.Entity) {
	env, id := l.env, l.id
	combat.RegisterMiss(env, arch, e)
	env.World.Events.EmitExpired(uint32(id), uint64(e.ID), e.Position)
	loggingprojectiles.Expired(context.Background(), l.publisher, env.Tick, logging.ProjectileRef(uint64(e.ID)), loggingprojectiles.ExpiredPayload{
		Archetype: uint32(id),
		Position:  e.Position.Array(),
		Hits:      e.Hits,
	}, nil)
	e.Release()
}
