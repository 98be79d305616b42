package combat

import (
	"salvo/server/internal/archetype"
	"salvo/server/internal/projectile"
	"salvo/server/internal/vecmath"
)

// SteeringCache is computed once per archetype per tick and shared by every
// tracking projectile of that archetype.
type SteeringCache struct {
	Target vecmath.Vec3
	Valid  bool
}

// ComputeSteeringCache casts the viewpoint aim ray when the archetype tracks.
// The hit point, or the ray end on a miss, becomes the shared target.
func ComputeSteeringCache(env *Env, arch *archetype.Archetype) SteeringCache {
	op, ok := arch.Tracking()
	if !ok {
		return SteeringCache{}
	}
	var cache SteeringCache
	env.guard("steering.cache", nil, func() {
		origin, dir, ok := env.World.Viewpoint.AimRay()
		dir = dir.Normalize()
		if !ok || dir.IsZero() {
			return
		}
		end := origin.Add(dir.Scale(op.MaxRayDistance))
		if hit, ok := env.World.Raycaster.Raycast(origin, end, arch.Physics.CollisionMask); ok {
			end = hit.Point
		}
		cache = SteeringCache{Target: end, Valid: true}
	})
	return cache
}

// Steer bends e's velocity toward its homing or tracking targets. Speed is
// preserved.
func Steer(env *Env, arch *archetype.Archetype, cache SteeringCache, e *projectile.Entity) {
	if arch == nil || len(arch.Steering) == 0 {
		return
	}
	speed := e.Velocity.Len()
	if speed < vecmath.Epsilon {
		return
	}
	for i := range arch.Steering {
		op := &arch.Steering[i]
		env.guard("steering", e, func() {
			var target vecmath.Vec3
			switch op.Kind {
			case archetype.SteeringHoming:
				_, position, ok := env.World.Sink.NearestHostile(e.Position, op.Radius, 0)
				if !ok {
					return
				}
				target = position
			case archetype.SteeringTracking:
				if !cache.Valid {
					return
				}
				target = cache.Target
			default:
				return
			}
			desired := target.Sub(e.Position).Normalize()
			if desired.IsZero() {
				return
			}
			bent := vecmath.Lerp(e.Velocity, desired.Scale(speed), op.Strength)
			if bent.IsZero() {
				return
			}
			e.Velocity = bent.WithLength(speed)
		})
	}
}

// AimAssist re-aims a spawn velocity at the nearest hostile within the
// archetype's assist radius, skipping the target locked by the previous shot.
// With no candidate the shot is unassisted and the lock clears.
func AimAssist(env *Env, arch *archetype.Archetype, origin, velocity vecmath.Vec3) vecmath.Vec3 {
	if arch == nil || !arch.AimAssist.Active() {
		return velocity
	}
	result := velocity
	env.guard("aim_assist", nil, func() {
		target, position, ok := env.World.Sink.NearestHostile(origin, arch.AimAssist.Radius, arch.AimLock)
		if !ok {
			arch.AimLock = 0
			return
		}
		dir := position.Sub(origin).Normalize()
		if dir.IsZero() {
			return
		}
		arch.AimLock = target
		result = dir.Scale(velocity.Len())
	})
	return result
}
