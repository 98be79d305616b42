package combat

import (
	"salvo/server/internal/archetype"
	"salvo/server/internal/projectile"
	"salvo/server/internal/vecmath"
)

// Outcome reports how the resolution pipeline handled a hit.
type Outcome struct {
	// Claimed is the op that took the hit, zero when none did.
	Claimed   archetype.CollisionOpKind
	Destroyed bool
}

// Resolve walks the archetype's collision ops in canonical order. Pierce and
// bounce claim hits they accept. Sticky claims ahead of every other op and
// remembers the first one that would have accepted so it can run on detach.
// Explode only adds area damage. Unclaimed hits fall back to the archetype's
// destroy-on-impact policy.
func Resolve(env *Env, arch *archetype.Archetype, e *projectile.Entity, hit Hit) Outcome {
	if arch == nil {
		e.Release()
		return Outcome{Destroyed: true}
	}

	if sticky, ok := arch.Op(archetype.CollisionSticky); ok && !e.Stuck() {
		var pending archetype.CollisionOpKind
		attached := false
		env.guard("collision.sticky", e, func() {
			if !acceptsSticky(env, hit) {
				return
			}
			pending = firstAccepting(arch, e, hit)
			attached = attach(env, e, sticky.Sticky, hit)
		})
		if attached {
			e.Pending = pending
			return Outcome{Claimed: archetype.CollisionSticky}
		}
	}

	for i := range arch.Collision {
		op := &arch.Collision[i]
		if op.Kind == archetype.CollisionSticky {
			continue
		}
		if runOp(env, arch, e, op, hit) {
			return Outcome{Claimed: op.Kind}
		}
	}
	return defaultPolicy(arch, e, hit)
}

// runOp applies op behind a recover guard and reports whether it claimed.
func runOp(env *Env, arch *archetype.Archetype, e *projectile.Entity, op *archetype.CollisionOp, hit Hit) bool {
	claimed := false
	env.guard("collision."+op.Kind.String(), e, func() {
		switch op.Kind {
		case archetype.CollisionPierce:
			if acceptsPierce(e, op.Pierce, hit) {
				applyPierce(arch, e, op.Pierce, hit)
				claimed = true
			}
		case archetype.CollisionBounce:
			if acceptsBounce(e, op.Bounce) {
				applyBounce(arch, e, op.Bounce, hit)
				claimed = true
			}
		case archetype.CollisionExplode:
			explode(env, e, op.Explode, hit)
		}
	})
	return claimed
}

func defaultPolicy(arch *archetype.Archetype, e *projectile.Entity, hit Hit) Outcome {
	if arch.Physics.DestroyOnImpact {
		e.Release()
		return Outcome{Destroyed: true}
	}
	e.ArmCooldown(hit.Collider, arch.Physics.HitCooldown)
	return Outcome{}
}

func firstAccepting(arch *archetype.Archetype, e *projectile.Entity, hit Hit) archetype.CollisionOpKind {
	for _, op := range arch.Collision {
		switch op.Kind {
		case archetype.CollisionPierce:
			if acceptsPierce(e, op.Pierce, hit) {
				return op.Kind
			}
		case archetype.CollisionBounce:
			if acceptsBounce(e, op.Bounce) {
				return op.Kind
			}
		case archetype.CollisionExplode:
			return op.Kind
		}
	}
	return 0
}

func acceptsPierce(e *projectile.Entity, cfg archetype.PierceConfig, hit Hit) bool {
	return hit.Hostile && hit.Actor != 0 && e.Penetrations < cfg.MaxPenetrations
}

func acceptsBounce(e *projectile.Entity, cfg archetype.BounceConfig) bool {
	return e.Bounces < cfg.MaxBounces
}

func acceptsSticky(env *Env, hit Hit) bool {
	if hit.Collider == 0 || hit.Barrier {
		return false
	}
	_, ok := env.World.Anchors.ColliderTransform(hit.Collider)
	return ok
}

func applyPierce(arch *archetype.Archetype, e *projectile.Entity, cfg archetype.PierceConfig, hit Hit) {
	e.Penetrations++
	e.Damage *= 1 - cfg.DamageReduction
	e.Velocity = e.Velocity.Scale(cfg.VelocityFactor)
	dir := e.Velocity.Normalize()
	if dir.IsZero() {
		dir = hit.Normal.Scale(-1)
	}
	e.Position = hit.Contact.Add(dir.Scale(arch.Physics.Radius + arch.Physics.Nudge))
	e.ArmCooldown(hit.Collider, arch.Physics.HitCooldown)
}

func applyBounce(arch *archetype.Archetype, e *projectile.Entity, cfg archetype.BounceConfig, hit Hit) {
	e.Bounces++
	e.Velocity = vecmath.Reflect(e.Velocity, hit.Normal).Scale(cfg.Bounciness)
	e.Damage *= 1 - cfg.DamageReduction
	e.Position = hit.Contact.Add(hit.Normal.Scale(arch.Physics.Nudge))
	e.ArmCooldown(hit.Collider, arch.Physics.HitCooldown)
}

func explode(env *Env, e *projectile.Entity, cfg archetype.ExplosiveConfig, hit Hit) {
	amount := e.Damage * cfg.DamageMultiplier
	hits := env.World.Sink.ApplyAreaDamage(hit.Point, cfg.Radius, amount, 0)
	if env.Hooks.Explosion != nil {
		env.Hooks.Explosion(e.ID, hit.Point, cfg.Radius, amount, hits)
	}
}

func attach(env *Env, e *projectile.Entity, cfg archetype.StickyConfig, hit Hit) bool {
	frame, ok := env.World.Anchors.ColliderTransform(hit.Collider)
	if !ok {
		return false
	}
	e.Adhesion = projectile.Adhesion{
		Active:        true,
		Target:        hit.Collider,
		Actor:         hit.Actor,
		Hostile:       hit.Hostile,
		LocalOffset:   frame.PointToLocal(hit.Contact),
		LocalNormal:   frame.DirToLocal(hit.Normal),
		WorldNormal:   hit.Normal,
		Remaining:     cfg.Duration,
		SavedVelocity: e.Velocity,
	}
	e.Position = hit.Contact
	e.Velocity = vecmath.Vec3{}
	if env.Hooks.Adhesion != nil {
		env.Hooks.Adhesion(e.ID, hit.Collider, true)
	}
	return true
}

// Follow moves a stuck projectile with its anchor. A vanished anchor leaves
// the projectile where it was.
func Follow(env *Env, e *projectile.Entity) {
	if !e.Stuck() {
		return
	}
	frame, ok := env.World.Anchors.ColliderTransform(e.Adhesion.Target)
	if !ok {
		return
	}
	e.PrevPosition = e.Position
	e.Position = frame.PointToWorld(e.Adhesion.LocalOffset)
	if n := frame.DirToWorld(e.Adhesion.LocalNormal).Normalize(); !n.IsZero() {
		e.Adhesion.WorldNormal = n
	}
}

// Detach ends adhesion: the saved velocity is restored, the projectile is
// pushed off the surface, and the pending op, if any, runs exactly once.
func Detach(env *Env, arch *archetype.Archetype, e *projectile.Entity) Outcome {
	if !e.Stuck() {
		return Outcome{}
	}
	adhesion := e.Adhesion
	e.Adhesion = projectile.Adhesion{}
	pending := e.Pending
	e.Pending = 0
	if env.Hooks.Adhesion != nil {
		env.Hooks.Adhesion(e.ID, adhesion.Target, false)
	}
	if arch == nil {
		e.Release()
		return Outcome{Destroyed: true}
	}

	normal := adhesion.WorldNormal.Normalize()
	contact := e.Position
	hit := Hit{
		Contact:  contact,
		Point:    contact.Sub(normal.Scale(arch.Physics.Radius)),
		Normal:   normal,
		Collider: adhesion.Target,
		Actor:    adhesion.Actor,
		Hostile:  adhesion.Hostile,
	}

	e.Velocity = adhesion.SavedVelocity
	e.Position = contact.Add(normal.Scale(arch.Physics.Radius + arch.Physics.Nudge))
	e.PrevPosition = e.Position
	e.ArmCooldown(adhesion.Target, arch.Physics.HitCooldown)

	if pending != 0 {
		if op, ok := arch.Op(pending); ok && runOp(env, arch, e, &op, hit) {
			e.PrevPosition = e.Position
			return Outcome{Claimed: pending}
		}
	}
	return defaultPolicy(arch, e, hit)
}
