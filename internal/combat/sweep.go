package combat

import (
	"salvo/server/internal/vecmath"
	"salvo/server/internal/world"
)

// Hit is the nearest blocking surface found by a sweep.
type Hit struct {
	// Contact is the projectile center at the moment of contact.
	Contact  vecmath.Vec3
	Point    vecmath.Vec3
	Normal   vecmath.Vec3
	Fraction float64
	Collider world.ColliderID
	Actor    world.ActorID
	Hostile  bool
	Barrier  bool
}

// Sweep approximates a swept sphere from `from` to `to` with five parallel
// rays (center plus four radius offsets) and a barrier query along the
// center segment. The nearest fraction wins; ties prefer the barrier. Hits on
// skip are ignored so a collider inside its cooldown window cannot re-trigger.
func Sweep(env *Env, from, to vecmath.Vec3, radius float64, mask uint32, skip world.ColliderID) (Hit, bool) {
	seg := to.Sub(from)
	if seg.IsZero() {
		return Hit{}, false
	}
	dir := seg.Normalize()

	var (
		best  Hit
		found bool
	)

	offsets := [5]vecmath.Vec3{}
	count := 1
	if radius > 0 {
		right, up := vecmath.Basis(dir)
		offsets[1] = right.Scale(radius)
		offsets[2] = right.Scale(-radius)
		offsets[3] = up.Scale(radius)
		offsets[4] = up.Scale(-radius)
		count = 5
	}

	for i := 0; i < count; i++ {
		off := offsets[i]
		rh, ok := env.World.Raycaster.Raycast(from.Add(off), to.Add(off), mask)
		if !ok || (skip != 0 && rh.Collider == skip) || (found && rh.Fraction >= best.Fraction) {
			continue
		}
		normal := rh.Normal.Normalize()
		if normal.IsZero() {
			normal = dir.Scale(-1)
		}
		best = Hit{
			Contact:  from.Add(seg.Scale(rh.Fraction)),
			Point:    rh.Point,
			Normal:   normal,
			Fraction: rh.Fraction,
			Collider: rh.Collider,
			Actor:    rh.Actor,
			Hostile:  rh.Hostile,
		}
		found = true
	}

	if bh, ok := env.World.Barriers.QueryBarrier(from, to, radius, world.DamageKindProjectile); ok && (skip == 0 || bh.Barrier != skip) {
		if !found || bh.Fraction <= best.Fraction {
			normal := bh.Normal.Normalize()
			if normal.IsZero() {
				normal = dir.Scale(-1)
			}
			best = Hit{
				Contact:  from.Add(seg.Scale(bh.Fraction)),
				Point:    bh.Point,
				Normal:   normal,
				Fraction: bh.Fraction,
				Collider: bh.Barrier,
				Barrier:  true,
			}
			found = true
		}
	}
	return best, found
}
