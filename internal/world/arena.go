package world

import (
	"math"
	"sync"

	"salvo/server/internal/vecmath"
)

// Layer bits used by arena colliders. A zero query mask matches every layer.
const (
	LayerStatic uint32 = 1 << iota
	LayerActor
)

// ActorSpec describes a spherical actor placed in the arena.
type ActorSpec struct {
	Position Vec3
	Radius   float64
	Health   float64
	Hostile  bool
}

// BoxSpec describes an axis-aligned static box.
type BoxSpec struct {
	Min Vec3
	Max Vec3
}

// PlaneSpec describes an infinite one-sided wall facing along Normal.
type PlaneSpec struct {
	Point  Vec3
	Normal Vec3
}

// BarrierSpec describes a spherical shield that blocks projectiles without
// being part of the physical world.
type BarrierSpec struct {
	Center Vec3
	Radius float64
	Blocks []DamageKind
}

type arenaActor struct {
	id      uint64
	frame   vecmath.Transform
	radius  float64
	hostile bool
	health  HealthState
}

type arenaBox struct {
	id  uint64
	min Vec3
	max Vec3
}

type arenaPlane struct {
	id     uint64
	point  Vec3
	normal Vec3
}

type arenaBarrier struct {
	id     uint64
	center Vec3
	radius float64
	blocks []DamageKind
}

// Arena is an in-memory world implementing every simulation collaborator
// except Events. It backs the server binary, the profiler and tests.
type Arena struct {
	mu       sync.RWMutex
	nextID   uint64
	actors   map[uint64]*arenaActor
	order    []*arenaActor
	boxes    []arenaBox
	planes   []arenaPlane
	barriers []arenaBarrier

	aimOrigin Vec3
	aimDir    Vec3
	aimSet    bool
}

// NewArena constructs an empty arena.
func NewArena() *Arena {
	return &Arena{actors: make(map[uint64]*arenaActor)}
}

func (a *Arena) allocateID() uint64 {
	a.nextID++
	return a.nextID
}

// AddActor places an actor and returns its id, valid as both ActorID and
// ColliderID.
func (a *Arena) AddActor(spec ActorSpec) ActorID {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.allocateID()
	radius := spec.Radius
	if radius <= 0 {
		radius = 0.5
	}
	actor := &arenaActor{
		id:      id,
		frame:   vecmath.Identity(spec.Position),
		radius:  radius,
		hostile: spec.Hostile,
	}
	actor.health.SetHealth(spec.Health)
	a.actors[id] = actor
	a.order = append(a.order, actor)
	return ActorID(id)
}

// AddBox places a static axis-aligned box.
func (a *Arena) AddBox(spec BoxSpec) ColliderID {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.allocateID()
	minV := Vec3{X: math.Min(spec.Min.X, spec.Max.X), Y: math.Min(spec.Min.Y, spec.Max.Y), Z: math.Min(spec.Min.Z, spec.Max.Z)}
	maxV := Vec3{X: math.Max(spec.Min.X, spec.Max.X), Y: math.Max(spec.Min.Y, spec.Max.Y), Z: math.Max(spec.Min.Z, spec.Max.Z)}
	a.boxes = append(a.boxes, arenaBox{id: id, min: minV, max: maxV})
	return ColliderID(id)
}

// AddPlane places an infinite wall.
func (a *Arena) AddPlane(spec PlaneSpec) ColliderID {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.allocateID()
	normal := spec.Normal.Normalize()
	if normal.IsZero() {
		normal = Vec3{Y: 1}
	}
	a.planes = append(a.planes, arenaPlane{id: id, point: spec.Point, normal: normal})
	return ColliderID(id)
}

// AddBarrier places a shield volume.
func (a *Arena) AddBarrier(spec BarrierSpec) ColliderID {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.allocateID()
	blocks := append([]DamageKind(nil), spec.Blocks...)
	a.barriers = append(a.barriers, arenaBarrier{id: id, center: spec.Center, radius: spec.Radius, blocks: blocks})
	return ColliderID(id)
}

// MoveActor teleports an actor. It returns false for unknown ids.
func (a *Arena) MoveActor(id ActorID, position Vec3) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	actor, ok := a.actors[uint64(id)]
	if !ok {
		return false
	}
	actor.frame.Origin = position
	return true
}

// SetActorFrame replaces an actor's full transform, including orientation.
func (a *Arena) SetActorFrame(id ActorID, frame vecmath.Transform) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	actor, ok := a.actors[uint64(id)]
	if !ok {
		return false
	}
	actor.frame = frame
	return true
}

// RemoveActor deletes an actor, invalidating any reference to it.
func (a *Arena) RemoveActor(id ActorID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.actors[uint64(id)]; !ok {
		return
	}
	delete(a.actors, uint64(id))
	kept := a.order[:0]
	for _, actor := range a.order {
		if actor.id != uint64(id) {
			kept = append(kept, actor)
		}
	}
	a.order = kept
}

// Health returns an actor's current health.
func (a *Arena) Health(id ActorID) (float64, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	actor, ok := a.actors[uint64(id)]
	if !ok {
		return 0, false
	}
	return actor.health.Health, true
}

// SetAim configures the viewpoint aim ray.
func (a *Arena) SetAim(origin, dir Vec3) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.aimOrigin = origin
	a.aimDir = dir.Normalize()
	a.aimSet = !a.aimDir.IsZero()
}

// AimRay implements Viewpoint.
func (a *Arena) AimRay() (Vec3, Vec3, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.aimOrigin, a.aimDir, a.aimSet
}

// Raycast implements Raycaster. Shapes that already contain the segment start
// are ignored so a projectile nudged into a volume can leave it.
func (a *Arena) Raycast(from, to Vec3, mask uint32) (RayHit, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	seg := to.Sub(from)
	if seg.IsZero() {
		return RayHit{}, false
	}

	best := RayHit{Fraction: math.Inf(1)}
	found := false
	consider := func(hit RayHit) {
		if hit.Fraction < best.Fraction {
			best = hit
			found = true
		}
	}

	if mask == 0 || mask&LayerStatic != 0 {
		for _, p := range a.planes {
			if t, ok := segmentPlane(from, seg, p.point, p.normal); ok {
				consider(RayHit{Point: from.Add(seg.Scale(t)), Normal: p.normal, Fraction: t, Collider: ColliderID(p.id)})
			}
		}
		for _, b := range a.boxes {
			if t, n, ok := segmentBox(from, seg, b.min, b.max); ok {
				consider(RayHit{Point: from.Add(seg.Scale(t)), Normal: n, Fraction: t, Collider: ColliderID(b.id)})
			}
		}
	}
	if mask == 0 || mask&LayerActor != 0 {
		for _, actor := range a.order {
			if !actor.health.Alive() {
				continue
			}
			if t, ok := segmentSphere(from, seg, actor.frame.Origin, actor.radius); ok {
				point := from.Add(seg.Scale(t))
				consider(RayHit{
					Point:    point,
					Normal:   point.Sub(actor.frame.Origin).Normalize(),
					Fraction: t,
					Collider: ColliderID(actor.id),
					Actor:    ActorID(actor.id),
					Hostile:  actor.hostile,
				})
			}
		}
	}
	return best, found
}

// QueryBarrier implements Barriers. Padding inflates every barrier radius.
func (a *Arena) QueryBarrier(from, to Vec3, padding float64, kind DamageKind) (BarrierHit, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	seg := to.Sub(from)
	if seg.IsZero() {
		return BarrierHit{}, false
	}
	best := BarrierHit{Fraction: math.Inf(1)}
	found := false
	for _, b := range a.barriers {
		if !barrierBlocks(b.blocks, kind) {
			continue
		}
		t, ok := segmentSphere(from, seg, b.center, b.radius+padding)
		if !ok || t >= best.Fraction {
			continue
		}
		point := from.Add(seg.Scale(t))
		best = BarrierHit{Point: point, Normal: point.Sub(b.center).Normalize(), Fraction: t, Barrier: ColliderID(b.id)}
		found = true
	}
	return best, found
}

// ColliderTransform implements Anchors. Static colliders report an identity
// frame at their reference point.
func (a *Arena) ColliderTransform(id ColliderID) (vecmath.Transform, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if actor, ok := a.actors[uint64(id)]; ok {
		return actor.frame, true
	}
	for _, b := range a.boxes {
		if b.id == uint64(id) {
			return vecmath.Identity(b.min), true
		}
	}
	for _, p := range a.planes {
		if p.id == uint64(id) {
			return vecmath.Identity(p.point), true
		}
	}
	return vecmath.Transform{}, false
}

// ApplyDamage implements DamageSink.
func (a *Arena) ApplyDamage(target ActorID, amount float64) DamageResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	actor, ok := a.actors[uint64(target)]
	if !ok {
		return DamageResult{}
	}
	return actor.health.ApplyDamage(amount)
}

// NearestHostile implements DamageSink. Distance is measured to the actor
// surface; ties resolve to the lower id.
func (a *Arena) NearestHostile(point Vec3, radius float64, exclude ActorID) (ActorID, Vec3, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if radius <= 0 {
		return 0, Vec3{}, false
	}
	var bestActor *arenaActor
	bestDist := math.Inf(1)
	for _, actor := range a.order {
		if !actor.hostile || !actor.health.Alive() || ActorID(actor.id) == exclude {
			continue
		}
		dist := actor.frame.Origin.Sub(point).Len() - actor.radius
		if dist > radius || dist >= bestDist {
			continue
		}
		bestDist = dist
		bestActor = actor
	}
	if bestActor == nil {
		return 0, Vec3{}, false
	}
	return ActorID(bestActor.id), bestActor.frame.Origin, true
}

// ApplyAreaDamage implements DamageSink and returns the number of actors hit.
func (a *Arena) ApplyAreaDamage(center Vec3, radius, amount float64, exclude ActorID) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if radius <= 0 || amount <= 0 {
		return 0
	}
	hits := 0
	for _, actor := range a.order {
		if !actor.hostile || !actor.health.Alive() || ActorID(actor.id) == exclude {
			continue
		}
		if actor.frame.Origin.Sub(center).Len()-actor.radius > radius {
			continue
		}
		if res := actor.health.ApplyDamage(amount); res.Applied > 0 {
			hits++
		}
	}
	return hits
}

func barrierBlocks(blocks []DamageKind, kind DamageKind) bool {
	if len(blocks) == 0 {
		return true
	}
	for _, b := range blocks {
		if b == kind {
			return true
		}
	}
	return false
}

// segmentSphere returns the entry fraction of from+seg*t into the sphere.
// Segments starting inside the sphere report no hit.
func segmentSphere(from, seg, center Vec3, radius float64) (float64, bool) {
	m := from.Sub(center)
	c := m.LenSq() - radius*radius
	if c <= 0 {
		return 0, false
	}
	a := seg.LenSq()
	b := m.Dot(seg)
	if b > 0 {
		return 0, false
	}
	disc := b*b - a*c
	if disc < 0 {
		return 0, false
	}
	t := (-b - math.Sqrt(disc)) / a
	if t < 0 || t > 1 {
		return 0, false
	}
	return t, true
}

// segmentPlane intersects a segment with the front face of a plane.
func segmentPlane(from, seg, point, normal Vec3) (float64, bool) {
	denom := seg.Dot(normal)
	if denom >= 0 {
		return 0, false
	}
	dist := from.Sub(point).Dot(normal)
	if dist < 0 {
		return 0, false
	}
	t := -dist / denom
	if t < 0 || t > 1 {
		return 0, false
	}
	return t, true
}

// segmentBox intersects a segment with an AABB using the slab method and
// reports the entry face normal.
func segmentBox(from, seg, minV, maxV Vec3) (float64, Vec3, bool) {
	tMin, tMax := 0.0, 1.0
	var normal Vec3
	origin := [3]float64{from.X, from.Y, from.Z}
	dir := [3]float64{seg.X, seg.Y, seg.Z}
	lo := [3]float64{minV.X, minV.Y, minV.Z}
	hi := [3]float64{maxV.X, maxV.Y, maxV.Z}
	inside := true
	for axis := 0; axis < 3; axis++ {
		if origin[axis] < lo[axis] || origin[axis] > hi[axis] {
			inside = false
		}
		if math.Abs(dir[axis]) < vecmath.Epsilon {
			if origin[axis] < lo[axis] || origin[axis] > hi[axis] {
				return 0, Vec3{}, false
			}
			continue
		}
		inv := 1.0 / dir[axis]
		t1 := (lo[axis] - origin[axis]) * inv
		t2 := (hi[axis] - origin[axis]) * inv
		sign := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1.0
		}
		if t1 > tMin {
			tMin = t1
			normal = Vec3{}
			switch axis {
			case 0:
				normal.X = sign
			case 1:
				normal.Y = sign
			case 2:
				normal.Z = sign
			}
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return 0, Vec3{}, false
		}
	}
	if inside || normal.IsZero() {
		return 0, Vec3{}, false
	}
	return tMin, normal, true
}
