package sim

import (
	"sync"

	"salvo/server/internal/vecmath"
	"salvo/server/internal/world"
)

// serializedWorld funnels every collaborator call through one mutex so lanes
// stepping in parallel never reach the world concurrently.
type serializedWorld struct {
	mu    *sync.Mutex
	inner world.Collaborators
}

func serialize(c world.Collaborators) world.Collaborators {
	w := &serializedWorld{mu: &sync.Mutex{}, inner: c.Normalized()}
	return world.Collaborators{
		Raycaster: w,
		Barriers:  w,
		Anchors:   w,
		Sink:      w,
		Events:    w,
		Viewpoint: w,
	}
}

func (w *serializedWorld) Raycast(from, to world.Vec3, mask uint32) (world.RayHit, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inner.Raycaster.Raycast(from, to, mask)
}

func (w *serializedWorld) QueryBarrier(from, to world.Vec3, padding float64, kind world.DamageKind) (world.BarrierHit, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inner.Barriers.QueryBarrier(from, to, padding, kind)
}

func (w *serializedWorld) ColliderTransform(id world.ColliderID) (vecmath.Transform, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inner.Anchors.ColliderTransform(id)
}

func (w *serializedWorld) ApplyDamage(target world.ActorID, amount float64) world.DamageResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inner.Sink.ApplyDamage(target, amount)
}

func (w *serializedWorld) NearestHostile(point world.Vec3, radius float64, exclude world.ActorID) (world.ActorID, world.Vec3, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inner.Sink.NearestHostile(point, radius, exclude)
}

func (w *serializedWorld) ApplyAreaDamage(center world.Vec3, radius, amount float64, exclude world.ActorID) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inner.Sink.ApplyAreaDamage(center, radius, amount, exclude)
}

func (w *serializedWorld) EmitImpact(position, normal, travelDir world.Vec3) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.inner.Events.EmitImpact(position, normal, travelDir)
}

func (w *serializedWorld) EmitDamageDealt(target world.ActorID, snapshot world.DamageSnapshot, knockbackDir world.Vec3, knockbackStrength float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.inner.Events.EmitDamageDealt(target, snapshot, knockbackDir, knockbackStrength)
}

func (w *serializedWorld) EmitExpired(archetype uint32, entity uint64, position world.Vec3) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.inner.Events.EmitExpired(archetype, entity, position)
}

func (w *serializedWorld) AimRay() (world.Vec3, world.Vec3, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inner.Viewpoint.AimRay()
}
