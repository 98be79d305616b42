package app

import (
	"salvo/server/internal/vecmath"
	"salvo/server/internal/world"
)

// DemoArena builds the firing range served by the binary: a floored room with
// hostile dummies, a friendly bystander, a cover box and a shield bubble.
func DemoArena() *world.Arena {
	arena := world.NewArena()

	arena.AddPlane(world.PlaneSpec{Point: vecmath.Vec3{}, Normal: vecmath.Vec3{Y: 1}})
	arena.AddPlane(world.PlaneSpec{Point: vecmath.Vec3{X: 40}, Normal: vecmath.Vec3{X: -1}})
	arena.AddPlane(world.PlaneSpec{Point: vecmath.Vec3{X: -40}, Normal: vecmath.Vec3{X: 1}})
	arena.AddPlane(world.PlaneSpec{Point: vecmath.Vec3{Z: 40}, Normal: vecmath.Vec3{Z: -1}})
	arena.AddPlane(world.PlaneSpec{Point: vecmath.Vec3{Z: -40}, Normal: vecmath.Vec3{Z: 1}})

	for i := 0; i < 4; i++ {
		arena.AddActor(world.ActorSpec{
			Position: vecmath.Vec3{X: 10 + float64(i)*5, Y: 1, Z: float64(i%2)*4 - 2},
			Radius:   0.5,
			Health:   200,
			Hostile:  true,
		})
	}
	arena.AddActor(world.ActorSpec{Position: vecmath.Vec3{X: 8, Y: 1, Z: 8}, Radius: 0.5, Health: 100})

	arena.AddBox(world.BoxSpec{Min: vecmath.Vec3{X: 6, Y: 0, Z: -8}, Max: vecmath.Vec3{X: 7, Y: 3, Z: -4}})
	arena.AddBarrier(world.BarrierSpec{
		Center: vecmath.Vec3{X: 25, Y: 1, Z: 10},
		Radius: 3,
		Blocks: []world.DamageKind{world.DamageKindProjectile, world.DamageKindExplosion},
	})

	arena.SetAim(vecmath.Vec3{Y: 1}, vecmath.Vec3{X: 1})
	return arena
}

// Collaborators wires the arena and an event recorder into the simulation.
func Collaborators(arena *world.Arena, events world.Events) world.Collaborators {
	return world.Collaborators{
		Raycaster: arena,
		Barriers:  arena,
		Anchors:   arena,
		Sink:      arena,
		Events:    events,
		Viewpoint: arena,
	}
}
