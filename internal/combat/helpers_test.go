package combat

import (
	"math/rand"

	"github.com/stretchr/testify/require"

	"salvo/server/internal/archetype"
	"salvo/server/internal/projectile"
	"salvo/server/internal/vecmath"
	"salvo/server/internal/world"
)

type projectileID = projectile.EntityID

// tester is satisfied by *testing.T and *rapid.T.
type tester interface {
	Helper()
	Errorf(format string, args ...any)
	FailNow()
}

func compileModules(t tester, physics archetype.Physics, modules ...archetype.Module) *archetype.Archetype {
	t.Helper()
	providers := make([]any, 0, len(modules))
	for _, m := range modules {
		providers = append(providers, m)
	}
	result := archetype.Compile("test", physics, providers)
	require.Empty(t, result.Warnings)
	require.NotNil(t, result.Archetype)
	return result.Archetype
}

func newTestEnv(collaborators world.Collaborators) *Env {
	return NewEnv(collaborators, rand.New(rand.NewSource(1)), Hooks{})
}

func newEntity(position, velocity vecmath.Vec3, damage float64) *projectile.Entity {
	return &projectile.Entity{
		ID:           1,
		Position:     position,
		PrevPosition: position,
		Velocity:     velocity,
		Damage:       damage,
		Life:         5,
		InitialSpeed: velocity.Len(),
	}
}

func actorHit(actor world.ActorID, point, normal vecmath.Vec3, hostile bool) Hit {
	return Hit{
		Contact:  point.Add(normal.Scale(0.05)),
		Point:    point,
		Normal:   normal,
		Collider: world.ColliderID(actor),
		Actor:    actor,
		Hostile:  hostile,
	}
}

func wallHit(collider world.ColliderID, point, normal vecmath.Vec3) Hit {
	return Hit{
		Contact:  point.Add(normal.Scale(0.05)),
		Point:    point,
		Normal:   normal,
		Collider: collider,
	}
}

func requireVec(t tester, want, got vecmath.Vec3) {
	t.Helper()
	require.InDelta(t, want.X, got.X, 1e-9, "x")
	require.InDelta(t, want.Y, got.Y, 1e-9, "y")
	require.InDelta(t, want.Z, got.Z, 1e-9, "z")
}
