package combat

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"salvo/server/internal/archetype"
	"salvo/server/internal/vecmath"
	"salvo/server/internal/world"
	"salvo/server/internal/world/mocks"
)

func TestPierceThenDestroy(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockDamageSink(ctrl)
	events := world.NewRecorder()
	env := newTestEnv(world.Collaborators{Sink: sink, Events: events})

	arch := compileModules(t, archetype.DefaultPhysics(), archetype.Module{
		Name:   "piercer",
		Pierce: &archetype.PierceConfig{MaxPenetrations: 1, DamageReduction: 0.2},
	})
	e := newEntity(vecmath.V(0, 0, 0), vecmath.V(10, 0, 0), 100)

	gomock.InOrder(
		sink.EXPECT().ApplyDamage(world.ActorID(1), 100.0).Return(world.DamageResult{Applied: 100, Remaining: 50}),
		sink.EXPECT().ApplyDamage(world.ActorID(2), gomock.Any()).DoAndReturn(func(_ world.ActorID, amount float64) world.DamageResult {
			require.InDelta(t, 80, amount, 1e-9)
			return world.DamageResult{Applied: amount, Remaining: 20}
		}),
	)

	first := actorHit(1, vecmath.V(1, 0, 0), vecmath.V(-1, 0, 0), true)
	ApplyHit(env, arch, e, first)
	outcome := Resolve(env, arch, e, first)
	require.Equal(t, archetype.CollisionPierce, outcome.Claimed)
	require.False(t, outcome.Destroyed)
	require.InDelta(t, 80, e.Damage, 1e-9)
	require.Equal(t, 1, e.Penetrations)
	require.True(t, e.Suppressed(first.Collider))
	require.Greater(t, e.Position.X, first.Point.X)

	second := actorHit(2, vecmath.V(3, 0, 0), vecmath.V(-1, 0, 0), true)
	ApplyHit(env, arch, e, second)
	outcome = Resolve(env, arch, e, second)
	require.True(t, outcome.Destroyed)
	require.True(t, e.Released())
	require.Equal(t, 1, e.Penetrations)
	require.Equal(t, 2, e.Hits)
	require.Len(t, events.Damage(), 2)
}

func TestPierceDeclinesNonHostileSurfaces(t *testing.T) {
	env := newTestEnv(world.Collaborators{})
	arch := compileModules(t, archetype.DefaultPhysics(), archetype.Module{
		Pierce: &archetype.PierceConfig{MaxPenetrations: 3, DamageReduction: 0.5},
	})
	e := newEntity(vecmath.Vec3{}, vecmath.V(10, 0, 0), 100)

	outcome := Resolve(env, arch, e, wallHit(9, vecmath.V(1, 0, 0), vecmath.V(-1, 0, 0)))
	if !outcome.Destroyed {
		t.Fatalf("expected wall hit to destroy, got %+v", outcome)
	}
	if e.Penetrations != 0 || e.Damage != 100 {
		t.Fatalf("expected pierce untouched, got pen=%d dmg=%v", e.Penetrations, e.Damage)
	}
}

func TestPierceExitsAlongCenterLine(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockDamageSink(ctrl)
	sink.EXPECT().ApplyDamage(world.ActorID(4), 50.0).Return(world.DamageResult{Applied: 50, Remaining: 50})
	env := newTestEnv(world.Collaborators{Sink: sink})

	physics := archetype.DefaultPhysics()
	physics.Radius = 0.5
	arch := compileModules(t, physics, archetype.Module{
		Pierce: &archetype.PierceConfig{MaxPenetrations: 2},
	})
	e := newEntity(vecmath.V(0, 0, 0), vecmath.V(10, 0, 0), 50)

	// An edge ray grazed the actor half a radius off the flight line.
	hit := Hit{
		Contact:  vecmath.V(2, 0, 0),
		Point:    vecmath.V(2.5, 0.5, 0),
		Normal:   vecmath.V(-1, 0, 0),
		Collider: 4,
		Actor:    4,
		Hostile:  true,
	}
	ApplyHit(env, arch, e, hit)
	outcome := Resolve(env, arch, e, hit)
	require.Equal(t, archetype.CollisionPierce, outcome.Claimed)

	offset := physics.Radius + physics.Nudge
	requireVec(t, vecmath.V(2+offset, 0, 0), e.Position)
}

func TestBounceThenDestroy(t *testing.T) {
	env := newTestEnv(world.Collaborators{})
	arch := compileModules(t, archetype.DefaultPhysics(), archetype.Module{
		Bounce: &archetype.BounceConfig{MaxBounces: 1, Bounciness: 0.8},
	})
	e := newEntity(vecmath.Vec3{}, vecmath.V(10, 0, 0), 10)

	hit := wallHit(5, vecmath.V(2, 0, 0), vecmath.V(-1, 0, 0))
	outcome := Resolve(env, arch, e, hit)
	require.Equal(t, archetype.CollisionBounce, outcome.Claimed)
	requireVec(t, vecmath.V(-8, 0, 0), e.Velocity)
	require.Equal(t, 1, e.Bounces)
	require.Less(t, e.Position.X, hit.Contact.X)

	outcome = Resolve(env, arch, e, wallHit(6, vecmath.V(-2, 0, 0), vecmath.V(1, 0, 0)))
	require.True(t, outcome.Destroyed)
	require.Equal(t, 1, e.Bounces)
}

func TestUnclaimedHitWithoutDestroyArmsCooldown(t *testing.T) {
	env := newTestEnv(world.Collaborators{})
	physics := archetype.DefaultPhysics()
	physics.DestroyOnImpact = false
	arch := compileModules(t, physics)
	e := newEntity(vecmath.Vec3{}, vecmath.V(10, 0, 0), 10)

	hit := wallHit(4, vecmath.V(1, 0, 0), vecmath.V(-1, 0, 0))
	outcome := Resolve(env, arch, e, hit)
	if outcome.Destroyed || outcome.Claimed != 0 {
		t.Fatalf("expected survival without claim, got %+v", outcome)
	}
	if !e.Suppressed(4) {
		t.Fatalf("expected cooldown armed against collider 4")
	}
}

func TestExplodeNeverClaims(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockDamageSink(ctrl)
	env := newTestEnv(world.Collaborators{Sink: sink})

	arch := compileModules(t, archetype.DefaultPhysics(), archetype.Module{
		Explosive: &archetype.ExplosiveConfig{Radius: 3, DamageMultiplier: 1.5},
	})
	e := newEntity(vecmath.Vec3{}, vecmath.V(10, 0, 0), 20)
	hit := wallHit(3, vecmath.V(1, 0, 0), vecmath.V(-1, 0, 0))

	sink.EXPECT().ApplyAreaDamage(hit.Point, 3.0, 30.0, world.ActorID(0)).Return(2)

	var exploded int
	env.Hooks.Explosion = func(_ projectileID, _ vecmath.Vec3, _, _ float64, hits int) { exploded = hits }

	outcome := Resolve(env, arch, e, hit)
	require.True(t, outcome.Destroyed)
	require.Zero(t, outcome.Claimed)
	require.Equal(t, 2, exploded)
}

func TestClaimStopsTheWalk(t *testing.T) {
	ctrl := gomock.NewController(t)
	// No ApplyAreaDamage expectation: the explosion must not run.
	sink := mocks.NewMockDamageSink(ctrl)
	env := newTestEnv(world.Collaborators{Sink: sink})

	arch := compileModules(t, archetype.DefaultPhysics(),
		archetype.Module{Explosive: &archetype.ExplosiveConfig{Radius: 2}},
		archetype.Module{Bounce: &archetype.BounceConfig{MaxBounces: 2, Bounciness: 1}},
	)
	e := newEntity(vecmath.Vec3{}, vecmath.V(0, -5, 0), 10)
	outcome := Resolve(env, arch, e, wallHit(2, vecmath.V(0, -1, 0), vecmath.V(0, 1, 0)))
	require.Equal(t, archetype.CollisionBounce, outcome.Claimed)
}

func TestStickyLifecycleRunsPendingOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	arena := world.NewArena()
	target := arena.AddActor(world.ActorSpec{Position: vecmath.V(1, 0, 0), Radius: 0.5, Health: 100, Hostile: true})
	sink := mocks.NewMockDamageSink(ctrl)
	env := newTestEnv(world.Collaborators{Anchors: arena, Sink: sink})

	var adhesion []bool
	env.Hooks.Adhesion = func(_ projectileID, _ world.ColliderID, attached bool) {
		adhesion = append(adhesion, attached)
	}

	arch := compileModules(t, archetype.DefaultPhysics(), archetype.Module{
		Sticky:    &archetype.StickyConfig{Duration: 1.5},
		Explosive: &archetype.ExplosiveConfig{Radius: 3},
	})
	velocity := vecmath.V(5, 0, 0)
	e := newEntity(vecmath.Vec3{}, velocity, 40)
	hit := actorHit(target, vecmath.V(0.5, 0, 0), vecmath.V(-1, 0, 0), true)

	outcome := Resolve(env, arch, e, hit)
	require.Equal(t, archetype.CollisionSticky, outcome.Claimed)
	require.True(t, e.Stuck())
	require.Equal(t, archetype.CollisionExplode, e.Pending)
	require.True(t, e.Velocity.IsZero())
	require.InDelta(t, 1.5, e.Adhesion.Remaining, 1e-9)

	require.True(t, arena.MoveActor(target, vecmath.V(1, 2, 0)))
	Follow(env, e)
	requireVec(t, hit.Contact.Add(vecmath.V(0, 2, 0)), e.Position)

	sink.EXPECT().ApplyAreaDamage(gomock.Any(), 3.0, 40.0, world.ActorID(0)).Return(1).Times(1)
	outcome = Detach(env, arch, e)
	require.False(t, e.Stuck())
	requireVec(t, velocity, e.Velocity)
	require.Less(t, e.Position.X, hit.Contact.X)
	require.True(t, outcome.Destroyed)
	require.Zero(t, e.Pending)

	// A second detach is a no-op: the pending action already ran.
	require.Equal(t, Outcome{}, Detach(env, arch, e))
	require.Equal(t, []bool{true, false}, adhesion)
}

func TestStickyResumesPierceAfterDetach(t *testing.T) {
	arena := world.NewArena()
	target := arena.AddActor(world.ActorSpec{Position: vecmath.V(1, 0, 0), Radius: 0.5, Health: 100, Hostile: true})
	env := newTestEnv(world.Collaborators{Anchors: arena})

	arch := compileModules(t, archetype.DefaultPhysics(), archetype.Module{
		Pierce: &archetype.PierceConfig{MaxPenetrations: 1, DamageReduction: 0.5},
		Sticky: &archetype.StickyConfig{Duration: 1},
	})
	e := newEntity(vecmath.Vec3{}, vecmath.V(5, 0, 0), 40)
	hit := actorHit(target, vecmath.V(0.5, 0, 0), vecmath.V(-1, 0, 0), true)

	Resolve(env, arch, e, hit)
	require.Equal(t, archetype.CollisionPierce, e.Pending)

	outcome := Detach(env, arch, e)
	require.Equal(t, archetype.CollisionPierce, outcome.Claimed)
	require.False(t, outcome.Destroyed)
	require.Equal(t, 1, e.Penetrations)
	require.InDelta(t, 20, e.Damage, 1e-9)
}

func TestStickyDeclinesBarriers(t *testing.T) {
	env := newTestEnv(world.Collaborators{Anchors: world.NewArena()})
	arch := compileModules(t, archetype.DefaultPhysics(), archetype.Module{
		Sticky: &archetype.StickyConfig{Duration: 1},
	})
	e := newEntity(vecmath.Vec3{}, vecmath.V(5, 0, 0), 40)
	hit := wallHit(8, vecmath.V(1, 0, 0), vecmath.V(-1, 0, 0))
	hit.Barrier = true

	outcome := Resolve(env, arch, e, hit)
	if e.Stuck() || !outcome.Destroyed {
		t.Fatalf("expected barrier to destroy without adhesion, got %+v", outcome)
	}
}

func TestOpFaultIsDeclined(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockDamageSink(ctrl)
	env := newTestEnv(world.Collaborators{Sink: sink})

	var stages []string
	env.Hooks.OpFault = func(stage string, _ projectileID, recovered any) {
		stages = append(stages, stage)
		require.Equal(t, "boom", FaultError(recovered).Error())
	}

	arch := compileModules(t, archetype.DefaultPhysics(), archetype.Module{
		Explosive: &archetype.ExplosiveConfig{Radius: 1},
	})
	sink.EXPECT().ApplyAreaDamage(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(vecmath.Vec3, float64, float64, world.ActorID) int { panic("boom") })

	e := newEntity(vecmath.Vec3{}, vecmath.V(1, 0, 0), 5)
	outcome := Resolve(env, arch, e, wallHit(1, vecmath.V(1, 0, 0), vecmath.V(-1, 0, 0)))
	require.True(t, outcome.Destroyed)
	require.Equal(t, []string{"collision.explode"}, stages)
}
