package combat

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"pgregory.net/rapid"

	"salvo/server/internal/archetype"
	"salvo/server/internal/vecmath"
	"salvo/server/internal/world"
	"salvo/server/internal/world/mocks"
)

func metronomeArchetype(t tester, increment, maxMultiplier, resetDelay float64) *archetype.Archetype {
	return compileModules(t, archetype.DefaultPhysics(), archetype.Module{
		Steps: []archetype.DamageStepConfig{{
			Kind:          archetype.StepMetronome,
			ParamA:        increment,
			ParamB:        maxMultiplier,
			ResetDelay:    resetDelay,
			ResetOnReload: true,
		}},
	})
}

func TestSpeedScaleAddsDamageAndKnockback(t *testing.T) {
	env := newTestEnv(world.Collaborators{})
	arch := compileModules(t, archetype.DefaultPhysics(), archetype.Module{
		Steps: []archetype.DamageStepConfig{{Kind: archetype.StepSpeedScale, ParamA: 0.5, ParamB: 0.1}},
	})
	e := newEntity(vecmath.Vec3{}, vecmath.V(6, 8, 0), 10)

	damage, knockback := RunPreSteps(env, arch, e, 3)
	if math.Abs(damage-15) > 1e-9 {
		t.Fatalf("expected damage 15, got %v", damage)
	}
	if math.Abs(knockback-2) > 1e-9 {
		t.Fatalf("expected knockback 2, got %v", knockback)
	}
	if e.Damage != 10 {
		t.Fatalf("expected entity damage untouched, got %v", e.Damage)
	}
}

func TestCritChance(t *testing.T) {
	always := compileModules(t, archetype.DefaultPhysics(), archetype.Module{
		Steps: []archetype.DamageStepConfig{{Kind: archetype.StepCritChance, ParamA: 1, ParamB: 2}},
	})
	never := compileModules(t, archetype.DefaultPhysics(), archetype.Module{
		Steps: []archetype.DamageStepConfig{{Kind: archetype.StepCritChance, ParamA: 0, ParamB: 2}},
	})

	t.Run("certain crit", func(t *testing.T) {
		e := newEntity(vecmath.Vec3{}, vecmath.V(1, 0, 0), 10)
		damage, _ := RunPreSteps(newTestEnv(world.Collaborators{}), always, e, 1)
		require.InDelta(t, 20, damage, 1e-9)
		require.True(t, e.Crit)
		require.Equal(t, 2.0, e.CritMultiplier)
	})

	t.Run("zero chance", func(t *testing.T) {
		e := newEntity(vecmath.Vec3{}, vecmath.V(1, 0, 0), 10)
		damage, _ := RunPreSteps(newTestEnv(world.Collaborators{}), never, e, 1)
		require.InDelta(t, 10, damage, 1e-9)
		require.False(t, e.Crit)
	})

	t.Run("no random stream", func(t *testing.T) {
		e := newEntity(vecmath.Vec3{}, vecmath.V(1, 0, 0), 10)
		env := NewEnv(world.Collaborators{}, nil, Hooks{})
		damage, _ := RunPreSteps(env, always, e, 1)
		require.InDelta(t, 10, damage, 1e-9)
	})

	t.Run("miss clears flags", func(t *testing.T) {
		e := newEntity(vecmath.Vec3{}, vecmath.V(1, 0, 0), 10)
		e.Crit, e.CritMultiplier = true, 3
		RegisterMiss(newTestEnv(world.Collaborators{}), always, e)
		require.False(t, e.Crit)
		require.Zero(t, e.CritMultiplier)
	})
}

func TestMetronomeStreak(t *testing.T) {
	env := newTestEnv(world.Collaborators{})
	arch := metronomeArchetype(t, 0.25, 1.6, 1)
	e := newEntity(vecmath.Vec3{}, vecmath.V(1, 0, 0), 10)

	hit := func(now float64, target world.ActorID) float64 {
		env.Now = now
		damage, _ := RunPreSteps(env, arch, e, target)
		return damage / 10
	}

	require.InDelta(t, 1.0, hit(0, 7), 1e-9)
	require.InDelta(t, 1.25, hit(0.5, 7), 1e-9)
	require.InDelta(t, 1.5, hit(1.0, 7), 1e-9)
	// 1.75 would exceed the cap, so the streak holds.
	require.InDelta(t, 1.5, hit(1.5, 7), 1e-9)

	require.InDelta(t, 1.0, hit(1.6, 8), 1e-9, "different target resets")
	require.InDelta(t, 1.25, hit(1.7, 8), 1e-9)

	require.InDelta(t, 1.0, hit(5, 8), 1e-9, "timeout resets")
	require.InDelta(t, 1.25, hit(5.1, 8), 1e-9)

	env.Now = 5.2
	RegisterMiss(env, arch, e)
	require.InDelta(t, 1.0, hit(5.3, 8), 1e-9, "miss resets")
	require.InDelta(t, 1.25, hit(5.4, 8), 1e-9)

	require.Equal(t, 1, arch.ResetOnReload())
	require.InDelta(t, 1.0, hit(5.5, 8), 1e-9, "reload resets")
}

func TestMetronomeWithoutResetDelayNeverTimesOut(t *testing.T) {
	env := newTestEnv(world.Collaborators{})
	arch := metronomeArchetype(t, 0.5, 3, 0)
	e := newEntity(vecmath.Vec3{}, vecmath.V(1, 0, 0), 1)

	for i, now := range []float64{0, 100, 1000} {
		env.Now = now
		damage, _ := RunPreSteps(env, arch, e, 4)
		want := 1 + 0.5*float64(i)
		if math.Abs(damage-want) > 1e-9 {
			t.Fatalf("hit %d: expected %v, got %v", i, want, damage)
		}
	}
}

func TestMetronomeIsMonotonicAndCapped(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		increment := rapid.Float64Range(0, 1).Draw(t, "increment")
		maxMultiplier := rapid.Float64Range(1, 4).Draw(t, "max")
		hits := rapid.IntRange(1, 30).Draw(t, "hits")

		env := NewEnv(world.Collaborators{}, nil, Hooks{})
		arch := metronomeArchetype(t, increment, maxMultiplier, 1)
		e := newEntity(vecmath.Vec3{}, vecmath.V(1, 0, 0), 1)

		previous := 0.0
		for i := 0; i < hits; i++ {
			env.Now = float64(i) * 0.5
			multiplier, _ := RunPreSteps(env, arch, e, 11)
			if multiplier < previous-1e-12 {
				t.Fatalf("multiplier decreased from %v to %v", previous, multiplier)
			}
			if multiplier > maxMultiplier+1e-9 {
				t.Fatalf("multiplier %v exceeds cap %v", multiplier, maxMultiplier)
			}
			previous = multiplier
		}
	})
}

func TestOverkillTransfersExactRemainder(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockDamageSink(ctrl)
	events := world.NewRecorder()
	env := newTestEnv(world.Collaborators{Sink: sink, Events: events})

	arch := compileModules(t, archetype.DefaultPhysics(), archetype.Module{
		Steps: []archetype.DamageStepConfig{{Kind: archetype.StepOverkillTransfer, ParamA: 6}},
	})
	e := newEntity(vecmath.Vec3{}, vecmath.V(1, 0, 0), 30)
	hit := actorHit(1, vecmath.V(1, 0, 0), vecmath.V(-1, 0, 0), true)

	var transferred float64
	env.Hooks.Overkill = func(_ projectileID, source, target world.ActorID, amount float64) {
		require.Equal(t, world.ActorID(1), source)
		require.Equal(t, world.ActorID(2), target)
		transferred = amount
	}

	gomock.InOrder(
		sink.EXPECT().ApplyDamage(world.ActorID(1), 30.0).Return(world.DamageResult{Applied: 20, Overkill: 10, Killed: true}),
		sink.EXPECT().NearestHostile(hit.Point, 6.0, world.ActorID(1)).Return(world.ActorID(2), vecmath.V(4, 0, 0), true),
		sink.EXPECT().ApplyDamage(world.ActorID(2), 10.0).Return(world.DamageResult{Applied: 10, Remaining: 5}),
	)

	outcome := ApplyHit(env, arch, e, hit)
	require.Equal(t, world.ActorID(2), outcome.TransferTarget)
	require.Equal(t, 10.0, outcome.TransferAmount)
	require.Equal(t, 10.0, transferred)

	damage := events.Damage()
	require.Len(t, damage, 2)
	require.False(t, damage[0].Snapshot.Overkill)
	require.True(t, damage[1].Snapshot.Overkill)
	require.Equal(t, world.ActorID(2), damage[1].Target)
}

func TestOverkillIsSilentWithoutRemainderOrCandidate(t *testing.T) {
	arch := compileModules(t, archetype.DefaultPhysics(), archetype.Module{
		Steps: []archetype.DamageStepConfig{{Kind: archetype.StepOverkillTransfer, ParamA: 6}},
	})
	hit := actorHit(1, vecmath.V(1, 0, 0), vecmath.V(-1, 0, 0), true)

	t.Run("no overkill", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sink := mocks.NewMockDamageSink(ctrl)
		env := newTestEnv(world.Collaborators{Sink: sink})
		sink.EXPECT().ApplyDamage(world.ActorID(1), 10.0).Return(world.DamageResult{Applied: 10, Remaining: 40})

		outcome := ApplyHit(env, arch, newEntity(vecmath.Vec3{}, vecmath.V(1, 0, 0), 10), hit)
		require.Zero(t, outcome.TransferTarget)
	})

	t.Run("no candidate", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sink := mocks.NewMockDamageSink(ctrl)
		env := newTestEnv(world.Collaborators{Sink: sink})
		sink.EXPECT().ApplyDamage(world.ActorID(1), 10.0).Return(world.DamageResult{Applied: 4, Overkill: 6, Killed: true})
		sink.EXPECT().NearestHostile(gomock.Any(), 6.0, world.ActorID(1)).Return(world.ActorID(0), vecmath.Vec3{}, false)

		outcome := ApplyHit(env, arch, newEntity(vecmath.Vec3{}, vecmath.V(1, 0, 0), 10), hit)
		require.Zero(t, outcome.TransferTarget)
		require.Zero(t, outcome.TransferAmount)
	})
}

func TestStepPanicIsSkipped(t *testing.T) {
	arch := compileModules(t, archetype.DefaultPhysics(), archetype.Module{
		Steps: []archetype.DamageStepConfig{
			{Kind: archetype.StepCritChance, ParamA: 1, ParamB: 2, Priority: 1},
			{Kind: archetype.StepSpeedScale, ParamA: 1},
		},
	})
	// A nil stream never panics, so inject one that does via a broken source.
	env := NewEnv(world.Collaborators{}, rand.New(panicSource{}), Hooks{})
	var faults int
	env.Hooks.OpFault = func(string, projectileID, any) { faults++ }

	e := newEntity(vecmath.Vec3{}, vecmath.V(3, 0, 0), 10)
	damage, _ := RunPreSteps(env, arch, e, 1)
	require.Equal(t, 1, faults)
	require.InDelta(t, 13, damage, 1e-9)
}

type panicSource struct{}

func (panicSource) Int63() int64 { panic("entropy exhausted") }
func (panicSource) Seed(int64)   {}
