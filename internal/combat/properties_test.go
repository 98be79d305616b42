package combat

import (
	"math"
	"testing"

	"pgregory.net/rapid"

	"salvo/server/internal/archetype"
	"salvo/server/internal/vecmath"
	"salvo/server/internal/world"
)

func TestPierceDecayFollowsPower(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		maxPen := rapid.IntRange(1, 6).Draw(t, "maxPenetrations")
		reduction := rapid.Float64Range(0, 0.9).Draw(t, "reduction")
		start := rapid.Float64Range(1, 500).Draw(t, "damage")

		env := NewEnv(world.Collaborators{}, nil, Hooks{})
		arch := compileModules(t, archetype.DefaultPhysics(), archetype.Module{
			Pierce: &archetype.PierceConfig{MaxPenetrations: maxPen, DamageReduction: reduction},
		})
		e := newEntity(vecmath.Vec3{}, vecmath.V(10, 0, 0), start)

		for n := 1; n <= maxPen; n++ {
			hit := actorHit(world.ActorID(n), e.Position.Add(vecmath.V(1, 0, 0)), vecmath.V(-1, 0, 0), true)
			outcome := Resolve(env, arch, e, hit)
			if outcome.Claimed != archetype.CollisionPierce {
				t.Fatalf("penetration %d not claimed: %+v", n, outcome)
			}
			want := start * math.Pow(1-reduction, float64(n))
			if math.Abs(e.Damage-want) > 1e-9*start {
				t.Fatalf("after %d penetrations expected %v, got %v", n, want, e.Damage)
			}
		}

		hit := actorHit(world.ActorID(maxPen+1), e.Position.Add(vecmath.V(1, 0, 0)), vecmath.V(-1, 0, 0), true)
		if outcome := Resolve(env, arch, e, hit); !outcome.Destroyed {
			t.Fatalf("expected destruction past the cap, got %+v", outcome)
		}
		if e.Penetrations != maxPen {
			t.Fatalf("expected %d penetrations, got %d", maxPen, e.Penetrations)
		}
	})
}

func TestBounceCapAndSpeed(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		maxBounces := rapid.IntRange(1, 8).Draw(t, "maxBounces")
		bounciness := rapid.Float64Range(0.1, 1).Draw(t, "bounciness")
		speed := rapid.Float64Range(1, 100).Draw(t, "speed")
		attempts := rapid.IntRange(1, 12).Draw(t, "attempts")

		env := NewEnv(world.Collaborators{}, nil, Hooks{})
		arch := compileModules(t, archetype.DefaultPhysics(), archetype.Module{
			Bounce: &archetype.BounceConfig{MaxBounces: maxBounces, Bounciness: bounciness},
		})
		e := newEntity(vecmath.Vec3{}, vecmath.V(speed, 0, 0), 1)

		for i := 0; i < attempts && !e.Released(); i++ {
			normal := vecmath.V(-1, 0, 0)
			if e.Velocity.X < 0 {
				normal = vecmath.V(1, 0, 0)
			}
			before := e.Velocity
			outcome := Resolve(env, arch, e, wallHit(world.ColliderID(i+1), e.Position, normal))
			if e.Bounces > maxBounces {
				t.Fatalf("bounces %d exceed cap %d", e.Bounces, maxBounces)
			}
			if outcome.Claimed != archetype.CollisionBounce {
				continue
			}
			if math.Abs(e.Speed()-before.Len()*bounciness) > 1e-9*speed {
				t.Fatalf("expected speed %v, got %v", before.Len()*bounciness, e.Speed())
			}
			if e.Velocity.X*before.X > 0 {
				t.Fatalf("expected reflected direction, got %+v from %+v", e.Velocity, before)
			}
		}
		if attempts > maxBounces && !e.Released() {
			t.Fatalf("expected destruction after %d bounces", maxBounces)
		}
	})
}
