package combat

import (
	"math"

	"salvo/server/internal/archetype"
	"salvo/server/internal/projectile"
	"salvo/server/internal/vecmath"
	"salvo/server/internal/world"
)

// DamageOutcome reports what a hit did to its target and any secondary
// target reached through overkill transfer.
type DamageOutcome struct {
	Amount    float64
	Knockback float64
	Result    world.DamageResult

	TransferTarget world.ActorID
	TransferAmount float64
	TransferResult world.DamageResult
}

// RunPreSteps evaluates the pre-hit damage steps against target and returns
// the rewritten damage and knockback scale. A zero target records a miss:
// only stateful steps react, resetting their streaks.
func RunPreSteps(env *Env, arch *archetype.Archetype, e *projectile.Entity, target world.ActorID) (damage, knockback float64) {
	damage, knockback = e.Damage, 1
	e.Crit = false
	e.CritMultiplier = 0
	if arch == nil {
		return damage, knockback
	}
	for i := range arch.PreSteps {
		step := &arch.PreSteps[i]
		d, k := damage, knockback
		ok := env.guard("damage."+string(step.Kind), e, func() {
			d, k = applyPreStep(env, arch, e, step, target, d, k)
		})
		if !ok {
			continue
		}
		damage, knockback = d, k
	}
	if damage < 0 || math.IsNaN(damage) {
		damage = 0
	}
	return damage, knockback
}

func applyPreStep(env *Env, arch *archetype.Archetype, e *projectile.Entity, step *archetype.DamageStep, target world.ActorID, damage, knockback float64) (float64, float64) {
	switch step.Kind {
	case archetype.StepSpeedScale:
		if target == 0 {
			return damage, knockback
		}
		speed := e.Speed()
		return damage + speed*step.ParamA, knockback + speed*step.ParamB
	case archetype.StepCritChance:
		if target == 0 || env.RNG == nil {
			return damage, knockback
		}
		if env.RNG.Float64() < step.ParamA {
			e.Crit = true
			e.CritMultiplier = step.ParamB
			damage *= step.ParamB
		}
		return damage, knockback
	case archetype.StepMetronome:
		return damage * metronome(env, arch, step, target), knockback
	}
	return damage, knockback
}

// metronome advances the streak owned by step and returns its multiplier.
func metronome(env *Env, arch *archetype.Archetype, step *archetype.DamageStep, target world.ActorID) float64 {
	if step.Slot < 0 || step.Slot >= len(arch.Metronomes) {
		return 1
	}
	state := &arch.Metronomes[step.Slot]
	if target == 0 {
		state.Reset()
		return 1
	}

	increment, maxMultiplier := step.ParamA, step.ParamB
	sameTarget := state.Target != 0 && state.Target == target
	timedOut := step.ResetDelay > 0 && env.Now-state.LastHit > step.ResetDelay
	if sameTarget && !timedOut {
		if increment > 0 && 1+increment*float64(state.Streak+1) <= maxMultiplier+1e-9 {
			state.Streak++
		}
	} else {
		state.Streak = 0
	}
	state.Target = target
	state.LastHit = env.Now

	return vecmath.Clamp(1+increment*float64(state.Streak), 0, maxMultiplier)
}

// RegisterMiss runs the pre steps with no target.
func RegisterMiss(env *Env, arch *archetype.Archetype, e *projectile.Entity) {
	RunPreSteps(env, arch, e, 0)
}

// ApplyHit runs the full damage pipeline for a direct hit on a hostile actor:
// pre steps, the damage sink, the damage event, then post steps.
func ApplyHit(env *Env, arch *archetype.Archetype, e *projectile.Entity, hit Hit) DamageOutcome {
	amount, knockback := RunPreSteps(env, arch, e, hit.Actor)
	outcome := DamageOutcome{Amount: amount, Knockback: knockback}

	outcome.Result = env.World.Sink.ApplyDamage(hit.Actor, amount)
	e.Hits++

	snapshot := world.DamageSnapshot{
		Amount:         amount,
		Applied:        outcome.Result.Applied,
		Remaining:      outcome.Result.Remaining,
		Crit:           e.Crit,
		CritMultiplier: e.CritMultiplier,
	}
	dir := e.Velocity.Normalize()
	env.World.Events.EmitDamageDealt(hit.Actor, snapshot, dir, knockback)
	if env.Hooks.Damage != nil {
		env.Hooks.Damage(e.ID, hit.Actor, snapshot)
	}

	if arch == nil {
		return outcome
	}
	for i := range arch.PostSteps {
		step := &arch.PostSteps[i]
		env.guard("damage."+string(step.Kind), e, func() {
			applyPostStep(env, e, step, hit, &outcome)
		})
	}
	return outcome
}

func applyPostStep(env *Env, e *projectile.Entity, step *archetype.DamageStep, hit Hit, outcome *DamageOutcome) {
	switch step.Kind {
	case archetype.StepOverkillTransfer:
		overkill := outcome.Result.Overkill
		if overkill <= 0 || step.ParamA <= 0 {
			return
		}
		target, position, ok := env.World.Sink.NearestHostile(hit.Point, step.ParamA, hit.Actor)
		if !ok || target == hit.Actor {
			return
		}
		result := env.World.Sink.ApplyDamage(target, overkill)
		outcome.TransferTarget = target
		outcome.TransferAmount = overkill
		outcome.TransferResult = result

		snapshot := world.DamageSnapshot{
			Amount:    overkill,
			Applied:   result.Applied,
			Remaining: result.Remaining,
			Overkill:  true,
		}
		env.World.Events.EmitDamageDealt(target, snapshot, position.Sub(hit.Point).Normalize(), 0)
		if env.Hooks.Overkill != nil {
			env.Hooks.Overkill(e.ID, hit.Actor, target, overkill)
		}
	}
}
