package archetype

import (
	"errors"
	"math"
	"strings"
	"testing"
)

type pierceOnly struct{ cfg PierceConfig }

func (p pierceOnly) PierceCapability() (PierceConfig, bool) { return p.cfg, true }

func TestCompileOrdersCollisionOpsCanonically(t *testing.T) {
	providers := []any{
		Module{Name: "boom", Explosive: &ExplosiveConfig{Radius: 2}},
		Module{Name: "glue", Sticky: &StickyConfig{Duration: 1}},
		Module{Name: "spring", Bounce: &BounceConfig{MaxBounces: 1, Bounciness: 0.5}},
		pierceOnly{cfg: PierceConfig{MaxPenetrations: 3, DamageReduction: 0.1}},
	}

	result := Compile("test", DefaultPhysics(), providers)
	arch := result.Archetype

	want := []CollisionOpKind{CollisionPierce, CollisionBounce, CollisionSticky, CollisionExplode}
	if len(arch.Collision) != len(want) {
		t.Fatalf("expected %d collision ops, got %d", len(want), len(arch.Collision))
	}
	for i, kind := range want {
		if arch.Collision[i].Kind != kind {
			t.Fatalf("expected op %d to be %s, got %s", i, kind, arch.Collision[i].Kind)
		}
	}
	if arch.Collision[3].Explode.DamageMultiplier != 1 {
		t.Fatalf("expected default explosive multiplier 1, got %v", arch.Collision[3].Explode.DamageMultiplier)
	}
	if arch.Collision[0].Pierce.VelocityFactor != 1 {
		t.Fatalf("expected default velocity factor 1, got %v", arch.Collision[0].Pierce.VelocityFactor)
	}
}

func TestCompileSkipsInactiveCapabilities(t *testing.T) {
	providers := []any{
		Module{
			Name:      "dormant",
			Pierce:    &PierceConfig{MaxPenetrations: 0},
			Bounce:    &BounceConfig{MaxBounces: 0},
			Sticky:    &StickyConfig{},
			Explosive: &ExplosiveConfig{},
			Homing:    &HomingConfig{Strength: 0.5},
			Tracking:  &TrackingConfig{},
			AimAssist: &AimAssistConfig{},
		},
		"not a provider",
		nil,
	}

	arch := Compile("test", DefaultPhysics(), providers).Archetype
	if len(arch.Collision) != 0 {
		t.Fatalf("expected no collision ops, got %d", len(arch.Collision))
	}
	if len(arch.Steering) != 0 {
		t.Fatalf("expected no steering ops, got %d", len(arch.Steering))
	}
	if arch.AimAssist.Active() {
		t.Fatalf("expected aim assist to stay inactive")
	}
}

func TestCompileKeepsSteeringDeclarationOrder(t *testing.T) {
	providers := []any{
		Module{Name: "paint", Tracking: &TrackingConfig{Strength: 0.2}},
		Module{Name: "seek", Homing: &HomingConfig{Strength: 0.4, Radius: 5}},
	}

	arch := Compile("test", DefaultPhysics(), providers).Archetype
	if len(arch.Steering) != 2 {
		t.Fatalf("expected 2 steering ops, got %d", len(arch.Steering))
	}
	if arch.Steering[0].Kind != SteeringTracking || arch.Steering[1].Kind != SteeringHoming {
		t.Fatalf("expected tracking then homing, got %v then %v", arch.Steering[0].Kind, arch.Steering[1].Kind)
	}
	if arch.Steering[0].MaxRayDistance != defaultTrackingRay {
		t.Fatalf("expected default ray distance %v, got %v", defaultTrackingRay, arch.Steering[0].MaxRayDistance)
	}
	if !arch.HasTracking() {
		t.Fatalf("expected archetype to report tracking")
	}
}

func TestCompileSortsDamageStepsByPriorityThenDeclaration(t *testing.T) {
	providers := []any{
		Module{Name: "a", Steps: []DamageStepConfig{
			{Kind: StepMetronome, Priority: 1, ParamA: 0.1, ParamB: 2},
			{Kind: StepSpeedScale, Priority: 5, ParamA: 1},
		}},
		Module{Name: "b", Steps: []DamageStepConfig{
			{Kind: StepCritChance, Priority: 5, ParamA: 0.5, ParamB: 2},
			{Kind: StepOverkillTransfer, ParamA: 4},
			{Kind: StepMetronome, Priority: 1, ParamA: 0.2, ParamB: 3},
		}},
	}

	arch := Compile("test", DefaultPhysics(), providers).Archetype

	wantPre := []StepKind{StepSpeedScale, StepCritChance, StepMetronome, StepMetronome}
	if len(arch.PreSteps) != len(wantPre) {
		t.Fatalf("expected %d pre steps, got %d", len(wantPre), len(arch.PreSteps))
	}
	for i, kind := range wantPre {
		if arch.PreSteps[i].Kind != kind {
			t.Fatalf("expected pre step %d to be %s, got %s", i, kind, arch.PreSteps[i].Kind)
		}
	}
	if arch.PreSteps[2].ParamA != 0.1 || arch.PreSteps[3].ParamA != 0.2 {
		t.Fatalf("expected metronome ties to keep declaration order")
	}
	if len(arch.PostSteps) != 1 || arch.PostSteps[0].Kind != StepOverkillTransfer {
		t.Fatalf("expected a single overkill post step, got %+v", arch.PostSteps)
	}
	if len(arch.Metronomes) != 2 {
		t.Fatalf("expected 2 metronome slots, got %d", len(arch.Metronomes))
	}
	if arch.PreSteps[2].Slot != 0 || arch.PreSteps[3].Slot != 1 {
		t.Fatalf("expected slots 0 and 1, got %d and %d", arch.PreSteps[2].Slot, arch.PreSteps[3].Slot)
	}
	if arch.PreSteps[0].Slot != -1 {
		t.Fatalf("expected stateless step slot -1, got %d", arch.PreSteps[0].Slot)
	}
}

func TestCompileLaterDuplicateWinsWithWarning(t *testing.T) {
	providers := []any{
		Module{Name: "first", Bounce: &BounceConfig{MaxBounces: 1, Bounciness: 0.5}},
		Module{Name: "second", Bounce: &BounceConfig{MaxBounces: 4, Bounciness: 0.9}},
	}

	result := Compile("test", DefaultPhysics(), providers)
	op, ok := result.Archetype.Op(CollisionBounce)
	if !ok {
		t.Fatalf("expected bounce op")
	}
	if op.Bounce.MaxBounces != 4 {
		t.Fatalf("expected later declaration to win, got max bounces %d", op.Bounce.MaxBounces)
	}
	if !hasWarning(result.Warnings, "bounce", "more than once") {
		t.Fatalf("expected duplicate warning, got %v", result.Warnings)
	}
}

func TestCompileClampsMalformedValues(t *testing.T) {
	physics := Physics{Radius: -1, Gravity: math.NaN(), DestroyOnImpact: true}
	providers := []any{
		Module{
			Name:   "broken",
			Pierce: &PierceConfig{MaxPenetrations: 1, DamageReduction: 1.5},
			Steps: []DamageStepConfig{
				{Kind: StepCritChance, ParamA: 2, ParamB: math.Inf(1)},
				{Kind: "mystery", ParamA: 1},
			},
		},
	}

	result := Compile("test", physics, providers)
	arch := result.Archetype
	if arch.Physics.Radius != defaultRadius {
		t.Fatalf("expected radius clamped to %v, got %v", defaultRadius, arch.Physics.Radius)
	}
	if arch.Physics.Gravity != 0 {
		t.Fatalf("expected gravity reset, got %v", arch.Physics.Gravity)
	}
	op, _ := arch.Op(CollisionPierce)
	if op.Pierce.DamageReduction != 1 {
		t.Fatalf("expected reduction clamped to 1, got %v", op.Pierce.DamageReduction)
	}
	if len(arch.PreSteps) != 1 || arch.PreSteps[0].ParamA != 1 || arch.PreSteps[0].ParamB != 0 {
		t.Fatalf("expected clamped crit step, got %+v", arch.PreSteps)
	}
	for _, capability := range []string{"physics", "pierce", "crit_chance", "damage_step"} {
		if !hasWarning(result.Warnings, capability, "") {
			t.Fatalf("expected %s warning, got %v", capability, result.Warnings)
		}
	}
}

func TestCompileDisablesUnboundedStickyAndAimAssist(t *testing.T) {
	providers := []any{
		Module{
			Name:      "glue",
			Sticky:    &StickyConfig{Duration: math.Inf(1)},
			AimAssist: &AimAssistConfig{Radius: math.Inf(1)},
		},
	}

	result := Compile("test", DefaultPhysics(), providers)
	arch := result.Archetype
	if _, ok := arch.Op(CollisionSticky); ok {
		t.Fatalf("expected infinite sticky duration to be dropped, got %+v", arch.Collision)
	}
	if arch.AimAssist.Active() {
		t.Fatalf("expected infinite aim assist radius to be dropped, got %+v", arch.AimAssist)
	}
	if !hasWarning(result.Warnings, "sticky", "duration") {
		t.Fatalf("expected sticky warning, got %v", result.Warnings)
	}
	if !hasWarning(result.Warnings, "aim_assist", "radius") {
		t.Fatalf("expected aim_assist warning, got %v", result.Warnings)
	}

	kept := Compile("test", DefaultPhysics(), []any{Module{Sticky: &StickyConfig{Duration: 2}}})
	op, ok := kept.Archetype.Op(CollisionSticky)
	if !ok || op.Sticky.Duration != 2 {
		t.Fatalf("expected finite sticky duration kept, got %+v", kept.Archetype.Collision)
	}
	if len(kept.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", kept.Warnings)
	}
}

func TestResetOnReloadOnlyClearsOptedInStreaks(t *testing.T) {
	providers := []any{
		Module{Name: "m", Steps: []DamageStepConfig{
			{Kind: StepMetronome, ParamA: 0.1, ParamB: 2, ResetOnReload: true},
			{Kind: StepMetronome, ParamA: 0.1, ParamB: 2},
		}},
	}
	arch := Compile("test", DefaultPhysics(), providers).Archetype
	arch.Metronomes[0] = MetronomeState{Target: 7, Streak: 3, LastHit: 1}
	arch.Metronomes[1] = MetronomeState{Target: 7, Streak: 2, LastHit: 1}

	if cleared := arch.ResetOnReload(); cleared != 1 {
		t.Fatalf("expected 1 streak cleared, got %d", cleared)
	}
	if arch.Metronomes[0].Streak != 0 {
		t.Fatalf("expected opted-in streak reset, got %d", arch.Metronomes[0].Streak)
	}
	if arch.Metronomes[1].Streak != 2 {
		t.Fatalf("expected other streak untouched, got %d", arch.Metronomes[1].Streak)
	}
}

func TestTableRegisterReplaceGet(t *testing.T) {
	table := NewTable()
	if _, ok := table.Get(0); ok {
		t.Fatalf("expected id 0 to be invalid")
	}

	first := Compile("alpha", DefaultPhysics(), nil).Archetype
	id := table.Register(first)
	if id != 1 {
		t.Fatalf("expected first id 1, got %d", id)
	}
	table.Register(Compile("beta", DefaultPhysics(), nil).Archetype)

	replacement := Compile("alpha", Physics{Radius: 1}, nil).Archetype
	if err := table.Replace(id, replacement); err != nil {
		t.Fatalf("unexpected replace error: %v", err)
	}
	got, ok := table.Get(id)
	if !ok || got != replacement {
		t.Fatalf("expected replacement snapshot under id %d", id)
	}

	if err := table.Replace(9, replacement); !errors.Is(err, ErrUnknownArchetype) {
		t.Fatalf("expected ErrUnknownArchetype, got %v", err)
	}
	if ids := table.ByWeapon("alpha"); len(ids) != 1 || ids[0] != id {
		t.Fatalf("expected alpha to map to [%d], got %v", id, ids)
	}
	if table.Len() != 2 {
		t.Fatalf("expected 2 archetypes, got %d", table.Len())
	}
}

func hasWarning(warnings []Warning, capability, fragment string) bool {
	for _, w := range warnings {
		if w.Capability == capability && strings.Contains(w.Message, fragment) {
			return true
		}
	}
	return false
}
