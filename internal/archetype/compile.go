package archetype

import "sort"

// CompileResult carries the compiled archetype and any values that were
// clamped or overridden along the way.
type CompileResult struct {
	Archetype *Archetype
	Warnings  []Warning
}

// Compile extracts active capabilities from providers, in declaration order,
// and builds the archetype's pipelines. Collision ops always come out in the
// order pierce, bounce, sticky, explode. Single-instance capabilities declared
// more than once keep the last active declaration.
func Compile(weaponID string, physics Physics, providers []any) CompileResult {
	var warnings []Warning
	normalizedPhysics, physWarnings := physics.normalized()
	warnings = append(warnings, physWarnings...)

	var (
		pierce    *PierceConfig
		bounce    *BounceConfig
		sticky    *StickyConfig
		explode   *ExplosiveConfig
		aimAssist *AimAssistConfig
		steering  []SteeringOp
		steps     []DamageStep
	)

	duplicate := func(name string) {
		warnings = append(warnings, warnf(name, "declared more than once; later declaration wins"))
	}

	for _, provider := range providers {
		if provider == nil {
			continue
		}
		if p, ok := provider.(PierceProvider); ok {
			if cfg, present := p.PierceCapability(); present && cfg.Active() {
				if pierce != nil {
					duplicate("pierce")
				}
				cfg, w := cfg.normalized()
				warnings = append(warnings, w...)
				pierce = &cfg
			}
		}
		if p, ok := provider.(BounceProvider); ok {
			if cfg, present := p.BounceCapability(); present && cfg.Active() {
				if bounce != nil {
					duplicate("bounce")
				}
				cfg, w := cfg.normalized()
				warnings = append(warnings, w...)
				bounce = &cfg
			}
		}
		if p, ok := provider.(StickyProvider); ok {
			if cfg, present := p.StickyCapability(); present && cfg.Active() {
				if sticky != nil {
					duplicate("sticky")
				}
				cfg, w := cfg.normalized()
				warnings = append(warnings, w...)
				if cfg.Active() {
					sticky = &cfg
				}
			}
		}
		if p, ok := provider.(ExplosiveProvider); ok {
			if cfg, present := p.ExplosiveCapability(); present && cfg.Active() {
				if explode != nil {
					duplicate("explosive")
				}
				cfg, w := cfg.normalized()
				warnings = append(warnings, w...)
				explode = &cfg
			}
		}
		if p, ok := provider.(AimAssistProvider); ok {
			if cfg, present := p.AimAssistCapability(); present && cfg.Active() {
				if aimAssist != nil {
					duplicate("aim_assist")
				}
				cfg, w := cfg.normalized()
				warnings = append(warnings, w...)
				if cfg.Active() {
					aimAssist = &cfg
				}
			}
		}
		if p, ok := provider.(HomingProvider); ok {
			if cfg, present := p.HomingCapability(); present && cfg.Active() {
				cfg, w := cfg.normalized()
				warnings = append(warnings, w...)
				steering = append(steering, SteeringOp{Kind: SteeringHoming, Strength: cfg.Strength, Radius: cfg.Radius})
			}
		}
		if p, ok := provider.(TrackingProvider); ok {
			if cfg, present := p.TrackingCapability(); present && cfg.Active() {
				cfg, w := cfg.normalized()
				warnings = append(warnings, w...)
				steering = append(steering, SteeringOp{Kind: SteeringTracking, Strength: cfg.Strength, MaxRayDistance: cfg.MaxRayDistance})
			}
		}
		if p, ok := provider.(DamageStepProvider); ok {
			for _, cfg := range p.DamageSteps() {
				if !cfg.Kind.known() {
					warnings = append(warnings, warnf("damage_step", "unknown kind %q ignored", cfg.Kind))
					continue
				}
				cfg, w := cfg.normalized()
				warnings = append(warnings, w...)
				steps = append(steps, DamageStep{DamageStepConfig: cfg, Slot: -1, order: len(steps)})
			}
		}
	}

	arch := &Archetype{
		WeaponID: weaponID,
		Physics:  normalizedPhysics,
		Steering: steering,
	}
	if pierce != nil {
		arch.Collision = append(arch.Collision, CollisionOp{Kind: CollisionPierce, Pierce: *pierce})
	}
	if bounce != nil {
		arch.Collision = append(arch.Collision, CollisionOp{Kind: CollisionBounce, Bounce: *bounce})
	}
	if sticky != nil {
		arch.Collision = append(arch.Collision, CollisionOp{Kind: CollisionSticky, Sticky: *sticky})
	}
	if explode != nil {
		arch.Collision = append(arch.Collision, CollisionOp{Kind: CollisionExplode, Explode: *explode})
	}
	if aimAssist != nil {
		arch.AimAssist = *aimAssist
	}

	sort.SliceStable(steps, func(i, j int) bool {
		if steps[i].Priority != steps[j].Priority {
			return steps[i].Priority > steps[j].Priority
		}
		return steps[i].order < steps[j].order
	})
	for _, step := range steps {
		if step.Kind.Post() {
			arch.PostSteps = append(arch.PostSteps, step)
			continue
		}
		if step.Kind == StepMetronome {
			step.Slot = len(arch.Metronomes)
			arch.Metronomes = append(arch.Metronomes, MetronomeState{})
		}
		arch.PreSteps = append(arch.PreSteps, step)
	}

	return CompileResult{Archetype: arch, Warnings: warnings}
}
