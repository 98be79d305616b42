package archetype

import "fmt"

const (
	defaultRadius         = 0.05
	defaultHitCooldown    = 0.1
	defaultNudge          = 0.01
	defaultTrackingRay    = 1000.0
	defaultVelocityFactor = 1.0
)

// Physics holds the constants shared by every projectile of an archetype.
type Physics struct {
	Radius          float64 `json:"radius" jsonschema:"title=Radius,description=Sweep radius in world units,minimum=0"`
	Gravity         float64 `json:"gravity,omitempty" jsonschema:"title=Gravity,description=Downward acceleration along -Y"`
	CollisionMask   uint32  `json:"collisionMask,omitempty" jsonschema:"title=Collision mask,description=Layer bits passed to raycasts (0 matches all)"`
	DestroyOnImpact bool    `json:"destroyOnImpact" jsonschema:"title=Destroy on impact,description=Destroy when no behavior claims a hit"`
	HitCooldown     float64 `json:"hitCooldown,omitempty" jsonschema:"title=Hit cooldown,description=Seconds during which the last collider is ignored,minimum=0"`
	Nudge           float64 `json:"nudge,omitempty" jsonschema:"title=Nudge,description=Extra distance used to push a projectile off a surface,minimum=0"`
}

// DefaultPhysics returns a small, gravity-free, destroy-on-impact projectile.
func DefaultPhysics() Physics {
	return Physics{
		Radius:          defaultRadius,
		DestroyOnImpact: true,
		HitCooldown:     defaultHitCooldown,
		Nudge:           defaultNudge,
	}
}

func (p Physics) normalized() (Physics, []Warning) {
	var warnings []Warning
	if !finite(p.Radius) || p.Radius < 0 {
		warnings = append(warnings, warnf("physics", "radius %v clamped to %v", p.Radius, defaultRadius))
		p.Radius = defaultRadius
	}
	if !finite(p.Gravity) {
		warnings = append(warnings, warnf("physics", "gravity %v reset to 0", p.Gravity))
		p.Gravity = 0
	}
	if !finite(p.HitCooldown) || p.HitCooldown <= 0 {
		if p.HitCooldown != 0 {
			warnings = append(warnings, warnf("physics", "hit cooldown %v reset to %v", p.HitCooldown, defaultHitCooldown))
		}
		p.HitCooldown = defaultHitCooldown
	}
	if !finite(p.Nudge) || p.Nudge <= 0 {
		if p.Nudge != 0 {
			warnings = append(warnings, warnf("physics", "nudge %v reset to %v", p.Nudge, defaultNudge))
		}
		p.Nudge = defaultNudge
	}
	return p, warnings
}

// Warning describes a value that compilation clamped or ignored.
type Warning struct {
	Capability string
	Message    string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Capability, w.Message)
}

func warnf(capability, format string, args ...any) Warning {
	return Warning{Capability: capability, Message: fmt.Sprintf(format, args...)}
}

func (c PierceConfig) normalized() (PierceConfig, []Warning) {
	var warnings []Warning
	if !finite(c.DamageReduction) || c.DamageReduction < 0 || c.DamageReduction > 1 {
		clamped := 0.0
		if finite(c.DamageReduction) {
			clamped = clampUnit(c.DamageReduction)
		}
		warnings = append(warnings, warnf("pierce", "damage reduction %v clamped to %v", c.DamageReduction, clamped))
		c.DamageReduction = clamped
	}
	if !finite(c.VelocityFactor) || c.VelocityFactor < 0 {
		warnings = append(warnings, warnf("pierce", "velocity factor %v reset to %v", c.VelocityFactor, defaultVelocityFactor))
		c.VelocityFactor = defaultVelocityFactor
	} else if c.VelocityFactor == 0 {
		c.VelocityFactor = defaultVelocityFactor
	}
	return c, warnings
}

func (c BounceConfig) normalized() (BounceConfig, []Warning) {
	var warnings []Warning
	if !finite(c.Bounciness) || c.Bounciness < 0 {
		warnings = append(warnings, warnf("bounce", "bounciness %v clamped to 0", c.Bounciness))
		c.Bounciness = 0
	}
	if !finite(c.DamageReduction) || c.DamageReduction < 0 || c.DamageReduction > 1 {
		clamped := 0.0
		if finite(c.DamageReduction) {
			clamped = clampUnit(c.DamageReduction)
		}
		warnings = append(warnings, warnf("bounce", "damage reduction %v clamped to %v", c.DamageReduction, clamped))
		c.DamageReduction = clamped
	}
	return c, warnings
}

func (c ExplosiveConfig) normalized() (ExplosiveConfig, []Warning) {
	var warnings []Warning
	if !finite(c.DamageMultiplier) || c.DamageMultiplier < 0 {
		warnings = append(warnings, warnf("explosive", "damage multiplier %v reset to 1", c.DamageMultiplier))
		c.DamageMultiplier = 1
	} else if c.DamageMultiplier == 0 {
		c.DamageMultiplier = 1
	}
	return c, warnings
}

// A non-finite duration would pin the projectile forever; it disables the
// capability instead.
func (c StickyConfig) normalized() (StickyConfig, []Warning) {
	var warnings []Warning
	if !finite(c.Duration) {
		warnings = append(warnings, warnf("sticky", "duration %v reset to 0, sticky disabled", c.Duration))
		c.Duration = 0
	}
	return c, warnings
}

func (c AimAssistConfig) normalized() (AimAssistConfig, []Warning) {
	var warnings []Warning
	if !finite(c.Radius) {
		warnings = append(warnings, warnf("aim_assist", "radius %v reset to 0, aim assist disabled", c.Radius))
		c.Radius = 0
	}
	return c, warnings
}

func (c HomingConfig) normalized() (HomingConfig, []Warning) {
	var warnings []Warning
	if c.Strength > 1 {
		warnings = append(warnings, warnf("homing", "strength %v clamped to 1", c.Strength))
		c.Strength = 1
	}
	return c, warnings
}

func (c TrackingConfig) normalized() (TrackingConfig, []Warning) {
	var warnings []Warning
	if c.Strength > 1 {
		warnings = append(warnings, warnf("tracking", "strength %v clamped to 1", c.Strength))
		c.Strength = 1
	}
	if !finite(c.MaxRayDistance) || c.MaxRayDistance <= 0 {
		if c.MaxRayDistance != 0 {
			warnings = append(warnings, warnf("tracking", "max ray distance %v reset to %v", c.MaxRayDistance, defaultTrackingRay))
		}
		c.MaxRayDistance = defaultTrackingRay
	}
	return c, warnings
}

func (c DamageStepConfig) normalized() (DamageStepConfig, []Warning) {
	var warnings []Warning
	capability := string(c.Kind)
	if !finite(c.ParamA) {
		warnings = append(warnings, warnf(capability, "paramA %v reset to 0", c.ParamA))
		c.ParamA = 0
	}
	if !finite(c.ParamB) {
		warnings = append(warnings, warnf(capability, "paramB %v reset to 0", c.ParamB))
		c.ParamB = 0
	}
	switch c.Kind {
	case StepCritChance:
		if c.ParamA < 0 || c.ParamA > 1 {
			clamped := clampUnit(c.ParamA)
			warnings = append(warnings, warnf(capability, "probability %v clamped to %v", c.ParamA, clamped))
			c.ParamA = clamped
		}
		if c.ParamB < 0 {
			warnings = append(warnings, warnf(capability, "multiplier %v reset to 1", c.ParamB))
			c.ParamB = 1
		}
	case StepMetronome:
		if c.ParamB <= 0 {
			warnings = append(warnings, warnf(capability, "max multiplier %v reset to 1", c.ParamB))
			c.ParamB = 1
		}
		if !finite(c.ResetDelay) || c.ResetDelay < 0 {
			warnings = append(warnings, warnf(capability, "reset delay %v clamped to 0", c.ResetDelay))
			c.ResetDelay = 0
		}
	case StepOverkillTransfer:
		if c.ParamA < 0 {
			warnings = append(warnings, warnf(capability, "radius %v clamped to 0", c.ParamA))
			c.ParamA = 0
		}
	}
	return c, warnings
}
