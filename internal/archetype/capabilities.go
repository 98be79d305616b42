package archetype

import "math"

// PierceConfig lets a projectile pass through hostile actors.
type PierceConfig struct {
	MaxPenetrations int     `json:"maxPenetrations" jsonschema:"title=Max penetrations,description=Hostile actors the projectile may pass through,minimum=0"`
	DamageReduction float64 `json:"damageReduction" jsonschema:"title=Damage reduction,description=Fraction of damage removed per penetration,minimum=0,maximum=1"`
	VelocityFactor  float64 `json:"velocityFactor,omitempty" jsonschema:"title=Velocity factor,description=Velocity multiplier applied per penetration (default 1),minimum=0"`
}

// Active reports whether the capability participates in compilation.
func (c PierceConfig) Active() bool { return c.MaxPenetrations > 0 }

// BounceConfig reflects a projectile off surfaces.
type BounceConfig struct {
	MaxBounces      int     `json:"maxBounces" jsonschema:"title=Max bounces,minimum=0"`
	Bounciness      float64 `json:"bounciness" jsonschema:"title=Bounciness,description=Speed retained after each bounce,minimum=0"`
	DamageReduction float64 `json:"damageReduction,omitempty" jsonschema:"title=Damage reduction,description=Fraction of damage removed per bounce,minimum=0,maximum=1"`
}

func (c BounceConfig) Active() bool { return c.MaxBounces > 0 }

// StickyConfig attaches a projectile to whatever it hits.
type StickyConfig struct {
	Duration float64 `json:"duration" jsonschema:"title=Duration,description=Seconds the projectile stays attached,minimum=0"`
}

func (c StickyConfig) Active() bool { return c.Duration > 0 }

// ExplosiveConfig applies area damage at every impact.
type ExplosiveConfig struct {
	Radius           float64 `json:"radius" jsonschema:"title=Radius,minimum=0"`
	DamageMultiplier float64 `json:"damageMultiplier,omitempty" jsonschema:"title=Damage multiplier,description=Multiplier applied to the projectile damage (default 1),minimum=0"`
}

func (c ExplosiveConfig) Active() bool { return c.Radius > 0 }

// HomingConfig bends flight toward the nearest hostile actor.
type HomingConfig struct {
	Strength float64 `json:"strength" jsonschema:"title=Strength,description=Interpolation factor per tick,minimum=0,maximum=1"`
	Radius   float64 `json:"radius" jsonschema:"title=Radius,minimum=0"`
}

func (c HomingConfig) Active() bool { return c.Strength > 0 && c.Radius > 0 }

// TrackingConfig bends flight toward the point under the aim ray.
type TrackingConfig struct {
	Strength       float64 `json:"strength" jsonschema:"title=Strength,minimum=0,maximum=1"`
	MaxRayDistance float64 `json:"maxRayDistance,omitempty" jsonschema:"title=Max ray distance,description=Length of the aim ray (default 1000),minimum=0"`
}

func (c TrackingConfig) Active() bool { return c.Strength > 0 }

// AimAssistConfig re-aims spawn velocity at a nearby hostile.
type AimAssistConfig struct {
	Radius float64 `json:"radius" jsonschema:"title=Radius,minimum=0"`
}

func (c AimAssistConfig) Active() bool { return c.Radius > 0 }

// StepKind names a damage pipeline step.
type StepKind string

const (
	StepSpeedScale       StepKind = "speed_scale"
	StepCritChance       StepKind = "crit_chance"
	StepMetronome        StepKind = "metronome"
	StepOverkillTransfer StepKind = "overkill_transfer"
)

// Post reports whether the step runs after damage has been applied.
func (k StepKind) Post() bool { return k == StepOverkillTransfer }

func (k StepKind) known() bool {
	switch k {
	case StepSpeedScale, StepCritChance, StepMetronome, StepOverkillTransfer:
		return true
	}
	return false
}

// DamageStepConfig declares one damage pipeline step. ParamA and ParamB mean:
//
//	speed_scale:       damage per unit speed, knockback per unit speed
//	crit_chance:       probability, damage multiplier
//	metronome:         streak increment, max multiplier
//	overkill_transfer: search radius, unused
type DamageStepConfig struct {
	Kind          StepKind `json:"kind" jsonschema:"title=Kind,enum=speed_scale,enum=crit_chance,enum=metronome,enum=overkill_transfer"`
	Priority      int      `json:"priority,omitempty" jsonschema:"title=Priority,description=Higher priorities run first"`
	ParamA        float64  `json:"paramA"`
	ParamB        float64  `json:"paramB,omitempty"`
	ResetDelay    float64  `json:"resetDelay,omitempty" jsonschema:"title=Reset delay,description=Metronome streak timeout in seconds,minimum=0"`
	ResetOnReload bool     `json:"resetOnReload,omitempty" jsonschema:"title=Reset on reload,description=Clear the metronome streak when the weapon reloads"`
}

// Capability providers. A module may implement any subset; the boolean
// result reports whether the module carries that capability at all.
type (
	PierceProvider interface {
		PierceCapability() (PierceConfig, bool)
	}
	BounceProvider interface {
		BounceCapability() (BounceConfig, bool)
	}
	StickyProvider interface {
		StickyCapability() (StickyConfig, bool)
	}
	ExplosiveProvider interface {
		ExplosiveCapability() (ExplosiveConfig, bool)
	}
	HomingProvider interface {
		HomingCapability() (HomingConfig, bool)
	}
	TrackingProvider interface {
		TrackingCapability() (TrackingConfig, bool)
	}
	AimAssistProvider interface {
		AimAssistCapability() (AimAssistConfig, bool)
	}
	DamageStepProvider interface {
		DamageSteps() []DamageStepConfig
	}
)

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
