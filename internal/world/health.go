package world

import "math"

// HealthEpsilon defines the tolerance used when comparing health values.
const HealthEpsilon = 1e-6

// HealthState captures the current health values for an actor.
type HealthState struct {
	Health    float64
	MaxHealth float64
}

// Alive reports whether the actor still has health left.
func (h HealthState) Alive() bool {
	return h.Health > HealthEpsilon
}

// ApplyDamage subtracts amount from the state and reports the applied portion
// and any overkill beyond the remaining health. Non-finite or non-positive
// amounts and dead actors produce an empty result.
func (h *HealthState) ApplyDamage(amount float64) DamageResult {
	if h == nil || !h.Alive() {
		return DamageResult{}
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return DamageResult{Remaining: h.Health}
	}

	applied := amount
	overkill := 0.0
	if amount > h.Health {
		applied = h.Health
		overkill = amount - h.Health
	}
	h.Health -= applied
	if h.Health < HealthEpsilon {
		h.Health = 0
	}
	return DamageResult{
		Applied:   applied,
		Overkill:  overkill,
		Remaining: h.Health,
		Killed:    h.Health == 0,
	}
}

// SetHealth clamps health into [0, MaxHealth] and returns true when the value
// changed. A non-positive max adopts the requested health as the new maximum.
func (h *HealthState) SetHealth(health float64) bool {
	if h == nil || math.IsNaN(health) || math.IsInf(health, 0) {
		return false
	}
	if health < 0 {
		health = 0
	}
	if h.MaxHealth <= 0 {
		h.MaxHealth = health
	}
	if health > h.MaxHealth {
		health = h.MaxHealth
	}
	if math.Abs(h.Health-health) < HealthEpsilon {
		return false
	}
	h.Health = health
	return true
}
