package simulation

import (
	"context"

	"salvo/server/logging"
)

const (
	// EventTickBudgetOverrun is emitted when a step exceeds the allotted tick budget.
	EventTickBudgetOverrun logging.EventType = "simulation.tick_budget_overrun"
	// EventArchetypeCompiled is emitted after a weapon's capabilities compile into an archetype.
	EventArchetypeCompiled logging.EventType = "simulation.archetype_compiled"
)

// TickBudgetOverrunPayload captures timing details for a tick budget breach.
type TickBudgetOverrunPayload struct {
	DurationMillis int64   `json:"durationMillis"`
	BudgetMillis   int64   `json:"budgetMillis"`
	Ratio          float64 `json:"ratio"`
	Streak         uint64  `json:"streak"`
	Active         int     `json:"active"`
}

// TickBudgetOverrun publishes a warning when the simulation exceeds the configured tick budget.
func TickBudgetOverrun(ctx context.Context, pub logging.Publisher, tick uint64, payload TickBudgetOverrunPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTickBudgetOverrun,
		Tick:     tick,
		Severity: logging.SeverityWarn,
		Category: logging.CategorySimulation,
		Payload:  payload,
		Extra:    extra,
	})
}

type ArchetypeCompiledPayload struct {
	Weapon    string   `json:"weapon"`
	Collision []string `json:"collision,omitempty"`
	PreSteps  int      `json:"preSteps"`
	PostSteps int      `json:"postSteps"`
	Warnings  []string `json:"warnings,omitempty"`
	Replaced  bool     `json:"replaced,omitempty"`
}

// ArchetypeCompiled is published at warn severity when the compiler had to
// clamp or drop any declared capability.
func ArchetypeCompiled(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ArchetypeCompiledPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	severity := logging.SeverityInfo
	if len(payload.Warnings) > 0 {
		severity = logging.SeverityWarn
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventArchetypeCompiled,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{logging.WeaponRef(payload.Weapon)},
		Severity: severity,
		Category: logging.CategorySimulation,
		Payload:  payload,
		Extra:    extra,
	})
}
