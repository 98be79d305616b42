package sim

// Engine defines the minimal surface area exposed to the loop and transport.
type Engine interface {
	Apply([]Command) error
	Step(dt float64) StepReport
	Snapshot() Snapshot
	Tick() uint64
	Deps() Deps
}

var _ Engine = (*Simulation)(nil)
