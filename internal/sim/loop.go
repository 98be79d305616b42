package sim

import (
	"context"
	"sync"
	"time"

	"salvo/server/internal/telemetry"
	loggingsimulation "salvo/server/logging/simulation"
)

const (
	// CommandRejectQueueLimit indicates a command was dropped due to per-source
	// queue throttling.
	CommandRejectQueueLimit = "queue_limit"
	// CommandRejectQueueFull indicates the global command buffer is saturated.
	CommandRejectQueueFull = "queue_full"
)

// LoopConfig tunes the command buffer and tick loop orchestration.
type LoopConfig struct {
	TickRate        int
	CatchupMaxTicks int
	CommandCapacity int
	PerSourceLimit  int
	WarningStep     int
}

func (c LoopConfig) normalized() LoopConfig {
	if c.TickRate <= 0 {
		c.TickRate = 60
	}
	if c.CatchupMaxTicks <= 0 {
		c.CatchupMaxTicks = 3
	}
	if c.CommandCapacity <= 0 {
		c.CommandCapacity = 1024
	}
	return c
}

// LoopTickContext describes the step about to run.
type LoopTickContext struct {
	Tick  uint64
	Now   time.Time
	Delta float64
}

// LoopStepResult reports what one Advance did.
type LoopStepResult struct {
	Tick         uint64
	Now          time.Time
	Delta        float64
	Duration     time.Duration
	Budget       time.Duration
	ClampedDelta bool
	MaxDelta     float64
	Report       StepReport
	Commands     []Command
	ApplyErr     error
}

// LoopHooks are optional callbacks. AfterStep runs on the loop goroutine and
// must not retain result.Commands past the call.
type LoopHooks struct {
	Prepare        func(LoopTickContext)
	AfterStep      func(LoopStepResult)
	OnCommandDrop  func(reason string, cmd Command)
	OnQueueWarning func(length int)
}

// Loop coordinates command ingestion and the fixed-timestep simulation runner.
type Loop struct {
	engine  Engine
	buffer  *CommandBuffer
	hooks   LoopHooks
	config  LoopConfig
	deps    Deps
	scratch []Command

	queueMu        sync.Mutex
	perSourceCount map[string]int
	dropCounts     map[string]uint64

	overrunStreak uint64
}

// NewLoop wraps engine with a ring-buffer queue and a fixed-timestep runner.
func NewLoop(engine Engine, cfg LoopConfig, hooks LoopHooks) *Loop {
	if engine == nil {
		return nil
	}
	cfg = cfg.normalized()
	deps := engine.Deps().normalized()
	return &Loop{
		engine:         engine,
		buffer:         NewCommandBuffer(cfg.CommandCapacity, deps.Metrics),
		hooks:          hooks,
		config:         cfg,
		deps:           deps,
		perSourceCount: make(map[string]int),
		dropCounts:     make(map[string]uint64),
	}
}

func (l *Loop) Config() LoopConfig {
	if l == nil {
		return LoopConfig{}
	}
	return l.config
}

// Pending reports the number of staged commands.
func (l *Loop) Pending() int {
	if l == nil {
		return 0
	}
	return l.buffer.Len()
}

// Enqueue stages a command for the next tick, enforcing the per-source limit
// and buffer capacity.
func (l *Loop) Enqueue(cmd Command) (bool, string) {
	if l == nil {
		return false, CommandRejectQueueFull
	}
	if cmd.IssuedAt.IsZero() {
		cmd.IssuedAt = l.deps.Clock.Now()
	}
	reason := ""
	var dropCount uint64
	warnAt := 0
	l.queueMu.Lock()
	if l.config.PerSourceLimit > 0 && cmd.Source != "" {
		count := l.perSourceCount[cmd.Source]
		if count >= l.config.PerSourceLimit {
			reason = CommandRejectQueueLimit
			dropCount = l.incrementDropLocked(cmd.Source)
		}
	}
	if reason == "" {
		if !l.buffer.Push(cmd) {
			reason = CommandRejectQueueFull
			dropCount = l.incrementDropLocked(cmd.Source)
		} else {
			if cmd.Source != "" {
				l.perSourceCount[cmd.Source]++
			}
			if step := l.config.WarningStep; step > 0 {
				if length := l.buffer.Len(); length >= step && length%step == 0 {
					warnAt = length
				}
			}
		}
	}
	l.queueMu.Unlock()

	if reason != "" {
		l.reportDrop(reason, cmd, dropCount)
		return false, reason
	}
	if warnAt > 0 && l.hooks.OnQueueWarning != nil {
		l.hooks.OnQueueWarning(warnAt)
	}
	return true, ""
}

// Advance applies every staged command and runs one simulation step.
func (l *Loop) Advance(ctx LoopTickContext) LoopStepResult {
	if l == nil {
		return LoopStepResult{}
	}
	l.scratch = l.drainCommands(l.scratch[:0])
	if l.hooks.Prepare != nil {
		l.hooks.Prepare(ctx)
	}
	applyErr := l.engine.Apply(l.scratch)
	if applyErr != nil {
		l.deps.Logger.Printf("[sim] apply commands: %v", applyErr)
	}
	report := l.engine.Step(ctx.Delta)
	return LoopStepResult{
		Tick:     report.Tick,
		Now:      ctx.Now,
		Delta:    ctx.Delta,
		Report:   report,
		Commands: l.scratch,
		ApplyErr: applyErr,
	}
}

// Run drives the fixed-timestep loop until stop closes.
func (l *Loop) Run(stop <-chan struct{}) {
	if l == nil {
		return
	}
	tickRate := l.config.TickRate
	budget := time.Second / time.Duration(tickRate)
	ticker := time.NewTicker(budget)
	defer ticker.Stop()

	clock := l.deps.Clock
	last := clock.Now()
	budgetSeconds := budget.Seconds()
	maxDt := budgetSeconds * float64(l.config.CatchupMaxTicks)

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			now := clock.Now()
			dt, clamped := clampDelta(now.Sub(last).Seconds(), budgetSeconds, maxDt)
			last = now

			start := clock.Now()
			result := l.Advance(LoopTickContext{Tick: l.engine.Tick() + 1, Now: now, Delta: dt})
			result.Duration = clock.Now().Sub(start)
			result.Budget = budget
			result.ClampedDelta = clamped
			result.MaxDelta = maxDt

			l.checkBudget(result)
			if l.hooks.AfterStep != nil {
				l.hooks.AfterStep(result)
			}
		}
	}
}

// clampDelta keeps a slow tick from integrating more than maxDt seconds.
func clampDelta(dt, budget, maxDt float64) (float64, bool) {
	if dt <= 0 {
		return budget, false
	}
	if dt > maxDt {
		return maxDt, true
	}
	return dt, false
}

func (l *Loop) checkBudget(result LoopStepResult) {
	if result.Budget <= 0 || result.Duration <= result.Budget {
		l.overrunStreak = 0
		return
	}
	l.overrunStreak++
	l.deps.Metrics.Add(telemetry.MetricTickOverruns, 1)
	loggingsimulation.TickBudgetOverrun(context.Background(), l.deps.Publisher, result.Tick, loggingsimulation.TickBudgetOverrunPayload{
		DurationMillis: result.Duration.Milliseconds(),
		BudgetMillis:   result.Budget.Milliseconds(),
		Ratio:          float64(result.Duration) / float64(result.Budget),
		Streak:         l.overrunStreak,
		Active:         result.Report.Active,
	}, nil)
}

func (l *Loop) drainCommands(dst []Command) []Command {
	l.queueMu.Lock()
	defer l.queueMu.Unlock()
	dst = l.buffer.Drain(dst)
	clear(l.perSourceCount)
	return dst
}

func (l *Loop) incrementDropLocked(source string) uint64 {
	if source == "" {
		return 0
	}
	count := l.dropCounts[source] + 1
	l.dropCounts[source] = count
	return count
}

func (l *Loop) reportDrop(reason string, cmd Command, count uint64) {
	if l.hooks.OnCommandDrop != nil {
		l.hooks.OnCommandDrop(reason, cmd)
	}
	// Log on powers of two so a flooding source cannot flood the log too.
	if count > 0 && count&(count-1) == 0 {
		l.deps.Logger.Printf(
			"[backpressure] dropping command source=%s type=%s reason=%s count=%d limit=%d",
			cmd.Source,
			cmd.Type,
			reason,
			count,
			l.config.PerSourceLimit,
		)
	}
}
