package telemetry

import (
	"log"

	"salvo/server/logging"
)

// Metric keys shared by the simulation and the HTTP diagnostics.
const (
	MetricSpawned        = "projectiles_spawned_total"
	MetricSpawnRejected  = "projectiles_spawn_rejected_total"
	MetricExpired        = "projectiles_expired_total"
	MetricDestroyed      = "projectiles_destroyed_total"
	MetricHits           = "projectile_hits_total"
	MetricOpFaults       = "projectile_op_faults_total"
	MetricActive         = "projectiles_active"
	MetricTicks          = "simulation_ticks_total"
	MetricTickOverruns   = "simulation_tick_overruns_total"
	MetricFeedSubscribed = "feed_subscribers"
)

// Logger is the operator-facing text log used by server components.
type Logger interface {
	Printf(format string, args ...any)
}

// LoggerFunc adapts functions into the Logger interface.
type LoggerFunc func(format string, args ...any)

func (f LoggerFunc) Printf(format string, args ...any) {
	if f == nil {
		return
	}
	f(format, args...)
}

// WrapLogger adapts a standard library logger. A nil logger discards output.
func WrapLogger(logger *log.Logger) Logger {
	return &loggerAdapter{logger: logger}
}

type loggerAdapter struct {
	logger *log.Logger
}

func (l *loggerAdapter) Printf(format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Printf(format, args...)
}

// Metrics is the counter surface handed to the simulation.
type Metrics interface {
	Add(key string, delta uint64)
	Store(key string, value uint64)
}

// WrapMetrics adapts router metrics. A nil target discards writes.
func WrapMetrics(metrics *logging.Metrics) Metrics {
	return &metricsAdapter{metrics: metrics}
}

type metricsAdapter struct {
	metrics *logging.Metrics
}

func (m *metricsAdapter) Add(key string, delta uint64) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.TelemetryAdd(key, delta)
}

func (m *metricsAdapter) Store(key string, value uint64) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.TelemetryStore(key, value)
}

type nop struct{}

func (nop) Printf(string, ...any) {}
func (nop) Add(string, uint64)    {}
func (nop) Store(string, uint64)  {}

// NopLogger discards every line.
func NopLogger() Logger { return nop{} }

// NopMetrics discards every write.
func NopMetrics() Metrics { return nop{} }
