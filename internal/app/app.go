package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"salvo/server/internal/archetype"
	servernet "salvo/server/internal/net"
	"salvo/server/internal/net/ws"
	"salvo/server/internal/sim"
	"salvo/server/internal/telemetry"
	"salvo/server/internal/world"
	"salvo/server/logging"
	logginglifecycle "salvo/server/logging/lifecycle"
	loggingSinks "salvo/server/logging/sinks"
)

const shutdownTimeout = 5 * time.Second

// Run serves the simulation until ctx is cancelled or the listener fails.
func Run(ctx context.Context, cfg Config) error {
	telemetryLogger := cfg.Logger
	if telemetryLogger == nil {
		telemetryLogger = telemetry.WrapLogger(log.Default())
	}
	cfg.Logger = telemetryLogger
	cfg = ApplyEnv(cfg, os.LookupEnv, telemetryLogger).normalized()

	fallbackLogger := log.Default()
	if provider, ok := telemetryLogger.(interface{ StandardLogger() *log.Logger }); ok {
		if candidate := provider.StandardLogger(); candidate != nil {
			fallbackLogger = candidate
		}
	}

	runID := uuid.NewString()
	router, err := newRouter(cfg, runID, fallbackLogger)
	if err != nil {
		return fmt.Errorf("failed to construct logging router: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			telemetryLogger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	catalog, err := archetype.LoadCatalog(cfg.CatalogPaths...)
	if err != nil {
		return fmt.Errorf("failed to load weapon catalog: %w", err)
	}

	metrics := router.Metrics()
	recorder := world.NewRecorder()
	simulation := sim.New(Collaborators(DemoArena(), recorder), sim.Config{Parallel: cfg.Parallel}, sim.Deps{
		Logger:    telemetryLogger,
		Metrics:   telemetry.WrapMetrics(metrics),
		Publisher: router,
		Seed:      cfg.Seed,
	})
	weapons, err := CompileCatalog(simulation, catalog, telemetryLogger)
	if err != nil {
		return err
	}
	if len(weapons) == 0 {
		telemetryLogger.Printf("weapon catalog %v is empty; /fire will reject every weapon", cfg.CatalogPaths)
	}

	feed := ws.NewFeed(ws.FeedConfig{
		Logger:    telemetryLogger,
		Metrics:   telemetry.WrapMetrics(metrics),
		Publisher: router,
	})
	loop := sim.NewLoop(simulation, sim.LoopConfig{TickRate: cfg.TickRate}, sim.LoopHooks{
		AfterStep: func(result sim.LoopStepResult) {
			// Feedback notifications are only counted by the demo server.
			recorder.Reset()
			if err := feed.Broadcast(simulation.Snapshot()); err != nil {
				telemetryLogger.Printf("[feed] broadcast failed at tick %d: %v", result.Tick, err)
			}
		},
	})

	handler := servernet.NewHTTPHandler(servernet.HTTPHandlerConfig{
		Logger:        fallbackLogger,
		Sim:           simulation,
		Queue:         loop,
		Feed:          feed,
		Publisher:     router,
		Metrics:       metrics,
		Router:        router,
		TickRate:      cfg.TickRate,
		Weapons:       catalog.IDs,
		Observability: cfg.Observability,
	})
	srv := &http.Server{Addr: cfg.Addr, Handler: handler}

	stop := make(chan struct{})
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		loop.Run(stop)
	}()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	logginglifecycle.ServerStarted(ctx, router, simulation.Tick(), logginglifecycle.ServerStartedPayload{
		Addr:     cfg.Addr,
		TickRate: cfg.TickRate,
		Seed:     cfg.Seed,
		Weapons:  len(weapons),
	}, nil)
	telemetryLogger.Printf("server listening on %s (run %s)", cfg.Addr, runID)

	var runErr error
	reason := "context cancelled"
wait:
	for {
		select {
		case <-ctx.Done():
			break wait
		case <-cfg.Reload:
			ReloadCatalog(ctx, simulation, catalog, router, telemetryLogger)
		case err := <-serveErr:
			if !errors.Is(err, http.ErrServerClosed) {
				runErr = fmt.Errorf("server failed: %w", err)
				reason = "listener failed"
			}
			break wait
		}
	}

	logginglifecycle.ServerStopping(context.Background(), router, simulation.Tick(), logginglifecycle.ServerStoppingPayload{Reason: reason}, nil)
	close(stop)
	<-loopDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := servernet.Shutdown(shutdownCtx, srv, feed); err != nil && runErr == nil {
		runErr = fmt.Errorf("shutdown failed: %w", err)
	}
	return runErr
}

func newRouter(cfg Config, runID string, fallback *log.Logger) (*logging.Router, error) {
	logConfig := logging.DefaultConfig()
	logConfig.EnabledSinks = cfg.LogSinks
	logConfig.JSON.FilePath = cfg.LogJSONPath
	logConfig.Fields = map[string]any{"run": runID}

	sinks := make(map[string]logging.Sink, len(logConfig.EnabledSinks))
	for _, name := range logConfig.EnabledSinks {
		switch name {
		case "console":
			sinks[name] = loggingSinks.NewConsoleSink(os.Stdout, logConfig.Console)
		case "json":
			file, err := os.OpenFile(logConfig.JSON.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				return nil, fmt.Errorf("open json sink %s: %w", logConfig.JSON.FilePath, err)
			}
			sinks[name] = loggingSinks.NewJSON(file, logConfig.JSON.FlushInterval)
		case "memory":
			sinks[name] = loggingSinks.NewMemorySink()
		default:
			fallback.Printf("unknown log sink %q ignored", name)
		}
	}
	return logging.NewRouter(logConfig, logging.SystemClock{}, fallback, sinks)
}
