package net

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"salvo/server/internal/archetype"
	"salvo/server/internal/net/intake"
	"salvo/server/internal/net/ws"
	"salvo/server/internal/sim"
	"salvo/server/internal/telemetry"
	"salvo/server/internal/world"
	"salvo/server/logging"
	loggingnetwork "salvo/server/logging/network"
	"salvo/server/logging/sinks"
)

type harness struct {
	sim     *sim.Simulation
	loop    *sim.Loop
	metrics *logging.Metrics
	events  *sinks.MemorySink
	handler http.Handler
}

func newHarness(t *testing.T, loopCfg sim.LoopConfig) *harness {
	t.Helper()
	metrics := &logging.Metrics{}
	events := sinks.NewMemorySink()
	simulation := sim.New(world.Collaborators{}, sim.Config{}, sim.Deps{
		Metrics:   telemetry.WrapMetrics(metrics),
		Publisher: events,
	})
	if _, warnings := simulation.CompileArchetype("carbine", archetype.DefaultPhysics(), nil); len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	loop := sim.NewLoop(simulation, loopCfg, sim.LoopHooks{})
	feed := ws.NewFeed(ws.FeedConfig{})
	t.Cleanup(feed.Close)
	handler := NewHTTPHandler(HTTPHandlerConfig{
		Sim:       simulation,
		Queue:     loop,
		Feed:      feed,
		Publisher: events,
		Metrics:   metrics,
		TickRate:  30,
		Weapons:   func() []string { return []string{"carbine"} },
	})
	return &harness{sim: simulation, loop: loop, metrics: metrics, events: events, handler: handler}
}

func (h *harness) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	resp := httptest.NewRecorder()
	h.handler.ServeHTTP(resp, req)
	return resp
}

const fireBody = `{"weapon":"carbine","origin":{"x":0,"y":1,"z":0},"velocity":{"x":5,"y":0,"z":0},"damage":10,"lifetime":3}`

func TestHealthReturnsOK(t *testing.T) {
	h := newHarness(t, sim.LoopConfig{})
	resp := h.do(http.MethodGet, "/health", "")
	if resp.Code != http.StatusOK || resp.Body.String() != "ok" {
		t.Fatalf("expected 200 ok, got %d %q", resp.Code, resp.Body.String())
	}
	if contentType := resp.Header().Get("Content-Type"); contentType != "text/plain" {
		t.Fatalf("expected text/plain, got %q", contentType)
	}
}

func TestFireQueuesCommandForNextTick(t *testing.T) {
	h := newHarness(t, sim.LoopConfig{})

	resp := h.do(http.MethodPost, "/fire", fireBody)
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202 Accepted, got %d body=%s", resp.Code, resp.Body.String())
	}
	var payload commandResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Status != "queued" || payload.Commands != 1 {
		t.Fatalf("unexpected response: %+v", payload)
	}
	if h.loop.Pending() != 1 {
		t.Fatalf("expected one pending command, got %d", h.loop.Pending())
	}

	h.loop.Advance(sim.LoopTickContext{Delta: 0.1})
	if active := h.sim.Snapshot().ActiveTotal(); active != 1 {
		t.Fatalf("expected one active projectile, got %d", active)
	}
}

func TestFireRejections(t *testing.T) {
	h := newHarness(t, sim.LoopConfig{PerSourceLimit: 1})

	cases := []struct {
		name   string
		method string
		body   string
		status int
		reason string
	}{
		{name: "unknown weapon", method: http.MethodPost, body: `{"weapon":"bazooka","lifetime":1}`, status: http.StatusNotFound, reason: intake.RejectUnknownWeapon},
		{name: "malformed", method: http.MethodPost, body: `{`, status: http.StatusBadRequest, reason: intake.RejectInvalidRequest},
		{name: "missing lifetime", method: http.MethodPost, body: `{"weapon":"carbine"}`, status: http.StatusBadRequest, reason: intake.RejectInvalidRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := h.do(tc.method, "/fire", tc.body)
			if resp.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, resp.Code)
			}
			var payload commandResponse
			if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if payload.Reason != tc.reason {
				t.Fatalf("expected reason %q, got %q", tc.reason, payload.Reason)
			}
		})
	}

	if resp := h.do(http.MethodGet, "/fire", ""); resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for GET, got %d", resp.Code)
	}

	if resp := h.do(http.MethodPost, "/fire", fireBody); resp.Code != http.StatusAccepted {
		t.Fatalf("expected first fire to be accepted, got %d", resp.Code)
	}
	resp := h.do(http.MethodPost, "/fire", fireBody)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after per-source limit, got %d", resp.Code)
	}
	var payload commandResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Reason != sim.CommandRejectQueueLimit || !payload.Retry {
		t.Fatalf("expected retryable queue limit, got %+v", payload)
	}

	if rejected := h.events.ByType(loggingnetwork.EventRequestRejected); len(rejected) != 4 {
		t.Fatalf("expected 4 rejection events, got %d", len(rejected))
	}
}

func TestReloadQueuesCommand(t *testing.T) {
	h := newHarness(t, sim.LoopConfig{})
	resp := h.do(http.MethodPost, "/reload", `{"weapon":"carbine"}`)
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.Code)
	}
	if h.loop.Pending() != 1 {
		t.Fatalf("expected reload to be pending")
	}
	if resp := h.do(http.MethodPost, "/reload", `{"weapon":"bazooka"}`); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown weapon, got %d", resp.Code)
	}
}

func TestDiagnosticsReportsSimulationState(t *testing.T) {
	h := newHarness(t, sim.LoopConfig{})
	h.do(http.MethodPost, "/fire", fireBody)
	h.loop.Advance(sim.LoopTickContext{Delta: 0.1})

	resp := h.do(http.MethodGet, "/diagnostics", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if contentType := resp.Header().Get("Content-Type"); contentType != "application/json" {
		t.Fatalf("expected application/json, got %q", contentType)
	}
	var payload struct {
		Status     string            `json:"status"`
		Tick       uint64            `json:"tick"`
		TickRate   int               `json:"tickRate"`
		Active     int               `json:"active"`
		Weapons    []string          `json:"weapons"`
		Metrics    map[string]uint64 `json:"metrics"`
		Archetypes []struct {
			Weapon string `json:"weapon"`
			Active int    `json:"active"`
		} `json:"archetypes"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode diagnostics: %v", err)
	}
	if payload.Status != "ok" || payload.Tick != 1 || payload.TickRate != 30 || payload.Active != 1 {
		t.Fatalf("unexpected diagnostics: %+v", payload)
	}
	if len(payload.Archetypes) != 1 || payload.Archetypes[0].Weapon != "carbine" {
		t.Fatalf("unexpected archetypes: %+v", payload.Archetypes)
	}
	if payload.Metrics[telemetry.MetricSpawned] != 1 {
		t.Fatalf("expected spawned metric 1, got %v", payload.Metrics)
	}
}
