package net

import (
	"context"
	"encoding/json"
	"io"
	"log"
	nethttp "net/http"
	"time"

	"salvo/server/internal/archetype"
	"salvo/server/internal/net/intake"
	"salvo/server/internal/net/proto"
	"salvo/server/internal/net/ws"
	"salvo/server/internal/observability"
	"salvo/server/internal/sim"
	"salvo/server/logging"
	loggingnetwork "salvo/server/logging/network"
)

const maxBodyBytes = 1 << 16

// Simulation is the read side of the engine the HTTP surface reports on.
type Simulation interface {
	ArchetypesFor(weaponID string) []archetype.ID
	Snapshot() sim.Snapshot
	Tick() uint64
}

type HTTPHandlerConfig struct {
	Logger    *log.Logger
	Sim       Simulation
	Queue     intake.Queue
	Feed      *ws.Feed
	Publisher logging.Publisher
	Metrics   *logging.Metrics
	Router    *logging.Router
	TickRate  int
	Weapons   func() []string

	Observability observability.Config
}

type commandResponse struct {
	Status   string `json:"status"`
	Commands int    `json:"commands,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Retry    bool   `json:"retry,omitempty"`
}

func NewHTTPHandler(cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	intakeCtx := intake.CommandContext{Queue: cfg.Queue, Archetypes: cfg.Sim}
	tick := func() uint64 {
		if cfg.Sim == nil {
			return 0
		}
		return cfg.Sim.Tick()
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		type archetypeDiagnostics struct {
			ID     archetype.ID `json:"id"`
			Weapon string       `json:"weapon"`
			Active int          `json:"active"`
		}
		payload := struct {
			Status      string                 `json:"status"`
			ServerTime  int64                  `json:"serverTime"`
			Tick        uint64                 `json:"tick"`
			TickRate    int                    `json:"tickRate"`
			Active      int                    `json:"active"`
			Archetypes  []archetypeDiagnostics `json:"archetypes"`
			Weapons     []string               `json:"weapons,omitempty"`
			Subscribers int                    `json:"subscribers"`
			Metrics     map[string]uint64      `json:"metrics,omitempty"`
			Logging     logging.RouterStats    `json:"logging"`
		}{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
			TickRate:   cfg.TickRate,
			Archetypes: []archetypeDiagnostics{},
			Metrics:    cfg.Metrics.Snapshot(),
			Logging:    cfg.Router.Stats(),
		}
		if cfg.Sim != nil {
			snapshot := cfg.Sim.Snapshot()
			payload.Tick = snapshot.Tick
			payload.Active = snapshot.ActiveTotal()
			for _, a := range snapshot.Archetypes {
				payload.Archetypes = append(payload.Archetypes, archetypeDiagnostics{ID: a.ID, Weapon: a.Weapon, Active: a.Active})
			}
		}
		if cfg.Weapons != nil {
			payload.Weapons = cfg.Weapons()
		}
		if cfg.Feed != nil {
			payload.Subscribers = cfg.Feed.Count()
		}
		writeJSON(w, nethttp.StatusOK, payload)
	})

	reject := func(w nethttp.ResponseWriter, r *nethttp.Request, status int, reason string) {
		loggingnetwork.RequestRejected(r.Context(), publisher, tick(), loggingnetwork.RequestRejectedPayload{
			Route:  r.URL.Path,
			Status: status,
			Reason: reason,
		}, map[string]any{"remote": r.RemoteAddr})
		writeJSON(w, status, commandResponse{Status: "rejected", Reason: reason, Retry: intake.Retryable(reason)})
	}

	mux.HandleFunc("/fire", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		body, err := readBody(r)
		if err != nil {
			reject(w, r, nethttp.StatusBadRequest, intake.RejectInvalidRequest)
			return
		}
		req, err := proto.DecodeFireRequest(body)
		if err != nil {
			reject(w, r, nethttp.StatusBadRequest, intake.RejectInvalidRequest)
			return
		}
		staged, ok, reason := intake.StageFire(intakeCtx, sourceOf(r, req.Source), req)
		if !ok {
			reject(w, r, rejectStatus(reason), reason)
			return
		}
		writeJSON(w, nethttp.StatusAccepted, commandResponse{Status: "queued", Commands: staged})
	})

	mux.HandleFunc("/reload", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		body, err := readBody(r)
		if err != nil {
			reject(w, r, nethttp.StatusBadRequest, intake.RejectInvalidRequest)
			return
		}
		req, err := proto.DecodeReloadRequest(body)
		if err != nil {
			reject(w, r, nethttp.StatusBadRequest, intake.RejectInvalidRequest)
			return
		}
		if ok, reason := intake.StageReload(intakeCtx, sourceOf(r, req.Source), req); !ok {
			reject(w, r, rejectStatus(reason), reason)
			return
		}
		writeJSON(w, nethttp.StatusAccepted, commandResponse{Status: "queued", Commands: 1})
	})

	if cfg.Feed != nil {
		handler := ws.NewHandler(cfg.Feed, ws.HandlerConfig{
			Logger: logger,
			Intake: intakeCtx,
			Tick:   tick,
			Snapshot: func() sim.Snapshot {
				if cfg.Sim == nil {
					return sim.Snapshot{}
				}
				return cfg.Sim.Snapshot()
			},
		})
		mux.HandleFunc("/ws", handler.Handle)
	}

	observability.Mount(mux, cfg.Observability)

	return mux
}

func readBody(r *nethttp.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, io.EOF
	}
	defer r.Body.Close()
	return io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
}

// sourceOf picks the throttling key: the declared source, else the remote
// address.
func sourceOf(r *nethttp.Request, declared string) string {
	if declared != "" {
		return declared
	}
	return r.RemoteAddr
}

func rejectStatus(reason string) int {
	switch reason {
	case intake.RejectUnknownWeapon:
		return nethttp.StatusNotFound
	case intake.RejectInvalidRequest:
		return nethttp.StatusBadRequest
	case sim.CommandRejectQueueLimit, sim.CommandRejectQueueFull:
		return nethttp.StatusTooManyRequests
	default:
		return nethttp.StatusServiceUnavailable
	}
}

func writeJSON(w nethttp.ResponseWriter, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		httpError(w, "failed to encode", nethttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func httpError(w nethttp.ResponseWriter, msg string, code int) {
	nethttp.Error(w, msg, code)
}

// Shutdown closes the feed so upgraded connections do not outlive the server.
func Shutdown(ctx context.Context, srv *nethttp.Server, feed *ws.Feed) error {
	if feed != nil {
		feed.Close()
	}
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
