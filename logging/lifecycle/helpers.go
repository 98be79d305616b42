package lifecycle

import (
	"context"

	"salvo/server/logging"
)

const (
	// EventServerStarted is emitted once the HTTP listener and loop are running.
	EventServerStarted logging.EventType = "lifecycle.server_started"
	// EventServerStopping is emitted when shutdown begins.
	EventServerStopping logging.EventType = "lifecycle.server_stopping"
	// EventCatalogReloaded is emitted after the weapon catalog is re-read.
	EventCatalogReloaded logging.EventType = "lifecycle.catalog_reloaded"
)

type ServerStartedPayload struct {
	Addr     string `json:"addr"`
	TickRate int    `json:"tickRate"`
	Seed     int64  `json:"seed"`
	Weapons  int    `json:"weapons"`
}

type ServerStoppingPayload struct {
	Reason string `json:"reason"`
}

type CatalogReloadedPayload struct {
	Weapons []string `json:"weapons"`
	Error   string   `json:"error,omitempty"`
}

func ServerStarted(ctx context.Context, pub logging.Publisher, tick uint64, payload ServerStartedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventServerStarted,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindWorld},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	})
}

func ServerStopping(ctx context.Context, pub logging.Publisher, tick uint64, payload ServerStoppingPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventServerStopping,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindWorld},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	})
}

// CatalogReloaded publishes the reload outcome. A failed reload is an error
// event; the previous catalog stays in effect.
func CatalogReloaded(ctx context.Context, pub logging.Publisher, tick uint64, payload CatalogReloadedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	severity := logging.SeverityInfo
	if payload.Error != "" {
		severity = logging.SeverityError
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventCatalogReloaded,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindWorld},
		Severity: severity,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	})
}
