package network

import (
	"context"

	"salvo/server/logging"
)

const (
	// EventSubscriberConnected is emitted when a feed websocket is accepted.
	EventSubscriberConnected logging.EventType = "network.subscriber_connected"
	// EventSubscriberDisconnected is emitted when a feed websocket closes.
	EventSubscriberDisconnected logging.EventType = "network.subscriber_disconnected"
	// EventRequestRejected is emitted when an HTTP command fails validation.
	EventRequestRejected logging.EventType = "network.request_rejected"
)

type SubscriberPayload struct {
	Remote string `json:"remote"`
	Reason string `json:"reason,omitempty"`
	Frames uint64 `json:"frames,omitempty"`
}

type RequestRejectedPayload struct {
	Route  string `json:"route"`
	Status int    `json:"status"`
	Reason string `json:"reason"`
}

func SubscriberConnected(ctx context.Context, pub logging.Publisher, tick uint64, payload SubscriberPayload, extra map[string]any) {
	publish(ctx, pub, tick, EventSubscriberConnected, logging.SeverityInfo, payload, extra)
}

func SubscriberDisconnected(ctx context.Context, pub logging.Publisher, tick uint64, payload SubscriberPayload, extra map[string]any) {
	publish(ctx, pub, tick, EventSubscriberDisconnected, logging.SeverityInfo, payload, extra)
}

// RequestRejected publishes a debug event for a malformed command.
func RequestRejected(ctx context.Context, pub logging.Publisher, tick uint64, payload RequestRejectedPayload, extra map[string]any) {
	publish(ctx, pub, tick, EventRequestRejected, logging.SeverityDebug, payload, extra)
}

func publish(ctx context.Context, pub logging.Publisher, tick uint64, eventType logging.EventType, severity logging.Severity, payload any, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     eventType,
		Tick:     tick,
		Severity: severity,
		Category: logging.CategoryNetwork,
		Payload:  payload,
		Extra:    extra,
	})
}
