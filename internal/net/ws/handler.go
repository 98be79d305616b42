package ws

import (
	nethttp "net/http"

	"github.com/gorilla/websocket"

	"salvo/server/internal/net/intake"
	"salvo/server/internal/net/proto"
	"salvo/server/internal/sim"
	"salvo/server/internal/telemetry"
)

type HandlerConfig struct {
	Logger telemetry.Logger
	Intake intake.CommandContext
	// Snapshot supplies the frame sent immediately after the upgrade.
	Snapshot func() sim.Snapshot
	// Tick reports the current tick for acknowledgements.
	Tick func() uint64
}

// Handler upgrades feed requests and serves fire and reload commands sent
// over the socket.
type Handler struct {
	feed     *Feed
	cfg      HandlerConfig
	upgrader websocket.Upgrader
}

func NewHandler(feed *Feed, cfg HandlerConfig) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = telemetry.NopLogger()
	}
	return &Handler{
		feed: feed,
		cfg:  cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *nethttp.Request) bool {
				return true
			},
		},
	}
}

func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.cfg.Logger.Printf("[feed] upgrade failed for %s: %v", r.RemoteAddr, err)
		return
	}

	sub := h.feed.Add(r.RemoteAddr, conn)
	if h.cfg.Snapshot != nil {
		if err := h.feed.SendSnapshot(sub, h.cfg.Snapshot()); err != nil {
			h.cfg.Logger.Printf("[feed] failed to encode initial snapshot for %s: %v", sub.Remote(), err)
		}
	}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			h.feed.Remove(sub, "closed")
			return
		}

		msg, err := proto.DecodeClientMessage(payload)
		if err != nil {
			h.cfg.Logger.Printf("[feed] discarding malformed message from %s: %v", sub.Remote(), err)
			continue
		}

		switch msg.Type {
		case proto.TypeFire:
			staged, ok, reason := intake.StageFire(h.cfg.Intake, sub.Remote(), msg.FireRequest)
			h.reply(sub, msg.Seq, staged, ok, reason)
		case proto.TypeReload:
			ok, reason := intake.StageReload(h.cfg.Intake, sub.Remote(), msg.Reload())
			staged := 0
			if ok {
				staged = 1
			}
			h.reply(sub, msg.Seq, staged, ok, reason)
		default:
			h.cfg.Logger.Printf("[feed] unknown message type %q from %s", msg.Type, sub.Remote())
		}
	}
}

func (h *Handler) reply(sub *Subscriber, seq uint64, staged int, ok bool, reason string) {
	if seq == 0 {
		return
	}
	var (
		data []byte
		err  error
	)
	if ok {
		ack := proto.CommandAck{Seq: seq, Commands: staged}
		if h.cfg.Tick != nil {
			ack.Tick = h.cfg.Tick()
		}
		data, err = proto.EncodeCommandAck(ack)
	} else {
		data, err = proto.EncodeCommandReject(proto.CommandReject{
			Seq:    seq,
			Reason: reason,
			Retry:  intake.Retryable(reason),
		})
	}
	if err != nil {
		h.cfg.Logger.Printf("[feed] failed to marshal reply for %s: %v", sub.Remote(), err)
		return
	}
	sub.Send(websocket.TextMessage, data)
}
