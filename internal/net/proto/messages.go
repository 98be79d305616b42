package proto

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"salvo/server/internal/sim"
	"salvo/server/internal/vecmath"
)

const (
	// Version tracks the wire-protocol revision expected by clients.
	Version = 1

	typeCommandAck    = "commandAck"
	typeCommandReject = "commandReject"
	typeSnapshot      = "snapshot"
)

// Client message type identifiers.
const (
	TypeFire   = "fire"
	TypeReload = "reload"
)

// Exported aliases for outbound message type identifiers.
const (
	TypeSnapshot      = typeSnapshot
	TypeCommandAck    = typeCommandAck
	TypeCommandReject = typeCommandReject
)

// ErrInvalidMessage wraps every decode failure.
var ErrInvalidMessage = errors.New("invalid message")

// FireRequest asks for one projectile of every archetype compiled for Weapon.
type FireRequest struct {
	Weapon   string       `json:"weapon"`
	Source   string       `json:"source,omitempty"`
	Origin   vecmath.Vec3 `json:"origin"`
	Velocity vecmath.Vec3 `json:"velocity"`
	Damage   float64      `json:"damage"`
	Lifetime float64      `json:"lifetime"`
}

// ReloadRequest reports that Weapon reloaded.
type ReloadRequest struct {
	Weapon string `json:"weapon"`
	Source string `json:"source,omitempty"`
}

// ClientMessage is the envelope for commands sent over the feed socket.
type ClientMessage struct {
	Ver  int    `json:"ver,omitempty"`
	Type string `json:"type"`
	Seq  uint64 `json:"seq,omitempty"`
	FireRequest
}

// DecodeClientMessage parses a JSON text frame.
func DecodeClientMessage(payload []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return ClientMessage{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if msg.Type == "" {
		return ClientMessage{}, fmt.Errorf("%w: missing type", ErrInvalidMessage)
	}
	return msg, nil
}

// DecodeFireRequest parses an HTTP fire body.
func DecodeFireRequest(payload []byte) (FireRequest, error) {
	var req FireRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return FireRequest{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return req, nil
}

// DecodeReloadRequest parses an HTTP reload body.
func DecodeReloadRequest(payload []byte) (ReloadRequest, error) {
	var req ReloadRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return ReloadRequest{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return req, nil
}

// Reload extracts the reload fields of a feed message.
func (m ClientMessage) Reload() ReloadRequest {
	return ReloadRequest{Weapon: m.Weapon, Source: m.Source}
}

// CommandAck confirms that a command was staged for the next tick.
type CommandAck struct {
	Ver      int    `json:"ver"`
	Type     string `json:"type"`
	Seq      uint64 `json:"seq,omitempty"`
	Tick     uint64 `json:"tick,omitempty"`
	Commands int    `json:"commands"`
}

// EncodeCommandAck renders an acknowledgement.
func EncodeCommandAck(msg CommandAck) ([]byte, error) {
	msg.Ver = Version
	msg.Type = typeCommandAck
	return json.Marshal(msg)
}

// CommandReject reports why a command was not staged.
type CommandReject struct {
	Ver    int    `json:"ver"`
	Type   string `json:"type"`
	Seq    uint64 `json:"seq,omitempty"`
	Reason string `json:"reason"`
	Retry  bool   `json:"retry,omitempty"`
}

// EncodeCommandReject renders a rejection.
func EncodeCommandReject(msg CommandReject) ([]byte, error) {
	msg.Ver = Version
	msg.Type = typeCommandReject
	return json.Marshal(msg)
}

// SnapshotFrame is the binary frame streamed to feed subscribers after every
// tick.
type SnapshotFrame struct {
	Ver        int          `msgpack:"ver"`
	Type       string       `msgpack:"type"`
	ServerTime int64        `msgpack:"serverTime"`
	Snapshot   sim.Snapshot `msgpack:"snapshot"`
}

// EncodeSnapshotFrame renders a msgpack snapshot frame.
func EncodeSnapshotFrame(serverTime int64, snapshot sim.Snapshot) ([]byte, error) {
	return msgpack.Marshal(SnapshotFrame{
		Ver:        Version,
		Type:       typeSnapshot,
		ServerTime: serverTime,
		Snapshot:   snapshot,
	})
}

// DecodeSnapshotFrame parses a msgpack snapshot frame.
func DecodeSnapshotFrame(data []byte) (SnapshotFrame, error) {
	var frame SnapshotFrame
	if err := msgpack.Unmarshal(data, &frame); err != nil {
		return SnapshotFrame{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if frame.Type != typeSnapshot {
		return SnapshotFrame{}, fmt.Errorf("%w: unexpected frame type %q", ErrInvalidMessage, frame.Type)
	}
	return frame, nil
}
