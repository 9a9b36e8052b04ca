package websocket

import "github.com/salatech/promotion-service/internal/promotion"

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventProgress Event = "progress"
	EventError    Event = "error"
	EventPong     Event = "pong"
)

// ProgressFrame wraps one executor progress event for the admin UI.
type ProgressFrame struct {
	Event    Event                   `json:"event"`
	Progress promotion.ProgressEvent `json:"progress"`
}

// ErrorFrame reports a stream-level failure before closing.
type ErrorFrame struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

// ─── Messages (Client → Server) ─────────────────────────────────────

type Action string

const ActionPing Action = "ping"

// RequestEnvelope is the only client payload: keepalive pings.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// PongFrame answers a ping.
type PongFrame struct {
	Event Event `json:"event"`
}
