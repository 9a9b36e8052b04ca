package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 10 * time.Second
	readTimeout  = 5 * time.Minute
)

// Writer serializes frame writes to one connection. gorilla/websocket
// supports at most one concurrent writer, and the progress relay writes from
// both the pub/sub loop and the keepalive path.
type Writer struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWriter wraps a connection for use from multiple goroutines.
func NewWriter(conn *websocket.Conn) *Writer {
	return &Writer{conn: conn}
}

// WriteFrame sends a payload with a bounded write deadline.
func (w *Writer) WriteFrame(payload any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return w.conn.WriteJSON(payload)
}

// WriteError sends an error frame; failures are ignored since the
// connection is about to close anyway.
func (w *Writer) WriteError(msg string) {
	_ = w.WriteFrame(ErrorFrame{Event: EventError, Error: msg})
}

// ReadEnvelope blocks for the next client message. The read deadline
// doubles as an idle timeout for abandoned connections.
func ReadEnvelope(conn *websocket.Conn) (RequestEnvelope, error) {
	var env RequestEnvelope
	if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
		return env, err
	}
	err := conn.ReadJSON(&env)
	return env, err
}
