package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The progress relay writes from two goroutines (pub/sub loop and the ping
// responder); the wrapped connection must survive that without a concurrent
// write fault and deliver every frame.
func TestWriterSerializesConcurrentWrites(t *testing.T) {
	const writers, framesEach = 16, 10

	upgrader := websocket.Upgrader{}
	received := make(chan struct{}, writers*framesEach)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
			received <- struct{}{}
		}
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	writer := NewWriter(conn)

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < framesEach; j++ {
				assert.NoError(t, writer.WriteFrame(PongFrame{Event: EventPong}))
			}
		}()
	}
	wg.Wait()

	for i := 0; i < writers*framesEach; i++ {
		select {
		case <-received:
		case <-time.After(2 * time.Second):
			t.Fatalf("received %d of %d frames", i, writers*framesEach)
		}
	}
}
