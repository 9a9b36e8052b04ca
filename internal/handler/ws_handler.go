package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/salatech/promotion-service/internal/config"
	"github.com/salatech/promotion-service/internal/middleware"
	"github.com/salatech/promotion-service/internal/promotion"
	ws "github.com/salatech/promotion-service/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowlist permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams promotion progress to the admin UI.
type WSHandler struct {
	rdb      *redis.Client
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:      rdb,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// PromotionStream godoc
// WS /ws/v1/schools/:school_id/promotion/:year_id/stream
// Upgrades to WebSocket and relays per-student execution progress published
// on the year's Redis channel. Server-to-client only, apart from keepalive
// pings.
func (h *WSHandler) PromotionStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	yearID, err := uuid.Parse(c.Param("year_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year ID"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Str("admin_id", claims.UserID.String()).
		Str("year_id", yearID.String()).
		Logger()

	sub := h.rdb.Subscribe(c.Request.Context(), config.Key.PromotionProgressChannel(yearID))
	defer sub.Close()

	wsLog.Info().Msg("Progress stream connected")

	// All frames go through one serialized writer: the read goroutine
	// answers pings while the select loop pushes progress, and the
	// connection tolerates only a single writer at a time.
	writer := ws.NewWriter(conn)

	// The read loop exists to answer pings and to notice the client going
	// away; everything else flows server to client.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			env, err := ws.ReadEnvelope(conn)
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				} else {
					wsLog.Debug().Msg("Connection closed")
				}
				return
			}
			if env.Action == ws.ActionPing {
				_ = writer.WriteFrame(ws.PongFrame{Event: ws.EventPong})
			}
		}
	}()

	for {
		select {
		case msg, open := <-sub.Channel():
			if !open {
				writer.WriteError("progress channel closed")
				return
			}
			var event promotion.ProgressEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				wsLog.Warn().Err(err).Msg("Malformed progress payload")
				continue
			}
			if err := writer.WriteFrame(ws.ProgressFrame{Event: ws.EventProgress, Progress: event}); err != nil {
				wsLog.Debug().Err(err).Msg("Progress write failed")
				return
			}
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
