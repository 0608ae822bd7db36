package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/furqan-uddin/SkillForge-Backend/internal/broker"
	"github.com/furqan-uddin/SkillForge-Backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	maxSessionLifetime = 15 * time.Minute
	writeWait          = 10 * time.Second
	pongWait           = 60 * time.Second
	pingPeriod         = (pongWait * 9) / 10
	maxMessageSize     = 4 * 1024 // clients only send control frames
)

// WSResponse is one frame pushed to a progress stream client.
type WSResponse struct {
	Type  string                `json:"type"` // "progress", "session_expired"
	Event *broker.ProgressEvent `json:"event,omitempty"`
	Error string                `json:"error,omitempty"`
}

// ProgressStreamHandler relays a user's progress events to their websocket
// connections. Each connection holds its own broker subscription.
type ProgressStreamHandler struct {
	broker   broker.ProgressBroker
	upgrader websocket.Upgrader
	lifetime time.Duration

	mu      sync.RWMutex
	clients map[*websocket.Conn]*streamClient
}

type streamClient struct {
	conn        *websocket.Conn
	userID      uuid.UUID
	connectedAt time.Time
	writeMu     sync.Mutex
}

// NewProgressStreamHandler accepts upgrades from allowedOrigins. An empty list
// allows any origin.
func NewProgressStreamHandler(b broker.ProgressBroker, allowedOrigins []string) *ProgressStreamHandler {
	if b == nil {
		b = broker.NopBroker{}
	}
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &ProgressStreamHandler{
		broker:   b,
		lifetime: maxSessionLifetime,
		clients:  make(map[*websocket.Conn]*streamClient),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

// SetSessionLifetime caps how long a single connection may stay open.
func (h *ProgressStreamHandler) SetSessionLifetime(d time.Duration) {
	if d > 0 {
		h.lifetime = d
	}
}

func (h *ProgressStreamHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *ProgressStreamHandler) HandleWebSocket(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := h.broker.Subscribe(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Warn("WebSocket upgrade failed",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return
	}

	client := &streamClient{
		conn:        conn,
		userID:      userID,
		connectedAt: time.Now(),
	}

	h.mu.Lock()
	h.clients[conn] = client
	total := len(h.clients)
	h.mu.Unlock()

	logger.Log.Info("Progress stream connected",
		zap.String("user_id", userID.String()),
		zap.Int("total", total),
	)

	defer h.removeClient(conn)

	go h.readPump(client, cancel)
	h.writePump(ctx, client, events)
}

// readPump discards client frames and keeps the read deadline alive. It
// cancels the session when the peer goes away.
func (h *ProgressStreamHandler) readPump(client *streamClient, cancel context.CancelFunc) {
	defer cancel()

	client.conn.SetReadLimit(maxMessageSize)
	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Warn("WebSocket read error",
					zap.String("user_id", client.userID.String()),
					zap.Error(err),
				)
			}
			return
		}
	}
}

func (h *ProgressStreamHandler) writePump(ctx context.Context, client *streamClient, events <-chan broker.ProgressEvent) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	sessionTimer := time.NewTimer(h.lifetime)
	defer sessionTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-sessionTimer.C:
			h.closeClientGracefully(client, "session expired")
			return

		case event, ok := <-events:
			if !ok {
				return
			}
			if err := client.writeJSON(WSResponse{Type: "progress", Event: &event}); err != nil {
				logger.Log.Warn("Failed to push progress event",
					zap.String("user_id", client.userID.String()),
					zap.Error(err),
				)
				return
			}

		case <-ticker.C:
			client.writeMu.Lock()
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := client.conn.WriteMessage(websocket.PingMessage, nil)
			client.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (c *streamClient) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

func (h *ProgressStreamHandler) closeClientGracefully(client *streamClient, reason string) {
	if err := client.writeJSON(WSResponse{Type: "session_expired", Error: reason}); err != nil {
		logger.Log.Debug("Failed to send session_expired", zap.Error(err))
	}

	client.writeMu.Lock()
	client.conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := client.conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason),
	)
	client.writeMu.Unlock()
	if err != nil {
		logger.Log.Debug("Failed to send close frame", zap.Error(err))
	}
}

func (h *ProgressStreamHandler) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, exists := h.clients[conn]
	if !exists {
		return
	}
	delete(h.clients, conn)
	conn.Close()

	logger.Log.Info("Progress stream disconnected",
		zap.String("user_id", client.userID.String()),
		zap.Duration("session", time.Since(client.connectedAt).Round(time.Second)),
		zap.Int("remaining", len(h.clients)),
	)
}
