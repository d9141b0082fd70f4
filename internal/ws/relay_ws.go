package ws

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"invite-service/internal/observability"
)

// RelayHandler upgrades UI clients onto the state-change relay.
type RelayHandler struct {
	hub         *Hub
	deviceToken string
}

// NewRelayHandler constructs a RelayHandler.
func NewRelayHandler(hub *Hub, deviceToken string) *RelayHandler {
	return &RelayHandler{hub: hub, deviceToken: deviceToken}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection and registers the client until it closes.
func (h *RelayHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("invite-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	if h.deviceToken != "" {
		token := c.Query("token")
		if subtle.ConstantTimeCompare([]byte(token), []byte(h.deviceToken)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
	}

	peerID := c.Query("peer_id")
	if peerID == "" {
		peerID = observability.PeerIDFromRequest(c.Request)
	}
	if peerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing peer_id"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := ConnInfo{
		ConnID:      newConnID(),
		PeerID:      peerID,
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	h.hub.AddClient(peerID, conn, info)
	observability.IncWSActive()

	defer func() {
		h.hub.RemoveClient(peerID, conn)
		observability.DecWSActive()
		conn.Close()
	}()

	// The relay is one-way; drain control frames until the client leaves.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
