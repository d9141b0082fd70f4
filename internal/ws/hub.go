package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"invite-service/internal/models"
	"invite-service/internal/observability"
)

// Hub relays committed state changes to the UI clients of each peer. It is
// the thin websocket relay: delivery here is never load-bearing for the
// lifecycle; a missed event is recovered by re-querying the stores.
type Hub struct {
	rooms    map[string]map[*websocket.Conn]bool
	connInfo map[string]map[*websocket.Conn]ConnInfo
	mu       sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms:    make(map[string]map[*websocket.Conn]bool),
		connInfo: make(map[string]map[*websocket.Conn]ConnInfo),
	}
}

// AddClient registers a websocket connection for a peer.
func (h *Hub) AddClient(peerID string, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[peerID]; !ok {
		h.rooms[peerID] = make(map[*websocket.Conn]bool)
	}
	h.rooms[peerID][conn] = true
	if _, ok := h.connInfo[peerID]; !ok {
		h.connInfo[peerID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.connInfo[peerID][conn] = info
}

// RemoveClient removes a peer's websocket connection.
func (h *Hub) RemoveClient(peerID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[peerID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, peerID)
		}
	}
	if infos, ok := h.connInfo[peerID]; ok {
		delete(infos, conn)
		if len(infos) == 0 {
			delete(h.connInfo, peerID)
		}
	}
}

// BroadcastToPeer sends the event to every connection of the peer.
func (h *Hub) BroadcastToPeer(peerID string, event models.InviteEvent) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.rooms[peerID]))
	for conn := range h.rooms[peerID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	payload, _ := json.Marshal(event)
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("websocket write error peer=%s: %v", peerID, err)
			conn.Close()
			h.RemoveClient(peerID, conn)
			observability.IncWSEvent("ws_error")
			continue
		}
		observability.IncWSEvent(event.Type)
	}
}

// ClientCount reports the number of connections registered for a peer.
func (h *Hub) ClientCount(peerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[peerID])
}
