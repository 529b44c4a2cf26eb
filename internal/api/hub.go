package api

import (
	"sync"
	"time"

	"github.com/circuitbench/backend/internal/models"
)

// hub fans workspace updates out to every connected WebSocket client.
// REST handlers and socket readers both publish here, so a change made
// over HTTP still reaches clients watching over the socket.
type hub struct {
	mu      sync.RWMutex
	clients map[string]map[*wsClient]struct{}
}

// wsClient is one subscriber. The send channel is drained by the
// connection's writer goroutine; the channel is never closed, clients are
// only removed from the map.
type wsClient struct {
	send chan WSMessage
}

func newHub() *hub {
	return &hub{
		clients: make(map[string]map[*wsClient]struct{}),
	}
}

// subscribe registers a new client for the given workspace.
func (h *hub) subscribe(workspaceID string) *wsClient {
	client := &wsClient{
		send: make(chan WSMessage, 32),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[workspaceID] == nil {
		h.clients[workspaceID] = make(map[*wsClient]struct{})
	}
	h.clients[workspaceID][client] = struct{}{}
	return client
}

// unsubscribe removes a client. The send channel stays open so a
// concurrent broadcast can never panic on it.
func (h *hub) unsubscribe(workspaceID string, client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.clients[workspaceID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.clients, workspaceID)
		}
	}
}

// broadcast enqueues a message for every subscriber of the workspace. A
// client whose buffer is full misses this message rather than blocking
// the sender; the next snapshot resyncs it.
func (h *hub) broadcast(workspaceID string, msg WSMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[workspaceID] {
		select {
		case client.send <- msg:
		default:
		}
	}
}

// broadcastUpdate wraps a workspace update in the wire envelope and fans
// it out.
func (h *hub) broadcastUpdate(workspaceID string, update *models.Update) {
	if update == nil {
		return
	}
	h.broadcast(workspaceID, WSMessage{
		Type:      MsgTypeUpdate,
		Payload:   mustJSON(update),
		Timestamp: time.Now().UnixMilli(),
	})
}
