package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/circuitbench/backend/internal/circuit"
	"github.com/circuitbench/backend/internal/workspace"
)

// WebSocket message types for the workspace protocol
const (
	// Client -> Server messages
	MsgTypeCommand = "command"
	MsgTypePing    = "ping"

	// Server -> Client messages
	MsgTypeConnected = "connected"
	MsgTypeSnapshot  = "snapshot"
	MsgTypeUpdate    = "update"
	MsgTypeError     = "error"
	MsgTypePong      = "pong"
)

// WebSocket message structure
type WSMessage struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// WebSocket error response
type WSErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// WebSocketHandler manages live workspace connections. Each connection
// subscribes to the hub, so commands applied over REST are pushed to it
// as well.
type WebSocketHandler struct {
	manager        WorkspaceManager
	hub            *hub
	upgrader       websocket.Upgrader
	maxMessageSize int64
}

// NewWebSocketHandler creates a WebSocket handler over the shared hub.
func NewWebSocketHandler(manager WorkspaceManager, h *hub, maxMessageKB int) *WebSocketHandler {
	if maxMessageKB <= 0 {
		maxMessageKB = 256
	}
	return &WebSocketHandler{
		manager: manager,
		hub:     h,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Allow connections from dev server
				return true
			},
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
		},
		maxMessageSize: int64(maxMessageKB) * 1024,
	}
}

// HandleWorkspaceSocket upgrades the connection and speaks the command
// protocol for one workspace.
func (wsh *WebSocketHandler) HandleWorkspaceSocket(c echo.Context) error {
	id := c.Param("id")
	ws, ok := wsh.manager.Get(id)
	if !ok {
		return NewNotFoundError("workspace", id)
	}

	conn, err := wsh.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	conn.SetReadLimit(wsh.maxMessageSize)

	fmt.Printf("[WebSocket] Client joined workspace %s\n", id[:8])

	client := wsh.hub.subscribe(id)
	defer wsh.hub.unsubscribe(id, client)

	// All conn writes happen on this goroutine; the reader and the hub
	// only enqueue.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			select {
			case msg := <-client.send:
				if err := conn.WriteJSON(msg); err != nil {
					fmt.Printf("[WebSocket] Failed to send message: %v\n", err)
					return
				}
			case <-stop:
				return
			}
		}
	}()

	wsh.enqueue(client, WSMessage{
		Type:      MsgTypeConnected,
		ID:        id,
		Timestamp: time.Now().UnixMilli(),
	})
	wsh.enqueue(client, WSMessage{
		Type:      MsgTypeSnapshot,
		Payload:   mustJSON(ws.Snapshot()),
		Timestamp: time.Now().UnixMilli(),
	})

	// Main message loop
	for {
		var msg WSMessage
		err := conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				fmt.Printf("[WebSocket] Connection error: %v\n", err)
			}
			break
		}

		switch msg.Type {
		case MsgTypePing:
			// Respond with pong to keep connection alive
			wsh.enqueue(client, WSMessage{Type: MsgTypePong, Timestamp: time.Now().UnixMilli()})
		case MsgTypeCommand:
			wsh.handleCommand(client, ws, msg)
		default:
			wsh.sendError(client, "Unknown message type: "+msg.Type, "INVALID_TYPE")
		}
	}

	fmt.Printf("[WebSocket] Client left workspace %s\n", id[:8])
	return nil
}

// handleCommand applies one workspace command and broadcasts the result.
// A rejected command only answers the sender; there is nothing to push to
// the other clients because state did not change.
func (wsh *WebSocketHandler) handleCommand(client *wsClient, ws *workspace.Workspace, msg WSMessage) {
	var cmd workspace.Command
	if err := json.Unmarshal(msg.Payload, &cmd); err != nil {
		wsh.sendError(client, "Invalid command payload: "+err.Error(), "INVALID_PAYLOAD")
		return
	}

	wsh.manager.Touch(ws.ID)

	update, err := ws.Apply(cmd)
	if err != nil {
		wsh.sendError(client, err.Error(), commandErrorCode(err))
		return
	}

	wsh.hub.broadcastUpdate(ws.ID, update)
}

// commandErrorCode maps engine sentinels to wire error codes.
func commandErrorCode(err error) string {
	switch {
	case errors.Is(err, circuit.ErrPartAlreadyPlaced):
		return "PART_ALREADY_PLACED"
	case errors.Is(err, circuit.ErrUnknownPartType):
		return "UNKNOWN_PART_TYPE"
	case errors.Is(err, circuit.ErrInvalidPin):
		return "INVALID_PIN"
	case errors.Is(err, circuit.ErrPartNotPlaced):
		return "PART_NOT_PLACED"
	case errors.Is(err, workspace.ErrUnknownPart):
		return "UNKNOWN_PART"
	case errors.Is(err, workspace.ErrInvalidViewMode):
		return "INVALID_VIEW_MODE"
	default:
		return "COMMAND_REJECTED"
	}
}

// Helper methods

func (wsh *WebSocketHandler) enqueue(client *wsClient, msg WSMessage) {
	select {
	case client.send <- msg:
	default:
	}
}

func (wsh *WebSocketHandler) sendError(client *wsClient, message, code string) {
	wsh.enqueue(client, WSMessage{
		Type:      MsgTypeError,
		Timestamp: time.Now().UnixMilli(),
		Payload: mustJSON(WSErrorResponse{
			Type:    MsgTypeError,
			Message: message,
			Code:    code,
		}),
	})
}

func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return data
}
