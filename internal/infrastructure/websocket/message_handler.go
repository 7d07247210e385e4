package websocket

import (
	"encoding/json"
	"time"

	"foodshare/pkg/logger"
)

const (
	MessageTypePing  = "ping"
	MessageTypePong  = "pong"
	MessageTypeError = "error"
)

// WSMessage is the envelope for client-initiated frames. Chat messages are
// sent over HTTP; the socket only carries pushes and keepalives.
type WSMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// HandleClientMessage answers a client frame.
func (m *Manager) HandleClientMessage(client *Client, messageBytes []byte) {
	var msg WSMessage
	if err := json.Unmarshal(messageBytes, &msg); err != nil {
		logger.Debug("WebSocket: invalid frame from %s: %v", client.UserID, err)
		m.sendToClient(client, WSMessage{Type: MessageTypeError, Data: "Invalid message format"})
		return
	}

	switch msg.Type {
	case MessageTypePing:
		m.sendToClient(client, WSMessage{Type: MessageTypePong})
	default:
		m.sendToClient(client, WSMessage{Type: MessageTypeError, Data: "Unsupported message type: " + msg.Type})
	}
}

// sendToClient replies on the connection the frame arrived on. A client that
// has been replaced or unregistered has a closed Send and gets nothing.
func (m *Manager) sendToClient(client *Client, message WSMessage) {
	message.Timestamp = time.Now().UTC().Format(time.RFC3339)
	data, err := json.Marshal(message)
	if err != nil {
		logger.Error("WebSocket: encode reply for %s: %v", client.UserID, err)
		return
	}

	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.clients[client.UserID] != client {
		logger.Debug("WebSocket: reply to stale connection of %s dropped", client.UserID)
		return
	}

	select {
	case client.Send <- data:
	default:
		logger.Debug("WebSocket: reply to %s dropped: %v", client.UserID, ErrSlowClient)
	}
}
