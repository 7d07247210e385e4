package handler

import (
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"foodshare/internal/adapter/api/middleware"
	"foodshare/internal/infrastructure/identity"
	ws "foodshare/internal/infrastructure/websocket"
	"foodshare/pkg/errors"
	"foodshare/pkg/logger"
	"foodshare/pkg/response"
)

type WebSocketHandler struct {
	wsManager *ws.Manager
	resolver  identity.Resolver
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func NewWebSocketHandler(wsManager *ws.Manager, resolver identity.Resolver) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager: wsManager,
		resolver:  resolver,
	}
}

// HandleWebSocket authenticates before the upgrade. Browsers cannot set
// headers on a socket handshake, so the token may come as ?token=.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		token, _ = middleware.BearerToken(c)
	}
	if token == "" {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	id, err := h.resolver.Resolve(c.Request().Context(), token)
	if err != nil {
		return response.Error(c, errors.Unauthorized("Invalid or expired token", err))
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already written an HTTP error
		logger.Warn("WebSocket upgrade failed for %s: %v", id.UID, err)
		return nil
	}

	client := ws.NewClient(id.UID, conn)
	if !h.wsManager.Add(client) {
		logger.Debug("WebSocket manager stopped, closing connection for %s", id.UID)
		conn.Close()
		return nil
	}

	go client.ReadPump(h.wsManager)
	go client.WritePump()

	return nil
}
