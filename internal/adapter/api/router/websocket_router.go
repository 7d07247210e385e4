package router

import (
	"github.com/labstack/echo/v4"

	"foodshare/internal/adapter/api/handler"
)

// SetupWebSocketRouter mounts the push socket. It authenticates inside the
// handler from the token query parameter.
func SetupWebSocketRouter(v1 *echo.Group, wsHandler *handler.WebSocketHandler) {
	v1.GET("/ws", wsHandler.HandleWebSocket)
}
