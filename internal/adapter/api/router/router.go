package router

import (
	"github.com/labstack/echo/v4"

	"foodshare/internal/adapter/api/handler"
	"foodshare/internal/adapter/api/middleware"
)

// Setup registers every route. limiter may be nil to disable per-IP throttling.
func Setup(e *echo.Echo, h *handler.Handlers, authMiddleware *middleware.AuthMiddleware, limiter middleware.Limiter) {
	e.HTTPErrorHandler = ErrorHandler

	SetupHealthRouter(e, h.Health)

	v1 := e.Group("/v1")
	if limiter != nil {
		v1.Use(middleware.IPRateLimit(limiter))
	}

	SetupProfileRouter(v1, h.Profile, authMiddleware)
	SetupListingRouter(v1, h.Listing, h.Claim, h.Report, authMiddleware)
	SetupClaimRouter(v1, h.Claim, h.Message, authMiddleware)
	SetupReportRouter(v1, h.Report, authMiddleware)
	SetupUploadRouter(v1, h.Upload, authMiddleware)
	SetupWebSocketRouter(v1, h.WebSocket)
}
