package handler

import (
	"github.com/labstack/echo/v4"

	"foodshare/internal/adapter/api/middleware"
	"foodshare/internal/infrastructure/identity"
	ws "foodshare/internal/infrastructure/websocket"
	"foodshare/internal/usecase"
)

type Handlers struct {
	Health    *HealthHandler
	Profile   *ProfileHandler
	Listing   *ListingHandler
	Claim     *ClaimHandler
	Message   *MessageHandler
	Report    *ReportHandler
	Upload    *UploadHandler
	WebSocket *WebSocketHandler
}

type UseCases struct {
	Profiles *usecase.ProfileUseCase
	Listings *usecase.ListingUseCase
	Claims   *usecase.ClaimUseCase
	Messages *usecase.MessageUseCase
	Reports  *usecase.ReportUseCase
	Photos   *usecase.PhotoUseCase
}

func Setup(uc UseCases, wsManager *ws.Manager, resolver identity.Resolver) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(),
		Profile:   NewProfileHandler(uc.Profiles),
		Listing:   NewListingHandler(uc.Listings),
		Claim:     NewClaimHandler(uc.Claims),
		Message:   NewMessageHandler(uc.Messages),
		Report:    NewReportHandler(uc.Reports),
		Upload:    NewUploadHandler(uc.Photos),
		WebSocket: NewWebSocketHandler(wsManager, resolver),
	}
}

// callerID is empty for anonymous requests on optionally authenticated routes.
func callerID(c echo.Context) string {
	uid, _ := c.Get(middleware.ContextUID).(string)
	return uid
}

func callerEmail(c echo.Context) string {
	email, _ := c.Get(middleware.ContextEmail).(string)
	return email
}
