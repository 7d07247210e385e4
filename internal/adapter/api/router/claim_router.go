package router

import (
	"github.com/labstack/echo/v4"

	"foodshare/internal/adapter/api/handler"
	"foodshare/internal/adapter/api/middleware"
)

func SetupClaimRouter(v1 *echo.Group, claimHandler *handler.ClaimHandler, messageHandler *handler.MessageHandler, authMiddleware *middleware.AuthMiddleware) {
	claimGroup := v1.Group("/claims")

	claimGroup.GET("/mine", claimHandler.GetMyClaims, authMiddleware.Identify)
	claimGroup.GET("/incoming", claimHandler.GetClaimsForDonor, authMiddleware.Identify)

	claimGroup.POST("/:claimId/respond", claimHandler.RespondToClaim, authMiddleware.Authenticate)
	claimGroup.POST("/:claimId/complete", claimHandler.CompleteClaim, authMiddleware.Authenticate)

	claimGroup.GET("/:claimId/messages", messageHandler.GetMessages, authMiddleware.Identify)
	claimGroup.POST("/:claimId/messages", messageHandler.SendMessage, authMiddleware.Authenticate)
}
