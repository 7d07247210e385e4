package router

import (
	"github.com/labstack/echo/v4"

	"foodshare/internal/adapter/api/handler"
	"foodshare/internal/adapter/api/middleware"
)

func SetupProfileRouter(v1 *echo.Group, profileHandler *handler.ProfileHandler, authMiddleware *middleware.AuthMiddleware) {
	v1.GET("/me", profileHandler.GetCurrentUser, authMiddleware.Identify)

	profileGroup := v1.Group("/profile", authMiddleware.Authenticate)
	profileGroup.POST("", profileHandler.CreateProfile)
	profileGroup.PATCH("", profileHandler.UpdateProfile)
}
