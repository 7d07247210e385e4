package router

import (
	"fmt"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"foodshare/internal/adapter/api/handler"
	"foodshare/internal/adapter/api/middleware"
	"foodshare/internal/usecase"
)

func SetupUploadRouter(v1 *echo.Group, uploadHandler *handler.UploadHandler, authMiddleware *middleware.AuthMiddleware) {
	// room for multipart framing on top of the largest photo
	bodyLimit := echomw.BodyLimit(fmt.Sprintf("%dK", usecase.MaxPhotoSize/1024+64))

	uploadGroup := v1.Group("/uploads", authMiddleware.Authenticate, bodyLimit)
	uploadGroup.POST("/listing-photo", uploadHandler.UploadListingPhoto)
}
