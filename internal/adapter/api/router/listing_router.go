package router

import (
	"github.com/labstack/echo/v4"

	"foodshare/internal/adapter/api/handler"
	"foodshare/internal/adapter/api/middleware"
)

func SetupListingRouter(
	v1 *echo.Group,
	listingHandler *handler.ListingHandler,
	claimHandler *handler.ClaimHandler,
	reportHandler *handler.ReportHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	listingGroup := v1.Group("/listings")

	// Public browsing
	listingGroup.GET("", listingHandler.GetListings)
	listingGroup.GET("/mine", listingHandler.GetMyListings, authMiddleware.Identify)

	// Donor management
	listingGroup.POST("", listingHandler.CreateListing, authMiddleware.Authenticate)
	listingGroup.PUT("/:listingId", listingHandler.UpdateListing, authMiddleware.Authenticate)
	listingGroup.DELETE("/:listingId", listingHandler.DeleteListing, authMiddleware.Authenticate)

	listingGroup.POST("/:listingId/claims", claimHandler.CreateClaim, authMiddleware.Authenticate)
	listingGroup.POST("/:listingId/reports", reportHandler.ReportListing, authMiddleware.Authenticate)
}
