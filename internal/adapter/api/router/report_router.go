package router

import (
	"github.com/labstack/echo/v4"

	"foodshare/internal/adapter/api/handler"
	"foodshare/internal/adapter/api/middleware"
)

func SetupReportRouter(v1 *echo.Group, reportHandler *handler.ReportHandler, authMiddleware *middleware.AuthMiddleware) {
	v1.GET("/reports", reportHandler.GetReports, authMiddleware.Identify)
}
