package router

import (
	"github.com/labstack/echo/v4"

	"foodshare/pkg/logger"
	"foodshare/pkg/response"
)

// ErrorHandler renders errors that escape handlers, such as unknown routes
// and oversized bodies, in the same envelope as handler errors.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	if err := response.Error(c, err); err != nil {
		logger.Error("Failed to write error response: %v", err)
	}
}
