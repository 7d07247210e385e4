package handler

import (
	"github.com/labstack/echo/v4"

	"foodshare/internal/domain/entity"
	"foodshare/internal/usecase"
	"foodshare/pkg/errors"
	"foodshare/pkg/response"
)

type ReportHandler struct {
	reportUseCase *usecase.ReportUseCase
}

func NewReportHandler(reportUseCase *usecase.ReportUseCase) *ReportHandler {
	return &ReportHandler{
		reportUseCase: reportUseCase,
	}
}

type reportListingRequest struct {
	Reason      string `json:"reason" validate:"required,oneof=expired inappropriate spam other"`
	Description string `json:"description" validate:"max=1000"`
}

func (h *ReportHandler) ReportListing(c echo.Context) error {
	listingID := c.Param("listingId")
	if listingID == "" {
		return response.Error(c, errors.BadRequest("Listing ID is required", nil))
	}

	var req reportListingRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	report, err := h.reportUseCase.ReportListing(c.Request().Context(), callerID(c), listingID, entity.ReportReason(req.Reason), req.Description)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, report)
}

func (h *ReportHandler) GetReports(c echo.Context) error {
	reports, err := h.reportUseCase.GetReports(c.Request().Context(), callerID(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, reports)
}
