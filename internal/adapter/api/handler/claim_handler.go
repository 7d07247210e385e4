package handler

import (
	"github.com/labstack/echo/v4"

	"foodshare/internal/usecase"
	"foodshare/pkg/errors"
	"foodshare/pkg/response"
)

type ClaimHandler struct {
	claimUseCase *usecase.ClaimUseCase
}

func NewClaimHandler(claimUseCase *usecase.ClaimUseCase) *ClaimHandler {
	return &ClaimHandler{
		claimUseCase: claimUseCase,
	}
}

// A missing quantity claims a single unit.
type createClaimRequest struct {
	Quantity int    `json:"quantity" validate:"omitempty,min=1"`
	Message  string `json:"message" validate:"max=1000"`
}

type respondClaimRequest struct {
	Decision string `json:"decision" validate:"required,oneof=accepted rejected"`
}

func (h *ClaimHandler) CreateClaim(c echo.Context) error {
	listingID := c.Param("listingId")
	if listingID == "" {
		return response.Error(c, errors.BadRequest("Listing ID is required", nil))
	}

	var req createClaimRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	claim, err := h.claimUseCase.CreateClaim(c.Request().Context(), callerID(c), listingID, req.Quantity, req.Message)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, claim)
}

func (h *ClaimHandler) RespondToClaim(c echo.Context) error {
	claimID := c.Param("claimId")
	if claimID == "" {
		return response.Error(c, errors.BadRequest("Claim ID is required", nil))
	}

	var req respondClaimRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	claim, err := h.claimUseCase.RespondToClaim(c.Request().Context(), callerID(c), claimID, usecase.ClaimDecision(req.Decision))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, claim)
}

func (h *ClaimHandler) CompleteClaim(c echo.Context) error {
	claimID := c.Param("claimId")
	if claimID == "" {
		return response.Error(c, errors.BadRequest("Claim ID is required", nil))
	}

	claim, err := h.claimUseCase.CompleteClaim(c.Request().Context(), callerID(c), claimID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, claim)
}

func (h *ClaimHandler) GetMyClaims(c echo.Context) error {
	claims, err := h.claimUseCase.GetMyClaims(c.Request().Context(), callerID(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, claims)
}

func (h *ClaimHandler) GetClaimsForDonor(c echo.Context) error {
	claims, err := h.claimUseCase.GetClaimsForDonor(c.Request().Context(), callerID(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, claims)
}
