package handler

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"foodshare/internal/domain/entity"
	"foodshare/internal/usecase"
	"foodshare/pkg/errors"
	"foodshare/pkg/response"
)

type ListingHandler struct {
	listingUseCase *usecase.ListingUseCase
}

func NewListingHandler(listingUseCase *usecase.ListingUseCase) *ListingHandler {
	return &ListingHandler{
		listingUseCase: listingUseCase,
	}
}

// listingRequest accepts the numeric total_quantity/unit pair. Older clients
// still send only the free-text quantity ("10 servings"), which is parsed.
type listingRequest struct {
	Title             string    `json:"title" validate:"required,max=200"`
	Description       string    `json:"description" validate:"max=2000"`
	Category          string    `json:"category" validate:"required,oneof=prepared_food produce packaged_goods baked_goods other"`
	TotalQuantity     int       `json:"total_quantity" validate:"required_without=Quantity,gte=0"`
	Unit              string    `json:"unit" validate:"max=50"`
	Quantity          string    `json:"quantity" validate:"max=100"`
	PickupWindowStart time.Time `json:"pickup_window_start" validate:"required"`
	PickupWindowEnd   time.Time `json:"pickup_window_end" validate:"required,gtfield=PickupWindowStart"`
	Address           string    `json:"address" validate:"required,max=500"`
	ZipCode           string    `json:"zip_code" validate:"required,max=16"`
	PhotoRef          string    `json:"photo_ref" validate:"omitempty,url"`
	Source            string    `json:"source" validate:"max=200"`
}

func (r *listingRequest) input() usecase.ListingInput {
	quantity, unit := r.TotalQuantity, strings.TrimSpace(r.Unit)
	if quantity == 0 {
		var legacyUnit string
		quantity, legacyUnit = entity.ParseLegacyQuantity(r.Quantity)
		if unit == "" {
			unit = legacyUnit
		}
	}
	if unit == "" {
		unit = entity.DefaultUnit
	}

	return usecase.ListingInput{
		Title:             r.Title,
		Description:       r.Description,
		Category:          entity.Category(r.Category),
		Quantity:          quantity,
		Unit:              unit,
		LegacyQuantity:    r.Quantity,
		PickupWindowStart: r.PickupWindowStart,
		PickupWindowEnd:   r.PickupWindowEnd,
		Address:           r.Address,
		ZipCode:           r.ZipCode,
		PhotoRef:          r.PhotoRef,
		Source:            r.Source,
	}
}

func (h *ListingHandler) GetListings(c echo.Context) error {
	zipCode := strings.TrimSpace(c.QueryParam("zip"))
	category := strings.TrimSpace(c.QueryParam("category"))

	listings, err := h.listingUseCase.GetListings(c.Request().Context(), zipCode, category)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, listings)
}

func (h *ListingHandler) GetMyListings(c echo.Context) error {
	listings, err := h.listingUseCase.GetMyListings(c.Request().Context(), callerID(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, listings)
}

func (h *ListingHandler) CreateListing(c echo.Context) error {
	var req listingRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	listing, err := h.listingUseCase.CreateListing(c.Request().Context(), callerID(c), req.input())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, listing)
}

func (h *ListingHandler) UpdateListing(c echo.Context) error {
	listingID := c.Param("listingId")
	if listingID == "" {
		return response.Error(c, errors.BadRequest("Listing ID is required", nil))
	}

	var req listingRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	listing, err := h.listingUseCase.UpdateListing(c.Request().Context(), callerID(c), listingID, req.input())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, listing)
}

func (h *ListingHandler) DeleteListing(c echo.Context) error {
	listingID := c.Param("listingId")
	if listingID == "" {
		return response.Error(c, errors.BadRequest("Listing ID is required", nil))
	}

	if err := h.listingUseCase.DeleteListing(c.Request().Context(), callerID(c), listingID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Listing deleted successfully",
	})
}
