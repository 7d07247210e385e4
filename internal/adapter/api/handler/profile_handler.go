package handler

import (
	"github.com/labstack/echo/v4"

	"foodshare/internal/domain/entity"
	"foodshare/internal/usecase"
	"foodshare/pkg/response"
)

type ProfileHandler struct {
	profileUseCase *usecase.ProfileUseCase
}

func NewProfileHandler(profileUseCase *usecase.ProfileUseCase) *ProfileHandler {
	return &ProfileHandler{
		profileUseCase: profileUseCase,
	}
}

type createProfileRequest struct {
	DisplayName  string `json:"display_name" validate:"required_without=Organization,max=200"`
	Role         string `json:"role" validate:"required,oneof=donor receiver"`
	Address      string `json:"address" validate:"max=500"`
	ZipCode      string `json:"zip_code" validate:"required,max=16"`
	Phone        string `json:"phone" validate:"max=32"`
	Organization string `json:"organization" validate:"max=200"`
}

type updateProfileRequest struct {
	DisplayName  *string `json:"display_name" validate:"omitempty,max=200"`
	Role         *string `json:"role" validate:"omitempty,oneof=donor receiver"`
	Address      *string `json:"address" validate:"omitempty,max=500"`
	ZipCode      *string `json:"zip_code" validate:"omitempty,max=16"`
	Phone        *string `json:"phone" validate:"omitempty,max=32"`
	Organization *string `json:"organization" validate:"omitempty,max=200"`
}

// GetCurrentUser answers with a null profile for anonymous callers and for
// identities that have not created one yet.
func (h *ProfileHandler) GetCurrentUser(c echo.Context) error {
	profile, err := h.profileUseCase.GetCurrentUser(c.Request().Context(), callerID(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, profile)
}

func (h *ProfileHandler) CreateProfile(c echo.Context) error {
	var req createProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	profile, err := h.profileUseCase.CreateProfile(c.Request().Context(), callerID(c), callerEmail(c), usecase.CreateProfileInput{
		DisplayName:  req.DisplayName,
		Role:         entity.Role(req.Role),
		Address:      req.Address,
		ZipCode:      req.ZipCode,
		Phone:        req.Phone,
		Organization: req.Organization,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, profile)
}

func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	input := usecase.UpdateProfileInput{
		DisplayName:  req.DisplayName,
		Address:      req.Address,
		ZipCode:      req.ZipCode,
		Phone:        req.Phone,
		Organization: req.Organization,
	}
	if req.Role != nil {
		role := entity.Role(*req.Role)
		input.Role = &role
	}

	profile, err := h.profileUseCase.UpdateProfile(c.Request().Context(), callerID(c), input)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, profile)
}
