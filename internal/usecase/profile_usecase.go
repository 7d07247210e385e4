package usecase

import (
	"context"
	"strings"
	"time"

	"foodshare/internal/domain/entity"
	"foodshare/internal/domain/repository"
	"foodshare/pkg/errors"
)

const anonymousName = "Anonymous User"

type ProfileUseCase struct {
	profileRepo repository.ProfileRepository
	now         func() time.Time
}

func NewProfileUseCase(profileRepo repository.ProfileRepository) *ProfileUseCase {
	return &ProfileUseCase{
		profileRepo: profileRepo,
		now:         time.Now,
	}
}

type CreateProfileInput struct {
	DisplayName  string
	Role         entity.Role
	Address      string
	ZipCode      string
	Phone        string
	Organization string
}

// UpdateProfileInput merges non-nil fields into the caller's profile.
type UpdateProfileInput struct {
	DisplayName  *string
	Role         *entity.Role
	Address      *string
	ZipCode      *string
	Phone        *string
	Organization *string
}

func (uc *ProfileUseCase) CreateProfile(ctx context.Context, identityID, email string, input CreateProfileInput) (*entity.Profile, error) {
	if identityID == "" {
		return nil, errors.Unauthorized("Not authenticated", nil)
	}
	if !input.Role.Valid() {
		return nil, errors.BadRequest("role must be donor or receiver", nil)
	}
	zip := strings.TrimSpace(input.ZipCode)
	if zip == "" {
		return nil, errors.BadRequest("zip_code is required", nil)
	}

	existing, err := lookupProfile(ctx, uc.profileRepo, identityID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.Conflict("Profile already exists")
	}

	now := uc.now()
	profile := &entity.Profile{
		IdentityID:   identityID,
		Email:        email,
		DisplayName:  firstNonEmpty(input.DisplayName, input.Organization, anonymousName),
		Role:         input.Role,
		Address:      strings.TrimSpace(input.Address),
		ZipCode:      zip,
		Phone:        strings.TrimSpace(input.Phone),
		Organization: strings.TrimSpace(input.Organization),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.profileRepo.Create(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

func (uc *ProfileUseCase) UpdateProfile(ctx context.Context, identityID string, input UpdateProfileInput) (*entity.Profile, error) {
	if identityID == "" {
		return nil, errors.Unauthorized("Not authenticated", nil)
	}

	profile, err := lookupProfile(ctx, uc.profileRepo, identityID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, errors.NotFound("Profile", nil)
	}

	if input.Role != nil {
		if !input.Role.Valid() {
			return nil, errors.BadRequest("role must be donor or receiver", nil)
		}
		profile.Role = *input.Role
	}
	if input.ZipCode != nil {
		zip := strings.TrimSpace(*input.ZipCode)
		if zip == "" {
			return nil, errors.BadRequest("zip_code cannot be empty", nil)
		}
		profile.ZipCode = zip
	}
	if input.Address != nil {
		profile.Address = strings.TrimSpace(*input.Address)
	}
	if input.Phone != nil {
		profile.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Organization != nil {
		profile.Organization = strings.TrimSpace(*input.Organization)
	}

	var name string
	if input.DisplayName != nil {
		name = *input.DisplayName
	}
	profile.DisplayName = firstNonEmpty(name, profile.DisplayName, profile.Organization, anonymousName)
	profile.UpdatedAt = uc.now()

	if err := uc.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

// GetCurrentUser returns nil without error for anonymous callers and callers without a profile.
func (uc *ProfileUseCase) GetCurrentUser(ctx context.Context, identityID string) (*entity.Profile, error) {
	return lookupProfile(ctx, uc.profileRepo, identityID)
}

// lookupProfile resolves the caller's profile, returning nil when there is none.
func lookupProfile(ctx context.Context, profileRepo repository.ProfileRepository, identityID string) (*entity.Profile, error) {
	if identityID == "" {
		return nil, nil
	}

	profile, err := profileRepo.GetByIdentityID(ctx, identityID)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return profile, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
