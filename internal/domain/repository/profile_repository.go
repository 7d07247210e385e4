package repository

import (
	"context"

	"foodshare/internal/domain/entity"
)

type ProfileRepository interface {
	// Create fails with a CONFLICT AppError when the identity already has a profile.
	Create(ctx context.Context, profile *entity.Profile) error
	GetByID(ctx context.Context, id string) (*entity.Profile, error)
	GetByIdentityID(ctx context.Context, identityID string) (*entity.Profile, error)
	Update(ctx context.Context, profile *entity.Profile) error
}
