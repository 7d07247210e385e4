package repository

import (
	"context"
	"time"

	"foodshare/internal/domain/entity"
)

type ListingFilter struct {
	ZipCode string
	Status  entity.ListingStatus
}

type ListingRepository interface {
	Create(ctx context.Context, listing *entity.Listing) error
	GetByID(ctx context.Context, id string) (*entity.Listing, error)
	Update(ctx context.Context, listing *entity.Listing) error
	// List returns listings matching the filter, newest first.
	List(ctx context.Context, filter ListingFilter, limit int) ([]*entity.Listing, error)
	ListByDonor(ctx context.Context, donorProfileID string) ([]*entity.Listing, error)
	// ListOverdue returns active listings whose expiresAt is at or before the given time.
	ListOverdue(ctx context.Context, before time.Time, limit int) ([]*entity.Listing, error)
	// ListAll streams every listing to fn; used by maintenance jobs.
	ListAll(ctx context.Context, fn func(*entity.Listing) error) error
}
