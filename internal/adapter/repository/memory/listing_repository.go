package memory

import (
	"context"
	"time"

	"foodshare/internal/domain/entity"
	"foodshare/internal/domain/repository"
	"foodshare/pkg/errors"
)

type listingRepository struct {
	s *Store
}

func (r *listingRepository) Create(ctx context.Context, listing *entity.Listing) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if listing.ID == "" {
		listing.ID = newID()
	}
	stamp(&listing.CreatedAt, &listing.UpdatedAt)

	r.s.listings[listing.ID] = *cloneListing(*listing)
	r.s.track(listing.ID)
	return nil
}

func (r *listingRepository) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, ok := r.s.listings[id]
	if !ok {
		return nil, errors.NotFound("Listing", nil)
	}
	return cloneListing(l), nil
}

func (r *listingRepository) Update(ctx context.Context, listing *entity.Listing) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.listings[listing.ID]; !ok {
		return errors.NotFound("Listing", nil)
	}
	listing.UpdatedAt = nowFunc()
	r.s.listings[listing.ID] = *cloneListing(*listing)
	return nil
}

func (r *listingRepository) List(ctx context.Context, filter repository.ListingFilter, limit int) ([]*entity.Listing, error) {
	return r.collect(limit, func(l *entity.Listing) bool {
		if filter.ZipCode != "" && l.ZipCode != filter.ZipCode {
			return false
		}
		if filter.Status != "" && l.Status != filter.Status {
			return false
		}
		return true
	}), nil
}

func (r *listingRepository) ListByDonor(ctx context.Context, donorProfileID string) ([]*entity.Listing, error) {
	return r.collect(0, func(l *entity.Listing) bool {
		return l.DonorProfileID == donorProfileID
	}), nil
}

func (r *listingRepository) ListOverdue(ctx context.Context, before time.Time, limit int) ([]*entity.Listing, error) {
	return r.collect(limit, func(l *entity.Listing) bool {
		return l.Status == entity.ListingActive && !l.ExpiresAt.IsZero() && !l.ExpiresAt.After(before)
	}), nil
}

func (r *listingRepository) ListAll(ctx context.Context, fn func(*entity.Listing) error) error {
	for _, l := range r.collect(0, func(*entity.Listing) bool { return true }) {
		if err := fn(l); err != nil {
			return err
		}
	}
	return nil
}

func (r *listingRepository) collect(limit int, keep func(*entity.Listing) bool) []*entity.Listing {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var ids []string
	for id, l := range r.s.listings {
		if keep(&l) {
			ids = append(ids, id)
		}
	}
	r.s.newestFirst(ids, func(id string) time.Time { return r.s.listings[id].CreatedAt })

	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	out := make([]*entity.Listing, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneListing(r.s.listings[id]))
	}
	return out
}
