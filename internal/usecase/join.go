package usecase

import (
	"context"

	"foodshare/internal/domain/entity"
	"foodshare/internal/domain/repository"
	"foodshare/pkg/errors"
)

// joiner loads referenced profiles and listings once per query.
// Missing references join as nil rather than failing the query.
type joiner struct {
	profileRepo repository.ProfileRepository
	listingRepo repository.ListingRepository

	profiles map[string]*entity.Profile
	listings map[string]*entity.Listing
}

func newJoiner(profileRepo repository.ProfileRepository, listingRepo repository.ListingRepository) *joiner {
	return &joiner{
		profileRepo: profileRepo,
		listingRepo: listingRepo,
		profiles:    make(map[string]*entity.Profile),
		listings:    make(map[string]*entity.Listing),
	}
}

func (j *joiner) profile(ctx context.Context, id string) (*entity.Profile, error) {
	if p, ok := j.profiles[id]; ok {
		return p, nil
	}
	p, err := j.profileRepo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, errors.CodeNotFound) {
			return nil, err
		}
		p = nil
	}
	j.profiles[id] = p
	return p, nil
}

func (j *joiner) listing(ctx context.Context, id string) (*entity.Listing, error) {
	if l, ok := j.listings[id]; ok {
		return l, nil
	}
	l, err := j.listingRepo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, errors.CodeNotFound) {
			return nil, err
		}
		l = nil
	}
	j.listings[id] = l
	return l, nil
}

func (j *joiner) summary(ctx context.Context, profileID string) (*entity.ProfileSummary, error) {
	p, err := j.profile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return p.Summary(), nil
}
