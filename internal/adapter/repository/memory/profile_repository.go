package memory

import (
	"context"

	"foodshare/internal/domain/entity"
	"foodshare/pkg/errors"
)

type profileRepository struct {
	s *Store
}

func (r *profileRepository) Create(ctx context.Context, profile *entity.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range r.s.profiles {
		if p.IdentityID == profile.IdentityID {
			return errors.Conflict("Profile already exists")
		}
	}

	if profile.ID == "" {
		profile.ID = newID()
	}
	stamp(&profile.CreatedAt, &profile.UpdatedAt)

	r.s.profiles[profile.ID] = *profile
	r.s.track(profile.ID)
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.profiles[id]
	if !ok {
		return nil, errors.NotFound("Profile", nil)
	}
	return &p, nil
}

func (r *profileRepository) GetByIdentityID(ctx context.Context, identityID string) (*entity.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range r.s.profiles {
		if p.IdentityID == identityID {
			found := p
			return &found, nil
		}
	}
	return nil, errors.NotFound("Profile", nil)
}

func (r *profileRepository) Update(ctx context.Context, profile *entity.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.profiles[profile.ID]; !ok {
		return errors.NotFound("Profile", nil)
	}
	r.s.profiles[profile.ID] = *profile
	return nil
}
