package memory

import (
	"context"
	"time"

	"foodshare/internal/domain/entity"
	"foodshare/pkg/errors"
)

type claimRepository struct {
	s *Store
}

func (r *claimRepository) GetByID(ctx context.Context, id string) (*entity.Claim, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.claims[id]
	if !ok {
		return nil, errors.NotFound("Claim", nil)
	}
	return &c, nil
}

func (r *claimRepository) ListByReceiver(ctx context.Context, receiverProfileID string) ([]*entity.Claim, error) {
	return r.collect(func(c *entity.Claim) bool { return c.ReceiverProfileID == receiverProfileID }), nil
}

func (r *claimRepository) ListByDonor(ctx context.Context, donorProfileID string) ([]*entity.Claim, error) {
	return r.collect(func(c *entity.Claim) bool { return c.DonorProfileID == donorProfileID }), nil
}

func (r *claimRepository) collect(keep func(*entity.Claim) bool) []*entity.Claim {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var ids []string
	for id, c := range r.s.claims {
		if keep(&c) {
			ids = append(ids, id)
		}
	}
	r.s.newestFirst(ids, func(id string) time.Time { return r.s.claims[id].CreatedAt })

	out := make([]*entity.Claim, 0, len(ids))
	for _, id := range ids {
		c := r.s.claims[id]
		out = append(out, &c)
	}
	return out
}
