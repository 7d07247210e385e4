package memory

import (
	"context"
	"sort"

	"foodshare/internal/domain/entity"
)

type messageRepository struct {
	s *Store
}

func (r *messageRepository) Create(ctx context.Context, message *entity.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if message.ID == "" {
		message.ID = newID()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = nowFunc()
	}

	r.s.messages[message.ID] = *message
	r.s.track(message.ID)
	return nil
}

func (r *messageRepository) ListByClaim(ctx context.Context, claimID string) ([]*entity.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*entity.Message, 0)
	for _, m := range r.s.messages {
		if m.ClaimID == claimID {
			msg := m
			out = append(out, &msg)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return r.s.order[out[i].ID] < r.s.order[out[j].ID]
	})
	return out, nil
}
