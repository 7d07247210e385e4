package repository

import (
	"context"

	"foodshare/internal/domain/entity"
)

// ClaimRepository covers the read side; claims are only written inside a Transactor.
type ClaimRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Claim, error)
	ListByReceiver(ctx context.Context, receiverProfileID string) ([]*entity.Claim, error)
	ListByDonor(ctx context.Context, donorProfileID string) ([]*entity.Claim, error)
}
