package repository

import (
	"context"

	"foodshare/internal/domain/entity"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	// ListByClaim returns the claim's messages oldest first.
	ListByClaim(ctx context.Context, claimID string) ([]*entity.Message, error)
}
