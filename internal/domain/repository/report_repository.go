package repository

import (
	"context"

	"foodshare/internal/domain/entity"
)

type ReportRepository interface {
	Create(ctx context.Context, report *entity.Report) error
	// ListByStatus returns reports newest first.
	ListByStatus(ctx context.Context, status entity.ReportStatus) ([]*entity.Report, error)
}
