package memory

import (
	"context"
	"time"

	"foodshare/internal/domain/entity"
)

type reportRepository struct {
	s *Store
}

func (r *reportRepository) Create(ctx context.Context, report *entity.Report) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if report.ID == "" {
		report.ID = newID()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = nowFunc()
	}

	r.s.reports[report.ID] = *report
	r.s.track(report.ID)
	return nil
}

func (r *reportRepository) ListByStatus(ctx context.Context, status entity.ReportStatus) ([]*entity.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var ids []string
	for id, rep := range r.s.reports {
		if rep.Status == status {
			ids = append(ids, id)
		}
	}
	r.s.newestFirst(ids, func(id string) time.Time { return r.s.reports[id].CreatedAt })

	out := make([]*entity.Report, 0, len(ids))
	for _, id := range ids {
		rep := r.s.reports[id]
		out = append(out, &rep)
	}
	return out, nil
}
