package usecase

import (
	"context"
	"strings"
	"time"

	"foodshare/internal/domain/entity"
	"foodshare/internal/domain/repository"
	"foodshare/pkg/errors"
	"foodshare/pkg/logger"
)

type ReportUseCase struct {
	reportRepo  repository.ReportRepository
	listingRepo repository.ListingRepository
	profileRepo repository.ProfileRepository
	rateLimiter RateLimiter
	now         func() time.Time
}

func NewReportUseCase(
	reportRepo repository.ReportRepository,
	listingRepo repository.ListingRepository,
	profileRepo repository.ProfileRepository,
	rateLimiter RateLimiter,
) *ReportUseCase {
	return &ReportUseCase{
		reportRepo:  reportRepo,
		listingRepo: listingRepo,
		profileRepo: profileRepo,
		rateLimiter: rateLimiter,
		now:         time.Now,
	}
}

// ReportListing files a report. The same caller may report a listing more than once.
func (uc *ReportUseCase) ReportListing(ctx context.Context, identityID, listingID string, reason entity.ReportReason, description string) (*entity.Report, error) {
	if identityID == "" {
		return nil, errors.Unauthorized("Not authenticated", nil)
	}

	profile, err := lookupProfile(ctx, uc.profileRepo, identityID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, errors.NotFound("Profile", nil)
	}
	if !reason.Valid() {
		return nil, errors.BadRequest("reason must be one of: expired inappropriate spam other", nil)
	}

	if uc.rateLimiter != nil {
		if allowed, wait := uc.rateLimiter.Allow(profile.ID, ActionReportListing); !allowed {
			return nil, errors.TooManyRequests("Too many reports", wait)
		}
	}

	if _, err := uc.listingRepo.GetByID(ctx, listingID); err != nil {
		return nil, err
	}

	report := &entity.Report{
		ListingID:         listingID,
		ReporterProfileID: profile.ID,
		Reason:            reason,
		Description:       strings.TrimSpace(description),
		Status:            entity.ReportPending,
		CreatedAt:         uc.now(),
	}
	if err := uc.reportRepo.Create(ctx, report); err != nil {
		return nil, err
	}

	logger.Warn("Listing %s reported by %s: %s", listingID, profile.ID, reason)
	return report, nil
}

// GetReports lists pending reports to any authenticated caller.
// TODO: restrict to moderators once profiles carry an admin role.
func (uc *ReportUseCase) GetReports(ctx context.Context, identityID string) ([]*entity.ReportView, error) {
	if identityID == "" {
		return []*entity.ReportView{}, nil
	}

	reports, err := uc.reportRepo.ListByStatus(ctx, entity.ReportPending)
	if err != nil {
		return nil, err
	}

	j := newJoiner(uc.profileRepo, uc.listingRepo)
	views := make([]*entity.ReportView, 0, len(reports))
	for _, r := range reports {
		listing, err := j.listing(ctx, r.ListingID)
		if err != nil {
			return nil, err
		}
		reporter, err := j.summary(ctx, r.ReporterProfileID)
		if err != nil {
			return nil, err
		}
		views = append(views, &entity.ReportView{Report: r, Listing: listing, Reporter: reporter})
	}

	return views, nil
}
