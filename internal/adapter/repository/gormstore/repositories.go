package gormstore

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"foodshare/internal/domain/entity"
	"foodshare/internal/domain/repository"
	"foodshare/pkg/errors"
)

type profileRepository struct {
	db *gorm.DB
}

func (r *profileRepository) Create(ctx context.Context, profile *entity.Profile) error {
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	err := r.db.WithContext(ctx).Create(profile).Error
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Conflict("Profile already exists")
	}
	return wrap(err, "Failed to create profile")
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	return first[entity.Profile](r.db.WithContext(ctx), "Profile", "id = ?", id)
}

func (r *profileRepository) GetByIdentityID(ctx context.Context, identityID string) (*entity.Profile, error) {
	return first[entity.Profile](r.db.WithContext(ctx), "Profile", "identity_id = ?", identityID)
}

func (r *profileRepository) Update(ctx context.Context, profile *entity.Profile) error {
	return wrap(r.db.WithContext(ctx).Save(profile).Error, "Failed to update profile")
}

type listingRepository struct {
	db *gorm.DB
}

func (r *listingRepository) Create(ctx context.Context, listing *entity.Listing) error {
	if listing.ID == "" {
		listing.ID = uuid.New().String()
	}
	return wrap(r.db.WithContext(ctx).Create(listing).Error, "Failed to create listing")
}

func (r *listingRepository) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	return first[entity.Listing](r.db.WithContext(ctx), "Listing", "id = ?", id)
}

func (r *listingRepository) Update(ctx context.Context, listing *entity.Listing) error {
	listing.UpdatedAt = time.Now()
	return wrap(r.db.WithContext(ctx).Save(listing).Error, "Failed to update listing")
}

func (r *listingRepository) List(ctx context.Context, filter repository.ListingFilter, limit int) ([]*entity.Listing, error) {
	q := r.db.WithContext(ctx)
	if filter.ZipCode != "" {
		q = q.Where("zip_code = ?", filter.ZipCode)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	q = q.Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	return find[entity.Listing](q, "listings")
}

func (r *listingRepository) ListByDonor(ctx context.Context, donorProfileID string) ([]*entity.Listing, error) {
	q := r.db.WithContext(ctx).Where("donor_profile_id = ?", donorProfileID).Order("created_at DESC")
	return find[entity.Listing](q, "listings")
}

func (r *listingRepository) ListOverdue(ctx context.Context, before time.Time, limit int) ([]*entity.Listing, error) {
	q := r.db.WithContext(ctx).
		Where("status = ? AND expires_at <= ?", entity.ListingActive, before).
		Order("expires_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	return find[entity.Listing](q, "listings")
}

func (r *listingRepository) ListAll(ctx context.Context, fn func(*entity.Listing) error) error {
	var batch []*entity.Listing
	res := r.db.WithContext(ctx).Order("id").FindInBatches(&batch, 200, func(tx *gorm.DB, _ int) error {
		for _, l := range batch {
			if err := fn(l); err != nil {
				return err
			}
		}
		return nil
	})
	return wrap(res.Error, "Failed to scan listings")
}

type claimRepository struct {
	db *gorm.DB
}

func (r *claimRepository) GetByID(ctx context.Context, id string) (*entity.Claim, error) {
	return first[entity.Claim](r.db.WithContext(ctx), "Claim", "id = ?", id)
}

func (r *claimRepository) ListByReceiver(ctx context.Context, receiverProfileID string) ([]*entity.Claim, error) {
	q := r.db.WithContext(ctx).Where("receiver_profile_id = ?", receiverProfileID).Order("created_at DESC")
	return find[entity.Claim](q, "claims")
}

func (r *claimRepository) ListByDonor(ctx context.Context, donorProfileID string) ([]*entity.Claim, error) {
	q := r.db.WithContext(ctx).Where("donor_profile_id = ?", donorProfileID).Order("created_at DESC")
	return find[entity.Claim](q, "claims")
}

type messageRepository struct {
	db *gorm.DB
}

func (r *messageRepository) Create(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	return wrap(r.db.WithContext(ctx).Create(message).Error, "Failed to create message")
}

func (r *messageRepository) ListByClaim(ctx context.Context, claimID string) ([]*entity.Message, error) {
	q := r.db.WithContext(ctx).Where("claim_id = ?", claimID).Order("created_at ASC")
	return find[entity.Message](q, "messages")
}

type reportRepository struct {
	db *gorm.DB
}

func (r *reportRepository) Create(ctx context.Context, report *entity.Report) error {
	if report.ID == "" {
		report.ID = uuid.New().String()
	}
	return wrap(r.db.WithContext(ctx).Create(report).Error, "Failed to create report")
}

func (r *reportRepository) ListByStatus(ctx context.Context, status entity.ReportStatus) ([]*entity.Report, error) {
	q := r.db.WithContext(ctx).Where("status = ?", status).Order("created_at DESC")
	return find[entity.Report](q, "reports")
}
