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

const (
	DefaultListingTTL = 48 * time.Hour
	DefaultQueryLimit = 50

	sweepBatchSize = 100
)

type ListingUseCase struct {
	listingRepo repository.ListingRepository
	profileRepo repository.ProfileRepository
	transactor  repository.Transactor
	scheduler   ExpirationScheduler
	photos      PhotoStorage
	ttl         time.Duration
	queryLimit  int
	now         func() time.Time
}

type ListingOptions struct {
	TTL        time.Duration
	QueryLimit int
	// Photos, when set, removes uploaded photos of deleted listings.
	Photos PhotoStorage
}

func NewListingUseCase(
	listingRepo repository.ListingRepository,
	profileRepo repository.ProfileRepository,
	transactor repository.Transactor,
	scheduler ExpirationScheduler,
	opts ListingOptions,
) *ListingUseCase {
	if opts.TTL <= 0 {
		opts.TTL = DefaultListingTTL
	}
	if opts.QueryLimit <= 0 {
		opts.QueryLimit = DefaultQueryLimit
	}
	if scheduler == nil {
		scheduler = noopScheduler{}
	}

	return &ListingUseCase{
		listingRepo: listingRepo,
		profileRepo: profileRepo,
		transactor:  transactor,
		scheduler:   scheduler,
		photos:      opts.Photos,
		ttl:         opts.TTL,
		queryLimit:  opts.QueryLimit,
		now:         time.Now,
	}
}

type ListingInput struct {
	Title             string
	Description       string
	Category          entity.Category
	Quantity          int
	Unit              string
	LegacyQuantity    string
	PickupWindowStart time.Time
	PickupWindowEnd   time.Time
	Address           string
	ZipCode           string
	PhotoRef          string
	Source            string
}

func (in *ListingInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return errors.BadRequest("title is required", nil)
	}
	if !in.Category.Valid() {
		return errors.BadRequest("category must be one of: prepared_food produce packaged_goods baked_goods other", nil)
	}
	if in.Quantity < 1 {
		return errors.BadRequest("quantity must be at least 1", nil)
	}
	if strings.TrimSpace(in.Unit) == "" {
		return errors.BadRequest("unit is required", nil)
	}
	if in.PickupWindowStart.IsZero() || in.PickupWindowEnd.IsZero() {
		return errors.BadRequest("pickup window start and end are required", nil)
	}
	if !in.PickupWindowStart.Before(in.PickupWindowEnd) {
		return errors.BadRequest("pickup window end must be after its start", nil)
	}
	if strings.TrimSpace(in.Address) == "" {
		return errors.BadRequest("address is required", nil)
	}
	if strings.TrimSpace(in.ZipCode) == "" {
		return errors.BadRequest("zip_code is required", nil)
	}
	return nil
}

func (in *ListingInput) apply(l *entity.Listing) {
	unit := strings.TrimSpace(in.Unit)
	l.Title = strings.TrimSpace(in.Title)
	l.Description = in.Description
	l.Category = in.Category
	l.Unit = unit
	l.Quantity = firstNonEmpty(in.LegacyQuantity, entity.FormatQuantity(in.Quantity, unit))
	l.SetTotal(in.Quantity)
	l.PickupWindowStart = in.PickupWindowStart
	l.PickupWindowEnd = in.PickupWindowEnd
	l.Address = strings.TrimSpace(in.Address)
	l.ZipCode = strings.TrimSpace(in.ZipCode)
	l.PhotoRef = in.PhotoRef
	l.Source = in.Source
}

// CreateListing publishes a donor's offer and schedules its expiry.
func (uc *ListingUseCase) CreateListing(ctx context.Context, identityID string, input ListingInput) (*entity.Listing, error) {
	if identityID == "" {
		return nil, errors.Unauthorized("Not authenticated", nil)
	}

	profile, err := lookupProfile(ctx, uc.profileRepo, identityID)
	if err != nil {
		return nil, err
	}
	if !profile.IsDonor() {
		return nil, errors.Forbidden("Only donors can create listings", nil)
	}

	if err := input.validate(); err != nil {
		return nil, err
	}

	now := uc.now()
	listing := &entity.Listing{
		DonorProfileID: profile.ID,
		Status:         entity.ListingActive,
		ExpiresAt:      now.Add(uc.ttl),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	input.apply(listing)
	listing.SetAvailable(input.Quantity)

	if err := uc.listingRepo.Create(ctx, listing); err != nil {
		return nil, err
	}

	uc.scheduler.Schedule(listing.ID, listing.ExpiresAt)
	logger.Info("Listing %s created by %s (%d %s), expires at %s",
		listing.ID, profile.ID, input.Quantity, listing.Unit, listing.ExpiresAt.Format(time.RFC3339))

	return listing, nil
}

// UpdateListing edits an active listing. Changing the total shifts the
// available quantity by the same amount, clamped to [0, total].
func (uc *ListingUseCase) UpdateListing(ctx context.Context, identityID, listingID string, input ListingInput) (*entity.Listing, error) {
	profile, err := uc.requireProfile(ctx, identityID)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	var updated *entity.Listing
	err = uc.transactor.RunInTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		listing, err := tx.GetListing(listingID)
		if err != nil {
			return err
		}
		if listing.DonorProfileID != profile.ID {
			return errors.Forbidden("Not authorized to edit this listing", nil)
		}
		if listing.Status != entity.ListingActive {
			return errors.InvalidState("Cannot edit claimed or completed listings")
		}

		available := listing.Available() + (input.Quantity - listing.Total())
		if available < 0 {
			available = 0
		}
		if available > input.Quantity {
			available = input.Quantity
		}

		input.apply(listing)
		listing.SetAvailable(available)
		if available == 0 {
			// Outstanding reservations already cover the new total.
			listing.Status = entity.ListingClaimed
		}
		listing.UpdatedAt = uc.now()

		updated = listing
		return tx.UpdateListing(listing)
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (uc *ListingUseCase) DeleteListing(ctx context.Context, identityID, listingID string) error {
	profile, err := uc.requireProfile(ctx, identityID)
	if err != nil {
		return err
	}

	var photoRef string
	err = uc.transactor.RunInTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		listing, err := tx.GetListing(listingID)
		if err != nil {
			return err
		}
		if listing.DonorProfileID != profile.ID {
			return errors.Forbidden("Not authorized to delete this listing", nil)
		}
		if listing.Status != entity.ListingActive {
			return errors.InvalidState("Cannot delete claimed or completed listings")
		}
		photoRef = listing.PhotoRef
		return tx.DeleteListing(listingID)
	})
	if err != nil {
		return err
	}

	uc.scheduler.Cancel(listingID)
	if uc.photos != nil && photoRef != "" {
		// Photos hosted elsewhere are rejected by the storage and left alone.
		if err := uc.photos.DeleteFile(ctx, photoRef); err != nil {
			logger.Warn("Failed to remove photo of deleted listing %s: %v", listingID, err)
		}
	}
	logger.Info("Listing %s deleted by %s", listingID, profile.ID)
	return nil
}

// ExpireListing is the scheduled expiry callback. It only moves active
// listings to expired, so late or repeated deliveries are harmless.
func (uc *ListingUseCase) ExpireListing(ctx context.Context, listingID string) error {
	_, err := uc.expire(ctx, listingID)
	return err
}

func (uc *ListingUseCase) expire(ctx context.Context, listingID string) (bool, error) {
	expired := false
	err := uc.transactor.RunInTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		expired = false
		listing, err := tx.GetListing(listingID)
		if err != nil {
			if errors.Is(err, errors.CodeNotFound) {
				return nil
			}
			return err
		}
		if listing.Status != entity.ListingActive {
			return nil
		}

		listing.Status = entity.ListingExpired
		listing.UpdatedAt = uc.now()
		expired = true
		return tx.UpdateListing(listing)
	})
	if err != nil {
		return false, err
	}

	if expired {
		logger.Info("Listing %s expired", listingID)
	}
	return expired, nil
}

// ExpireOverdue expires every active listing whose expiry has passed. It
// covers timers lost to restarts.
func (uc *ListingUseCase) ExpireOverdue(ctx context.Context) (int, error) {
	count := 0
	for {
		overdue, err := uc.listingRepo.ListOverdue(ctx, uc.now(), sweepBatchSize)
		if err != nil {
			return count, err
		}

		progressed := false
		for _, listing := range overdue {
			expired, err := uc.expire(ctx, listing.ID)
			if err != nil {
				logger.Error("Failed to expire listing %s: %v", listing.ID, err)
				continue
			}
			if expired {
				count++
				progressed = true
			}
		}

		if len(overdue) < sweepBatchSize || !progressed {
			return count, nil
		}
	}
}

// GetListings browses active listings, optionally narrowed to a zip code and
// category. The category filter runs after the result cap.
func (uc *ListingUseCase) GetListings(ctx context.Context, zipCode, category string) ([]*entity.ListingView, error) {
	filter := repository.ListingFilter{
		ZipCode: strings.TrimSpace(zipCode),
		Status:  entity.ListingActive,
	}

	listings, err := uc.listingRepo.List(ctx, filter, uc.queryLimit)
	if err != nil {
		return nil, err
	}

	j := newJoiner(uc.profileRepo, uc.listingRepo)
	views := make([]*entity.ListingView, 0, len(listings))
	for _, listing := range listings {
		if category != "" && category != "all" && string(listing.Category) != category {
			continue
		}

		donor, err := j.summary(ctx, listing.DonorProfileID)
		if err != nil {
			return nil, err
		}
		views = append(views, &entity.ListingView{Listing: listing, Donor: donor})
	}

	return views, nil
}

func (uc *ListingUseCase) GetMyListings(ctx context.Context, identityID string) ([]*entity.Listing, error) {
	profile, err := lookupProfile(ctx, uc.profileRepo, identityID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return []*entity.Listing{}, nil
	}

	listings, err := uc.listingRepo.ListByDonor(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	if listings == nil {
		listings = []*entity.Listing{}
	}
	return listings, nil
}

// BackfillQuantities fills numeric quantity fields on listings created before
// they existed, deriving them from the legacy free-text quantity.
func (uc *ListingUseCase) BackfillQuantities(ctx context.Context) (int, error) {
	var pending []string
	err := uc.listingRepo.ListAll(ctx, func(l *entity.Listing) error {
		if l.NeedsQuantityBackfill() {
			pending = append(pending, l.ID)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, id := range pending {
		err := uc.transactor.RunInTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
			listing, err := tx.GetListing(id)
			if err != nil {
				return err
			}
			if !listing.NeedsQuantityBackfill() {
				return nil
			}
			backfill(listing)
			listing.UpdatedAt = uc.now()
			return tx.UpdateListing(listing)
		})
		if err != nil {
			if errors.Is(err, errors.CodeNotFound) {
				continue
			}
			return updated, err
		}
		updated++
	}

	return updated, nil
}

func backfill(l *entity.Listing) {
	n, unit := entity.ParseLegacyQuantity(l.Quantity)
	if l.TotalQuantity == nil {
		l.SetTotal(n)
	}
	if l.Unit == "" {
		l.Unit = unit
	}
	if l.AvailableQuantity == nil {
		if l.Status == entity.ListingActive {
			l.SetAvailable(l.Total())
		} else {
			l.SetAvailable(0)
		}
	}
	if l.Quantity == "" {
		l.Quantity = entity.FormatQuantity(l.Total(), l.Unit)
	}
}

func (uc *ListingUseCase) requireProfile(ctx context.Context, identityID string) (*entity.Profile, error) {
	if identityID == "" {
		return nil, errors.Unauthorized("Not authenticated", nil)
	}
	profile, err := lookupProfile(ctx, uc.profileRepo, identityID)
	if err != nil {
		return nil, err
	}
	// Without a profile the caller cannot own any listing.
	if profile == nil {
		return nil, errors.Forbidden("A donor profile is required to manage listings", nil)
	}
	return profile, nil
}
