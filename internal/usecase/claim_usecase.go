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

// ClaimPolicy selects between the corrected and the legacy claim rules.
type ClaimPolicy struct {
	// RestoreQuantityOnReject returns a rejected claim's units to the listing.
	RestoreQuantityOnReject bool
	// RestrictCompleteToParties limits completion to the claim's donor and receiver.
	RestrictCompleteToParties bool
}

func DefaultClaimPolicy() ClaimPolicy {
	return ClaimPolicy{
		RestoreQuantityOnReject:   true,
		RestrictCompleteToParties: true,
	}
}

type ClaimUseCase struct {
	claimRepo   repository.ClaimRepository
	listingRepo repository.ListingRepository
	profileRepo repository.ProfileRepository
	transactor  repository.Transactor
	rateLimiter RateLimiter
	policy      ClaimPolicy
	now         func() time.Time
}

func NewClaimUseCase(
	claimRepo repository.ClaimRepository,
	listingRepo repository.ListingRepository,
	profileRepo repository.ProfileRepository,
	transactor repository.Transactor,
	rateLimiter RateLimiter,
	policy ClaimPolicy,
) *ClaimUseCase {
	return &ClaimUseCase{
		claimRepo:   claimRepo,
		listingRepo: listingRepo,
		profileRepo: profileRepo,
		transactor:  transactor,
		rateLimiter: rateLimiter,
		policy:      policy,
		now:         time.Now,
	}
}

type ClaimDecision string

const (
	DecisionAccepted ClaimDecision = "accepted"
	DecisionRejected ClaimDecision = "rejected"
)

func (d ClaimDecision) Valid() bool {
	return d == DecisionAccepted || d == DecisionRejected
}

// CreateClaim reserves quantity units of a listing for the calling receiver.
// A zero quantity means one unit. The availability check, the duplicate check
// and the decrement share one transaction, so concurrent claims cannot
// over-allocate.
func (uc *ClaimUseCase) CreateClaim(ctx context.Context, identityID, listingID string, quantity int, message string) (*entity.Claim, error) {
	if identityID == "" {
		return nil, errors.Unauthorized("Not authenticated", nil)
	}

	profile, err := lookupProfile(ctx, uc.profileRepo, identityID)
	if err != nil {
		return nil, err
	}
	if !profile.IsReceiver() {
		return nil, errors.Forbidden("Only receivers can claim listings", nil)
	}

	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, errors.BadRequest("quantity must be at least 1", nil)
	}

	if uc.rateLimiter != nil {
		if allowed, wait := uc.rateLimiter.Allow(profile.ID, ActionCreateClaim); !allowed {
			return nil, errors.TooManyRequests("Too many claim requests", wait)
		}
	}

	var claim *entity.Claim
	err = uc.transactor.RunInTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		listing, err := tx.GetListing(listingID)
		if err != nil {
			return err
		}
		live, err := tx.FindLiveClaim(listingID, profile.ID)
		if err != nil {
			return err
		}

		if err := checkReservable(listing, quantity); err != nil {
			return err
		}
		if live != nil {
			return errors.Conflict("You already have a pending or accepted claim for this listing")
		}

		now := uc.now()
		claim = &entity.Claim{
			ListingID:         listing.ID,
			ReceiverProfileID: profile.ID,
			DonorProfileID:    listing.DonorProfileID,
			QuantityClaimed:   quantity,
			Status:            entity.ClaimPending,
			Message:           strings.TrimSpace(message),
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := tx.CreateClaim(claim); err != nil {
			return err
		}

		reserve(listing, profile.ID, quantity, now)
		return tx.UpdateListing(listing)
	})
	if err != nil {
		if errors.Is(err, errors.CodeInternal) {
			logger.Error("Failed to create claim on listing %s: %v", listingID, err)
		}
		return nil, err
	}

	logger.Info("Claim %s created on listing %s by %s for %d", claim.ID, listingID, profile.ID, quantity)
	return claim, nil
}

// RespondToClaim lets the listing's donor accept or reject a pending claim.
func (uc *ClaimUseCase) RespondToClaim(ctx context.Context, identityID, claimID string, decision ClaimDecision) (*entity.Claim, error) {
	if identityID == "" {
		return nil, errors.Unauthorized("Not authenticated", nil)
	}
	if !decision.Valid() {
		return nil, errors.BadRequest("decision must be accepted or rejected", nil)
	}

	profile, err := lookupProfile(ctx, uc.profileRepo, identityID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, errors.Forbidden("Not authorized to respond to this claim", nil)
	}

	var claim *entity.Claim
	err = uc.transactor.RunInTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		c, err := tx.GetClaim(claimID)
		if err != nil {
			return err
		}
		if c.DonorProfileID != profile.ID {
			return errors.Forbidden("Not authorized to respond to this claim", nil)
		}
		if c.Status != entity.ClaimPending {
			return errors.InvalidState("Claim has already been responded to")
		}

		var listing *entity.Listing
		if decision == DecisionRejected {
			listing, err = tx.GetListing(c.ListingID)
			if err != nil && !errors.Is(err, errors.CodeNotFound) {
				return err
			}
		}

		now := uc.now()
		c.Status = entity.ClaimStatus(decision)
		c.UpdatedAt = now
		if err := tx.UpdateClaim(c); err != nil {
			return err
		}
		claim = c

		if listing == nil {
			return nil
		}
		release(listing, c, uc.policy.RestoreQuantityOnReject, now)
		return tx.UpdateListing(listing)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Claim %s %s by donor %s", claimID, decision, profile.ID)
	return claim, nil
}

// CompleteClaim marks an accepted claim and its listing as completed.
func (uc *ClaimUseCase) CompleteClaim(ctx context.Context, identityID, claimID string) (*entity.Claim, error) {
	if identityID == "" {
		return nil, errors.Unauthorized("Not authenticated", nil)
	}

	var callerID string
	if uc.policy.RestrictCompleteToParties {
		profile, err := lookupProfile(ctx, uc.profileRepo, identityID)
		if err != nil {
			return nil, err
		}
		if profile == nil {
			return nil, errors.Forbidden("Not authorized to complete this claim", nil)
		}
		callerID = profile.ID
	}

	var claim *entity.Claim
	err := uc.transactor.RunInTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		c, err := tx.GetClaim(claimID)
		if err != nil {
			return err
		}
		if uc.policy.RestrictCompleteToParties && !c.IsParticipant(callerID) {
			return errors.Forbidden("Not authorized to complete this claim", nil)
		}
		if c.Status != entity.ClaimAccepted {
			return errors.InvalidState("Only accepted claims can be completed")
		}

		listing, err := tx.GetListing(c.ListingID)
		if err != nil && !errors.Is(err, errors.CodeNotFound) {
			return err
		}

		now := uc.now()
		c.Status = entity.ClaimCompleted
		c.UpdatedAt = now
		if err := tx.UpdateClaim(c); err != nil {
			return err
		}
		claim = c

		if listing == nil || (listing.Status != entity.ListingActive && listing.Status != entity.ListingClaimed) {
			return nil
		}
		listing.Status = entity.ListingCompleted
		listing.UpdatedAt = now
		return tx.UpdateListing(listing)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Claim %s completed", claimID)
	return claim, nil
}

// GetMyClaims lists the caller's claims as a receiver, newest first.
func (uc *ClaimUseCase) GetMyClaims(ctx context.Context, identityID string) ([]*entity.ClaimView, error) {
	profile, err := lookupProfile(ctx, uc.profileRepo, identityID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return []*entity.ClaimView{}, nil
	}

	claims, err := uc.claimRepo.ListByReceiver(ctx, profile.ID)
	if err != nil {
		return nil, err
	}

	j := newJoiner(uc.profileRepo, uc.listingRepo)
	views := make([]*entity.ClaimView, 0, len(claims))
	for _, c := range claims {
		listing, err := j.listing(ctx, c.ListingID)
		if err != nil {
			return nil, err
		}
		donor, err := j.summary(ctx, c.DonorProfileID)
		if err != nil {
			return nil, err
		}
		views = append(views, &entity.ClaimView{Claim: c, Listing: listing, Donor: donor})
	}

	return views, nil
}

// GetClaimsForDonor lists claims made against the caller's listings, newest first.
func (uc *ClaimUseCase) GetClaimsForDonor(ctx context.Context, identityID string) ([]*entity.ClaimView, error) {
	profile, err := lookupProfile(ctx, uc.profileRepo, identityID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return []*entity.ClaimView{}, nil
	}

	claims, err := uc.claimRepo.ListByDonor(ctx, profile.ID)
	if err != nil {
		return nil, err
	}

	j := newJoiner(uc.profileRepo, uc.listingRepo)
	views := make([]*entity.ClaimView, 0, len(claims))
	for _, c := range claims {
		listing, err := j.listing(ctx, c.ListingID)
		if err != nil {
			return nil, err
		}
		receiver, err := j.summary(ctx, c.ReceiverProfileID)
		if err != nil {
			return nil, err
		}
		views = append(views, &entity.ClaimView{Claim: c, Listing: listing, Receiver: receiver})
	}

	return views, nil
}
