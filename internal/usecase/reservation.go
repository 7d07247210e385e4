package usecase

import (
	"fmt"
	"time"

	"foodshare/internal/domain/entity"
	"foodshare/pkg/errors"
)

// checkReservable validates a request for qty units against the listing's current stock.
func checkReservable(listing *entity.Listing, qty int) error {
	if listing.Status != entity.ListingActive {
		return errors.InvalidState("Listing not available")
	}
	if qty < 1 {
		return errors.BadRequest("quantity must be at least 1", nil)
	}
	if available := listing.Available(); qty > available {
		return errors.BadRequest(fmt.Sprintf("Only %d %s available", available, listing.UnitLabel()), nil)
	}
	return nil
}

// reserve decrements stock eagerly at request time. When the last unit goes,
// the listing flips to claimed and the legacy claimedBy/claimedAt pair is stamped.
func reserve(listing *entity.Listing, receiverProfileID string, qty int, now time.Time) {
	remaining := listing.Available() - qty
	if remaining <= 0 {
		listing.SetAvailable(0)
		listing.Status = entity.ListingClaimed
		listing.ClaimedBy = receiverProfileID
		claimedAt := now
		listing.ClaimedAt = &claimedAt
	} else {
		listing.SetAvailable(remaining)
	}
	listing.UpdatedAt = now
}

// release undoes the listing side of a rejected claim. A claimed listing goes
// back to active and the legacy fields are cleared. With restore set, the
// claim's units return to the pool, capped at the total. Completed and expired
// listings keep their status.
func release(listing *entity.Listing, claim *entity.Claim, restore bool, now time.Time) {
	if listing.Status == entity.ListingClaimed {
		listing.Status = entity.ListingActive
	}
	listing.ClaimedBy = ""
	listing.ClaimedAt = nil

	if restore && listing.Status == entity.ListingActive {
		restored := listing.Available() + claim.QuantityClaimed
		if total := listing.Total(); restored > total {
			restored = total
		}
		listing.SetAvailable(restored)
	}
	listing.UpdatedAt = now
}
