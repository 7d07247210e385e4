package repository

import (
	"context"

	"foodshare/internal/domain/entity"
)

// Tx is the unit of work handed to Transactor callbacks. All reads must happen
// before the first write; Firestore transactions reject reads after writes.
type Tx interface {
	GetListing(id string) (*entity.Listing, error)
	GetClaim(id string) (*entity.Claim, error)
	// FindLiveClaim returns the receiver's pending or accepted claim on the listing, or nil.
	FindLiveClaim(listingID, receiverProfileID string) (*entity.Claim, error)

	CreateClaim(claim *entity.Claim) error
	UpdateClaim(claim *entity.Claim) error
	UpdateListing(listing *entity.Listing) error
	DeleteListing(id string) error
}

// Transactor runs fn atomically: either every write made through tx is applied or none is.
// Implementations may retry fn on contention, so fn must not have side effects outside tx.
type Transactor interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
