package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"foodshare/internal/domain/entity"
	"foodshare/internal/domain/repository"
)

type firestoreTransactor struct {
	client *firestore.Client
}

// NewFirestoreTransactor runs units of work as Firestore transactions.
// Firestore retries the callback when a document it read changes before commit.
func NewFirestoreTransactor(client *firestore.Client) repository.Transactor {
	return &firestoreTransactor{
		client: client,
	}
}

func (t *firestoreTransactor) RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	err := t.client.RunTransaction(ctx, func(ctx context.Context, ftx *firestore.Transaction) error {
		return fn(ctx, &firestoreTx{client: t.client, tx: ftx})
	})
	return asAppError(err, "Transaction failed")
}

type firestoreTx struct {
	client *firestore.Client
	tx     *firestore.Transaction
}

func (t *firestoreTx) GetListing(id string) (*entity.Listing, error) {
	doc, err := t.tx.Get(t.client.Collection(listingsCollection).Doc(id))
	return readDoc[entity.Listing](doc, err, "Listing")
}

func (t *firestoreTx) GetClaim(id string) (*entity.Claim, error) {
	doc, err := t.tx.Get(t.client.Collection(claimsCollection).Doc(id))
	return readDoc[entity.Claim](doc, err, "Claim")
}

func (t *firestoreTx) FindLiveClaim(listingID, receiverProfileID string) (*entity.Claim, error) {
	query := t.client.Collection(claimsCollection).
		Where("listingId", "==", listingID).
		Where("receiverProfileId", "==", receiverProfileID).
		Where("status", "in", []string{string(entity.ClaimPending), string(entity.ClaimAccepted)}).
		Limit(1)

	claims, err := readAll[entity.Claim](t.tx.Documents(query), "claims")
	if err != nil {
		return nil, err
	}
	if len(claims) == 0 {
		return nil, nil
	}
	return claims[0], nil
}

func (t *firestoreTx) CreateClaim(claim *entity.Claim) error {
	if claim.ID == "" {
		claim.ID = uuid.New().String()
	}
	if claim.CreatedAt.IsZero() {
		claim.CreatedAt = time.Now()
	}
	if claim.UpdatedAt.IsZero() {
		claim.UpdatedAt = claim.CreatedAt
	}
	return t.tx.Create(t.client.Collection(claimsCollection).Doc(claim.ID), claim)
}

func (t *firestoreTx) UpdateClaim(claim *entity.Claim) error {
	return t.tx.Set(t.client.Collection(claimsCollection).Doc(claim.ID), claim)
}

func (t *firestoreTx) UpdateListing(listing *entity.Listing) error {
	return t.tx.Set(t.client.Collection(listingsCollection).Doc(listing.ID), listing)
}

func (t *firestoreTx) DeleteListing(id string) error {
	return t.tx.Delete(t.client.Collection(listingsCollection).Doc(id))
}
