package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"foodshare/internal/domain/entity"
	"foodshare/internal/domain/repository"
	"foodshare/pkg/errors"
)

type firestoreListingRepository struct {
	client *firestore.Client
}

func NewFirestoreListingRepository(client *firestore.Client) repository.ListingRepository {
	return &firestoreListingRepository{
		client: client,
	}
}

func (r *firestoreListingRepository) Create(ctx context.Context, listing *entity.Listing) error {
	if listing.ID == "" {
		listing.ID = uuid.New().String()
	}
	if listing.CreatedAt.IsZero() {
		listing.CreatedAt = time.Now()
	}
	if listing.UpdatedAt.IsZero() {
		listing.UpdatedAt = listing.CreatedAt
	}

	_, err := r.client.Collection(listingsCollection).Doc(listing.ID).Create(ctx, listing)
	if err != nil {
		return errors.Internal("Failed to create listing", err)
	}
	return nil
}

func (r *firestoreListingRepository) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	doc, err := r.client.Collection(listingsCollection).Doc(id).Get(ctx)
	return readDoc[entity.Listing](doc, err, "Listing")
}

func (r *firestoreListingRepository) Update(ctx context.Context, listing *entity.Listing) error {
	listing.UpdatedAt = time.Now()
	_, err := r.client.Collection(listingsCollection).Doc(listing.ID).Set(ctx, listing)
	if err != nil {
		return errors.Internal("Failed to update listing", err)
	}
	return nil
}

// List uses the (zipCode, status, createdAt) and (status, createdAt) composite indexes.
func (r *firestoreListingRepository) List(ctx context.Context, filter repository.ListingFilter, limit int) ([]*entity.Listing, error) {
	query := r.client.Collection(listingsCollection).Query
	if filter.ZipCode != "" {
		query = query.Where("zipCode", "==", filter.ZipCode)
	}
	if filter.Status != "" {
		query = query.Where("status", "==", string(filter.Status))
	}
	query = query.OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	return readAll[entity.Listing](query.Documents(ctx), "listings")
}

func (r *firestoreListingRepository) ListByDonor(ctx context.Context, donorProfileID string) ([]*entity.Listing, error) {
	query := r.client.Collection(listingsCollection).
		Where("donorProfileId", "==", donorProfileID).
		OrderBy("createdAt", firestore.Desc)

	return readAll[entity.Listing](query.Documents(ctx), "listings")
}

func (r *firestoreListingRepository) ListOverdue(ctx context.Context, before time.Time, limit int) ([]*entity.Listing, error) {
	query := r.client.Collection(listingsCollection).
		Where("status", "==", string(entity.ListingActive)).
		Where("expiresAt", "<=", before).
		OrderBy("expiresAt", firestore.Asc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	return readAll[entity.Listing](query.Documents(ctx), "listings")
}

func (r *firestoreListingRepository) ListAll(ctx context.Context, fn func(*entity.Listing) error) error {
	iter := r.client.Collection(listingsCollection).Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return errors.Internal("Failed to scan listings", err)
		}

		var listing entity.Listing
		if err := doc.DataTo(&listing); err != nil {
			return errors.Internal("Failed to decode listing "+doc.Ref.ID, err)
		}
		if listing.ID == "" {
			listing.ID = doc.Ref.ID
		}
		if err := fn(&listing); err != nil {
			return err
		}
	}
}
