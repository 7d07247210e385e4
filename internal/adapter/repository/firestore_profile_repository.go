package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"foodshare/internal/domain/entity"
	"foodshare/internal/domain/repository"
	"foodshare/pkg/errors"
)

type firestoreProfileRepository struct {
	client *firestore.Client
}

func NewFirestoreProfileRepository(client *firestore.Client) repository.ProfileRepository {
	return &firestoreProfileRepository{
		client: client,
	}
}

// Create checks for an existing profile and writes the new one in a single
// transaction, so one identity cannot end up with two profiles.
func (r *firestoreProfileRepository) Create(ctx context.Context, profile *entity.Profile) error {
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now()
	}
	profile.UpdatedAt = profile.CreatedAt

	col := r.client.Collection(profilesCollection)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := tx.Documents(col.Where("identityId", "==", profile.IdentityID).Limit(1)).GetAll()
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return errors.Conflict("Profile already exists")
		}
		return tx.Create(col.Doc(profile.ID), profile)
	})
	return asAppError(err, "Failed to create profile")
}

func (r *firestoreProfileRepository) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	doc, err := r.client.Collection(profilesCollection).Doc(id).Get(ctx)
	return readDoc[entity.Profile](doc, err, "Profile")
}

func (r *firestoreProfileRepository) GetByIdentityID(ctx context.Context, identityID string) (*entity.Profile, error) {
	iter := r.client.Collection(profilesCollection).Where("identityId", "==", identityID).Limit(1).Documents(ctx)
	profiles, err := readAll[entity.Profile](iter, "profiles")
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, errors.NotFound("Profile", nil)
	}
	return profiles[0], nil
}

func (r *firestoreProfileRepository) Update(ctx context.Context, profile *entity.Profile) error {
	_, err := r.client.Collection(profilesCollection).Doc(profile.ID).Set(ctx, profile)
	if err != nil {
		return errors.Internal("Failed to update profile", err)
	}
	return nil
}
