package repository

import (
	"context"

	"cloud.google.com/go/firestore"

	"foodshare/internal/domain/entity"
	"foodshare/internal/domain/repository"
)

type firestoreClaimRepository struct {
	client *firestore.Client
}

func NewFirestoreClaimRepository(client *firestore.Client) repository.ClaimRepository {
	return &firestoreClaimRepository{
		client: client,
	}
}

func (r *firestoreClaimRepository) GetByID(ctx context.Context, id string) (*entity.Claim, error) {
	doc, err := r.client.Collection(claimsCollection).Doc(id).Get(ctx)
	return readDoc[entity.Claim](doc, err, "Claim")
}

func (r *firestoreClaimRepository) ListByReceiver(ctx context.Context, receiverProfileID string) ([]*entity.Claim, error) {
	query := r.client.Collection(claimsCollection).
		Where("receiverProfileId", "==", receiverProfileID).
		OrderBy("createdAt", firestore.Desc)

	return readAll[entity.Claim](query.Documents(ctx), "claims")
}

func (r *firestoreClaimRepository) ListByDonor(ctx context.Context, donorProfileID string) ([]*entity.Claim, error) {
	query := r.client.Collection(claimsCollection).
		Where("donorProfileId", "==", donorProfileID).
		OrderBy("createdAt", firestore.Desc)

	return readAll[entity.Claim](query.Documents(ctx), "claims")
}
