package gormstore

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"foodshare/internal/domain/entity"
	"foodshare/pkg/errors"
)

// gormTx reads with SELECT ... FOR UPDATE, so concurrent units of work on the
// same listing queue behind each other until commit.
type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) locked() *gorm.DB {
	return t.db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (t *gormTx) GetListing(id string) (*entity.Listing, error) {
	return first[entity.Listing](t.locked(), "Listing", "id = ?", id)
}

func (t *gormTx) GetClaim(id string) (*entity.Claim, error) {
	return first[entity.Claim](t.locked(), "Claim", "id = ?", id)
}

func (t *gormTx) FindLiveClaim(listingID, receiverProfileID string) (*entity.Claim, error) {
	claim, err := first[entity.Claim](t.locked(), "Claim",
		"listing_id = ? AND receiver_profile_id = ? AND status IN ?",
		listingID, receiverProfileID, []string{string(entity.ClaimPending), string(entity.ClaimAccepted)})
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return claim, nil
}

func (t *gormTx) CreateClaim(claim *entity.Claim) error {
	if claim.ID == "" {
		claim.ID = uuid.New().String()
	}
	return wrap(t.db.Create(claim).Error, "Failed to create claim")
}

func (t *gormTx) UpdateClaim(claim *entity.Claim) error {
	return wrap(t.db.Save(claim).Error, "Failed to update claim")
}

func (t *gormTx) UpdateListing(listing *entity.Listing) error {
	return wrap(t.db.Save(listing).Error, "Failed to update listing")
}

func (t *gormTx) DeleteListing(id string) error {
	return wrap(t.db.Delete(&entity.Listing{}, "id = ?", id).Error, "Failed to delete listing")
}
