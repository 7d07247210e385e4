package entity

import (
	"time"
)

type ClaimStatus string

const (
	ClaimPending   ClaimStatus = "pending"
	ClaimAccepted  ClaimStatus = "accepted"
	ClaimRejected  ClaimStatus = "rejected"
	ClaimCompleted ClaimStatus = "completed"
)

// Live claims hold a receiver's single slot on a listing.
func (s ClaimStatus) Live() bool {
	return s == ClaimPending || s == ClaimAccepted
}

type Claim struct {
	ID                string      `json:"id" firestore:"id" gorm:"primaryKey;size:64"`
	ListingID         string      `json:"listing_id" firestore:"listingId" gorm:"size:64;index:idx_claims_listing_receiver,priority:1;not null"`
	ReceiverProfileID string      `json:"receiver_profile_id" firestore:"receiverProfileId" gorm:"size:64;index;index:idx_claims_listing_receiver,priority:2;not null"`
	DonorProfileID    string      `json:"donor_profile_id" firestore:"donorProfileId" gorm:"size:64;index;not null"`
	QuantityClaimed   int         `json:"quantity_claimed" firestore:"quantityClaimed" gorm:"not null"`
	Status            ClaimStatus `json:"status" firestore:"status" gorm:"size:16;not null"`
	Message           string      `json:"message,omitempty" firestore:"message,omitempty" gorm:"type:text"`
	CreatedAt         time.Time   `json:"created_at" firestore:"createdAt" gorm:"index"`
	UpdatedAt         time.Time   `json:"updated_at" firestore:"updatedAt"`
}

func (c *Claim) IsParticipant(profileID string) bool {
	return profileID != "" && (c.DonorProfileID == profileID || c.ReceiverProfileID == profileID)
}

// ClaimView joins the claimed listing and the counterpart's profile.
type ClaimView struct {
	*Claim
	Listing  *Listing        `json:"listing"`
	Donor    *ProfileSummary `json:"donor,omitempty"`
	Receiver *ProfileSummary `json:"receiver,omitempty"`
}
