package entity

import "time"

// Message is an immutable chat line scoped to a claim.
type Message struct {
	ID              string    `json:"id" firestore:"id" gorm:"primaryKey;size:64"`
	ClaimID         string    `json:"claim_id" firestore:"claimId" gorm:"size:64;index:idx_messages_claim_created,priority:1;not null"`
	SenderProfileID string    `json:"sender_profile_id" firestore:"senderProfileId" gorm:"size:64;not null"`
	Content         string    `json:"content" firestore:"content" gorm:"type:text;not null"`
	CreatedAt       time.Time `json:"created_at" firestore:"createdAt" gorm:"index:idx_messages_claim_created,priority:2"`
}

type MessageView struct {
	*Message
	Sender *ProfileSummary `json:"sender"`
}
