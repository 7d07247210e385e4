package entity

import (
	"time"
)

type ReportReason string

const (
	ReportExpired       ReportReason = "expired"
	ReportInappropriate ReportReason = "inappropriate"
	ReportSpam          ReportReason = "spam"
	ReportOther         ReportReason = "other"
)

func (r ReportReason) Valid() bool {
	switch r {
	case ReportExpired, ReportInappropriate, ReportSpam, ReportOther:
		return true
	}
	return false
}

type ReportStatus string

const (
	ReportPending  ReportStatus = "pending"
	ReportResolved ReportStatus = "resolved"
)

// Report flags a listing for review.
type Report struct {
	ID                string       `json:"id" firestore:"id" gorm:"primaryKey;size:64"`
	ListingID         string       `json:"listing_id" firestore:"listingId" gorm:"size:64;index;not null"`
	ReporterProfileID string       `json:"reporter_profile_id" firestore:"reporterProfileId" gorm:"size:64;not null"`
	Reason            ReportReason `json:"reason" firestore:"reason" gorm:"size:32;not null"`
	Description       string       `json:"description,omitempty" firestore:"description,omitempty" gorm:"type:text"`
	Status            ReportStatus `json:"status" firestore:"status" gorm:"size:16;index;not null"`
	CreatedAt         time.Time    `json:"created_at" firestore:"createdAt" gorm:"index"`
}

type ReportView struct {
	*Report
	Listing  *Listing        `json:"listing"`
	Reporter *ProfileSummary `json:"reporter"`
}
