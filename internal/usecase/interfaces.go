package usecase

import (
	"context"
	"io"
	"time"
)

// ExpirationScheduler fires a one-shot expiry for a listing at fireAt.
// Delivery is at-least-once; ExpireListing is idempotent.
type ExpirationScheduler interface {
	Schedule(listingID string, fireAt time.Time)
	Cancel(listingID string)
}

type RateLimiter interface {
	Allow(userID, action string) (bool, time.Duration)
}

// MessageNotifier pushes realtime events to a connected identity.
type MessageNotifier interface {
	SendJSON(userID string, payload interface{}) error
}

type PhotoStorage interface {
	UploadFile(ctx context.Context, file io.Reader, contentType, folder string, isPublic bool) (string, error)
	DeleteFile(ctx context.Context, fileURL string) error
}

type noopScheduler struct{}

func (noopScheduler) Schedule(string, time.Time) {}
func (noopScheduler) Cancel(string)              {}

const (
	ActionCreateClaim   = "create_claim"
	ActionSendMessage   = "send_message"
	ActionReportListing = "report_listing"
)
