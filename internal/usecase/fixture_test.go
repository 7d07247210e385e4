package usecase

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"foodshare/internal/adapter/repository/memory"
	"foodshare/internal/domain/entity"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeScheduler struct {
	mu        sync.Mutex
	scheduled map[string]time.Time
	cancelled []string
}

func (s *fakeScheduler) Schedule(listingID string, fireAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled[listingID] = fireAt
}

func (s *fakeScheduler) Cancel(listingID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.scheduled, listingID)
	s.cancelled = append(s.cancelled, listingID)
}

type sentEvent struct {
	userID  string
	payload interface{}
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentEvent
	err  error
}

func (n *fakeNotifier) SendJSON(userID string, payload interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentEvent{userID: userID, payload: payload})
	return nil
}

type denyLimiter struct{}

func (denyLimiter) Allow(userID, action string) (bool, time.Duration) {
	return false, 30 * time.Second
}

type fakeStorage struct {
	folder      string
	contentType string
	deleted     []string
	err         error
}

func (s *fakeStorage) UploadFile(ctx context.Context, file io.Reader, contentType, folder string, isPublic bool) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.folder = folder
	s.contentType = contentType
	return "https://storage.googleapis.com/test-bucket/public/" + folder + "/photo.jpg", nil
}

func (s *fakeStorage) DeleteFile(ctx context.Context, fileURL string) error {
	s.deleted = append(s.deleted, fileURL)
	return s.err
}

type fixture struct {
	ctx   context.Context
	store *memory.Store
	now   time.Time

	scheduler *fakeScheduler
	notifier  *fakeNotifier

	profiles *ProfileUseCase
	listings *ListingUseCase
	claims   *ClaimUseCase
	messages *MessageUseCase
	reports  *ReportUseCase
}

func newFixture(t *testing.T, policy ClaimPolicy) *fixture {
	t.Helper()

	store := memory.New()
	f := &fixture{
		ctx:       context.Background(),
		store:     store,
		now:       baseTime,
		scheduler: &fakeScheduler{scheduled: make(map[string]time.Time)},
		notifier:  &fakeNotifier{},
	}
	clock := func() time.Time { return f.now }

	f.profiles = NewProfileUseCase(store.Profiles())
	f.profiles.now = clock

	f.listings = NewListingUseCase(store.Listings(), store.Profiles(), store, f.scheduler, ListingOptions{})
	f.listings.now = clock

	f.claims = NewClaimUseCase(store.Claims(), store.Listings(), store.Profiles(), store, nil, policy)
	f.claims.now = clock

	f.messages = NewMessageUseCase(store.Messages(), store.Claims(), store.Profiles(), f.notifier, nil)
	f.messages.now = clock

	f.reports = NewReportUseCase(store.Reports(), store.Listings(), store.Profiles(), nil)
	f.reports.now = clock

	return f
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func (f *fixture) profile(t *testing.T, identityID string, role entity.Role) *entity.Profile {
	t.Helper()
	p, err := f.profiles.CreateProfile(f.ctx, identityID, identityID+"@example.com", CreateProfileInput{
		DisplayName: "User " + identityID,
		Role:        role,
		ZipCode:     "94110",
	})
	require.NoError(t, err)
	return p
}

func listingInput(qty int) ListingInput {
	return ListingInput{
		Title:             "Fresh bread",
		Description:       "Sourdough loaves from this morning",
		Category:          entity.CategoryBakedGoods,
		Quantity:          qty,
		Unit:              "serving",
		PickupWindowStart: baseTime.Add(time.Hour),
		PickupWindowEnd:   baseTime.Add(3 * time.Hour),
		Address:           "1 Mission St",
		ZipCode:           "94110",
	}
}

func (f *fixture) listing(t *testing.T, donorIdentity string, qty int) *entity.Listing {
	t.Helper()
	l, err := f.listings.CreateListing(f.ctx, donorIdentity, listingInput(qty))
	require.NoError(t, err)
	return l
}

func (f *fixture) reload(t *testing.T, listingID string) *entity.Listing {
	t.Helper()
	l, err := f.store.Listings().GetByID(f.ctx, listingID)
	require.NoError(t, err)
	return l
}
