// Package memory is an in-process implementation of the repository ports.
// It backs STORE_DRIVER=memory for local runs and the use case tests.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"foodshare/internal/domain/entity"
	"foodshare/internal/domain/repository"
)

type Store struct {
	mu sync.Mutex

	profiles map[string]entity.Profile
	listings map[string]entity.Listing
	claims   map[string]entity.Claim
	messages map[string]entity.Message
	reports  map[string]entity.Report

	// insertion sequence, used to break CreatedAt ties
	seq   int64
	order map[string]int64
}

func New() *Store {
	return &Store{
		profiles: make(map[string]entity.Profile),
		listings: make(map[string]entity.Listing),
		claims:   make(map[string]entity.Claim),
		messages: make(map[string]entity.Message),
		reports:  make(map[string]entity.Report),
		order:    make(map[string]int64),
	}
}

func (s *Store) Profiles() repository.ProfileRepository { return &profileRepository{s: s} }
func (s *Store) Listings() repository.ListingRepository { return &listingRepository{s: s} }
func (s *Store) Claims() repository.ClaimRepository     { return &claimRepository{s: s} }
func (s *Store) Messages() repository.MessageRepository { return &messageRepository{s: s} }
func (s *Store) Reports() repository.ReportRepository   { return &reportRepository{s: s} }

// track must be called with mu held.
func (s *Store) track(id string) {
	if _, ok := s.order[id]; ok {
		return
	}
	s.seq++
	s.order[id] = s.seq
}

var nowFunc = time.Now

func newID() string {
	return uuid.New().String()
}

func stamp(created, updated *time.Time) {
	if created.IsZero() {
		*created = nowFunc()
	}
	if updated.IsZero() {
		*updated = *created
	}
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneListing(l entity.Listing) *entity.Listing {
	c := l
	c.TotalQuantity = cloneInt(l.TotalQuantity)
	c.AvailableQuantity = cloneInt(l.AvailableQuantity)
	if l.ClaimedAt != nil {
		t := *l.ClaimedAt
		c.ClaimedAt = &t
	}
	return &c
}

// newestFirst sorts by CreatedAt descending, then by insertion order descending.
func (s *Store) newestFirst(ids []string, created func(string) time.Time) {
	sort.SliceStable(ids, func(i, j int) bool {
		ci, cj := created(ids[i]), created(ids[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return s.order[ids[i]] > s.order[ids[j]]
	})
}
