package memory

import (
	"context"
	stderrors "errors"

	"foodshare/internal/domain/entity"
	"foodshare/internal/domain/repository"
	"foodshare/pkg/errors"
)

// ErrReadAfterWrite mirrors Firestore's rule that transactional reads precede writes.
var ErrReadAfterWrite = stderrors.New("memory: read after write in transaction")

// RunInTransaction holds the store lock for the whole callback, so transactions are serial.
// Writes are staged and applied only when fn returns nil.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		s:        s,
		listings: make(map[string]*entity.Listing),
		claims:   make(map[string]*entity.Claim),
		deleted:  make(map[string]bool),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

type memTx struct {
	s      *Store
	writes bool

	listings map[string]*entity.Listing
	claims   map[string]*entity.Claim
	created  []string
	deleted  map[string]bool
}

func (t *memTx) read() error {
	if t.writes {
		return errors.Internal("Transaction read after write", ErrReadAfterWrite)
	}
	return nil
}

func (t *memTx) GetListing(id string) (*entity.Listing, error) {
	if err := t.read(); err != nil {
		return nil, err
	}
	l, ok := t.s.listings[id]
	if !ok {
		return nil, errors.NotFound("Listing", nil)
	}
	return cloneListing(l), nil
}

func (t *memTx) GetClaim(id string) (*entity.Claim, error) {
	if err := t.read(); err != nil {
		return nil, err
	}
	c, ok := t.s.claims[id]
	if !ok {
		return nil, errors.NotFound("Claim", nil)
	}
	return &c, nil
}

func (t *memTx) FindLiveClaim(listingID, receiverProfileID string) (*entity.Claim, error) {
	if err := t.read(); err != nil {
		return nil, err
	}
	for _, c := range t.s.claims {
		if c.ListingID == listingID && c.ReceiverProfileID == receiverProfileID && c.Status.Live() {
			found := c
			return &found, nil
		}
	}
	return nil, nil
}

func (t *memTx) CreateClaim(claim *entity.Claim) error {
	t.writes = true
	if claim.ID == "" {
		claim.ID = newID()
	}
	if _, exists := t.s.claims[claim.ID]; exists {
		return errors.Conflict("Claim already exists")
	}
	stamp(&claim.CreatedAt, &claim.UpdatedAt)

	c := *claim
	t.claims[claim.ID] = &c
	t.created = append(t.created, claim.ID)
	return nil
}

func (t *memTx) UpdateClaim(claim *entity.Claim) error {
	t.writes = true
	if _, ok := t.s.claims[claim.ID]; !ok {
		if _, staged := t.claims[claim.ID]; !staged {
			return errors.NotFound("Claim", nil)
		}
	}
	c := *claim
	t.claims[claim.ID] = &c
	return nil
}

func (t *memTx) UpdateListing(listing *entity.Listing) error {
	t.writes = true
	if _, ok := t.s.listings[listing.ID]; !ok {
		return errors.NotFound("Listing", nil)
	}
	t.listings[listing.ID] = cloneListing(*listing)
	delete(t.deleted, listing.ID)
	return nil
}

func (t *memTx) DeleteListing(id string) error {
	t.writes = true
	delete(t.listings, id)
	t.deleted[id] = true
	return nil
}

func (t *memTx) commit() {
	for id, l := range t.listings {
		t.s.listings[id] = *l
	}
	for id := range t.deleted {
		delete(t.s.listings, id)
	}
	for id, c := range t.claims {
		t.s.claims[id] = *c
	}
	for _, id := range t.created {
		t.s.track(id)
	}
}
