package repository

import (
	"cloud.google.com/go/firestore"

	"foodshare/internal/adapter/repository/gormstore"
	"foodshare/internal/adapter/repository/memory"
	"foodshare/internal/domain/repository"
)

// Stores bundles one backend's implementations of every port.
type Stores struct {
	Profiles   repository.ProfileRepository
	Listings   repository.ListingRepository
	Claims     repository.ClaimRepository
	Messages   repository.MessageRepository
	Reports    repository.ReportRepository
	Transactor repository.Transactor

	closer func() error
}

func (s *Stores) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

func NewFirestoreStores(client *firestore.Client) *Stores {
	return &Stores{
		Profiles:   NewFirestoreProfileRepository(client),
		Listings:   NewFirestoreListingRepository(client),
		Claims:     NewFirestoreClaimRepository(client),
		Messages:   NewFirestoreMessageRepository(client),
		Reports:    NewFirestoreReportRepository(client),
		Transactor: NewFirestoreTransactor(client),
		closer:     client.Close,
	}
}

// OpenSQLStores connects to postgres or mysql and migrates the schema.
func OpenSQLStores(driver, dsn string) (*Stores, error) {
	store, err := gormstore.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(); err != nil {
		store.Close()
		return nil, err
	}

	return &Stores{
		Profiles:   store.Profiles(),
		Listings:   store.Listings(),
		Claims:     store.Claims(),
		Messages:   store.Messages(),
		Reports:    store.Reports(),
		Transactor: store,
		closer:     store.Close,
	}, nil
}

func NewMemoryStores() *Stores {
	store := memory.New()
	return &Stores{
		Profiles:   store.Profiles(),
		Listings:   store.Listings(),
		Claims:     store.Claims(),
		Messages:   store.Messages(),
		Reports:    store.Reports(),
		Transactor: store,
	}
}
