package main

import (
	"context"
	"fmt"
	"log"
	"os"

	fbapp "firebase.google.com/go/v4"

	"foodshare/internal/adapter/repository"
	"foodshare/internal/usecase"
	"foodshare/pkg/config"
	"foodshare/pkg/logger"
)

// backfill derives total/available quantities and units for listings created
// before numeric quantities existed. With EXPIRE_OVERDUE=true it also runs one
// expiration sweep, for deployments where the API is not running.
func main() {
	if err := run(); err != nil {
		log.Fatalf("backfill failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	stores, err := openStores(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	defer stores.Close()

	listings := usecase.NewListingUseCase(stores.Listings, stores.Profiles, stores.Transactor, nil, usecase.ListingOptions{
		TTL:        cfg.ListingTTL,
		QueryLimit: cfg.QueryLimit,
	})

	updated, err := listings.BackfillQuantities(ctx)
	if err != nil {
		return fmt.Errorf("backfill quantities (%d updated before failure): %w", updated, err)
	}
	logger.Info("Backfilled quantities on %d listings", updated)

	if os.Getenv("EXPIRE_OVERDUE") == "true" {
		expired, err := listings.ExpireOverdue(ctx)
		if err != nil {
			return fmt.Errorf("expire overdue listings: %w", err)
		}
		logger.Info("Expired %d overdue listings", expired)
	}

	return nil
}

func openStores(ctx context.Context, cfg *config.Config) (*repository.Stores, error) {
	switch cfg.StoreDriver {
	case config.StoreFirestore:
		opts, err := cfg.GoogleClientOptions()
		if err != nil {
			return nil, err
		}
		app, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
		if err != nil {
			return nil, err
		}
		client, err := app.Firestore(ctx)
		if err != nil {
			return nil, err
		}
		return repository.NewFirestoreStores(client), nil
	case config.StorePostgres, config.StoreMySQL:
		return repository.OpenSQLStores(cfg.StoreDriver, cfg.DatabaseDSN)
	}
	return nil, fmt.Errorf("store driver %q holds nothing to backfill", cfg.StoreDriver)
}
