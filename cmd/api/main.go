package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	fbapp "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"foodshare/internal/adapter/api"
	"foodshare/internal/adapter/api/handler"
	apimiddleware "foodshare/internal/adapter/api/middleware"
	"foodshare/internal/adapter/api/router"
	"foodshare/internal/adapter/repository"
	"foodshare/internal/infrastructure/identity"
	"foodshare/internal/infrastructure/ratelimit"
	"foodshare/internal/infrastructure/scheduler"
	"foodshare/internal/infrastructure/storage"
	"foodshare/internal/infrastructure/websocket"
	"foodshare/internal/usecase"
	"foodshare/pkg/config"
	"foodshare/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Setup(os.Stdout, !cfg.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry init failed: %v", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	opts, err := cfg.GoogleClientOptions()
	if err != nil {
		log.Fatalf("Failed to resolve Google credentials: %v", err)
	}

	var firebaseApp *fbapp.App
	if cfg.StoreDriver == config.StoreFirestore || cfg.IdentityProvider == config.IdentityFirebase {
		firebaseApp, err = fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
	}

	stores, err := openStores(ctx, cfg, firebaseApp)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.StoreDriver, err)
	}
	defer stores.Close()

	resolver, err := newResolver(ctx, cfg, firebaseApp)
	if err != nil {
		log.Fatalf("Failed to initialize %s identity: %v", cfg.IdentityProvider, err)
	}

	var photoStorage usecase.PhotoStorage
	if cfg.StorageBucket != "" {
		storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, opts...)
		if err != nil {
			log.Fatalf("Failed to initialize Cloud Storage: %v", err)
		}
		defer storageClient.Close()
		photoStorage = storageClient
	} else {
		logger.Warn("STORAGE_BUCKET not set, photo uploads are disabled")
	}

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	rateLimiter := ratelimit.NewRateLimiter(nil)
	rateLimiter.StartCleanupRoutine(ctx)

	expiry := scheduler.New()

	listingUseCase := usecase.NewListingUseCase(stores.Listings, stores.Profiles, stores.Transactor, expiry, usecase.ListingOptions{
		TTL:        cfg.ListingTTL,
		QueryLimit: cfg.QueryLimit,
		Photos:     photoStorage,
	})
	claimUseCase := usecase.NewClaimUseCase(stores.Claims, stores.Listings, stores.Profiles, stores.Transactor, rateLimiter, usecase.ClaimPolicy{
		RestoreQuantityOnReject:   cfg.RestoreQuantityOnReject,
		RestrictCompleteToParties: cfg.RestrictCompleteToParties,
	})

	handlers := handler.Setup(handler.UseCases{
		Profiles: usecase.NewProfileUseCase(stores.Profiles),
		Listings: listingUseCase,
		Claims:   claimUseCase,
		Messages: usecase.NewMessageUseCase(stores.Messages, stores.Claims, stores.Profiles, wsManager, rateLimiter),
		Reports:  usecase.NewReportUseCase(stores.Reports, stores.Listings, stores.Profiles, rateLimiter),
		Photos:   usecase.NewPhotoUseCase(photoStorage, stores.Profiles),
	}, wsManager, resolver)

	expiry.Start(ctx, listingUseCase, cfg.ExpirySweepInterval)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	}

	e.Validator = api.NewValidator()

	router.Setup(e, handlers, apimiddleware.NewAuthMiddleware(resolver), rateLimiter)

	go func() {
		logger.Info("Starting server on port %s (store=%s, identity=%s)", cfg.ServerPort, cfg.StoreDriver, cfg.IdentityProvider)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error: %v", err)
	}
}

func openStores(ctx context.Context, cfg *config.Config, app *fbapp.App) (*repository.Stores, error) {
	switch cfg.StoreDriver {
	case config.StoreFirestore:
		client, err := app.Firestore(ctx)
		if err != nil {
			return nil, err
		}
		return repository.NewFirestoreStores(client), nil
	case config.StorePostgres, config.StoreMySQL:
		return repository.OpenSQLStores(cfg.StoreDriver, cfg.DatabaseDSN)
	case config.StoreMemory:
		logger.Warn("Using the in-memory store, data is lost on restart")
		return repository.NewMemoryStores(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func newResolver(ctx context.Context, cfg *config.Config, app *fbapp.App) (identity.Resolver, error) {
	switch cfg.IdentityProvider {
	case config.IdentityFirebase:
		authClient, err := app.Auth(ctx)
		if err != nil {
			return nil, err
		}
		return identity.NewFirebaseResolver(authClient), nil
	case config.IdentityJWT:
		return identity.NewJWTResolver(cfg.JWTSecret, cfg.JWTIssuer), nil
	}
	return nil, fmt.Errorf("unknown identity provider %q", cfg.IdentityProvider)
}
