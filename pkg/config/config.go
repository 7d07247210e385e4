package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"
)

const (
	StoreFirestore = "firestore"
	StorePostgres  = "postgres"
	StoreMySQL     = "mysql"
	StoreMemory    = "memory"

	IdentityFirebase = "firebase"
	IdentityJWT      = "jwt"
)

type Config struct {
	ServerPort  string `env:"SERVER_PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	FirebaseProject            string `env:"FIREBASE_PROJECT_ID"`
	FirebaseServiceAccountJSON string `env:"FIREBASE_SERVICE_ACCOUNT_JSON"`
	FirebaseServiceAccountPath string `env:"FIREBASE_SERVICE_ACCOUNT_PATH"`
	StorageBucket              string `env:"STORAGE_BUCKET"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"firestore"`
	DatabaseDSN string `env:"DATABASE_DSN"`

	IdentityProvider string `env:"IDENTITY_PROVIDER" envDefault:"firebase"`
	JWTSecret        string `env:"JWT_SECRET"`
	JWTIssuer        string `env:"JWT_ISSUER" envDefault:"foodshare"`

	ListingTTL          time.Duration `env:"LISTING_TTL" envDefault:"48h"`
	ExpirySweepInterval time.Duration `env:"EXPIRY_SWEEP_INTERVAL" envDefault:"10m"`
	QueryLimit          int           `env:"QUERY_LIMIT" envDefault:"50"`

	RestoreQuantityOnReject   bool `env:"RESTORE_QUANTITY_ON_REJECT" envDefault:"true"`
	RestrictCompleteToParties bool `env:"RESTRICT_COMPLETE_TO_PARTIES" envDefault:"true"`

	SentryDSN string `env:"SENTRY_DSN"`
}

func Load() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreFirestore:
		if c.FirebaseProject == "" {
			return errors.New("FIREBASE_PROJECT_ID is required for the firestore store")
		}
	case StorePostgres, StoreMySQL:
		if c.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for the %s store", c.StoreDriver)
		}
	case StoreMemory:
		if c.IsProduction() {
			return errors.New("the memory store cannot be used in production")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.IdentityProvider {
	case IdentityFirebase:
		if c.FirebaseProject == "" {
			return errors.New("FIREBASE_PROJECT_ID is required for firebase identity")
		}
	case IdentityJWT:
		if len(c.JWTSecret) < 16 {
			return errors.New("JWT_SECRET must be at least 16 characters for jwt identity")
		}
	default:
		return fmt.Errorf("unknown IDENTITY_PROVIDER %q", c.IdentityProvider)
	}

	if c.ListingTTL <= 0 {
		return errors.New("LISTING_TTL must be positive")
	}
	if c.ExpirySweepInterval <= 0 {
		return errors.New("EXPIRY_SWEEP_INTERVAL must be positive")
	}
	if c.QueryLimit <= 0 {
		return errors.New("QUERY_LIMIT must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// GoogleClientOptions resolves service account credentials for the Google clients.
// Inline JSON wins over a file path. With neither, application default credentials apply.
func (c *Config) GoogleClientOptions() ([]option.ClientOption, error) {
	if c.FirebaseServiceAccountJSON != "" {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(c.FirebaseServiceAccountJSON))}, nil
	}

	if c.FirebaseServiceAccountPath != "" {
		if _, err := os.Stat(c.FirebaseServiceAccountPath); err != nil {
			return nil, fmt.Errorf("service account file %s: %w", c.FirebaseServiceAccountPath, err)
		}
		return []option.ClientOption{option.WithCredentialsFile(c.FirebaseServiceAccountPath)}, nil
	}

	return nil, nil
}
