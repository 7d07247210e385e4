// Package gormstore implements the repository ports on a relational database
// through GORM. Postgres and MySQL are supported.
package gormstore

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"foodshare/internal/domain/entity"
	"foodshare/internal/domain/repository"
	"foodshare/pkg/errors"
	"foodshare/pkg/logger"
)

type Store struct {
	db *gorm.DB
}

// Open connects with the named driver ("postgres" or "mysql").
func Open(driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	logger.Info("Connected to %s database", driver)
	return New(db), nil
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the tables and indexes.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(
		&entity.Profile{},
		&entity.Listing{},
		&entity.Claim{},
		&entity.Message{},
		&entity.Report{},
	)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Profiles() repository.ProfileRepository { return &profileRepository{db: s.db} }
func (s *Store) Listings() repository.ListingRepository { return &listingRepository{db: s.db} }
func (s *Store) Claims() repository.ClaimRepository     { return &claimRepository{db: s.db} }
func (s *Store) Messages() repository.MessageRepository { return &messageRepository{db: s.db} }
func (s *Store) Reports() repository.ReportRepository   { return &reportRepository{db: s.db} }

// RunInTransaction runs fn in a database transaction. Reads inside it take row locks.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(ctx, &gormTx{db: db})
	})
	return wrap(err, "Transaction failed")
}

// wrap passes AppErrors through and classifies driver errors.
func wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return err
	}
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Conflict("Record already exists")
	}
	return errors.Internal(message, err)
}

func first[T any](db *gorm.DB, resource string, query string, args ...interface{}) (*T, error) {
	var v T
	if err := db.Where(query, args...).Take(&v).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound(resource, err)
		}
		return nil, errors.Internal("Failed to get "+resource, err)
	}
	return &v, nil
}

func find[T any](db *gorm.DB, what string) ([]*T, error) {
	out := make([]*T, 0)
	if err := db.Find(&out).Error; err != nil {
		return nil, errors.Internal("Failed to query "+what, err)
	}
	return out, nil
}
