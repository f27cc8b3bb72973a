// Package pgstore is the PostgreSQL storage backend, used when the
// dealership runs against a managed database instead of the local JSON
// files.
package pgstore

import (
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"autopier/entity"
	"autopier/internal/lib/sl"
)

type Store struct {
	db  *gorm.DB
	log *slog.Logger
}

func New(dsn string, log *slog.Logger) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}

	err = db.AutoMigrate(
		&entity.Order{},
		&entity.Negotiation{},
		&entity.Message{},
		&entity.ChatSession{},
	)
	if err != nil {
		return nil, fmt.Errorf("postgres migrate: %w", err)
	}

	return &Store{
		db:  db,
		log: log.With(sl.Module("pgstore")),
	}, nil
}

// notFound folds gorm.ErrRecordNotFound into the "absent record"
// convention shared by all storage backends.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}
