// Package sqldb stores documents in a single SQL table through gorm.
// Postgres and SQLite dialects are supported.
package sqldb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobtrack/internal/core/ports"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Ensure Store implements ports.KVStore at compile time.
var _ ports.KVStore = (*Store)(nil)

type documentRow struct {
	Key       string `gorm:"column:doc_key;type:varchar(512);primary_key"`
	Value     []byte `gorm:"column:value;not null"`
	UpdatedAt time.Time
}

func (documentRow) TableName() string { return "documents" }

// Open connects with the named driver ("postgres" or "sqlite"). gorm
// warnings and slow queries are written to log.
func Open(driver, dsn string, log *logrus.Entry) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("jobtrack/sqldb: unknown driver %q", driver)
	}

	gormLog := logger.Discard
	if log != nil {
		gormLog = logger.New(log, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		})
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("jobtrack/sqldb: open %s: %w", driver, err)
	}
	return db, nil
}

// Store is a gorm implementation of ports.KVStore. The caller owns the
// *gorm.DB lifecycle; Close does not close it.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the documents table.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&documentRow{}); err != nil {
		return fmt.Errorf("jobtrack/sqldb: migrate: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var row documentRow
	err := s.db.WithContext(ctx).Where("doc_key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("jobtrack/sqldb: get: %w", err)
	}
	return row.Value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	row := documentRow{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "doc_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("jobtrack/sqldb: set: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	result := s.db.WithContext(ctx).Where("doc_key = ?", key).Delete(&documentRow{})
	if result.Error != nil {
		return fmt.Errorf("jobtrack/sqldb: delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.db.WithContext(ctx).
		Model(&documentRow{}).
		Where("doc_key LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%").
		Order("doc_key").
		Pluck("doc_key", &keys).Error
	if err != nil {
		return nil, fmt.Errorf("jobtrack/sqldb: list: %w", err)
	}
	return keys, nil
}

func (s *Store) Close() error { return nil }

var likeReplacer = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeReplacer.Replace(s)
}
