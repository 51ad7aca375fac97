// SQLite-backed KV, the durable storage behind the anonymous identity.
//
// Storage is a single settings table in a local SQLite file (pure Go driver),
// so the identifier survives restarts and is cleared only when the host
// application's local data is cleared. The insert path uses ON CONFLICT DO
// NOTHING plus a read-back, which serializes racing first writes into one
// winning value.
package identity

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// setting is the GORM model for one persisted key-value pair.
type setting struct {
	Key       string    `gorm:"primaryKey;type:varchar(64)"`
	Value     string    `gorm:"type:varchar(128);not null"`
	CreatedAt time.Time
}

// TableName returns the database table name for setting.
func (setting) TableName() string { return "sdk_settings" }

// SQLiteKV stores values in a local SQLite database.
type SQLiteKV struct {
	db *gorm.DB
}

// NewSQLiteKV opens (or creates) the SQLite database at path, applies
// PRAGMAs, migrates the settings table, and attaches tracing. The parent
// directory must already exist.
func NewSQLiteKV(path string) (*SQLiteKV, error) {
	// Fail early if the parent directory does not exist instead of a cryptic
	// sqlite "out of memory (14)".
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA busy_timeout=5000;")

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(2)
		sqlDB.SetMaxIdleConns(2)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	}

	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&setting{}); err != nil {
		return nil, err
	}
	return &SQLiteKV{db: db}, nil
}

// Get implements KV.
func (s *SQLiteKV) Get(ctx context.Context, key string) (string, bool, error) {
	var rec setting
	err := s.db.WithContext(ctx).First(&rec, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return rec.Value, true, nil
}

// SetIfAbsent implements KV. The primary-key conflict clause makes the
// insert a no-op when a value already exists; the read-back returns the
// winning value either way.
func (s *SQLiteKV) SetIfAbsent(ctx context.Context, key, value string) (string, error) {
	rec := setting{Key: key, Value: value, CreatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rec).Error
	if err != nil {
		return "", err
	}

	var stored setting
	if err := s.db.WithContext(ctx).First(&stored, "key = ?", key).Error; err != nil {
		return "", err
	}
	return stored.Value, nil
}
