package storage

import (
	"context"
	"errors"
	stdlog "log"
	"os"
	"time"

	"complaintdesk/backend/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// kvEntry is one persisted key.
type kvEntry struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (kvEntry) TableName() string {
	return "kv_entries"
}

// PostgresBackend stores keys as rows of the kv_entries table.
type PostgresBackend struct {
	db *gorm.DB
}

// NewPostgres opens a gorm connection with warn-level SQL logging.
func NewPostgres(dsn string) (*gorm.DB, error) {
	gormLogger := logger.New(
		stdlog.New(os.Stdout, "\r\n", stdlog.LstdFlags),
		logger.Config{
			SlowThreshold:             300 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger,
	})
}

// NewPostgresBackend migrates the kv_entries and communities tables and
// returns the backend.
func NewPostgresBackend(db *gorm.DB) (*PostgresBackend, error) {
	if err := db.AutoMigrate(&kvEntry{}, &CommunityRow{}); err != nil {
		return nil, err
	}
	return &PostgresBackend{db: db}, nil
}

func (p *PostgresBackend) Read(ctx context.Context, key string) ([]byte, error) {
	var entry kvEntry
	err := p.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMissing
	}
	if err != nil {
		return nil, err
	}
	return []byte(entry.Value), nil
}

// Write upserts the entry. The communities collection is also mirrored into
// its typed table in the same transaction.
func (p *PostgresBackend) Write(ctx context.Context, key string, data []byte) error {
	entry := kvEntry{Key: key, Value: string(data), UpdatedAt: time.Now()}
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&entry).Error
		if err != nil {
			return err
		}
		if key == config.KeyCommunities {
			return replaceCommunities(tx, data)
		}
		return nil
	})
}

func (p *PostgresBackend) Delete(ctx context.Context, key string) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&kvEntry{}, "key = ?", key).Error; err != nil {
			return err
		}
		if key == config.KeyCommunities {
			return tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&CommunityRow{}).Error
		}
		return nil
	})
}
