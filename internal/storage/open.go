package storage

import (
	"context"
	"fmt"

	"complaintdesk/backend/internal/config"

	"github.com/apex/log"
)

// Open builds the store selected by cfg.StorageBackend.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return NewMemoryStore(), nil

	case config.BackendFile:
		b, err := NewFileBackend(cfg.DataFile)
		if err != nil {
			return nil, err
		}
		log.Infof("Using file storage at %s", cfg.DataFile)
		return NewStore(b), nil

	case config.BackendRedis:
		rdb := NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect redis: %w", err)
		}
		log.Infof("Using redis storage at %s", cfg.RedisAddr)
		return NewStore(NewRedisBackend(rdb, cfg.RedisPrefix)), nil

	case config.BackendPostgres:
		db, err := NewPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect postgres: %w", err)
		}
		b, err := NewPostgresBackend(db)
		if err != nil {
			return nil, fmt.Errorf("failed to migrate postgres: %w", err)
		}
		log.Info("Using postgres storage")
		return NewStore(b), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}
