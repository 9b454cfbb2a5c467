// Package storage is the persistence adapter: a small key-value contract with
// JSON-serialized values, backed by memory, a local file, Redis or PostgreSQL.
// Failures are logged here and reported as a false result or the caller's
// default value; they never propagate as errors.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"complaintdesk/backend/internal/config"

	"github.com/apex/log"
)

// ErrMissing is returned by a Backend when a key has no value.
var ErrMissing = errors.New("storage: key not found")

// KV is the contract every component persists through.
type KV interface {
	// Get decodes the value stored under key into dest. It returns false when
	// the key is absent or the stored value cannot be decoded.
	Get(key string, dest any) bool
	// Set serializes value and stores it under key.
	Set(key string, value any) bool
	// Remove deletes key. Removing an absent key succeeds.
	Remove(key string) bool
}

// Backend stores raw bytes. Implementations return ErrMissing for absent keys.
type Backend interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

const defaultTimeout = 5 * time.Second

// Store adapts a Backend to the KV contract.
type Store struct {
	backend Backend
	timeout time.Duration
}

// NewStore wraps a backend.
func NewStore(b Backend) *Store {
	return &Store{backend: b, timeout: defaultTimeout}
}

// NewMemoryStore returns a store that keeps everything in process memory.
func NewMemoryStore() *Store {
	return NewStore(NewMemoryBackend())
}

func (s *Store) Get(key string, dest any) bool {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	data, err := s.backend.Read(ctx, key)
	if errors.Is(err, ErrMissing) {
		return false
	}
	if err != nil {
		log.WithError(err).WithField("key", key).Error("storage read failed")
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		log.WithError(err).WithField("key", key).Warn("stored value is unreadable")
		return false
	}
	return true
}

func (s *Store) Set(key string, value any) bool {
	data, err := json.Marshal(value)
	if err != nil {
		log.WithError(err).WithField("key", key).Error("storage encode failed")
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.backend.Write(ctx, key, data); err != nil {
		log.WithError(err).WithField("key", key).Error("storage write failed")
		return false
	}
	return true
}

func (s *Store) Remove(key string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.backend.Delete(ctx, key); err != nil && !errors.Is(err, ErrMissing) {
		log.WithError(err).WithField("key", key).Error("storage delete failed")
		return false
	}
	return true
}

// Load returns the value stored under key, or def when it is absent or unreadable.
func Load[T any](kv KV, key string, def T) T {
	var v T
	if !kv.Get(key, &v) {
		return def
	}
	return v
}

// Clear removes every application key.
func Clear(kv KV) bool {
	ok := true
	for _, key := range config.StorageKeys {
		if !kv.Remove(key) {
			ok = false
		}
	}
	return ok
}
