// Package audit keeps the append-only ledger of privileged mutations.
package audit

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage"

	"github.com/apex/log"
)

// Identity resolves the actor recorded as the entry's admin.
type Identity interface {
	CurrentActor(ctx context.Context) *models.User
}

// Filter narrows a query. Empty fields match everything.
type Filter struct {
	Action     models.AuditAction
	EntityType string
	AdminID    string
}

func (f Filter) matches(e models.AuditLogEntry) bool {
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	if f.EntityType != "" && e.EntityType != f.EntityType {
		return false
	}
	if f.AdminID != "" && e.AdminID != f.AdminID {
		return false
	}
	return true
}

type Log struct {
	mu  sync.Mutex
	kv  storage.KV
	ids Identity
	now func() time.Time
}

func NewLog(kv storage.KV, ids Identity) *Log {
	return &Log{kv: kv, ids: ids, now: time.Now}
}

func (l *Log) SetClock(now func() time.Time) {
	l.now = now
}

// Append records an entry and persists the whole log. It never fails; a
// storage problem is logged by the adapter and the entry is still returned.
func (l *Log) Append(ctx context.Context, action models.AuditAction, entityType, entityID string, changes map[string]any) models.AuditLogEntry {
	entry := models.AuditLogEntry{
		ID:         models.NewID("audit"),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Changes:    maps.Clone(changes),
		Timestamp:  l.now(),
	}
	if entry.Changes == nil {
		entry.Changes = map[string]any{}
	}
	if actor := l.ids.CurrentActor(ctx); actor != nil {
		entry.AdminID = actor.ID
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entries := storage.Load(l.kv, config.KeyAuditLogs, []models.AuditLogEntry{})
	entries = append(entries, entry)
	l.kv.Set(config.KeyAuditLogs, entries)

	log.WithFields(log.Fields{
		"action": action,
		"entity": entityType,
		"id":     entityID,
		"admin":  entry.AdminID,
	}).Debug("audit entry appended")

	return entry
}

// Query returns matching entries, newest first.
func (l *Log) Query(f Filter) []models.AuditLogEntry {
	l.mu.Lock()
	entries := storage.Load(l.kv, config.KeyAuditLogs, []models.AuditLogEntry{})
	l.mu.Unlock()

	out := make([]models.AuditLogEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if !f.matches(e) {
			continue
		}
		e.Changes = maps.Clone(e.Changes)
		out = append(out, e)
	}
	slices.SortStableFunc(out, func(a, b models.AuditLogEntry) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return out
}
