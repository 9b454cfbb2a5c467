package audit_test

import (
	"context"
	"testing"
	"time"

	"complaintdesk/backend/internal/audit"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedActor struct{ user *models.User }

func (f fixedActor) CurrentActor(context.Context) *models.User { return f.user }

type stepClock struct{ t time.Time }

func (c *stepClock) now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func newLog(actor *models.User) *audit.Log {
	l := audit.NewLog(storage.NewMemoryStore(), fixedActor{user: actor})
	clock := &stepClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l.SetClock(clock.now)
	return l
}

func TestAppend_RecordsActorAndPersists(t *testing.T) {
	// Arrange
	kv := storage.NewMemoryStore()
	l := audit.NewLog(kv, fixedActor{user: &models.User{ID: "admin_001", Role: models.RoleAdmin}})

	// Act
	entry := l.Append(context.Background(), models.ActionUpdateStatus, models.EntityComplaint, "comp_001",
		map[string]any{"from": "Pending", "to": "Resolved"})

	// Assert
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "admin_001", entry.AdminID)
	assert.False(t, entry.Timestamp.IsZero())

	reopened := audit.NewLog(kv, fixedActor{})
	got := reopened.Query(audit.Filter{})
	require.Len(t, got, 1)
	assert.Equal(t, entry.ID, got[0].ID)
	assert.Equal(t, "Resolved", got[0].Changes["to"])
}

func TestAppend_WithoutActorStillSucceeds(t *testing.T) {
	l := newLog(nil)

	entry := l.Append(context.Background(), models.ActionAddNote, models.EntityComplaint, "comp_1", nil)

	assert.Empty(t, entry.AdminID)
	assert.NotNil(t, entry.Changes)
	assert.Len(t, l.Query(audit.Filter{}), 1)
}

func TestQuery_FiltersAreConjunctiveAndNewestFirst(t *testing.T) {
	l := newLog(&models.User{ID: "admin_001"})
	ctx := context.Background()

	first := l.Append(ctx, models.ActionUpdateStatus, models.EntityComplaint, "comp_1", nil)
	l.Append(ctx, models.ActionCreateCommunity, models.EntityCommunity, "comm_1", nil)
	third := l.Append(ctx, models.ActionUpdateStatus, models.EntityComplaint, "comp_2", nil)

	all := l.Query(audit.Filter{})
	require.Len(t, all, 3)
	assert.Equal(t, third.ID, all[0].ID)
	assert.Equal(t, first.ID, all[2].ID)

	status := l.Query(audit.Filter{Action: models.ActionUpdateStatus, EntityType: models.EntityComplaint})
	require.Len(t, status, 2)
	assert.Equal(t, third.ID, status[0].ID)

	assert.Empty(t, l.Query(audit.Filter{Action: models.ActionUpdateStatus, EntityType: models.EntityCommunity}))
	assert.Empty(t, l.Query(audit.Filter{AdminID: "someone_else"}))
	assert.Len(t, l.Query(audit.Filter{AdminID: "admin_001"}), 3)
}

func TestQuery_EntriesAreNeverMutated(t *testing.T) {
	l := newLog(&models.User{ID: "admin_001"})
	ctx := context.Background()
	l.Append(ctx, models.ActionAssignComplaint, models.EntityComplaint, "comp_1", map[string]any{"to": "staff_001"})

	before := l.Query(audit.Filter{})
	before[0].Changes["to"] = "tampered"

	l.Append(ctx, models.ActionAddNote, models.EntityComplaint, "comp_2", nil)
	after := l.Query(audit.Filter{})

	require.Len(t, after, 2)
	assert.Equal(t, "staff_001", after[1].Changes["to"])
	assert.Equal(t, before[0].ID, after[1].ID)
	assert.Equal(t, before[0].Timestamp, after[1].Timestamp)
}
