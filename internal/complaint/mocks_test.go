package complaint_test

import (
	"context"
	"sync"
	"time"

	"complaintdesk/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockAuditor is a mock type for the complaint.Auditor interface.
type MockAuditor struct {
	mock.Mock
}

func (m *MockAuditor) Append(ctx context.Context, action models.AuditAction, entityType, entityID string, changes map[string]any) models.AuditLogEntry {
	args := m.Called(ctx, action, entityType, entityID, changes)
	if entry, ok := args.Get(0).(models.AuditLogEntry); ok {
		return entry
	}
	return models.AuditLogEntry{}
}

// MockCounter is a mock type for the complaint.CommunityCounter interface.
type MockCounter struct {
	mock.Mock
}

func (m *MockCounter) IncrementComplaints(communityID string) {
	m.Called(communityID)
}

// actorIdentity always reports the same actor.
type actorIdentity struct {
	mu   sync.Mutex
	user *models.User
}

func (a *actorIdentity) CurrentActor(context.Context) *models.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.user == nil {
		return nil
	}
	u := *a.user
	return &u
}

func (a *actorIdentity) become(u *models.User) {
	a.mu.Lock()
	a.user = u
	a.mu.Unlock()
}

// manualClock only moves when told to.
type manualClock struct {
	mu sync.Mutex
	t  time.Time
}

func newManualClock() *manualClock {
	return &manualClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func (c *manualClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}
