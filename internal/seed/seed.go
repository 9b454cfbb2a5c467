// Package seed writes the demo communities, complaints, staff, users and
// audit history on first start.
package seed

import (
	"errors"
	"fmt"
	"time"

	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/session"
	"complaintdesk/backend/internal/storage"

	"github.com/apex/log"
	"github.com/lib/pq"
)

const day = 24 * time.Hour

type demoUser struct {
	user     models.User
	password string
}

func users(now time.Time) []demoUser {
	return []demoUser{
		{user: models.User{ID: "user_001", Name: "John Doe", Email: "john@example.com", Phone: "+1-555-0101",
			Role: models.RoleUser, CommunityID: "comm_001", CreatedAt: now.Add(-30 * day), Verified: true}, password: "password123"},
		{user: models.User{ID: "user_002", Name: "Jane Smith", Email: "jane@example.com", Phone: "+1-555-0102",
			Role: models.RoleUser, CommunityID: "comm_001", CreatedAt: now.Add(-15 * day), Verified: true}, password: "password123"},
		{user: models.User{ID: "staff_001", Name: "Mike Johnson", Email: "mike@admin.com", Phone: "+1-555-0201",
			Role: models.RoleStaff, CommunityID: "comm_001", CreatedAt: now.Add(-60 * day), Verified: true}, password: "staffpass123"},
		{user: models.User{ID: "admin_001", Name: "Admin User", Email: "admin@smartcomplaint.com", Phone: "+1-555-9999",
			Role: models.RoleAdmin, CreatedAt: now.Add(-90 * day), Verified: true}, password: "admin123456"},
	}
}

func communities(now time.Time) []models.Community {
	return []models.Community{
		{
			ID:              "comm_001",
			Name:            "Green Valley Apartments",
			Description:     "Modern residential community with 500+ units",
			Location:        "123 Main St, Springfield",
			AdminID:         "admin_001",
			Members:         pq.StringArray{"user_001", "user_002", "staff_001"},
			CreatedAt:       now.Add(-180 * day),
			InviteCode:      "gva-2024-001",
			TotalComplaints: 24,
		},
		{
			ID:          "comm_002",
			Name:        "Sunrise Complex",
			Description: "Mixed-use development with offices and residences",
			Location:    "456 Oak Ave, Springfield",
			AdminID:     "admin_001",
			Members:     pq.StringArray{},
			CreatedAt:   now.Add(-120 * day),
			InviteCode:  "sunrise-2024-001",
		},
	}
}

func complaints(now time.Time) []models.Complaint {
	return []models.Complaint{
		{
			ID:          "comp_001",
			UserID:      "user_001",
			CommunityID: "comm_001",
			Title:       "Broken water pipeline in Block A",
			Description: "Water is leaking from the main pipeline near building A2. Urgent repair needed.",
			Category:    "Utilities",
			Priority:    models.PriorityHigh,
			Status:      models.StatusInProgress,
			Location:    &models.GeoPoint{Lat: 40.7128, Lng: -74.0060},
			CreatedAt:   now.Add(-5 * day),
			UpdatedAt:   now.Add(-1 * day),
			AssignedTo:  "staff_001",
			Notes: []models.Note{
				{Author: "staff_001", Text: "Inspection scheduled for tomorrow", Timestamp: now.Add(-1 * day)},
			},
		},
		{
			ID:          "comp_002",
			UserID:      "user_002",
			CommunityID: "comm_001",
			Title:       "Graffiti on common wall",
			Description: "Graffiti found on the wall near the main entrance. Needs cleaning.",
			Category:    "Cleanliness",
			Priority:    models.PriorityMedium,
			Status:      models.StatusPending,
			Location:    &models.GeoPoint{Lat: 40.7120, Lng: -74.0065},
			CreatedAt:   now.Add(-2 * day),
			UpdatedAt:   now.Add(-2 * day),
			Notes:       []models.Note{},
		},
		{
			ID:          "comp_003",
			UserID:      "user_001",
			CommunityID: "comm_001",
			Title:       "Faulty street light",
			Description: "Street light near parking lot C is not working. Safety concern.",
			Category:    "Infrastructure",
			Priority:    models.PriorityHigh,
			Status:      models.StatusResolved,
			Location:    &models.GeoPoint{Lat: 40.7130, Lng: -74.0055},
			CreatedAt:   now.Add(-15 * day),
			UpdatedAt:   now.Add(-3 * day),
			AssignedTo:  "staff_001",
			Notes: []models.Note{
				{Author: "staff_001", Text: "Maintenance team replaced bulb and fixture", Timestamp: now.Add(-3 * day)},
			},
			ResolutionProof: "Light replaced and tested successfully",
		},
		{
			ID:          "comp_004",
			UserID:      "user_002",
			CommunityID: "comm_001",
			Title:       "Excessive noise from construction",
			Description: "Ongoing construction noise before 7 AM violates community rules.",
			Category:    "Noise",
			Priority:    models.PriorityMedium,
			Status:      models.StatusOnHold,
			Location:    &models.GeoPoint{Lat: 40.7125, Lng: -74.0062},
			CreatedAt:   now.Add(-10 * day),
			UpdatedAt:   now.Add(-5 * day),
			Notes: []models.Note{
				{Author: "admin_001", Text: "Awaiting construction company response", Timestamp: now.Add(-5 * day)},
			},
		},
	}
}

func auditLogs(now time.Time) []models.AuditLogEntry {
	return []models.AuditLogEntry{
		{
			ID:         "audit_001",
			AdminID:    "admin_001",
			Action:     models.ActionCreateCommunity,
			EntityType: models.EntityCommunity,
			EntityID:   "comm_001",
			Changes:    map[string]any{"name": "Green Valley Apartments"},
			Timestamp:  now.Add(-180 * day),
		},
		{
			ID:         "audit_002",
			AdminID:    "admin_001",
			Action:     models.ActionAssignComplaint,
			EntityType: models.EntityComplaint,
			EntityID:   "comp_001",
			Changes:    map[string]any{"from": "", "to": "staff_001"},
			Timestamp:  now.Add(-5 * day),
		},
	}
}

// Initialized reports whether demo data has already been written.
func Initialized(kv storage.KV) bool {
	return storage.Load(kv, config.KeyInitialized, false)
}

// Demo writes the demo data unless the store is already initialized. It
// reports whether anything was written.
func Demo(kv storage.KV, dir *session.Directory, now time.Time) (bool, error) {
	if Initialized(kv) {
		return false, nil
	}

	for _, du := range users(now) {
		if _, err := dir.Add(du.user, du.password); err != nil && !errors.Is(err, models.ErrEmailTaken) {
			return false, fmt.Errorf("seed user %s: %w", du.user.ID, err)
		}
	}

	var staff []models.Staff
	for _, du := range users(now) {
		if du.user.Role == models.RoleStaff {
			staff = append(staff, models.Staff{
				ID:          du.user.ID,
				Name:        du.user.Name,
				Email:       du.user.Email,
				Phone:       du.user.Phone,
				CommunityID: du.user.CommunityID,
			})
		}
	}

	writes := []struct {
		key   string
		value any
	}{
		{config.KeyCommunities, communities(now)},
		{config.KeyComplaints, complaints(now)},
		{config.KeyStaff, staff},
		{config.KeyAuditLogs, auditLogs(now)},
		{config.KeyInitialized, true},
	}
	for _, w := range writes {
		if !kv.Set(w.key, w.value) {
			return false, fmt.Errorf("seed %s: storage write failed", w.key)
		}
	}

	log.Info("Demo data initialized")
	return true, nil
}

// Reset clears every application key and writes the demo data again.
func Reset(kv storage.KV, dir *session.Directory, now time.Time) error {
	if !storage.Clear(kv) {
		return errors.New("seed: could not clear storage")
	}
	_, err := Demo(kv, dir, now)
	return err
}
