package community

import (
	"context"
	"slices"

	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage"

	"github.com/apex/log"
)

func (s *Service) loadStaff() []models.Staff {
	return storage.Load(s.kv, config.KeyStaff, []models.Staff{})
}

// Staff lists every staff member.
func (s *Service) Staff() []models.Staff {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadStaff()
}

// StaffForCommunity lists the staff assigned to communityID.
func (s *Service) StaffForCommunity(communityID string) []models.Staff {
	out := []models.Staff{}
	for _, st := range s.Staff() {
		if st.CommunityID == communityID {
			out = append(out, st)
		}
	}
	return out
}

// AssignStaff moves a staff member to communityID. An empty communityID unassigns.
func (s *Service) AssignStaff(ctx context.Context, staffID, communityID string) (models.Staff, error) {
	if _, err := s.requireAdmin(ctx); err != nil {
		return models.Staff{}, err
	}

	s.mu.Lock()
	staff := s.loadStaff()
	i := slices.IndexFunc(staff, func(st models.Staff) bool { return st.ID == staffID })
	if i < 0 {
		s.mu.Unlock()
		return models.Staff{}, models.NotFoundError{Resource: "staff", ID: staffID}
	}
	staff[i].CommunityID = communityID
	if !s.kv.Set(config.KeyStaff, staff) {
		log.WithField("staff", staffID).Warn("staff assignment was not persisted")
	}
	updated := staff[i]
	s.mu.Unlock()

	s.audit.Append(ctx, models.ActionAssignStaff, models.EntityStaff, staffID, map[string]any{"communityId": communityID})
	return updated, nil
}
