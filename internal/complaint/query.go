package complaint

import (
	"slices"
	"time"

	"complaintdesk/backend/internal/models"
)

// Filter is a set of optional predicates combined with AND. Zero values match everything.
type Filter struct {
	UserID       string
	Status       models.ComplaintStatus
	Category     string
	Priority     models.Priority
	HighPriority bool
	CommunityID  string
	AssignedTo   string
	Unassigned   bool
	// DateFrom and DateTo bound CreatedAt inclusively.
	DateFrom time.Time
	DateTo   time.Time
}

func (f Filter) matches(c *models.Complaint) bool {
	switch {
	case f.UserID != "" && c.UserID != f.UserID:
		return false
	case f.Status != "" && c.Status != f.Status:
		return false
	case f.Category != "" && c.Category != f.Category:
		return false
	case f.Priority != "" && c.Priority != f.Priority:
		return false
	case f.HighPriority && !slices.Contains(models.HighPriorities, c.Priority):
		return false
	case f.CommunityID != "" && c.CommunityID != f.CommunityID:
		return false
	case f.AssignedTo != "" && c.AssignedTo != f.AssignedTo:
		return false
	case f.Unassigned && c.IsAssigned():
		return false
	case !f.DateFrom.IsZero() && c.CreatedAt.Before(f.DateFrom):
		return false
	case !f.DateTo.IsZero() && c.CreatedAt.After(f.DateTo):
		return false
	}
	return true
}

// Query returns every complaint matching f, newest first.
func (s *Service) Query(f Filter) []models.Complaint {
	s.mu.Lock()
	complaints := s.load()
	s.mu.Unlock()

	out := make([]models.Complaint, 0, len(complaints))
	for i := range complaints {
		if f.matches(&complaints[i]) {
			out = append(out, complaints[i].Clone())
		}
	}
	slices.SortStableFunc(out, func(a, b models.Complaint) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

// ForUser lists a resident's own complaints, newest first.
func (s *Service) ForUser(userID string) []models.Complaint {
	return s.Query(Filter{UserID: userID})
}
