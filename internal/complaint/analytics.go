package complaint

import (
	"math"
	"slices"
	"time"

	"complaintdesk/backend/internal/models"
)

const day = 24 * time.Hour

// Analytics summarises the collection, scoped to communityID when non-empty.
func (s *Service) Analytics(communityID string) models.Analytics {
	return Summarize(s.Query(Filter{CommunityID: communityID}))
}

// Summarize computes analytics over an arbitrary set of complaints.
func Summarize(complaints []models.Complaint) models.Analytics {
	a := models.Analytics{
		TotalComplaints: len(complaints),
		ByCategory:      make(map[string]int),
	}

	var resolved int
	var resolvedFor time.Duration
	for _, c := range complaints {
		countStatus(&a.ByStatus, c.Status)
		a.ByCategory[c.Category]++
		switch c.Priority {
		case models.PriorityLow:
			a.ByPriority.Low++
		case models.PriorityMedium:
			a.ByPriority.Medium++
		case models.PriorityHigh:
			a.ByPriority.High++
		case models.PriorityUrgent:
			a.ByPriority.Urgent++
		}
		if c.Status == models.StatusResolved {
			resolved++
			resolvedFor += c.UpdatedAt.Sub(c.CreatedAt)
		}
	}

	if resolved > 0 {
		a.AvgResolutionTime = int(math.Round(float64(resolvedFor) / float64(resolved) / float64(day)))
	}
	if a.TotalComplaints > 0 {
		a.ResolutionRate = int(math.Round(float64(resolved) / float64(a.TotalComplaints) * 100))
	}
	return a
}

func countStatus(sc *models.StatusCounts, status models.ComplaintStatus) {
	switch status {
	case models.StatusPending:
		sc.Pending++
	case models.StatusInProgress:
		sc.InProgress++
	case models.StatusOnHold:
		sc.OnHold++
	case models.StatusResolved:
		sc.Resolved++
	}
}

// Stats is the dashboard summary of a resident's own complaints.
func (s *Service) Stats(userID string) models.ComplaintStats {
	var sc models.StatusCounts
	st := models.ComplaintStats{}
	for _, c := range s.ForUser(userID) {
		st.Total++
		countStatus(&sc, c.Status)
		if slices.Contains(models.HighPriorities, c.Priority) {
			st.HighPriority++
		}
	}
	st.Pending, st.InProgress, st.OnHold, st.Resolved = sc.Pending, sc.InProgress, sc.OnHold, sc.Resolved
	return st
}
