package complaint

import (
	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/models"
)

// View is a complaint with the derived fields dashboards render.
type View struct {
	models.Complaint
	CategoryBadge string `json:"categoryBadge"`
	PriorityBadge string `json:"priorityBadge"`
	StatusBadge   string `json:"statusBadge"`
	Progress      int    `json:"progress"`
}

func badge(table map[string]string, key string) string {
	if b, ok := table[key]; ok {
		return b
	}
	return config.DefaultBadge
}

func Display(c models.Complaint) View {
	return View{
		Complaint:     c,
		CategoryBadge: badge(config.CategoryBadges, c.Category),
		PriorityBadge: badge(config.PriorityBadges, string(c.Priority)),
		StatusBadge:   badge(config.StatusBadges, string(c.Status)),
		Progress:      config.StatusProgress[string(c.Status)],
	}
}

// DisplayAll maps Display over a list.
func DisplayAll(complaints []models.Complaint) []View {
	out := make([]View, 0, len(complaints))
	for _, c := range complaints {
		out = append(out, Display(c))
	}
	return out
}
