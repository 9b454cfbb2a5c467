package models

// StatusCounts counts complaints per status.
type StatusCounts struct {
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	OnHold     int `json:"onHold"`
	Resolved   int `json:"resolved"`
}

// PriorityCounts counts complaints per priority.
type PriorityCounts struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
	Urgent int `json:"urgent"`
}

// Analytics summarises a (possibly community-scoped) complaint collection.
type Analytics struct {
	TotalComplaints int            `json:"totalComplaints"`
	ByStatus        StatusCounts   `json:"byStatus"`
	ByCategory      map[string]int `json:"byCategory"`
	ByPriority      PriorityCounts `json:"byPriority"`
	// AvgResolutionTime is in whole days, over resolved complaints only.
	AvgResolutionTime int `json:"avgResolutionTime"`
	// ResolutionRate is a rounded percentage; 0 for an empty collection.
	ResolutionRate int `json:"resolutionRate"`
}

// ComplaintStats is the per-resident dashboard summary.
type ComplaintStats struct {
	Total        int `json:"total"`
	Pending      int `json:"pending"`
	InProgress   int `json:"inProgress"`
	OnHold       int `json:"onHold"`
	Resolved     int `json:"resolved"`
	HighPriority int `json:"highPriority"`
}
