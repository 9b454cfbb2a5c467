package models

import (
	"slices"
	"time"
)

// ComplaintStatus is the lifecycle state of a complaint.
type ComplaintStatus string

const (
	StatusPending    ComplaintStatus = "Pending"
	StatusInProgress ComplaintStatus = "In Progress"
	StatusOnHold     ComplaintStatus = "On Hold"
	StatusResolved   ComplaintStatus = "Resolved"
)

// Statuses lists every valid status. Any status may follow any other.
var Statuses = []ComplaintStatus{StatusPending, StatusInProgress, StatusOnHold, StatusResolved}

// Valid reports whether s is one of the enumerated statuses.
func (s ComplaintStatus) Valid() bool {
	return slices.Contains(Statuses, s)
}

// Priority is the urgency a resident attaches to a complaint.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

// Priorities lists every valid priority, lowest first.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// HighPriorities is the "high or urgent" set used by dashboards and filters.
var HighPriorities = []Priority{PriorityHigh, PriorityUrgent}

func (p Priority) Valid() bool {
	return slices.Contains(Priorities, p)
}

// CategoryOther is the catch-all category.
const CategoryOther = "Other"

// GeoPoint is the optional location captured with a complaint.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Note is a staff or admin remark attached to a complaint.
type Note struct {
	// Author is the ID of the actor who wrote the note.
	Author string `json:"author"`
	// Text is the note body.
	Text string `json:"text"`
	// Timestamp is when the note was appended.
	Timestamp time.Time `json:"timestamp"`
}

// Complaint is a resident's report against a community.
type Complaint struct {
	// ID is unique within the complaint collection.
	ID string `json:"id"`
	// UserID references the resident who filed the complaint.
	UserID string `json:"userId"`
	// CommunityID references the community the complaint was filed against.
	CommunityID string `json:"communityId"`

	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Priority    Priority        `json:"priority"`
	Status      ComplaintStatus `json:"status"`

	// Location is the optional coordinate captured on submission.
	Location *GeoPoint `json:"location,omitempty"`
	// Image is an opaque reference, usually a data URL.
	Image string `json:"image,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt never decreases and advances on every mutation.
	UpdatedAt time.Time `json:"updatedAt"`

	// AssignedTo is the staff member handling the complaint; empty when unassigned.
	AssignedTo string `json:"assignedTo,omitempty"`
	// Notes keep insertion order and are never removed.
	Notes []Note `json:"notes"`
	// ResolutionProof describes how the complaint was resolved.
	ResolutionProof string `json:"resolutionProof,omitempty"`
}

// IsAssigned reports whether somebody has been assigned to the complaint.
func (c *Complaint) IsAssigned() bool {
	return c.AssignedTo != ""
}

// Clone returns a deep copy so callers cannot mutate store-owned state.
func (c Complaint) Clone() Complaint {
	if c.Location != nil {
		loc := *c.Location
		c.Location = &loc
	}
	c.Notes = slices.Clone(c.Notes)
	if c.Notes == nil {
		c.Notes = []Note{}
	}
	return c
}
