// Package complaint owns the complaint collection: submission, filtered
// queries, the staff-only lifecycle mutations and the analytics derived from it.
package complaint

import (
	"context"
	"strings"
	"sync"
	"time"

	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage"

	"github.com/apex/log"
)

// Identity resolves the actor performing an operation.
type Identity interface {
	CurrentActor(ctx context.Context) *models.User
}

// Auditor records privileged mutations.
type Auditor interface {
	Append(ctx context.Context, action models.AuditAction, entityType, entityID string, changes map[string]any) models.AuditLogEntry
}

// CommunityCounter is told when a complaint is filed against a community.
type CommunityCounter interface {
	IncrementComplaints(communityID string)
}

// NewComplaint is the resident-supplied part of a complaint.
type NewComplaint struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Priority    models.Priority  `json:"priority"`
	Location    *models.GeoPoint `json:"location"`
	Image       string           `json:"image"`
}

// Service handles the business logic for complaints. Every operation reads
// the collection through the persistence adapter and writes it back whole.
type Service struct {
	mu      sync.Mutex
	kv      storage.KV
	ids     Identity
	audit   Auditor
	counter CommunityCounter
	now     func() time.Time
}

// NewService creates a new complaint service.
func NewService(kv storage.KV, ids Identity, audit Auditor) *Service {
	return &Service{kv: kv, ids: ids, audit: audit, now: time.Now}
}

func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// SetCommunityCounter installs the optional hook bumped on every submission.
func (s *Service) SetCommunityCounter(c CommunityCounter) {
	s.counter = c
}

func (s *Service) load() []models.Complaint {
	return storage.Load(s.kv, config.KeyComplaints, []models.Complaint{})
}

func (s *Service) persist(complaints []models.Complaint) {
	if !s.kv.Set(config.KeyComplaints, complaints) {
		log.Warnf("complaint collection (%d records) was not persisted", len(complaints))
	}
}

// touch stamps complaints[i] strictly after every UpdatedAt in the
// collection, so a change feed watermarking on the newest stamp it has seen
// always picks the mutation up.
func (s *Service) touch(complaints []models.Complaint, i int) {
	now := s.now()
	for _, c := range complaints {
		if !now.After(c.UpdatedAt) {
			now = c.UpdatedAt.Add(time.Nanosecond)
		}
	}
	complaints[i].UpdatedAt = now
}

func indexOf(complaints []models.Complaint, id string) int {
	for i := range complaints {
		if complaints[i].ID == id {
			return i
		}
	}
	return -1
}

func notFound(id string) error {
	return models.NotFoundError{Resource: "complaint", ID: id}
}

// Create files a complaint for the current actor against their community.
func (s *Service) Create(ctx context.Context, in NewComplaint) (models.Complaint, error) {
	actor := s.ids.CurrentActor(ctx)
	if actor == nil {
		return models.Complaint{}, models.ErrUnauthenticated
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	switch {
	case in.Title == "":
		return models.Complaint{}, models.ValidationError{Field: "title", Message: "is required"}
	case in.Description == "":
		return models.Complaint{}, models.ValidationError{Field: "description", Message: "is required"}
	case in.Category == "":
		return models.Complaint{}, models.ValidationError{Field: "category", Message: "is required"}
	}

	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !in.Priority.Valid() {
		return models.Complaint{}, models.ValidationError{Field: "priority", Message: "unknown priority " + string(in.Priority)}
	}
	if in.Image != "" {
		if err := ValidateImage(in.Image); err != nil {
			return models.Complaint{}, err
		}
	}

	now := s.now()
	c := models.Complaint{
		ID:          models.NewID("comp"),
		UserID:      actor.ID,
		CommunityID: actor.CommunityID,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Priority:    in.Priority,
		Status:      models.StatusPending,
		Location:    in.Location,
		Image:       in.Image,
		CreatedAt:   now,
		UpdatedAt:   now,
		Notes:       []models.Note{},
	}

	s.mu.Lock()
	complaints := append(s.load(), c)
	s.persist(complaints)
	s.mu.Unlock()

	if s.counter != nil && c.CommunityID != "" {
		s.counter.IncrementComplaints(c.CommunityID)
	}

	log.WithFields(log.Fields{
		"complaint": c.ID,
		"user":      c.UserID,
		"community": c.CommunityID,
	}).Info("complaint submitted")
	return c.Clone(), nil
}

// Get returns a single complaint.
func (s *Service) Get(id string) (models.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	complaints := s.load()
	i := indexOf(complaints, id)
	if i < 0 {
		return models.Complaint{}, notFound(id)
	}
	return complaints[i].Clone(), nil
}

// mutate applies a staff-only change to one complaint, advances its
// UpdatedAt, persists the collection and appends an audit entry.
func (s *Service) mutate(ctx context.Context, id string, action models.AuditAction,
	apply func(actor *models.User, c *models.Complaint) map[string]any) (models.Complaint, error) {
	actor := s.ids.CurrentActor(ctx)
	if actor == nil {
		return models.Complaint{}, models.ErrUnauthenticated
	}
	if !actor.IsStaff() {
		return models.Complaint{}, models.ErrForbidden
	}

	s.mu.Lock()
	complaints := s.load()
	i := indexOf(complaints, id)
	if i < 0 {
		s.mu.Unlock()
		return models.Complaint{}, notFound(id)
	}
	changes := apply(actor, &complaints[i])
	s.touch(complaints, i)
	s.persist(complaints)
	updated := complaints[i].Clone()
	s.mu.Unlock()

	s.audit.Append(ctx, action, models.EntityComplaint, id, changes)
	return updated, nil
}

// TransitionStatus moves a complaint to any enumerated status.
func (s *Service) TransitionStatus(ctx context.Context, id string, status models.ComplaintStatus) (models.Complaint, error) {
	if !status.Valid() {
		return models.Complaint{}, models.ValidationError{Field: "status", Message: "unknown status " + string(status)}
	}
	return s.mutate(ctx, id, models.ActionUpdateStatus, func(_ *models.User, c *models.Complaint) map[string]any {
		from := c.Status
		c.Status = status
		return map[string]any{"from": string(from), "to": string(status)}
	})
}

// Assign overwrites the assignee. An empty assigneeID unassigns.
func (s *Service) Assign(ctx context.Context, id, assigneeID string) (models.Complaint, error) {
	return s.mutate(ctx, id, models.ActionAssignComplaint, func(_ *models.User, c *models.Complaint) map[string]any {
		from := c.AssignedTo
		c.AssignedTo = assigneeID
		return map[string]any{"from": from, "to": assigneeID}
	})
}

// AppendNote adds a note authored by the current actor.
func (s *Service) AppendNote(ctx context.Context, id, text string) (models.Complaint, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Complaint{}, models.ValidationError{Field: "text", Message: "is required"}
	}
	return s.mutate(ctx, id, models.ActionAddNote, func(actor *models.User, c *models.Complaint) map[string]any {
		c.Notes = append(c.Notes, models.Note{Author: actor.ID, Text: text, Timestamp: s.now()})
		return map[string]any{"noteAuthor": actor.Name}
	})
}

// AttachResolutionProof overwrites the resolution proof.
func (s *Service) AttachResolutionProof(ctx context.Context, id, proof string) (models.Complaint, error) {
	proof = strings.TrimSpace(proof)
	if proof == "" {
		return models.Complaint{}, models.ValidationError{Field: "proof", Message: "is required"}
	}
	return s.mutate(ctx, id, models.ActionAddResolutionProof, func(_ *models.User, c *models.Complaint) map[string]any {
		c.ResolutionProof = proof
		return map[string]any{}
	})
}
