// Package community manages communities, their member sets and staff
// assignments. Every mutation is admin-only and audited.
package community

import (
	"context"
	"crypto/rand"
	"math/big"
	"slices"
	"strings"
	"sync"
	"time"

	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage"

	"github.com/apex/log"
	"github.com/lib/pq"
)

type Identity interface {
	CurrentActor(ctx context.Context) *models.User
}

type Auditor interface {
	Append(ctx context.Context, action models.AuditAction, entityType, entityID string, changes map[string]any) models.AuditLogEntry
}

// NewCommunity is the admin-supplied part of a community.
type NewCommunity struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

// Patch changes the descriptive fields of a community. Nil means unchanged.
type Patch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
}

type Service struct {
	mu    sync.Mutex
	kv    storage.KV
	ids   Identity
	audit Auditor
	now   func() time.Time
}

func NewService(kv storage.KV, ids Identity, audit Auditor) *Service {
	return &Service{kv: kv, ids: ids, audit: audit, now: time.Now}
}

func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) requireAdmin(ctx context.Context) (*models.User, error) {
	actor := s.ids.CurrentActor(ctx)
	if actor == nil {
		return nil, models.ErrUnauthenticated
	}
	if !actor.IsAdmin() {
		return nil, models.ErrForbidden
	}
	return actor, nil
}

func (s *Service) load() []models.Community {
	return storage.Load(s.kv, config.KeyCommunities, []models.Community{})
}

func (s *Service) persist(communities []models.Community) {
	if !s.kv.Set(config.KeyCommunities, communities) {
		log.Warnf("community collection (%d records) was not persisted", len(communities))
	}
}

func indexOf(communities []models.Community, id string) int {
	return slices.IndexFunc(communities, func(c models.Community) bool { return c.ID == id })
}

func notFound(id string) error {
	return models.NotFoundError{Resource: "community", ID: id}
}

// generateInviteCode draws InviteCodeLength characters from InviteCodeAlphabet.
func generateInviteCode() (string, error) {
	alphabet := config.InviteCodeAlphabet
	limit := big.NewInt(int64(len(alphabet)))

	var b strings.Builder
	b.Grow(config.InviteCodeLength)
	for i := 0; i < config.InviteCodeLength; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b.WriteByte(alphabet[n.Int64()])
	}
	return b.String(), nil
}

// Create adds a community owned by the current admin.
func (s *Service) Create(ctx context.Context, in NewCommunity) (models.Community, error) {
	actor, err := s.requireAdmin(ctx)
	if err != nil {
		return models.Community{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Location = strings.TrimSpace(in.Location)
	if in.Name == "" || in.Location == "" {
		return models.Community{}, models.ValidationError{Message: "name and location are required"}
	}

	code, err := generateInviteCode()
	if err != nil {
		return models.Community{}, err
	}

	c := models.Community{
		ID:          models.NewID("comm"),
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		Location:    in.Location,
		AdminID:     actor.ID,
		Members:     pq.StringArray{},
		CreatedAt:   s.now(),
		InviteCode:  code,
	}

	s.mu.Lock()
	s.persist(append(s.load(), c))
	s.mu.Unlock()

	s.audit.Append(ctx, models.ActionCreateCommunity, models.EntityCommunity, c.ID, map[string]any{"name": c.Name})
	log.WithField("community", c.ID).Infof("Community %q created", c.Name)
	return c.Clone(), nil
}

// Update applies p and records the before and after state.
func (s *Service) Update(ctx context.Context, id string, p Patch) (models.Community, error) {
	if _, err := s.requireAdmin(ctx); err != nil {
		return models.Community{}, err
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return models.Community{}, models.ValidationError{Field: "name", Message: "cannot be empty"}
	}
	if p.Location != nil && strings.TrimSpace(*p.Location) == "" {
		return models.Community{}, models.ValidationError{Field: "location", Message: "cannot be empty"}
	}

	s.mu.Lock()
	communities := s.load()
	i := indexOf(communities, id)
	if i < 0 {
		s.mu.Unlock()
		return models.Community{}, notFound(id)
	}
	before := communities[i].Clone()
	if p.Name != nil {
		communities[i].Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		communities[i].Description = *p.Description
	}
	if p.Location != nil {
		communities[i].Location = strings.TrimSpace(*p.Location)
	}
	after := communities[i].Clone()
	s.persist(communities)
	s.mu.Unlock()

	s.audit.Append(ctx, models.ActionUpdateCommunity, models.EntityCommunity, id, map[string]any{
		"before": before,
		"after":  after,
	})
	return after, nil
}

// Delete removes a community. Complaints filed against it are left as they are.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.requireAdmin(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	communities := s.load()
	i := indexOf(communities, id)
	if i < 0 {
		s.mu.Unlock()
		return notFound(id)
	}
	name := communities[i].Name
	s.persist(slices.Delete(communities, i, i+1))
	s.mu.Unlock()

	s.audit.Append(ctx, models.ActionDeleteCommunity, models.EntityCommunity, id, map[string]any{"name": name})
	return nil
}

func (s *Service) Get(id string) (models.Community, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	communities := s.load()
	i := indexOf(communities, id)
	if i < 0 {
		return models.Community{}, notFound(id)
	}
	return communities[i].Clone(), nil
}

func (s *Service) List() []models.Community {
	s.mu.Lock()
	communities := s.load()
	s.mu.Unlock()

	out := make([]models.Community, 0, len(communities))
	for _, c := range communities {
		out = append(out, c.Clone())
	}
	return out
}

// Name resolves a community name for display.
func (s *Service) Name(id string) string {
	c, err := s.Get(id)
	if err != nil {
		return config.UnknownCommunityName
	}
	return c.Name
}

// AddMember puts userID into the member set. It reports false without
// error when the user is already a member.
func (s *Service) AddMember(ctx context.Context, communityID, userID string) (bool, error) {
	return s.changeMembers(ctx, communityID, userID, models.ActionAddMember, func(c *models.Community) bool {
		if c.HasMember(userID) {
			return false
		}
		c.Members = append(c.Members, userID)
		return true
	})
}

// RemoveMember takes userID out of the member set. It reports false without
// error when the user is not a member.
func (s *Service) RemoveMember(ctx context.Context, communityID, userID string) (bool, error) {
	return s.changeMembers(ctx, communityID, userID, models.ActionRemoveMember, func(c *models.Community) bool {
		i := slices.Index(c.Members, userID)
		if i < 0 {
			return false
		}
		c.Members = slices.Delete(c.Members, i, i+1)
		return true
	})
}

func (s *Service) changeMembers(ctx context.Context, communityID, userID string, action models.AuditAction, apply func(*models.Community) bool) (bool, error) {
	if _, err := s.requireAdmin(ctx); err != nil {
		return false, err
	}
	if userID == "" {
		return false, models.ValidationError{Field: "userId", Message: "is required"}
	}

	s.mu.Lock()
	communities := s.load()
	i := indexOf(communities, communityID)
	if i < 0 {
		s.mu.Unlock()
		return false, notFound(communityID)
	}
	if !apply(&communities[i]) {
		s.mu.Unlock()
		return false, nil
	}
	s.persist(communities)
	s.mu.Unlock()

	s.audit.Append(ctx, action, models.EntityCommunity, communityID, map[string]any{"userId": userID})
	return true, nil
}

// IncrementComplaints bumps the advisory complaint counter. Unknown
// communities are ignored.
func (s *Service) IncrementComplaints(communityID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	communities := s.load()
	i := indexOf(communities, communityID)
	if i < 0 {
		log.WithField("community", communityID).Debug("complaint counter target not found")
		return
	}
	communities[i].TotalComplaints++
	s.persist(communities)
}
