package session

import (
	"context"
	"sync"

	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage"

	"github.com/apex/log"
)

type actorKey struct{}

// WithActor attaches the authenticated actor to ctx.
func WithActor(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, actorKey{}, u)
}

// ActorFromContext returns the actor attached by WithActor, or nil.
func ActorFromContext(ctx context.Context) *models.User {
	if ctx == nil {
		return nil
	}
	if u, ok := ctx.Value(actorKey{}).(models.User); ok {
		return &u
	}
	return nil
}

// Session holds the current actor of a single-user process (CLI, demo tab).
// An actor found in the request context always wins over the session's own.
type Session struct {
	mu      sync.RWMutex
	kv      storage.KV
	dir     *Directory
	issuer  *Issuer
	current *models.User
}

func New(kv storage.KV, dir *Directory, issuer *Issuer) *Session {
	return &Session{kv: kv, dir: dir, issuer: issuer}
}

// Restore rehydrates the session from storage. It requires both a stored
// user and a valid, unexpired token.
func (s *Session) Restore() bool {
	token := storage.Load(s.kv, config.KeyAuthToken, "")
	user := storage.Load[*models.User](s.kv, config.KeyUser, nil)
	if token == "" || user == nil {
		return false
	}
	claims, err := s.issuer.Parse(token)
	if err != nil {
		log.WithError(err).Warn("stored session is no longer valid")
		return false
	}
	if claims.UserID != user.ID {
		log.WithField("user", user.ID).Warn("stored token belongs to another user")
		return false
	}

	s.mu.Lock()
	s.current = user
	s.mu.Unlock()
	log.Infof("Session restored: %s", user.Name)
	return true
}

// Register signs a resident up and logs them in.
func (s *Session) Register(in RegisterInput) (models.User, error) {
	u, err := s.dir.Register(in)
	if err != nil {
		return models.User{}, err
	}
	if err := s.start(u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// Login authenticates and starts a session.
func (s *Session) Login(email, password string) (models.User, error) {
	u, err := s.dir.Authenticate(email, password)
	if err != nil {
		return models.User{}, err
	}
	if err := s.start(u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (s *Session) start(u models.User) error {
	token, err := s.issuer.Issue(u)
	if err != nil {
		return err
	}
	u = u.Public()
	s.kv.Set(config.KeyAuthToken, token)
	s.kv.Set(config.KeyUser, u)

	s.mu.Lock()
	s.current = &u
	s.mu.Unlock()
	log.Infof("Session created for %s", u.Name)
	return nil
}

// Logout clears the session and its stored token.
func (s *Session) Logout() {
	s.kv.Remove(config.KeyAuthToken)
	s.kv.Remove(config.KeyUser)

	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

// Token returns the stored session token, or "".
func (s *Session) Token() string {
	return storage.Load(s.kv, config.KeyAuthToken, "")
}

// CurrentActor returns the context actor if present, else the session's.
func (s *Session) CurrentActor(ctx context.Context) *models.User {
	if u := ActorFromContext(ctx); u != nil {
		return u
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	u := *s.current
	return &u
}

// IsAuthenticated requires a non-empty token and a resolved actor.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	hasActor := s.current != nil
	s.mu.RUnlock()
	return hasActor && s.Token() != ""
}

func (s *Session) HasRole(ctx context.Context, roles ...models.Role) bool {
	return s.CurrentActor(ctx).HasRole(roles...)
}

func (s *Session) IsAdmin(ctx context.Context) bool {
	return s.CurrentActor(ctx).IsAdmin()
}

func (s *Session) IsStaff(ctx context.Context) bool {
	return s.CurrentActor(ctx).IsStaff()
}

// UpdateProfile changes the current actor's profile in the directory and session.
func (s *Session) UpdateProfile(ctx context.Context, p ProfileUpdate) (models.User, error) {
	actor := s.CurrentActor(ctx)
	if actor == nil {
		return models.User{}, models.ErrUnauthenticated
	}
	u, err := s.dir.UpdateProfile(actor.ID, p)
	if err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	if s.current != nil && s.current.ID == u.ID {
		s.current = &u
		s.kv.Set(config.KeyUser, u)
	}
	s.mu.Unlock()
	return u, nil
}
