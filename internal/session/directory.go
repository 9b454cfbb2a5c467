// Package session is the identity collaborator: a user directory with salted
// bcrypt credentials, signed session tokens, and the current-actor role gate.
package session

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage"

	"github.com/apex/log"
	"golang.org/x/crypto/bcrypt"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RegisterInput is what a resident supplies to sign up.
type RegisterInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Phone       string `json:"phone"`
	CommunityID string `json:"communityId"`
}

// Directory owns the persisted user accounts.
type Directory struct {
	mu   sync.Mutex
	kv   storage.KV
	now  func() time.Time
	cost int
}

func NewDirectory(kv storage.KV) *Directory {
	return &Directory{kv: kv, now: time.Now, cost: bcrypt.DefaultCost}
}

// SetHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (d *Directory) SetHashCost(cost int) {
	d.cost = cost
}

func (d *Directory) load() []models.User {
	return storage.Load(d.kv, config.KeyAllUsers, []models.User{})
}

// Register validates the input and creates a resident account.
func (d *Directory) Register(in RegisterInput) (models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if in.Name == "" || in.Email == "" || in.Password == "" {
		return models.User{}, models.ValidationError{Message: "all fields are required"}
	}
	if len(in.Password) < config.MinPasswordLength {
		return models.User{}, models.ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("must be at least %d characters", config.MinPasswordLength),
		}
	}
	if !emailPattern.MatchString(in.Email) {
		return models.User{}, models.ValidationError{Field: "email", Message: "invalid email format"}
	}

	return d.Add(models.User{
		Name:        in.Name,
		Email:       in.Email,
		Phone:       in.Phone,
		Role:        models.RoleUser,
		CommunityID: in.CommunityID,
	}, in.Password)
}

// Add stores u with a freshly hashed password. It fills ID and CreatedAt when
// unset and refuses duplicate emails.
func (d *Directory) Add(u models.User, password string) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), d.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	users := d.load()
	for _, existing := range users {
		if strings.EqualFold(existing.Email, u.Email) {
			return models.User{}, models.ErrEmailTaken
		}
	}

	if u.ID == "" {
		u.ID = models.NewID("user")
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = d.now()
	}
	u.PasswordHash = string(hash)

	users = append(users, u)
	if !d.kv.Set(config.KeyAllUsers, users) {
		log.WithField("user", u.ID).Warn("user directory was not persisted")
	}
	return u.Public(), nil
}

// Authenticate checks credentials. Unknown emails and wrong passwords fail the same way.
func (d *Directory) Authenticate(email, password string) (models.User, error) {
	if email == "" || password == "" {
		return models.User{}, models.ValidationError{Message: "email and password are required"}
	}

	d.mu.Lock()
	users := d.load()
	d.mu.Unlock()

	for _, u := range users {
		if !strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
			return models.User{}, models.ErrInvalidCredentials
		}
		return u.Public(), nil
	}
	return models.User{}, models.ErrInvalidCredentials
}

// Get returns the public view of a user.
func (d *Directory) Get(id string) (models.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, u := range d.load() {
		if u.ID == id {
			return u.Public(), nil
		}
	}
	return models.User{}, models.NotFoundError{Resource: "user", ID: id}
}

// List returns every user without credentials.
func (d *Directory) List() []models.User {
	d.mu.Lock()
	defer d.mu.Unlock()

	users := d.load()
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out
}

// ProfileUpdate holds the profile fields a user may change. Nil means unchanged.
type ProfileUpdate struct {
	Name        *string `json:"name"`
	Phone       *string `json:"phone"`
	CommunityID *string `json:"communityId"`
}

func (p ProfileUpdate) apply(u *models.User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.CommunityID != nil {
		u.CommunityID = *p.CommunityID
	}
}

// UpdateProfile merges p into the stored user and returns the public result.
func (d *Directory) UpdateProfile(id string, p ProfileUpdate) (models.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	users := d.load()
	for i := range users {
		if users[i].ID != id {
			continue
		}
		p.apply(&users[i])
		if !d.kv.Set(config.KeyAllUsers, users) {
			log.WithField("user", id).Warn("profile update was not persisted")
		}
		return users[i].Public(), nil
	}
	return models.User{}, models.NotFoundError{Resource: "user", ID: id}
}
