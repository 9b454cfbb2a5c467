package session_test

import (
	"context"
	"testing"
	"time"

	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/session"
	"complaintdesk/backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newSession(t *testing.T) (*session.Session, *session.Directory, storage.KV) {
	t.Helper()
	kv := storage.NewMemoryStore()
	dir := session.NewDirectory(kv)
	dir.SetHashCost(bcrypt.MinCost)
	return session.New(kv, dir, session.NewIssuer("test-secret", time.Hour)), dir, kv
}

func validInput() session.RegisterInput {
	return session.RegisterInput{Name: "Jane Resident", Email: "Jane@Example.com", Password: "password123"}
}

func TestRegister_CreatesResidentAndLogsIn(t *testing.T) {
	// Arrange
	s, _, kv := newSession(t)

	// Act
	u, err := s.Register(validInput())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.Equal(t, "jane@example.com", u.Email)
	assert.Empty(t, u.PasswordHash)
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, u.ID, s.CurrentActor(context.Background()).ID)

	stored := storage.Load(kv, config.KeyAllUsers, []models.User{})
	require.Len(t, stored, 1)
	assert.NotEmpty(t, stored[0].PasswordHash, "directory keeps the hash")
	assert.NotEqual(t, "password123", stored[0].PasswordHash)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*session.RegisterInput)
	}{
		{name: "missing name", mutate: func(in *session.RegisterInput) { in.Name = " " }},
		{name: "missing email", mutate: func(in *session.RegisterInput) { in.Email = "" }},
		{name: "missing password", mutate: func(in *session.RegisterInput) { in.Password = "" }},
		{name: "short password", mutate: func(in *session.RegisterInput) { in.Password = "short" }},
		{name: "bad email", mutate: func(in *session.RegisterInput) { in.Email = "not-an-email" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := newSession(t)
			in := validInput()
			tt.mutate(&in)

			_, err := s.Register(in)

			assert.ErrorIs(t, err, models.ErrValidation)
			assert.False(t, s.IsAuthenticated())
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s, _, _ := newSession(t)
	_, err := s.Register(validInput())
	require.NoError(t, err)

	in := validInput()
	in.Email = "JANE@example.com"
	_, err = s.Register(in)

	assert.ErrorIs(t, err, models.ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	s, dir, _ := newSession(t)
	_, err := dir.Add(models.User{Name: "Admin", Email: "admin@smartcomplaint.com", Role: models.RoleAdmin}, "admin123456")
	require.NoError(t, err)

	_, err = s.Login("admin@smartcomplaint.com", "wrong-password")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = s.Login("nobody@smartcomplaint.com", "admin123456")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = s.Login("", "")
	assert.ErrorIs(t, err, models.ErrValidation)

	u, err := s.Login("admin@smartcomplaint.com", "admin123456")
	require.NoError(t, err)
	assert.True(t, s.IsAdmin(context.Background()))
	assert.True(t, s.IsStaff(context.Background()))
	assert.Equal(t, "Admin", u.Name)
}

func TestLogoutAndRestore(t *testing.T) {
	s, dir, kv := newSession(t)
	_, err := s.Register(validInput())
	require.NoError(t, err)

	// A fresh process over the same storage picks the session back up.
	restored := session.New(kv, dir, session.NewIssuer("test-secret", time.Hour))
	assert.True(t, restored.Restore())
	assert.True(t, restored.IsAuthenticated())

	s.Logout()
	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.CurrentActor(context.Background()))
	assert.Empty(t, s.Token())

	again := session.New(kv, dir, session.NewIssuer("test-secret", time.Hour))
	assert.False(t, again.Restore())
}

func TestRestore_RejectsForeignToken(t *testing.T) {
	s, dir, kv := newSession(t)
	_, err := s.Register(validInput())
	require.NoError(t, err)

	other := session.New(kv, dir, session.NewIssuer("another-secret", time.Hour))

	assert.False(t, other.Restore())
	assert.False(t, other.IsAuthenticated())
}

func TestCurrentActor_ContextWins(t *testing.T) {
	s, _, _ := newSession(t)
	_, err := s.Register(validInput())
	require.NoError(t, err)

	ctx := session.WithActor(context.Background(), models.User{ID: "staff_001", Role: models.RoleStaff})

	assert.Equal(t, "staff_001", s.CurrentActor(ctx).ID)
	assert.True(t, s.IsStaff(ctx))
	assert.False(t, s.IsStaff(context.Background()), "session actor is a resident")
	assert.Nil(t, session.ActorFromContext(context.Background()))
}

func TestUpdateProfile(t *testing.T) {
	s, dir, _ := newSession(t)
	u, err := s.Register(validInput())
	require.NoError(t, err)

	phone := "555-0100"
	updated, err := s.UpdateProfile(context.Background(), session.ProfileUpdate{Phone: &phone})

	require.NoError(t, err)
	assert.Equal(t, "555-0100", updated.Phone)
	assert.Equal(t, "Jane Resident", updated.Name)
	assert.Equal(t, "555-0100", s.CurrentActor(context.Background()).Phone)

	stored, err := dir.Get(u.ID)
	require.NoError(t, err)
	assert.Equal(t, "555-0100", stored.Phone)

	s.Logout()
	_, err = s.UpdateProfile(context.Background(), session.ProfileUpdate{Phone: &phone})
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
}

func TestIssuer_RoundtripAndExpiry(t *testing.T) {
	issuer := session.NewIssuer("secret", time.Minute)
	u := models.User{ID: "user_1", Email: "a@b.co", Role: models.RoleStaff}

	token, err := issuer.Issue(u)
	require.NoError(t, err)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user_1", claims.UserID)
	assert.Equal(t, models.RoleStaff, claims.Role)

	_, err = session.NewIssuer("other", time.Minute).Parse(token)
	assert.Error(t, err)

	expired := session.NewIssuer("secret", time.Nanosecond)
	stale, err := expired.Issue(u)
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)
	_, err = expired.Parse(stale)
	assert.Error(t, err)
}
