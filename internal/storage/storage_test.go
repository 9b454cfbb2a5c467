package storage_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingBackend struct{}

func (failingBackend) Read(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}
func (failingBackend) Write(context.Context, string, []byte) error {
	return errors.New("disk on fire")
}
func (failingBackend) Delete(context.Context, string) error {
	return errors.New("disk on fire")
}

func TestStore_SetGetRemove(t *testing.T) {
	kv := storage.NewMemoryStore()
	in := []models.Community{{ID: "comm_1", Name: "Oak Park", Members: []string{"user_1"}}}

	require.True(t, kv.Set(config.KeyCommunities, in))

	var out []models.Community
	require.True(t, kv.Get(config.KeyCommunities, &out))
	assert.Equal(t, "Oak Park", out[0].Name)
	assert.Equal(t, []string{"user_1"}, []string(out[0].Members))

	assert.True(t, kv.Remove(config.KeyCommunities))
	assert.False(t, kv.Get(config.KeyCommunities, &out))
	assert.True(t, kv.Remove(config.KeyCommunities), "removing an absent key succeeds")
}

func TestLoad_ReturnsDefaultWhenAbsent(t *testing.T) {
	kv := storage.NewMemoryStore()

	got := storage.Load(kv, config.KeyComplaints, []models.Complaint{})

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestLoad_ReturnsDefaultOnMalformedData(t *testing.T) {
	backend := storage.NewMemoryBackend()
	require.NoError(t, backend.Write(context.Background(), config.KeyAuditLogs, []byte("{not json")))
	kv := storage.NewStore(backend)

	def := []models.AuditLogEntry{{ID: "fallback"}}
	got := storage.Load(kv, config.KeyAuditLogs, def)

	assert.Equal(t, def, got)
}

func TestStore_BackendFailuresAreSwallowed(t *testing.T) {
	kv := storage.NewStore(failingBackend{})

	var v string
	assert.False(t, kv.Get("k", &v))
	assert.False(t, kv.Set("k", "v"))
	assert.False(t, kv.Remove("k"))
	assert.Equal(t, "default", storage.Load(kv, "k", "default"))
}

func TestStore_UnencodableValue(t *testing.T) {
	kv := storage.NewMemoryStore()

	assert.False(t, kv.Set("k", make(chan int)))
}

func TestClear_RemovesEveryKey(t *testing.T) {
	kv := storage.NewMemoryStore()
	for _, key := range config.StorageKeys {
		require.True(t, kv.Set(key, "x"))
	}

	assert.True(t, storage.Clear(kv))

	for _, key := range config.StorageKeys {
		var v string
		assert.False(t, kv.Get(key, &v), "key %s should be gone", key)
	}
}

func TestFileBackend_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "store.json")

	backend, err := storage.NewFileBackend(path)
	require.NoError(t, err)
	kv := storage.NewStore(backend)
	require.True(t, kv.Set(config.KeyInitialized, true))
	require.True(t, kv.Set(config.KeyStaff, []models.Staff{{ID: "staff_001", Name: "Mike"}}))

	_, err = os.Stat(path)
	require.NoError(t, err, "file should be written on set")

	reopened, err := storage.NewFileBackend(path)
	require.NoError(t, err)
	staff := storage.Load(storage.NewStore(reopened), config.KeyStaff, []models.Staff(nil))
	require.Len(t, staff, 1)
	assert.Equal(t, "Mike", staff[0].Name)

	require.True(t, kv.Remove(config.KeyStaff))
	reopened, err = storage.NewFileBackend(path)
	require.NoError(t, err)
	_, err = reopened.Read(context.Background(), config.KeyStaff)
	assert.ErrorIs(t, err, storage.ErrMissing)
}

func TestFileBackend_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))

	backend, err := storage.NewFileBackend(path)
	require.NoError(t, err)

	_, err = backend.Read(context.Background(), config.KeyComplaints)
	assert.ErrorIs(t, err, storage.ErrMissing)
}

func TestOpen_MemoryAndUnknown(t *testing.T) {
	kv, err := storage.Open(context.Background(), &config.Config{StorageBackend: config.BackendMemory})
	require.NoError(t, err)
	assert.NotNil(t, kv)

	_, err = storage.Open(context.Background(), &config.Config{StorageBackend: "floppy"})
	assert.Error(t, err)
}

func TestOpen_File(t *testing.T) {
	cfg := &config.Config{StorageBackend: config.BackendFile, DataFile: filepath.Join(t.TempDir(), "d.json")}

	kv, err := storage.Open(context.Background(), cfg)
	require.NoError(t, err)
	assert.True(t, kv.Set("k", 1))
}

func TestFileBackend_SeesWritesFromAnotherHandle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.json")
	server, err := storage.NewFileBackend(path)
	require.NoError(t, err)
	cli, err := storage.NewFileBackend(path)
	require.NoError(t, err)
	serverKV, cliKV := storage.NewStore(server), storage.NewStore(cli)

	require.True(t, serverKV.Set(config.KeyStaff, []models.Staff{{ID: "staff_001"}}))
	require.True(t, cliKV.Set(config.KeyComplaints, []models.Complaint{{ID: "comp_001"}}))

	complaints := storage.Load(serverKV, config.KeyComplaints, []models.Complaint{})
	require.Len(t, complaints, 1)
	assert.Equal(t, "comp_001", complaints[0].ID)
	assert.Len(t, storage.Load(cliKV, config.KeyStaff, []models.Staff{}), 1, "the second writer kept the first writer's key")
}

func TestCommunityRows_ProjectsCollection(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	data, err := json.Marshal([]models.Community{
		{ID: "comm_001", Name: "Oak Park", Location: "1 Oak Rd", AdminID: "admin_001", Members: pq.StringArray{"user_001", "user_002"}, CreatedAt: created, InviteCode: "OAKPARK1", TotalComplaints: 3},
		{ID: "comm_002", Name: "Elm Court", Location: "2 Elm St"},
	})
	require.NoError(t, err)

	rows, err := storage.CommunityRows(data)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "communities", rows[0].TableName())
	assert.Equal(t, 0, rows[0].Position)
	assert.Equal(t, 1, rows[1].Position)
	assert.Equal(t, "OAKPARK1", rows[0].InviteCode)
	assert.Equal(t, 3, rows[0].TotalComplaints)
	assert.True(t, created.Equal(rows[0].CreatedAt))

	members, err := rows[0].Members.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"user_001","user_002"}`, members, "members bind as a text[] literal")

	empty, err := rows[1].Members.Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", empty, "a community without members stores an empty array, not NULL")
}

func TestCommunityRows_RejectsMalformedCollection(t *testing.T) {
	_, err := storage.CommunityRows([]byte("{not json"))

	assert.Error(t, err)
}
