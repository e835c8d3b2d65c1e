package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyhaven/keyhaven/internal/logger"
	"github.com/keyhaven/keyhaven/internal/push"
	"github.com/keyhaven/keyhaven/internal/store"
	"github.com/keyhaven/keyhaven/models"
)

// ─────────────────────────────────────────────
// Mock Relay
// ─────────────────────────────────────────────

// mockRelay records notifications. Notify runs on a detached goroutine, so
// recording is guarded and tests that care wait on the signal channel.
type mockRelay struct {
	mu     sync.Mutex
	events []int
	fired  chan struct{}
}

func newMockRelay() *mockRelay {
	return &mockRelay{fired: make(chan struct{}, 16)}
}

func (m *mockRelay) Register(context.Context, string, models.Device) (string, error) {
	return "push-id", nil
}

func (m *mockRelay) Unregister(context.Context, string) error { return nil }

func (m *mockRelay) Notify(_ context.Context, _ string, eventType int, _ any) error {
	m.mu.Lock()
	m.events = append(m.events, eventType)
	m.mu.Unlock()
	m.fired <- struct{}{}
	return nil
}

func (m *mockRelay) waitForEvent(t *testing.T) int {
	t.Helper()
	select {
	case <-m.fired:
	case <-time.After(time.Second):
		t.Fatal("no push notification fired")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events[len(m.events)-1]
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

func newTestVaultService() (VaultService, *mockRelay) {
	vault := store.NewVaultStore(store.NewMemoryBlob(), store.NewMemoryKV(), logger.Nop())
	relay := newMockRelay()
	return NewVaultService(vault, relay, logger.Nop()), relay
}

func loginCipherRequest(name string) models.CipherRequest {
	return models.CipherRequest{
		Type:  models.CipherTypeLogin,
		Name:  name,
		Login: json.RawMessage(`{"username":"enc-user","password":"enc-pass"}`),
	}
}

// ─────────────────────────────────────────────
// Cipher lifecycle
// ─────────────────────────────────────────────

func TestVaultService_CreateCipher(t *testing.T) {
	svc, relay := newTestVaultService()

	cipher, err := svc.CreateCipher(context.Background(), "acct-1", loginCipherRequest("enc-name"))

	require.NoError(t, err)
	assert.NotEmpty(t, cipher.ID, "id is assigned server-side")
	assert.False(t, cipher.CreatedAt.IsZero())
	assert.Equal(t, cipher.CreatedAt, cipher.RevisionDate)
	assert.Equal(t, push.EventCipherCreated, relay.waitForEvent(t))
}

func TestVaultService_CreateCipher_InvalidType(t *testing.T) {
	svc, _ := newTestVaultService()

	_, err := svc.CreateCipher(context.Background(), "acct-1", models.CipherRequest{Type: 42, Name: "enc"})
	assert.ErrorIs(t, err, ErrInvalidDataProvided)

	_, err = svc.CreateCipher(context.Background(), "acct-1", models.CipherRequest{Type: models.CipherTypeLogin})
	assert.ErrorIs(t, err, ErrInvalidDataProvided, "name is required")
}

func TestVaultService_UpdateCipher_PreservesIdentity(t *testing.T) {
	svc, _ := newTestVaultService()
	ctx := context.Background()

	created, err := svc.CreateCipher(ctx, "acct-1", loginCipherRequest("enc-v1"))
	require.NoError(t, err)

	updated, err := svc.UpdateCipher(ctx, "acct-1", created.ID, loginCipherRequest("enc-v2"))

	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "enc-v2", updated.Name)
	assert.True(t, updated.RevisionDate.After(created.RevisionDate) || updated.RevisionDate.Equal(created.RevisionDate))
}

func TestVaultService_UpdateCipher_Missing(t *testing.T) {
	svc, _ := newTestVaultService()

	_, err := svc.UpdateCipher(context.Background(), "acct-1", "nope", loginCipherRequest("enc"))
	assert.ErrorIs(t, err, store.ErrCipherNotFound)
}

func TestVaultService_SoftDeleteAndRestore(t *testing.T) {
	svc, _ := newTestVaultService()
	ctx := context.Background()

	created, err := svc.CreateCipher(ctx, "acct-1", loginCipherRequest("enc"))
	require.NoError(t, err)

	trashed, err := svc.SoftDeleteCipher(ctx, "acct-1", created.ID)
	require.NoError(t, err)
	require.NotNil(t, trashed.DeletedAt)

	// trashed ciphers remain readable
	got, err := svc.GetCipher(ctx, "acct-1", created.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.DeletedAt)

	restored, err := svc.RestoreCipher(ctx, "acct-1", created.ID)
	require.NoError(t, err)
	assert.Nil(t, restored.DeletedAt)

	// restoring an untrashed cipher is a no-op, not an error
	again, err := svc.RestoreCipher(ctx, "acct-1", created.ID)
	require.NoError(t, err)
	assert.Nil(t, again.DeletedAt)
}

func TestVaultService_DeleteCipher(t *testing.T) {
	svc, _ := newTestVaultService()
	ctx := context.Background()

	created, err := svc.CreateCipher(ctx, "acct-1", loginCipherRequest("enc"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCipher(ctx, "acct-1", created.ID))

	_, err = svc.GetCipher(ctx, "acct-1", created.ID)
	assert.ErrorIs(t, err, store.ErrCipherNotFound)

	assert.ErrorIs(t, svc.DeleteCipher(ctx, "acct-1", created.ID), store.ErrCipherNotFound)
}

// ─────────────────────────────────────────────
// Folders
// ─────────────────────────────────────────────

func TestVaultService_FolderLifecycle(t *testing.T) {
	svc, _ := newTestVaultService()
	ctx := context.Background()

	folder, err := svc.CreateFolder(ctx, "acct-1", models.FolderRequest{Name: "enc-folder"})
	require.NoError(t, err)
	require.NotEmpty(t, folder.ID)

	renamed, err := svc.UpdateFolder(ctx, "acct-1", folder.ID, models.FolderRequest{Name: "enc-renamed"})
	require.NoError(t, err)
	assert.Equal(t, folder.ID, renamed.ID)
	assert.Equal(t, "enc-renamed", renamed.Name)

	require.NoError(t, svc.DeleteFolder(ctx, "acct-1", folder.ID))

	_, err = svc.GetFolder(ctx, "acct-1", folder.ID)
	assert.ErrorIs(t, err, store.ErrFolderNotFound)
}

func TestVaultService_CreateFolder_EmptyName(t *testing.T) {
	svc, _ := newTestVaultService()

	_, err := svc.CreateFolder(context.Background(), "acct-1", models.FolderRequest{})
	assert.ErrorIs(t, err, ErrInvalidDataProvided)
}

// ─────────────────────────────────────────────
// Import
// ─────────────────────────────────────────────

func TestVaultService_Import_ResolvesRelationships(t *testing.T) {
	svc, _ := newTestVaultService()
	ctx := context.Background()

	result, err := svc.Import(ctx, "acct-1", models.ImportRequest{
		Folders: []models.FolderRequest{{Name: "enc-work"}, {Name: "enc-home"}},
		Ciphers: []models.CipherRequest{
			loginCipherRequest("enc-a"),
			loginCipherRequest("enc-b"),
		},
		FolderRelationships: []models.FolderRelationship{
			{Key: 0, Value: 1},
		},
	})

	require.NoError(t, err)
	require.Len(t, result.Folders, 2)
	require.Len(t, result.Ciphers, 2)
	assert.Equal(t, result.Folders[1].ID, result.Ciphers[0].FolderID)
	assert.Empty(t, result.Ciphers[1].FolderID, "unrelated ciphers stay unfiled")
}

// TestVaultService_Import_BestEffort checks a bad item never aborts the
// batch and never appears in the result.
func TestVaultService_Import_BestEffort(t *testing.T) {
	svc, _ := newTestVaultService()
	ctx := context.Background()

	result, err := svc.Import(ctx, "acct-1", models.ImportRequest{
		Folders: []models.FolderRequest{{Name: ""}, {Name: "enc-ok"}},
		Ciphers: []models.CipherRequest{
			{Type: 42, Name: "enc-bad-type"},
			loginCipherRequest("enc-ok"),
		},
		FolderRelationships: []models.FolderRelationship{
			// points at the folder that failed to settle
			{Key: 1, Value: 0},
		},
	})

	require.NoError(t, err)
	require.Len(t, result.Folders, 1)
	require.Len(t, result.Ciphers, 1)
	assert.Equal(t, "enc-ok", result.Folders[0].Name)
	assert.Equal(t, "enc-ok", result.Ciphers[0].Name)
	assert.Empty(t, result.Ciphers[0].FolderID, "relationships to failed folders are dropped")
}
