package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyhaven/keyhaven/internal/logger"
	"github.com/keyhaven/keyhaven/models"
)

const testAccountID = "acct-1"

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

// newTestVaultStore returns the store plus both backends so tests can
// inject inconsistent states between them.
func newTestVaultStore() (VaultStore, BlobStore, KeyValueStore) {
	blob := NewMemoryBlob()
	kv := NewMemoryKV()
	return NewVaultStore(blob, kv, logger.Nop()), blob, kv
}

func testCipher(id, folderID string) models.Cipher {
	return models.Cipher{
		ID:           id,
		Type:         models.CipherTypeLogin,
		Name:         "enc-name-" + id,
		FolderID:     folderID,
		RevisionDate: time.Now().UTC(),
	}
}

// ─────────────────────────────────────────────
// Cipher lifecycle
// ─────────────────────────────────────────────

func TestVaultStore_CreateAndListCipher(t *testing.T) {
	ctx := context.Background()
	vault, _, _ := newTestVaultStore()

	require.NoError(t, vault.CreateCipher(ctx, testAccountID, testCipher("c-1", "")))

	ciphers, err := vault.ListCiphers(ctx, testAccountID)
	require.NoError(t, err)
	require.Len(t, ciphers, 1)
	assert.Equal(t, "c-1", ciphers[0].ID)

	index, err := vault.Index(ctx, testAccountID)
	require.NoError(t, err)
	assert.True(t, index.HasCipher("c-1"))
}

func TestVaultStore_GetMissingCipher(t *testing.T) {
	ctx := context.Background()
	vault, _, _ := newTestVaultStore()

	_, err := vault.GetCipher(ctx, testAccountID, "nope")
	assert.ErrorIs(t, err, ErrCipherNotFound)
}

func TestVaultStore_DeleteCipherRemovesObjectAndIndexEntry(t *testing.T) {
	ctx := context.Background()
	vault, _, _ := newTestVaultStore()

	require.NoError(t, vault.CreateCipher(ctx, testAccountID, testCipher("c-1", "")))
	require.NoError(t, vault.DeleteCipher(ctx, testAccountID, "c-1"))

	_, err := vault.GetCipher(ctx, testAccountID, "c-1")
	assert.ErrorIs(t, err, ErrCipherNotFound)

	ciphers, err := vault.ListCiphers(ctx, testAccountID)
	require.NoError(t, err)
	assert.Empty(t, ciphers)

	index, err := vault.Index(ctx, testAccountID)
	require.NoError(t, err)
	assert.False(t, index.HasCipher("c-1"))
}

// ─────────────────────────────────────────────
// Index staleness tolerance
// ─────────────────────────────────────────────

// TestVaultStore_OrphanIndexEntryNeverSurfaces injects an index entry with
// no backing object (the create-then-crash shape) and checks no read path
// surfaces a phantom item.
func TestVaultStore_OrphanIndexEntryNeverSurfaces(t *testing.T) {
	ctx := context.Background()
	vault, _, kv := newTestVaultStore()

	require.NoError(t, kv.Put(ctx, indexKeyPrefix+testAccountID,
		`{"cipherIds":["ghost"],"folderIds":[],"revision":7}`))

	ciphers, err := vault.ListCiphers(ctx, testAccountID)
	require.NoError(t, err)
	assert.Empty(t, ciphers)

	_, err = vault.GetCipher(ctx, testAccountID, "ghost")
	assert.ErrorIs(t, err, ErrCipherNotFound)
}

// TestVaultStore_MissingIndexEntryHidesNothing writes an object straight to
// the blob store (the index-add-failed shape) and checks listing still sees
// it, and that an update repairs the index.
func TestVaultStore_MissingIndexEntryHidesNothing(t *testing.T) {
	ctx := context.Background()
	vault, blob, _ := newTestVaultStore()

	cipher := testCipher("c-unindexed", "")
	data := `{"id":"c-unindexed","type":1,"name":"enc"}`
	require.NoError(t, blob.Put(ctx, cipherKey(testAccountID, cipher.ID), []byte(data)))

	ciphers, err := vault.ListCiphers(ctx, testAccountID)
	require.NoError(t, err)
	require.Len(t, ciphers, 1, "ground truth decides visibility")

	index, err := vault.Index(ctx, testAccountID)
	require.NoError(t, err)
	assert.False(t, index.HasCipher(cipher.ID))

	// index-repair on update
	require.NoError(t, vault.UpdateCipher(ctx, testAccountID, cipher))

	index, err = vault.Index(ctx, testAccountID)
	require.NoError(t, err)
	assert.True(t, index.HasCipher(cipher.ID))
}

func TestVaultStore_PruneIndex(t *testing.T) {
	ctx := context.Background()
	vault, _, kv := newTestVaultStore()

	require.NoError(t, vault.CreateCipher(ctx, testAccountID, testCipher("c-live", "")))
	require.NoError(t, vault.CreateFolder(ctx, testAccountID, models.Folder{ID: "f-live", Name: "enc"}))

	// stale entry plus missing entry, both directions at once
	require.NoError(t, kv.Put(ctx, indexKeyPrefix+testAccountID,
		`{"cipherIds":["c-stale"],"folderIds":[],"revision":3}`))

	require.NoError(t, vault.PruneIndex(ctx, testAccountID))

	index, err := vault.Index(ctx, testAccountID)
	require.NoError(t, err)
	assert.False(t, index.HasCipher("c-stale"))
	assert.True(t, index.HasCipher("c-live"))
	assert.True(t, index.HasFolder("f-live"))
}

// ─────────────────────────────────────────────
// Folder lifecycle
// ─────────────────────────────────────────────

func TestVaultStore_DeleteFolderUnfilesCiphers(t *testing.T) {
	ctx := context.Background()
	vault, _, _ := newTestVaultStore()

	require.NoError(t, vault.CreateFolder(ctx, testAccountID, models.Folder{ID: "f-1", Name: "enc"}))
	require.NoError(t, vault.CreateCipher(ctx, testAccountID, testCipher("c-filed", "f-1")))
	require.NoError(t, vault.CreateCipher(ctx, testAccountID, testCipher("c-other", "")))

	require.NoError(t, vault.DeleteFolder(ctx, testAccountID, "f-1"))

	_, err := vault.GetFolder(ctx, testAccountID, "f-1")
	assert.ErrorIs(t, err, ErrFolderNotFound)

	// the filed cipher survives with its FolderID cleared
	cipher, err := vault.GetCipher(ctx, testAccountID, "c-filed")
	require.NoError(t, err)
	assert.Empty(t, cipher.FolderID)

	ciphers, err := vault.ListCiphers(ctx, testAccountID)
	require.NoError(t, err)
	assert.Len(t, ciphers, 2, "folder delete never deletes ciphers")
}

func TestVaultStore_AccountsAreIsolated(t *testing.T) {
	ctx := context.Background()
	vault, _, _ := newTestVaultStore()

	require.NoError(t, vault.CreateCipher(ctx, "acct-a", testCipher("c-1", "")))

	ciphers, err := vault.ListCiphers(ctx, "acct-b")
	require.NoError(t, err)
	assert.Empty(t, ciphers)

	_, err = vault.GetCipher(ctx, "acct-b", "c-1")
	assert.ErrorIs(t, err, ErrCipherNotFound)
}
