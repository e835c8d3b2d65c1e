package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyhaven/keyhaven/internal/logger"
	"github.com/keyhaven/keyhaven/models"
)

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

func newTestAccountStore() AccountStore {
	return NewAccountStore(NewMemoryKV(), logger.Nop())
}

func testAccount(id, email string) models.Account {
	return models.Account{
		ID:                 id,
		Email:              email,
		MasterPasswordHash: "server-hash",
		Key:                "encrypted-symmetric-key",
		SecurityStamp:      "stamp-1",
	}
}

// ─────────────────────────────────────────────
// CreateAccount
// ─────────────────────────────────────────────

func TestAccountStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	accounts := newTestAccountStore()

	require.NoError(t, accounts.CreateAccount(ctx, testAccount("id-1", "Alice@Example.com")))

	byEmail, err := accounts.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "id-1", byEmail.ID)

	byID, err := accounts.GetByID(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, byEmail.Email, byID.Email)
}

// TestAccountStore_CredentialsSurviveRoundTrip pins the storage shape: the
// wire-facing model hides the hash and stamp from JSON, so the store must
// persist its own record type or both fields silently evaporate and no
// grant can ever verify a password again.
func TestAccountStore_CredentialsSurviveRoundTrip(t *testing.T) {
	ctx := context.Background()
	accounts := newTestAccountStore()

	account := testAccount("id-1", "alice@example.com")
	account.MasterPasswordHash = "server-side-hash"
	account.SecurityStamp = "stamp-xyz"
	require.NoError(t, accounts.CreateAccount(ctx, account))

	byEmail, err := accounts.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "server-side-hash", byEmail.MasterPasswordHash)
	assert.Equal(t, "stamp-xyz", byEmail.SecurityStamp)

	byID, err := accounts.GetByID(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, "server-side-hash", byID.MasterPasswordHash)
	assert.Equal(t, "stamp-xyz", byID.SecurityStamp)

	// and across an update and an email change too
	byID.SecurityStamp = "stamp-rotated"
	require.NoError(t, accounts.UpdateAccount(ctx, byID))

	byID.Email = "new@example.com"
	require.NoError(t, accounts.ChangeEmail(ctx, byID, "alice@example.com"))

	reloaded, err := accounts.GetByID(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, "server-side-hash", reloaded.MasterPasswordHash)
	assert.Equal(t, "stamp-rotated", reloaded.SecurityStamp)
}

func TestAccountStore_CreateDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	accounts := newTestAccountStore()

	require.NoError(t, accounts.CreateAccount(ctx, testAccount("id-1", "alice@example.com")))

	err := accounts.CreateAccount(ctx, testAccount("id-2", "ALICE@example.com"))
	require.ErrorIs(t, err, ErrEmailTaken)

	// the original record survives
	account, err := accounts.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "id-1", account.ID)
}

// TestAccountStore_CreateConcurrent checks the duplicate-registration race:
// many concurrent creates for one email, exactly one winner.
func TestAccountStore_CreateConcurrent(t *testing.T) {
	ctx := context.Background()
	accounts := newTestAccountStore()

	const writers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			account := testAccount("id-"+string(rune('a'+n)), "race@example.com")
			if err := accounts.CreateAccount(ctx, account); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, created)
}

func TestAccountStore_GetMissing(t *testing.T) {
	ctx := context.Background()
	accounts := newTestAccountStore()

	_, err := accounts.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	_, err = accounts.GetByID(ctx, "no-such-id")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

// ─────────────────────────────────────────────
// UpdateAccount / ChangeEmail
// ─────────────────────────────────────────────

func TestAccountStore_Update(t *testing.T) {
	ctx := context.Background()
	accounts := newTestAccountStore()

	account := testAccount("id-1", "alice@example.com")
	require.NoError(t, accounts.CreateAccount(ctx, account))

	account.SecurityStamp = "stamp-2"
	require.NoError(t, accounts.UpdateAccount(ctx, account))

	reloaded, err := accounts.GetByID(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, "stamp-2", reloaded.SecurityStamp)
}

func TestAccountStore_ChangeEmail(t *testing.T) {
	ctx := context.Background()
	accounts := newTestAccountStore()

	account := testAccount("id-1", "old@example.com")
	require.NoError(t, accounts.CreateAccount(ctx, account))

	account.Email = "new@example.com"
	require.NoError(t, accounts.ChangeEmail(ctx, account, "old@example.com"))

	// reachable under the new email and via the id alias
	byEmail, err := accounts.GetByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "id-1", byEmail.ID)

	byID, err := accounts.GetByID(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", byID.Email)

	// the old email is free again
	_, err = accounts.GetByEmail(ctx, "old@example.com")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestAccountStore_ChangeEmailToTakenAddress(t *testing.T) {
	ctx := context.Background()
	accounts := newTestAccountStore()

	require.NoError(t, accounts.CreateAccount(ctx, testAccount("id-1", "alice@example.com")))
	require.NoError(t, accounts.CreateAccount(ctx, testAccount("id-2", "bob@example.com")))

	bob, err := accounts.GetByID(ctx, "id-2")
	require.NoError(t, err)

	bob.Email = "alice@example.com"
	err = accounts.ChangeEmail(ctx, bob, "bob@example.com")
	require.ErrorIs(t, err, ErrEmailTaken)

	// bob is untouched
	reloaded, err := accounts.GetByID(ctx, "id-2")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", reloaded.Email)
}

// ─────────────────────────────────────────────
// Devices
// ─────────────────────────────────────────────

func TestAccountStore_Devices(t *testing.T) {
	ctx := context.Background()
	accounts := newTestAccountStore()

	devices, err := accounts.Devices(ctx, "id-1")
	require.NoError(t, err)
	assert.Empty(t, devices, "missing device list reads as empty")

	want := []models.Device{{ID: "d-1", Identifier: "ident-1", Name: "laptop", Type: 6}}
	require.NoError(t, accounts.PutDevices(ctx, "id-1", want))

	devices, err = accounts.Devices(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, want, devices)
}

// TestAccountStore_PushFieldsSurviveRoundTrip pins the device storage shape
// the same way: PushToken and PushID are JSON-hidden on the model, so they
// must ride the storage record or relay unregistration breaks.
func TestAccountStore_PushFieldsSurviveRoundTrip(t *testing.T) {
	ctx := context.Background()
	accounts := newTestAccountStore()

	want := []models.Device{{
		ID:         "d-1",
		Identifier: "ident-1",
		Name:       "phone",
		Type:       1,
		PushToken:  "fcm-token",
		PushID:     "relay-push-id",
	}}
	require.NoError(t, accounts.PutDevices(ctx, "id-1", want))

	devices, err := accounts.Devices(ctx, "id-1")
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "fcm-token", devices[0].PushToken)
	assert.Equal(t, "relay-push-id", devices[0].PushID)
}
