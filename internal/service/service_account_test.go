package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyhaven/keyhaven/internal/logger"
	"github.com/keyhaven/keyhaven/internal/store"
	"github.com/keyhaven/keyhaven/internal/utils"
	"github.com/keyhaven/keyhaven/models"
)

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

// newTestAccountService wires the service over in-memory stores so
// registration runs end to end, including the atomic create.
func newTestAccountService(mailer *mockMailer) (AccountService, store.AccountStore, store.VaultStore) {
	kv := store.NewMemoryKV()
	blob := store.NewMemoryBlob()
	accounts := store.NewAccountStore(kv, logger.Nop())
	vault := store.NewVaultStore(blob, kv, logger.Nop())
	return NewAccountService(accounts, vault, mailer, testAppConfig(), logger.Nop()), accounts, vault
}

func registrationToken(t *testing.T, email, name string) string {
	t.Helper()
	token, err := utils.GenerateVerificationToken("keyhaven-test", models.NormalizeEmail(email), name,
		models.PurposeRegistration, time.Hour, "test-sign-key")
	require.NoError(t, err)
	return token
}

// ─────────────────────────────────────────────
// Prelogin
// ─────────────────────────────────────────────

func TestAccountService_Prelogin_UnknownEmailGetsDefaults(t *testing.T) {
	svc, _, _ := newTestAccountService(&mockMailer{})

	params, err := svc.Prelogin(context.Background(), "nobody@example.com")

	require.NoError(t, err, "prelogin must not leak account existence")
	assert.Equal(t, models.KDFTypePBKDF2, params.Type)
	assert.Equal(t, models.DefaultKDFIterations, params.Iterations)
}

func TestAccountService_Prelogin_ReturnsStoredParams(t *testing.T) {
	svc, accounts, _ := newTestAccountService(&mockMailer{})

	require.NoError(t, accounts.CreateAccount(context.Background(), models.Account{
		ID:    "acct-1",
		Email: "alice@example.com",
		KDF:   models.KDFParams{Type: models.KDFTypePBKDF2, Iterations: 350_000},
	}))

	params, err := svc.Prelogin(context.Background(), "alice@example.com")

	require.NoError(t, err)
	assert.Equal(t, 350_000, params.Iterations)
}

// ─────────────────────────────────────────────
// Registration
// ─────────────────────────────────────────────

func TestAccountService_SendVerificationEmail(t *testing.T) {
	var sentTo, sentBody string
	mailer := &mockMailer{sendFn: func(to, _, htmlBody string) error {
		sentTo = to
		sentBody = htmlBody
		return nil
	}}
	svc, _, _ := newTestAccountService(mailer)

	err := svc.SendVerificationEmail(context.Background(), "alice@example.com", "Alice")

	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", sentTo)
	assert.NotEmpty(t, sentBody)
}

func TestAccountService_SendVerificationEmail_TakenEmail(t *testing.T) {
	svc, accounts, _ := newTestAccountService(&mockMailer{})

	require.NoError(t, accounts.CreateAccount(context.Background(), models.Account{
		ID:    "acct-1",
		Email: "alice@example.com",
	}))

	err := svc.SendVerificationEmail(context.Background(), "alice@example.com", "Alice")

	assert.ErrorIs(t, err, store.ErrEmailTaken)
}

func TestAccountService_FinishRegistration(t *testing.T) {
	svc, accounts, _ := newTestAccountService(&mockMailer{})

	account, err := svc.FinishRegistration(context.Background(), models.FinishRegistrationRequest{
		Email:              "Alice@Example.com",
		EmailVerifyToken:   registrationToken(t, "alice@example.com", "Alice"),
		MasterPasswordHash: "client-hash",
		Key:                "encrypted-key",
		KDF:                models.KDFTypePBKDF2,
		KDFIterations:      600_000,
		Keys: &models.KeysData{
			PublicKey:           "pub",
			EncryptedPrivateKey: "enc-priv",
		},
	})

	require.NoError(t, err)
	assert.NotEmpty(t, account.ID)
	assert.Equal(t, "alice@example.com", account.Email, "email is stored normalized")
	assert.Equal(t, "Alice", account.Name, "name falls back to the assertion")
	assert.NotEmpty(t, account.SecurityStamp)
	assert.NotEqual(t, "client-hash", account.MasterPasswordHash, "client hash is re-hashed server-side")
	assert.Equal(t, "pub", account.PublicKey)

	stored, err := accounts.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, account.ID, stored.ID)
}

func TestAccountService_FinishRegistration_EmailBindingMismatch(t *testing.T) {
	svc, _, _ := newTestAccountService(&mockMailer{})

	// assertion issued for a different address
	_, err := svc.FinishRegistration(context.Background(), models.FinishRegistrationRequest{
		Email:              "mallory@example.com",
		EmailVerifyToken:   registrationToken(t, "alice@example.com", "Alice"),
		MasterPasswordHash: "client-hash",
		Key:                "encrypted-key",
	})

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccountService_FinishRegistration_WrongPurpose(t *testing.T) {
	svc, _, _ := newTestAccountService(&mockMailer{})

	token, err := utils.GenerateVerificationToken("keyhaven-test", "alice@example.com", "Alice",
		models.PurposeEmailChange, time.Hour, "test-sign-key")
	require.NoError(t, err)

	_, err = svc.FinishRegistration(context.Background(), models.FinishRegistrationRequest{
		Email:              "alice@example.com",
		EmailVerifyToken:   token,
		MasterPasswordHash: "client-hash",
		Key:                "encrypted-key",
	})

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccountService_FinishRegistration_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestAccountService(&mockMailer{})

	req := models.FinishRegistrationRequest{
		Email:              "alice@example.com",
		EmailVerifyToken:   registrationToken(t, "alice@example.com", "Alice"),
		MasterPasswordHash: "client-hash",
		Key:                "encrypted-key",
	}

	_, err := svc.FinishRegistration(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.FinishRegistration(context.Background(), req)
	assert.ErrorIs(t, err, store.ErrEmailTaken)
}

// ─────────────────────────────────────────────
// Profile / RevisionDate
// ─────────────────────────────────────────────

func TestAccountService_Profile(t *testing.T) {
	svc, _, _ := newTestAccountService(&mockMailer{})

	profile := svc.Profile(context.Background(), models.Account{
		ID:            "acct-1",
		Name:          "Alice",
		Email:         "alice@example.com",
		Key:           "encrypted-key",
		SecurityStamp: "stamp-1",
	})

	assert.Equal(t, "profile", profile.Object)
	assert.Equal(t, "acct-1", profile.ID)
	assert.Equal(t, "encrypted-key", profile.Key)
	assert.NotNil(t, profile.Organizations, "clients choke on null organization lists")
}

func TestAccountService_RevisionDate_TracksNewestObject(t *testing.T) {
	svc, _, vault := newTestAccountService(&mockMailer{})

	account := models.Account{ID: "acct-1", UpdatedAt: time.Now().UTC().Add(-time.Hour)}
	newest := time.Now().UTC()

	require.NoError(t, vault.CreateCipher(context.Background(), account.ID, models.Cipher{
		ID:           "c-1",
		Type:         models.CipherTypeLogin,
		Name:         "enc",
		RevisionDate: newest,
	}))

	millis, err := svc.RevisionDate(context.Background(), account)

	require.NoError(t, err)
	assert.Equal(t, newest.UnixMilli(), millis)
}

func TestAccountService_RevisionDate_EmptyVaultUsesAccount(t *testing.T) {
	svc, _, _ := newTestAccountService(&mockMailer{})

	updated := time.Now().UTC().Truncate(time.Millisecond)
	millis, err := svc.RevisionDate(context.Background(), models.Account{ID: "acct-1", UpdatedAt: updated})

	require.NoError(t, err)
	assert.Equal(t, updated.UnixMilli(), millis)
}
