package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyhaven/keyhaven/models"
)

const (
	testIssuer  = "keyhaven-test"
	testSignKey = "test-sign-key"
)

// ─────────────────────────────────────────────
// Session tokens
// ─────────────────────────────────────────────

func TestSessionToken_Roundtrip(t *testing.T) {
	tokenString, err := GenerateSessionToken(testIssuer, "acct-1", "alice@example.com",
		"stamp-1", models.TokenClassAccess, time.Hour, testSignKey)
	require.NoError(t, err)

	claims, err := ParseSessionToken(tokenString, testSignKey, testIssuer)
	require.NoError(t, err)

	assert.Equal(t, "acct-1", claims.Subject)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "stamp-1", claims.SecurityStamp)
	assert.Equal(t, models.TokenClassAccess, claims.Class)
	assert.Equal(t, testIssuer, claims.Issuer)
}

func TestSessionToken_WrongKeyRejected(t *testing.T) {
	tokenString, err := GenerateSessionToken(testIssuer, "acct-1", "alice@example.com",
		"stamp-1", models.TokenClassAccess, time.Hour, testSignKey)
	require.NoError(t, err)

	_, err = ParseSessionToken(tokenString, "another-key", testIssuer)
	assert.Error(t, err)
}

func TestSessionToken_WrongIssuerRejected(t *testing.T) {
	tokenString, err := GenerateSessionToken("other-issuer", "acct-1", "alice@example.com",
		"stamp-1", models.TokenClassAccess, time.Hour, testSignKey)
	require.NoError(t, err)

	_, err = ParseSessionToken(tokenString, testSignKey, testIssuer)
	assert.Error(t, err)
}

func TestSessionToken_ExpiredRejected(t *testing.T) {
	tokenString, err := GenerateSessionToken(testIssuer, "acct-1", "alice@example.com",
		"stamp-1", models.TokenClassAccess, time.Nanosecond, testSignKey)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = ParseSessionToken(tokenString, testSignKey, testIssuer)
	assert.Error(t, err)
}

func TestSessionToken_EmptyParamsRejected(t *testing.T) {
	_, err := GenerateSessionToken("", "acct-1", "a@b.c", "stamp", models.TokenClassAccess, time.Hour, testSignKey)
	assert.Error(t, err)

	_, err = GenerateSessionToken(testIssuer, "acct-1", "a@b.c", "", models.TokenClassAccess, time.Hour, testSignKey)
	assert.Error(t, err, "tokens must never be issued without a stamp")
}

// ─────────────────────────────────────────────
// Verification assertions
// ─────────────────────────────────────────────

func TestVerificationToken_Roundtrip(t *testing.T) {
	tokenString, err := GenerateVerificationToken(testIssuer, "new@example.com", "Alice",
		models.PurposeRegistration, time.Hour, testSignKey)
	require.NoError(t, err)

	claims, err := ParseVerificationToken(tokenString, testSignKey, testIssuer)
	require.NoError(t, err)

	assert.Equal(t, "new@example.com", claims.Email)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, models.PurposeRegistration, claims.Purpose)
}

// ─────────────────────────────────────────────
// ParseBearerToken
// ─────────────────────────────────────────────

func TestParseBearerToken(t *testing.T) {
	token, err := ParseBearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	_, err = ParseBearerToken("Bearer")
	assert.Error(t, err)

	_, err = ParseBearerToken("Bearer ")
	assert.Error(t, err)
}
