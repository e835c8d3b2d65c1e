package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyhaven/keyhaven/internal/utils"
	"github.com/keyhaven/keyhaven/models"
)

func TestAuth_MissingHeader(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sync", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_MalformedHeader(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/sync", nil)
	req.Header.Set("Authorization", "garbage")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_ForgedToken(t *testing.T) {
	router, _ := newTestRouter(t)

	forged, err := utils.GenerateSessionToken("keyhaven-test", "acct-x", "a@b.c",
		"stamp", models.TokenClassAccess, time.Hour, "attacker-key")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/sync", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// TestAuth_PasswordChangeKillsToken drives the revocation property through
// the HTTP surface: a token that worked stops working the moment the
// password changes, with no logout call in between.
func TestAuth_PasswordChangeKillsToken(t *testing.T) {
	router, services := newTestRouter(t)
	registerAccount(t, services, "alice@example.com", "client-hash")
	grant := grantToken(t, router, "alice@example.com", "client-hash")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/sync", grant.AccessToken, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/accounts/password", grant.AccessToken,
		models.ChangePasswordRequest{
			MasterPasswordHash:    "client-hash",
			NewMasterPasswordHash: "new-hash",
			Key:                   "re-encrypted-key",
		}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/sync", grant.AccessToken, nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
