package http

import (
	"net/http"
	"strconv"

	"github.com/keyhaven/keyhaven/internal/logger"
	"github.com/keyhaven/keyhaven/internal/utils"
	"github.com/keyhaven/keyhaven/models"
)

// connectToken is the OAuth2-shaped token endpoint. The request is
// form-encoded, not JSON, and the failure body is the fixed
// {"error":"invalid_grant"} shape with HTTP 400: both are part of the
// client contract and differ deliberately from the JSON error envelope used
// everywhere else.
func (h *Handler) connectToken(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	if err := r.ParseForm(); err != nil {
		log.Err(err).Msg("token grant: malformed form body")
		grantError(w, "invalid_request", "malformed form body")
		return
	}

	switch r.PostFormValue("grant_type") {
	case "password":
		h.passwordGrant(w, r)
	case "refresh_token":
		h.refreshGrant(w, r)
	default:
		log.Error().Str("grant_type", r.PostFormValue("grant_type")).Msg("token grant: unsupported grant type")
		grantError(w, "unsupported_grant_type", "")
	}
}

func (h *Handler) passwordGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	email := r.PostFormValue("username")
	clientHash := r.PostFormValue("password")

	account, err := h.services.SessionService.PasswordGrant(ctx, email, clientHash)
	if err != nil {
		log.Err(err).Msg("password grant rejected")
		grantError(w, "invalid_grant", "Username or password is incorrect. Try again.")
		return
	}

	pair, err := h.services.SessionService.IssuePair(ctx, account)
	if err != nil {
		log.Err(err).Msg("token pair issuance failed")
		writeError(w, err.Error(), statusFromError(err))
		return
	}

	h.ensureGrantDevice(r, account.ID)

	utils.WriteJSON(w, grantResponse(account, pair), http.StatusOK)
}

func (h *Handler) refreshGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	pair, account, err := h.services.SessionService.Refresh(ctx, r.PostFormValue("refresh_token"))
	if err != nil {
		log.Err(err).Msg("refresh grant rejected")
		grantError(w, "invalid_grant", "")
		return
	}

	utils.WriteJSON(w, grantResponse(account, pair), http.StatusOK)
}

// ensureGrantDevice upserts the device described in the grant form.
// Best-effort: a failed upsert never fails the grant.
func (h *Handler) ensureGrantDevice(r *http.Request, accountID string) {
	log := logger.FromRequest(r)

	reg := models.DeviceRegistration{
		Identifier: r.PostFormValue("deviceIdentifier"),
		Name:       r.PostFormValue("deviceName"),
		PushToken:  r.PostFormValue("devicePushToken"),
	}
	if deviceType, err := strconv.Atoi(r.PostFormValue("deviceType")); err == nil {
		reg.Type = deviceType
	}

	if err := h.services.DeviceService.EnsureDevice(r.Context(), accountID, reg); err != nil {
		log.Err(err).Str("identifier", reg.Identifier).Msg("device upsert during grant failed")
	}
}

func grantResponse(account models.Account, pair models.TokenPair) models.TokenGrantResponse {
	return models.TokenGrantResponse{
		AccessToken:    pair.AccessToken,
		ExpiresIn:      pair.ExpiresIn,
		TokenType:      "Bearer",
		RefreshToken:   pair.RefreshToken,
		Key:            account.Key,
		PrivateKey:     account.EncryptedPrivateKey,
		KDF:            account.KDF.Type,
		KDFIterations:  account.KDF.Iterations,
		KDFMemory:      account.KDF.Memory,
		KDFParallelism: account.KDF.Parallelism,
	}
}

func grantError(w http.ResponseWriter, code, description string) {
	utils.WriteJSON(w, models.TokenGrantError{
		Error:            code,
		ErrorDescription: description,
	}, http.StatusBadRequest)
}
