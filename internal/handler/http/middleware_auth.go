package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/keyhaven/keyhaven/internal/logger"
	"github.com/keyhaven/keyhaven/internal/service"
	"github.com/keyhaven/keyhaven/internal/utils"
)

// auth is an HTTP middleware that enforces bearer-token authentication.
//
// It inspects the incoming "Authorization" header, extracts the bearer
// token, and validates it end to end via
// [service.SessionService.ValidateAccess]: signature, expiry, token class,
// account existence, and security-stamp equality against the live account
// record. The check runs on every request; validity is never cached, which
// is what makes stamp rotation an immediate kill switch for outstanding
// tokens.
//
// On success the validated account is stored in the request context under
// [utils.AccountCtxKey] (and its id under [utils.AccountIDCtxKey]) before
// delegating to the next handler. Every rejection is HTTP 401 with the
// standard error envelope.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Err(ErrEmptyAuthorizationHeader).Send()
			writeError(w, ErrEmptyAuthorizationHeader.Error(), http.StatusUnauthorized)
			return
		}

		tokenString, err := getTokenFromAuthHeader(authHeader)
		if err != nil {
			log.Err(err).Send()
			writeError(w, err.Error(), http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		account, err := h.services.SessionService.ValidateAccess(ctx, tokenString)
		if err != nil {
			log.Err(err).Msg("access token rejected")
			writeError(w, service.ErrInvalidToken.Error(), http.StatusUnauthorized)
			return
		}

		// Store the validated account in the context so downstream handlers
		// can use it without a second store lookup.
		ctx = context.WithValue(ctx, utils.AccountCtxKey, account)
		ctx = context.WithValue(ctx, utils.AccountIDCtxKey, account.ID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// getTokenFromAuthHeader extracts the bearer token string from a raw
// "Authorization" HTTP header value.
//
// The header is expected to follow the standard format:
//
//	Authorization: Bearer <token>
//
// It returns the following sentinel errors:
//   - [ErrInvalidAuthorizationHeader] if the header contains fewer than
//     two space-separated parts (i.e. the token is missing entirely).
//   - [ErrEmptyToken] if the second part exists but is an empty string.
func getTokenFromAuthHeader(authHeader string) (string, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) < 2 {
		return "", ErrInvalidAuthorizationHeader
	}

	tokenString := parts[1]
	if tokenString == "" {
		return "", ErrEmptyToken
	}

	return tokenString, nil
}
