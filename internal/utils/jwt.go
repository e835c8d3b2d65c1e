package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/keyhaven/keyhaven/models"
)

// GenerateSessionToken creates a signed HMAC-SHA256 JWT carrying the session
// claim set: subject (account id), email, the account's security stamp at
// issuance, and the token class.
//
// The token includes the standard claims:
//   - Issuer    (iss): identifies the service that issued the token
//   - Subject   (sub): the account id
//   - IssuedAt  (iat): the current time
//   - ExpiresAt (exp): the current time plus tokenDuration
//
// All parameters are required. Returns an error if any of them are empty or
// zero.
func GenerateSessionToken(issuer, accountID, email, stamp, class string, tokenDuration time.Duration, signKey string) (string, error) {
	if issuer == "" || accountID == "" || stamp == "" || class == "" || tokenDuration == 0 || signKey == "" {
		return "", errors.New("invalid params for generating session token")
	}

	now := time.Now()
	claims := &models.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   accountID,
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Email:         email,
		SecurityStamp: stamp,
		Class:         class,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(signKey))
	if err != nil {
		return "", fmt.Errorf("error occurred during signing session token: %w", err)
	}

	return tokenString, nil
}

// ParseSessionToken validates the signature, issuer and expiry of a session
// token string and returns its claims.
//
// Class and stamp comparison are left to the caller: both require the live
// account record, which this package has no access to.
func ParseSessionToken(tokenString, signKey, issuer string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return []byte(signKey), nil
	}, jwt.WithIssuer(issuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("error occurred validating and parsing session token: %w", err)
	}

	if claims.Subject == "" {
		return nil, errors.New("empty subject error")
	}

	return claims, nil
}

// GenerateVerificationToken creates a signed assertion binding an email, a
// display name and a purpose for the given duration. Used by the two-phase
// registration and by email change; the assertion is delivered out of band
// and never persisted server-side.
func GenerateVerificationToken(issuer, email, name, purpose string, tokenDuration time.Duration, signKey string) (string, error) {
	if issuer == "" || email == "" || purpose == "" || tokenDuration == 0 || signKey == "" {
		return "", errors.New("invalid params for generating verification token")
	}

	now := time.Now()
	claims := &models.VerificationClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Email:   email,
		Name:    name,
		Purpose: purpose,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(signKey))
	if err != nil {
		return "", fmt.Errorf("error occurred during signing verification token: %w", err)
	}

	return tokenString, nil
}

// ParseVerificationToken validates a verification assertion and returns its
// claims. Purpose and email binding checks are left to the caller.
func ParseVerificationToken(tokenString, signKey, issuer string) (*models.VerificationClaims, error) {
	claims := &models.VerificationClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return []byte(signKey), nil
	}, jwt.WithIssuer(issuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("error occurred validating and parsing verification token: %w", err)
	}

	return claims, nil
}

// ParseBearerToken extracts the token part from an Authorization header
// value of the form "<scheme> <token>".
func ParseBearerToken(authorizationHeader string) (string, error) {
	parts := strings.Split(strings.TrimSpace(authorizationHeader), " ")
	if len(parts) != 2 || parts[1] == "" {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}
