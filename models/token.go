package models

import "github.com/golang-jwt/jwt/v5"

// Token classes. Access tokens authorize API calls for a short window;
// refresh tokens only authorize obtaining a new pair.
const (
	TokenClassAccess  = "access"
	TokenClassRefresh = "refresh"
)

// Verification assertion purposes. Finish-registration and email change
// each reject assertions carrying any other purpose.
const (
	PurposeRegistration = "registration"
	PurposeEmailChange  = "email-change"
)

// SessionClaims is the claim set of access and refresh tokens. A token is a
// self-contained signed assertion: nothing about it is persisted
// server-side. Validity is recomputed on every request from the signature,
// the expiry, the class, and the stamp comparison against the live account.
type SessionClaims struct {
	jwt.RegisteredClaims

	// Email of the account at issuance time.
	Email string `json:"email"`

	// SecurityStamp is the account's revocation stamp at issuance. A
	// mismatch with the account's current stamp means the token was issued
	// before a credential-affecting mutation and is revoked.
	SecurityStamp string `json:"sstamp"`

	// Class distinguishes access from refresh tokens.
	Class string `json:"cls"`
}

// VerificationClaims is the claim set of a registration verification
// assertion. It binds the email and display name presented at
// send-verification-email time and is delivered out of band; the server
// keeps no copy.
type VerificationClaims struct {
	jwt.RegisteredClaims

	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Purpose string `json:"purpose"`
}

// TokenPair carries a freshly issued access/refresh pair together with the
// access token lifetime in seconds for the OAuth2-shaped response.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}
