package service

import "errors"

// Sentinel errors of the service layer. The HTTP layer maps them onto the
// fixed status codes of the client contract.
var (
	// ErrInvalidDataProvided indicates a missing or malformed request
	// field.
	ErrInvalidDataProvided = errors.New("invalid data provided")

	// ErrInvalidCredentials covers every password-verification failure.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken is the single, deliberately unspecific error for
	// every token validation failure: bad signature, expiry, wrong class,
	// unknown account, or stamp mismatch. The concrete cause is logged but
	// never surfaced, so responses give no account-enumeration signal.
	ErrInvalidToken = errors.New("token is invalid, expired or revoked")

	// ErrTokenCreationFailed indicates the signing step itself failed.
	ErrTokenCreationFailed = errors.New("token creation failed")

	// ErrDeviceNotFound indicates the addressed device is not registered
	// for the account.
	ErrDeviceNotFound = errors.New("device not found")
)
