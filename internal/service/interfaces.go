package service

import (
	"context"

	"github.com/keyhaven/keyhaven/models"
)

// SessionService is the session authority: it issues and validates the
// dual-class token pairs and owns every credential-affecting mutation,
// since those are exactly the mutations that rotate the revocation stamp.
type SessionService interface {
	// PasswordGrant verifies an email/client-hash pair and returns the
	// matching account. Failures are always ErrInvalidCredentials.
	PasswordGrant(ctx context.Context, email, clientHash string) (models.Account, error)

	// IssuePair signs a fresh access/refresh pair carrying the account's
	// current security stamp.
	IssuePair(ctx context.Context, account models.Account) (models.TokenPair, error)

	// ValidateAccess checks an access token end to end (signature, expiry,
	// class, account existence, stamp equality) and returns the live
	// account. Every failure is ErrInvalidToken.
	ValidateAccess(ctx context.Context, tokenString string) (models.Account, error)

	// Refresh validates a refresh token with the same checks and issues a
	// new pair. The stamp is not rotated, so concurrently issued pairs all
	// stay valid.
	Refresh(ctx context.Context, tokenString string) (models.TokenPair, models.Account, error)

	// ChangePassword verifies the current credential, rotates the
	// security stamp, and re-hashes the new credential under the new
	// stamp. One mutation, all outstanding tokens die.
	ChangePassword(ctx context.Context, accountID string, req models.ChangePasswordRequest) error

	// IssueEmailToken verifies the current credential and sends an
	// email-change assertion to the new address.
	IssueEmailToken(ctx context.Context, accountID string, req models.EmailTokenRequest) error

	// ChangeEmail consumes an email-change assertion and moves the
	// account, rotating the stamp like a password change.
	ChangeEmail(ctx context.Context, accountID string, req models.ChangeEmailRequest) error
}

// AccountService covers registration and profile reads/writes.
type AccountService interface {
	// Prelogin returns the KDF parameters for an email. Unknown emails get
	// the default parameters so the response shape leaks nothing.
	Prelogin(ctx context.Context, email string) (models.KDFParams, error)

	// SendVerificationEmail issues a registration assertion for the email
	// and delivers it out of band. Nothing is persisted.
	SendVerificationEmail(ctx context.Context, email, name string) error

	// FinishRegistration consumes a registration assertion and creates the
	// account. Exactly one of two concurrent finishes for the same email
	// succeeds.
	FinishRegistration(ctx context.Context, req models.FinishRegistrationRequest) (models.Account, error)

	// Profile returns the profile projection of an account.
	Profile(ctx context.Context, account models.Account) models.Profile

	// UpdateProfile mutates the non-credential profile fields.
	UpdateProfile(ctx context.Context, account models.Account, req models.ProfileUpdateRequest) (models.Account, error)

	// RevisionDate returns the most recent vault revision time in
	// milliseconds since the Unix epoch.
	RevisionDate(ctx context.Context, account models.Account) (int64, error)
}

// VaultService covers cipher and folder lifecycle.
type VaultService interface {
	CreateCipher(ctx context.Context, accountID string, req models.CipherRequest) (models.Cipher, error)
	GetCipher(ctx context.Context, accountID, cipherID string) (models.Cipher, error)
	UpdateCipher(ctx context.Context, accountID, cipherID string, req models.CipherRequest) (models.Cipher, error)
	DeleteCipher(ctx context.Context, accountID, cipherID string) error
	SoftDeleteCipher(ctx context.Context, accountID, cipherID string) (models.Cipher, error)
	RestoreCipher(ctx context.Context, accountID, cipherID string) (models.Cipher, error)
	Import(ctx context.Context, accountID string, req models.ImportRequest) (models.ImportResult, error)

	CreateFolder(ctx context.Context, accountID string, req models.FolderRequest) (models.Folder, error)
	GetFolder(ctx context.Context, accountID, folderID string) (models.Folder, error)
	UpdateFolder(ctx context.Context, accountID, folderID string, req models.FolderRequest) (models.Folder, error)
	DeleteFolder(ctx context.Context, accountID, folderID string) error
}

// SyncService is the read-side composition engine.
type SyncService interface {
	// Sync composes the full vault payload from the authoritative stores.
	// Recomputed on every call; the advisory index is never consulted.
	Sync(ctx context.Context, account models.Account) (models.SyncResponse, error)

	// Domains returns the domain-equivalence view of an account.
	Domains(ctx context.Context, account models.Account) models.DomainsView

	// UpdateDomains replaces the account's domain-equivalence preferences.
	UpdateDomains(ctx context.Context, account models.Account, req models.DomainsRequest) (models.DomainsView, error)
}

// DeviceService covers the device list and push-token lifecycle.
type DeviceService interface {
	List(ctx context.Context, accountID string) ([]models.Device, error)
	EnsureDevice(ctx context.Context, accountID string, reg models.DeviceRegistration) error
	RegisterPushToken(ctx context.Context, accountID, identifier, pushToken string) error
	ClearPushToken(ctx context.Context, accountID, identifier string) error
	Delete(ctx context.Context, accountID, deviceID string) error
}
