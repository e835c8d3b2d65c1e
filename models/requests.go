package models

import "encoding/json"

// Request bodies below are the canonical camelCase shapes. Two historical
// client generations disagree on field casing; the HTTP layer normalizes
// every incoming body once (see handler/http request decoding) so nothing
// past the decoding boundary needs per-field fallbacks.

// PreloginRequest asks for the KDF parameters of an email.
type PreloginRequest struct {
	Email string `json:"email"`
}

// SendVerificationEmailRequest starts the two-phase registration.
type SendVerificationEmailRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// FinishRegistrationRequest consumes a verification assertion and creates
// the account.
type FinishRegistrationRequest struct {
	Email              string    `json:"email"`
	EmailVerifyToken   string    `json:"emailVerifyToken"`
	Name               string    `json:"name"`
	MasterPasswordHash string    `json:"masterPasswordHash"`
	MasterPasswordHint string    `json:"masterPasswordHint"`
	Key                string    `json:"key"`
	KDF                int       `json:"kdf"`
	KDFIterations      int       `json:"kdfIterations"`
	KDFMemory          *int      `json:"kdfMemory"`
	KDFParallelism     *int      `json:"kdfParallelism"`
	Keys               *KeysData `json:"keys"`
}

// KeysData carries the asymmetric key pair uploaded at registration or via
// a key update.
type KeysData struct {
	PublicKey           string `json:"publicKey"`
	EncryptedPrivateKey string `json:"encryptedPrivateKey"`
}

// ChangePasswordRequest rotates the master password. MasterPasswordHash is
// the current credential, NewMasterPasswordHash the replacement; Key is the
// symmetric key blob re-encrypted under the new master key.
type ChangePasswordRequest struct {
	MasterPasswordHash    string `json:"masterPasswordHash"`
	NewMasterPasswordHash string `json:"newMasterPasswordHash"`
	MasterPasswordHint    string `json:"masterPasswordHint"`
	Key                   string `json:"key"`
}

// EmailTokenRequest asks for an email-change assertion for NewEmail.
type EmailTokenRequest struct {
	MasterPasswordHash string `json:"masterPasswordHash"`
	NewEmail           string `json:"newEmail"`
}

// ChangeEmailRequest finalizes an email change.
type ChangeEmailRequest struct {
	MasterPasswordHash    string `json:"masterPasswordHash"`
	NewEmail              string `json:"newEmail"`
	NewMasterPasswordHash string `json:"newMasterPasswordHash"`
	Token                 string `json:"token"`
	Key                   string `json:"key"`
}

// ProfileUpdateRequest mutates the non-credential profile fields.
type ProfileUpdateRequest struct {
	Name               string `json:"name"`
	MasterPasswordHint string `json:"masterPasswordHint"`
}

// CipherRequest is the write shape for cipher create and update.
type CipherRequest struct {
	Type       int             `json:"type"`
	Name       string          `json:"name"`
	Notes      string          `json:"notes"`
	FolderID   string          `json:"folderId"`
	Favorite   bool            `json:"favorite"`
	Login      json.RawMessage `json:"login"`
	SecureNote json.RawMessage `json:"secureNote"`
	Card       json.RawMessage `json:"card"`
	Identity   json.RawMessage `json:"identity"`
	SSHKey     json.RawMessage `json:"sshKey"`
	Fields     json.RawMessage `json:"fields"`
}

// FolderRequest is the write shape for folder create and update.
type FolderRequest struct {
	Name string `json:"name"`
}

// ImportRequest is the bulk-import payload: folders, ciphers, and the
// relationship table mapping cipher positions to folder positions.
type ImportRequest struct {
	Folders             []FolderRequest      `json:"folders"`
	Ciphers             []CipherRequest      `json:"ciphers"`
	FolderRelationships []FolderRelationship `json:"folderRelationships"`
}

// FolderRelationship links Ciphers[Key] to Folders[Value] in an import.
type FolderRelationship struct {
	Key   int `json:"key"`
	Value int `json:"value"`
}

// DomainsRequest replaces the account's domain-equivalence preferences.
type DomainsRequest struct {
	EquivalentDomains               [][]string `json:"equivalentDomains"`
	ExcludedGlobalEquivalentDomains []int      `json:"excludedGlobalEquivalentDomains"`
}

// DeviceTokenRequest sets the push token of a device.
type DeviceTokenRequest struct {
	PushToken string `json:"pushToken"`
}

// DeviceRegistration is sent inside the token grant to describe the calling
// device.
type DeviceRegistration struct {
	Identifier string `json:"deviceIdentifier"`
	Name       string `json:"deviceName"`
	Type       int    `json:"deviceType"`
	PushToken  string `json:"devicePushToken"`
}
