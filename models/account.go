package models

import (
	"strings"
	"time"
)

// Account represents a registered vault owner. It carries the credential
// material the client needs to unlock its vault locally and the server-side
// verification hash. Sensitive fields must never be exposed outside trusted
// boundaries.
type Account struct {
	// ID is the internal unique identifier of the account.
	ID string `json:"id"`

	// Email is the unique, case-normalized login identifier.
	Email string `json:"email"`

	// Name is the optional display name shown in client UIs.
	Name string `json:"name,omitempty"`

	// MasterPasswordHash is the server-side re-hash of the opaque
	// client-computed master password hash. The plaintext master password
	// never reaches the server.
	MasterPasswordHash string `json:"-"`

	// MasterPasswordHint is an optional user-provided hint.
	MasterPasswordHint string `json:"masterPasswordHint,omitempty"`

	// Key is the account symmetric key blob, encrypted client-side with a
	// key derived from the master password. Opaque to the server.
	Key string `json:"key"`

	// KDF describes how the client derives its master key. Returned by
	// prelogin so the client can reproduce the derivation.
	KDF KDFParams `json:"kdf"`

	// PublicKey and EncryptedPrivateKey form the account's asymmetric key
	// pair. The private half is encrypted client-side.
	PublicKey           string `json:"publicKey,omitempty"`
	EncryptedPrivateKey string `json:"encryptedPrivateKey,omitempty"`

	// SecurityStamp is the revocation stamp. It rotates on every
	// credential-affecting mutation; tokens carrying an older stamp are
	// rejected on their next use.
	SecurityStamp string `json:"-"`

	// EquivalentDomains holds user-defined domain-equivalence groups.
	EquivalentDomains [][]string `json:"equivalentDomains,omitempty"`

	// ExcludedGlobals lists the global equivalent-domain group types the
	// account has opted out of.
	ExcludedGlobals []int `json:"excludedGlobals,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// KDFParams describes the client-side key derivation function of an account.
// Type 0 is PBKDF2-SHA256, type 1 is Argon2id.
type KDFParams struct {
	Type        int  `json:"kdf"`
	Iterations  int  `json:"kdfIterations"`
	Memory      *int `json:"kdfMemory,omitempty"`
	Parallelism *int `json:"kdfParallelism,omitempty"`
}

// KDF algorithm identifiers as fixed by the client protocol.
const (
	KDFTypePBKDF2   = 0
	KDFTypeArgon2id = 1
)

// DefaultKDFIterations is returned by prelogin for unknown emails so the
// response shape does not reveal whether an account exists.
const DefaultKDFIterations = 600000

// NormalizeEmail lower-cases and trims an email address. All account lookups
// and uniqueness checks operate on the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
