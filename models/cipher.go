package models

import (
	"encoding/json"
	"time"
)

// Cipher type discriminators as fixed by the client protocol.
const (
	CipherTypeLogin      = 1
	CipherTypeSecureNote = 2
	CipherTypeCard       = 3
	CipherTypeIdentity   = 4
	CipherTypeSSHKey     = 5
)

// Cipher is a single end-to-end-encrypted vault item. All value-bearing
// fields (Name, Notes, the typed payloads) are client-side ciphertext; the
// server stores and returns them verbatim.
type Cipher struct {
	ID       string `json:"id"`
	Type     int    `json:"type"`
	Name     string `json:"name"`
	Notes    string `json:"notes,omitempty"`
	FolderID string `json:"folderId,omitempty"`
	Favorite bool   `json:"favorite"`

	// Typed payloads. Exactly one is non-nil, matching Type. Stored as raw
	// JSON because the server never interprets the encrypted contents.
	Login      json.RawMessage `json:"login,omitempty"`
	SecureNote json.RawMessage `json:"secureNote,omitempty"`
	Card       json.RawMessage `json:"card,omitempty"`
	Identity   json.RawMessage `json:"identity,omitempty"`
	SSHKey     json.RawMessage `json:"sshKey,omitempty"`

	// Fields holds encrypted custom fields, opaque to the server.
	Fields json.RawMessage `json:"fields,omitempty"`

	// DeletedAt is the trash tombstone. A non-nil value means the item is
	// soft-deleted; it stays in storage and in sync output until restored
	// or hard-deleted.
	DeletedAt *time.Time `json:"deletedDate,omitempty"`

	CreatedAt    time.Time `json:"creationDate"`
	RevisionDate time.Time `json:"revisionDate"`
}

// Trashed reports whether the cipher carries a tombstone.
func (c *Cipher) Trashed() bool {
	return c.DeletedAt != nil
}

// ValidCipherType reports whether t is a known cipher type discriminator.
func ValidCipherType(t int) bool {
	return t >= CipherTypeLogin && t <= CipherTypeSSHKey
}
