package utils

import "github.com/google/uuid"

// NewID returns a fresh random identifier for accounts, ciphers, folders
// and devices. Server-assigned ids are never reused within an account's
// lifetime.
func NewID() string {
	return uuid.NewString()
}
