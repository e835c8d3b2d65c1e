package models

import "time"

// Folder groups ciphers inside one account's vault. The Name is client-side
// ciphertext like every other vault value.
type Folder struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	RevisionDate time.Time `json:"revisionDate"`
}
