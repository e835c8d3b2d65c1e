package models

// Projections returned by the sync engine. These are recomputed from the
// stores on every call; nothing here is cached across requests.

// Profile is the account projection inside sync and /api/accounts/profile.
// EmailVerified, Premium and TwoFactorEnabled are server-fixed: the compat
// server verifies addresses through the registration assertion, grants all
// paid features, and implements no second factor.
type Profile struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	EmailVerified      bool   `json:"emailVerified"`
	Premium            bool   `json:"premium"`
	MasterPasswordHint string `json:"masterPasswordHint,omitempty"`
	Culture            string `json:"culture"`
	TwoFactorEnabled   bool   `json:"twoFactorEnabled"`
	Key                string `json:"key"`
	PrivateKey         string `json:"privateKey,omitempty"`
	SecurityStamp      string `json:"securityStamp"`
	Organizations      []any  `json:"organizations"`
	Object             string `json:"object"`
}

// SyncResponse is the full vault payload: profile, every folder, every
// cipher (tombstoned ones included, hiding trash is the client's job), and
// the domain-equivalence view.
type SyncResponse struct {
	Profile Profile      `json:"profile"`
	Folders []FolderView `json:"folders"`
	Ciphers []CipherView `json:"ciphers"`
	Domains DomainsView  `json:"domains"`
	Object  string       `json:"object"`
}

// FolderView is the wire projection of a Folder.
type FolderView struct {
	Folder
	Object string `json:"object"`
}

// CipherView is the wire projection of a Cipher, including the Edit flag
// old clients expect.
type CipherView struct {
	Cipher
	Edit   bool   `json:"edit"`
	Object string `json:"object"`
}

// DomainsView merges user-defined equivalence groups with the global table,
// each global group annotated with the account's exclusion flag.
type DomainsView struct {
	EquivalentDomains       [][]string          `json:"equivalentDomains"`
	GlobalEquivalentDomains []GlobalDomainGroup `json:"globalEquivalentDomains"`
	Object                  string              `json:"object"`
}

// GlobalDomainGroup is one entry of the static global equivalence table as
// seen by a specific account.
type GlobalDomainGroup struct {
	Type     int      `json:"type"`
	Domains  []string `json:"domains"`
	Excluded bool     `json:"excluded"`
}

// NewFolderView wraps a folder with its object marker.
func NewFolderView(f Folder) FolderView {
	return FolderView{Folder: f, Object: "folder"}
}

// NewCipherView wraps a cipher with its object marker. Every cipher in a
// personal vault is editable by its owner.
func NewCipherView(c Cipher) CipherView {
	return CipherView{Cipher: c, Edit: true, Object: "cipher"}
}
