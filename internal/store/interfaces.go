package store

import (
	"context"

	"github.com/keyhaven/keyhaven/models"
)

// KeyValueStore is the fast index store: plain string keys and values, no
// scans, no transactions. Single-key atomicity is assumed from the backing
// implementation.
type KeyValueStore interface {
	// Get returns the value for key. The second return is false when the
	// key does not exist.
	Get(ctx context.Context, key string) (string, bool, error)

	// Put writes value under key, replacing any existing value.
	Put(ctx context.Context, key string, value string) error

	// PutIfAbsent writes value under key only when the key does not exist
	// yet, atomically. Returns ErrKeyExists otherwise. This is the one
	// primitive that turns concurrent duplicate registrations into exactly
	// one winner.
	PutIfAbsent(ctx context.Context, key string, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// BlobStore is the authoritative object store for vault items and folders.
type BlobStore interface {
	// Get returns the object at key. The second return is false when the
	// object does not exist.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Put writes the object at key, replacing any existing object.
	Put(ctx context.Context, key string, data []byte) error

	// Delete removes the object at key. Deleting a missing object is not
	// an error.
	Delete(ctx context.Context, key string) error

	// List returns all object keys under prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// AccountStore is the credential record store: account records keyed by
// normalized email in the key-value store, plus the per-account device
// list.
type AccountStore interface {
	// CreateAccount persists a new account. Returns ErrEmailTaken when the
	// email is already registered; under concurrent creates for the same
	// email exactly one call succeeds.
	CreateAccount(ctx context.Context, account models.Account) error

	// GetByEmail returns the account registered under the normalized email.
	GetByEmail(ctx context.Context, email string) (models.Account, error)

	// GetByID resolves an account id to its record via the id alias key.
	GetByID(ctx context.Context, id string) (models.Account, error)

	// UpdateAccount rewrites the account record under its current email.
	UpdateAccount(ctx context.Context, account models.Account) error

	// ChangeEmail moves the account record from oldEmail to account.Email.
	// Returns ErrEmailTaken when the new email is already registered.
	ChangeEmail(ctx context.Context, account models.Account, oldEmail string) error

	// Devices returns the device list of an account.
	Devices(ctx context.Context, accountID string) ([]models.Device, error)

	// PutDevices replaces the device list of an account.
	PutDevices(ctx context.Context, accountID string, devices []models.Device) error
}

// VaultStore keeps the authoritative vault objects in the blob store and
// the advisory index in the key-value store. Writes follow the ordering
// rules documented on each method instead of cross-store transactions; read
// paths used by sync list the blob store directly and never consult the
// index.
type VaultStore interface {
	CreateCipher(ctx context.Context, accountID string, cipher models.Cipher) error
	GetCipher(ctx context.Context, accountID, cipherID string) (models.Cipher, error)
	UpdateCipher(ctx context.Context, accountID string, cipher models.Cipher) error
	DeleteCipher(ctx context.Context, accountID, cipherID string) error
	ListCiphers(ctx context.Context, accountID string) ([]models.Cipher, error)

	CreateFolder(ctx context.Context, accountID string, folder models.Folder) error
	GetFolder(ctx context.Context, accountID, folderID string) (models.Folder, error)
	UpdateFolder(ctx context.Context, accountID string, folder models.Folder) error
	DeleteFolder(ctx context.Context, accountID, folderID string) error
	ListFolders(ctx context.Context, accountID string) ([]models.Folder, error)

	// Index returns the advisory index of an account. A missing index
	// reads as empty.
	Index(ctx context.Context, accountID string) (models.VaultIndex, error)

	// PruneIndex drops index entries whose objects are gone from the blob
	// store. Purely opportunistic: observable behavior never depends on it.
	PruneIndex(ctx context.Context, accountID string) error
}
