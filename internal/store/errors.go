package store

import "errors"

// Sentinel errors surfaced by the storage layer. Callers match against them
// with [errors.Is].
var (
	// ErrKeyExists is returned by KeyValueStore.PutIfAbsent when the key
	// is already present.
	ErrKeyExists = errors.New("key already exists")

	// ErrEmailTaken is returned when an account with the requested email
	// already exists.
	ErrEmailTaken = errors.New("email already registered")

	// ErrAccountNotFound is returned when no account record exists for the
	// given email or id.
	ErrAccountNotFound = errors.New("account not found")

	// ErrCipherNotFound is returned when the requested cipher object does
	// not exist in the blob store.
	ErrCipherNotFound = errors.New("cipher not found")

	// ErrFolderNotFound is returned when the requested folder object does
	// not exist in the blob store.
	ErrFolderNotFound = errors.New("folder not found")

	// ErrStoreUnavailable wraps driver-level failures of either backing
	// store on primary request paths.
	ErrStoreUnavailable = errors.New("storage backend unavailable")
)
