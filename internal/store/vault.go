package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/keyhaven/keyhaven/internal/logger"
	"github.com/keyhaven/keyhaven/models"
)

// Key layout of the vault:
//
//	blob  vaults/<accountID>/ciphers/<cipherID> -> Cipher JSON (ground truth)
//	blob  vaults/<accountID>/folders/<folderID> -> Folder JSON (ground truth)
//	kv    vault:index:<accountID>               -> VaultIndex JSON (advisory)
//
// The blob store is authoritative; the index only spares write paths a full
// prefix listing. Because the two stores fail independently and there are
// no cross-store transactions, every mutation is a fixed sequence of named
// steps whose crash behavior is documented at the step. The single global
// rule making this safe: sync and every other read path list the blob store
// directly, so a stale index entry (in either direction) can never surface
// a phantom item or hide a real one.
const indexKeyPrefix = "vault:index:"

func cipherKey(accountID, cipherID string) string {
	return "vaults/" + accountID + "/ciphers/" + cipherID
}

func folderKey(accountID, folderID string) string {
	return "vaults/" + accountID + "/folders/" + folderID
}

func cipherPrefix(accountID string) string {
	return "vaults/" + accountID + "/ciphers/"
}

func folderPrefix(accountID string) string {
	return "vaults/" + accountID + "/folders/"
}

// vaultStore implements [VaultStore] over a blob store and a key-value
// store.
type vaultStore struct {
	blob   BlobStore
	kv     KeyValueStore
	logger *logger.Logger
}

// NewVaultStore constructs a [VaultStore] over the given backends.
func NewVaultStore(blob BlobStore, kv KeyValueStore, logger *logger.Logger) VaultStore {
	logger.Debug().Msg("creating vault store")
	return &vaultStore{blob: blob, kv: kv, logger: logger}
}

// ─── Ciphers ──────────────────────────────────────────────────────────────

// CreateCipher writes a brand-new cipher.
//
// Steps (issued concurrently, order-independent):
//   - step "index-add":  add the id to the advisory index.
//   - step "object-put": write the cipher object.
//
// Crash/failure behavior: if index-add lands and object-put fails, the
// orphan index entry is harmless; sync lists the bucket, not the index,
// and the pruner removes it eventually. If object-put lands and index-add
// fails, the item is fully visible (bucket listing) and a later update
// repairs the index. The object write failing fails the request.
func (v *vaultStore) CreateCipher(ctx context.Context, accountID string, cipher models.Cipher) error {
	data, err := json.Marshal(cipher)
	if err != nil {
		return fmt.Errorf("marshaling cipher: %w", err)
	}

	var indexErr, objectErr error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		indexErr = v.indexAddCipher(ctx, accountID, cipher.ID)
	}()
	go func() {
		defer wg.Done()
		objectErr = v.blob.Put(ctx, cipherKey(accountID, cipher.ID), data)
	}()
	wg.Wait()

	if indexErr != nil {
		// Advisory only; the object decides visibility.
		logger.FromContext(ctx).Err(indexErr).Str("cipherID", cipher.ID).Msg("index-add step failed on cipher create")
	}
	if objectErr != nil {
		return objectErr
	}

	return nil
}

// GetCipher reads one cipher object. The index is not consulted.
func (v *vaultStore) GetCipher(ctx context.Context, accountID, cipherID string) (models.Cipher, error) {
	data, ok, err := v.blob.Get(ctx, cipherKey(accountID, cipherID))
	if err != nil {
		return models.Cipher{}, err
	}
	if !ok {
		return models.Cipher{}, ErrCipherNotFound
	}

	var cipher models.Cipher
	if err = json.Unmarshal(data, &cipher); err != nil {
		return models.Cipher{}, fmt.Errorf("unmarshaling cipher: %w", err)
	}

	return cipher, nil
}

// UpdateCipher rewrites an existing cipher object (also used for soft
// delete and restore, which are plain metadata mutations of the object).
//
// Steps:
//   - step "object-put":   write the object first; this is the commit point.
//   - step "index-repair": add an index entry only when the id was absent
//     before the update began; that distinguishes repairing an
//     upsert-via-update from double-adding on a plain update.
//
// Crash/failure behavior: a crash after object-put leaves a possibly
// missing index entry; harmless, next update repairs it. Index failures
// never fail the request.
func (v *vaultStore) UpdateCipher(ctx context.Context, accountID string, cipher models.Cipher) error {
	data, err := json.Marshal(cipher)
	if err != nil {
		return fmt.Errorf("marshaling cipher: %w", err)
	}

	index, err := v.Index(ctx, accountID)
	indexed := err == nil && index.HasCipher(cipher.ID)

	if err = v.blob.Put(ctx, cipherKey(accountID, cipher.ID), data); err != nil {
		return err
	}

	if !indexed {
		if err = v.indexAddCipher(ctx, accountID, cipher.ID); err != nil {
			logger.FromContext(ctx).Err(err).Str("cipherID", cipher.ID).Msg("index-repair step failed on cipher update")
		}
	}

	return nil
}

// DeleteCipher removes a cipher permanently.
//
// Steps, strictly ordered:
//   - step "object-delete": remove the cipher object. No dependent
//     sub-objects exist for ciphers (attachments are out of scope), so the
//     item object goes first.
//   - step "index-remove":  drop the id from the advisory index, last.
//
// Crash/failure behavior: a crash between the steps leaves a stale index
// entry while the ground truth already shows the item gone; sync never
// returns it, and the pruner removes the leftover. Ordering the index
// removal first would instead risk a live object invisible to write-path
// bookkeeping, which is why the object always goes first.
func (v *vaultStore) DeleteCipher(ctx context.Context, accountID, cipherID string) error {
	if err := v.blob.Delete(ctx, cipherKey(accountID, cipherID)); err != nil {
		return err
	}

	if err := v.indexRemoveCipher(ctx, accountID, cipherID); err != nil {
		logger.FromContext(ctx).Err(err).Str("cipherID", cipherID).Msg("index-remove step failed on cipher delete")
	}

	return nil
}

// ListCiphers returns every cipher of the account straight from the blob
// store (full prefix listing, never the index). Objects that vanish
// between the listing and the read are skipped: a concurrent hard delete
// is not a listing error.
func (v *vaultStore) ListCiphers(ctx context.Context, accountID string) ([]models.Cipher, error) {
	keys, err := v.blob.List(ctx, cipherPrefix(accountID))
	if err != nil {
		return nil, err
	}

	ciphers := make([]models.Cipher, 0, len(keys))
	for _, key := range keys {
		data, ok, err := v.blob.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		var cipher models.Cipher
		if err = json.Unmarshal(data, &cipher); err != nil {
			return nil, fmt.Errorf("unmarshaling cipher at %q: %w", key, err)
		}
		ciphers = append(ciphers, cipher)
	}

	return ciphers, nil
}

// ─── Folders ──────────────────────────────────────────────────────────────

// CreateFolder mirrors CreateCipher: index-add and object-put are
// order-independent, the object write decides success.
func (v *vaultStore) CreateFolder(ctx context.Context, accountID string, folder models.Folder) error {
	data, err := json.Marshal(folder)
	if err != nil {
		return fmt.Errorf("marshaling folder: %w", err)
	}

	var indexErr, objectErr error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		indexErr = v.indexAddFolder(ctx, accountID, folder.ID)
	}()
	go func() {
		defer wg.Done()
		objectErr = v.blob.Put(ctx, folderKey(accountID, folder.ID), data)
	}()
	wg.Wait()

	if indexErr != nil {
		logger.FromContext(ctx).Err(indexErr).Str("folderID", folder.ID).Msg("index-add step failed on folder create")
	}
	if objectErr != nil {
		return objectErr
	}

	return nil
}

// GetFolder reads one folder object.
func (v *vaultStore) GetFolder(ctx context.Context, accountID, folderID string) (models.Folder, error) {
	data, ok, err := v.blob.Get(ctx, folderKey(accountID, folderID))
	if err != nil {
		return models.Folder{}, err
	}
	if !ok {
		return models.Folder{}, ErrFolderNotFound
	}

	var folder models.Folder
	if err = json.Unmarshal(data, &folder); err != nil {
		return models.Folder{}, fmt.Errorf("unmarshaling folder: %w", err)
	}

	return folder, nil
}

// UpdateFolder mirrors UpdateCipher: object first, index repaired after.
func (v *vaultStore) UpdateFolder(ctx context.Context, accountID string, folder models.Folder) error {
	data, err := json.Marshal(folder)
	if err != nil {
		return fmt.Errorf("marshaling folder: %w", err)
	}

	index, err := v.Index(ctx, accountID)
	indexed := err == nil && index.HasFolder(folder.ID)

	if err = v.blob.Put(ctx, folderKey(accountID, folder.ID), data); err != nil {
		return err
	}

	if !indexed {
		if err = v.indexAddFolder(ctx, accountID, folder.ID); err != nil {
			logger.FromContext(ctx).Err(err).Str("folderID", folder.ID).Msg("index-repair step failed on folder update")
		}
	}

	return nil
}

// DeleteFolder removes a folder permanently.
//
// Steps, strictly ordered:
//   - step "unfile-ciphers": clear the FolderID of every cipher still
//     filed under the folder (the dependent sub-objects go first).
//   - step "object-delete":  remove the folder object.
//   - step "index-remove":   drop the id from the advisory index, last.
//
// Crash/failure behavior: a crash after unfile-ciphers leaves a live empty
// folder, which a retry removes. A crash after object-delete leaves only a
// stale index entry, which sync ignores and the pruner collects.
func (v *vaultStore) DeleteFolder(ctx context.Context, accountID, folderID string) error {
	ciphers, err := v.ListCiphers(ctx, accountID)
	if err != nil {
		return err
	}
	for _, cipher := range ciphers {
		if cipher.FolderID != folderID {
			continue
		}
		cipher.FolderID = ""
		if err = v.UpdateCipher(ctx, accountID, cipher); err != nil {
			return err
		}
	}

	if err = v.blob.Delete(ctx, folderKey(accountID, folderID)); err != nil {
		return err
	}

	if err = v.indexRemoveFolder(ctx, accountID, folderID); err != nil {
		logger.FromContext(ctx).Err(err).Str("folderID", folderID).Msg("index-remove step failed on folder delete")
	}

	return nil
}

// ListFolders returns every folder of the account straight from the blob
// store.
func (v *vaultStore) ListFolders(ctx context.Context, accountID string) ([]models.Folder, error) {
	keys, err := v.blob.List(ctx, folderPrefix(accountID))
	if err != nil {
		return nil, err
	}

	folders := make([]models.Folder, 0, len(keys))
	for _, key := range keys {
		data, ok, err := v.blob.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		var folder models.Folder
		if err = json.Unmarshal(data, &folder); err != nil {
			return nil, fmt.Errorf("unmarshaling folder at %q: %w", key, err)
		}
		folders = append(folders, folder)
	}

	return folders, nil
}

// ─── Advisory index ───────────────────────────────────────────────────────

// Index loads the advisory index of an account. A missing key reads as an
// empty index.
func (v *vaultStore) Index(ctx context.Context, accountID string) (models.VaultIndex, error) {
	value, ok, err := v.kv.Get(ctx, indexKeyPrefix+accountID)
	if err != nil {
		return models.VaultIndex{}, err
	}
	if !ok {
		return models.VaultIndex{}, nil
	}

	var index models.VaultIndex
	if err = json.Unmarshal([]byte(value), &index); err != nil {
		return models.VaultIndex{}, fmt.Errorf("unmarshaling vault index: %w", err)
	}

	return index, nil
}

// PruneIndex reconciles the advisory index against the blob store listings,
// dropping entries whose objects are gone. Missing entries for live objects
// are added back as well. Last write wins on the index key; a racing write
// path losing its entry only recreates the pre-prune advisory state, which
// sync ignores either way.
func (v *vaultStore) PruneIndex(ctx context.Context, accountID string) error {
	cipherKeys, err := v.blob.List(ctx, cipherPrefix(accountID))
	if err != nil {
		return err
	}
	folderKeys, err := v.blob.List(ctx, folderPrefix(accountID))
	if err != nil {
		return err
	}

	index, err := v.Index(ctx, accountID)
	if err != nil {
		return err
	}

	fresh := models.VaultIndex{Revision: index.Revision}
	for _, key := range cipherKeys {
		fresh.AddCipher(key[len(cipherPrefix(accountID)):])
	}
	for _, key := range folderKeys {
		fresh.AddFolder(key[len(folderPrefix(accountID)):])
	}

	return v.storeIndex(ctx, accountID, fresh)
}

func (v *vaultStore) storeIndex(ctx context.Context, accountID string, index models.VaultIndex) error {
	data, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("marshaling vault index: %w", err)
	}

	return v.kv.Put(ctx, indexKeyPrefix+accountID, string(data))
}

func (v *vaultStore) indexAddCipher(ctx context.Context, accountID, cipherID string) error {
	index, err := v.Index(ctx, accountID)
	if err != nil {
		return err
	}
	if !index.AddCipher(cipherID) {
		return nil
	}
	index.Revision++

	return v.storeIndex(ctx, accountID, index)
}

func (v *vaultStore) indexRemoveCipher(ctx context.Context, accountID, cipherID string) error {
	index, err := v.Index(ctx, accountID)
	if err != nil {
		return err
	}
	if !index.RemoveCipher(cipherID) {
		return nil
	}
	index.Revision++

	return v.storeIndex(ctx, accountID, index)
}

func (v *vaultStore) indexAddFolder(ctx context.Context, accountID, folderID string) error {
	index, err := v.Index(ctx, accountID)
	if err != nil {
		return err
	}
	if !index.AddFolder(folderID) {
		return nil
	}
	index.Revision++

	return v.storeIndex(ctx, accountID, index)
}

func (v *vaultStore) indexRemoveFolder(ctx context.Context, accountID, folderID string) error {
	index, err := v.Index(ctx, accountID)
	if err != nil {
		return err
	}
	if !index.RemoveFolder(folderID) {
		return nil
	}
	index.Revision++

	return v.storeIndex(ctx, accountID, index)
}
