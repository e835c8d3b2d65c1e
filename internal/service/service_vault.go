package service

import (
	"context"
	"fmt"
	"time"

	"github.com/keyhaven/keyhaven/internal/logger"
	"github.com/keyhaven/keyhaven/internal/push"
	"github.com/keyhaven/keyhaven/internal/store"
	"github.com/keyhaven/keyhaven/internal/utils"
	"github.com/keyhaven/keyhaven/models"
)

// vaultService is the concrete implementation of [VaultService]. Every
// mutation ends with a fire-and-forget push notification; the notification
// path can never fail or roll back the store mutation that triggered it.
type vaultService struct {
	vault  store.VaultStore
	relay  push.Relay
	logger *logger.Logger
}

// NewVaultService constructs a [VaultService].
func NewVaultService(vault store.VaultStore, relay push.Relay, logger *logger.Logger) VaultService {
	return &vaultService{vault: vault, relay: relay, logger: logger}
}

// CreateCipher validates the request, assigns a server-side id, and writes
// the new cipher through the ordered create steps of the vault store.
func (s *vaultService) CreateCipher(ctx context.Context, accountID string, req models.CipherRequest) (models.Cipher, error) {
	if err := validateCipherRequest(req); err != nil {
		return models.Cipher{}, err
	}

	now := time.Now().UTC()
	cipher := cipherFromRequest(req)
	cipher.ID = utils.NewID()
	cipher.CreatedAt = now
	cipher.RevisionDate = now

	if err := s.vault.CreateCipher(ctx, accountID, cipher); err != nil {
		return models.Cipher{}, fmt.Errorf("cipher creation ended with error: %w", err)
	}

	s.notify(ctx, accountID, push.EventCipherCreated, cipher.ID)
	return cipher, nil
}

// GetCipher reads one cipher.
func (s *vaultService) GetCipher(ctx context.Context, accountID, cipherID string) (models.Cipher, error) {
	return s.vault.GetCipher(ctx, accountID, cipherID)
}

// UpdateCipher rewrites an existing cipher, preserving its identity and
// tombstone and bumping the revision.
func (s *vaultService) UpdateCipher(ctx context.Context, accountID, cipherID string, req models.CipherRequest) (models.Cipher, error) {
	if err := validateCipherRequest(req); err != nil {
		return models.Cipher{}, err
	}

	existing, err := s.vault.GetCipher(ctx, accountID, cipherID)
	if err != nil {
		return models.Cipher{}, err
	}

	cipher := cipherFromRequest(req)
	cipher.ID = existing.ID
	cipher.CreatedAt = existing.CreatedAt
	cipher.DeletedAt = existing.DeletedAt
	cipher.RevisionDate = time.Now().UTC()

	if err = s.vault.UpdateCipher(ctx, accountID, cipher); err != nil {
		return models.Cipher{}, fmt.Errorf("cipher update ended with error: %w", err)
	}

	s.notify(ctx, accountID, push.EventCipherUpdated, cipher.ID)
	return cipher, nil
}

// DeleteCipher removes a cipher permanently through the ordered hard-delete
// steps of the vault store.
func (s *vaultService) DeleteCipher(ctx context.Context, accountID, cipherID string) error {
	if _, err := s.vault.GetCipher(ctx, accountID, cipherID); err != nil {
		return err
	}

	if err := s.vault.DeleteCipher(ctx, accountID, cipherID); err != nil {
		return fmt.Errorf("cipher delete ended with error: %w", err)
	}

	s.notify(ctx, accountID, push.EventCipherDeleted, cipherID)
	return nil
}

// SoftDeleteCipher stamps the trash tombstone. A pure metadata mutation of
// the object: the advisory index is not touched. Soft-deleting an already
// trashed cipher refreshes the tombstone timestamp and is not an error.
func (s *vaultService) SoftDeleteCipher(ctx context.Context, accountID, cipherID string) (models.Cipher, error) {
	cipher, err := s.vault.GetCipher(ctx, accountID, cipherID)
	if err != nil {
		return models.Cipher{}, err
	}

	now := time.Now().UTC()
	cipher.DeletedAt = &now
	cipher.RevisionDate = now

	if err = s.vault.UpdateCipher(ctx, accountID, cipher); err != nil {
		return models.Cipher{}, fmt.Errorf("cipher soft delete ended with error: %w", err)
	}

	s.notify(ctx, accountID, push.EventCipherUpdated, cipher.ID)
	return cipher, nil
}

// RestoreCipher clears the trash tombstone. Idempotent: restoring an item
// that is not trashed leaves DeletedAt nil and succeeds.
func (s *vaultService) RestoreCipher(ctx context.Context, accountID, cipherID string) (models.Cipher, error) {
	cipher, err := s.vault.GetCipher(ctx, accountID, cipherID)
	if err != nil {
		return models.Cipher{}, err
	}

	cipher.DeletedAt = nil
	cipher.RevisionDate = time.Now().UTC()

	if err = s.vault.UpdateCipher(ctx, accountID, cipher); err != nil {
		return models.Cipher{}, fmt.Errorf("cipher restore ended with error: %w", err)
	}

	s.notify(ctx, accountID, push.EventCipherUpdated, cipher.ID)
	return cipher, nil
}

// Import settles every folder and cipher of the batch independently. A
// failed item is logged and skipped; the batch never aborts, and the
// result enumerates only items that actually committed.
func (s *vaultService) Import(ctx context.Context, accountID string, req models.ImportRequest) (models.ImportResult, error) {
	log := logger.FromContext(ctx)

	result := models.ImportResult{
		Folders: make([]models.Folder, 0, len(req.Folders)),
		Ciphers: make([]models.Cipher, 0, len(req.Ciphers)),
	}

	// folderIDs maps the request position of each folder to its committed
	// id, so cipher relationships can be resolved even when some folders
	// failed to settle.
	folderIDs := make(map[int]string, len(req.Folders))
	for n, folderReq := range req.Folders {
		folder, err := s.CreateFolder(ctx, accountID, folderReq)
		if err != nil {
			log.Err(err).Int("position", n).Msg("import: folder settlement failed")
			continue
		}
		folderIDs[n] = folder.ID
		result.Folders = append(result.Folders, folder)
	}

	folderByCipher := make(map[int]string, len(req.FolderRelationships))
	for _, rel := range req.FolderRelationships {
		if id, ok := folderIDs[rel.Value]; ok {
			folderByCipher[rel.Key] = id
		}
	}

	for n, cipherReq := range req.Ciphers {
		cipherReq.FolderID = folderByCipher[n]
		cipher, err := s.CreateCipher(ctx, accountID, cipherReq)
		if err != nil {
			log.Err(err).Int("position", n).Msg("import: cipher settlement failed")
			continue
		}
		result.Ciphers = append(result.Ciphers, cipher)
	}

	s.notify(ctx, accountID, push.EventSyncVault, nil)
	return result, nil
}

// CreateFolder validates the request, assigns an id, and writes the folder
// through the ordered create steps.
func (s *vaultService) CreateFolder(ctx context.Context, accountID string, req models.FolderRequest) (models.Folder, error) {
	if req.Name == "" {
		return models.Folder{}, ErrInvalidDataProvided
	}

	folder := models.Folder{
		ID:           utils.NewID(),
		Name:         req.Name,
		RevisionDate: time.Now().UTC(),
	}

	if err := s.vault.CreateFolder(ctx, accountID, folder); err != nil {
		return models.Folder{}, fmt.Errorf("folder creation ended with error: %w", err)
	}

	s.notify(ctx, accountID, push.EventFolderCreated, folder.ID)
	return folder, nil
}

// GetFolder reads one folder.
func (s *vaultService) GetFolder(ctx context.Context, accountID, folderID string) (models.Folder, error) {
	return s.vault.GetFolder(ctx, accountID, folderID)
}

// UpdateFolder renames an existing folder.
func (s *vaultService) UpdateFolder(ctx context.Context, accountID, folderID string, req models.FolderRequest) (models.Folder, error) {
	if req.Name == "" {
		return models.Folder{}, ErrInvalidDataProvided
	}

	folder, err := s.vault.GetFolder(ctx, accountID, folderID)
	if err != nil {
		return models.Folder{}, err
	}

	folder.Name = req.Name
	folder.RevisionDate = time.Now().UTC()

	if err = s.vault.UpdateFolder(ctx, accountID, folder); err != nil {
		return models.Folder{}, fmt.Errorf("folder update ended with error: %w", err)
	}

	s.notify(ctx, accountID, push.EventFolderUpdated, folder.ID)
	return folder, nil
}

// DeleteFolder removes a folder permanently, unfiling its ciphers first
// (the vault store owns the step ordering).
func (s *vaultService) DeleteFolder(ctx context.Context, accountID, folderID string) error {
	if _, err := s.vault.GetFolder(ctx, accountID, folderID); err != nil {
		return err
	}

	if err := s.vault.DeleteFolder(ctx, accountID, folderID); err != nil {
		return fmt.Errorf("folder delete ended with error: %w", err)
	}

	s.notify(ctx, accountID, push.EventFolderDeleted, folderID)
	return nil
}

// notify fans the event out to the account's devices in the background.
// The detached context survives the request; errors are logged and
// swallowed.
func (s *vaultService) notify(ctx context.Context, accountID string, eventType int, payload any) {
	log := logger.FromContext(ctx)
	detached := context.WithoutCancel(ctx)

	go func() {
		if err := s.relay.Notify(detached, accountID, eventType, payload); err != nil {
			log.Err(err).Int("eventType", eventType).Msg("push notification failed")
		}
	}()
}

func validateCipherRequest(req models.CipherRequest) error {
	if req.Name == "" || !models.ValidCipherType(req.Type) {
		return ErrInvalidDataProvided
	}
	return nil
}

func cipherFromRequest(req models.CipherRequest) models.Cipher {
	return models.Cipher{
		Type:       req.Type,
		Name:       req.Name,
		Notes:      req.Notes,
		FolderID:   req.FolderID,
		Favorite:   req.Favorite,
		Login:      req.Login,
		SecureNote: req.SecureNote,
		Card:       req.Card,
		Identity:   req.Identity,
		SSHKey:     req.SSHKey,
		Fields:     req.Fields,
	}
}
