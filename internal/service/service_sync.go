package service

import (
	"context"
	"fmt"
	"time"

	"github.com/keyhaven/keyhaven/internal/logger"
	"github.com/keyhaven/keyhaven/internal/store"
	"github.com/keyhaven/keyhaven/models"
)

// syncService is the concrete implementation of [SyncService].
//
// Sync reads come straight from the object store listings. The advisory
// index exists only for the write path's membership checks and is never
// consulted here, so a stale index can delay nothing and hide nothing.
type syncService struct {
	accounts store.AccountStore
	vault    store.VaultStore
	profiles AccountService
	logger   *logger.Logger
}

// NewSyncService constructs a [SyncService]. The profile projection is
// delegated to the account service so the two endpoints that return a
// profile can never drift apart.
func NewSyncService(accounts store.AccountStore, vault store.VaultStore, profiles AccountService, logger *logger.Logger) SyncService {
	return &syncService{accounts: accounts, vault: vault, profiles: profiles, logger: logger}
}

// Sync composes the full vault payload for an account.
func (s *syncService) Sync(ctx context.Context, account models.Account) (models.SyncResponse, error) {
	ciphers, err := s.vault.ListCiphers(ctx, account.ID)
	if err != nil {
		return models.SyncResponse{}, fmt.Errorf("sync: listing ciphers failed: %w", err)
	}

	folders, err := s.vault.ListFolders(ctx, account.ID)
	if err != nil {
		return models.SyncResponse{}, fmt.Errorf("sync: listing folders failed: %w", err)
	}

	resp := models.SyncResponse{
		Profile: s.profiles.Profile(ctx, account),
		Folders: make([]models.FolderView, 0, len(folders)),
		Ciphers: make([]models.CipherView, 0, len(ciphers)),
		Domains: s.Domains(ctx, account),
		Object:  "sync",
	}
	for _, folder := range folders {
		resp.Folders = append(resp.Folders, models.NewFolderView(folder))
	}
	for _, cipher := range ciphers {
		resp.Ciphers = append(resp.Ciphers, models.NewCipherView(cipher))
	}

	return resp, nil
}

// Domains merges the account's own equivalence groups with the static
// global table, flagging globally excluded groups.
func (s *syncService) Domains(_ context.Context, account models.Account) models.DomainsView {
	excluded := make(map[int]bool, len(account.ExcludedGlobals))
	for _, t := range account.ExcludedGlobals {
		excluded[t] = true
	}

	view := models.DomainsView{
		EquivalentDomains:       account.EquivalentDomains,
		GlobalEquivalentDomains: make([]models.GlobalDomainGroup, 0, len(models.GlobalEquivalentDomains)),
		Object:                  "domains",
	}
	if view.EquivalentDomains == nil {
		view.EquivalentDomains = [][]string{}
	}
	for _, entry := range models.GlobalEquivalentDomains {
		view.GlobalEquivalentDomains = append(view.GlobalEquivalentDomains, models.GlobalDomainGroup{
			Type:     entry.Type,
			Domains:  entry.Domains,
			Excluded: excluded[entry.Type],
		})
	}

	return view
}

// UpdateDomains replaces the account's equivalence preferences and returns
// the resulting view. Unknown global type ids in the exclusion list are
// stored as-is and simply match nothing.
func (s *syncService) UpdateDomains(ctx context.Context, account models.Account, req models.DomainsRequest) (models.DomainsView, error) {
	account.EquivalentDomains = req.EquivalentDomains
	account.ExcludedGlobals = req.ExcludedGlobalEquivalentDomains
	account.UpdatedAt = time.Now().UTC()

	if err := s.accounts.UpdateAccount(ctx, account); err != nil {
		return models.DomainsView{}, fmt.Errorf("domains update failed: %w", err)
	}

	return s.Domains(ctx, account), nil
}
