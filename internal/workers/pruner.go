package workers

import (
	"context"
	"strings"
	"time"

	"github.com/keyhaven/keyhaven/internal/logger"
	"github.com/keyhaven/keyhaven/internal/store"
)

// indexPruner periodically rebuilds each account's advisory vault index
// from the object store listings, dropping entries whose objects are gone.
//
// Pruning is pure hygiene: reads never consult the index and writes
// self-heal stale entries, so the pruner running late, not at all, or twice
// concurrently changes nothing observable.
type indexPruner struct {
	blob     store.BlobStore
	vault    store.VaultStore
	interval time.Duration
	logger   *logger.Logger
}

func newIndexPruner(blob store.BlobStore, vault store.VaultStore, interval time.Duration, logger *logger.Logger) *indexPruner {
	return &indexPruner{blob: blob, vault: vault, interval: interval, logger: logger}
}

func (p *indexPruner) Run() {
	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for range ticker.C {
			p.pruneAll(context.Background())
		}
	}()
}

// pruneAll enumerates accounts from the object-store key layout
// (vaults/<accountID>/...) and prunes each one. Accounts with an empty
// vault have no objects to enumerate and nothing left in their index worth
// pruning beyond what their next write repairs.
func (p *indexPruner) pruneAll(ctx context.Context) {
	keys, err := p.blob.List(ctx, "vaults/")
	if err != nil {
		p.logger.Err(err).Msg("index pruner: listing vault objects failed")
		return
	}

	accounts := make(map[string]struct{})
	for _, key := range keys {
		parts := strings.Split(key, "/")
		if len(parts) >= 2 && parts[1] != "" {
			accounts[parts[1]] = struct{}{}
		}
	}

	for accountID := range accounts {
		if err = p.vault.PruneIndex(ctx, accountID); err != nil {
			p.logger.Err(err).Str("accountID", accountID).Msg("index pruner: prune failed")
		}
	}

	p.logger.Debug().Int("accounts", len(accounts)).Msg("index prune pass finished")
}
