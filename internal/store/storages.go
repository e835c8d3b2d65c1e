package store

import (
	"context"
	"database/sql"

	"github.com/keyhaven/keyhaven/internal/config"
	"github.com/keyhaven/keyhaven/internal/logger"
	"github.com/keyhaven/keyhaven/migrations"
)

// Storages bundles the storage-layer implementations handed to the service
// layer.
type Storages struct {
	KV           KeyValueStore
	Blob         BlobStore
	AccountStore AccountStore
	VaultStore   VaultStore
}

// NewStorages wires the storage layer from configuration.
//
// An empty KV DSN selects the in-memory key-value store, an empty blob
// bucket the in-memory blob store; both fallbacks exist for single-instance
// and test deployments. When Postgres is configured the goose migrations
// run before the store is handed out.
func NewStorages(ctx context.Context, cfg config.Storage, log *logger.Logger) (*Storages, error) {
	var kv KeyValueStore
	var db *sql.DB
	var err error

	if cfg.KV.DSN != "" {
		kv, db, err = NewPostgresKV(ctx, cfg.KV.DSN, log)
		if err != nil {
			return nil, err
		}
		if err = migrations.Migrate(db); err != nil {
			return nil, err
		}
	} else {
		log.Warn().Msg("no key-value store DSN configured, using in-memory store")
		kv = NewMemoryKV()
	}

	var blob BlobStore
	if cfg.Blob.Bucket != "" {
		blob, err = NewS3Blob(ctx, cfg.Blob, log)
		if err != nil {
			return nil, err
		}
	} else {
		log.Warn().Msg("no blob store bucket configured, using in-memory store")
		blob = NewMemoryBlob()
	}

	return &Storages{
		KV:           kv,
		Blob:         blob,
		AccountStore: NewAccountStore(kv, log),
		VaultStore:   NewVaultStore(blob, kv, log),
	}, nil
}
