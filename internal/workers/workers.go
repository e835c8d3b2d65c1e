package workers

import (
	"github.com/keyhaven/keyhaven/internal/config"
	"github.com/keyhaven/keyhaven/internal/logger"
	"github.com/keyhaven/keyhaven/internal/store"
)

type Workers struct {
	workers []Worker
}

// NewWorkers assembles the background maintenance workers from
// configuration. A zero prune interval leaves the pruner out entirely.
func NewWorkers(storages *store.Storages, cfg config.Workers, logger *logger.Logger) *Workers {
	w := &Workers{}

	if cfg.PruneInterval > 0 {
		w.workers = append(w.workers, newIndexPruner(storages.Blob, storages.VaultStore, cfg.PruneInterval, logger))
	}

	return w
}

func (w *Workers) Run() {
	for _, worker := range w.workers {
		worker.Run()
	}
}
