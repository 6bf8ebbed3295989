package workers

import (
	"context"

	"github.com/qrypta/vaultcore/internal/config"
	"github.com/qrypta/vaultcore/internal/logger"
	"github.com/qrypta/vaultcore/internal/store"
)

type Workers struct {
	workers []Worker
}

// NewWorkers wires every background worker of the vault core.
func NewWorkers(ctx context.Context, storages *store.Storages, cfg *config.StructuredConfig, log *logger.Logger) *Workers {
	return &Workers{
		workers: []Worker{
			NewPairingSweeper(ctx, storages.Pairings, cfg.Pairing.SweepInterval, log),
		},
	}
}

func (w *Workers) Run() {
	for _, worker := range w.workers {
		worker.Run()
	}
}
