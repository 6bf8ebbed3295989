package workers

import (
	"context"
	"time"

	"github.com/qrypta/vaultcore/internal/logger"
	"github.com/qrypta/vaultcore/internal/store"
)

// PairingSweeper periodically deletes expired PENDING pairing sessions.
// Expiry is always re-checked on use, so the sweep is garbage collection
// rather than a security boundary.
type PairingSweeper struct {
	ctx      context.Context
	pairings store.PairingRepository
	interval time.Duration

	now func() time.Time

	logger *logger.Logger
}

// NewPairingSweeper constructs the sweeper. Run starts it; it stops when ctx
// is cancelled.
func NewPairingSweeper(ctx context.Context, pairings store.PairingRepository, interval time.Duration, log *logger.Logger) *PairingSweeper {
	return &PairingSweeper{
		ctx:      ctx,
		pairings: pairings,
		interval: interval,
		now:      time.Now,
		logger:   log,
	}
}

// Run spawns the sweep loop and returns immediately.
func (s *PairingSweeper) Run() {
	go s.loop()
}

func (s *PairingSweeper) loop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Debug().Msg("pairing sweeper stopped")
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *PairingSweeper) sweep() {
	swept, err := s.pairings.DeleteExpired(s.ctx, s.now().UTC())
	if err != nil {
		s.logger.Err(err).Str("func", "PairingSweeper.sweep").Msg("failed to sweep expired pairing sessions")
		return
	}
	if swept > 0 {
		s.logger.Debug().Int64("swept", swept).Msg("removed expired pairing sessions")
	}
}
