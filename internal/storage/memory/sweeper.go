package memory

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper periodically reclaims expired entries.
type Sweeper struct {
	ks       *Keyspace
	interval time.Duration
	logger   *slog.Logger
}

// NewSweeper creates a sweeper. An interval <= 0 disables it.
func NewSweeper(ks *Keyspace, interval time.Duration, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		ks:       ks,
		interval: interval,
		logger:   logger.With("component", "sweeper"),
	}
}

// Run sweeps on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.ks.DeleteExpired(); n > 0 {
				s.logger.Debug("expired keys reclaimed", "count", n, "keys", s.ks.Len())
			}
		case <-ctx.Done():
			return
		}
	}
}
