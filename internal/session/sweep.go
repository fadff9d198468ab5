package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/decoykit/scamtrap/internal/report"
)

// RunSweeper evicts idle sessions until ctx is cancelled. A session that was
// never concluded still gets its terminal callback, best effort, before
// removal; the alreadyNotified flag keeps the exactly-once guarantee shared
// with explicit conclusion.
func (s *Store) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep runs one eviction pass. Exported for tests and on-demand cleanup.
func (s *Store) Sweep() {
	now := s.now()
	var pending []report.Report

	for _, sh := range s.shards {
		sh.mu.Lock()
		for id, rec := range sh.records {
			if now.Sub(rec.lastActivity) <= s.cfg.IdleTimeout {
				continue
			}
			if !rec.Concluded {
				if rep := s.concludeLocked(rec); rep != nil {
					pending = append(pending, *rep)
				}
			}
			delete(sh.records, id)
			s.logger.Info("session evicted",
				slog.String("session_id", id),
				slog.Int("turns", rec.TurnCount),
			)
		}
		sh.mu.Unlock()
	}

	for _, rep := range pending {
		s.dispatch(rep)
	}
}
