// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/danielhkuo/curia/curation"
)

// Scheduler runs the background maintenance jobs. Resolution itself is
// purely reactive to votes; these jobs only repair aftermath:
//
//   - score rebuild: recompute contribution_score from the event ledger,
//     healing any drift (nightly)
//   - finalize sweep: resolve suggestions stuck pending at quorum and
//     re-run side effects for resolved suggestions whose scoring never
//     landed, e.g. after a crash mid-resolution (hourly)
type Scheduler struct {
	cron   *cron.Cron
	engine *curation.Engine
}

func NewScheduler(engine *curation.Engine) *Scheduler {
	return &Scheduler{cron: cron.New(), engine: engine}
}

// Start registers and launches the jobs. Safe to call once.
func (s *Scheduler) Start(ctx context.Context) {
	s.cron.AddFunc("0 3 * * *", func() {
		n, err := s.engine.Scorer.Rebuild(ctx)
		if err != nil {
			slog.Error("score rebuild failed", "error", err)
			return
		}
		slog.Info("score rebuild completed", "accounts", n)
	})

	s.cron.AddFunc("30 * * * *", func() {
		n, err := s.engine.Resolver.SweepUnfinalized(ctx)
		if err != nil {
			slog.Error("finalize sweep failed", "error", err)
			return
		}
		if n > 0 {
			slog.Info("finalize sweep repaired suggestions", "count", n)
		}
	})

	s.cron.Start()
	slog.Info("maintenance scheduler started")
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	slog.Info("maintenance scheduler stopped")
}
