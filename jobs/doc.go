// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package jobs schedules background maintenance for the curation engine.

Two cron jobs, neither on the hot path:

  - Nightly score rebuild (03:00): recomputes every contribution_score
    row from the append-only event ledger. The steady state only updates
    scores incrementally; this is the repair tool for drift.
  - Hourly finalize sweep (:30): resolves suggestions left pending with
    their vote margin at quorum, and replays side effects for resolved
    suggestions whose scoring never completed. Replays are idempotent.

Usage:

	scheduler := jobs.NewScheduler(engine)
	scheduler.Start(ctx)
	defer scheduler.Stop()
*/
package jobs
