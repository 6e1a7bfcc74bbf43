// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package curation

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/danielhkuo/curia/cliparse"
	"github.com/danielhkuo/curia/models"
)

// Resolver drives the suggestion state machine:
//
//	pending --[threshold crossed]--> approved | rejected (terminal)
//
// The transition is a conditional write: UPDATE ... WHERE status='pending'.
// Whichever invocation's update lands owns the side effects; everyone else
// sees zero rows affected and backs off silently.
type Resolver struct {
	db      *sql.DB
	cfg     cliparse.Config
	applier *Applier
	scorer  *Scorer
}

func NewResolver(db *sql.DB, cfg cliparse.Config, applier *Applier, scorer *Scorer) *Resolver {
	return &Resolver{db: db, cfg: cfg, applier: applier, scorer: scorer}
}

// policyFor returns the resolution policy for a suggestion type. All types
// share the configured quorum today; a per-type override would land here.
func (r *Resolver) policyFor(suggestionType string) Policy {
	return Policy{Quorum: r.cfg.Quorum}
}

// reevaluate runs inside the caller's transaction. It rechecks the status,
// decides the outcome from counts, and attempts the compare-and-set
// transition. Returns the outcome and whether this call won the transition.
func (r *Resolver) reevaluate(ctx context.Context, tx *sql.Tx, suggestionID, suggestionType string, counts models.VoteCounts) (Outcome, bool, error) {
	outcome := Decide(counts, r.policyFor(suggestionType))
	if outcome == OutcomePending {
		return OutcomePending, false, nil
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE suggestion SET status = $1, resolved_at = $2
		WHERE id = $3 AND status = 'pending'
	`, outcome.String(), time.Now().UTC(), suggestionID)
	if err != nil {
		return outcome, false, fmt.Errorf("failed to transition suggestion: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return outcome, false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		// Lost the race; the concurrent resolver owns the side effects.
		return outcome, false, nil
	}
	return outcome, true, nil
}

// Reevaluate is the standalone entry point: it recomputes counts and
// attempts resolution in its own transaction, then runs side effects if it
// won. Already-resolved suggestions are a no-op.
func (r *Resolver) Reevaluate(ctx context.Context, suggestionID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var status, suggestionType string
	err = tx.QueryRowContext(ctx, `
		SELECT status, type FROM suggestion WHERE id = $1
	`, suggestionID).Scan(&status, &suggestionType)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load suggestion: %w", err)
	}
	if status != models.StatusPending {
		return nil
	}

	// Same locking trick as CastVote: hold the row while counting so a
	// concurrently committing vote cannot slip between count and transition.
	res, err := tx.ExecContext(ctx, `
		UPDATE suggestion SET status = status WHERE id = $1 AND status = 'pending'
	`, suggestionID)
	if err != nil {
		return fmt.Errorf("failed to lock suggestion: %w", err)
	}
	if locked, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	} else if locked == 0 {
		// Resolved between the read and the lock; nothing to do.
		return nil
	}

	counts, err := countsIn(ctx, tx, suggestionID)
	if err != nil {
		return err
	}

	_, won, err := r.reevaluate(ctx, tx, suggestionID, suggestionType, counts)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit resolution: %w", err)
	}

	if won {
		return r.Finalize(ctx, suggestionID)
	}
	return nil
}

// Finalize runs the post-transition side effects for a resolved
// suggestion: the catalog mutation (approved only), then contribution
// scoring. Both are idempotent against the terminal suggestion, so
// Finalize may be called again after a crash or failure; retries use
// exponential backoff before surfacing an operational error.
func (r *Resolver) Finalize(ctx context.Context, suggestionID string) error {
	s, err := loadSuggestion(ctx, r.db, suggestionID)
	if err != nil {
		return err
	}
	if s.Status == models.StatusPending {
		return fmt.Errorf("suggestion %s is not resolved", suggestionID)
	}

	outcome := OutcomeRejected
	if s.Status == models.StatusApproved {
		outcome = OutcomeApproved
	}

	op := func() error {
		if outcome == OutcomeApproved {
			if err := r.applier.Apply(ctx, s); err != nil {
				slog.Warn("catalog mutation failed, will retry",
					"suggestion_id", s.ID, "type", s.Type, "error", err)
				return err
			}
		}
		if err := r.scorer.RecordOutcome(ctx, s, outcome); err != nil {
			slog.Warn("contribution scoring failed, will retry",
				"suggestion_id", s.ID, "error", err)
			return err
		}
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return fmt.Errorf("side effects for suggestion %s: %w", s.ID, err)
	}

	slog.Info("suggestion resolved",
		"suggestion_id", s.ID, "type", s.Type, "outcome", outcome.String())
	return nil
}

// SweepUnfinalized repairs the two failure modes resolution can leave
// behind: suggestions stuck pending although their committed net vote
// margin already reached quorum (votes raced, neither caster saw the
// crossing), and resolved suggestions whose author contribution event
// never landed (a crash between the status commit and the scoring
// commit). Returns how many suggestions were repaired.
func (r *Resolver) SweepUnfinalized(ctx context.Context) (int, error) {
	repaired := 0

	// All types share the configured quorum, so one threshold filters the
	// scan; Reevaluate recounts and applies the per-type policy itself.
	stuck, err := r.collectIDs(ctx, `
		SELECT s.id FROM suggestion s
		WHERE s.status = 'pending'
		AND ABS((
			SELECT COUNT(CASE WHEN v.vote = 'approve' THEN 1 END) -
				COUNT(CASE WHEN v.vote = 'reject' THEN 1 END)
			FROM vote v WHERE v.suggestion_id = s.id
		)) >= $1
	`, r.cfg.Quorum)
	if err != nil {
		return 0, fmt.Errorf("failed to find stuck suggestions: %w", err)
	}
	for _, id := range stuck {
		if err := r.Reevaluate(ctx, id); err != nil {
			slog.Error("failed to resolve stuck suggestion", "suggestion_id", id, "error", err)
			continue
		}
		repaired++
	}

	unfinalized, err := r.collectIDs(ctx, `
		SELECT s.id FROM suggestion s
		WHERE s.status != 'pending'
		AND NOT EXISTS (
			SELECT 1 FROM contribution_event e
			WHERE e.suggestion_id = s.id AND e.account_id = s.author_account_id
		)
	`)
	if err != nil {
		return repaired, fmt.Errorf("failed to find unfinalized suggestions: %w", err)
	}
	for _, id := range unfinalized {
		if err := r.Finalize(ctx, id); err != nil {
			slog.Error("failed to repair suggestion side effects", "suggestion_id", id, "error", err)
			continue
		}
		repaired++
	}
	return repaired, nil
}

func (r *Resolver) collectIDs(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan suggestion id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func loadSuggestion(ctx context.Context, q querier, id string) (*models.Suggestion, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, type, payload, dedupe_key, author_account_id,
			target_ecosystem_id, target_package_id, status, created_at, resolved_at
		FROM suggestion WHERE id = $1
	`, id)
	return scanSuggestion(row)
}
