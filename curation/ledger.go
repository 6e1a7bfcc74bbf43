// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package curation

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/curia/models"
)

// Ledger owns the one-vote-per-account-per-suggestion records.
type Ledger struct {
	db       *sql.DB
	resolver *Resolver
}

func NewLedger(db *sql.DB, resolver *Resolver) *Ledger {
	return &Ledger{db: db, resolver: resolver}
}

// VoteResult reports what a cast did.
type VoteResult struct {
	Updated bool // an earlier vote by this account was replaced
	Counts  models.VoteCounts
	Status  string // suggestion status after reevaluation
}

// CastVote records or replaces the account's vote and reevaluates the
// suggestion, all within one transaction. Policy is last-vote-wins: a
// second cast from the same account updates the stored vote in place.
//
// The vote upsert and the status compare-and-set commit together; the
// resolution side effects (catalog mutation, scoring) run after commit
// and are owned by whichever invocation won the transition.
func (l *Ledger) CastVote(ctx context.Context, suggestionID, accountID, vote string) (*VoteResult, error) {
	if vote != models.VoteApprove && vote != models.VoteReject {
		return nil, ErrInvalidVote
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var author, suggestionType string
	err = tx.QueryRowContext(ctx, `
		SELECT author_account_id, type FROM suggestion WHERE id = $1
	`, suggestionID).Scan(&author, &suggestionType)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load suggestion: %w", err)
	}

	// Self-vote is forbidden regardless of suggestion state.
	if author == accountID {
		return nil, ErrSelfVoteForbidden
	}

	// The self-assignment takes the suggestion row lock and rechecks the
	// status in the same statement. Under postgres READ COMMITTED this
	// serializes vote transactions against each other and against the
	// resolution compare-and-set, so a vote cannot commit after resolution
	// and concurrent quorum-crossing votes count each other's rows. Under
	// sqlite the immediate transaction already serializes writers.
	res, err := tx.ExecContext(ctx, `
		UPDATE suggestion SET status = status WHERE id = $1 AND status = 'pending'
	`, suggestionID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock suggestion: %w", err)
	}
	locked, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if locked == 0 {
		return nil, ErrSuggestionNotPending
	}

	var existing string
	err = tx.QueryRowContext(ctx, `
		SELECT vote FROM vote WHERE suggestion_id = $1 AND account_id = $2
	`, suggestionID, accountID).Scan(&existing)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to check existing vote: %w", err)
	}
	updated := err == nil

	// The unique constraint plus ON CONFLICT makes the check-then-write
	// race-free even if two casts from one account interleave.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO vote (id, suggestion_id, account_id, vote, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (suggestion_id, account_id)
		DO UPDATE SET vote = excluded.vote, created_at = excluded.created_at
	`, uuid.NewString(), suggestionID, accountID, vote, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to record vote: %w", err)
	}

	counts, err := countsIn(ctx, tx, suggestionID)
	if err != nil {
		return nil, err
	}

	outcome, won, err := l.resolver.reevaluate(ctx, tx, suggestionID, suggestionType, counts)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit vote: %w", err)
	}

	result := &VoteResult{Updated: updated, Counts: counts, Status: models.StatusPending}
	if outcome != OutcomePending {
		result.Status = outcome.String()
	}

	// This invocation won the pending→terminal transition, so it owns the
	// side effects. They run against the now-immutable suggestion and are
	// idempotent, so a failure here is retryable without re-resolving.
	if won {
		if err := l.resolver.Finalize(ctx, suggestionID); err != nil {
			slog.Error("resolution side effects failed; suggestion remains resolved",
				"suggestion_id", suggestionID, "outcome", outcome.String(), "error", err)
		}
	}

	return result, nil
}

// CountsFor aggregates approve/reject totals for a suggestion.
func (l *Ledger) CountsFor(ctx context.Context, suggestionID string) (models.VoteCounts, error) {
	return countsIn(ctx, l.db, suggestionID)
}

// HasVoted reports whether the account voted, and with which value.
func (l *Ledger) HasVoted(ctx context.Context, suggestionID, accountID string) (string, bool, error) {
	var vote string
	err := l.db.QueryRowContext(ctx, `
		SELECT vote FROM vote WHERE suggestion_id = $1 AND account_id = $2
	`, suggestionID, accountID).Scan(&vote)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to check vote: %w", err)
	}
	return vote, true, nil
}

// querier covers *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func countsIn(ctx context.Context, q querier, suggestionID string) (models.VoteCounts, error) {
	var counts models.VoteCounts
	err := q.QueryRowContext(ctx, `
		SELECT
			COUNT(CASE WHEN vote = 'approve' THEN 1 END),
			COUNT(CASE WHEN vote = 'reject' THEN 1 END)
		FROM vote WHERE suggestion_id = $1
	`, suggestionID).Scan(&counts.Approve, &counts.Reject)
	if err != nil {
		return counts, fmt.Errorf("failed to count votes: %w", err)
	}
	return counts, nil
}
