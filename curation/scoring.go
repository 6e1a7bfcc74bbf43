// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package curation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/curia/cliparse"
	"github.com/danielhkuo/curia/models"
)

// Scorer maintains the append-only contribution ledger and the running
// score rows derived from it.
type Scorer struct {
	db  *sql.DB
	cfg cliparse.Config
	now func() time.Time // injectable for month-boundary tests
}

func NewScorer(db *sql.DB, cfg cliparse.Config) *Scorer {
	return &Scorer{db: db, cfg: cfg, now: func() time.Time { return time.Now().UTC() }}
}

// monthKey buckets a timestamp into the calendar month scores track.
func monthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// RecordOutcome emits the contribution events for a resolved suggestion:
// one for the author (+approve points or -reject points) and one
// vote_matched event per voter whose vote matches the outcome. Voters on
// the losing side receive nothing.
//
// Events are keyed by (account, suggestion, type); a replayed call inserts
// nothing and leaves scores untouched, so duplicate delivery is safe.
func (s *Scorer) RecordOutcome(ctx context.Context, sugg *models.Suggestion, outcome Outcome) error {
	var authorEvent string
	var authorPoints int
	var matchingVote string

	switch outcome {
	case OutcomeApproved:
		authorEvent = models.EventSuggestionApproved
		authorPoints = s.cfg.AuthorApprovePoints
		matchingVote = models.VoteApprove
	case OutcomeRejected:
		authorEvent = models.EventSuggestionRejected
		authorPoints = -s.cfg.AuthorRejectPoints
		matchingVote = models.VoteReject
	default:
		return fmt.Errorf("cannot score a pending suggestion %s", sugg.ID)
	}

	// Votes are frozen once the suggestion is terminal, so reading them
	// outside the resolution transaction is safe.
	voters, err := s.matchingVoters(ctx, sugg.ID, matchingVote)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin scoring transaction: %w", err)
	}
	defer tx.Rollback()

	at := s.now()
	if err := s.insertEvent(ctx, tx, sugg.AuthorAccountID, sugg.ID, authorEvent, authorPoints, at); err != nil {
		return err
	}
	for _, voter := range voters {
		if err := s.insertEvent(ctx, tx, voter, sugg.ID, models.EventVoteMatched, s.cfg.VoterMatchPoints, at); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit scoring: %w", err)
	}
	return nil
}

func (s *Scorer) matchingVoters(ctx context.Context, suggestionID, vote string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT account_id FROM vote
		WHERE suggestion_id = $1 AND vote = $2
		ORDER BY account_id
	`, suggestionID, vote)
	if err != nil {
		return nil, fmt.Errorf("failed to load matching voters: %w", err)
	}
	defer rows.Close()

	var voters []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan voter: %w", err)
		}
		voters = append(voters, id)
	}
	return voters, rows.Err()
}

// insertEvent appends one ledger event and folds its points into the score
// row. The unique (account, suggestion, type) constraint makes the insert
// idempotent; the score update only happens when the insert landed.
func (s *Scorer) insertEvent(ctx context.Context, tx *sql.Tx, accountID, suggestionID, eventType string, points int, at time.Time) error {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO contribution_event (id, account_id, suggestion_id, event_type, points, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (account_id, suggestion_id, event_type) DO NOTHING
	`, uuid.NewString(), accountID, suggestionID, eventType, points, at)
	if err != nil {
		return fmt.Errorf("failed to insert contribution event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		// Event already recorded; never double-award.
		return nil
	}
	return s.applyToScore(ctx, tx, accountID, points, at)
}

// applyToScore folds points into the running totals. allTimeScore always
// accumulates; monthlyScore accumulates only while the row's tracked month
// matches the event's month, and otherwise rolls over to start the new
// month at the event's own value.
func (s *Scorer) applyToScore(ctx context.Context, tx *sql.Tx, accountID string, points int, at time.Time) error {
	mk := monthKey(at)
	_, err := tx.ExecContext(ctx, `
		INSERT INTO contribution_score (account_id, monthly_score, all_time_score, month_key, updated_at)
		VALUES ($1, $2, $2, $3, $4)
		ON CONFLICT (account_id) DO UPDATE SET
			all_time_score = contribution_score.all_time_score + $2,
			monthly_score = CASE WHEN contribution_score.month_key = $3
				THEN contribution_score.monthly_score + $2
				ELSE $2 END,
			month_key = $3,
			updated_at = $4
	`, accountID, points, mk, at)
	if err != nil {
		return fmt.Errorf("failed to update contribution score: %w", err)
	}
	return nil
}

// Rebuild recomputes every score row from the full event ledger. This is
// the operational repair path, not the hot path: the steady state only
// ever updates incrementally. Returns the number of accounts written.
func (s *Scorer) Rebuild(ctx context.Context) (int, error) {
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonth := monthStart.AddDate(0, 1, 0)

	rows, err := s.db.QueryContext(ctx, `
		SELECT account_id,
			COALESCE(SUM(points), 0),
			COALESCE(SUM(CASE WHEN created_at >= $1 AND created_at < $2 THEN points ELSE 0 END), 0)
		FROM contribution_event
		GROUP BY account_id
	`, monthStart, nextMonth)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate events: %w", err)
	}
	defer rows.Close()

	type total struct {
		account string
		allTime int
		monthly int
	}
	var totals []total
	for rows.Next() {
		var t total
		if err := rows.Scan(&t.account, &t.allTime, &t.monthly); err != nil {
			return 0, fmt.Errorf("failed to scan totals: %w", err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin rebuild transaction: %w", err)
	}
	defer tx.Rollback()

	mk := monthKey(now)
	for _, t := range totals {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO contribution_score (account_id, monthly_score, all_time_score, month_key, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (account_id) DO UPDATE SET
				monthly_score = $2,
				all_time_score = $3,
				month_key = $4,
				updated_at = $5
		`, t.account, t.monthly, t.allTime, mk, now)
		if err != nil {
			return 0, fmt.Errorf("failed to rewrite score for %s: %w", t.account, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit rebuild: %w", err)
	}
	return len(totals), nil
}
