// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package curation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/curia/cliparse"
	"github.com/danielhkuo/curia/models"
)

// Leaderboard is a read-only projection over contribution_score. No side
// effects; always computed from current committed state.
type Leaderboard struct {
	db  *sql.DB
	cfg cliparse.Config
	now func() time.Time
}

func NewLeaderboard(db *sql.DB, cfg cliparse.Config) *Leaderboard {
	return &Leaderboard{db: db, cfg: cfg, now: func() time.Time { return time.Now().UTC() }}
}

// Top returns the ranked top rows for a period, sorted descending by the
// period's score with ties broken by account id for determinism. The limit
// is clamped to the configured board size.
func (b *Leaderboard) Top(ctx context.Context, period string, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 || limit > b.cfg.LeaderboardSize {
		limit = b.cfg.LeaderboardSize
	}

	var rows *sql.Rows
	var err error
	switch period {
	case models.PeriodMonthly:
		// Score rows roll lazily at write time; a row whose tracked month
		// is stale holds last month's total and counts as zero now.
		rows, err = b.db.QueryContext(ctx, `
			SELECT account_id, monthly_score FROM contribution_score
			WHERE month_key = $1
			ORDER BY monthly_score DESC, account_id ASC
			LIMIT $2
		`, monthKey(b.now()), limit)
	case models.PeriodAllTime:
		rows, err = b.db.QueryContext(ctx, `
			SELECT account_id, all_time_score FROM contribution_score
			ORDER BY all_time_score DESC, account_id ASC
			LIMIT $1
		`, limit)
	default:
		return nil, fmt.Errorf("unknown leaderboard period %q", period)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.AccountID, &e.Score); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		e.Rank = len(entries) + 1
		e.RankLabel = humanize.Ordinal(e.Rank)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RankOf returns the account's 1-based rank for a period, or nil when the
// account falls outside the materialized board (or has no score at all).
func (b *Leaderboard) RankOf(ctx context.Context, accountID, period string) (*int, error) {
	score, err := b.ScoreFor(ctx, accountID)
	if err != nil {
		return nil, err
	}

	var rank int
	switch period {
	case models.PeriodMonthly:
		if score.MonthKey != monthKey(b.now()) {
			return nil, nil // nothing scored this month
		}
		err = b.db.QueryRowContext(ctx, `
			SELECT COUNT(*) + 1 FROM contribution_score
			WHERE month_key = $1
			AND (monthly_score > $2 OR (monthly_score = $2 AND account_id < $3))
		`, score.MonthKey, score.MonthlyScore, accountID).Scan(&rank)
	case models.PeriodAllTime:
		if score.UpdatedAt.IsZero() {
			return nil, nil // never scored
		}
		err = b.db.QueryRowContext(ctx, `
			SELECT COUNT(*) + 1 FROM contribution_score
			WHERE all_time_score > $1 OR (all_time_score = $1 AND account_id < $2)
		`, score.AllTimeScore, accountID).Scan(&rank)
	default:
		return nil, fmt.Errorf("unknown leaderboard period %q", period)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to compute rank: %w", err)
	}

	if rank > b.cfg.LeaderboardSize {
		return nil, nil
	}
	return &rank, nil
}

// ScoreFor returns the account's score row. Accounts that never scored get
// a zero-valued row rather than an error.
func (b *Leaderboard) ScoreFor(ctx context.Context, accountID string) (*models.ContributionScore, error) {
	score := &models.ContributionScore{AccountID: accountID}
	err := b.db.QueryRowContext(ctx, `
		SELECT monthly_score, all_time_score, month_key, updated_at
		FROM contribution_score WHERE account_id = $1
	`, accountID).Scan(&score.MonthlyScore, &score.AllTimeScore, &score.MonthKey, &score.UpdatedAt)
	if err == sql.ErrNoRows {
		return score, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load score: %w", err)
	}

	// A stale tracked month means nothing scored this month yet.
	if score.MonthKey != monthKey(b.now()) {
		score.MonthlyScore = 0
	}
	return score, nil
}
