// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
//
// The SQL sticks to the dialect subset shared by SQLite and PostgreSQL:
// timestamps are always written explicitly by the application, uniqueness
// is enforced by constraints rather than partial indexes, and upserts use
// ON CONFLICT (supported by both drivers).
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Entity store: the catalog the curation engine mutates on approval

CREATE TABLE IF NOT EXISTS ecosystem (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    description TEXT,
    website TEXT,
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS package (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    description TEXT,
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS tag (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    description TEXT,
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS package_tag (
    package_id TEXT NOT NULL REFERENCES package(id) ON DELETE CASCADE,
    tag_id TEXT NOT NULL REFERENCES tag(id) ON DELETE CASCADE,
    PRIMARY KEY (package_id, tag_id)
);

CREATE TABLE IF NOT EXISTS ecosystem_package (
    ecosystem_id TEXT NOT NULL REFERENCES ecosystem(id) ON DELETE CASCADE,
    package_id TEXT NOT NULL REFERENCES package(id) ON DELETE CASCADE,
    PRIMARY KEY (ecosystem_id, package_id)
);

-- Suggestions

CREATE TABLE IF NOT EXISTS suggestion (
    id TEXT PRIMARY KEY,
    type TEXT NOT NULL CHECK (type IN ('add_tag', 'add_ecosystem_package', 'create_ecosystem', 'create_tag')),
    payload TEXT NOT NULL,
    dedupe_key TEXT NOT NULL,
    author_account_id TEXT NOT NULL,
    target_ecosystem_id TEXT,
    target_package_id TEXT,
    status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
    created_at TIMESTAMP NOT NULL,
    resolved_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_suggestion_status ON suggestion(status);
CREATE INDEX IF NOT EXISTS idx_suggestion_dedupe ON suggestion(type, dedupe_key, status);
CREATE INDEX IF NOT EXISTS idx_suggestion_target_eco ON suggestion(target_ecosystem_id);
CREATE INDEX IF NOT EXISTS idx_suggestion_target_pkg ON suggestion(target_package_id);

-- Votes: one row per (suggestion, account), last vote wins

CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    suggestion_id TEXT NOT NULL REFERENCES suggestion(id) ON DELETE CASCADE,
    account_id TEXT NOT NULL,
    vote TEXT NOT NULL CHECK (vote IN ('approve', 'reject')),
    created_at TIMESTAMP NOT NULL,
    UNIQUE (suggestion_id, account_id)
);

CREATE INDEX IF NOT EXISTS idx_vote_suggestion ON vote(suggestion_id);

-- Contribution ledger: append-only, idempotent per (account, suggestion, type)

CREATE TABLE IF NOT EXISTS contribution_event (
    id TEXT PRIMARY KEY,
    account_id TEXT NOT NULL,
    suggestion_id TEXT NOT NULL REFERENCES suggestion(id) ON DELETE CASCADE,
    event_type TEXT NOT NULL CHECK (event_type IN ('suggestion_approved', 'suggestion_rejected', 'vote_matched')),
    points INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL,
    UNIQUE (account_id, suggestion_id, event_type)
);

CREATE INDEX IF NOT EXISTS idx_contribution_event_account ON contribution_event(account_id);

-- Running scores, maintained incrementally from contribution_event

CREATE TABLE IF NOT EXISTS contribution_score (
    account_id TEXT PRIMARY KEY,
    monthly_score INTEGER NOT NULL DEFAULT 0,
    all_time_score INTEGER NOT NULL DEFAULT 0,
    month_key TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_score_monthly ON contribution_score(monthly_score);
CREATE INDEX IF NOT EXISTS idx_score_all_time ON contribution_score(all_time_score);
`
