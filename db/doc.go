// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connection and schema creation.

# Opening a Connection

Open selects the driver from configuration:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

Supported types are "sqlite" (modernc.org/sqlite) and "postgres" (lib/pq).
Both drivers accept $N placeholders, so query text is shared.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

Entity store (the catalog under curation):

  - ecosystem, package, tag: the discoverable entities
  - package_tag, ecosystem_package: membership links

Curation engine:

  - suggestion: proposed changes and their lifecycle state
  - vote: one row per (suggestion, account)
  - contribution_event: append-only point ledger
  - contribution_score: running monthly/all-time totals

# Relationships

	suggestion 1──* vote
	suggestion 1──* contribution_event
	package *──* tag (via package_tag)
	ecosystem *──* package (via ecosystem_package)

# Uniqueness Constraints

Correctness under concurrent writers rests on these:

  - vote(suggestion_id, account_id): at most one vote per account
  - contribution_event(account_id, suggestion_id, event_type): idempotent scoring
  - ecosystem.name, package.name, tag.name: no duplicate catalog entries
*/
package db
