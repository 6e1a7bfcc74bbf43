// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package curation implements the community curation engine: suggestions,
quorum voting, exactly-once resolution, and contribution scoring.

# Components

  - Registry: suggestion records and lifecycle state
  - Ledger: one-vote-per-account records, last-vote-wins
  - Decide: pure threshold evaluation (counts × policy → outcome)
  - Resolver: compare-and-set transition plus exactly-once side effects
  - Applier: maps approved payloads onto catalog mutations
  - Scorer: append-only point ledger and running score rows
  - Leaderboard: ranked read projections
  - Engine: wires everything over one *sql.DB

# Data Flow

	create → castVote (×N) → reevaluate → decide
	       → on threshold: CAS pending→terminal
	       → winner runs: apply mutation (approved) + record scoring

# Concurrency Model

  - Every vote transaction starts by locking the suggestion row with a
    conditional self-assignment update, which rechecks the pending status
    in the same statement. Racing casts on one suggestion serialize on
    that lock, so each sees the other's committed votes and none can
    land after resolution, even under READ COMMITTED.
  - The vote upsert, count, and status compare-and-set share one
    transaction. Two racing reevaluations cannot both win the CAS; the
    loser sees zero rows affected and backs off silently.
  - Side effects run only for the CAS winner, after commit, against the
    now-immutable suggestion. Every side effect is idempotent (ON
    CONFLICT DO NOTHING inserts), so crashes between commits are repaired
    by replaying Finalize - the cron sweep does exactly that.
  - Contribution events are keyed by (account, suggestion, type);
    duplicate delivery of RecordOutcome never double-awards.

# Scoring Rules

On approval the author earns +5; on rejection -1. Voters whose vote
matches the outcome earn +1 each; voters on the losing side receive
nothing. All values are configurable. Monthly scores roll lazily: each
event write either accumulates into the tracked month or resets the
monthly total for a new month.

# Error Handling

Sentinel errors (ErrInvalidPayload, ErrDuplicatePending,
ErrSelfVoteForbidden, ErrSuggestionNotPending, ErrInvalidVote,
ErrNotFound) classify user-visible failures; handlers map them to HTTP
status codes with errors.Is. Resolution races are invisible to callers.
*/
package curation
