// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Curia API.

# Handler Types

Each handler is a struct with engine and config dependencies:

  - SuggestionHandler: suggestion creation and the review queue
  - VoteHandler: vote casting and vote counts
  - LeaderboardHandler: ranked boards and per-account scores

Handlers are created via constructor functions that accept the curation
engine and Config:

	suggestionHandler := handlers.NewSuggestionHandler(engine, cfg)

# Identity

Every operation requires the opaque X-Account-ID header; handlers return
401 when it is missing or malformed. A valid X-Moderator-Key additionally
lets the caller see their own pending suggestions in the review queue.

# Suggestion Flow

	POST /suggestions             → Create (validates payload, rejects duplicates)
	GET  /suggestions             → List (pending queue, own hidden unless moderator)
	GET  /suggestions/{id}        → Get

# Voting Flow

	POST /suggestions/{id}/votes  → Cast (last-vote-wins; may resolve the suggestion)
	GET  /suggestions/{id}/votes  → GetCounts (totals + caller's own vote)

Casting the vote that crosses the quorum resolves the suggestion in the
same request: the response carries the post-resolution status.

# Scores

	GET /leaderboard              → Top (period=monthly|all_time, limit)
	GET /accounts/me/score        → MyScore (scores + ranks for both periods)

# Error Mapping

Engine sentinel errors map onto status codes:

	ErrInvalidPayload       → 400
	ErrInvalidVote          → 400
	ErrSelfVoteForbidden    → 403
	ErrNotFound             → 404
	ErrDuplicatePending     → 409
	ErrSuggestionNotPending → 409
*/
package handlers
