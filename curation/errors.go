// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package curation

import "errors"

// Error taxonomy for the curation engine. Handlers map these onto HTTP
// status codes; everything else is an internal error.
var (
	// ErrInvalidPayload means a suggestion payload is malformed or missing
	// required fields for its type. Never persisted.
	ErrInvalidPayload = errors.New("invalid suggestion payload")

	// ErrDuplicatePending means an equivalent suggestion (same type and
	// equality key) is already awaiting resolution.
	ErrDuplicatePending = errors.New("an equivalent suggestion is already pending")

	// ErrSelfVoteForbidden means the caller authored the suggestion.
	ErrSelfVoteForbidden = errors.New("cannot vote on your own suggestion")

	// ErrSuggestionNotPending means the suggestion already resolved; late
	// votes are rejected, but racing resolvers treat this as a no-op.
	ErrSuggestionNotPending = errors.New("suggestion is no longer pending")

	// ErrInvalidVote means the vote value is not approve or reject.
	ErrInvalidVote = errors.New("vote must be approve or reject")

	// ErrNotFound means the referenced id does not exist.
	ErrNotFound = errors.New("not found")
)
