package models

import (
	"encoding/json"
	"time"
)

// Suggestion status constants
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Vote value constants
const (
	VoteApprove = "approve"
	VoteReject  = "reject"
)

// Suggestion type constants
const (
	TypeAddTag              = "add_tag"
	TypeAddEcosystemPackage = "add_ecosystem_package"
	TypeCreateEcosystem     = "create_ecosystem"
	TypeCreateTag           = "create_tag"
)

// Contribution event types
const (
	EventSuggestionApproved = "suggestion_approved"
	EventSuggestionRejected = "suggestion_rejected"
	EventVoteMatched        = "vote_matched"
)

// Leaderboard periods
const (
	PeriodMonthly = "monthly"
	PeriodAllTime = "all_time"
)

// Payload variants, one struct per suggestion type

type AddTagPayload struct {
	TagID     string `json:"tag_id"`
	PackageID string `json:"package_id"`
}

type AddEcosystemPackagePayload struct {
	EcosystemID string `json:"ecosystem_id"`
	PackageID   string `json:"package_id"`
}

type CreateEcosystemPayload struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Website     string `json:"website,omitempty"`
}

type CreateTagPayload struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Request types

type CreateSuggestionRequest struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type CastVoteRequest struct {
	Vote string `json:"vote"`
}

// Response types

type CreateSuggestionResponse struct {
	SuggestionID string `json:"suggestion_id"`
}

type CastVoteResponse struct {
	Updated bool       `json:"updated"` // true when an earlier vote was replaced
	Counts  VoteCounts `json:"counts"`
	Status  string     `json:"status"`
	Message string     `json:"message"`
}

type VoteCountsResponse struct {
	Approve  int    `json:"approve"`
	Reject   int    `json:"reject"`
	HasVoted bool   `json:"has_voted"`
	MyVote   string `json:"my_vote,omitempty"`
}

type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	RankLabel string `json:"rank_label"`
	AccountID string `json:"account_id"`
	Score     int    `json:"score"`
}

type LeaderboardResponse struct {
	Period  string             `json:"period"`
	Entries []LeaderboardEntry `json:"entries"`
}

type MyScoreResponse struct {
	AccountID    string `json:"account_id"`
	MonthlyScore int    `json:"monthly_score"`
	AllTimeScore int    `json:"all_time_score"`
	MonthlyRank  *int   `json:"monthly_rank"`  // null when outside the visible board
	AllTimeRank  *int   `json:"all_time_rank"` // null when outside the visible board
	Updated      string `json:"updated"`       // humanized, e.g. "3 minutes ago"
}

// Domain types

type Suggestion struct {
	ID                string          `json:"id"`
	Type              string          `json:"type"`
	Payload           json.RawMessage `json:"payload"`
	DedupeKey         string          `json:"-"` // per-type equality key, internal only
	AuthorAccountID   string          `json:"author_account_id"`
	TargetEcosystemID *string         `json:"target_ecosystem_id,omitempty"`
	TargetPackageID   *string         `json:"target_package_id,omitempty"`
	Status            string          `json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
	ResolvedAt        *time.Time      `json:"resolved_at,omitempty"`
}

type Vote struct {
	ID           string    `json:"id"`
	SuggestionID string    `json:"suggestion_id"`
	AccountID    string    `json:"account_id"`
	Vote         string    `json:"vote"`
	CreatedAt    time.Time `json:"created_at"`
}

type VoteCounts struct {
	Approve int `json:"approve"`
	Reject  int `json:"reject"`
}

// Net returns approve minus reject, the quantity quorum policies compare.
func (c VoteCounts) Net() int {
	return c.Approve - c.Reject
}

type ContributionEvent struct {
	ID           string    `json:"id"`
	AccountID    string    `json:"account_id"`
	SuggestionID string    `json:"suggestion_id"`
	Type         string    `json:"type"`
	Points       int       `json:"points"`
	CreatedAt    time.Time `json:"created_at"`
}

type ContributionScore struct {
	AccountID    string    `json:"account_id"`
	MonthlyScore int       `json:"monthly_score"`
	AllTimeScore int       `json:"all_time_score"`
	MonthKey     string    `json:"-"` // "2026-08", the month MonthlyScore tracks
	UpdatedAt    time.Time `json:"updated_at"`
}

// Entity store types

type Ecosystem struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Website     string    `json:"website,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Package struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Tag struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
