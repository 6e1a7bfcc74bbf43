// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/curia/auth"
	"github.com/danielhkuo/curia/cliparse"
	"github.com/danielhkuo/curia/curation"
	"github.com/danielhkuo/curia/middleware"
	"github.com/danielhkuo/curia/models"
)

type VoteHandler struct {
	engine *curation.Engine
	cfg    cliparse.Config
}

func NewVoteHandler(engine *curation.Engine, cfg cliparse.Config) *VoteHandler {
	return &VoteHandler{engine: engine, cfg: cfg}
}

// Cast handles POST /suggestions/{id}/votes
func (h *VoteHandler) Cast(w http.ResponseWriter, r *http.Request) {
	suggestionID := r.PathValue("id")
	if suggestionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	accountID, err := auth.AccountFromRequest(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Account-ID header required")
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	result, err := h.engine.Ledger.CastVote(r.Context(), suggestionID, accountID, req.Vote)
	switch {
	case errors.Is(err, curation.ErrInvalidVote):
		middleware.ErrorResponse(w, http.StatusBadRequest, "vote must be approve or reject")
		return
	case errors.Is(err, curation.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Suggestion not found")
		return
	case errors.Is(err, curation.ErrSelfVoteForbidden):
		middleware.ErrorResponse(w, http.StatusForbidden, "You cannot vote on your own suggestion")
		return
	case errors.Is(err, curation.ErrSuggestionNotPending):
		middleware.ErrorResponse(w, http.StatusConflict, "Voting on this suggestion has closed")
		return
	case err != nil:
		slog.Error("failed to cast vote", "error", err, "suggestion_id", suggestionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to cast vote")
		return
	}

	// IPs are logged hashed only.
	ipHash := auth.HashIP(middleware.GetClientIP(r), h.cfg.ModeratorKeySalt)
	slog.Info("vote cast",
		"suggestion_id", suggestionID,
		"vote", req.Vote,
		"updated", result.Updated,
		"status", result.Status,
		"ip_hash", ipHash,
	)

	message := "Vote recorded"
	if result.Updated {
		message = "Vote updated"
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CastVoteResponse{
		Updated: result.Updated,
		Counts:  result.Counts,
		Status:  result.Status,
		Message: message,
	})
}

// GetCounts handles GET /suggestions/{id}/votes
func (h *VoteHandler) GetCounts(w http.ResponseWriter, r *http.Request) {
	suggestionID := r.PathValue("id")
	if suggestionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	accountID, err := auth.AccountFromRequest(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Account-ID header required")
		return
	}

	// 404 before counting; an empty count for a bogus id would be misleading
	if _, err := h.engine.Registry.Get(r.Context(), suggestionID); err != nil {
		if errors.Is(err, curation.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Suggestion not found")
			return
		}
		slog.Error("failed to load suggestion", "error", err, "suggestion_id", suggestionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	counts, err := h.engine.Ledger.CountsFor(r.Context(), suggestionID)
	if err != nil {
		slog.Error("failed to count votes", "error", err, "suggestion_id", suggestionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	myVote, hasVoted, err := h.engine.Ledger.HasVoted(r.Context(), suggestionID, accountID)
	if err != nil {
		slog.Error("failed to check vote", "error", err, "suggestion_id", suggestionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VoteCountsResponse{
		Approve:  counts.Approve,
		Reject:   counts.Reject,
		HasVoted: hasVoted,
		MyVote:   myVote,
	})
}
