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

type SuggestionHandler struct {
	engine *curation.Engine
	cfg    cliparse.Config
}

func NewSuggestionHandler(engine *curation.Engine, cfg cliparse.Config) *SuggestionHandler {
	return &SuggestionHandler{engine: engine, cfg: cfg}
}

// Create handles POST /suggestions
func (h *SuggestionHandler) Create(w http.ResponseWriter, r *http.Request) {
	accountID, err := auth.AccountFromRequest(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Account-ID header required")
		return
	}

	var req models.CreateSuggestionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	s, err := h.engine.Registry.Create(r.Context(), accountID, req)
	if errors.Is(err, curation.ErrInvalidPayload) {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if errors.Is(err, curation.ErrDuplicatePending) {
		middleware.ErrorResponse(w, http.StatusConflict, "An equivalent suggestion is already awaiting votes")
		return
	}
	if err != nil {
		slog.Error("failed to create suggestion", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create suggestion")
		return
	}

	slog.Info("suggestion created", "suggestion_id", s.ID, "type", s.Type)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateSuggestionResponse{
		SuggestionID: s.ID,
	})
}

// List handles GET /suggestions
//
// Returns the pending review queue. The caller's own suggestions are
// hidden from their queue unless a valid moderator key is presented.
func (h *SuggestionHandler) List(w http.ResponseWriter, r *http.Request) {
	accountID, err := auth.AccountFromRequest(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Account-ID header required")
		return
	}

	q := r.URL.Query()
	filter := curation.PendingFilter{
		Type:        q.Get("type"),
		EcosystemID: q.Get("ecosystem"),
		PackageID:   q.Get("package"),
		Viewer:      accountID,
		IncludeOwn:  auth.IsModerator(r, accountID, h.cfg.ModeratorKeySalt),
	}

	suggestions, err := h.engine.Registry.ListPending(r.Context(), filter)
	if err != nil {
		slog.Error("failed to list suggestions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to list suggestions")
		return
	}
	if suggestions == nil {
		suggestions = []models.Suggestion{}
	}

	middleware.JSONResponse(w, http.StatusOK, suggestions)
}

// Get handles GET /suggestions/{id}
func (h *SuggestionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	s, err := h.engine.Registry.Get(r.Context(), id)
	if errors.Is(err, curation.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Suggestion not found")
		return
	}
	if err != nil {
		slog.Error("failed to load suggestion", "error", err, "suggestion_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, s)
}
