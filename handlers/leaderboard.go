// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/curia/auth"
	"github.com/danielhkuo/curia/cliparse"
	"github.com/danielhkuo/curia/curation"
	"github.com/danielhkuo/curia/middleware"
	"github.com/danielhkuo/curia/models"
)

type LeaderboardHandler struct {
	engine *curation.Engine
	cfg    cliparse.Config
}

func NewLeaderboardHandler(engine *curation.Engine, cfg cliparse.Config) *LeaderboardHandler {
	return &LeaderboardHandler{engine: engine, cfg: cfg}
}

// Top handles GET /leaderboard?period=monthly|all_time&limit=N
func (h *LeaderboardHandler) Top(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = models.PeriodAllTime
	}
	if period != models.PeriodMonthly && period != models.PeriodAllTime {
		middleware.ErrorResponse(w, http.StatusBadRequest, "period must be monthly or all_time")
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	entries, err := h.engine.Leaderboard.Top(r.Context(), period, limit)
	if err != nil {
		slog.Error("failed to build leaderboard", "error", err, "period", period)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to build leaderboard")
		return
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}

	middleware.JSONResponse(w, http.StatusOK, models.LeaderboardResponse{
		Period:  period,
		Entries: entries,
	})
}

// MyScore handles GET /accounts/me/score
func (h *LeaderboardHandler) MyScore(w http.ResponseWriter, r *http.Request) {
	accountID, err := auth.AccountFromRequest(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Account-ID header required")
		return
	}

	score, err := h.engine.Leaderboard.ScoreFor(r.Context(), accountID)
	if err != nil {
		slog.Error("failed to load score", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load score")
		return
	}

	monthlyRank, err := h.engine.Leaderboard.RankOf(r.Context(), accountID, models.PeriodMonthly)
	if err != nil {
		slog.Error("failed to compute monthly rank", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to compute rank")
		return
	}
	allTimeRank, err := h.engine.Leaderboard.RankOf(r.Context(), accountID, models.PeriodAllTime)
	if err != nil {
		slog.Error("failed to compute all-time rank", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to compute rank")
		return
	}

	updated := "never"
	if !score.UpdatedAt.IsZero() {
		updated = humanize.Time(score.UpdatedAt)
	}

	middleware.JSONResponse(w, http.StatusOK, models.MyScoreResponse{
		AccountID:    accountID,
		MonthlyScore: score.MonthlyScore,
		AllTimeScore: score.AllTimeScore,
		MonthlyRank:  monthlyRank,
		AllTimeRank:  allTimeRank,
		Updated:      updated,
	})
}
