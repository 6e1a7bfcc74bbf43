// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/curia/cliparse"
	"github.com/danielhkuo/curia/curation"
	"github.com/danielhkuo/curia/handlers"
	"github.com/danielhkuo/curia/middleware"
)

func NewRouter(engine *curation.Engine, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	suggestionHandler := handlers.NewSuggestionHandler(engine, cfg)
	voteHandler := handlers.NewVoteHandler(engine, cfg)
	leaderboardHandler := handlers.NewLeaderboardHandler(engine, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Suggestions
	mux.HandleFunc("POST /suggestions", middleware.WithLogging(suggestionHandler.Create))
	mux.HandleFunc("GET /suggestions", middleware.WithLogging(suggestionHandler.List))
	mux.HandleFunc("GET /suggestions/{id}", middleware.WithLogging(suggestionHandler.Get))

	// Voting
	mux.HandleFunc("POST /suggestions/{id}/votes", middleware.WithLogging(voteHandler.Cast))
	mux.HandleFunc("GET /suggestions/{id}/votes", middleware.WithLogging(voteHandler.GetCounts))

	// Scores
	mux.HandleFunc("GET /leaderboard", middleware.WithLogging(leaderboardHandler.Top))
	mux.HandleFunc("GET /accounts/me/score", middleware.WithLogging(leaderboardHandler.MyScore))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("curia API v1"))
	})

	return mux
}
