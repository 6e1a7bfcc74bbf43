// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines the HTTP routes for the Curia API.

# Routes

Uses Go 1.22+ method-aware routing:

	GET  /health                  Health check
	POST /suggestions             Create a suggestion
	GET  /suggestions             Pending review queue
	GET  /suggestions/{id}        Single suggestion
	POST /suggestions/{id}/votes  Cast or update a vote
	GET  /suggestions/{id}/votes  Vote counts
	GET  /leaderboard             Ranked contribution board
	GET  /accounts/me/score       Caller's scores and ranks

All routes are wrapped with request logging. CORS is applied by main at
the server level so preflight requests never reach the handlers.
*/
package router
