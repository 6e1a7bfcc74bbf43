// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and JSON helpers.

# Request Logging

WithLogging wraps handlers with a one-line access log carrying the method,
path, response status and duration:

	mux.HandleFunc("POST /suggestions", middleware.WithLogging(handler.Create))

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	middleware.ParseJSONBody(r, &req)

ErrorResponse produces the standard error envelope:

	{"error": "Bad Request", "message": "vote must be approve or reject"}

# CORS

CORS handles cross-origin requests and OPTIONS preflight against the
configured origin allowlist (CORS_ORIGINS / -cors-origins; empty reflects
any origin for local development). The allowed header list includes the
identity headers (X-Account-ID, X-Moderator-Key).

# Client IP

GetClientIP resolves the caller address behind proxies, checking
X-Forwarded-For, then X-Real-IP, then RemoteAddr. Pair with auth.HashIP
before persisting or logging addresses.
*/
package middleware
