// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs one line per request after it completes: method, path, status, client
IP and duration_ms. Statuses of 500 and above log at warn level.

# Authentication

RequirePrincipal verifies the bearer token and stores the principal in the
request context. RequireRole additionally requires a role:

	mux.HandleFunc("POST /elections/{id}/votes",
		middleware.WithLogging(middleware.RequirePrincipal(secret, h.CastVote)))
	mux.HandleFunc("POST /elections/{id}/tally/reconcile",
		middleware.WithLogging(middleware.RequireRole(secret, models.RoleAdmin, h.Reconcile)))

Missing or invalid tokens get 401; a valid token with the wrong role gets 403.

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

ParseJSONBody reads at most 64 KiB of the body.

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

GetClientIP honors X-Forwarded-For and X-Real-IP before RemoteAddr. It is
used for request logs.
*/
package middleware
