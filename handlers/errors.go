// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Atharv226/CampusVote/middleware"
	"github.com/Atharv226/CampusVote/models"
)

// retryAfterSeconds is sent with 503 responses for retryable failures.
const retryAfterSeconds = "1"

// StatusFor maps a domain error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidVote):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotEligible), errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrElectionNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrElectionNotActive), errors.Is(err, models.ErrAlreadyVoted):
		return http.StatusConflict
	case errors.Is(err, models.ErrCandidateNotApproved):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError sends err as a JSON error. Storage failures are logged and
// returned with a generic message.
func writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	switch status {
	case http.StatusServiceUnavailable:
		slog.Warn("storage unavailable", "error", err)
		w.Header().Set("Retry-After", retryAfterSeconds)
		middleware.ErrorResponse(w, status, "Storage temporarily unavailable, retry")
	case http.StatusInternalServerError:
		slog.Error("unexpected error", "error", err)
		middleware.ErrorResponse(w, status, "Internal error")
	default:
		middleware.ErrorResponse(w, status, err.Error())
	}
}
