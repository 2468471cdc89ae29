// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Atharv226/CampusVote/broadcast"
	"github.com/Atharv226/CampusVote/db"
	"github.com/Atharv226/CampusVote/electorate"
	"github.com/Atharv226/CampusVote/middleware"
	"github.com/Atharv226/CampusVote/models"
)

// NotificationHandler receives lifecycle events from the admin services and
// routes them to live channels. It never changes election or candidate
// state; it only announces changes already stored.
type NotificationHandler struct {
	store       *db.Store
	electorate  *electorate.Directory
	broadcaster *broadcast.Broadcaster
}

func NewNotificationHandler(store *db.Store, e *electorate.Directory, b *broadcast.Broadcaster) *NotificationHandler {
	return &NotificationHandler{store: store, electorate: e, broadcaster: b}
}

// ElectionStatusChanged handles POST /notifications/election-status
func (h *NotificationHandler) ElectionStatusChanged(w http.ResponseWriter, r *http.Request) {
	var req models.StatusChangeRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.ElectionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election_id is required")
		return
	}
	if !models.ValidStatus(req.OldStatus) || !models.ValidStatus(req.NewStatus) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "old_status and new_status must be valid election statuses")
		return
	}

	election, err := h.electorate.Election(r.Context(), h.store.DB, req.ElectionID, false)
	if err != nil {
		writeError(w, err)
		return
	}

	// Announce only what the store already says
	if election.Status != req.NewStatus {
		middleware.ErrorResponse(w, http.StatusConflict, "election status is "+election.Status)
		return
	}

	h.broadcaster.ElectionStatusChanged(r.Context(), election, req.OldStatus)

	slog.Info("election status announced", "election_id", election.ID, "old_status", req.OldStatus, "new_status", election.Status)

	w.WriteHeader(http.StatusAccepted)
}

// CandidateApproved handles POST /notifications/candidate-approved
func (h *NotificationHandler) CandidateApproved(w http.ResponseWriter, r *http.Request) {
	var req models.CandidateApprovedRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.CandidateID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "candidate_id is required")
		return
	}

	slot, err := h.electorate.Candidate(r.Context(), h.store.DB, req.CandidateID)
	if errors.Is(err, electorate.ErrCandidateNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Candidate not found")
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	if !slot.Approved {
		middleware.ErrorResponse(w, http.StatusConflict, "candidate is not approved")
		return
	}

	h.broadcaster.CandidateApproved(r.Context(), slot)

	slog.Info("candidate approval announced", "election_id", slot.ElectionID, "candidate_id", slot.ID, "position", slot.Position)

	w.WriteHeader(http.StatusAccepted)
}
