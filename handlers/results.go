// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Atharv226/CampusVote/db"
	"github.com/Atharv226/CampusVote/electorate"
	"github.com/Atharv226/CampusVote/middleware"
	"github.com/Atharv226/CampusVote/milestone"
	"github.com/Atharv226/CampusVote/models"
	"github.com/Atharv226/CampusVote/tally"
)

type ResultsHandler struct {
	store      *db.Store
	tally      *tally.Store
	electorate *electorate.Directory
	detector   *milestone.Detector
}

func NewResultsHandler(store *db.Store, t *tally.Store, e *electorate.Directory, d *milestone.Detector) *ResultsHandler {
	return &ResultsHandler{store: store, tally: t, electorate: e, detector: d}
}

// GetTally handles GET /elections/{id}/tally
// Returns the current tally and turnout for clients that missed a push.
func (h *ResultsHandler) GetTally(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	if _, err := h.electorate.Election(r.Context(), h.store.DB, electionID, false); err != nil {
		writeError(w, err)
		return
	}

	t, err := h.tally.Get(r.Context(), electionID)
	if err != nil {
		writeError(w, err)
		return
	}
	turnout, err := h.detector.Turnout(r.Context(), electionID)
	if err != nil {
		writeError(w, err)
		return
	}
	turnout.Percentage = turnout.Rounded()

	middleware.JSONResponse(w, http.StatusOK, models.TallyResponse{Tally: t, Turnout: turnout})
}

// Reconcile handles POST /elections/{id}/tally/reconcile
// Admin only. Recomputes counters from the ledger.
func (h *ResultsHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	if _, err := h.electorate.Election(r.Context(), h.store.DB, electionID, false); err != nil {
		writeError(w, err)
		return
	}

	report, err := h.tally.Reconcile(r.Context(), electionID)
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("tally reconciled", "election_id", electionID, "corrected", report.Corrected, "total_votes", report.TotalVotes)

	middleware.JSONResponse(w, http.StatusOK, report)
}
