// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/Atharv226/CampusVote/admission"
	"github.com/Atharv226/CampusVote/auth"
	"github.com/Atharv226/CampusVote/middleware"
	"github.com/Atharv226/CampusVote/models"
)

type VotingHandler struct {
	controller *admission.Controller
}

func NewVotingHandler(controller *admission.Controller) *VotingHandler {
	return &VotingHandler{controller: controller}
}

// CastVote handles POST /elections/{id}/votes
// Requires a bearer token; the voter is always the token's principal.
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election id is required")
		return
	}

	voter, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "valid bearer token required")
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.CandidateID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "candidate_id is required")
		return
	}
	if req.Position == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "position is required")
		return
	}

	receipt, err := h.controller.CastVote(r.Context(), voter, electionID, req.CandidateID, req.Position)
	if err != nil {
		writeError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, receipt)
}
