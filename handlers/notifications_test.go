// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"testing"

	"github.com/Atharv226/CampusVote/models"
	"github.com/Atharv226/CampusVote/registry"
	"github.com/Atharv226/CampusVote/testutil"
)

func TestElectionStatusChanged(t *testing.T) {
	s := newTestStack(t)
	electionID := testutil.CreateTestElection(t, s.store, models.StatusActive, models.Eligibility{}, "President")

	observer := s.observe(t, "obs", models.Principal{UserID: "u1", Role: models.RoleVoter}, registry.ElectionChannel(electionID))
	admins := s.observe(t, "adm", models.Principal{UserID: "a1", Role: models.RoleAdmin}, registry.RoleChannel(models.RoleAdmin))

	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
	}{
		{"announced", models.StatusChangeRequest{ElectionID: electionID, OldStatus: models.StatusUpcoming, NewStatus: models.StatusActive}, http.StatusAccepted},
		{"stale new status", models.StatusChangeRequest{ElectionID: electionID, OldStatus: models.StatusActive, NewStatus: models.StatusCompleted}, http.StatusConflict},
		{"unknown status", models.StatusChangeRequest{ElectionID: electionID, OldStatus: "open", NewStatus: models.StatusActive}, http.StatusBadRequest},
		{"missing election", models.StatusChangeRequest{OldStatus: models.StatusUpcoming, NewStatus: models.StatusActive}, http.StatusBadRequest},
		{"unknown election", models.StatusChangeRequest{ElectionID: "missing", OldStatus: models.StatusUpcoming, NewStatus: models.StatusActive}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/notifications/election-status", tt.body, nil)
			w := asAdmin(t, s, s.notifications.ElectionStatusChanged, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}

	for name, sink := range map[string]*testutil.RecordingSink{"observer": observer, "admin": admins} {
		events := sink.OfKind(models.EventElectionStatusChanged)
		if len(events) != 1 {
			t.Fatalf("%s received %d status events, want 1", name, len(events))
		}
		p := events[0].Payload.(models.StatusChangedPayload)
		if p.ElectionID != electionID || p.OldStatus != models.StatusUpcoming || p.NewStatus != models.StatusActive || p.Title == "" {
			t.Errorf("%s payload = %+v", name, p)
		}
	}
}

func TestCandidateApproved(t *testing.T) {
	s := newTestStack(t)
	electionID := testutil.CreateTestElection(t, s.store, models.StatusUpcoming, models.Eligibility{}, "President")
	approved := testutil.AddTestCandidate(t, s.store, electionID, "President", "Asha", true)
	pending := testutil.AddTestCandidate(t, s.store, electionID, "President", "Ravi", false)

	candidate := s.observe(t, "cand", models.Principal{UserID: approved.UserID, Role: models.RoleCandidate}, registry.UserChannel(approved.UserID))
	observer := s.observe(t, "obs", models.Principal{UserID: "u1", Role: models.RoleVoter}, registry.ElectionChannel(electionID))

	tests := []struct {
		name           string
		candidateID    string
		expectedStatus int
	}{
		{"approved", approved.ID, http.StatusAccepted},
		{"pending", pending.ID, http.StatusConflict},
		{"unknown", "missing", http.StatusNotFound},
		{"missing id", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/notifications/candidate-approved", models.CandidateApprovedRequest{CandidateID: tt.candidateID}, nil)
			w := asAdmin(t, s, s.notifications.CandidateApproved, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}

	direct := candidate.OfKind(models.EventCandidateApproved)
	if len(direct) != 1 || direct[0].Channel != registry.UserChannel(approved.UserID) {
		t.Fatalf("candidate events = %+v", direct)
	}
	if p := direct[0].Payload.(models.CandidateApprovedPayload); p.CandidateID != approved.ID || p.Name != "Asha" {
		t.Errorf("candidate payload = %+v", p)
	}
	if got := observer.OfKind(models.EventNewCandidateApproved); len(got) != 1 {
		t.Errorf("observer received %d new candidate events, want 1", len(got))
	}
}
