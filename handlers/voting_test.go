// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Atharv226/CampusVote/middleware"
	"github.com/Atharv226/CampusVote/models"
	"github.com/Atharv226/CampusVote/registry"
	"github.com/Atharv226/CampusVote/testutil"
)

func TestCastVote(t *testing.T) {
	s := newTestStack(t)

	elig := models.Eligibility{Branches: []string{"CSE"}, Years: []int{2}}
	active := testutil.CreateTestElection(t, s.store, models.StatusActive, elig, "President")
	upcoming := testutil.CreateTestElection(t, s.store, models.StatusUpcoming, elig, "President")
	cand := testutil.AddTestCandidate(t, s.store, active, "President", "Asha", true)
	pending := testutil.AddTestCandidate(t, s.store, active, "President", "Ravi", false)
	upcomingCand := testutil.AddTestCandidate(t, s.store, upcoming, "President", "Meera", true)

	voter := testutil.CreateTestVoter(t, s.store, "CSE", 2)
	outsider := testutil.CreateTestVoter(t, s.store, "ME", 2)

	tests := []struct {
		name           string
		voter          models.Principal
		electionID     string
		body           interface{}
		expectedStatus int
	}{
		{"valid vote", voter, active, models.CastVoteRequest{CandidateID: cand.ID, Position: "President"}, http.StatusCreated},
		{"second vote", voter, active, models.CastVoteRequest{CandidateID: cand.ID, Position: "President"}, http.StatusConflict},
		{"missing candidate", voter, active, models.CastVoteRequest{Position: "President"}, http.StatusBadRequest},
		{"missing position", voter, active, models.CastVoteRequest{CandidateID: cand.ID}, http.StatusBadRequest},
		{"unknown election", outsider, "nope", models.CastVoteRequest{CandidateID: cand.ID, Position: "President"}, http.StatusNotFound},
		{"not active", voter, upcoming, models.CastVoteRequest{CandidateID: upcomingCand.ID, Position: "President"}, http.StatusConflict},
		{"not eligible", outsider, active, models.CastVoteRequest{CandidateID: cand.ID, Position: "President"}, http.StatusForbidden},
		{"pending candidate", testutil.CreateTestVoter(t, s.store, "CSE", 2), active, models.CastVoteRequest{CandidateID: pending.ID, Position: "President"}, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.castVote(t, tt.voter, tt.electionID, tt.body)
			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusCreated {
				var receipt models.VoteReceipt
				testutil.AssertJSON(t, w, &receipt)
				if receipt.VoteID == "" || receipt.CandidateID != cand.ID || receipt.ElectionID != active {
					t.Errorf("Unexpected receipt %+v", receipt)
				}
			} else {
				var resp models.ErrorResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.Message == "" {
					t.Error("Expected error message")
				}
			}
		})
	}
}

func TestCastVoteInvalidJSON(t *testing.T) {
	s := newTestStack(t)
	voter := testutil.CreateTestVoter(t, s.store, "CSE", 2)

	req := httptest.NewRequest("POST", "/elections/e1/votes", strings.NewReader("{invalid"))
	req.SetPathValue("id", "e1")
	req.Header.Set("Authorization", "Bearer "+testutil.TestToken(t, voter))
	w := httptest.NewRecorder()
	middleware.RequirePrincipal(secret, s.voting.CastVote)(w, req)
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestCastVoteRequiresPrincipal(t *testing.T) {
	s := newTestStack(t)

	req := testutil.MakeRequest("POST", "/elections/e1/votes", models.CastVoteRequest{CandidateID: "c", Position: "p"}, nil)
	req.SetPathValue("id", "e1")
	w := httptest.NewRecorder()
	s.voting.CastVote(w, req)
	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}

func TestCastVoteStorageUnavailable(t *testing.T) {
	s := newTestStack(t)
	electionID := testutil.CreateTestElection(t, s.store, models.StatusActive, models.Eligibility{}, "President")
	cand := testutil.AddTestCandidate(t, s.store, electionID, "President", "Asha", true)
	voter := testutil.CreateTestVoter(t, s.store, "CSE", 2)

	if _, err := s.store.DB.Exec("DROP TABLE vote"); err != nil {
		t.Fatal(err)
	}

	w := s.castVote(t, voter, electionID, models.CastVoteRequest{CandidateID: cand.ID, Position: "President"})
	testutil.AssertStatus(t, w, http.StatusServiceUnavailable)
	if w.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header on 503")
	}
}

func TestCastVotePublishesEvents(t *testing.T) {
	s := newTestStack(t)
	electionID := testutil.CreateTestElection(t, s.store, models.StatusActive, models.Eligibility{}, "President")
	cand := testutil.AddTestCandidate(t, s.store, electionID, "President", "Asha", true)
	voters := testutil.CreateTestVoters(t, s.store, 4, "CSE", 2)
	sink := s.observe(t, "obs", voters[0], registry.ElectionChannel(electionID))

	for _, v := range voters {
		w := s.castVote(t, v, electionID, models.CastVoteRequest{CandidateID: cand.ID, Position: "President"})
		testutil.AssertStatus(t, w, http.StatusCreated)
	}
	s.drain(t)

	if got := len(sink.OfKind(models.EventVoteCast)); got != 4 {
		t.Errorf("Expected 4 vote_cast events, got %d", got)
	}
	if got := len(sink.OfKind(models.EventTurnoutMilestone)); got != 4 {
		t.Errorf("Expected 4 milestone events, got %d", got)
	}
}
