// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Atharv226/CampusVote/middleware"
	"github.com/Atharv226/CampusVote/models"
	"github.com/Atharv226/CampusVote/testutil"
)

func TestGetTally(t *testing.T) {
	s := newTestStack(t)
	electionID := testutil.CreateTestElection(t, s.store, models.StatusActive, models.Eligibility{Branches: []string{"CSE"}}, "President", "Secretary")
	asha := testutil.AddTestCandidate(t, s.store, electionID, "President", "Asha", true)
	ravi := testutil.AddTestCandidate(t, s.store, electionID, "President", "Ravi", true)
	meera := testutil.AddTestCandidate(t, s.store, electionID, "Secretary", "Meera", true)
	voters := testutil.CreateTestVoters(t, s.store, 8, "CSE", 3)

	for i, v := range voters[:3] {
		pres := asha.ID
		if i == 2 {
			pres = ravi.ID
		}
		testutil.AssertStatus(t, s.castVote(t, v, electionID, models.CastVoteRequest{CandidateID: pres, Position: "President"}), http.StatusCreated)
		testutil.AssertStatus(t, s.castVote(t, v, electionID, models.CastVoteRequest{CandidateID: meera.ID, Position: "Secretary"}), http.StatusCreated)
	}
	s.drain(t)

	req := httptest.NewRequest("GET", "/elections/"+electionID+"/tally", nil)
	req.SetPathValue("id", electionID)
	w := httptest.NewRecorder()
	s.results.GetTally(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.TallyResponse
	testutil.AssertJSON(t, w, &resp)

	if resp.Tally.TotalVotes != 6 || len(resp.Tally.Positions) != 2 {
		t.Fatalf("Unexpected tally %+v", resp.Tally)
	}
	pres := resp.Tally.Positions[0]
	if pres.Position != "President" || pres.Candidates[0].CandidateID != asha.ID || pres.Candidates[0].Votes != 2 {
		t.Errorf("Unexpected President tally %+v", pres)
	}
	// 6 votes over 8 eligible voters
	if resp.Turnout.Participants != 3 || resp.Turnout.Eligible != 8 || resp.Turnout.Percentage != 75 {
		t.Errorf("Unexpected turnout %+v", resp.Turnout)
	}
	if resp.Turnout.LastMilestone != 75 {
		t.Errorf("Expected last milestone 75, got %d", resp.Turnout.LastMilestone)
	}
}

func TestGetTallyUnknownElection(t *testing.T) {
	s := newTestStack(t)

	req := httptest.NewRequest("GET", "/elections/missing/tally", nil)
	req.SetPathValue("id", "missing")
	w := httptest.NewRecorder()
	s.results.GetTally(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestReconcile(t *testing.T) {
	s := newTestStack(t)
	electionID := testutil.CreateTestElection(t, s.store, models.StatusActive, models.Eligibility{}, "President")
	cand := testutil.AddTestCandidate(t, s.store, electionID, "President", "Asha", true)
	for _, v := range testutil.CreateTestVoters(t, s.store, 3, "CSE", 2) {
		testutil.AssertStatus(t, s.castVote(t, v, electionID, models.CastVoteRequest{CandidateID: cand.ID, Position: "President"}), http.StatusCreated)
	}
	s.drain(t)

	newRequest := func() *http.Request {
		req := httptest.NewRequest("POST", "/elections/"+electionID+"/tally/reconcile", nil)
		req.SetPathValue("id", electionID)
		return req
	}

	// Nothing to repair
	w := asAdmin(t, s, s.results.Reconcile, newRequest())
	testutil.AssertStatus(t, w, http.StatusOK)
	var report models.ReconcileReport
	testutil.AssertJSON(t, w, &report)
	if report.Corrected || report.TotalVotes != 3 {
		t.Errorf("Unexpected report %+v", report)
	}

	if _, err := s.store.DB.Exec(s.store.Rebind(`UPDATE tally_entry SET vote_count = 99 WHERE election_id = ?`), electionID); err != nil {
		t.Fatal(err)
	}

	w = asAdmin(t, s, s.results.Reconcile, newRequest())
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertJSON(t, w, &report)
	if !report.Corrected || report.TotalVotes != 3 || report.Participants != 3 {
		t.Errorf("Unexpected report after drift %+v", report)
	}

	req := httptest.NewRequest("GET", "/elections/"+electionID+"/tally", nil)
	req.SetPathValue("id", electionID)
	tw := httptest.NewRecorder()
	s.results.GetTally(tw, req)
	var resp models.TallyResponse
	testutil.AssertJSON(t, tw, &resp)
	if resp.Tally.Positions[0].Candidates[0].Votes != 3 {
		t.Errorf("Expected repaired count 3, got %+v", resp.Tally.Positions[0].Candidates[0])
	}
}

func TestReconcileRequiresAdmin(t *testing.T) {
	s := newTestStack(t)
	electionID := testutil.CreateTestElection(t, s.store, models.StatusActive, models.Eligibility{}, "President")
	voter := testutil.CreateTestVoter(t, s.store, "CSE", 2)

	req := testutil.MakeRequest("POST", "/elections/"+electionID+"/tally/reconcile", nil, testutil.AuthHeader(t, voter))
	req.SetPathValue("id", electionID)
	w := httptest.NewRecorder()
	middleware.RequireRole(secret, models.RoleAdmin, s.results.Reconcile)(w, req)
	testutil.AssertStatus(t, w, http.StatusForbidden)
}
