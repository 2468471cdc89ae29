// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Atharv226/CampusVote/models"
	"github.com/Atharv226/CampusVote/testutil"
)

// TestConcurrentVoteSubmissions verifies that simultaneous votes from
// different voters are all admitted and counted exactly once.
func TestConcurrentVoteSubmissions(t *testing.T) {
	s := newTestStack(t)
	electionID := testutil.CreateTestElection(t, s.store, models.StatusActive, models.Eligibility{}, "President")
	optA := testutil.AddTestCandidate(t, s.store, electionID, "President", "Asha", true)
	optB := testutil.AddTestCandidate(t, s.store, electionID, "President", "Ravi", true)

	numVoters := 20
	voters := testutil.CreateTestVoters(t, s.store, numVoters, "CSE", 2)

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i, v := range voters {
		wg.Add(1)
		go func(i int, v models.Principal) {
			defer wg.Done()
			cand := optA.ID
			if i%2 == 1 {
				cand = optB.ID
			}
			w := s.castVote(t, v, electionID, models.CastVoteRequest{CandidateID: cand, Position: "President"})
			if w.Code == http.StatusCreated {
				successCount.Add(1)
			}
		}(i, v)
	}

	wg.Wait()
	s.drain(t)

	if int(successCount.Load()) != numVoters {
		t.Errorf("Expected %d successful votes, got %d", numVoters, successCount.Load())
	}

	var voteCount, distinct int
	err := s.store.DB.QueryRow(s.store.Rebind("SELECT COUNT(*), COUNT(DISTINCT voter_id) FROM vote WHERE election_id = ?"), electionID).Scan(&voteCount, &distinct)
	if err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	if voteCount != numVoters || distinct != numVoters {
		t.Errorf("Expected %d votes from distinct voters, got %d from %d", numVoters, voteCount, distinct)
	}

	c, err := s.tally.Counters(t.Context(), electionID)
	if err != nil {
		t.Fatal(err)
	}
	if c.TotalVotes != int64(numVoters) || c.Participants != int64(numVoters) || c.LastMilestone != 100 {
		t.Errorf("Unexpected counters %+v", c)
	}
}

// TestConcurrentDuplicateVotes verifies that when one voter submits the same
// vote many times at once, exactly one is admitted.
func TestConcurrentDuplicateVotes(t *testing.T) {
	s := newTestStack(t)
	electionID := testutil.CreateTestElection(t, s.store, models.StatusActive, models.Eligibility{}, "President")
	cand := testutil.AddTestCandidate(t, s.store, electionID, "President", "Asha", true)
	voter := testutil.CreateTestVoter(t, s.store, "CSE", 2)

	numAttempts := 10

	var created, conflicts atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numAttempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := s.castVote(t, voter, electionID, models.CastVoteRequest{CandidateID: cand.ID, Position: "President"})
			switch w.Code {
			case http.StatusCreated:
				created.Add(1)
			case http.StatusConflict:
				conflicts.Add(1)
			}
		}()
	}

	wg.Wait()
	s.drain(t)

	if created.Load() != 1 {
		t.Errorf("Expected exactly 1 admitted vote, got %d", created.Load())
	}
	if conflicts.Load() != int32(numAttempts-1) {
		t.Errorf("Expected %d conflicts, got %d", numAttempts-1, conflicts.Load())
	}

	c, _ := s.tally.Counters(t.Context(), electionID)
	if c.TotalVotes != 1 {
		t.Errorf("Expected tally total 1, got %d", c.TotalVotes)
	}
}
