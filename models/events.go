// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

type EventKind string

const (
	EventVoteCast              EventKind = "vote_cast"
	EventLiveResults           EventKind = "live_results_update"
	EventTurnoutMilestone      EventKind = "turnout_milestone"
	EventElectionStatusChanged EventKind = "election_status_changed"
	EventCandidateApproved     EventKind = "candidate_approved"
	EventNewCandidateApproved  EventKind = "new_candidate_approved"
)

// Event is a single push notification. Seq, when non-zero, is the election's
// total vote count at snapshot time and orders tally-bearing events.
type Event struct {
	Kind    EventKind `json:"type"`
	Channel string    `json:"channel"`
	Seq     int64     `json:"seq,omitempty"`
	Payload any       `json:"payload"`
}

type VoteCastPayload struct {
	ElectionID        string    `json:"election_id"`
	Position          string    `json:"position"`
	TotalVotes        int64     `json:"total_votes"`
	TurnoutPercentage float64   `json:"turnout_percentage"`
	Timestamp         time.Time `json:"timestamp"`
}

type LiveResultsPayload struct {
	ElectionID        string          `json:"election_id"`
	Results           []PositionTally `json:"results"`
	TotalVotes        int64           `json:"total_votes"`
	TurnoutPercentage float64         `json:"turnout_percentage"`
	LastUpdated       time.Time       `json:"last_updated"`
}

type MilestonePayload struct {
	ElectionID     string    `json:"election_id"`
	Milestone      int       `json:"milestone"`
	CurrentTurnout float64   `json:"current_turnout"`
	Timestamp      time.Time `json:"timestamp"`
}

type StatusChangedPayload struct {
	ElectionID string    `json:"election_id"`
	Title      string    `json:"title"`
	OldStatus  string    `json:"old_status"`
	NewStatus  string    `json:"new_status"`
	Timestamp  time.Time `json:"timestamp"`
}

type CandidateApprovedPayload struct {
	ElectionID  string    `json:"election_id"`
	CandidateID string    `json:"candidate_id"`
	Name        string    `json:"name"`
	Position    string    `json:"position"`
	Timestamp   time.Time `json:"timestamp"`
}
