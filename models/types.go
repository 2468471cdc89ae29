package models

import (
	"math"
	"time"
)

// Election status constants
const (
	StatusDraft     = "draft"
	StatusUpcoming  = "upcoming"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Principal roles
const (
	RoleVoter     = "voter"
	RoleCandidate = "candidate"
	RoleAdmin     = "admin"
)

// ValidStatus reports whether s is a known election status.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusUpcoming, StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Request types

type CastVoteRequest struct {
	CandidateID string `json:"candidate_id"`
	Position    string `json:"position"`
}

type StatusChangeRequest struct {
	ElectionID string `json:"election_id"`
	OldStatus  string `json:"old_status"`
	NewStatus  string `json:"new_status"`
}

type CandidateApprovedRequest struct {
	CandidateID string `json:"candidate_id"`
}

// Response types

type TallyResponse struct {
	Tally   Tally   `json:"tally"`
	Turnout Turnout `json:"turnout"`
}

type ReconcileReport struct {
	ElectionID   string `json:"election_id"`
	TotalVotes   int64  `json:"total_votes"`
	Participants int64  `json:"participants"`
	Entries      int    `json:"entries"`
	Corrected    bool   `json:"corrected"`
}

// Domain types

// Principal is the authenticated identity behind a request or connection.
type Principal struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Branch string `json:"branch,omitempty"`
	Year   int    `json:"year,omitempty"`
}

type Election struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Status      string      `json:"status"`
	Eligibility Eligibility `json:"eligibility"`
	Positions   []string    `json:"positions"`
}

type CandidateSlot struct {
	ID         string     `json:"id"`
	ElectionID string     `json:"election_id"`
	Position   string     `json:"position"`
	UserID     string     `json:"user_id"`
	Name       string     `json:"name"`
	Approved   bool       `json:"approved"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
}

// Vote is immutable once admitted. At most one exists per
// (VoterID, ElectionID, Position).
type Vote struct {
	ID          string    `json:"id"`
	VoterID     string    `json:"-"`
	ElectionID  string    `json:"election_id"`
	Position    string    `json:"position"`
	CandidateID string    `json:"candidate_id"`
	CastAt      time.Time `json:"cast_at"`
}

type VoteReceipt struct {
	VoteID      string    `json:"vote_id"`
	ElectionID  string    `json:"election_id"`
	Position    string    `json:"position"`
	CandidateID string    `json:"candidate_id"`
	CastAt      time.Time `json:"cast_at"`
}

type CandidateCount struct {
	CandidateID string     `json:"candidate_id"`
	Name        string     `json:"name"`
	Votes       int64      `json:"votes"`
	ApprovedAt  *time.Time `json:"-"`
}

type PositionTally struct {
	Position   string           `json:"position"`
	Candidates []CandidateCount `json:"candidates"`
}

type Tally struct {
	ElectionID string          `json:"election_id"`
	Positions  []PositionTally `json:"positions"`
	TotalVotes int64           `json:"total_votes"`
}

// TurnoutCounters are the persisted per-election counters.
type TurnoutCounters struct {
	TotalVotes    int64 `json:"total_votes"`
	Participants  int64 `json:"participants"`
	LastMilestone int   `json:"last_milestone"`
}

// Turnout is a computed view over TurnoutCounters and the eligible population.
// Percentage is unrounded; use Rounded for display.
type Turnout struct {
	ElectionID    string  `json:"election_id"`
	TotalVotes    int64   `json:"total_votes"`
	Participants  int64   `json:"participants"`
	Eligible      int64   `json:"eligible"`
	Percentage    float64 `json:"percentage"`
	LastMilestone int     `json:"last_milestone"`
}

// Rounded returns the turnout percentage rounded to one decimal place.
func (t Turnout) Rounded() float64 {
	return math.Round(t.Percentage*10) / 10
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
