// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package admission

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Atharv226/CampusVote/broadcast"
	"github.com/Atharv226/CampusVote/db"
	"github.com/Atharv226/CampusVote/electorate"
	"github.com/Atharv226/CampusVote/ledger"
	"github.com/Atharv226/CampusVote/milestone"
	"github.com/Atharv226/CampusVote/models"
	"github.com/Atharv226/CampusVote/tally"
)

const defaultPropagationTimeout = 5 * time.Second

// Config wires a Controller. Broadcaster may be nil to run without live
// channels; Logger may be nil to use slog.Default.
type Config struct {
	Store              *db.Store
	Ledger             *ledger.Gateway
	Tally              *tally.Store
	Electorate         *electorate.Directory
	Detector           *milestone.Detector
	Broadcaster        *broadcast.Broadcaster
	Logger             *slog.Logger
	PropagationTimeout time.Duration
}

// Controller admits votes. Admission and its counter updates commit in one
// transaction; propagation to observers happens afterwards on its own
// goroutine and can never fail or delay a vote.
type Controller struct {
	store       *db.Store
	ledger      *ledger.Gateway
	tally       *tally.Store
	electorate  *electorate.Directory
	detector    *milestone.Detector
	broadcaster *broadcast.Broadcaster
	logger      *slog.Logger
	timeout     time.Duration

	// mu guards closed, inflight and idle. idle is closed whenever inflight
	// drops to zero and replaced when propagation starts again.
	mu       sync.Mutex
	closed   bool
	inflight int
	idle     chan struct{}
}

func New(cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.PropagationTimeout
	if timeout <= 0 {
		timeout = defaultPropagationTimeout
	}
	idle := make(chan struct{})
	close(idle)
	return &Controller{
		store:       cfg.Store,
		ledger:      cfg.Ledger,
		tally:       cfg.Tally,
		electorate:  cfg.Electorate,
		detector:    cfg.Detector,
		broadcaster: cfg.Broadcaster,
		logger:      logger.With("module", "admission"),
		timeout:     timeout,
		idle:        idle,
	}
}

// CastVote admits one vote for voter. Checks run in order: the election
// exists and is active, the voter is eligible, the candidate is approved
// for the position, and the voter has not already voted for it. Every check
// after the advisory duplicate pre-check runs inside the admission
// transaction.
//
// Errors: models.ErrInvalidVote, ErrElectionNotFound, ErrElectionNotActive,
// ErrNotEligible, ErrCandidateNotApproved, ErrAlreadyVoted, and the
// retryable ErrStorageUnavailable.
func (c *Controller) CastVote(ctx context.Context, voter models.Principal, electionID, candidateID, position string) (models.VoteReceipt, error) {
	electionID = strings.TrimSpace(electionID)
	candidateID = strings.TrimSpace(candidateID)
	position = strings.TrimSpace(position)
	if voter.UserID == "" || electionID == "" || candidateID == "" || position == "" {
		return models.VoteReceipt{}, fmt.Errorf("%w: voter, election, candidate and position are required", models.ErrInvalidVote)
	}

	voted, err := c.ledger.HasVoted(ctx, voter.UserID, electionID, position)
	if err != nil {
		return models.VoteReceipt{}, err
	}
	if voted {
		return models.VoteReceipt{}, models.ErrAlreadyVoted
	}

	vote := models.Vote{
		ID:          uuid.NewString(),
		VoterID:     voter.UserID,
		ElectionID:  electionID,
		Position:    position,
		CandidateID: candidateID,
		CastAt:      time.Now().UTC(),
	}

	var counters models.TurnoutCounters
	err = c.store.InTx(ctx, func(tx *sql.Tx) error {
		election, err := c.electorate.Election(ctx, tx, electionID, true)
		if err != nil {
			return err
		}
		if election.Status != models.StatusActive {
			return fmt.Errorf("%w: status is %s", models.ErrElectionNotActive, election.Status)
		}

		if err := election.Eligibility.Check(voter); err != nil {
			return err
		}

		candidate, err := c.electorate.Candidate(ctx, tx, candidateID)
		if errors.Is(err, electorate.ErrCandidateNotFound) {
			return fmt.Errorf("%w: unknown candidate %s", models.ErrCandidateNotApproved, candidateID)
		}
		if err != nil {
			return err
		}
		if candidate.ElectionID != electionID || candidate.Position != position {
			return fmt.Errorf("%w: candidate %s is not standing for %s", models.ErrCandidateNotApproved, candidateID, position)
		}
		if !candidate.Approved {
			return fmt.Errorf("%w: candidate %s is pending approval", models.ErrCandidateNotApproved, candidateID)
		}

		if err := c.ledger.Admit(ctx, tx, vote); err != nil {
			return err
		}
		if err := c.tally.ApplyVote(ctx, tx, vote); err != nil {
			return err
		}
		counters, err = c.tally.RecordTurnout(ctx, tx, vote)
		return err
	})
	if errors.Is(err, models.ErrDuplicateVote) {
		return models.VoteReceipt{}, models.ErrAlreadyVoted
	}
	if err != nil {
		if models.Retryable(err) {
			c.logger.Warn("vote admission failed", "election_id", electionID, "position", position, "error", err)
		}
		return models.VoteReceipt{}, err
	}

	c.logger.Info("vote admitted",
		"election_id", electionID,
		"position", position,
		"vote_id", vote.ID,
		"total_votes", counters.TotalVotes,
	)

	c.propagate(vote)

	return models.VoteReceipt{
		VoteID:      vote.ID,
		ElectionID:  vote.ElectionID,
		Position:    vote.Position,
		CandidateID: vote.CandidateID,
		CastAt:      vote.CastAt,
	}, nil
}

// propagate snapshots the tally, evaluates milestones, and publishes, all
// off the voter's request path. Failures are logged and dropped.
func (c *Controller) propagate(v models.Vote) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.inflight == 0 {
		c.idle = make(chan struct{})
	}
	c.inflight++
	c.mu.Unlock()

	go func() {
		defer c.done()
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		snapshot, err := c.tally.Get(ctx, v.ElectionID)
		if err != nil {
			c.logger.Warn("tally snapshot failed", "election_id", v.ElectionID, "error", err)
			return
		}
		_, err = c.detector.Announce(ctx, v.ElectionID, func(eval milestone.Evaluation) {
			c.broadcaster.VoteCast(ctx, v, snapshot, eval.Turnout)
			for _, m := range eval.Crossed {
				c.broadcaster.Milestone(ctx, v.ElectionID, m, eval.Turnout)
			}
		})
		if err != nil {
			c.logger.Warn("milestone evaluation failed", "election_id", v.ElectionID, "error", err)
		}
	}()
}

func (c *Controller) done() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--
	if c.inflight == 0 {
		close(c.idle)
	}
}

// Drain waits until no propagation is in flight or ctx ends. New votes
// keep propagating; under steady load Drain returns at the first idle
// moment.
func (c *Controller) Drain(ctx context.Context) error {
	c.mu.Lock()
	idle := c.idle
	c.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops starting new propagation and drains what is in flight. Votes
// admitted after Close are still committed; only their broadcasts are
// skipped.
func (c *Controller) Close(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return c.Drain(ctx)
}
