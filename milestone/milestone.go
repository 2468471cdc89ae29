// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package milestone

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/Atharv226/CampusVote/db"
	"github.com/Atharv226/CampusVote/electorate"
	"github.com/Atharv226/CampusVote/models"
	"github.com/Atharv226/CampusVote/tally"
)

// DefaultThresholds are the turnout percentages announced to observers.
var DefaultThresholds = []int{25, 50, 75, 100}

// maxAttempts bounds compare-and-set retries against concurrent evaluators.
const maxAttempts = 8

var ErrContention = errors.New("milestone update lost to concurrent evaluators")

// Evaluation is the outcome of one Evaluate call. Crossed holds thresholds
// this call is responsible for announcing, ascending.
type Evaluation struct {
	Turnout models.Turnout
	Crossed []int
}

// Detector decides when turnout crosses a threshold. Each threshold is
// reported by at most one Evaluate call per election.
type Detector struct {
	tally      *tally.Store
	electorate *electorate.Directory
	store      *db.Store
	thresholds []int
	logger     *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New validates thresholds (strictly ascending, each in 1-100) and returns a
// Detector. A nil logger uses slog.Default.
func New(store *db.Store, t *tally.Store, e *electorate.Directory, thresholds []int, logger *slog.Logger) (*Detector, error) {
	if len(thresholds) == 0 {
		thresholds = DefaultThresholds
	}
	prev := 0
	for _, th := range thresholds {
		if th <= prev || th > 100 {
			return nil, fmt.Errorf("invalid milestone thresholds %v: must be strictly ascending within 1-100", thresholds)
		}
		prev = th
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{
		tally:      t,
		electorate: e,
		store:      store,
		thresholds: slices.Clone(thresholds),
		logger:     logger,
		locks:      make(map[string]*sync.Mutex),
	}, nil
}

// Thresholds returns a copy of the configured thresholds.
func (d *Detector) Thresholds() []int {
	return slices.Clone(d.thresholds)
}

// Percent computes votes/eligible as a percentage clamped to [0, 100].
// Votes exceed eligible once voters fill several positions, hence the
// clamp. It is 0 when nobody is eligible.
func Percent(votes, eligible int64) float64 {
	if eligible <= 0 || votes <= 0 {
		return 0
	}
	pct := float64(votes) / float64(eligible) * 100
	return min(pct, 100)
}

// Crossed returns every threshold t with last < t <= turnout, ascending.
func Crossed(thresholds []int, last int, turnout float64) []int {
	var out []int
	for _, t := range thresholds {
		if t > last && float64(t) <= turnout {
			out = append(out, t)
		}
	}
	return out
}

// Turnout computes the current turnout view: total votes over the eligible
// population, which is recounted on every call. Participants is reported
// for display only.
func (d *Detector) Turnout(ctx context.Context, electionID string) (models.Turnout, error) {
	c, err := d.tally.Counters(ctx, electionID)
	if err != nil {
		return models.Turnout{}, err
	}
	eligible, err := d.electorate.CountEligible(ctx, d.store.DB, electionID)
	if err != nil {
		return models.Turnout{}, err
	}
	return models.Turnout{
		ElectionID:    electionID,
		TotalVotes:    c.TotalVotes,
		Participants:  c.Participants,
		Eligible:      eligible,
		Percentage:    Percent(c.TotalVotes, eligible),
		LastMilestone: c.LastMilestone,
	}, nil
}

// Evaluate computes turnout and claims any newly crossed thresholds by
// advancing the stored last milestone with a compare-and-set. If another
// evaluator advances it first, the counters are re-read and the claim is
// retried, so no threshold is reported twice.
func (d *Detector) Evaluate(ctx context.Context, electionID string) (Evaluation, error) {
	for range maxAttempts {
		turnout, err := d.Turnout(ctx, electionID)
		if err != nil {
			return Evaluation{}, err
		}

		crossed := Crossed(d.thresholds, turnout.LastMilestone, turnout.Percentage)
		if len(crossed) == 0 {
			return Evaluation{Turnout: turnout}, nil
		}

		highest := crossed[len(crossed)-1]
		won, err := d.tally.AdvanceMilestone(ctx, electionID, turnout.LastMilestone, highest)
		if err != nil {
			return Evaluation{}, err
		}
		if won {
			turnout.LastMilestone = highest
			d.logger.Info("turnout milestone reached",
				"election_id", electionID,
				"milestones", crossed,
				"votes", humanize.Comma(turnout.TotalVotes),
				"eligible", humanize.Comma(turnout.Eligible),
				"turnout", turnout.Rounded(),
			)
			return Evaluation{Turnout: turnout, Crossed: crossed}, nil
		}
	}
	return Evaluation{}, fmt.Errorf("%w: election %s", ErrContention, electionID)
}

// Announce evaluates the election and hands the result to publish while
// holding the election's lock, so thresholds claimed by concurrent callers
// in this process reach publish in ascending order. publish must not block.
func (d *Detector) Announce(ctx context.Context, electionID string, publish func(Evaluation)) (Evaluation, error) {
	lock := d.lock(electionID)
	lock.Lock()
	defer lock.Unlock()

	eval, err := d.Evaluate(ctx, electionID)
	if err != nil {
		return Evaluation{}, err
	}
	publish(eval)
	return eval, nil
}

func (d *Detector) lock(electionID string) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.locks[electionID]
	if !ok {
		l = &sync.Mutex{}
		d.locks[electionID] = l
	}
	return l
}
