// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package broadcast

import (
	"context"
	"time"

	"github.com/Atharv226/CampusVote/models"
	"github.com/Atharv226/CampusVote/registry"
)

// VoteCast announces an admitted vote on the election channel and pushes the
// full tally to the live results channel. Each carries the total vote count
// read alongside its payload as Seq.
func (b *Broadcaster) VoteCast(ctx context.Context, v models.Vote, t models.Tally, turnout models.Turnout) {
	if b == nil {
		return
	}
	now := time.Now().UTC()
	seq := turnout.TotalVotes

	b.Publish(ctx, registry.ElectionChannel(v.ElectionID), models.Event{
		Kind: models.EventVoteCast,
		Seq:  seq,
		Payload: models.VoteCastPayload{
			ElectionID:        v.ElectionID,
			Position:          v.Position,
			TotalVotes:        turnout.TotalVotes,
			TurnoutPercentage: turnout.Rounded(),
			Timestamp:         now,
		},
	})

	b.Publish(ctx, registry.LiveResultsChannel(v.ElectionID), models.Event{
		Kind: models.EventLiveResults,
		Seq:  t.TotalVotes,
		Payload: models.LiveResultsPayload{
			ElectionID:        v.ElectionID,
			Results:           t.Positions,
			TotalVotes:        t.TotalVotes,
			TurnoutPercentage: turnout.Rounded(),
			LastUpdated:       now,
		},
	})
}

// Milestone announces a crossed turnout threshold on the election channel.
func (b *Broadcaster) Milestone(ctx context.Context, electionID string, milestone int, turnout models.Turnout) {
	if b == nil {
		return
	}
	b.Publish(ctx, registry.ElectionChannel(electionID), models.Event{
		Kind: models.EventTurnoutMilestone,
		Payload: models.MilestonePayload{
			ElectionID:     electionID,
			Milestone:      milestone,
			CurrentTurnout: turnout.Rounded(),
			Timestamp:      time.Now().UTC(),
		},
	})
}

// ElectionStatusChanged notifies election observers and all admins.
func (b *Broadcaster) ElectionStatusChanged(ctx context.Context, e models.Election, oldStatus string) {
	if b == nil {
		return
	}
	ev := models.Event{
		Kind: models.EventElectionStatusChanged,
		Payload: models.StatusChangedPayload{
			ElectionID: e.ID,
			Title:      e.Title,
			OldStatus:  oldStatus,
			NewStatus:  e.Status,
			Timestamp:  time.Now().UTC(),
		},
	}
	b.Publish(ctx, registry.ElectionChannel(e.ID), ev)
	b.Publish(ctx, registry.RoleChannel(models.RoleAdmin), ev)
}

// CandidateApproved tells the candidate directly and announces the new
// candidate to election observers.
func (b *Broadcaster) CandidateApproved(ctx context.Context, c models.CandidateSlot) {
	if b == nil {
		return
	}
	payload := models.CandidateApprovedPayload{
		ElectionID:  c.ElectionID,
		CandidateID: c.ID,
		Name:        c.Name,
		Position:    c.Position,
		Timestamp:   time.Now().UTC(),
	}
	b.Publish(ctx, registry.UserChannel(c.UserID), models.Event{Kind: models.EventCandidateApproved, Payload: payload})
	b.Publish(ctx, registry.ElectionChannel(c.ElectionID), models.Event{Kind: models.EventNewCandidateApproved, Payload: payload})
}
