// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain types, events, and errors shared by every
component of the vote admission core.

# Domain Types

  - Election: status, eligibility, positions (read-only here)
  - CandidateSlot: a candidate standing for one position
  - Vote: one admitted vote, immutable
  - Tally, PositionTally, CandidateCount: per-candidate counts
  - TurnoutCounters, Turnout: persisted counters and the computed view
  - Principal: authenticated user and role

# Eligibility

Eligibility lists allowed branches and years. An empty list means no
restriction on that dimension:

	Eligibility{Branches: []string{"CSE"}}.Allows("CSE", 3) // true
	Eligibility{}.Allows("ME", 1)                          // true

Only principals with RoleVoter can ever be eligible.

# Events

Event kinds pushed to observers:

	vote_cast                 election channel
	live_results_update       live results channel (admins)
	turnout_milestone         election channel
	election_status_changed   election channel, role_admin
	candidate_approved        candidate's user channel
	new_candidate_approved    election channel

# Errors

Sentinel errors are matched with errors.Is. Storage failures wrap both
ErrStorageUnavailable and the driver error; Retryable reports them.
*/
package models
