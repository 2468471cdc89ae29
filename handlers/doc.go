// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the CampusVote API.

# Handler Types

Each handler is a struct holding the components it needs:

  - VotingHandler: vote submission through the admission controller
  - ResultsHandler: tally and turnout reads, admin reconciliation
  - NotificationHandler: lifecycle announcements from the admin services

Handlers are created via constructor functions:

	votingHandler := handlers.NewVotingHandler(controller)

# Voting

	POST /elections/{id}/votes → CastVote (returns a vote receipt)

The voter is the bearer token's principal; the body only names the
candidate and position:

	{"candidate_id": "...", "position": "President"}

# Results

	GET  /elections/{id}/tally           → GetTally
	POST /elections/{id}/tally/reconcile → Reconcile (admin)

Turnout percentages are rounded to one decimal place in responses.

# Notifications

	POST /notifications/election-status     → ElectionStatusChanged (admin)
	POST /notifications/candidate-approved  → CandidateApproved (admin)

Both re-read the stored state and refuse to announce anything that does not
match it. They respond 202 once the event has been handed to the
broadcaster.

# Errors

StatusFor maps domain errors to statuses:

	ErrInvalidVote           400
	ErrNotEligible           403
	ErrElectionNotFound      404
	ErrElectionNotActive     409
	ErrAlreadyVoted          409
	ErrCandidateNotApproved  422
	ErrStorageUnavailable    503 with Retry-After
*/
package handlers
