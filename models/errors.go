// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "errors"

var (
	ErrInvalidVote          = errors.New("invalid vote")
	ErrNotEligible          = errors.New("voter is not eligible for this election")
	ErrElectionNotFound     = errors.New("election not found")
	ErrElectionNotActive    = errors.New("election is not active")
	ErrCandidateNotApproved = errors.New("candidate is not approved for this position")
	ErrAlreadyVoted         = errors.New("voter has already voted for this position")
	ErrForbidden            = errors.New("forbidden")
	ErrStorageUnavailable   = errors.New("storage unavailable")
	ErrDeliveryFailed       = errors.New("event delivery failed")

	// ErrDuplicateVote is raised by the ledger on a uniqueness violation and
	// translated to ErrAlreadyVoted before leaving the admission path.
	ErrDuplicateVote = errors.New("duplicate vote")

	ErrUnknownConnection = errors.New("unknown connection")
	ErrQuotaExceeded     = errors.New("channel quota exceeded")
)

// Retryable reports whether the failed operation may be retried unchanged.
func Retryable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}
