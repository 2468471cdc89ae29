// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package admission decides whether a submitted vote enters the ledger.

# Admission

Controller.CastVote runs every check and every counter update for one vote
in a single transaction:

 1. re-read the election (FOR SHARE on Postgres) and require status active
 2. check the voter's branch, year, and role against the election's eligibility
 3. require an approved candidate standing for the requested position
 4. insert the vote; the ledger's unique constraint turns a race into
    models.ErrAlreadyVoted
 5. increment the candidate's tally entry and the election's turnout counters

Nothing is visible to readers until the transaction commits. Any storage
failure rolls the whole vote back and surfaces as the retryable
models.ErrStorageUnavailable.

Before opening the transaction the controller asks the ledger whether the
voter has already voted for the position. That pre-check only saves a
transaction in the common resubmit case; the constraint is what guarantees
exactly-once.

# Propagation

After commit the controller snapshots the tally, claims turnout milestones
through Detector.Announce, and publishes through the broadcaster. This runs
on a separate goroutine with its own timeout. Propagation failures are
logged and never reach the voter. Drain waits for outstanding propagation; Close additionally stops
new propagation and is called during shutdown.

Drain is safe to call while votes are still arriving; it returns the first
time no propagation is in flight.
*/
package admission
