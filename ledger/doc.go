// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package ledger stores admitted votes. A vote row is written once inside the
// admission transaction and never updated or deleted; the
// (voter_id, election_id, position) constraint is the exactly-once guarantee.
package ledger
