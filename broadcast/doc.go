// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package broadcast fans events out to connections joined to a channel.
//
// Delivery is best effort: each sink is independent, failures are counted
// and logged, and sequenced events older than what a channel has already
// seen are dropped. notify.go builds the events for votes, milestones,
// election status changes, and candidate approvals.
package broadcast
