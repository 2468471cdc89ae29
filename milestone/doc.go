// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package milestone detects turnout thresholds.

Turnout is total votes over the currently eligible population, recounted on
every evaluation and clamped to 100, since a voter may fill several
positions. Evaluate advances the election's
last_milestone with compare-and-swap, so each threshold is reported by
exactly one evaluator even when several run at once. A jump across several
thresholds reports all of them in ascending order. Announce holds a
per-election lock from the claim until its callback has published, so
milestones leave this process in ascending order.
*/
package milestone
