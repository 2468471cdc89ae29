// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package electorate reads elections, candidates, and the eligible voter
// population. It never writes.
package electorate
