// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"fmt"
	"slices"

	"github.com/dustin/go-humanize"
)

// Eligibility restricts an election to voters of the listed branches and
// years. An empty list places no restriction on that dimension.
type Eligibility struct {
	Branches []string `json:"branches"`
	Years    []int    `json:"years"`
}

// Allows reports whether a voter of the given branch and year is in the
// electorate.
func (e Eligibility) Allows(branch string, year int) bool {
	if len(e.Branches) > 0 && !slices.Contains(e.Branches, branch) {
		return false
	}
	if len(e.Years) > 0 && !slices.Contains(e.Years, year) {
		return false
	}
	return true
}

// Check returns ErrNotEligible, with a reason, unless p may vote under e.
func (e Eligibility) Check(p Principal) error {
	if p.Role != RoleVoter {
		return fmt.Errorf("%w: role %q cannot vote", ErrNotEligible, p.Role)
	}
	if len(e.Branches) > 0 && !slices.Contains(e.Branches, p.Branch) {
		return fmt.Errorf("%w: branch %q is not in the electorate", ErrNotEligible, p.Branch)
	}
	if len(e.Years) > 0 && !slices.Contains(e.Years, p.Year) {
		return fmt.Errorf("%w: %s year students are not in the electorate", ErrNotEligible, humanize.Ordinal(p.Year))
	}
	return nil
}
