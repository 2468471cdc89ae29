// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"fmt"
	"strings"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(ctx context.Context, s *Store) error {
	for _, stmt := range statements(schema) {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// DropSchema removes every table created by CreateSchema.
func DropSchema(ctx context.Context, s *Store) error {
	for _, table := range Tables {
		if _, err := s.DB.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return fmt.Errorf("failed to drop %s: %w", table, err)
		}
	}
	return nil
}

// Tables lists every table in dependency order, dependents first.
var Tables = []string{
	"election_participant",
	"election_turnout",
	"tally_entry",
	"vote",
	"candidate_slot",
	"voter",
	"election_year",
	"election_branch",
	"election_position",
	"election",
}

// statements splits a script on semicolons. The schema has no semicolons
// inside literals.
func statements(script string) []string {
	var out []string
	for _, stmt := range strings.Split(script, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

const schema = `
-- Elections (owned by the lifecycle service, read-only here)
CREATE TABLE IF NOT EXISTS election (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'upcoming', 'active', 'completed', 'cancelled')),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_election_status ON election(status);

CREATE TABLE IF NOT EXISTS election_position (
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    position TEXT NOT NULL,
    PRIMARY KEY (election_id, position)
);

-- Eligibility: no rows for a dimension means no restriction on it
CREATE TABLE IF NOT EXISTS election_branch (
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    branch TEXT NOT NULL,
    PRIMARY KEY (election_id, branch)
);

CREATE TABLE IF NOT EXISTS election_year (
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    year INTEGER NOT NULL,
    PRIMARY KEY (election_id, year)
);

-- Registered users (owned by the registration service)
CREATE TABLE IF NOT EXISTS voter (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    role TEXT NOT NULL DEFAULT 'voter' CHECK (role IN ('voter', 'candidate', 'admin')),
    branch TEXT NOT NULL DEFAULT '',
    year INTEGER NOT NULL DEFAULT 0,
    is_active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE INDEX IF NOT EXISTS idx_voter_population ON voter(role, is_active, branch, year);

-- Candidate slots (owned by the candidate service)
CREATE TABLE IF NOT EXISTS candidate_slot (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    position TEXT NOT NULL,
    user_id TEXT NOT NULL,
    name TEXT NOT NULL,
    approved BOOLEAN NOT NULL DEFAULT FALSE,
    approved_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_candidate_slot_election ON candidate_slot(election_id, position);

-- Vote ledger: append-only, one vote per voter per position
CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    voter_id TEXT NOT NULL,
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    position TEXT NOT NULL,
    candidate_id TEXT NOT NULL REFERENCES candidate_slot(id),
    cast_at TIMESTAMP NOT NULL,
    UNIQUE (voter_id, election_id, position)
);

CREATE INDEX IF NOT EXISTS idx_vote_election ON vote(election_id, position, candidate_id);

-- Tally counters, maintained incrementally in the admission transaction
CREATE TABLE IF NOT EXISTS tally_entry (
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    position TEXT NOT NULL,
    candidate_id TEXT NOT NULL,
    vote_count BIGINT NOT NULL DEFAULT 0,
    PRIMARY KEY (election_id, position, candidate_id)
);

CREATE TABLE IF NOT EXISTS election_turnout (
    election_id TEXT PRIMARY KEY REFERENCES election(id) ON DELETE CASCADE,
    total_votes BIGINT NOT NULL DEFAULT 0,
    participants BIGINT NOT NULL DEFAULT 0,
    last_milestone INTEGER NOT NULL DEFAULT 0,
    updated_at TIMESTAMP NOT NULL
);

-- Distinct voters who cast at least one vote
CREATE TABLE IF NOT EXISTS election_participant (
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    voter_id TEXT NOT NULL,
    PRIMARY KEY (election_id, voter_id)
);
`
