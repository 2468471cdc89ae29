// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Atharv226/CampusVote/db"
	"github.com/Atharv226/CampusVote/models"
)

// Gateway is the only writer of the vote table.
type Gateway struct {
	store *db.Store
}

func New(store *db.Store) *Gateway {
	return &Gateway{store: store}
}

// Admit inserts v inside tx. The (voter, election, position) uniqueness
// constraint makes this the single point where duplicates are decided: a
// violation returns models.ErrDuplicateVote, anything else is wrapped in
// models.ErrStorageUnavailable.
func (g *Gateway) Admit(ctx context.Context, tx *sql.Tx, v models.Vote) error {
	_, err := tx.ExecContext(ctx, g.store.Rebind(`
		INSERT INTO vote (id, voter_id, election_id, position, candidate_id, cast_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), v.ID, v.VoterID, v.ElectionID, v.Position, v.CandidateID, v.CastAt)
	if err == nil {
		return nil
	}
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("%w: voter %s, election %s, position %s", models.ErrDuplicateVote, v.VoterID, v.ElectionID, v.Position)
	}
	return db.Unavailable(fmt.Errorf("insert vote: %w", err))
}

// HasVoted is an advisory read for rejecting obvious duplicates early. A
// false result does not guarantee Admit will succeed.
func (g *Gateway) HasVoted(ctx context.Context, voterID, electionID, position string) (bool, error) {
	var n int
	err := g.store.DB.QueryRowContext(ctx, g.store.Rebind(`
		SELECT COUNT(*) FROM vote WHERE voter_id = ? AND election_id = ? AND position = ?
	`), voterID, electionID, position).Scan(&n)
	if err != nil {
		return false, db.Unavailable(fmt.Errorf("check existing vote: %w", err))
	}
	return n > 0, nil
}

// Count returns the number of ledger rows for an election.
func (g *Gateway) Count(ctx context.Context, electionID string) (int64, error) {
	var n int64
	err := g.store.DB.QueryRowContext(ctx, g.store.Rebind(`SELECT COUNT(*) FROM vote WHERE election_id = ?`), electionID).Scan(&n)
	if err != nil {
		return 0, db.Unavailable(fmt.Errorf("count votes: %w", err))
	}
	return n, nil
}
