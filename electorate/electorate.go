// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package electorate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Atharv226/CampusVote/db"
	"github.com/Atharv226/CampusVote/models"
)

// ErrCandidateNotFound is returned by Candidate for an unknown slot ID.
var ErrCandidateNotFound = errors.New("candidate not found")

// Directory reads elections, candidate slots, and the voter population.
// It never writes.
type Directory struct {
	store *db.Store
}

func New(store *db.Store) *Directory {
	return &Directory{store: store}
}

// Election loads an election with its eligibility and positions. With lock
// set, the election row is share-locked until q's transaction ends.
func (d *Directory) Election(ctx context.Context, q db.Querier, id string, lock bool) (models.Election, error) {
	query := `SELECT id, title, status FROM election WHERE id = ?`
	if lock {
		query += d.store.ShareLock()
	}

	var e models.Election
	err := q.QueryRowContext(ctx, d.store.Rebind(query), id).Scan(&e.ID, &e.Title, &e.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Election{}, fmt.Errorf("%w: %s", models.ErrElectionNotFound, id)
	}
	if err != nil {
		return models.Election{}, db.Unavailable(fmt.Errorf("query election: %w", err))
	}

	if e.Eligibility.Branches, err = d.strings(ctx, q, `SELECT branch FROM election_branch WHERE election_id = ? ORDER BY branch`, id); err != nil {
		return models.Election{}, err
	}
	if e.Eligibility.Years, err = d.years(ctx, q, id); err != nil {
		return models.Election{}, err
	}
	if e.Positions, err = d.strings(ctx, q, `SELECT position FROM election_position WHERE election_id = ? ORDER BY position`, id); err != nil {
		return models.Election{}, err
	}

	return e, nil
}

// Candidate loads a candidate slot by ID.
func (d *Directory) Candidate(ctx context.Context, q db.Querier, id string) (models.CandidateSlot, error) {
	var c models.CandidateSlot
	var approvedAt sql.NullTime
	err := q.QueryRowContext(ctx, d.store.Rebind(`
		SELECT id, election_id, position, user_id, name, approved, approved_at
		FROM candidate_slot WHERE id = ?
	`), id).Scan(&c.ID, &c.ElectionID, &c.Position, &c.UserID, &c.Name, &c.Approved, &approvedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CandidateSlot{}, fmt.Errorf("%w: %s", ErrCandidateNotFound, id)
	}
	if err != nil {
		return models.CandidateSlot{}, db.Unavailable(fmt.Errorf("query candidate: %w", err))
	}
	if approvedAt.Valid {
		t := approvedAt.Time
		c.ApprovedAt = &t
	}
	return c, nil
}

// CountEligible counts active voters admitted by the election's eligibility
// rules. A dimension with no rows is unrestricted, matching
// models.Eligibility.Allows.
func (d *Directory) CountEligible(ctx context.Context, q db.Querier, electionID string) (int64, error) {
	var n int64
	err := q.QueryRowContext(ctx, d.store.Rebind(`
		SELECT COUNT(*) FROM voter v
		WHERE v.role = ? AND v.is_active = TRUE
		  AND (NOT EXISTS (SELECT 1 FROM election_branch b WHERE b.election_id = ?)
		       OR EXISTS (SELECT 1 FROM election_branch b WHERE b.election_id = ? AND b.branch = v.branch))
		  AND (NOT EXISTS (SELECT 1 FROM election_year y WHERE y.election_id = ?)
		       OR EXISTS (SELECT 1 FROM election_year y WHERE y.election_id = ? AND y.year = v.year))
	`), models.RoleVoter, electionID, electionID, electionID, electionID).Scan(&n)
	if err != nil {
		return 0, db.Unavailable(fmt.Errorf("count eligible voters: %w", err))
	}
	return n, nil
}

func (d *Directory) strings(ctx context.Context, q db.Querier, query, id string) ([]string, error) {
	rows, err := q.QueryContext(ctx, d.store.Rebind(query), id)
	if err != nil {
		return nil, db.Unavailable(fmt.Errorf("query election details: %w", err))
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, db.Unavailable(fmt.Errorf("scan election details: %w", err))
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Unavailable(err)
	}
	return out, nil
}

func (d *Directory) years(ctx context.Context, q db.Querier, id string) ([]int, error) {
	rows, err := q.QueryContext(ctx, d.store.Rebind(`SELECT year FROM election_year WHERE election_id = ? ORDER BY year`), id)
	if err != nil {
		return nil, db.Unavailable(fmt.Errorf("query election years: %w", err))
	}
	defer rows.Close()

	out := []int{}
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, db.Unavailable(fmt.Errorf("scan election year: %w", err))
		}
		out = append(out, y)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Unavailable(err)
	}
	return out, nil
}
