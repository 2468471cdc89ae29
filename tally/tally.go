// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/Atharv226/CampusVote/db"
	"github.com/Atharv226/CampusVote/models"
)

// Store keeps per-candidate counts and per-election turnout counters.
// Counters change only through keyed atomic statements, so concurrent
// admissions never lose an increment.
type Store struct {
	store *db.Store
}

func New(store *db.Store) *Store {
	return &Store{store: store}
}

// ApplyVote increments the count for the vote's candidate inside tx.
func (s *Store) ApplyVote(ctx context.Context, tx *sql.Tx, v models.Vote) error {
	_, err := tx.ExecContext(ctx, s.store.Rebind(`
		INSERT INTO tally_entry (election_id, position, candidate_id, vote_count)
		VALUES (?, ?, ?, 1)
		ON CONFLICT (election_id, position, candidate_id)
		DO UPDATE SET vote_count = tally_entry.vote_count + 1
	`), v.ElectionID, v.Position, v.CandidateID)
	if err != nil {
		return db.Unavailable(fmt.Errorf("increment tally: %w", err))
	}
	return nil
}

// RecordTurnout counts the vote toward the election total and, if it is the
// voter's first vote in the election, toward distinct participants.
func (s *Store) RecordTurnout(ctx context.Context, tx *sql.Tx, v models.Vote) (models.TurnoutCounters, error) {
	res, err := tx.ExecContext(ctx, s.store.Rebind(`
		INSERT INTO election_participant (election_id, voter_id) VALUES (?, ?)
		ON CONFLICT (election_id, voter_id) DO NOTHING
	`), v.ElectionID, v.VoterID)
	if err != nil {
		return models.TurnoutCounters{}, db.Unavailable(fmt.Errorf("record participant: %w", err))
	}
	firstVote, err := res.RowsAffected()
	if err != nil {
		return models.TurnoutCounters{}, db.Unavailable(fmt.Errorf("record participant: %w", err))
	}

	var c models.TurnoutCounters
	err = tx.QueryRowContext(ctx, s.store.Rebind(`
		INSERT INTO election_turnout (election_id, total_votes, participants, last_milestone, updated_at)
		VALUES (?, 1, ?, 0, ?)
		ON CONFLICT (election_id) DO UPDATE SET
			total_votes = election_turnout.total_votes + 1,
			participants = election_turnout.participants + excluded.participants,
			updated_at = excluded.updated_at
		RETURNING total_votes, participants, last_milestone
	`), v.ElectionID, firstVote, time.Now().UTC()).Scan(&c.TotalVotes, &c.Participants, &c.LastMilestone)
	if err != nil {
		return models.TurnoutCounters{}, db.Unavailable(fmt.Errorf("increment turnout: %w", err))
	}
	return c, nil
}

// Counters returns the turnout counters, all zero for an election without
// votes.
func (s *Store) Counters(ctx context.Context, electionID string) (models.TurnoutCounters, error) {
	var c models.TurnoutCounters
	err := s.store.DB.QueryRowContext(ctx, s.store.Rebind(`
		SELECT total_votes, participants, last_milestone FROM election_turnout WHERE election_id = ?
	`), electionID).Scan(&c.TotalVotes, &c.Participants, &c.LastMilestone)
	if errors.Is(err, sql.ErrNoRows) {
		return models.TurnoutCounters{}, nil
	}
	if err != nil {
		return models.TurnoutCounters{}, db.Unavailable(fmt.Errorf("query turnout: %w", err))
	}
	return c, nil
}

// AdvanceMilestone moves last_milestone from `from` to `to` if no other
// evaluator moved it first. It reports whether this call won.
func (s *Store) AdvanceMilestone(ctx context.Context, electionID string, from, to int) (bool, error) {
	if to <= from {
		return false, nil
	}
	res, err := s.store.DB.ExecContext(ctx, s.store.Rebind(`
		UPDATE election_turnout SET last_milestone = ?
		WHERE election_id = ? AND last_milestone = ?
	`), to, electionID, from)
	if err != nil {
		return false, db.Unavailable(fmt.Errorf("advance milestone: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, db.Unavailable(fmt.Errorf("advance milestone: %w", err))
	}
	return n == 1, nil
}

// Get returns the current tally. Positions are in lexical order; within a
// position candidates are ordered by votes descending, then approval time,
// then ID. Approved candidates without votes are included.
func (s *Store) Get(ctx context.Context, electionID string) (models.Tally, error) {
	rows, err := s.store.DB.QueryContext(ctx, s.store.Rebind(`
		SELECT c.position, c.id, c.name, COALESCE(t.vote_count, 0), c.approved_at
		FROM candidate_slot c
		LEFT JOIN tally_entry t
			ON t.election_id = c.election_id AND t.position = c.position AND t.candidate_id = c.id
		WHERE c.election_id = ? AND (c.approved = TRUE OR t.vote_count > 0)
	`), electionID)
	if err != nil {
		return models.Tally{}, db.Unavailable(fmt.Errorf("query tally: %w", err))
	}

	byPosition := map[string][]models.CandidateCount{}
	var total int64
	for rows.Next() {
		var position string
		var cc models.CandidateCount
		var approvedAt sql.NullTime
		if err := rows.Scan(&position, &cc.CandidateID, &cc.Name, &cc.Votes, &approvedAt); err != nil {
			rows.Close()
			return models.Tally{}, db.Unavailable(fmt.Errorf("scan tally: %w", err))
		}
		if approvedAt.Valid {
			at := approvedAt.Time
			cc.ApprovedAt = &at
		}
		byPosition[position] = append(byPosition[position], cc)
		total += cc.Votes
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return models.Tally{}, db.Unavailable(fmt.Errorf("read tally: %w", err))
	}

	t := models.Tally{ElectionID: electionID, Positions: []models.PositionTally{}, TotalVotes: total}
	for _, position := range slices.Sorted(maps.Keys(byPosition)) {
		candidates := byPosition[position]
		slices.SortFunc(candidates, compareCandidates)
		t.Positions = append(t.Positions, models.PositionTally{Position: position, Candidates: candidates})
	}
	return t, nil
}

// Reconcile rebuilds tally entries, participants, and vote totals for an
// election from the vote ledger. last_milestone is left untouched. It is a
// repair operation and is not used on the admission path.
func (s *Store) Reconcile(ctx context.Context, electionID string) (models.ReconcileReport, error) {
	report := models.ReconcileReport{ElectionID: electionID}

	err := s.store.InTx(ctx, func(tx *sql.Tx) error {
		var before models.TurnoutCounters
		err := tx.QueryRowContext(ctx, s.store.Rebind(`
			SELECT total_votes, participants FROM election_turnout WHERE election_id = ?
		`), electionID).Scan(&before.TotalVotes, &before.Participants)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return db.Unavailable(fmt.Errorf("read turnout: %w", err))
		}

		var driftedEntries int
		err = tx.QueryRowContext(ctx, s.store.Rebind(`
			SELECT COUNT(*) FROM (
				SELECT v.position, v.candidate_id, COUNT(*) AS n
				FROM vote v WHERE v.election_id = ?
				GROUP BY v.position, v.candidate_id
			) actual
			LEFT JOIN tally_entry t
				ON t.election_id = ? AND t.position = actual.position AND t.candidate_id = actual.candidate_id
			WHERE t.vote_count IS NULL OR t.vote_count <> actual.n
		`), electionID, electionID).Scan(&driftedEntries)
		if err != nil {
			return db.Unavailable(fmt.Errorf("compare tally: %w", err))
		}

		// Entries for keys the ledger has no votes for
		var orphanedEntries int
		err = tx.QueryRowContext(ctx, s.store.Rebind(`
			SELECT COUNT(*) FROM tally_entry t
			WHERE t.election_id = ? AND NOT EXISTS (
				SELECT 1 FROM vote v
				WHERE v.election_id = t.election_id AND v.position = t.position AND v.candidate_id = t.candidate_id
			)
		`), electionID).Scan(&orphanedEntries)
		if err != nil {
			return db.Unavailable(fmt.Errorf("compare tally: %w", err))
		}

		steps := []struct {
			query string
			args  []any
		}{
			{`DELETE FROM tally_entry WHERE election_id = ?`, []any{electionID}},
			{`INSERT INTO tally_entry (election_id, position, candidate_id, vote_count)
				SELECT election_id, position, candidate_id, COUNT(*)
				FROM vote WHERE election_id = ?
				GROUP BY election_id, position, candidate_id`, []any{electionID}},
			{`DELETE FROM election_participant WHERE election_id = ?`, []any{electionID}},
			{`INSERT INTO election_participant (election_id, voter_id)
				SELECT DISTINCT election_id, voter_id FROM vote WHERE election_id = ?`, []any{electionID}},
		}
		for _, step := range steps {
			if _, err := tx.ExecContext(ctx, s.store.Rebind(step.query), step.args...); err != nil {
				return db.Unavailable(fmt.Errorf("rebuild tally: %w", err))
			}
		}

		err = tx.QueryRowContext(ctx, s.store.Rebind(`
			SELECT COUNT(*), COUNT(DISTINCT voter_id) FROM vote WHERE election_id = ?
		`), electionID).Scan(&report.TotalVotes, &report.Participants)
		if err != nil {
			return db.Unavailable(fmt.Errorf("count ledger: %w", err))
		}
		if err := tx.QueryRowContext(ctx, s.store.Rebind(`SELECT COUNT(*) FROM tally_entry WHERE election_id = ?`), electionID).Scan(&report.Entries); err != nil {
			return db.Unavailable(fmt.Errorf("count tally entries: %w", err))
		}

		_, err = tx.ExecContext(ctx, s.store.Rebind(`
			INSERT INTO election_turnout (election_id, total_votes, participants, last_milestone, updated_at)
			VALUES (?, ?, ?, 0, ?)
			ON CONFLICT (election_id) DO UPDATE SET
				total_votes = excluded.total_votes,
				participants = excluded.participants,
				updated_at = excluded.updated_at
		`), electionID, report.TotalVotes, report.Participants, time.Now().UTC())
		if err != nil {
			return db.Unavailable(fmt.Errorf("rewrite turnout: %w", err))
		}

		report.Corrected = driftedEntries > 0 || orphanedEntries > 0 ||
			before.TotalVotes != report.TotalVotes ||
			before.Participants != report.Participants
		return nil
	})
	if err != nil {
		return models.ReconcileReport{}, err
	}
	return report, nil
}

// compareCandidates orders by votes descending, then earliest approval
// (unapproved last), then ID.
func compareCandidates(a, b models.CandidateCount) int {
	if c := cmp.Compare(b.Votes, a.Votes); c != 0 {
		return c
	}
	switch {
	case a.ApprovedAt != nil && b.ApprovedAt != nil:
		if c := a.ApprovedAt.Compare(*b.ApprovedAt); c != 0 {
			return c
		}
	case a.ApprovedAt != nil:
		return -1
	case b.ApprovedAt != nil:
		return 1
	}
	return cmp.Compare(a.CandidateID, b.CandidateID)
}
