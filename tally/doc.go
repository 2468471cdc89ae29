// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tally maintains per-candidate vote counts and per-election turnout.

Counters are incremented inside the admission transaction with upserts, so a
committed vote and its increment are never observed apart.

	ts := tally.New(store)
	err := store.InTx(ctx, func(tx *sql.Tx) error {
		if err := ts.ApplyVote(ctx, tx, vote); err != nil {
			return err
		}
		_, err := ts.RecordTurnout(ctx, tx, vote)
		return err
	})

Get returns positions sorted by name and candidates by votes descending,
ties broken by earliest approval, then name.

Reconcile recomputes counters from the ledger and corrects any drift. It is
an administrative repair and never runs on the vote path.
*/
package tally
