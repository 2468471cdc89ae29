// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles connections, dialects, schema creation, and storage error
classification.

# Connections

Open accepts a database type and DSN:

	store, err := db.Open(ctx, db.TypeSQLite, "file:campusvote.db")
	store, err := db.Open(ctx, db.TypePostgres, "postgres://...") // lib/pq
	store, err := db.Open(ctx, db.TypePgx, "postgres://...")      // pgx stdlib

SQLite pools are limited to one connection. Code holding a transaction must
not touch Store.DB until it commits, or it will wait on itself.

# Queries

Queries are written with ? placeholders and passed through Rebind, which
rewrites them to $1, $2, ... for Postgres. ShareLock returns " FOR SHARE" on
Postgres and nothing on SQLite.

InTx wraps a function in a transaction:

	err := store.InTx(ctx, func(tx *sql.Tx) error {
		...
	})

# Schema Creation

CreateSchema initializes all required tables. Safe to call multiple times -
uses IF NOT EXISTS for all tables and indexes.

# Tables

  - election, election_position, election_branch, election_year: read-only view of elections
  - voter: registered users, used for the eligible population
  - candidate_slot: candidates and their approval state
  - vote: append-only ledger, UNIQUE (voter_id, election_id, position)
  - tally_entry: per-candidate counters
  - election_turnout: total votes, distinct participants, last milestone
  - election_participant: one row per voter who voted in an election

# Errors

IsUniqueViolation recognizes lib/pq, pgx, and SQLite constraint errors.
Unavailable wraps any other failure with models.ErrStorageUnavailable.
*/
package db
