// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the CampusVote API server.

CampusVote admits student election votes exactly once per voter and
position, and pushes tally changes to connected observers as they happen.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=campusvote.db JWT_SECRET=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." --jwt-secret ...

A .env file in the working directory is loaded first; variables already set
in the environment win.

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - JWT_SECRET (--jwt-secret): HS256 secret shared with the token issuer

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite, postgres or pgx (default: sqlite)
  - MILESTONES (--milestones): turnout thresholds (default: 25,50,75,100)
  - CONNECTION_BUFFER (--conn-buffer): events queued per WebSocket (default: 64)
  - CHANNEL_QUOTA (--channel-quota): channels per connection (default: 64)
  - PROPAGATION_TIMEOUT (--propagation-timeout): post-commit deadline (default: 5s)

# Architecture

  - admission: the vote path, one transaction per vote then async propagation
  - ledger: vote rows and duplicate detection
  - tally: per-candidate counts and election turnout
  - milestone: turnout thresholds, each announced once
  - electorate: read-only elections, candidates and voter population
  - registry: which connection listens on which channel
  - broadcast: fan-out of events to attached sinks
  - stream: WebSocket connections
  - handlers, router, middleware: HTTP surface
  - models, auth, db, cliparse: shared types, tokens, storage, configuration

On SIGINT or SIGTERM the server stops accepting requests, then waits for
in-flight broadcasts before closing the database.
*/
package main
