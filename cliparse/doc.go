// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Environment variables are read first (struct tags, via caarlos0/env), then
CLI flags override them. LoadDotEnv can seed the environment from a .env
file beforehand; it never overrides variables that are already set.

# Settings

	PORT                -p                    Server port (default: 3318)
	DATABASE_URL        -d                    Database DSN (required)
	DATABASE_TYPE       -t                    sqlite, postgres or pgx (default: sqlite)
	JWT_SECRET          --jwt-secret          Token signing secret (required)
	MILESTONES          --milestones          Turnout thresholds (default: 25,50,75,100)
	CONNECTION_BUFFER   --conn-buffer         Outbound queue per connection (default: 64)
	CHANNEL_QUOTA       --channel-quota       Channels per connection (default: 64)
	PROPAGATION_TIMEOUT --propagation-timeout Post-commit propagation deadline (default: 5s)

# Validation

ParseFlags returns an error if required values are missing, the database
type is unknown, or milestones are not strictly ascending within 1-100.
*/
package cliparse
