// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Connection string (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - ModeratorKeySalt: Secret for moderator key HMAC (required)
  - Quorum: Net votes that resolve a suggestion (default: 3)
  - AuthorApprovePoints / AuthorRejectPoints / VoterMatchPoints:
    contribution scoring values (defaults: 5 / 1 / 1)
  - LeaderboardSize: Rows materialized for display (default: 10)

# CLI Flags

	-p            Server port
	-d            Database URL
	-t            Database type
	--moderator-salt Moderator key salt
	--quorum      Resolution quorum
	--board-size  Leaderboard rows

# Environment Variables

Flags fall back to environment variables:

	PORT                  → -p
	DATABASE_URL          → -d
	DATABASE_TYPE         → -t
	MODERATOR_KEY_SALT    → --moderator-salt
	QUORUM                → --quorum
	LEADERBOARD_SIZE      → --board-size
	AUTHOR_APPROVE_POINTS, AUTHOR_REJECT_POINTS, VOTER_MATCH_POINTS

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing:

  - DATABASE_URL must be provided
  - MODERATOR_KEY_SALT must be provided
  - DatabaseType must be sqlite or postgres
  - Quorum must be at least 1
*/
package cliparse
