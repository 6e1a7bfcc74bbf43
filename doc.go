// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Curia API server.

Curia is the community curation service behind a package/ecosystem
discovery site: users suggest changes to the catalog (tag a package, add
a package to an ecosystem, create a new ecosystem or tag), the community
votes, and suggestions resolve once the net vote margin reaches quorum.
Approved suggestions are applied to the catalog and contributors earn
points toward monthly and all-time leaderboards.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=file:curia.db MODERATOR_KEY_SALT=... go run main.go

Or with flags:

	go run main.go -p 3318 -d "postgres://..." -t postgres

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file or PostgreSQL connection string
  - MODERATOR_KEY_SALT (--moderator-salt): Secret for moderator key HMAC

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - QUORUM (--quorum): Net votes to resolve a suggestion (default: 3)
  - LEADERBOARD_SIZE (--board-size): Visible board rows (default: 10)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - curation: the consensus engine (suggestions, votes, resolution, scoring)
  - entitystore: the package/ecosystem/tag catalog the engine mutates
  - handlers: HTTP request handlers (suggestions, votes, leaderboard)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response types
  - auth: Account extraction and moderator key validation
  - db: Connection and schema creation
  - cliparse: Configuration parsing
  - jobs: Background maintenance (score rebuild, finalize sweep)

See package documentation for each component.
*/
package main
