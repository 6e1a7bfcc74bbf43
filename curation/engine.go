// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package curation

import (
	"database/sql"

	"github.com/danielhkuo/curia/cliparse"
	"github.com/danielhkuo/curia/entitystore"
)

// Engine wires the curation components over one shared database. Handlers
// depend on the Engine; tests may construct individual components with
// fakes (NewEngineWithStore substitutes the catalog).
type Engine struct {
	Registry    *Registry
	Ledger      *Ledger
	Resolver    *Resolver
	Scorer      *Scorer
	Leaderboard *Leaderboard
}

func NewEngine(db *sql.DB, cfg cliparse.Config) *Engine {
	return NewEngineWithStore(db, cfg, entitystore.NewSQLStore(db))
}

func NewEngineWithStore(db *sql.DB, cfg cliparse.Config, store entitystore.Store) *Engine {
	scorer := NewScorer(db, cfg)
	resolver := NewResolver(db, cfg, NewApplier(store), scorer)
	return &Engine{
		Registry:    NewRegistry(db, store),
		Ledger:      NewLedger(db, resolver),
		Resolver:    resolver,
		Scorer:      scorer,
		Leaderboard: NewLeaderboard(db, cfg),
	}
}
