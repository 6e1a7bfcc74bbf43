// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package entitystore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/danielhkuo/curia/models"
)

// Store is the surface the curation engine needs from the entity catalog:
// existence checks at suggestion-creation time and one idempotent mutation
// per suggestion type at resolution time.
//
// It is an interface so resolver tests can substitute a counting fake.
type Store interface {
	EcosystemExists(ctx context.Context, id string) (bool, error)
	PackageExists(ctx context.Context, id string) (bool, error)
	TagExists(ctx context.Context, id string) (bool, error)
	EcosystemNameTaken(ctx context.Context, name string) (bool, error)
	TagNameTaken(ctx context.Context, name string) (bool, error)

	AttachTag(ctx context.Context, packageID, tagID string) error
	AddPackageToEcosystem(ctx context.Context, ecosystemID, packageID string) error
	CreateEcosystem(ctx context.Context, eco models.Ecosystem) error
	CreateTag(ctx context.Context, tag models.Tag) error
}

// SQLStore implements Store over the shared database.
//
// All mutations are written as ON CONFLICT DO NOTHING inserts so a retried
// apply (after a crash between status commit and mutation commit) is a
// no-op rather than an error.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) EcosystemExists(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, "SELECT EXISTS(SELECT 1 FROM ecosystem WHERE id = $1)", id)
}

func (s *SQLStore) PackageExists(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, "SELECT EXISTS(SELECT 1 FROM package WHERE id = $1)", id)
}

func (s *SQLStore) TagExists(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, "SELECT EXISTS(SELECT 1 FROM tag WHERE id = $1)", id)
}

func (s *SQLStore) EcosystemNameTaken(ctx context.Context, name string) (bool, error) {
	return s.exists(ctx, "SELECT EXISTS(SELECT 1 FROM ecosystem WHERE name = $1)", name)
}

func (s *SQLStore) TagNameTaken(ctx context.Context, name string) (bool, error) {
	return s.exists(ctx, "SELECT EXISTS(SELECT 1 FROM tag WHERE name = $1)", name)
}

func (s *SQLStore) exists(ctx context.Context, query string, arg string) (bool, error) {
	var ok bool
	if err := s.db.QueryRowContext(ctx, query, arg).Scan(&ok); err != nil {
		return false, fmt.Errorf("entity lookup failed: %w", err)
	}
	return ok, nil
}

// AttachTag links a tag to a package. Idempotent.
func (s *SQLStore) AttachTag(ctx context.Context, packageID, tagID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO package_tag (package_id, tag_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, packageID, tagID)
	if err != nil {
		return fmt.Errorf("failed to attach tag %s to package %s: %w", tagID, packageID, err)
	}
	return nil
}

// AddPackageToEcosystem links a package into an ecosystem. Idempotent.
func (s *SQLStore) AddPackageToEcosystem(ctx context.Context, ecosystemID, packageID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ecosystem_package (ecosystem_id, package_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, ecosystemID, packageID)
	if err != nil {
		return fmt.Errorf("failed to add package %s to ecosystem %s: %w", packageID, ecosystemID, err)
	}
	return nil
}

// CreateEcosystem inserts a new ecosystem row. Callers supply the id
// (resolution uses the suggestion id), which keeps retries idempotent.
func (s *SQLStore) CreateEcosystem(ctx context.Context, eco models.Ecosystem) error {
	createdAt := eco.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ecosystem (id, name, description, website, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT DO NOTHING
	`, eco.ID, eco.Name, eco.Description, eco.Website, createdAt)
	if err != nil {
		return fmt.Errorf("failed to create ecosystem %q: %w", eco.Name, err)
	}
	return nil
}

// CreateTag inserts a new tag row. Same id convention as CreateEcosystem.
func (s *SQLStore) CreateTag(ctx context.Context, tag models.Tag) error {
	createdAt := tag.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tag (id, name, description, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING
	`, tag.ID, tag.Name, tag.Description, createdAt)
	if err != nil {
		return fmt.Errorf("failed to create tag %q: %w", tag.Name, err)
	}
	return nil
}
