// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package curation

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/curia/entitystore"
	"github.com/danielhkuo/curia/models"
)

// Registry owns suggestion records and their lifecycle state.
type Registry struct {
	db    *sql.DB
	store entitystore.Store
}

func NewRegistry(db *sql.DB, store entitystore.Store) *Registry {
	return &Registry{db: db, store: store}
}

// PendingFilter scopes ListPending queries.
type PendingFilter struct {
	Type        string // optional: one suggestion type
	EcosystemID string // optional: suggestions targeting this ecosystem
	PackageID   string // optional: suggestions targeting this package
	Viewer      string // account whose own suggestions are hidden
	IncludeOwn  bool   // moderators see everything, including their own
}

// Create validates and persists a new pending suggestion.
//
// Fails with ErrInvalidPayload when required fields for the type are
// missing or a referenced entity does not exist, and with
// ErrDuplicatePending when an equivalent pending suggestion already
// exists for the same equality key.
func (r *Registry) Create(ctx context.Context, authorAccountID string, req models.CreateSuggestionRequest) (*models.Suggestion, error) {
	norm, err := normalizePayload(req.Type, req.Payload)
	if err != nil {
		return nil, err
	}
	if err := r.checkReferences(ctx, req.Type, norm); err != nil {
		return nil, err
	}

	s := &models.Suggestion{
		ID:                uuid.NewString(),
		Type:              req.Type,
		Payload:           norm.payload,
		DedupeKey:         norm.dedupeKey,
		AuthorAccountID:   authorAccountID,
		TargetEcosystemID: norm.targetEcosystemID,
		TargetPackageID:   norm.targetPackageID,
		Status:            models.StatusPending,
		CreatedAt:         time.Now().UTC(),
	}

	// Duplicate check and insert share a transaction so two equivalent
	// creates cannot both pass the check.
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var dup bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM suggestion
			WHERE type = $1 AND dedupe_key = $2 AND status = 'pending'
		)
	`, s.Type, s.DedupeKey).Scan(&dup)
	if err != nil {
		return nil, fmt.Errorf("duplicate check failed: %w", err)
	}
	if dup {
		return nil, ErrDuplicatePending
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO suggestion (id, type, payload, dedupe_key, author_account_id,
			target_ecosystem_id, target_package_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, s.ID, s.Type, string(s.Payload), s.DedupeKey, s.AuthorAccountID,
		s.TargetEcosystemID, s.TargetPackageID, s.Status, s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert suggestion: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit suggestion: %w", err)
	}

	return s, nil
}

// Get returns a suggestion by id, or ErrNotFound.
func (r *Registry) Get(ctx context.Context, id string) (*models.Suggestion, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, type, payload, dedupe_key, author_account_id,
			target_ecosystem_id, target_package_id, status, created_at, resolved_at
		FROM suggestion WHERE id = $1
	`, id)
	return scanSuggestion(row)
}

// ListPending returns pending suggestions matching the filter, oldest
// first. Visibility is a query-time concern: the viewer's own pending
// suggestions are hidden from their review queue unless IncludeOwn is set.
func (r *Registry) ListPending(ctx context.Context, f PendingFilter) ([]models.Suggestion, error) {
	query := `
		SELECT id, type, payload, dedupe_key, author_account_id,
			target_ecosystem_id, target_package_id, status, created_at, resolved_at
		FROM suggestion WHERE status = 'pending'`
	var args []interface{}

	add := func(clause, value string) {
		args = append(args, value)
		query += fmt.Sprintf(" AND %s = $%d", clause, len(args))
	}

	if f.Type != "" {
		add("type", f.Type)
	}
	if f.EcosystemID != "" {
		add("target_ecosystem_id", f.EcosystemID)
	}
	if f.PackageID != "" {
		add("target_package_id", f.PackageID)
	}
	if !f.IncludeOwn && f.Viewer != "" {
		args = append(args, f.Viewer)
		query += fmt.Sprintf(" AND author_account_id != $%d", len(args))
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending suggestions: %w", err)
	}
	defer rows.Close()

	var out []models.Suggestion
	for rows.Next() {
		s, err := scanSuggestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// normalized is the decoded, re-encoded form of a payload: unknown fields
// dropped, equality key, targets and reference-check inputs derived. The
// decoded fields travel with it so reference checks never re-parse the
// payload.
type normalized struct {
	payload           json.RawMessage
	dedupeKey         string
	targetEcosystemID *string
	targetPackageID   *string
	refTagID          string // add_tag: the tag that must exist
	proposedName      string // create variants: the name to claim
}

func normalizePayload(suggestionType string, raw json.RawMessage) (*normalized, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: payload is required", ErrInvalidPayload)
	}

	switch suggestionType {
	case models.TypeAddTag:
		var p models.AddTagPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		if p.TagID == "" || p.PackageID == "" {
			return nil, fmt.Errorf("%w: tag_id and package_id are required", ErrInvalidPayload)
		}
		return encode(p, normalized{
			dedupeKey:       p.TagID + "|" + p.PackageID,
			targetPackageID: &p.PackageID,
			refTagID:        p.TagID,
		})

	case models.TypeAddEcosystemPackage:
		var p models.AddEcosystemPackagePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		if p.EcosystemID == "" || p.PackageID == "" {
			return nil, fmt.Errorf("%w: ecosystem_id and package_id are required", ErrInvalidPayload)
		}
		return encode(p, normalized{
			dedupeKey:         p.EcosystemID + "|" + p.PackageID,
			targetEcosystemID: &p.EcosystemID,
			targetPackageID:   &p.PackageID,
		})

	case models.TypeCreateEcosystem:
		var p models.CreateEcosystemPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidPayload)
		}
		return encode(p, normalized{
			dedupeKey:    strings.ToLower(p.Name),
			proposedName: p.Name,
		})

	case models.TypeCreateTag:
		var p models.CreateTagPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidPayload)
		}
		return encode(p, normalized{
			dedupeKey:    strings.ToLower(p.Name),
			proposedName: p.Name,
		})

	default:
		return nil, fmt.Errorf("%w: unknown suggestion type %q", ErrInvalidPayload, suggestionType)
	}
}

func encode(p interface{}, n normalized) (*normalized, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	n.payload = b
	return &n, nil
}

// checkReferences verifies the entities a normalized payload points at
// actually exist (or, for create variants, that the proposed name is free).
func (r *Registry) checkReferences(ctx context.Context, suggestionType string, norm *normalized) error {
	switch suggestionType {
	case models.TypeAddTag:
		if ok, err := r.store.TagExists(ctx, norm.refTagID); err != nil {
			return err
		} else if !ok {
			return fmt.Errorf("%w: tag %s does not exist", ErrInvalidPayload, norm.refTagID)
		}
		if ok, err := r.store.PackageExists(ctx, *norm.targetPackageID); err != nil {
			return err
		} else if !ok {
			return fmt.Errorf("%w: package %s does not exist", ErrInvalidPayload, *norm.targetPackageID)
		}

	case models.TypeAddEcosystemPackage:
		if ok, err := r.store.EcosystemExists(ctx, *norm.targetEcosystemID); err != nil {
			return err
		} else if !ok {
			return fmt.Errorf("%w: ecosystem %s does not exist", ErrInvalidPayload, *norm.targetEcosystemID)
		}
		if ok, err := r.store.PackageExists(ctx, *norm.targetPackageID); err != nil {
			return err
		} else if !ok {
			return fmt.Errorf("%w: package %s does not exist", ErrInvalidPayload, *norm.targetPackageID)
		}

	case models.TypeCreateEcosystem:
		if taken, err := r.store.EcosystemNameTaken(ctx, norm.proposedName); err != nil {
			return err
		} else if taken {
			return fmt.Errorf("%w: ecosystem %q already exists", ErrInvalidPayload, norm.proposedName)
		}

	case models.TypeCreateTag:
		if taken, err := r.store.TagNameTaken(ctx, norm.proposedName); err != nil {
			return err
		} else if taken {
			return fmt.Errorf("%w: tag %q already exists", ErrInvalidPayload, norm.proposedName)
		}
	}
	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSuggestion(row rowScanner) (*models.Suggestion, error) {
	var s models.Suggestion
	var payload string
	var targetEco, targetPkg sql.NullString
	var resolvedAt sql.NullTime

	err := row.Scan(&s.ID, &s.Type, &payload, &s.DedupeKey, &s.AuthorAccountID,
		&targetEco, &targetPkg, &s.Status, &s.CreatedAt, &resolvedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan suggestion: %w", err)
	}

	s.Payload = json.RawMessage(payload)
	if targetEco.Valid {
		s.TargetEcosystemID = &targetEco.String
	}
	if targetPkg.Valid {
		s.TargetPackageID = &targetPkg.String
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		s.ResolvedAt = &t
	}
	return &s, nil
}
