// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package curation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/danielhkuo/curia/entitystore"
	"github.com/danielhkuo/curia/models"
)

// Applier maps an approved suggestion's typed payload to the concrete
// catalog write. This is the only write the engine performs outside its
// own tables.
type Applier struct {
	store entitystore.Store
}

func NewApplier(store entitystore.Store) *Applier {
	return &Applier{store: store}
}

// Apply performs the catalog mutation for an approved suggestion. The
// underlying store writes are idempotent, so Apply is safe to retry.
//
// Created entities reuse the suggestion id as their row id so a retried
// create targets the same primary key instead of minting a duplicate.
func (a *Applier) Apply(ctx context.Context, s *models.Suggestion) error {
	switch s.Type {
	case models.TypeAddTag:
		var p models.AddTagPayload
		if err := json.Unmarshal(s.Payload, &p); err != nil {
			return fmt.Errorf("failed to decode add_tag payload: %w", err)
		}
		return a.store.AttachTag(ctx, p.PackageID, p.TagID)

	case models.TypeAddEcosystemPackage:
		var p models.AddEcosystemPackagePayload
		if err := json.Unmarshal(s.Payload, &p); err != nil {
			return fmt.Errorf("failed to decode add_ecosystem_package payload: %w", err)
		}
		return a.store.AddPackageToEcosystem(ctx, p.EcosystemID, p.PackageID)

	case models.TypeCreateEcosystem:
		var p models.CreateEcosystemPayload
		if err := json.Unmarshal(s.Payload, &p); err != nil {
			return fmt.Errorf("failed to decode create_ecosystem payload: %w", err)
		}
		return a.store.CreateEcosystem(ctx, models.Ecosystem{
			ID:          s.ID,
			Name:        p.Name,
			Description: p.Description,
			Website:     p.Website,
		})

	case models.TypeCreateTag:
		var p models.CreateTagPayload
		if err := json.Unmarshal(s.Payload, &p); err != nil {
			return fmt.Errorf("failed to decode create_tag payload: %w", err)
		}
		return a.store.CreateTag(ctx, models.Tag{
			ID:          s.ID,
			Name:        p.Name,
			Description: p.Description,
		})

	default:
		return fmt.Errorf("unknown suggestion type %q", s.Type)
	}
}
