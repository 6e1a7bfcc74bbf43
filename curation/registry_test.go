// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package curation

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/danielhkuo/curia/models"
	"github.com/danielhkuo/curia/testutil"
)

func TestCreateSuggestion(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	engine := NewEngine(conn, testutil.GetTestConfig())
	ctx := context.Background()

	pkgID := testutil.SeedPackage(t, conn, "left-pad")
	tagID := testutil.SeedTag(t, conn, "utilities")
	ecoID := testutil.SeedEcosystem(t, conn, "node")

	mustPayload := func(v interface{}) json.RawMessage {
		b, _ := json.Marshal(v)
		return b
	}

	tests := []struct {
		name        string
		req         models.CreateSuggestionRequest
		expectedErr error
	}{
		{
			name: "valid add_tag",
			req: models.CreateSuggestionRequest{
				Type:    models.TypeAddTag,
				Payload: mustPayload(models.AddTagPayload{TagID: tagID, PackageID: pkgID}),
			},
		},
		{
			name: "valid add_ecosystem_package",
			req: models.CreateSuggestionRequest{
				Type:    models.TypeAddEcosystemPackage,
				Payload: mustPayload(models.AddEcosystemPackagePayload{EcosystemID: ecoID, PackageID: pkgID}),
			},
		},
		{
			name: "valid create_ecosystem",
			req: models.CreateSuggestionRequest{
				Type:    models.TypeCreateEcosystem,
				Payload: mustPayload(models.CreateEcosystemPayload{Name: "Deno", Website: "https://deno.land"}),
			},
		},
		{
			name: "valid create_tag",
			req: models.CreateSuggestionRequest{
				Type:    models.TypeCreateTag,
				Payload: mustPayload(models.CreateTagPayload{Name: "cli"}),
			},
		},
		{
			name:        "unknown type",
			req:         models.CreateSuggestionRequest{Type: "delete_everything", Payload: mustPayload(struct{}{})},
			expectedErr: ErrInvalidPayload,
		},
		{
			name:        "missing payload",
			req:         models.CreateSuggestionRequest{Type: models.TypeAddTag},
			expectedErr: ErrInvalidPayload,
		},
		{
			name: "add_tag missing package_id",
			req: models.CreateSuggestionRequest{
				Type:    models.TypeAddTag,
				Payload: mustPayload(models.AddTagPayload{TagID: tagID}),
			},
			expectedErr: ErrInvalidPayload,
		},
		{
			name: "add_tag nonexistent tag",
			req: models.CreateSuggestionRequest{
				Type:    models.TypeAddTag,
				Payload: mustPayload(models.AddTagPayload{TagID: "no-such-tag", PackageID: pkgID}),
			},
			expectedErr: ErrInvalidPayload,
		},
		{
			name: "add_ecosystem_package nonexistent ecosystem",
			req: models.CreateSuggestionRequest{
				Type:    models.TypeAddEcosystemPackage,
				Payload: mustPayload(models.AddEcosystemPackagePayload{EcosystemID: "no-such-eco", PackageID: pkgID}),
			},
			expectedErr: ErrInvalidPayload,
		},
		{
			name: "add_ecosystem_package nonexistent package",
			req: models.CreateSuggestionRequest{
				Type:    models.TypeAddEcosystemPackage,
				Payload: mustPayload(models.AddEcosystemPackagePayload{EcosystemID: ecoID, PackageID: "no-such-pkg"}),
			},
			expectedErr: ErrInvalidPayload,
		},
		{
			name: "create_ecosystem name already taken",
			req: models.CreateSuggestionRequest{
				Type:    models.TypeCreateEcosystem,
				Payload: mustPayload(models.CreateEcosystemPayload{Name: "node"}),
			},
			expectedErr: ErrInvalidPayload,
		},
		{
			name: "create_ecosystem blank name",
			req: models.CreateSuggestionRequest{
				Type:    models.TypeCreateEcosystem,
				Payload: mustPayload(models.CreateEcosystemPayload{Name: "   "}),
			},
			expectedErr: ErrInvalidPayload,
		},
		{
			name: "create_tag name already taken",
			req: models.CreateSuggestionRequest{
				Type:    models.TypeCreateTag,
				Payload: mustPayload(models.CreateTagPayload{Name: "utilities"}),
			},
			expectedErr: ErrInvalidPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := engine.Registry.Create(ctx, "alice", tt.req)
			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Fatalf("Expected error %v, got %v", tt.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Create failed: %v", err)
			}
			if s.ID == "" {
				t.Error("Expected non-empty suggestion id")
			}
			if s.Status != models.StatusPending {
				t.Errorf("Expected status pending, got %q", s.Status)
			}

			stored, err := engine.Registry.Get(ctx, s.ID)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if stored.AuthorAccountID != "alice" {
				t.Errorf("Expected author alice, got %q", stored.AuthorAccountID)
			}
			if stored.Type != tt.req.Type {
				t.Errorf("Expected type %q, got %q", tt.req.Type, stored.Type)
			}
		})
	}
}

func TestCreateDuplicatePending(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	engine := NewEngine(conn, testutil.GetTestConfig())
	ctx := context.Background()

	pkgID := testutil.SeedPackage(t, conn, "express")
	tagID := testutil.SeedTag(t, conn, "web")

	payload, _ := json.Marshal(models.AddTagPayload{TagID: tagID, PackageID: pkgID})
	req := models.CreateSuggestionRequest{Type: models.TypeAddTag, Payload: payload}

	first, err := engine.Registry.Create(ctx, "alice", req)
	if err != nil {
		t.Fatalf("First create failed: %v", err)
	}

	// Same target from a different author is still a duplicate
	if _, err := engine.Registry.Create(ctx, "bob", req); !errors.Is(err, ErrDuplicatePending) {
		t.Fatalf("Expected ErrDuplicatePending, got %v", err)
	}

	// Once the first is resolved, the same target may be suggested again
	_, err = conn.Exec(`UPDATE suggestion SET status = 'rejected' WHERE id = $1`, first.ID)
	if err != nil {
		t.Fatalf("Failed to resolve suggestion: %v", err)
	}
	if _, err := engine.Registry.Create(ctx, "bob", req); err != nil {
		t.Fatalf("Expected create to succeed after resolution, got %v", err)
	}
}

func TestCreateNameDedupeCaseInsensitive(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	engine := NewEngine(conn, testutil.GetTestConfig())
	ctx := context.Background()

	suggest := func(name string) error {
		payload, _ := json.Marshal(models.CreateTagPayload{Name: name})
		_, err := engine.Registry.Create(ctx, "alice", models.CreateSuggestionRequest{
			Type: models.TypeCreateTag, Payload: payload,
		})
		return err
	}

	if err := suggest("Serialization"); err != nil {
		t.Fatalf("First create failed: %v", err)
	}
	// Same name in a different case dedupes to the same pending suggestion
	if err := suggest("  serialization "); !errors.Is(err, ErrDuplicatePending) {
		t.Fatalf("Expected ErrDuplicatePending, got %v", err)
	}
}

func TestListPendingVisibility(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	engine := NewEngine(conn, testutil.GetTestConfig())
	ctx := context.Background()

	pkgID := testutil.SeedPackage(t, conn, "lodash")
	tagA := testutil.SeedTag(t, conn, "tag-a")
	tagB := testutil.SeedTag(t, conn, "tag-b")

	aliceID := testutil.CreateTestSuggestion(t, conn, "alice", tagA, pkgID)
	bobID := testutil.CreateTestSuggestion(t, conn, "bob", tagB, pkgID)

	// Alice's review queue hides her own suggestion
	list, err := engine.Registry.ListPending(ctx, PendingFilter{Viewer: "alice"})
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != bobID {
		t.Fatalf("Expected only bob's suggestion, got %d entries", len(list))
	}

	// With IncludeOwn everything is visible
	list, err = engine.Registry.ListPending(ctx, PendingFilter{Viewer: "alice", IncludeOwn: true})
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 suggestions, got %d", len(list))
	}
	// Oldest first
	if list[0].ID != aliceID {
		t.Errorf("Expected oldest suggestion first, got %s", list[0].ID)
	}

	// Resolved suggestions leave the queue
	_, err = conn.Exec(`UPDATE suggestion SET status = 'approved' WHERE id = $1`, bobID)
	if err != nil {
		t.Fatalf("Failed to resolve suggestion: %v", err)
	}
	list, err = engine.Registry.ListPending(ctx, PendingFilter{Viewer: "carol"})
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != aliceID {
		t.Fatalf("Expected only alice's pending suggestion, got %d entries", len(list))
	}
}

func TestListPendingFilters(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	engine := NewEngine(conn, testutil.GetTestConfig())
	ctx := context.Background()

	pkg1 := testutil.SeedPackage(t, conn, "pkg-one")
	pkg2 := testutil.SeedPackage(t, conn, "pkg-two")
	tagID := testutil.SeedTag(t, conn, "shared-tag")
	ecoID := testutil.SeedEcosystem(t, conn, "rust")

	s1 := testutil.CreateTestSuggestion(t, conn, "alice", tagID, pkg1)
	testutil.CreateTestSuggestion(t, conn, "alice", tagID, pkg2)

	payload, _ := json.Marshal(models.AddEcosystemPackagePayload{EcosystemID: ecoID, PackageID: pkg1})
	ecoSugg, err := engine.Registry.Create(ctx, "alice", models.CreateSuggestionRequest{
		Type: models.TypeAddEcosystemPackage, Payload: payload,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// By type
	list, err := engine.Registry.ListPending(ctx, PendingFilter{Viewer: "bob", Type: models.TypeAddEcosystemPackage})
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != ecoSugg.ID {
		t.Fatalf("Expected only the ecosystem suggestion, got %d entries", len(list))
	}

	// By target package
	list, err = engine.Registry.ListPending(ctx, PendingFilter{Viewer: "bob", PackageID: pkg1})
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 suggestions targeting pkg1, got %d", len(list))
	}

	// By target ecosystem
	list, err = engine.Registry.ListPending(ctx, PendingFilter{Viewer: "bob", EcosystemID: ecoID})
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != ecoSugg.ID {
		t.Fatalf("Expected only the ecosystem suggestion, got %d entries", len(list))
	}

	// Combined filters narrow further
	list, err = engine.Registry.ListPending(ctx, PendingFilter{
		Viewer: "bob", Type: models.TypeAddTag, PackageID: pkg1,
	})
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != s1 {
		t.Fatalf("Expected one add_tag suggestion for pkg1, got %d entries", len(list))
	}
}

func TestGetNotFound(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	engine := NewEngine(conn, testutil.GetTestConfig())

	_, err := engine.Registry.Get(context.Background(), "no-such-id")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}
