// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/curia/auth"
	"github.com/danielhkuo/curia/curation"
	"github.com/danielhkuo/curia/models"
	"github.com/danielhkuo/curia/testutil"
)

// TestConcurrentVotesResolveExactlyOnce hammers one suggestion with
// simultaneous threshold-crossing votes and verifies the terminal transition
// happens once: one status change, one catalog write, one author award.
func TestConcurrentVotesResolveExactlyOnce(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig() // quorum 3
	engine := curation.NewEngine(conn, cfg)
	voteHandler := NewVoteHandler(engine, cfg)

	pkgID := testutil.SeedPackage(t, conn, "concurrent-pkg")
	tagID := testutil.SeedTag(t, conn, "concurrent-tag")
	suggestionID := testutil.CreateTestSuggestion(t, conn, "alice", tagID, pkgID)

	numVoters := 10
	var successCount atomic.Int32
	var closedCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numVoters; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			voter := fmt.Sprintf("voter-%02d", idx)
			req := testutil.MakeRequest("POST", "/suggestions/"+suggestionID+"/votes",
				models.CastVoteRequest{Vote: models.VoteApprove},
				map[string]string{auth.AccountHeader: voter})
			req.SetPathValue("id", suggestionID)
			w := httptest.NewRecorder()

			voteHandler.Cast(w, req)

			switch w.Code {
			case http.StatusCreated:
				successCount.Add(1)
			case http.StatusConflict:
				// Arrived after resolution; legal under contention
				closedCount.Add(1)
			default:
				t.Errorf("Unexpected status %d: %s", w.Code, w.Body.String())
			}
		}(i)
	}

	wg.Wait()

	if int(successCount.Load()) < cfg.Quorum {
		t.Fatalf("Expected at least %d successful votes, got %d", cfg.Quorum, successCount.Load())
	}
	if successCount.Load()+closedCount.Load() != int32(numVoters) {
		t.Errorf("Expected all %d casts accounted for, got %d+%d",
			numVoters, successCount.Load(), closedCount.Load())
	}

	var status string
	if err := conn.QueryRow(`SELECT status FROM suggestion WHERE id = $1`, suggestionID).Scan(&status); err != nil {
		t.Fatalf("Failed to query status: %v", err)
	}
	if status != models.StatusApproved {
		t.Fatalf("Expected approved, got %q", status)
	}

	// Exactly one catalog link despite the stampede
	var linkCount int
	err := conn.QueryRow(`SELECT COUNT(*) FROM package_tag WHERE package_id = $1 AND tag_id = $2`,
		pkgID, tagID).Scan(&linkCount)
	if err != nil {
		t.Fatalf("Failed to count links: %v", err)
	}
	if linkCount != 1 {
		t.Errorf("Expected exactly 1 package_tag row, got %d", linkCount)
	}

	// Author awarded exactly once
	var authorEvents, authorScore int
	err = conn.QueryRow(`
		SELECT COUNT(*) FROM contribution_event WHERE account_id = 'alice' AND suggestion_id = $1
	`, suggestionID).Scan(&authorEvents)
	if err != nil {
		t.Fatalf("Failed to count author events: %v", err)
	}
	if authorEvents != 1 {
		t.Errorf("Expected 1 author event, got %d", authorEvents)
	}
	err = conn.QueryRow(`SELECT all_time_score FROM contribution_score WHERE account_id = 'alice'`).Scan(&authorScore)
	if err != nil {
		t.Fatalf("Failed to query author score: %v", err)
	}
	if authorScore != cfg.AuthorApprovePoints {
		t.Errorf("Expected author score %d, got %d", cfg.AuthorApprovePoints, authorScore)
	}
}

// TestConcurrentDuplicateSuggestions verifies that simultaneous equivalent
// creates produce exactly one pending suggestion.
func TestConcurrentDuplicateSuggestions(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	engine := curation.NewEngine(conn, cfg)
	handler := NewSuggestionHandler(engine, cfg)

	pkgID := testutil.SeedPackage(t, conn, "contested-pkg")
	tagID := testutil.SeedTag(t, conn, "contested-tag")

	numAttempts := 5
	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numAttempts; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			req := testutil.MakeRequest("POST", "/suggestions",
				map[string]interface{}{
					"type":    models.TypeAddTag,
					"payload": map[string]string{"tag_id": tagID, "package_id": pkgID},
				},
				map[string]string{auth.AccountHeader: fmt.Sprintf("author-%d", idx)})
			w := httptest.NewRecorder()

			handler.Create(w, req)

			if w.Code == http.StatusCreated {
				successCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	if successCount.Load() != 1 {
		t.Errorf("Expected exactly 1 successful create, got %d", successCount.Load())
	}

	var pendingCount int
	err := conn.QueryRow(`
		SELECT COUNT(*) FROM suggestion WHERE type = $1 AND dedupe_key = $2 AND status = 'pending'
	`, models.TypeAddTag, tagID+"|"+pkgID).Scan(&pendingCount)
	if err != nil {
		t.Fatalf("Failed to count suggestions: %v", err)
	}
	if pendingCount != 1 {
		t.Errorf("Expected 1 pending suggestion, got %d", pendingCount)
	}
}

// TestConcurrentVoteChanges has one voter flip their vote repeatedly from
// many goroutines; the ledger must keep a single row with a valid value.
func TestConcurrentVoteChanges(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	cfg.Quorum = 100 // keep the suggestion pending throughout
	engine := curation.NewEngine(conn, cfg)
	voteHandler := NewVoteHandler(engine, cfg)

	pkgID := testutil.SeedPackage(t, conn, "flip-pkg")
	tagID := testutil.SeedTag(t, conn, "flip-tag")
	suggestionID := testutil.CreateTestSuggestion(t, conn, "alice", tagID, pkgID)

	numFlips := 10
	var wg sync.WaitGroup

	for i := 0; i < numFlips; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			vote := models.VoteApprove
			if idx%2 == 1 {
				vote = models.VoteReject
			}
			req := testutil.MakeRequest("POST", "/suggestions/"+suggestionID+"/votes",
				models.CastVoteRequest{Vote: vote},
				map[string]string{auth.AccountHeader: "bob"})
			req.SetPathValue("id", suggestionID)
			w := httptest.NewRecorder()

			voteHandler.Cast(w, req)
			// Any interleaving may win; only consistency matters
		}(i)
	}

	wg.Wait()

	var voteCount int
	err := conn.QueryRow(`SELECT COUNT(*) FROM vote WHERE suggestion_id = $1 AND account_id = 'bob'`,
		suggestionID).Scan(&voteCount)
	if err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	if voteCount != 1 {
		t.Errorf("Expected 1 vote row after concurrent flips, got %d", voteCount)
	}

	var vote string
	err = conn.QueryRow(`SELECT vote FROM vote WHERE suggestion_id = $1 AND account_id = 'bob'`,
		suggestionID).Scan(&vote)
	if err != nil {
		t.Fatalf("Failed to query vote: %v", err)
	}
	if vote != models.VoteApprove && vote != models.VoteReject {
		t.Errorf("Unexpected vote value %q", vote)
	}
}
