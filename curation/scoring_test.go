// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package curation

import (
	"context"
	"testing"
	"time"

	"github.com/danielhkuo/curia/models"
	"github.com/danielhkuo/curia/testutil"
)

func TestRecordOutcomeIdempotent(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	scorer := NewScorer(conn, cfg)
	ctx := context.Background()

	suggestionID := testutil.CreateTestSuggestion(t, conn, "alice", "tag-x", "pkg-x")
	testutil.CastTestVote(t, conn, suggestionID, "bob", models.VoteApprove)
	testutil.CastTestVote(t, conn, suggestionID, "carol", models.VoteReject)

	sugg := &models.Suggestion{ID: suggestionID, AuthorAccountID: "alice"}

	// Record twice; the second call must change nothing
	for i := 0; i < 2; i++ {
		if err := scorer.RecordOutcome(ctx, sugg, OutcomeApproved); err != nil {
			t.Fatalf("RecordOutcome call %d failed: %v", i+1, err)
		}
	}

	var aliceScore, bobScore int
	if err := conn.QueryRow(`SELECT all_time_score FROM contribution_score WHERE account_id = 'alice'`).Scan(&aliceScore); err != nil {
		t.Fatalf("Failed to query alice score: %v", err)
	}
	if aliceScore != cfg.AuthorApprovePoints {
		t.Errorf("Expected alice score %d after replay, got %d", cfg.AuthorApprovePoints, aliceScore)
	}
	if err := conn.QueryRow(`SELECT all_time_score FROM contribution_score WHERE account_id = 'bob'`).Scan(&bobScore); err != nil {
		t.Fatalf("Failed to query bob score: %v", err)
	}
	if bobScore != cfg.VoterMatchPoints {
		t.Errorf("Expected bob score %d after replay, got %d", cfg.VoterMatchPoints, bobScore)
	}

	// Carol voted reject on an approved suggestion: no event, no score row
	var carolRows int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM contribution_score WHERE account_id = 'carol'`).Scan(&carolRows); err != nil {
		t.Fatalf("Failed to count carol rows: %v", err)
	}
	if carolRows != 0 {
		t.Errorf("Expected no score row for the mismatched voter, got %d", carolRows)
	}

	var eventCount int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM contribution_event WHERE suggestion_id = $1`, suggestionID).Scan(&eventCount); err != nil {
		t.Fatalf("Failed to count events: %v", err)
	}
	if eventCount != 2 {
		t.Errorf("Expected 2 events (author + matching voter), got %d", eventCount)
	}
}

func TestRecordOutcomePendingRejected(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	scorer := NewScorer(conn, testutil.GetTestConfig())

	sugg := &models.Suggestion{ID: "whatever", AuthorAccountID: "alice"}
	if err := scorer.RecordOutcome(context.Background(), sugg, OutcomePending); err == nil {
		t.Error("Expected error when scoring a pending outcome")
	}
}

func TestMonthlyScoreRollsOver(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	scorer := NewScorer(conn, cfg)
	ctx := context.Background()

	january := time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)
	february := time.Date(2026, time.February, 2, 9, 0, 0, 0, time.UTC)

	s1 := testutil.CreateTestSuggestion(t, conn, "alice", "tag-1", "pkg-1")
	s2 := testutil.CreateTestSuggestion(t, conn, "alice", "tag-2", "pkg-2")

	scorer.now = func() time.Time { return january }
	if err := scorer.RecordOutcome(ctx, &models.Suggestion{ID: s1, AuthorAccountID: "alice"}, OutcomeApproved); err != nil {
		t.Fatalf("January outcome failed: %v", err)
	}

	var monthly, allTime int
	var mk string
	query := `SELECT monthly_score, all_time_score, month_key FROM contribution_score WHERE account_id = 'alice'`
	if err := conn.QueryRow(query).Scan(&monthly, &allTime, &mk); err != nil {
		t.Fatalf("Failed to query score: %v", err)
	}
	if monthly != cfg.AuthorApprovePoints || allTime != cfg.AuthorApprovePoints || mk != "2026-01" {
		t.Fatalf("Unexpected January score: monthly=%d allTime=%d month=%s", monthly, allTime, mk)
	}

	// Crossing the month boundary resets the monthly bucket, not the total
	scorer.now = func() time.Time { return february }
	if err := scorer.RecordOutcome(ctx, &models.Suggestion{ID: s2, AuthorAccountID: "alice"}, OutcomeApproved); err != nil {
		t.Fatalf("February outcome failed: %v", err)
	}

	if err := conn.QueryRow(query).Scan(&monthly, &allTime, &mk); err != nil {
		t.Fatalf("Failed to query score: %v", err)
	}
	if monthly != cfg.AuthorApprovePoints {
		t.Errorf("Expected monthly score to restart at %d, got %d", cfg.AuthorApprovePoints, monthly)
	}
	if allTime != 2*cfg.AuthorApprovePoints {
		t.Errorf("Expected all-time score %d, got %d", 2*cfg.AuthorApprovePoints, allTime)
	}
	if mk != "2026-02" {
		t.Errorf("Expected month key 2026-02, got %s", mk)
	}
}

func TestRebuildRepairsDrift(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	scorer := NewScorer(conn, cfg)
	ctx := context.Background()

	suggestionID := testutil.CreateTestSuggestion(t, conn, "alice", "tag-x", "pkg-x")
	testutil.CastTestVote(t, conn, suggestionID, "bob", models.VoteApprove)

	sugg := &models.Suggestion{ID: suggestionID, AuthorAccountID: "alice"}
	if err := scorer.RecordOutcome(ctx, sugg, OutcomeApproved); err != nil {
		t.Fatalf("RecordOutcome failed: %v", err)
	}

	// Corrupt a score row; the event ledger is the source of truth
	_, err := conn.Exec(`UPDATE contribution_score SET all_time_score = 9999, monthly_score = -5 WHERE account_id = 'alice'`)
	if err != nil {
		t.Fatalf("Failed to corrupt score: %v", err)
	}

	n, err := scorer.Rebuild(ctx)
	if err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 accounts rebuilt, got %d", n)
	}

	var aliceScore, aliceMonthly int
	err = conn.QueryRow(`SELECT all_time_score, monthly_score FROM contribution_score WHERE account_id = 'alice'`).
		Scan(&aliceScore, &aliceMonthly)
	if err != nil {
		t.Fatalf("Failed to query score: %v", err)
	}
	if aliceScore != cfg.AuthorApprovePoints {
		t.Errorf("Expected rebuilt score %d, got %d", cfg.AuthorApprovePoints, aliceScore)
	}
	if aliceMonthly != cfg.AuthorApprovePoints {
		t.Errorf("Expected rebuilt monthly score %d, got %d", cfg.AuthorApprovePoints, aliceMonthly)
	}
}
