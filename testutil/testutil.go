// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/curia/cliparse"
	"github.com/danielhkuo/curia/db"
	"github.com/danielhkuo/curia/models"
)

// SetupTestDB creates a fresh file-backed SQLite database with the full
// schema. Each test gets its own file under t.TempDir, so tests never
// share state and parallel packages never contend.
//
// Immediate transactions plus a generous busy timeout let the concurrency
// tests hammer one database from many goroutines without SQLITE_BUSY.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "curia_test.db") +
		"?_txlock=immediate&_pragma=busy_timeout(10000)&_pragma=foreign_keys(1)"
	conn, err := db.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:                3318,
		DatabaseURL:         "file:unused",
		DatabaseType:        "sqlite",
		ModeratorKeySalt:    "test-moderator-salt",
		Quorum:              3,
		AuthorApprovePoints: 5,
		AuthorRejectPoints:  1,
		VoterMatchPoints:    1,
		LeaderboardSize:     10,
	}
}

// SeedPackage inserts a package row and returns its ID
func SeedPackage(t *testing.T, conn *sql.DB, name string) string {
	t.Helper()

	id := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO package (id, name, description, created_at)
		VALUES ($1, $2, '', $3)
	`, id, name, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to seed package: %v", err)
	}
	return id
}

// SeedTag inserts a tag row and returns its ID
func SeedTag(t *testing.T, conn *sql.DB, name string) string {
	t.Helper()

	id := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO tag (id, name, description, created_at)
		VALUES ($1, $2, '', $3)
	`, id, name, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to seed tag: %v", err)
	}
	return id
}

// SeedEcosystem inserts an ecosystem row and returns its ID
func SeedEcosystem(t *testing.T, conn *sql.DB, name string) string {
	t.Helper()

	id := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO ecosystem (id, name, description, website, created_at)
		VALUES ($1, $2, '', '', $3)
	`, id, name, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to seed ecosystem: %v", err)
	}
	return id
}

// CreateTestSuggestion inserts a pending add_tag suggestion directly,
// bypassing validation, and returns its ID. tagID and packageID must
// reference seeded rows when the resolution path will run.
func CreateTestSuggestion(t *testing.T, conn *sql.DB, author, tagID, packageID string) string {
	t.Helper()

	id := uuid.NewString()
	payload, _ := json.Marshal(models.AddTagPayload{TagID: tagID, PackageID: packageID})
	_, err := conn.Exec(`
		INSERT INTO suggestion (id, type, payload, dedupe_key, author_account_id,
			target_package_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending', $7)
	`, id, models.TypeAddTag, string(payload), tagID+"|"+packageID, author, packageID, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test suggestion: %v", err)
	}
	return id
}

// CastTestVote inserts a vote row directly, bypassing the ledger
func CastTestVote(t *testing.T, conn *sql.DB, suggestionID, accountID, vote string) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO vote (id, suggestion_id, account_id, vote, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (suggestion_id, account_id)
		DO UPDATE SET vote = excluded.vote, created_at = excluded.created_at
	`, uuid.NewString(), suggestionID, accountID, vote, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to cast test vote: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
