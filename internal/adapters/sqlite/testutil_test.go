package sqlite

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/wicket/internal/db"
	"github.com/example/wicket/internal/ports/secondary"
)

// setupTestDB creates an in-memory database with the authoritative schema.
// Using db.GetSchemaSQL() keeps the test fixture and the production schema
// from drifting apart.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { testDB.Close() })

	if _, err := testDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}
	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	return testDB
}

// appendAdmitted appends an admitted advance entry at the given sequence.
func appendAdmitted(t *testing.T, repo *LedgerRepository, seq int64, from, to, hash string) {
	t.Helper()

	err := repo.Append(context.Background(), &secondary.LedgerEntryRecord{
		Seq:      seq,
		FromStep: from,
		ToStep:   to,
		SpecHash: hash,
		Action:   secondary.ActionAdvance,
		Outcome:  secondary.OutcomeAdmitted,
		Actor:    "human:test",
	})
	if err != nil {
		t.Fatalf("failed to append entry %d: %v", seq, err)
	}
}
