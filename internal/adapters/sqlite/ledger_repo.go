// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/example/wicket/internal/ports/secondary"
)

// LedgerRepository implements secondary.LedgerRepository with SQLite.
type LedgerRepository struct {
	db *sql.DB
}

// NewLedgerRepository creates a new SQLite ledger repository.
func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

const ledgerColumns = `seq, from_step, to_step, spec_hash, action, outcome,
	reject_kind, failing_condition, reason, evidence_json, amendment_id,
	actor, note, created_at`

// Append atomically persists an entry at exactly LastSeq+1. The sequence
// check runs inside a transaction; the primary key on seq is the backstop
// for writers racing from separate connections, so exactly one of two
// concurrent appends with the same target sequence wins.
func (r *LedgerRepository) Append(ctx context.Context, entry *secondary.LedgerEntryRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin append: %w", err)
	}
	defer tx.Rollback()

	var last int64
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) FROM ledger_entries").Scan(&last); err != nil {
		return fmt.Errorf("failed to read last sequence: %w", err)
	}
	if entry.Seq != last+1 {
		return fmt.Errorf("%w: got seq %d, expected %d", secondary.ErrOutOfOrderAppend, entry.Seq, last+1)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ledger_entries (seq, from_step, to_step, spec_hash, action, outcome, reject_kind, failing_condition, reason, evidence_json, amendment_id, actor, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Seq,
		entry.FromStep,
		entry.ToStep,
		entry.SpecHash,
		entry.Action,
		entry.Outcome,
		nullable(entry.RejectKind),
		nullable(entry.FailingCondition),
		nullable(entry.Reason),
		nullable(entry.EvidenceJSON),
		nullable(entry.AmendmentID),
		entry.Actor,
		nullable(entry.Note),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return fmt.Errorf("%w: seq %d already taken", secondary.ErrOutOfOrderAppend, entry.Seq)
		}
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit append: %w", err)
	}
	return nil
}

// Head retrieves the latest admitted entry. Rejected, unavailable, and
// annotation entries never move the head.
func (r *LedgerRepository) Head(ctx context.Context) (*secondary.LedgerEntryRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+ledgerColumns+` FROM ledger_entries WHERE outcome = ? ORDER BY seq DESC LIMIT 1`,
		secondary.OutcomeAdmitted,
	)
	entry, err := scanLedgerEntry(row)
	if err == sql.ErrNoRows {
		return nil, secondary.ErrEmptyLedger
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger head: %w", err)
	}
	return entry, nil
}

// LastSeq returns the highest sequence number, 0 for an empty ledger.
func (r *LedgerRepository) LastSeq(ctx context.Context) (int64, error) {
	var last int64
	err := r.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) FROM ledger_entries").Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("failed to read last sequence: %w", err)
	}
	return last, nil
}

// GetBySeq retrieves a single entry by sequence number.
func (r *LedgerRepository) GetBySeq(ctx context.Context, seq int64) (*secondary.LedgerEntryRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+ledgerColumns+` FROM ledger_entries WHERE seq = ?`, seq)
	entry, err := scanLedgerEntry(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("ledger entry %d not found", seq)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}
	return entry, nil
}

// History retrieves entries with fromSeq <= seq <= toSeq in ascending
// order. toSeq == 0 means "to the end".
func (r *LedgerRepository) History(ctx context.Context, fromSeq, toSeq int64) ([]*secondary.LedgerEntryRecord, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE seq >= ?`
	args := []any{fromSeq}
	if toSeq > 0 {
		query += " AND seq <= ?"
		args = append(args, toSeq)
	}
	query += " ORDER BY seq ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger history: %w", err)
	}
	defer rows.Close()

	var entries []*secondary.LedgerEntryRecord
	for rows.Next() {
		entry, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanLedgerEntry(s scanner) (*secondary.LedgerEntryRecord, error) {
	var (
		rejectKind       sql.NullString
		failingCondition sql.NullString
		reason           sql.NullString
		evidenceJSON     sql.NullString
		amendmentID      sql.NullString
		note             sql.NullString
		createdAt        time.Time
	)

	entry := &secondary.LedgerEntryRecord{}
	err := s.Scan(
		&entry.Seq,
		&entry.FromStep,
		&entry.ToStep,
		&entry.SpecHash,
		&entry.Action,
		&entry.Outcome,
		&rejectKind,
		&failingCondition,
		&reason,
		&evidenceJSON,
		&amendmentID,
		&entry.Actor,
		&note,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	entry.RejectKind = rejectKind.String
	entry.FailingCondition = failingCondition.String
	entry.Reason = reason.String
	entry.EvidenceJSON = evidenceJSON.String
	entry.AmendmentID = amendmentID.String
	entry.Note = note.String
	entry.CreatedAt = createdAt.Format(time.RFC3339)
	return entry, nil
}

func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// Ensure LedgerRepository implements the interface
var _ secondary.LedgerRepository = (*LedgerRepository)(nil)
