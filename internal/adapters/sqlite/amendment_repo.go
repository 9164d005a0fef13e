package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/wicket/internal/core/amendment"
	"github.com/example/wicket/internal/ports/secondary"
)

// AmendmentRepository implements secondary.AmendmentRepository with SQLite.
type AmendmentRepository struct {
	db *sql.DB
}

// NewAmendmentRepository creates a new SQLite amendment repository.
func NewAmendmentRepository(db *sql.DB) *AmendmentRepository {
	return &AmendmentRepository{db: db}
}

const amendmentColumns = `id, reason, previous_spec_hash, proposed_spec_hash,
	status, reviewed_by, justification, adr_id, actor, created_at, decided_at, applied_at`

// Create persists a new amendment in proposed status.
func (r *AmendmentRepository) Create(ctx context.Context, a *secondary.AmendmentRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO amendments (id, reason, previous_spec_hash, proposed_spec_hash, status, actor) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID,
		a.Reason,
		a.PreviousSpecHash,
		a.ProposedSpecHash,
		string(amendment.StatusProposed),
		a.Actor,
	)
	if err != nil {
		return fmt.Errorf("failed to create amendment: %w", err)
	}
	return nil
}

// GetByID retrieves an amendment by its ID.
func (r *AmendmentRepository) GetByID(ctx context.Context, id string) (*secondary.AmendmentRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+amendmentColumns+` FROM amendments WHERE id = ?`, id)
	record, err := scanAmendment(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("amendment %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get amendment: %w", err)
	}
	return record, nil
}

// List retrieves amendments matching the given filters, newest first.
func (r *AmendmentRepository) List(ctx context.Context, filters secondary.AmendmentFilters) ([]*secondary.AmendmentRecord, error) {
	query := `SELECT ` + amendmentColumns + ` FROM amendments WHERE 1=1`
	args := []any{}

	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list amendments: %w", err)
	}
	defer rows.Close()

	var amendments []*secondary.AmendmentRecord
	for rows.Next() {
		record, err := scanAmendment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan amendment: %w", err)
		}
		amendments = append(amendments, record)
	}
	return amendments, rows.Err()
}

// RecordDecision stores the reviewer decision on a proposed amendment.
// The WHERE clause keeps decisions one-shot: a decided amendment is never
// re-decided.
func (r *AmendmentRepository) RecordDecision(ctx context.Context, id, status, reviewer, justification string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE amendments SET status = ?, reviewed_by = ?, justification = ?, decided_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		status, reviewer, justification, id, string(amendment.StatusProposed),
	)
	if err != nil {
		return fmt.Errorf("failed to record decision: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("amendment %s not found or not in proposed status", id)
	}
	return nil
}

// MarkApplied transitions an approved amendment to applied and links the
// ADR written for it.
func (r *AmendmentRepository) MarkApplied(ctx context.Context, id, adrID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE amendments SET status = ?, adr_id = ?, applied_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		string(amendment.StatusApplied), adrID, id, string(amendment.StatusApproved),
	)
	if err != nil {
		return fmt.Errorf("failed to mark amendment applied: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("amendment %s not found or not in approved status", id)
	}
	return nil
}

// GetNextID returns the next available amendment ID.
func (r *AmendmentRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	prefixLen := len("AMD-") + 1
	err := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COALESCE(MAX(CAST(SUBSTR(id, %d) AS INTEGER)), 0) FROM amendments", prefixLen),
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next amendment ID: %w", err)
	}
	return fmt.Sprintf("AMD-%03d", maxID+1), nil
}

func scanAmendment(s scanner) (*secondary.AmendmentRecord, error) {
	var (
		reviewedBy    sql.NullString
		justification sql.NullString
		adrID         sql.NullString
		createdAt     time.Time
		decidedAt     sql.NullTime
		appliedAt     sql.NullTime
	)

	record := &secondary.AmendmentRecord{}
	err := s.Scan(
		&record.ID,
		&record.Reason,
		&record.PreviousSpecHash,
		&record.ProposedSpecHash,
		&record.Status,
		&reviewedBy,
		&justification,
		&adrID,
		&record.Actor,
		&createdAt,
		&decidedAt,
		&appliedAt,
	)
	if err != nil {
		return nil, err
	}
	record.ReviewedBy = reviewedBy.String
	record.Justification = justification.String
	record.ADRID = adrID.String
	record.CreatedAt = createdAt.Format(time.RFC3339)
	if decidedAt.Valid {
		record.DecidedAt = decidedAt.Time.Format(time.RFC3339)
	}
	if appliedAt.Valid {
		record.AppliedAt = appliedAt.Time.Format(time.RFC3339)
	}
	return record, nil
}

// Ensure AmendmentRepository implements the interface
var _ secondary.AmendmentRepository = (*AmendmentRepository)(nil)
