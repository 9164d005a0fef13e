package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/wicket/internal/ports/secondary"
)

// ADRRepository implements secondary.ADRRepository with SQLite. The store
// is append-only: records are written once when an amendment is applied
// and never updated or deleted.
type ADRRepository struct {
	db *sql.DB
}

// NewADRRepository creates a new SQLite ADR repository.
func NewADRRepository(db *sql.DB) *ADRRepository {
	return &ADRRepository{db: db}
}

// Create persists a new ADR. The UNIQUE constraint on amendment_id
// enforces one record per applied amendment.
func (r *ADRRepository) Create(ctx context.Context, adr *secondary.ADRRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO adrs (id, amendment_id, reason, before_hash, after_hash) VALUES (?, ?, ?, ?, ?)`,
		adr.ID,
		adr.AmendmentID,
		adr.Reason,
		adr.BeforeHash,
		adr.AfterHash,
	)
	if err != nil {
		return fmt.Errorf("failed to create ADR: %w", err)
	}
	return nil
}

// GetByID retrieves an ADR by its ID.
func (r *ADRRepository) GetByID(ctx context.Context, id string) (*secondary.ADRRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, amendment_id, reason, before_hash, after_hash, created_at FROM adrs WHERE id = ?`, id)
	record, err := scanADR(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("ADR %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ADR: %w", err)
	}
	return record, nil
}

// GetByAmendmentID retrieves the ADR written for an amendment, or nil
// when none exists yet.
func (r *ADRRepository) GetByAmendmentID(ctx context.Context, amendmentID string) (*secondary.ADRRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, amendment_id, reason, before_hash, after_hash, created_at FROM adrs WHERE amendment_id = ?`, amendmentID)
	record, err := scanADR(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ADR for amendment %s: %w", amendmentID, err)
	}
	return record, nil
}

// List retrieves all ADRs, newest first.
func (r *ADRRepository) List(ctx context.Context) ([]*secondary.ADRRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, amendment_id, reason, before_hash, after_hash, created_at FROM adrs ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list ADRs: %w", err)
	}
	defer rows.Close()

	var adrs []*secondary.ADRRecord
	for rows.Next() {
		record, err := scanADR(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ADR: %w", err)
		}
		adrs = append(adrs, record)
	}
	return adrs, rows.Err()
}

// GetNextID returns the next available ADR ID.
func (r *ADRRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	prefixLen := len("ADR-") + 1
	err := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COALESCE(MAX(CAST(SUBSTR(id, %d) AS INTEGER)), 0) FROM adrs", prefixLen),
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next ADR ID: %w", err)
	}
	return fmt.Sprintf("ADR-%03d", maxID+1), nil
}

func scanADR(s scanner) (*secondary.ADRRecord, error) {
	var createdAt time.Time
	record := &secondary.ADRRecord{}
	err := s.Scan(
		&record.ID,
		&record.AmendmentID,
		&record.Reason,
		&record.BeforeHash,
		&record.AfterHash,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	record.CreatedAt = createdAt.Format(time.RFC3339)
	return record, nil
}

// Ensure ADRRepository implements the interface
var _ secondary.ADRRepository = (*ADRRepository)(nil)
