package sqlite

import (
	"context"
	"testing"

	"github.com/example/wicket/internal/ports/secondary"
)

func TestADRCreateAndGet(t *testing.T) {
	testDB := setupTestDB(t)
	amendments := NewAmendmentRepository(testDB)
	repo := NewADRRepository(testDB)
	ctx := context.Background()

	createAmendment(t, amendments, "AMD-001")

	err := repo.Create(ctx, &secondary.ADRRecord{
		ID:          "ADR-001",
		AmendmentID: "AMD-001",
		Reason:      "rate limiting needs a burst allowance",
		BeforeHash:  "b3:old",
		AfterHash:   "b3:new",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	adr, err := repo.GetByID(ctx, "ADR-001")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if adr.AmendmentID != "AMD-001" {
		t.Errorf("AmendmentID = %q, want AMD-001", adr.AmendmentID)
	}
	if adr.BeforeHash != "b3:old" || adr.AfterHash != "b3:new" {
		t.Errorf("hashes = %q -> %q, want b3:old -> b3:new", adr.BeforeHash, adr.AfterHash)
	}
	if adr.CreatedAt == "" {
		t.Error("CreatedAt is empty")
	}
}

func TestADRGetByAmendmentID(t *testing.T) {
	testDB := setupTestDB(t)
	amendments := NewAmendmentRepository(testDB)
	repo := NewADRRepository(testDB)
	ctx := context.Background()

	adr, err := repo.GetByAmendmentID(ctx, "AMD-001")
	if err != nil {
		t.Fatalf("GetByAmendmentID() error = %v", err)
	}
	if adr != nil {
		t.Errorf("GetByAmendmentID() = %+v before any ADR exists, want nil", adr)
	}

	createAmendment(t, amendments, "AMD-001")
	err = repo.Create(ctx, &secondary.ADRRecord{
		ID: "ADR-001", AmendmentID: "AMD-001", Reason: "r", BeforeHash: "b3:old", AfterHash: "b3:new",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	adr, err = repo.GetByAmendmentID(ctx, "AMD-001")
	if err != nil {
		t.Fatalf("GetByAmendmentID() error = %v", err)
	}
	if adr == nil || adr.ID != "ADR-001" {
		t.Errorf("GetByAmendmentID() = %+v, want ADR-001", adr)
	}
}

func TestADROnePerAmendment(t *testing.T) {
	testDB := setupTestDB(t)
	amendments := NewAmendmentRepository(testDB)
	repo := NewADRRepository(testDB)
	ctx := context.Background()

	createAmendment(t, amendments, "AMD-001")

	first := &secondary.ADRRecord{ID: "ADR-001", AmendmentID: "AMD-001", Reason: "r", AfterHash: "b3:new"}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	second := &secondary.ADRRecord{ID: "ADR-002", AmendmentID: "AMD-001", Reason: "r", AfterHash: "b3:newer"}
	if err := repo.Create(ctx, second); err == nil {
		t.Error("Create() second ADR for the same amendment error = nil, want unique violation")
	}
}

func TestADRGetNextID(t *testing.T) {
	testDB := setupTestDB(t)
	amendments := NewAmendmentRepository(testDB)
	repo := NewADRRepository(testDB)
	ctx := context.Background()

	id, err := repo.GetNextID(ctx)
	if err != nil {
		t.Fatalf("GetNextID() error = %v", err)
	}
	if id != "ADR-001" {
		t.Errorf("GetNextID() = %s, want ADR-001", id)
	}

	createAmendment(t, amendments, "AMD-001")
	if err := repo.Create(ctx, &secondary.ADRRecord{ID: "ADR-001", AmendmentID: "AMD-001", Reason: "r", AfterHash: "b3:new"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	id, err = repo.GetNextID(ctx)
	if err != nil {
		t.Fatalf("GetNextID() error = %v", err)
	}
	if id != "ADR-002" {
		t.Errorf("GetNextID() = %s, want ADR-002", id)
	}
}
