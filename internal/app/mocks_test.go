package app

import (
	"context"
	"fmt"

	"github.com/example/wicket/internal/core/amendment"
	"github.com/example/wicket/internal/ports/secondary"
)

// mockLedgerRepo is an in-memory ledger honoring the append-only contract.
type mockLedgerRepo struct {
	entries []*secondary.LedgerEntryRecord
}

func (m *mockLedgerRepo) Append(ctx context.Context, entry *secondary.LedgerEntryRecord) error {
	if entry.Seq != int64(len(m.entries))+1 {
		return fmt.Errorf("%w: got seq %d, expected %d", secondary.ErrOutOfOrderAppend, entry.Seq, len(m.entries)+1)
	}
	cp := *entry
	if cp.CreatedAt == "" {
		cp.CreatedAt = "2026-03-14T12:00:00Z"
	}
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *mockLedgerRepo) Head(ctx context.Context) (*secondary.LedgerEntryRecord, error) {
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].Outcome == secondary.OutcomeAdmitted {
			cp := *m.entries[i]
			return &cp, nil
		}
	}
	return nil, secondary.ErrEmptyLedger
}

func (m *mockLedgerRepo) LastSeq(ctx context.Context) (int64, error) {
	return int64(len(m.entries)), nil
}

func (m *mockLedgerRepo) GetBySeq(ctx context.Context, seq int64) (*secondary.LedgerEntryRecord, error) {
	if seq < 1 || seq > int64(len(m.entries)) {
		return nil, fmt.Errorf("ledger entry %d not found", seq)
	}
	cp := *m.entries[seq-1]
	return &cp, nil
}

func (m *mockLedgerRepo) History(ctx context.Context, fromSeq, toSeq int64) ([]*secondary.LedgerEntryRecord, error) {
	var out []*secondary.LedgerEntryRecord
	for _, e := range m.entries {
		if e.Seq < fromSeq {
			continue
		}
		if toSeq > 0 && e.Seq > toSeq {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

// mockAmendmentRepo is an in-memory amendment store.
type mockAmendmentRepo struct {
	records        map[string]*secondary.AmendmentRecord
	order          []string
	markAppliedErr error
}

func newMockAmendmentRepo() *mockAmendmentRepo {
	return &mockAmendmentRepo{records: make(map[string]*secondary.AmendmentRecord)}
}

func (m *mockAmendmentRepo) Create(ctx context.Context, a *secondary.AmendmentRecord) error {
	cp := *a
	cp.Status = string(amendment.StatusProposed)
	cp.CreatedAt = "2026-03-14T12:00:00Z"
	m.records[a.ID] = &cp
	m.order = append(m.order, a.ID)
	return nil
}

func (m *mockAmendmentRepo) GetByID(ctx context.Context, id string) (*secondary.AmendmentRecord, error) {
	a, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("amendment %s not found", id)
	}
	cp := *a
	return &cp, nil
}

func (m *mockAmendmentRepo) List(ctx context.Context, filters secondary.AmendmentFilters) ([]*secondary.AmendmentRecord, error) {
	var out []*secondary.AmendmentRecord
	for i := len(m.order) - 1; i >= 0; i-- {
		a := m.records[m.order[i]]
		if filters.Status != "" && a.Status != filters.Status {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockAmendmentRepo) RecordDecision(ctx context.Context, id, status, reviewer, justification string) error {
	a, ok := m.records[id]
	if !ok || a.Status != string(amendment.StatusProposed) {
		return fmt.Errorf("amendment %s not found or not in proposed status", id)
	}
	a.Status = status
	a.ReviewedBy = reviewer
	a.Justification = justification
	a.DecidedAt = "2026-03-14T13:00:00Z"
	return nil
}

func (m *mockAmendmentRepo) MarkApplied(ctx context.Context, id, adrID string) error {
	if m.markAppliedErr != nil {
		return m.markAppliedErr
	}
	a, ok := m.records[id]
	if !ok || a.Status != string(amendment.StatusApproved) {
		return fmt.Errorf("amendment %s not found or not in approved status", id)
	}
	a.Status = string(amendment.StatusApplied)
	a.ADRID = adrID
	a.AppliedAt = "2026-03-14T14:00:00Z"
	return nil
}

func (m *mockAmendmentRepo) GetNextID(ctx context.Context) (string, error) {
	return fmt.Sprintf("AMD-%03d", len(m.records)+1), nil
}

// mockADRRepo is an in-memory ADR store.
type mockADRRepo struct {
	records   map[string]*secondary.ADRRecord
	order     []string
	createErr error
}

func newMockADRRepo() *mockADRRepo {
	return &mockADRRepo{records: make(map[string]*secondary.ADRRecord)}
}

func (m *mockADRRepo) Create(ctx context.Context, adr *secondary.ADRRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	cp := *adr
	cp.CreatedAt = "2026-03-14T14:00:00Z"
	m.records[adr.ID] = &cp
	m.order = append(m.order, adr.ID)
	return nil
}

func (m *mockADRRepo) GetByID(ctx context.Context, id string) (*secondary.ADRRecord, error) {
	adr, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("ADR %s not found", id)
	}
	cp := *adr
	return &cp, nil
}

func (m *mockADRRepo) GetByAmendmentID(ctx context.Context, amendmentID string) (*secondary.ADRRecord, error) {
	for _, id := range m.order {
		if m.records[id].AmendmentID == amendmentID {
			cp := *m.records[id]
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockADRRepo) List(ctx context.Context) ([]*secondary.ADRRecord, error) {
	var out []*secondary.ADRRecord
	for i := len(m.order) - 1; i >= 0; i-- {
		cp := *m.records[m.order[i]]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockADRRepo) GetNextID(ctx context.Context) (string, error) {
	return fmt.Sprintf("ADR-%03d", len(m.records)+1), nil
}

// mockCollector returns a fixed record or error and counts calls.
type mockCollector struct {
	record *secondary.EvidenceRecord
	err    error
	calls  int
}

func (m *mockCollector) Collect(ctx context.Context) (*secondary.EvidenceRecord, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	cp := *m.record
	return &cp, nil
}

// mockHasher hashes by content prefixing, good enough for lineage checks.
type mockHasher struct {
	files map[string]string // path -> hash; missing path is an error
}

func (m *mockHasher) HashBytes(data []byte) string {
	return "b3:" + string(data)
}

func (m *mockHasher) HashFile(path string) (string, error) {
	if h, ok := m.files[path]; ok {
		return h, nil
	}
	return "", fmt.Errorf("failed to read spec document: %s", path)
}

// mockCommitReader returns a fixed HEAD message.
type mockCommitReader struct {
	message string
	err     error
}

func (m *mockCommitReader) HeadMessage(ctx context.Context, repoPath string) (string, error) {
	return m.message, m.err
}

var (
	_ secondary.LedgerRepository    = (*mockLedgerRepo)(nil)
	_ secondary.AmendmentRepository = (*mockAmendmentRepo)(nil)
	_ secondary.ADRRepository       = (*mockADRRepo)(nil)
	_ secondary.EvidenceCollector   = (*mockCollector)(nil)
	_ secondary.SpecHasher          = (*mockHasher)(nil)
	_ secondary.CommitReader        = (*mockCommitReader)(nil)
)
