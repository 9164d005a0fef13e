// Package secondary defines the secondary ports (driven adapters) for the
// application. These are the interfaces through which the application
// drives external systems.
package secondary

import (
	"context"
	"errors"
)

// ErrOutOfOrderAppend is returned when a ledger append does not carry the
// next sequence number. It signals a racing writer: the caller should
// re-read the current position and retry.
var ErrOutOfOrderAppend = errors.New("ledger append out of order")

// ErrEmptyLedger is returned when the ledger holds no admitted entry yet.
var ErrEmptyLedger = errors.New("ledger has no admitted entries")

// Ledger entry outcomes.
const (
	OutcomeAdmitted    = "admitted"
	OutcomeRejected    = "rejected"
	OutcomeUnavailable = "unavailable"
	OutcomeAnnotated   = "annotated"
)

// Ledger entry actions.
const (
	ActionAdvance   = "advance"
	ActionCommit    = "commit"
	ActionAmendment = "amendment"
	ActionNote      = "note"
)

// LedgerEntryRecord is one immutable ledger record as stored in
// persistence. Entries are append-only: no record is ever mutated or
// deleted.
type LedgerEntryRecord struct {
	Seq              int64
	FromStep         string
	ToStep           string
	SpecHash         string
	Action           string
	Outcome          string
	RejectKind       string
	FailingCondition string
	Reason           string
	EvidenceJSON     string // JSON snapshot of the evidence, empty if none collected
	AmendmentID      string // set when the entry records an amendment application
	Actor            string
	Note             string
	CreatedAt        string
}

// LedgerRepository defines the secondary port for ledger persistence. The
// contract is storage-agnostic: an ordered, gapless, append-only log.
type LedgerRepository interface {
	// Append atomically persists an entry. The entry's Seq must be exactly
	// LastSeq+1; anything else fails with ErrOutOfOrderAppend. Exactly one
	// of two racing appends with the same target sequence wins.
	Append(ctx context.Context, entry *LedgerEntryRecord) error

	// Head retrieves the latest admitted entry. Fails with ErrEmptyLedger
	// when no entry has been admitted yet. Rejected entries never move the
	// head.
	Head(ctx context.Context) (*LedgerEntryRecord, error)

	// LastSeq returns the highest sequence number, 0 for an empty ledger.
	LastSeq(ctx context.Context) (int64, error)

	// GetBySeq retrieves a single entry by sequence number.
	GetBySeq(ctx context.Context, seq int64) (*LedgerEntryRecord, error)

	// History retrieves entries with fromSeq <= Seq <= toSeq in ascending
	// order. toSeq == 0 means "to the end".
	History(ctx context.Context, fromSeq, toSeq int64) ([]*LedgerEntryRecord, error)
}

// AmendmentRecord represents an amendment request as stored in persistence.
type AmendmentRecord struct {
	ID               string
	Reason           string
	PreviousSpecHash string
	ProposedSpecHash string
	Status           string // proposed, approved, rejected, applied
	ReviewedBy       string
	Justification    string
	ADRID            string // set once applied
	Actor            string
	CreatedAt        string
	DecidedAt        string
	AppliedAt        string
}

// AmendmentFilters contains filter options for querying amendments.
type AmendmentFilters struct {
	Status string
}

// AmendmentRepository defines the secondary port for amendment persistence.
// Amendment history is append-only in spirit: records only ever move
// forward through the lifecycle, and decisions are never rewritten.
type AmendmentRepository interface {
	// Create persists a new amendment in proposed status.
	Create(ctx context.Context, amendment *AmendmentRecord) error

	// GetByID retrieves an amendment by its ID.
	GetByID(ctx context.Context, id string) (*AmendmentRecord, error)

	// List retrieves amendments matching the given filters, newest first.
	List(ctx context.Context, filters AmendmentFilters) ([]*AmendmentRecord, error)

	// RecordDecision stores the reviewer decision on a proposed amendment.
	RecordDecision(ctx context.Context, id, status, reviewer, justification string) error

	// MarkApplied transitions an approved amendment to applied and links
	// the ADR written for it.
	MarkApplied(ctx context.Context, id, adrID string) error

	// GetNextID returns the next available amendment ID.
	GetNextID(ctx context.Context) (string, error)
}

// ADRRecord is one immutable architectural decision record, written when
// an amendment is applied.
type ADRRecord struct {
	ID          string
	AmendmentID string
	Reason      string
	BeforeHash  string
	AfterHash   string
	CreatedAt   string
}

// ADRRepository defines the secondary port for the append-only ADR store.
type ADRRepository interface {
	// Create persists a new ADR. One record per applied amendment.
	Create(ctx context.Context, adr *ADRRecord) error

	// GetByID retrieves an ADR by its ID.
	GetByID(ctx context.Context, id string) (*ADRRecord, error)

	// GetByAmendmentID retrieves the ADR written for an amendment.
	// Returns nil, nil when no ADR exists for it yet.
	GetByAmendmentID(ctx context.Context, amendmentID string) (*ADRRecord, error)

	// List retrieves all ADRs, newest first.
	List(ctx context.Context) ([]*ADRRecord, error)

	// GetNextID returns the next available ADR ID.
	GetNextID(ctx context.Context) (string, error)
}
