package primary

import "context"

// AmendmentService defines the primary port for the spec amendment
// workflow.
type AmendmentService interface {
	// Propose creates a new amendment in proposed status, hashing the
	// candidate spec document.
	Propose(ctx context.Context, req ProposeAmendmentRequest) (*Amendment, error)

	// Decide records the external reviewer's decision on a proposed
	// amendment. There is no automatic approval path.
	Decide(ctx context.Context, req DecideAmendmentRequest) (*Amendment, error)

	// Apply applies an approved amendment: confirms the current step
	// accepts an amendment landing, appends the ledger entry carrying the
	// new spec hash, and writes the ADR.
	Apply(ctx context.Context, id string) (*ApplyAmendmentResponse, error)

	// Get retrieves an amendment by ID.
	Get(ctx context.Context, id string) (*Amendment, error)

	// List retrieves amendments, optionally filtered by status.
	List(ctx context.Context, status string) ([]*Amendment, error)

	// ListADRs retrieves all architectural decision records.
	ListADRs(ctx context.Context) ([]*ADR, error)
}

// ProposeAmendmentRequest contains parameters for proposing an amendment.
// SpecPath optionally overrides the configured governing spec document.
type ProposeAmendmentRequest struct {
	Reason   string
	SpecPath string
}

// DecideAmendmentRequest contains the reviewer decision for a proposed
// amendment.
type DecideAmendmentRequest struct {
	ID            string
	Approve       bool
	Justification string
}

// ApplyAmendmentResponse contains the result of applying an amendment.
type ApplyAmendmentResponse struct {
	Amendment *Amendment
	ADR       *ADR
	LedgerSeq int64
	LandedOn  string
}

// Amendment represents an amendment request at the port boundary.
type Amendment struct {
	ID               string
	Reason           string
	PreviousSpecHash string
	ProposedSpecHash string
	Status           string
	ReviewedBy       string
	Justification    string
	ADRID            string
	Actor            string
	CreatedAt        string
	DecidedAt        string
	AppliedAt        string
}

// ADR represents an architectural decision record at the port boundary.
type ADR struct {
	ID          string
	AmendmentID string
	Reason      string
	BeforeHash  string
	AfterHash   string
	CreatedAt   string
}
