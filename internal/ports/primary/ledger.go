package primary

import "context"

// LedgerService defines the primary port for reading and verifying the
// progress ledger.
type LedgerService interface {
	// History retrieves entries in ascending sequence order.
	History(ctx context.Context, req HistoryRequest) ([]*LedgerEntry, error)

	// Get retrieves one entry by sequence number.
	Get(ctx context.Context, seq int64) (*LedgerEntry, error)

	// Verify replays the full history against the append-only contract:
	// gapless strictly-increasing sequences, and a head reconstructible
	// from the admitted entries alone.
	Verify(ctx context.Context) (*VerifyResult, error)
}

// HistoryRequest bounds a history read. ToSeq == 0 means "to the end".
type HistoryRequest struct {
	FromSeq int64
	ToSeq   int64
}

// LedgerEntry is a ledger record at the port boundary.
type LedgerEntry struct {
	Seq              int64
	FromStep         string
	ToStep           string
	SpecHash         string
	Action           string
	Outcome          string
	RejectKind       string
	FailingCondition string
	Reason           string
	AmendmentID      string
	Actor            string
	Note             string
	CreatedAt        string
	Evidence         *EvidenceSnapshot
}

// VerifyResult reports the outcome of a ledger verification.
type VerifyResult struct {
	OK          bool
	Entries     int
	HeadSeq     int64
	CurrentStep string
	SpecHash    string
	Problems    []string
}
