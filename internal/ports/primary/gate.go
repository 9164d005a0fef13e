// Package primary defines the primary ports (driving interfaces) of the
// application: the services a CLI, CI job, or driving agent calls.
package primary

import "context"

// GateService defines the primary port for gate evaluations. The agent is
// not a privileged actor: every caller, human or bot, goes through the
// same gate.
type GateService interface {
	// Status reports the current playbook position and recent activity.
	Status(ctx context.Context) (*PlaybookStatus, error)

	// Advance collects fresh evidence, evaluates the proposed step
	// transition, records the attempt per policy, and returns the
	// decision. A rejection is a result, not an error.
	Advance(ctx context.Context, req AdvanceRequest) (*GateResult, error)

	// CheckCommit validates a proposed commit: structural metadata checks
	// first (failing fast before evidence collection), then the
	// commit-blocking exit conditions of the current step.
	CheckCommit(ctx context.Context, req CommitCheckRequest) (*GateResult, error)

	// CollectEvidence gathers and returns a fresh evidence snapshot
	// without evaluating anything.
	CollectEvidence(ctx context.Context) (*EvidenceSnapshot, error)

	// Annotate appends a pure annotation entry at the current position.
	// It consumes a sequence number but never moves the head.
	Annotate(ctx context.Context, note string) (*LedgerEntry, error)
}

// AdvanceRequest contains parameters for a proposed step advancement.
type AdvanceRequest struct {
	Target string
	Note   string
}

// CommitCheckRequest contains parameters for a commit validation. When
// Message is empty the HEAD commit of the configured repository is read.
type CommitCheckRequest struct {
	Message string
	Note    string
}

// EvidenceSnapshot is an evidence snapshot at the port boundary.
type EvidenceSnapshot struct {
	TestsTotal    int
	TestsFailed   int
	Coverage      float64
	MutationScore float64
	SpecHash      string
	CollectedAt   string
}

// GateResult is the outcome of a gate evaluation. Every rejection names
// the machine-readable kind and, for condition failures, the specific
// failing condition.
type GateResult struct {
	Admitted         bool
	RejectKind       string
	FailingCondition string
	Reason           string
	FromStep         string
	ToStep           string
	SpecHash         string
	Seq              int64 // ledger sequence of the recorded attempt
	Recorded         bool  // false when policy skipped the audit append
	Evidence         *EvidenceSnapshot
}

// PlaybookStatus reports the current position of the playbook.
type PlaybookStatus struct {
	Initialized       bool // at least one admitted entry exists
	CurrentStep       string
	Terminal          bool // current step is the terminal step
	SpecHash          string
	HeadSeq           int64
	LastSeq           int64
	PendingAmendments int
	RecentEntries     []*LedgerEntry
}
