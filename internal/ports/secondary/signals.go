package secondary

import (
	"context"
	"fmt"
)

// CollectionError reports that an evidence source could not produce a
// snapshot (timeout, tool crash, unreadable report). It is deliberately
// distinct from any exit condition failing: a flaky collector must never
// silently admit or reject a transition.
type CollectionError struct {
	Detail string
	Err    error
}

func (e *CollectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("evidence collection failed: %s: %v", e.Detail, e.Err)
	}
	return fmt.Sprintf("evidence collection failed: %s", e.Detail)
}

func (e *CollectionError) Unwrap() error {
	return e.Err
}

// EvidenceRecord is a raw evidence snapshot as produced by a collector.
// The declared spec hash is attached separately by the application layer,
// since it comes from the spec hasher rather than the test tooling.
type EvidenceRecord struct {
	TestsTotal    int
	TestsFailed   int
	Coverage      float64
	MutationScore float64
	CollectedAt   string
}

// EvidenceCollector defines the secondary port over external signal
// sources (test runner, coverage tool, mutation-score tool). Collect is a
// single bounded call; implementations honor context cancellation and
// return *CollectionError on failure.
type EvidenceCollector interface {
	Collect(ctx context.Context) (*EvidenceRecord, error)
}

// SpecHasher defines the secondary port for the deterministic content hash
// over the governing specification's canonical text.
type SpecHasher interface {
	// HashBytes hashes canonicalized document bytes.
	HashBytes(data []byte) string

	// HashFile hashes the document at path.
	HashFile(path string) (string, error)
}

// CommitReader defines the secondary port for reading commit metadata from
// a repository. The core never does git plumbing beyond this.
type CommitReader interface {
	// HeadMessage returns the full message of the repository's HEAD commit.
	HeadMessage(ctx context.Context, repoPath string) (string, error)
}
