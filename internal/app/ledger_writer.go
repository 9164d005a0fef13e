package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/example/wicket/internal/ports/secondary"
)

// LedgerWriter serializes every read-position-then-append sequence on the
// ledger. Two callers that both read step N as current must not both win
// the following append; the mutex is the in-process single-writer
// discipline, and the repository's sequence check is the backstop for
// writers in other processes.
type LedgerWriter struct {
	mu   sync.Mutex
	repo secondary.LedgerRepository
}

// NewLedgerWriter creates a ledger writer over the given repository.
func NewLedgerWriter(repo secondary.LedgerRepository) *LedgerWriter {
	return &LedgerWriter{repo: repo}
}

// Append runs build under the writer lock and appends its result at the
// next sequence number. build receives the current admitted head (nil for
// an empty ledger) and may return a nil entry to record nothing. The
// appended entry, with its assigned sequence, is returned.
func (w *LedgerWriter) Append(ctx context.Context, build func(head *secondary.LedgerEntryRecord) (*secondary.LedgerEntryRecord, error)) (*secondary.LedgerEntryRecord, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	head, err := w.repo.Head(ctx)
	if err != nil && !errors.Is(err, secondary.ErrEmptyLedger) {
		return nil, fmt.Errorf("failed to read ledger head: %w", err)
	}

	entry, err := build(head)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}

	last, err := w.repo.LastSeq(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read last sequence: %w", err)
	}
	entry.Seq = last + 1

	if err := w.repo.Append(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}
