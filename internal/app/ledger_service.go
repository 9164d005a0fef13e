package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/wicket/internal/core/graph"
	"github.com/example/wicket/internal/ports/primary"
	"github.com/example/wicket/internal/ports/secondary"
)

// LedgerServiceImpl implements the LedgerService interface.
type LedgerServiceImpl struct {
	graph  *graph.Graph
	ledger secondary.LedgerRepository
}

// NewLedgerService creates a new LedgerService with injected dependencies.
func NewLedgerService(g *graph.Graph, ledger secondary.LedgerRepository) *LedgerServiceImpl {
	return &LedgerServiceImpl{graph: g, ledger: ledger}
}

// History retrieves entries in ascending sequence order.
func (s *LedgerServiceImpl) History(ctx context.Context, req primary.HistoryRequest) ([]*primary.LedgerEntry, error) {
	from := req.FromSeq
	if from < 1 {
		from = 1
	}
	records, err := s.ledger.History(ctx, from, req.ToSeq)
	if err != nil {
		return nil, err
	}
	entries := make([]*primary.LedgerEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, recordToEntry(r))
	}
	return entries, nil
}

// Get retrieves one entry by sequence number.
func (s *LedgerServiceImpl) Get(ctx context.Context, seq int64) (*primary.LedgerEntry, error) {
	record, err := s.ledger.GetBySeq(ctx, seq)
	if err != nil {
		return nil, err
	}
	return recordToEntry(record), nil
}

// Verify replays the full history against the append-only contract. Every
// finding is collected rather than failing fast, so one pass reports
// everything wrong with a ledger.
func (s *LedgerServiceImpl) Verify(ctx context.Context) (*primary.VerifyResult, error) {
	records, err := s.ledger.History(ctx, 1, 0)
	if err != nil {
		return nil, err
	}

	result := &primary.VerifyResult{Entries: len(records)}

	// Replay state: the position the admitted entries alone imply.
	current := s.graph.Start()
	specHash := ""
	var headSeq int64

	for i, r := range records {
		want := int64(i + 1)
		if r.Seq != want {
			result.Problems = append(result.Problems,
				fmt.Sprintf("sequence gap: entry %d has seq %d, want %d", i, r.Seq, want))
		}

		switch r.Outcome {
		case secondary.OutcomeAdmitted:
		case secondary.OutcomeRejected, secondary.OutcomeUnavailable:
			if r.RejectKind == "" {
				result.Problems = append(result.Problems,
					fmt.Sprintf("seq %d: %s outcome without a reject kind", r.Seq, r.Outcome))
			}
			continue
		case secondary.OutcomeAnnotated:
			continue
		default:
			result.Problems = append(result.Problems,
				fmt.Sprintf("seq %d: unknown outcome %q", r.Seq, r.Outcome))
			continue
		}

		// Admitted entries must chain: each departs from the position the
		// previous admitted entry established.
		if r.FromStep != string(current) {
			result.Problems = append(result.Problems,
				fmt.Sprintf("seq %d: departs from %q but the replayed position is %q", r.Seq, r.FromStep, current))
		}

		from := graph.StepID(r.FromStep)
		to := graph.StepID(r.ToStep)
		switch r.Action {
		case secondary.ActionAdvance:
			if !s.graph.TransitionAllowed(from, to) {
				result.Problems = append(result.Problems,
					fmt.Sprintf("seq %d: admitted transition %s -> %s has no edge", r.Seq, from, to))
			}
		case secondary.ActionCommit:
			if r.FromStep != r.ToStep {
				result.Problems = append(result.Problems,
					fmt.Sprintf("seq %d: commit entry moves the step %s -> %s", r.Seq, from, to))
			}
		case secondary.ActionAmendment:
			if r.AmendmentID == "" {
				result.Problems = append(result.Problems,
					fmt.Sprintf("seq %d: amendment entry without an amendment id", r.Seq))
			}
			step, err := s.graph.Step(from)
			if err != nil {
				result.Problems = append(result.Problems,
					fmt.Sprintf("seq %d: amendment departs from unknown step %q", r.Seq, from))
			} else if step.AmendmentLanding != to {
				result.Problems = append(result.Problems,
					fmt.Sprintf("seq %d: amendment lands on %s, step %s declares landing %s", r.Seq, to, from, step.AmendmentLanding))
			}
		default:
			result.Problems = append(result.Problems,
				fmt.Sprintf("seq %d: unknown action %q", r.Seq, r.Action))
		}

		current = to
		specHash = r.SpecHash
		headSeq = r.Seq
	}

	// The replayed head must match what the repository reports.
	head, err := s.ledger.Head(ctx)
	switch {
	case err == nil:
		if head.Seq != headSeq || head.ToStep != string(current) {
			result.Problems = append(result.Problems,
				fmt.Sprintf("stored head (seq %d, step %s) disagrees with replay (seq %d, step %s)",
					head.Seq, head.ToStep, headSeq, current))
		}
	case errors.Is(err, secondary.ErrEmptyLedger):
		if headSeq != 0 {
			result.Problems = append(result.Problems,
				fmt.Sprintf("replay found an admitted head at seq %d but the repository reports none", headSeq))
		}
	default:
		return nil, err
	}

	result.OK = len(result.Problems) == 0
	result.HeadSeq = headSeq
	result.CurrentStep = string(current)
	result.SpecHash = specHash
	return result, nil
}

// Ensure LedgerServiceImpl implements the interface
var _ primary.LedgerService = (*LedgerServiceImpl)(nil)
