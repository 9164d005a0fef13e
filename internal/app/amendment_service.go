package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/example/wicket/internal/config"
	"github.com/example/wicket/internal/core/amendment"
	"github.com/example/wicket/internal/core/graph"
	"github.com/example/wicket/internal/ports/primary"
	"github.com/example/wicket/internal/ports/secondary"
)

// AmendmentServiceImpl implements the AmendmentService interface.
type AmendmentServiceImpl struct {
	graph      *graph.Graph
	cfg        *config.Config
	root       string
	writer     *LedgerWriter
	ledger     secondary.LedgerRepository
	amendments secondary.AmendmentRepository
	adrs       secondary.ADRRepository
	hasher     secondary.SpecHasher
}

// NewAmendmentService creates a new AmendmentService with injected
// dependencies.
func NewAmendmentService(
	g *graph.Graph,
	cfg *config.Config,
	root string,
	writer *LedgerWriter,
	ledger secondary.LedgerRepository,
	amendments secondary.AmendmentRepository,
	adrs secondary.ADRRepository,
	hasher secondary.SpecHasher,
) *AmendmentServiceImpl {
	return &AmendmentServiceImpl{
		graph:      g,
		cfg:        cfg,
		root:       root,
		writer:     writer,
		ledger:     ledger,
		amendments: amendments,
		adrs:       adrs,
		hasher:     hasher,
	}
}

// Propose creates a new amendment in proposed status. The candidate spec
// document is hashed now, so the proposal pins exactly the content the
// reviewer will look at.
func (s *AmendmentServiceImpl) Propose(ctx context.Context, req primary.ProposeAmendmentRequest) (*primary.Amendment, error) {
	path := req.SpecPath
	if path == "" {
		path = s.cfg.SpecPath
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.root, path)
	}

	proposedHash, err := s.hasher.HashFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to hash proposed spec document: %w", err)
	}

	previousHash := ""
	head, err := s.ledger.Head(ctx)
	if err != nil && !errors.Is(err, secondary.ErrEmptyLedger) {
		return nil, err
	}
	if head != nil {
		previousHash = head.SpecHash
	}

	result := amendment.CanPropose(amendment.ProposeContext{
		Reason:           req.Reason,
		ProposedSpecHash: proposedHash,
		PreviousSpecHash: previousHash,
	})
	if err := result.Error(); err != nil {
		return nil, err
	}

	id, err := s.amendments.GetNextID(ctx)
	if err != nil {
		return nil, err
	}

	record := &secondary.AmendmentRecord{
		ID:               id,
		Reason:           req.Reason,
		PreviousSpecHash: previousHash,
		ProposedSpecHash: proposedHash,
		Actor:            actorFrom(ctx),
	}
	if err := s.amendments.Create(ctx, record); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Decide records the external reviewer's decision on a proposed amendment.
func (s *AmendmentServiceImpl) Decide(ctx context.Context, req primary.DecideAmendmentRequest) (*primary.Amendment, error) {
	record, err := s.amendments.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	decision := amendment.StatusRejected
	if req.Approve {
		decision = amendment.StatusApproved
	}
	result := amendment.CanDecide(amendment.DecideContext{
		ID:            record.ID,
		Current:       amendment.Status(record.Status),
		Decision:      decision,
		Justification: req.Justification,
	})
	if err := result.Error(); err != nil {
		return nil, err
	}

	if err := s.amendments.RecordDecision(ctx, record.ID, string(decision), actorFrom(ctx), req.Justification); err != nil {
		return nil, err
	}
	return s.Get(ctx, record.ID)
}

// Apply applies an approved amendment: the ledger entry moves the playbook
// to the landing step under the new spec hash, then the ADR is written and
// the amendment closed. The staleness check runs under the writer lock so
// a concurrent advance cannot slip between check and append.
//
// The three writes are not atomic across stores, so Apply is resumable: if
// an earlier attempt landed the ledger entry but failed before the ADR or
// the status update, a retry picks up from the landed entry instead of
// appending a second one.
func (s *AmendmentServiceImpl) Apply(ctx context.Context, id string) (*primary.ApplyAmendmentResponse, error) {
	record, err := s.amendments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Status != string(amendment.StatusApproved) {
		return nil, fmt.Errorf("%w: amendment %s status is %s", amendment.ErrNotApproved, record.ID, record.Status)
	}
	actor := actorFrom(ctx)

	var landed *secondary.LedgerEntryRecord
	entry, err := s.writer.Append(ctx, func(head *secondary.LedgerEntryRecord) (*secondary.LedgerEntryRecord, error) {
		// An earlier attempt already landed this amendment when the head
		// carries its id under the proposed hash. Commit audit entries at
		// the landed step carry the id forward, so both count.
		if head != nil && head.AmendmentID == record.ID && head.SpecHash == record.ProposedSpecHash {
			landed = head
			return nil, nil
		}

		pos := positionFrom(s.graph, head)
		step, stepErr := s.graph.Step(pos.step)
		if stepErr != nil {
			return nil, stepErr
		}

		landing := step.AmendmentLanding
		result := amendment.CanApply(amendment.ApplyContext{
			ID:               record.ID,
			Current:          amendment.Status(record.Status),
			LandingStep:      string(landing),
			LandingReachable: landing == pos.step || s.graph.TransitionAllowed(pos.step, landing),
		})
		if guardErr := result.Error(); guardErr != nil {
			return nil, guardErr
		}

		// The approval pinned the hash lineage at proposal time; a head
		// that moved past it means the approval is stale.
		if pos.specHash != record.PreviousSpecHash {
			return nil, fmt.Errorf("amendment %s is stale: it amends spec hash %q but the ledger head carries %q",
				record.ID, record.PreviousSpecHash, pos.specHash)
		}

		return &secondary.LedgerEntryRecord{
			FromStep:    string(pos.step),
			ToStep:      string(landing),
			SpecHash:    record.ProposedSpecHash,
			Action:      secondary.ActionAmendment,
			Outcome:     secondary.OutcomeAdmitted,
			Reason:      record.Reason,
			AmendmentID: record.ID,
			Actor:       actor,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	if entry != nil {
		landed = entry
	}

	// The ADR may already exist when a previous attempt failed between
	// the ADR write and the status update.
	adrRecord, err := s.adrs.GetByAmendmentID(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	if adrRecord == nil {
		adrID, err := s.adrs.GetNextID(ctx)
		if err != nil {
			return nil, err
		}
		adrRecord = &secondary.ADRRecord{
			ID:          adrID,
			AmendmentID: record.ID,
			Reason:      record.Reason,
			BeforeHash:  record.PreviousSpecHash,
			AfterHash:   record.ProposedSpecHash,
		}
		if err := s.adrs.Create(ctx, adrRecord); err != nil {
			return nil, err
		}
	}
	if err := s.amendments.MarkApplied(ctx, record.ID, adrRecord.ID); err != nil {
		return nil, err
	}

	applied, err := s.Get(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	adr, err := s.adrs.GetByID(ctx, adrRecord.ID)
	if err != nil {
		return nil, err
	}
	return &primary.ApplyAmendmentResponse{
		Amendment: applied,
		ADR:       recordToADR(adr),
		LedgerSeq: landed.Seq,
		LandedOn:  landed.ToStep,
	}, nil
}

// Get retrieves an amendment by ID.
func (s *AmendmentServiceImpl) Get(ctx context.Context, id string) (*primary.Amendment, error) {
	record, err := s.amendments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return recordToAmendment(record), nil
}

// List retrieves amendments, optionally filtered by status.
func (s *AmendmentServiceImpl) List(ctx context.Context, status string) ([]*primary.Amendment, error) {
	records, err := s.amendments.List(ctx, secondary.AmendmentFilters{Status: status})
	if err != nil {
		return nil, err
	}
	result := make([]*primary.Amendment, 0, len(records))
	for _, r := range records {
		result = append(result, recordToAmendment(r))
	}
	return result, nil
}

// ListADRs retrieves all architectural decision records.
func (s *AmendmentServiceImpl) ListADRs(ctx context.Context) ([]*primary.ADR, error) {
	records, err := s.adrs.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]*primary.ADR, 0, len(records))
	for _, r := range records {
		result = append(result, recordToADR(r))
	}
	return result, nil
}

// Ensure AmendmentServiceImpl implements the interface
var _ primary.AmendmentService = (*AmendmentServiceImpl)(nil)
