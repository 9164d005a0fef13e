package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/wicket/internal/config"
	"github.com/example/wicket/internal/core/commitmsg"
	"github.com/example/wicket/internal/core/gate"
	"github.com/example/wicket/internal/core/graph"
	"github.com/example/wicket/internal/ports/primary"
	"github.com/example/wicket/internal/ports/secondary"
)

// GateServiceImpl implements the GateService interface. The service is
// thin glue: evidence collection runs outside the ledger lock (it may be
// slow), while the pure evaluation and the append run inside it so no two
// callers can both advance from the same position.
type GateServiceImpl struct {
	graph      *graph.Graph
	cfg        *config.Config
	root       string
	writer     *LedgerWriter
	ledger     secondary.LedgerRepository
	amendments secondary.AmendmentRepository
	collector  secondary.EvidenceCollector
	hasher     secondary.SpecHasher
	commits    secondary.CommitReader
}

// NewGateService creates a new GateService with injected dependencies.
func NewGateService(
	g *graph.Graph,
	cfg *config.Config,
	root string,
	writer *LedgerWriter,
	ledger secondary.LedgerRepository,
	amendments secondary.AmendmentRepository,
	collector secondary.EvidenceCollector,
	hasher secondary.SpecHasher,
	commits secondary.CommitReader,
) *GateServiceImpl {
	return &GateServiceImpl{
		graph:      g,
		cfg:        cfg,
		root:       root,
		writer:     writer,
		ledger:     ledger,
		amendments: amendments,
		collector:  collector,
		hasher:     hasher,
		commits:    commits,
	}
}

// position is the gate's view of "where are we now", derived from the
// ledger head. An empty ledger positions the playbook at the start step
// with no governing spec hash yet.
type position struct {
	step        graph.StepID
	specHash    string
	headSeq     int64
	amendmentID string
	initialized bool
}

func positionFrom(g *graph.Graph, head *secondary.LedgerEntryRecord) position {
	if head == nil {
		return position{step: g.Start()}
	}
	return position{
		step:        graph.StepID(head.ToStep),
		specHash:    head.SpecHash,
		headSeq:     head.Seq,
		amendmentID: head.AmendmentID,
		initialized: true,
	}
}

// Status reports the current playbook position and recent activity.
func (s *GateServiceImpl) Status(ctx context.Context) (*primary.PlaybookStatus, error) {
	head, err := s.ledger.Head(ctx)
	if err != nil && !errors.Is(err, secondary.ErrEmptyLedger) {
		return nil, err
	}
	pos := positionFrom(s.graph, head)

	last, err := s.ledger.LastSeq(ctx)
	if err != nil {
		return nil, err
	}

	pending := 0
	for _, status := range []string{"proposed", "approved"} {
		records, err := s.amendments.List(ctx, secondary.AmendmentFilters{Status: status})
		if err != nil {
			return nil, fmt.Errorf("failed to count pending amendments: %w", err)
		}
		pending += len(records)
	}

	status := &primary.PlaybookStatus{
		Initialized:       pos.initialized,
		CurrentStep:       string(pos.step),
		Terminal:          pos.step == s.graph.Terminal(),
		SpecHash:          pos.specHash,
		HeadSeq:           pos.headSeq,
		LastSeq:           last,
		PendingAmendments: pending,
	}

	if last > 0 {
		from := last - 4
		if from < 1 {
			from = 1
		}
		records, err := s.ledger.History(ctx, from, 0)
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			status.RecentEntries = append(status.RecentEntries, recordToEntry(r))
		}
	}
	return status, nil
}

// Advance collects fresh evidence, evaluates the proposed transition, and
// records the attempt. A rejection is returned as a result, not an error;
// ErrOutOfOrderAppend surfaces as an error so the caller can re-read
// state and retry.
func (s *GateServiceImpl) Advance(ctx context.Context, req primary.AdvanceRequest) (*primary.GateResult, error) {
	if req.Target == "" {
		return nil, fmt.Errorf("target step is required")
	}
	actor := actorFrom(ctx)

	snap, collectErr := s.CollectEvidence(ctx)
	var unavailable *secondary.CollectionError
	if collectErr != nil && !errors.As(collectErr, &unavailable) {
		return nil, collectErr
	}

	var result *primary.GateResult
	entry, err := s.writer.Append(ctx, func(head *secondary.LedgerEntryRecord) (*secondary.LedgerEntryRecord, error) {
		pos := positionFrom(s.graph, head)

		if unavailable != nil {
			result = &primary.GateResult{
				RejectKind: string(gate.RejectEvidenceUnavailable),
				Reason:     unavailable.Detail,
				FromStep:   string(pos.step),
				ToStep:     req.Target,
				SpecHash:   pos.specHash,
			}
			if !s.cfg.RecordRejectionsEnabled() {
				return nil, nil
			}
			return &secondary.LedgerEntryRecord{
				FromStep:   string(pos.step),
				ToStep:     req.Target,
				SpecHash:   pos.specHash,
				Action:     secondary.ActionAdvance,
				Outcome:    secondary.OutcomeUnavailable,
				RejectKind: result.RejectKind,
				Reason:     result.Reason,
				Actor:      actor,
				Note:       req.Note,
			}, nil
		}

		decision := gate.EvaluateAdvance(gate.AdvanceContext{
			Graph:          s.graph,
			Current:        pos.step,
			Target:         graph.StepID(req.Target),
			LedgerSpecHash: pos.specHash,
			Evidence:       snapshotToEvidence(snap),
		})

		specHash := pos.specHash
		if decision.Admitted {
			// The freshly declared hash becomes the governing hash; on
			// the very first advance this seeds the spec-hash lineage.
			specHash = snap.SpecHash
		}
		result = &primary.GateResult{
			Admitted:         decision.Admitted,
			RejectKind:       string(decision.Kind),
			FailingCondition: decision.FailingCondition,
			Reason:           decision.Reason,
			FromStep:         string(pos.step),
			ToStep:           req.Target,
			SpecHash:         specHash,
			Evidence:         snap,
		}
		if !decision.Admitted && !s.cfg.RecordRejectionsEnabled() {
			return nil, nil
		}

		outcome := secondary.OutcomeAdmitted
		if !decision.Admitted {
			outcome = secondary.OutcomeRejected
		}
		return &secondary.LedgerEntryRecord{
			FromStep:         string(pos.step),
			ToStep:           req.Target,
			SpecHash:         specHash,
			Action:           secondary.ActionAdvance,
			Outcome:          outcome,
			RejectKind:       string(decision.Kind),
			FailingCondition: decision.FailingCondition,
			Reason:           decision.Reason,
			EvidenceJSON:     marshalEvidence(snap),
			Actor:            actor,
			Note:             req.Note,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	if entry != nil {
		result.Seq = entry.Seq
		result.Recorded = true
	}
	return result, nil
}

// CheckCommit validates a proposed commit. Structural metadata checks run
// before any evidence is collected, so malformed metadata never wastes a
// collection round-trip.
func (s *GateServiceImpl) CheckCommit(ctx context.Context, req primary.CommitCheckRequest) (*primary.GateResult, error) {
	message := req.Message
	if message == "" {
		var err error
		message, err = s.commits.HeadMessage(ctx, s.repoPath())
		if err != nil {
			return nil, err
		}
	}

	meta, err := commitmsg.Parse(message)
	if err != nil {
		return nil, err
	}

	head, err := s.ledger.Head(ctx)
	if err != nil {
		if errors.Is(err, secondary.ErrEmptyLedger) {
			return nil, fmt.Errorf("%w: cannot validate commits before the first admitted transition", err)
		}
		return nil, err
	}
	if head.AmendmentID != "" && meta.AmendmentID != head.AmendmentID {
		return nil, fmt.Errorf("%w: current step was reached via amendment %s and the commit must reference it",
			commitmsg.ErrMalformedMetadata, head.AmendmentID)
	}

	actor := actorFrom(ctx)
	snap, collectErr := s.CollectEvidence(ctx)
	var unavailable *secondary.CollectionError
	if collectErr != nil && !errors.As(collectErr, &unavailable) {
		return nil, collectErr
	}

	var result *primary.GateResult
	entry, err := s.writer.Append(ctx, func(head *secondary.LedgerEntryRecord) (*secondary.LedgerEntryRecord, error) {
		pos := positionFrom(s.graph, head)

		if unavailable != nil {
			result = &primary.GateResult{
				RejectKind: string(gate.RejectEvidenceUnavailable),
				Reason:     unavailable.Detail,
				FromStep:   string(pos.step),
				ToStep:     string(pos.step),
				SpecHash:   pos.specHash,
			}
			if !s.cfg.RecordRejectionsEnabled() {
				return nil, nil
			}
			return s.commitEntry(pos, secondary.OutcomeUnavailable, result, nil, actor, req.Note), nil
		}

		decision := gate.EvaluateCommit(gate.CommitContext{
			Graph:          s.graph,
			Current:        pos.step,
			LedgerSpecHash: pos.specHash,
			Metadata: gate.CommitMetadata{
				Step:        graph.StepID(meta.Step),
				SpecHash:    meta.SpecHash,
				AmendmentID: meta.AmendmentID,
			},
			Evidence: snapshotToEvidence(snap),
		})

		result = &primary.GateResult{
			Admitted:         decision.Admitted,
			RejectKind:       string(decision.Kind),
			FailingCondition: decision.FailingCondition,
			Reason:           decision.Reason,
			FromStep:         string(pos.step),
			ToStep:           string(pos.step),
			SpecHash:         pos.specHash,
			Evidence:         snap,
		}
		if !decision.Admitted && !s.cfg.RecordRejectionsEnabled() {
			return nil, nil
		}

		outcome := secondary.OutcomeAdmitted
		if !decision.Admitted {
			outcome = secondary.OutcomeRejected
		}
		return s.commitEntry(pos, outcome, result, snap, actor, req.Note), nil
	})
	if err != nil {
		return nil, err
	}
	if entry != nil {
		result.Seq = entry.Seq
		result.Recorded = true
	}
	return result, nil
}

// commitEntry builds the audit entry for a commit check. Commit entries
// never move the step; an admitted one becomes the new head at the same
// position, so the amendment lineage is carried forward to keep the
// reference requirement alive until the step actually changes.
func (s *GateServiceImpl) commitEntry(pos position, outcome string, result *primary.GateResult, snap *primary.EvidenceSnapshot, actor, note string) *secondary.LedgerEntryRecord {
	return &secondary.LedgerEntryRecord{
		FromStep:         string(pos.step),
		ToStep:           string(pos.step),
		SpecHash:         pos.specHash,
		Action:           secondary.ActionCommit,
		Outcome:          outcome,
		RejectKind:       result.RejectKind,
		FailingCondition: result.FailingCondition,
		Reason:           result.Reason,
		EvidenceJSON:     marshalEvidence(snap),
		AmendmentID:      pos.amendmentID,
		Actor:            actor,
		Note:             note,
	}
}

// CollectEvidence gathers a fresh snapshot from the collector and attaches
// the current hash of the governing spec document. A missing spec document
// is not a collection failure: it simply declares no hash, which the
// spec-hash conditions then reject on their own terms.
func (s *GateServiceImpl) CollectEvidence(ctx context.Context) (*primary.EvidenceSnapshot, error) {
	record, err := s.collector.Collect(ctx)
	if err != nil {
		return nil, err
	}

	specHash, err := s.hashSpec()
	if err != nil {
		return nil, &secondary.CollectionError{Detail: "spec document not readable", Err: err}
	}

	return &primary.EvidenceSnapshot{
		TestsTotal:    record.TestsTotal,
		TestsFailed:   record.TestsFailed,
		Coverage:      record.Coverage,
		MutationScore: record.MutationScore,
		SpecHash:      specHash,
		CollectedAt:   record.CollectedAt,
	}, nil
}

// Annotate appends a pure annotation entry at the current position. It
// consumes a sequence number but never moves the head.
func (s *GateServiceImpl) Annotate(ctx context.Context, note string) (*primary.LedgerEntry, error) {
	if strings.TrimSpace(note) == "" {
		return nil, fmt.Errorf("note cannot be empty")
	}
	actor := actorFrom(ctx)

	entry, err := s.writer.Append(ctx, func(head *secondary.LedgerEntryRecord) (*secondary.LedgerEntryRecord, error) {
		pos := positionFrom(s.graph, head)
		return &secondary.LedgerEntryRecord{
			FromStep: string(pos.step),
			ToStep:   string(pos.step),
			SpecHash: pos.specHash,
			Action:   secondary.ActionNote,
			Outcome:  secondary.OutcomeAnnotated,
			Actor:    actor,
			Note:     note,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return recordToEntry(entry), nil
}

func (s *GateServiceImpl) specPath() string {
	if filepath.IsAbs(s.cfg.SpecPath) {
		return s.cfg.SpecPath
	}
	return filepath.Join(s.root, s.cfg.SpecPath)
}

func (s *GateServiceImpl) repoPath() string {
	if s.cfg.RepoPath == "" {
		return s.root
	}
	if filepath.IsAbs(s.cfg.RepoPath) {
		return s.cfg.RepoPath
	}
	return filepath.Join(s.root, s.cfg.RepoPath)
}

func (s *GateServiceImpl) hashSpec() (string, error) {
	path := s.specPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", nil
	}
	return s.hasher.HashFile(path)
}

// Ensure GateServiceImpl implements the interface
var _ primary.GateService = (*GateServiceImpl)(nil)
