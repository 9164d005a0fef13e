package app

import (
	"context"
	"encoding/json"
	"time"

	"github.com/example/wicket/internal/core/gate"
	"github.com/example/wicket/internal/ctxutil"
	"github.com/example/wicket/internal/ports/primary"
	"github.com/example/wicket/internal/ports/secondary"
)

// evidencePayload is the JSON shape of an evidence snapshot stored in a
// ledger entry's evidence column.
type evidencePayload struct {
	TestsTotal    int     `json:"tests_total"`
	TestsFailed   int     `json:"tests_failed"`
	Coverage      float64 `json:"coverage"`
	MutationScore float64 `json:"mutation_score"`
	SpecHash      string  `json:"spec_hash"`
	CollectedAt   string  `json:"collected_at"`
}

func marshalEvidence(snap *primary.EvidenceSnapshot) string {
	if snap == nil {
		return ""
	}
	data, err := json.Marshal(evidencePayload{
		TestsTotal:    snap.TestsTotal,
		TestsFailed:   snap.TestsFailed,
		Coverage:      snap.Coverage,
		MutationScore: snap.MutationScore,
		SpecHash:      snap.SpecHash,
		CollectedAt:   snap.CollectedAt,
	})
	if err != nil {
		return ""
	}
	return string(data)
}

func unmarshalEvidence(raw string) *primary.EvidenceSnapshot {
	if raw == "" {
		return nil
	}
	var payload evidencePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil
	}
	return &primary.EvidenceSnapshot{
		TestsTotal:    payload.TestsTotal,
		TestsFailed:   payload.TestsFailed,
		Coverage:      payload.Coverage,
		MutationScore: payload.MutationScore,
		SpecHash:      payload.SpecHash,
		CollectedAt:   payload.CollectedAt,
	}
}

// snapshotToEvidence converts a port snapshot into the pure evaluator's
// evidence type.
func snapshotToEvidence(snap *primary.EvidenceSnapshot) gate.Evidence {
	// Collectors stamp CollectedAt in RFC3339. A corrupt timestamp
	// degrades to the zero time; conditions read the measurements, not
	// the clock.
	collected, err := time.Parse(time.RFC3339, snap.CollectedAt)
	if err != nil {
		collected = time.Time{}
	}
	return gate.Evidence{
		TestsTotal:    snap.TestsTotal,
		TestsFailed:   snap.TestsFailed,
		Coverage:      snap.Coverage,
		MutationScore: snap.MutationScore,
		SpecHash:      snap.SpecHash,
		CollectedAt:   collected,
	}
}

func recordToEntry(r *secondary.LedgerEntryRecord) *primary.LedgerEntry {
	return &primary.LedgerEntry{
		Seq:              r.Seq,
		FromStep:         r.FromStep,
		ToStep:           r.ToStep,
		SpecHash:         r.SpecHash,
		Action:           r.Action,
		Outcome:          r.Outcome,
		RejectKind:       r.RejectKind,
		FailingCondition: r.FailingCondition,
		Reason:           r.Reason,
		AmendmentID:      r.AmendmentID,
		Actor:            r.Actor,
		Note:             r.Note,
		CreatedAt:        r.CreatedAt,
		Evidence:         unmarshalEvidence(r.EvidenceJSON),
	}
}

func recordToAmendment(r *secondary.AmendmentRecord) *primary.Amendment {
	return &primary.Amendment{
		ID:               r.ID,
		Reason:           r.Reason,
		PreviousSpecHash: r.PreviousSpecHash,
		ProposedSpecHash: r.ProposedSpecHash,
		Status:           r.Status,
		ReviewedBy:       r.ReviewedBy,
		Justification:    r.Justification,
		ADRID:            r.ADRID,
		Actor:            r.Actor,
		CreatedAt:        r.CreatedAt,
		DecidedAt:        r.DecidedAt,
		AppliedAt:        r.AppliedAt,
	}
}

func recordToADR(r *secondary.ADRRecord) *primary.ADR {
	return &primary.ADR{
		ID:          r.ID,
		AmendmentID: r.AmendmentID,
		Reason:      r.Reason,
		BeforeHash:  r.BeforeHash,
		AfterHash:   r.AfterHash,
		CreatedAt:   r.CreatedAt,
	}
}

// actorFrom resolves the acting identity from context. Entries always
// carry an actor; "unknown" is the last resort for callers that bypass
// the CLI's actor resolution.
func actorFrom(ctx context.Context) string {
	if actor := ctxutil.ActorFromContext(ctx); actor != "" {
		return actor
	}
	return "unknown"
}
