package gate

import (
	"testing"

	"github.com/example/wicket/internal/core/graph"
)

const headHash = "b3:aaaa"

func testGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.New("SPEC_DRAFT", []graph.Step{
		{
			ID:               "SPEC_DRAFT",
			Next:             []graph.StepID{"E2E_RED"},
			AmendmentLanding: "SPEC_DRAFT",
			ExitConditions: []graph.Condition{
				{Name: "spec-hash-present", Kind: graph.CondSpecHashPresent, CommitBlocking: true},
			},
		},
		{
			ID:               "E2E_RED",
			Next:             []graph.StepID{"DOMAIN_LOGIC"},
			Regress:          []graph.StepID{"SPEC_DRAFT"},
			AmendmentLanding: "SPEC_DRAFT",
			ExitConditions: []graph.Condition{
				{Name: "missing-implementation-required", Kind: graph.CondSingleRedTest, CommitBlocking: true},
			},
		},
		{
			ID:               "DOMAIN_LOGIC",
			Next:             []graph.StepID{"DONE"},
			Regress:          []graph.StepID{"SPEC_DRAFT"},
			AmendmentLanding: "SPEC_DRAFT",
			ExitConditions: []graph.Condition{
				{Name: "all-green", Kind: graph.CondTestsGreen, CommitBlocking: true},
				{Name: "coverage-floor", Kind: graph.CondCoverageMin, Threshold: 80, CommitBlocking: true},
				{Name: "mutation-floor", Kind: graph.CondMutationMin, Threshold: 70},
				{Name: "spec-hash-current", Kind: graph.CondSpecHashCurrent, CommitBlocking: true},
			},
		},
		{ID: "DONE"},
	})
	if err != nil {
		t.Fatalf("failed to build test graph: %v", err)
	}
	return g
}

func TestEvaluateAdvance(t *testing.T) {
	g := testGraph(t)

	tests := []struct {
		name          string
		current       graph.StepID
		target        graph.StepID
		evidence      Evidence
		wantAdmitted  bool
		wantKind      RejectKind
		wantCondition string
	}{
		{
			name:         "spec draft with declared hash is admitted",
			current:      "SPEC_DRAFT",
			target:       "E2E_RED",
			evidence:     Evidence{SpecHash: "abc123"},
			wantAdmitted: true,
		},
		{
			name:          "spec draft without hash is rejected",
			current:       "SPEC_DRAFT",
			target:        "E2E_RED",
			evidence:      Evidence{},
			wantKind:      RejectConditionFailed,
			wantCondition: "spec-hash-present",
		},
		{
			name:     "unknown current step",
			current:  "NOPE",
			target:   "E2E_RED",
			wantKind: RejectUnknownStep,
		},
		{
			name:     "unknown target step",
			current:  "SPEC_DRAFT",
			target:   "NOPE",
			wantKind: RejectUnknownStep,
		},
		{
			name:     "skipping a step is illegal",
			current:  "SPEC_DRAFT",
			target:   "DOMAIN_LOGIC",
			evidence: Evidence{SpecHash: headHash},
			wantKind: RejectIllegalTransition,
		},
		{
			name:     "leaving the terminal step is illegal",
			current:  "DONE",
			target:   "SPEC_DRAFT",
			wantKind: RejectIllegalTransition,
		},
		{
			name:          "red-first step with zero failing tests is rejected",
			current:       "E2E_RED",
			target:        "DOMAIN_LOGIC",
			evidence:      Evidence{TestsTotal: 10, TestsFailed: 0, SpecHash: headHash},
			wantKind:      RejectConditionFailed,
			wantCondition: "missing-implementation-required",
		},
		{
			name:         "red-first step with exactly one failing test is admitted",
			current:      "E2E_RED",
			target:       "DOMAIN_LOGIC",
			evidence:     Evidence{TestsTotal: 10, TestsFailed: 1, SpecHash: headHash},
			wantAdmitted: true,
		},
		{
			name:         "regress edge is admitted when conditions hold",
			current:      "E2E_RED",
			target:       "SPEC_DRAFT",
			evidence:     Evidence{TestsTotal: 10, TestsFailed: 1, SpecHash: headHash},
			wantAdmitted: true,
		},
		{
			name:         "all conditions pass",
			current:      "DOMAIN_LOGIC",
			target:       "DONE",
			evidence:     Evidence{TestsTotal: 50, Coverage: 91.5, MutationScore: 75, SpecHash: headHash},
			wantAdmitted: true,
		},
		{
			name:          "first failing condition names the rejection",
			current:       "DOMAIN_LOGIC",
			target:        "DONE",
			evidence:      Evidence{TestsTotal: 50, TestsFailed: 3, Coverage: 10, SpecHash: "b3:other"},
			wantKind:      RejectConditionFailed,
			wantCondition: "all-green",
		},
		{
			name:          "advancement-only condition still gates advancement",
			current:       "DOMAIN_LOGIC",
			target:        "DONE",
			evidence:      Evidence{TestsTotal: 50, Coverage: 91.5, MutationScore: 69.9, SpecHash: headHash},
			wantKind:      RejectConditionFailed,
			wantCondition: "mutation-floor",
		},
		{
			name:          "stale spec hash fails the currency condition",
			current:       "DOMAIN_LOGIC",
			target:        "DONE",
			evidence:      Evidence{TestsTotal: 50, Coverage: 91.5, MutationScore: 75, SpecHash: "b3:other"},
			wantKind:      RejectConditionFailed,
			wantCondition: "spec-hash-current",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := EvaluateAdvance(AdvanceContext{
				Graph:          g,
				Current:        tt.current,
				Target:         tt.target,
				LedgerSpecHash: headHash,
				Evidence:       tt.evidence,
			})

			if decision.Admitted != tt.wantAdmitted {
				t.Errorf("EvaluateAdvance() Admitted = %v, want %v (reason: %s)",
					decision.Admitted, tt.wantAdmitted, decision.Reason)
			}
			if decision.Kind != tt.wantKind {
				t.Errorf("EvaluateAdvance() Kind = %q, want %q", decision.Kind, tt.wantKind)
			}
			if decision.FailingCondition != tt.wantCondition {
				t.Errorf("EvaluateAdvance() FailingCondition = %q, want %q",
					decision.FailingCondition, tt.wantCondition)
			}
			if !decision.Admitted && decision.Reason == "" {
				t.Error("EvaluateAdvance() rejection carries no reason")
			}
		})
	}
}

// Safety property: no evidence can admit a transition that is not an edge
// of the graph.
func TestEvaluateAdvanceNeverAdmitsNonEdges(t *testing.T) {
	g := testGraph(t)
	rich := Evidence{TestsTotal: 100, TestsFailed: 1, Coverage: 100, MutationScore: 100, SpecHash: headHash}

	for _, from := range g.Steps() {
		for _, to := range g.Steps() {
			if g.TransitionAllowed(from.ID, to.ID) {
				continue
			}
			for _, ev := range []Evidence{{}, rich} {
				decision := EvaluateAdvance(AdvanceContext{
					Graph:          g,
					Current:        from.ID,
					Target:         to.ID,
					LedgerSpecHash: headHash,
					Evidence:       ev,
				})
				if decision.Admitted {
					t.Errorf("EvaluateAdvance admitted non-edge %s -> %s", from.ID, to.ID)
				}
			}
		}
	}
}

func TestEvaluateCommit(t *testing.T) {
	g := testGraph(t)
	goodEvidence := Evidence{TestsTotal: 50, Coverage: 91.5, SpecHash: headHash}

	tests := []struct {
		name          string
		current       graph.StepID
		metadata      CommitMetadata
		evidence      Evidence
		wantAdmitted  bool
		wantKind      RejectKind
		wantCondition string
	}{
		{
			name:         "matching metadata with passing conditions is admitted",
			current:      "DOMAIN_LOGIC",
			metadata:     CommitMetadata{Step: "DOMAIN_LOGIC", SpecHash: headHash},
			evidence:     goodEvidence,
			wantAdmitted: true,
		},
		{
			name:     "declared step differs from current step",
			current:  "DOMAIN_LOGIC",
			metadata: CommitMetadata{Step: "SCAFFOLD", SpecHash: headHash},
			evidence: goodEvidence,
			wantKind: RejectStepMismatch,
		},
		{
			name:     "declared spec hash is stale",
			current:  "DOMAIN_LOGIC",
			metadata: CommitMetadata{Step: "DOMAIN_LOGIC", SpecHash: "b3:old"},
			evidence: goodEvidence,
			wantKind: RejectStaleSpecHash,
		},
		{
			name:     "unknown current step",
			current:  "NOPE",
			metadata: CommitMetadata{Step: "NOPE", SpecHash: headHash},
			wantKind: RejectUnknownStep,
		},
		{
			name:          "commit-blocking condition fails",
			current:       "DOMAIN_LOGIC",
			metadata:      CommitMetadata{Step: "DOMAIN_LOGIC", SpecHash: headHash},
			evidence:      Evidence{TestsTotal: 50, TestsFailed: 2, Coverage: 91.5, SpecHash: headHash},
			wantKind:      RejectConditionFailed,
			wantCondition: "all-green",
		},
		{
			name:    "advancement-only condition does not block commits",
			current: "DOMAIN_LOGIC",
			// mutation-floor (70) fails on this evidence but is not marked
			// commit blocking.
			metadata:     CommitMetadata{Step: "DOMAIN_LOGIC", SpecHash: headHash},
			evidence:     Evidence{TestsTotal: 50, Coverage: 91.5, MutationScore: 10, SpecHash: headHash},
			wantAdmitted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := EvaluateCommit(CommitContext{
				Graph:          g,
				Current:        tt.current,
				LedgerSpecHash: headHash,
				Metadata:       tt.metadata,
				Evidence:       tt.evidence,
			})

			if decision.Admitted != tt.wantAdmitted {
				t.Errorf("EvaluateCommit() Admitted = %v, want %v (reason: %s)",
					decision.Admitted, tt.wantAdmitted, decision.Reason)
			}
			if decision.Kind != tt.wantKind {
				t.Errorf("EvaluateCommit() Kind = %q, want %q", decision.Kind, tt.wantKind)
			}
			if decision.FailingCondition != tt.wantCondition {
				t.Errorf("EvaluateCommit() FailingCondition = %q, want %q",
					decision.FailingCondition, tt.wantCondition)
			}
		})
	}
}
