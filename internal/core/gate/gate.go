// Package gate contains the pure decision logic of the progress gate.
// Evaluations are pure functions of their inputs: no I/O, no hidden state,
// safe to call concurrently, and property-testable without a ledger.
package gate

import (
	"fmt"
	"time"

	"github.com/example/wicket/internal/core/graph"
)

// RejectKind is the machine-readable classification of a rejection.
type RejectKind string

// Rejection kinds. Every Reject decision carries exactly one.
const (
	RejectNone                RejectKind = ""
	RejectUnknownStep         RejectKind = "unknown-step"
	RejectIllegalTransition   RejectKind = "illegal-transition"
	RejectConditionFailed     RejectKind = "condition-failed"
	RejectStepMismatch        RejectKind = "step-mismatch"
	RejectStaleSpecHash       RejectKind = "stale-spec-hash"
	RejectEvidenceUnavailable RejectKind = "evidence-unavailable"
)

// Evidence is an immutable snapshot of externally observed facts. A new
// evaluation always re-collects; evidence is never cached across calls.
type Evidence struct {
	TestsTotal    int
	TestsFailed   int
	Coverage      float64
	MutationScore float64
	SpecHash      string
	CollectedAt   time.Time
}

// CommitMetadata is the declared metadata of a proposed commit.
type CommitMetadata struct {
	Step        graph.StepID
	SpecHash    string
	AmendmentID string
}

// Decision is the outcome of a gate evaluation. A rejection always names
// the specific failing condition or check, never a generic "blocked".
type Decision struct {
	Admitted         bool
	Kind             RejectKind
	FailingCondition string
	Reason           string
}

func admit() Decision {
	return Decision{Admitted: true}
}

func reject(kind RejectKind, condition, reason string) Decision {
	return Decision{Kind: kind, FailingCondition: condition, Reason: reason}
}

// AdvanceContext provides the inputs for evaluating a step advancement.
type AdvanceContext struct {
	Graph          *graph.Graph
	Current        graph.StepID
	Target         graph.StepID
	LedgerSpecHash string
	Evidence       Evidence
}

// EvaluateAdvance decides whether the current step may be left for the
// target step. Exit conditions are evaluated in declaration order and the
// first failure short-circuits: deterministic, reproducible diagnostics
// matter more than reporting every failure at once.
func EvaluateAdvance(ctx AdvanceContext) Decision {
	step, err := ctx.Graph.Step(ctx.Current)
	if err != nil {
		return reject(RejectUnknownStep, "", fmt.Sprintf("current step %s is not in the playbook", ctx.Current))
	}
	if _, err := ctx.Graph.Step(ctx.Target); err != nil {
		return reject(RejectUnknownStep, "", fmt.Sprintf("target step %s is not in the playbook", ctx.Target))
	}
	if !ctx.Graph.TransitionAllowed(ctx.Current, ctx.Target) {
		return reject(RejectIllegalTransition, "",
			fmt.Sprintf("transition %s -> %s is not an edge of the playbook", ctx.Current, ctx.Target))
	}

	for _, cond := range step.ExitConditions {
		ok, detail := conditionHolds(cond, ctx.Evidence, ctx.LedgerSpecHash)
		if !ok {
			return reject(RejectConditionFailed, cond.Name, detail)
		}
	}
	return admit()
}

// CommitContext provides the inputs for evaluating a proposed commit.
type CommitContext struct {
	Graph          *graph.Graph
	Current        graph.StepID
	LedgerSpecHash string
	Metadata       CommitMetadata
	Evidence       Evidence
}

// EvaluateCommit decides whether a commit with the declared metadata may
// land at the current step. Only the commit-blocking subset of the step's
// exit conditions is enforced: some conditions gate step advancement
// without blocking every individual commit.
func EvaluateCommit(ctx CommitContext) Decision {
	step, err := ctx.Graph.Step(ctx.Current)
	if err != nil {
		return reject(RejectUnknownStep, "", fmt.Sprintf("current step %s is not in the playbook", ctx.Current))
	}
	if ctx.Metadata.Step != ctx.Current {
		return reject(RejectStepMismatch, "",
			fmt.Sprintf("commit declares step %s but the current step is %s", ctx.Metadata.Step, ctx.Current))
	}
	if ctx.Metadata.SpecHash != ctx.LedgerSpecHash {
		return reject(RejectStaleSpecHash, "",
			fmt.Sprintf("commit declares spec hash %s but the ledger head is %s", ctx.Metadata.SpecHash, ctx.LedgerSpecHash))
	}

	for _, cond := range step.CommitBlockingConditions() {
		ok, detail := conditionHolds(cond, ctx.Evidence, ctx.LedgerSpecHash)
		if !ok {
			return reject(RejectConditionFailed, cond.Name, detail)
		}
	}
	return admit()
}
