package graph

import (
	"errors"
	"strings"
	"testing"
)

func testSteps() []Step {
	return []Step{
		{
			ID:               "SPEC_DRAFT",
			Next:             []StepID{"E2E_RED"},
			AmendmentLanding: "SPEC_DRAFT",
			ExitConditions: []Condition{
				{Name: "spec-hash-present", Kind: CondSpecHashPresent, CommitBlocking: true},
			},
		},
		{
			ID:               "E2E_RED",
			Next:             []StepID{"BUILD"},
			Regress:          []StepID{"SPEC_DRAFT"},
			AmendmentLanding: "SPEC_DRAFT",
			ExitConditions: []Condition{
				{Name: "one-red-test", Kind: CondSingleRedTest, CommitBlocking: true},
			},
		},
		{
			ID:               "BUILD",
			Next:             []StepID{"DONE"},
			Regress:          []StepID{"SPEC_DRAFT"},
			AmendmentLanding: "SPEC_DRAFT",
			ExitConditions: []Condition{
				{Name: "all-green", Kind: CondTestsGreen, CommitBlocking: true},
				{Name: "coverage-floor", Kind: CondCoverageMin, Threshold: 80},
			},
		},
		{ID: "DONE"},
	}
}

func mustGraph(t *testing.T) *Graph {
	t.Helper()
	g, err := New("SPEC_DRAFT", testSteps())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return g
}

func TestNewValidGraph(t *testing.T) {
	g := mustGraph(t)

	if g.Start() != "SPEC_DRAFT" {
		t.Errorf("Start() = %s, want SPEC_DRAFT", g.Start())
	}
	if g.Terminal() != "DONE" {
		t.Errorf("Terminal() = %s, want DONE", g.Terminal())
	}
	if len(g.Steps()) != 4 {
		t.Errorf("Steps() returned %d steps, want 4", len(g.Steps()))
	}
}

func TestNewRejectsInvalidGraphs(t *testing.T) {
	tests := []struct {
		name    string
		start   StepID
		steps   []Step
		wantErr string
	}{
		{
			name:    "no steps",
			start:   "A",
			steps:   nil,
			wantErr: "no steps",
		},
		{
			name:    "undefined start",
			start:   "MISSING",
			steps:   []Step{{ID: "A"}},
			wantErr: "start step MISSING is not defined",
		},
		{
			name:  "duplicate step id",
			start: "A",
			steps: []Step{
				{ID: "A", Next: []StepID{"A"}},
				{ID: "A"},
			},
			wantErr: "duplicate step id A",
		},
		{
			name:  "forward edge to undefined step",
			start: "A",
			steps: []Step{
				{ID: "A", Next: []StepID{"MISSING"}},
			},
			wantErr: "forward edge to undefined step MISSING",
		},
		{
			name:  "regress edge to undefined step",
			start: "A",
			steps: []Step{
				{ID: "A", Next: []StepID{"B"}, Regress: []StepID{"MISSING"}},
				{ID: "B"},
			},
			wantErr: "regress edge to undefined step MISSING",
		},
		{
			name:  "two terminal steps",
			start: "A",
			steps: []Step{
				{ID: "A", Next: []StepID{"B", "C"}},
				{ID: "B"},
				{ID: "C"},
			},
			wantErr: "exactly one terminal step, found 2",
		},
		{
			name:  "no terminal step",
			start: "A",
			steps: []Step{
				{ID: "A", Next: []StepID{"B"}},
				{ID: "B", Next: []StepID{"A"}},
			},
			wantErr: "exactly one terminal step, found 0",
		},
		{
			name:  "forward cycle",
			start: "A",
			steps: []Step{
				{ID: "A", Next: []StepID{"B"}},
				{ID: "B", Next: []StepID{"A", "C"}},
				{ID: "C"},
			},
			wantErr: "forward edges form a cycle",
		},
		{
			name:  "terminal step with regress edges",
			start: "A",
			steps: []Step{
				{ID: "A", Next: []StepID{"B"}},
				{ID: "B", Regress: []StepID{"A"}},
			},
			wantErr: "terminal step cannot have regress edges",
		},
		{
			name:  "unreachable amendment landing",
			start: "A",
			steps: []Step{
				{ID: "A", Next: []StepID{"B"}},
				{ID: "B", Next: []StepID{"C"}, AmendmentLanding: "A"},
				{ID: "C"},
			},
			wantErr: "amendment landing A is not the step itself or one of its edges",
		},
		{
			name:  "condition with empty name",
			start: "A",
			steps: []Step{
				{ID: "A", Next: []StepID{"B"}, ExitConditions: []Condition{{Kind: CondTestsGreen}}},
				{ID: "B"},
			},
			wantErr: "exit condition with empty name",
		},
		{
			name:  "duplicate condition name",
			start: "A",
			steps: []Step{
				{ID: "A", Next: []StepID{"B"}, ExitConditions: []Condition{
					{Name: "green", Kind: CondTestsGreen},
					{Name: "green", Kind: CondTestsGreen},
				}},
				{ID: "B"},
			},
			wantErr: `duplicate exit condition name "green"`,
		},
		{
			name:  "threshold condition without threshold",
			start: "A",
			steps: []Step{
				{ID: "A", Next: []StepID{"B"}, ExitConditions: []Condition{
					{Name: "coverage", Kind: CondCoverageMin},
				}},
				{ID: "B"},
			},
			wantErr: "requires a positive threshold",
		},
		{
			name:  "unknown condition kind",
			start: "A",
			steps: []Step{
				{ID: "A", Next: []StepID{"B"}, ExitConditions: []Condition{
					{Name: "vibes", Kind: "vibes-good"},
				}},
				{ID: "B"},
			},
			wantErr: `unknown kind "vibes-good"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.start, tt.steps)
			if err == nil {
				t.Fatalf("New() error = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("New() error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestRegressCycleIsAllowed(t *testing.T) {
	// A -> B with a regress edge back is a cycle, but only through the
	// regress edge, so it must validate.
	_, err := New("A", []Step{
		{ID: "A", Next: []StepID{"B"}},
		{ID: "B", Next: []StepID{"C"}, Regress: []StepID{"A"}},
		{ID: "C"},
	})
	if err != nil {
		t.Errorf("New() error = %v, want nil", err)
	}
}

func TestStepUnknownID(t *testing.T) {
	g := mustGraph(t)

	_, err := g.Step("NOPE")
	if !errors.Is(err, ErrUnknownStep) {
		t.Errorf("Step(NOPE) error = %v, want ErrUnknownStep", err)
	}
}

func TestTransitionAllowed(t *testing.T) {
	g := mustGraph(t)

	tests := []struct {
		name string
		from StepID
		to   StepID
		want bool
	}{
		{"forward edge", "SPEC_DRAFT", "E2E_RED", true},
		{"regress edge", "E2E_RED", "SPEC_DRAFT", true},
		{"skipping a step", "SPEC_DRAFT", "BUILD", false},
		{"backwards without regress edge", "BUILD", "E2E_RED", false},
		{"self transition without edge", "BUILD", "BUILD", false},
		{"unknown from", "NOPE", "SPEC_DRAFT", false},
		{"unknown to", "SPEC_DRAFT", "NOPE", false},
		{"out of terminal", "DONE", "SPEC_DRAFT", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.TransitionAllowed(tt.from, tt.to); got != tt.want {
				t.Errorf("TransitionAllowed(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestCommitBlockingConditions(t *testing.T) {
	g := mustGraph(t)

	step, err := g.Step("BUILD")
	if err != nil {
		t.Fatalf("Step(BUILD) error = %v", err)
	}

	blocking := step.CommitBlockingConditions()
	if len(blocking) != 1 {
		t.Fatalf("CommitBlockingConditions() returned %d conditions, want 1", len(blocking))
	}
	if blocking[0].Name != "all-green" {
		t.Errorf("CommitBlockingConditions()[0].Name = %q, want all-green", blocking[0].Name)
	}
}
