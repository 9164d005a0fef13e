// Package graph defines the playbook step graph: the ordered set of
// development steps, their exit conditions, and the transitions allowed
// between them. The graph is loaded once at process start and treated as
// immutable for the process lifetime; changing the playbook requires a
// restart so that no evaluation ever sees two different graphs.
package graph

import (
	"errors"
	"fmt"
)

// ErrUnknownStep is returned when a step id is not registered in the graph.
var ErrUnknownStep = errors.New("unknown step")

// StepID identifies one playbook step (e.g. "SPEC_DRAFT", "E2E_RED").
type StepID string

// ConditionKind names an evaluable predicate over an evidence snapshot.
type ConditionKind string

// Supported condition kinds.
const (
	// CondTestsGreen holds when the test run reports zero failures.
	CondTestsGreen ConditionKind = "tests-green"
	// CondSingleRedTest holds when exactly one test is failing. Used by
	// red-first steps where the failing e2e test is the exit evidence.
	CondSingleRedTest ConditionKind = "single-red-test"
	// CondCoverageMin holds when coverage >= Threshold (percent).
	CondCoverageMin ConditionKind = "coverage-min"
	// CondMutationMin holds when the mutation score >= Threshold (percent).
	CondMutationMin ConditionKind = "mutation-min"
	// CondSpecHashPresent holds when the evidence declares any spec hash.
	CondSpecHashPresent ConditionKind = "spec-hash-present"
	// CondSpecHashCurrent holds when the declared spec hash matches the
	// ledger head's spec hash.
	CondSpecHashCurrent ConditionKind = "spec-hash-current"
)

// Condition is one named exit condition of a step. Conditions are evaluated
// in declaration order; the first failure names the rejection.
type Condition struct {
	Name           string        `yaml:"name"`
	Kind           ConditionKind `yaml:"kind"`
	Threshold      float64       `yaml:"threshold,omitempty"`
	CommitBlocking bool          `yaml:"commit_blocking,omitempty"`
}

// Step is one playbook phase. Forward edges (Next) drive normal
// advancement; Regress edges are the only permitted way back and exist for
// amendment-triggered restarts. AmendmentLanding, when set, names the step
// an applied spec amendment regresses to (it may be the step itself).
type Step struct {
	ID               StepID      `yaml:"id"`
	Next             []StepID    `yaml:"next,omitempty"`
	Regress          []StepID    `yaml:"regress,omitempty"`
	AmendmentLanding StepID      `yaml:"amendment_landing,omitempty"`
	ExitConditions   []Condition `yaml:"exit_conditions,omitempty"`
}

// CommitBlockingConditions returns the subset of exit conditions that gate
// individual commits, in declaration order.
func (s Step) CommitBlockingConditions() []Condition {
	var out []Condition
	for _, c := range s.ExitConditions {
		if c.CommitBlocking {
			out = append(out, c)
		}
	}
	return out
}

// Graph is an immutable step graph with one start step and one terminal
// step. Construct via New or Load; both validate.
type Graph struct {
	start StepID
	order []StepID
	steps map[StepID]Step
}

// New builds and validates a graph from a start step and step definitions.
func New(start StepID, steps []Step) (*Graph, error) {
	g := &Graph{
		start: start,
		steps: make(map[StepID]Step, len(steps)),
	}
	for _, s := range steps {
		if _, dup := g.steps[s.ID]; dup {
			return nil, fmt.Errorf("duplicate step id %s", s.ID)
		}
		g.steps[s.ID] = s
		g.order = append(g.order, s.ID)
	}
	if err := g.validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Start returns the designated start step.
func (g *Graph) Start() StepID {
	return g.start
}

// Terminal returns the designated terminal step (the one step with no
// outgoing edges).
func (g *Graph) Terminal() StepID {
	for _, id := range g.order {
		s := g.steps[id]
		if len(s.Next) == 0 && len(s.Regress) == 0 {
			return id
		}
	}
	return "" // unreachable after validation
}

// Step resolves a step definition, failing with ErrUnknownStep for
// unregistered ids.
func (g *Graph) Step(id StepID) (Step, error) {
	s, ok := g.steps[id]
	if !ok {
		return Step{}, fmt.Errorf("%w: %s", ErrUnknownStep, id)
	}
	return s, nil
}

// Steps returns all step definitions in declaration order.
func (g *Graph) Steps() []Step {
	out := make([]Step, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.steps[id])
	}
	return out
}

// TransitionAllowed reports whether to is reachable from from, through
// either a forward or a regress edge. Unknown steps are never reachable.
func (g *Graph) TransitionAllowed(from, to StepID) bool {
	s, ok := g.steps[from]
	if !ok {
		return false
	}
	if _, ok := g.steps[to]; !ok {
		return false
	}
	for _, n := range s.Next {
		if n == to {
			return true
		}
	}
	for _, r := range s.Regress {
		if r == to {
			return true
		}
	}
	return false
}

// validate enforces the structural invariants: the start step is
// registered, all edges resolve, exactly one terminal step exists, every
// non-terminal step has a forward edge, the forward-edge graph is acyclic
// (cycles are only permitted through explicit regress edges), amendment
// landings are reachable, and conditions are well formed.
func (g *Graph) validate() error {
	if len(g.order) == 0 {
		return fmt.Errorf("graph has no steps")
	}
	if _, ok := g.steps[g.start]; !ok {
		return fmt.Errorf("start step %s is not defined", g.start)
	}

	terminals := 0
	for _, id := range g.order {
		s := g.steps[id]
		for _, n := range s.Next {
			if _, ok := g.steps[n]; !ok {
				return fmt.Errorf("step %s: forward edge to undefined step %s", id, n)
			}
		}
		for _, r := range s.Regress {
			if _, ok := g.steps[r]; !ok {
				return fmt.Errorf("step %s: regress edge to undefined step %s", id, r)
			}
		}
		if len(s.Next) == 0 {
			if len(s.Regress) > 0 {
				return fmt.Errorf("step %s: terminal step cannot have regress edges", id)
			}
			terminals++
		}
		if s.AmendmentLanding != "" && !g.landingReachable(s) {
			return fmt.Errorf("step %s: amendment landing %s is not the step itself or one of its edges", id, s.AmendmentLanding)
		}
		if err := validateConditions(id, s.ExitConditions); err != nil {
			return err
		}
	}
	if terminals != 1 {
		return fmt.Errorf("graph must have exactly one terminal step, found %d", terminals)
	}

	if cycle := g.findForwardCycle(); cycle != "" {
		return fmt.Errorf("forward edges form a cycle through %s (cycles are only allowed via regress edges)", cycle)
	}
	return nil
}

func (g *Graph) landingReachable(s Step) bool {
	if s.AmendmentLanding == s.ID {
		return true
	}
	return g.TransitionAllowed(s.ID, s.AmendmentLanding)
}

func validateConditions(id StepID, conds []Condition) error {
	seen := make(map[string]bool, len(conds))
	for _, c := range conds {
		if c.Name == "" {
			return fmt.Errorf("step %s: exit condition with empty name", id)
		}
		if seen[c.Name] {
			return fmt.Errorf("step %s: duplicate exit condition name %q", id, c.Name)
		}
		seen[c.Name] = true
		switch c.Kind {
		case CondTestsGreen, CondSingleRedTest, CondSpecHashPresent, CondSpecHashCurrent:
			// no threshold
		case CondCoverageMin, CondMutationMin:
			if c.Threshold <= 0 {
				return fmt.Errorf("step %s: condition %q kind %s requires a positive threshold", id, c.Name, c.Kind)
			}
		default:
			return fmt.Errorf("step %s: condition %q has unknown kind %q", id, c.Name, c.Kind)
		}
	}
	return nil
}

// findForwardCycle returns a step on a forward-edge cycle, or "" if the
// forward graph is acyclic.
func (g *Graph) findForwardCycle() StepID {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[StepID]int, len(g.order))

	var visit func(id StepID) StepID
	visit = func(id StepID) StepID {
		switch state[id] {
		case visiting:
			return id
		case done:
			return ""
		}
		state[id] = visiting
		for _, n := range g.steps[id].Next {
			if hit := visit(n); hit != "" {
				return hit
			}
		}
		state[id] = done
		return ""
	}

	for _, id := range g.order {
		if hit := visit(id); hit != "" {
			return hit
		}
	}
	return ""
}
