// Package amendment contains the pure business logic for the spec
// amendment lifecycle. Guards are pure functions that evaluate
// preconditions without side effects.
package amendment

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotApproved is wrapped when an amendment is applied while not in the
// approved state.
var ErrNotApproved = errors.New("amendment not approved")

// Status is the lifecycle state of an amendment request.
type Status string

// Lifecycle states. Proposed -> {Approved, Rejected}; Approved -> Applied.
const (
	StatusProposed Status = "proposed"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusApplied  Status = "applied"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// ProposeContext provides context for proposal guards.
type ProposeContext struct {
	Reason           string
	ProposedSpecHash string
	PreviousSpecHash string
}

// CanPropose evaluates whether an amendment can be proposed.
// Rules:
// - Reason must not be empty
// - Proposed hash must not be empty
// - Proposed hash must differ from the previous hash
func CanPropose(ctx ProposeContext) GuardResult {
	if strings.TrimSpace(ctx.Reason) == "" {
		return GuardResult{
			Allowed: false,
			Reason:  "amendment reason cannot be empty",
		}
	}
	if ctx.ProposedSpecHash == "" {
		return GuardResult{
			Allowed: false,
			Reason:  "proposed spec hash cannot be empty",
		}
	}
	if ctx.ProposedSpecHash == ctx.PreviousSpecHash {
		return GuardResult{
			Allowed: false,
			Reason:  "proposed spec hash equals the current spec hash (nothing to amend)",
		}
	}
	return GuardResult{Allowed: true}
}

// DecideContext provides context for the reviewer decision guards.
type DecideContext struct {
	ID            string
	Current       Status
	Decision      Status // StatusApproved or StatusRejected
	Justification string
}

// CanDecide evaluates whether a reviewer decision can be recorded. This is
// the one mandatory human-in-the-loop point: there is no automatic
// approval path.
// Rules:
// - Amendment must be in proposed status
// - Decision must be approved or rejected
// - Justification must not be empty
func CanDecide(ctx DecideContext) GuardResult {
	if ctx.Current != StatusProposed {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("can only decide proposed amendments (amendment %s status: %s)", ctx.ID, ctx.Current),
		}
	}
	if ctx.Decision != StatusApproved && ctx.Decision != StatusRejected {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("decision must be %s or %s, got %q", StatusApproved, StatusRejected, ctx.Decision),
		}
	}
	if strings.TrimSpace(ctx.Justification) == "" {
		return GuardResult{
			Allowed: false,
			Reason:  "reviewer justification cannot be empty",
		}
	}
	return GuardResult{Allowed: true}
}

// ApplyContext provides context for the apply guards.
type ApplyContext struct {
	ID               string
	Current          Status
	LandingStep      string // amendment landing of the current playbook step
	LandingReachable bool   // landing is the current step or one of its edges
}

// CanApply evaluates whether an approved amendment can be applied.
// Rules:
// - Amendment must be in approved status
// - The current playbook step must designate an amendment landing step
// - The landing step must be reachable from the current step
func CanApply(ctx ApplyContext) GuardResult {
	if ctx.Current != StatusApproved {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("can only apply approved amendments (amendment %s status: %s)", ctx.ID, ctx.Current),
		}
	}
	if ctx.LandingStep == "" {
		return GuardResult{
			Allowed: false,
			Reason:  "current step does not accept amendments (no amendment landing step)",
		}
	}
	if !ctx.LandingReachable {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("amendment landing step %s is not reachable from the current step", ctx.LandingStep),
		}
	}
	return GuardResult{Allowed: true}
}
