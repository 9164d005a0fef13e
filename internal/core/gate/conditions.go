package gate

import (
	"fmt"

	"github.com/example/wicket/internal/core/graph"
)

// conditionHolds evaluates one exit condition against an evidence snapshot.
// ledgerSpecHash is the spec hash at the ledger head, needed by the
// hash-currency condition. The detail string explains a failure in terms of
// the observed evidence.
func conditionHolds(c graph.Condition, ev Evidence, ledgerSpecHash string) (bool, string) {
	switch c.Kind {
	case graph.CondTestsGreen:
		if ev.TestsFailed != 0 {
			return false, fmt.Sprintf("%d of %d tests failing", ev.TestsFailed, ev.TestsTotal)
		}
		return true, ""
	case graph.CondSingleRedTest:
		if ev.TestsFailed != 1 {
			return false, fmt.Sprintf("want exactly 1 failing test, have %d", ev.TestsFailed)
		}
		return true, ""
	case graph.CondCoverageMin:
		if ev.Coverage < c.Threshold {
			return false, fmt.Sprintf("coverage %.1f%% is below the required %.1f%%", ev.Coverage, c.Threshold)
		}
		return true, ""
	case graph.CondMutationMin:
		if ev.MutationScore < c.Threshold {
			return false, fmt.Sprintf("mutation score %.1f%% is below the required %.1f%%", ev.MutationScore, c.Threshold)
		}
		return true, ""
	case graph.CondSpecHashPresent:
		if ev.SpecHash == "" {
			return false, "no spec hash declared"
		}
		return true, ""
	case graph.CondSpecHashCurrent:
		if ev.SpecHash == "" {
			return false, "no spec hash declared"
		}
		if ev.SpecHash != ledgerSpecHash {
			return false, fmt.Sprintf("declared spec hash %s does not match ledger head %s", ev.SpecHash, ledgerSpecHash)
		}
		return true, ""
	default:
		// Graph validation rejects unknown kinds; an unknown kind here can
		// only mean the evaluation ran against an unvalidated graph.
		return false, fmt.Sprintf("unknown condition kind %q", c.Kind)
	}
}
