// Package evidence contains collectors over the external signal sources:
// the test runner, coverage tool, and mutation-score tool. Collectors
// never interpret a tool failure as a condition outcome; any breakdown
// surfaces as a *secondary.CollectionError so the gate can report
// evidence-unavailable instead of a bogus pass or fail.
package evidence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/wicket/internal/ports/secondary"
)

// Report is the JSON document the external tooling emits. A CI job or a
// local make target aggregates test, coverage, and mutation results into
// this shape.
type Report struct {
	TestsTotal    int     `json:"tests_total"`
	TestsFailed   int     `json:"tests_failed"`
	Coverage      float64 `json:"coverage"`
	MutationScore float64 `json:"mutation_score"`
}

// parseReport decodes a JSON report into an evidence record stamped with
// the collection time.
func parseReport(data []byte, now time.Time) (*secondary.EvidenceRecord, error) {
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, &secondary.CollectionError{Detail: "unparseable evidence report", Err: err}
	}
	if report.TestsFailed < 0 || report.TestsTotal < 0 || report.TestsFailed > report.TestsTotal {
		return nil, &secondary.CollectionError{
			Detail: fmt.Sprintf("implausible test counts in report (%d failed of %d)", report.TestsFailed, report.TestsTotal),
		}
	}
	return &secondary.EvidenceRecord{
		TestsTotal:    report.TestsTotal,
		TestsFailed:   report.TestsFailed,
		Coverage:      report.Coverage,
		MutationScore: report.MutationScore,
		CollectedAt:   now.UTC().Format(time.RFC3339),
	}, nil
}
