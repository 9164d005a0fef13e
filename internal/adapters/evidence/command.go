package evidence

import (
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/example/wicket/internal/ports/secondary"
)

// DefaultTimeout bounds a collection run when no timeout is configured.
const DefaultTimeout = 5 * time.Minute

// CommandCollector runs a configured report command and decodes its
// stdout as an evidence report. The command is expected to run the test
// suite (or read CI artifacts) and print a single JSON document.
type CommandCollector struct {
	Argv    []string
	Timeout time.Duration
	now     func() time.Time
}

// NewCommandCollector creates a collector that runs argv under timeout.
// A zero timeout falls back to DefaultTimeout.
func NewCommandCollector(argv []string, timeout time.Duration) *CommandCollector {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &CommandCollector{Argv: argv, Timeout: timeout, now: time.Now}
}

// Collect runs the report command once, bounded by the configured
// timeout. Timeouts, crashes, and unparseable output all surface as
// *secondary.CollectionError.
func (c *CommandCollector) Collect(ctx context.Context) (*secondary.EvidenceRecord, error) {
	if len(c.Argv) == 0 {
		return nil, &secondary.CollectionError{Detail: "no evidence command configured"}
	}

	runCtx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, c.Argv[0], c.Argv[1:]...)
	out, err := cmd.Output()
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return nil, &secondary.CollectionError{Detail: "evidence command timed out", Err: err}
		}
		return nil, &secondary.CollectionError{Detail: "evidence command failed", Err: err}
	}
	return parseReport(out, c.now())
}

// Ensure CommandCollector implements the interface
var _ secondary.EvidenceCollector = (*CommandCollector)(nil)
