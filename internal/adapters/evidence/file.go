package evidence

import (
	"context"
	"os"
	"time"

	"github.com/example/wicket/internal/ports/secondary"
)

// FileCollector reads an evidence report from a file, typically a CI
// artifact dropped next to the workspace.
type FileCollector struct {
	Path string
	now  func() time.Time
}

// NewFileCollector creates a collector reading the report at path.
func NewFileCollector(path string) *FileCollector {
	return &FileCollector{Path: path, now: time.Now}
}

// Collect reads and decodes the report file.
func (c *FileCollector) Collect(ctx context.Context) (*secondary.EvidenceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, &secondary.CollectionError{Detail: "collection cancelled", Err: err}
	}
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, &secondary.CollectionError{Detail: "evidence report not readable", Err: err}
	}
	return parseReport(data, c.now())
}

// Ensure FileCollector implements the interface
var _ secondary.EvidenceCollector = (*FileCollector)(nil)
