package evidence

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/wicket/internal/ports/secondary"
)

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func TestParseReport(t *testing.T) {
	record, err := parseReport([]byte(`{"tests_total":42,"tests_failed":1,"coverage":87.5,"mutation_score":71.2}`), fixedNow)
	if err != nil {
		t.Fatalf("parseReport() error = %v", err)
	}
	if record.TestsTotal != 42 || record.TestsFailed != 1 {
		t.Errorf("counts = %d/%d, want 42/1", record.TestsTotal, record.TestsFailed)
	}
	if record.Coverage != 87.5 || record.MutationScore != 71.2 {
		t.Errorf("coverage = %v, mutation = %v", record.Coverage, record.MutationScore)
	}
	if record.CollectedAt != "2026-03-14T12:00:00Z" {
		t.Errorf("CollectedAt = %q", record.CollectedAt)
	}
}

func TestParseReportFailures(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "all tests passed!"},
		{"negative failures", `{"tests_total":10,"tests_failed":-1}`},
		{"more failures than tests", `{"tests_total":3,"tests_failed":5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseReport([]byte(tt.data), fixedNow)
			var collErr *secondary.CollectionError
			if !errors.As(err, &collErr) {
				t.Errorf("parseReport() error = %v, want *CollectionError", err)
			}
		})
	}
}

func TestFileCollector(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")
	if err := os.WriteFile(path, []byte(`{"tests_total":10,"tests_failed":0,"coverage":92.0}`), 0644); err != nil {
		t.Fatalf("failed to write report: %v", err)
	}

	record, err := NewFileCollector(path).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if record.TestsTotal != 10 || record.Coverage != 92.0 {
		t.Errorf("record = %+v", record)
	}
}

func TestFileCollectorMissingReport(t *testing.T) {
	collector := NewFileCollector(filepath.Join(t.TempDir(), "missing.json"))

	_, err := collector.Collect(context.Background())
	var collErr *secondary.CollectionError
	if !errors.As(err, &collErr) {
		t.Fatalf("Collect() error = %v, want *CollectionError", err)
	}
	if collErr.Detail != "evidence report not readable" {
		t.Errorf("Detail = %q", collErr.Detail)
	}
}

func TestCommandCollector(t *testing.T) {
	collector := NewCommandCollector([]string{"echo", `{"tests_total":5,"tests_failed":1}`}, time.Minute)

	record, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if record.TestsTotal != 5 || record.TestsFailed != 1 {
		t.Errorf("record = %+v", record)
	}
}

func TestCommandCollectorFailures(t *testing.T) {
	tests := []struct {
		name string
		argv []string
	}{
		{"no command configured", nil},
		{"command fails", []string{"false"}},
		{"output is not a report", []string{"echo", "not json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCommandCollector(tt.argv, time.Minute).Collect(context.Background())
			var collErr *secondary.CollectionError
			if !errors.As(err, &collErr) {
				t.Errorf("Collect() error = %v, want *CollectionError", err)
			}
		})
	}
}
