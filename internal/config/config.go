// Package config reads and writes the wicket workspace configuration.
// A workspace is a repository root with a .wicket directory holding the
// config, the playbook, and the ledger database.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Workspace file layout under the repository root.
const (
	WorkspaceDirName = ".wicket"
	configFileName   = "config.json"
	dbFileName       = "wicket.db"
	playbookFileName = "playbook.yaml"
)

// CurrentVersion is written into freshly initialized configs.
const CurrentVersion = "1"

// Config represents the flat wicket workspace configuration.
type Config struct {
	Version string `json:"version"`
	// SpecPath is the governing specification document, relative to the
	// workspace root.
	SpecPath string `json:"spec_path"`
	// PlaybookPath is the step graph YAML, relative to the workspace root.
	PlaybookPath string `json:"playbook_path"`
	// RepoPath is the git repository checked by commit validation.
	// Defaults to the workspace root.
	RepoPath string `json:"repo_path,omitempty"`
	// EvidenceCommand, when set, is run to produce the JSON evidence
	// report on stdout. Takes precedence over EvidenceReport.
	EvidenceCommand []string `json:"evidence_command,omitempty"`
	// EvidenceReport, when set, is a report file to read instead of
	// running a command (e.g. a CI artifact path).
	EvidenceReport string `json:"evidence_report,omitempty"`
	// EvidenceTimeoutSeconds bounds an evidence command run.
	EvidenceTimeoutSeconds int `json:"evidence_timeout_seconds,omitempty"`
	// RecordRejections controls whether rejected and evidence-unavailable
	// attempts consume a ledger sequence number for audit completeness.
	// A pointer so a hand-edited config that omits the key keeps the
	// default instead of silently disabling the audit trail.
	RecordRejections *bool `json:"record_rejections,omitempty"`
	// DefaultActor is used when no actor flag or environment variable is
	// present.
	DefaultActor string `json:"default_actor,omitempty"`
}

// Default returns the configuration written by `wicket init`.
func Default() *Config {
	record := true
	return &Config{
		Version:          CurrentVersion,
		SpecPath:         "SPEC.md",
		PlaybookPath:     filepath.Join(WorkspaceDirName, playbookFileName),
		RecordRejections: &record,
	}
}

// RecordRejectionsEnabled reports the rejection audit policy. An unset
// key means every attempt is recorded.
func (c *Config) RecordRejectionsEnabled() bool {
	return c.RecordRejections == nil || *c.RecordRejections
}

// Load reads .wicket/config.json from the given workspace root. Returns an
// error if no config is found; callers treat that as "not a workspace".
func Load(dir string) (*Config, error) {
	path := ConfigPath(dir)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// Save writes config.json into the workspace directory, creating it if
// needed.
func Save(dir string, cfg *Config) error {
	wsDir := WorkspaceDir(dir)
	if err := os.MkdirAll(wsDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s dir: %w", WorkspaceDirName, err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(dir), data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// WorkspaceDir returns the .wicket directory under the workspace root.
func WorkspaceDir(dir string) string {
	return filepath.Join(dir, WorkspaceDirName)
}

// ConfigPath returns the config file path under the workspace root.
func ConfigPath(dir string) string {
	return filepath.Join(dir, WorkspaceDirName, configFileName)
}

// DBPath returns the ledger database path under the workspace root.
func DBPath(dir string) string {
	return filepath.Join(dir, WorkspaceDirName, dbFileName)
}

// DefaultPlaybookPath returns the playbook path `wicket init` writes.
func DefaultPlaybookPath(dir string) string {
	return filepath.Join(dir, WorkspaceDirName, playbookFileName)
}
