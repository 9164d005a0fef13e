package cli

import (
	"fmt"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
	"github.com/spf13/cobra"

	"github.com/example/wicket/internal/config"
	"github.com/example/wicket/internal/core/graph"
	"github.com/example/wicket/internal/db"
)

// CheckResult represents the outcome of a single check
type CheckResult struct {
	Name    string
	Status  string // "✓", "⚠", "✗"
	Details string // Only shown if Status != "✓"
}

// DoctorCmd returns the doctor command for workspace validation. It is
// deliberately self-contained: a broken workspace must still be
// diagnosable, so nothing here goes through the wire layer.
func DoctorCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate the wicket workspace",
		Long: `Workspace health check for wicket.

Validates:
- Workspace configuration (.wicket/config.json)
- Playbook structure (step graph invariants)
- Ledger database
- Governing spec document
- Git repository for commit validation
- Evidence source configuration

Examples:
  wicket doctor           # Run full health check
  wicket doctor --quiet   # Exit code only (0=healthy, 1=issues)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to resolve working directory: %w", err)
			}

			cfg, cfgResult := checkConfig(root)
			results := []CheckResult{cfgResult}
			if cfg != nil {
				results = append(results, checkPlaybook(root, cfg))
				results = append(results, checkDatabase(root))
				results = append(results, checkSpecDocument(root, cfg))
				results = append(results, checkGitRepo(root, cfg))
				results = append(results, checkEvidenceSource(cfg))
			}

			hasErrors := false
			for _, r := range results {
				if r.Status == "✗" {
					hasErrors = true
					break
				}
			}

			if !quiet {
				fmt.Println()
				fmt.Println("Check              Status")
				fmt.Println("─────────────────────────")
				for _, r := range results {
					fmt.Printf("%-18s %s\n", r.Name, r.Status)
				}
				fmt.Println()

				for _, r := range results {
					if r.Status != "✓" && r.Details != "" {
						fmt.Printf("%s: %s\n", r.Name, r.Details)
					}
				}
			}

			if hasErrors {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&quiet, "quiet", false, "exit code only, no output")
	return cmd
}

func checkConfig(root string) (*config.Config, CheckResult) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, CheckResult{
			Name:    "config",
			Status:  "✗",
			Details: fmt.Sprintf("not a wicket workspace (run `wicket init`): %v", err),
		}
	}
	return cfg, CheckResult{Name: "config", Status: "✓"}
}

func checkPlaybook(root string, cfg *config.Config) CheckResult {
	path := cfg.PlaybookPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	if _, err := graph.LoadFile(path); err != nil {
		return CheckResult{Name: "playbook", Status: "✗", Details: err.Error()}
	}
	return CheckResult{Name: "playbook", Status: "✓"}
}

func checkDatabase(root string) CheckResult {
	database, err := db.Open(config.DBPath(root))
	if err != nil {
		return CheckResult{Name: "database", Status: "✗", Details: err.Error()}
	}
	defer database.Close()

	if err := database.Ping(); err != nil {
		return CheckResult{Name: "database", Status: "✗", Details: err.Error()}
	}
	return CheckResult{Name: "database", Status: "✓"}
}

func checkSpecDocument(root string, cfg *config.Config) CheckResult {
	path := cfg.SpecPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	if _, err := os.Stat(path); err != nil {
		return CheckResult{
			Name:    "spec document",
			Status:  "⚠",
			Details: fmt.Sprintf("%s not found; spec-hash conditions will reject until it exists", cfg.SpecPath),
		}
	}
	return CheckResult{Name: "spec document", Status: "✓"}
}

func checkGitRepo(root string, cfg *config.Config) CheckResult {
	path := cfg.RepoPath
	if path == "" {
		path = root
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	if _, err := git.PlainOpen(path); err != nil {
		return CheckResult{
			Name:    "git repository",
			Status:  "⚠",
			Details: fmt.Sprintf("%s is not a git repository; `wicket commit check` needs --message or --stdin", path),
		}
	}
	return CheckResult{Name: "git repository", Status: "✓"}
}

func checkEvidenceSource(cfg *config.Config) CheckResult {
	if len(cfg.EvidenceCommand) == 0 && cfg.EvidenceReport == "" {
		return CheckResult{
			Name:    "evidence source",
			Status:  "⚠",
			Details: "no evidence_command or evidence_report configured; every evaluation will report evidence as unavailable",
		}
	}
	return CheckResult{Name: "evidence source", Status: "✓"}
}
