// Package wire provides dependency injection for the wicket application.
// It creates singleton services with lazy initialization.
package wire

import (
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/example/wicket/internal/adapters/evidence"
	"github.com/example/wicket/internal/adapters/gitrepo"
	"github.com/example/wicket/internal/adapters/spechash"
	"github.com/example/wicket/internal/adapters/sqlite"
	"github.com/example/wicket/internal/app"
	"github.com/example/wicket/internal/config"
	"github.com/example/wicket/internal/core/graph"
	"github.com/example/wicket/internal/db"
	"github.com/example/wicket/internal/ports/primary"
	"github.com/example/wicket/internal/ports/secondary"
)

var (
	workspaceRoot    string
	workspaceConfig  *config.Config
	playbook         *graph.Graph
	gateService      primary.GateService
	ledgerService    primary.LedgerService
	amendmentService primary.AmendmentService
	once             sync.Once
)

// GateService returns the singleton GateService instance.
func GateService() primary.GateService {
	once.Do(initServices)
	return gateService
}

// LedgerService returns the singleton LedgerService instance.
func LedgerService() primary.LedgerService {
	once.Do(initServices)
	return ledgerService
}

// AmendmentService returns the singleton AmendmentService instance.
func AmendmentService() primary.AmendmentService {
	once.Do(initServices)
	return amendmentService
}

// Playbook returns the loaded and validated step graph.
func Playbook() *graph.Graph {
	once.Do(initServices)
	return playbook
}

// Config returns the loaded workspace configuration.
func Config() *config.Config {
	once.Do(initServices)
	return workspaceConfig
}

// Root returns the workspace root directory.
func Root() string {
	once.Do(initServices)
	return workspaceRoot
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	root, err := os.Getwd()
	if err != nil {
		log.Fatalf("failed to resolve working directory: %v", err)
	}
	workspaceRoot = root

	cfg, err := config.Load(root)
	if err != nil {
		log.Fatalf("not a wicket workspace (run `wicket init` first): %v", err)
	}
	workspaceConfig = cfg

	playbookPath := cfg.PlaybookPath
	if !filepath.IsAbs(playbookPath) {
		playbookPath = filepath.Join(root, playbookPath)
	}
	playbook, err = graph.LoadFile(playbookPath)
	if err != nil {
		log.Fatalf("failed to load playbook: %v", err)
	}

	database, err := db.Open(config.DBPath(root))
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Create repository adapters (secondary ports)
	ledgerRepo := sqlite.NewLedgerRepository(database)
	amendmentRepo := sqlite.NewAmendmentRepository(database)
	adrRepo := sqlite.NewADRRepository(database)
	hasher := spechash.New()
	commits := gitrepo.NewReader()
	collector := newCollector(cfg)

	// Single in-process writer over the ledger
	writer := app.NewLedgerWriter(ledgerRepo)

	// Create services (primary ports implementation)
	gateService = app.NewGateService(playbook, cfg, root, writer, ledgerRepo, amendmentRepo, collector, hasher, commits)
	ledgerService = app.NewLedgerService(playbook, ledgerRepo)
	amendmentService = app.NewAmendmentService(playbook, cfg, root, writer, ledgerRepo, amendmentRepo, adrRepo, hasher)
}

// newCollector picks the evidence source the config names. A command takes
// precedence over a report file; with neither configured, collection
// reports evidence as unavailable rather than failing at startup.
func newCollector(cfg *config.Config) secondary.EvidenceCollector {
	timeout := time.Duration(cfg.EvidenceTimeoutSeconds) * time.Second
	if len(cfg.EvidenceCommand) > 0 {
		return evidence.NewCommandCollector(cfg.EvidenceCommand, timeout)
	}
	if cfg.EvidenceReport != "" {
		path := cfg.EvidenceReport
		if !filepath.IsAbs(path) {
			path = filepath.Join(workspaceRoot, path)
		}
		return evidence.NewFileCollector(path)
	}
	return evidence.NewCommandCollector(nil, timeout)
}
