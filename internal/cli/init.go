package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/wicket/internal/config"
	"github.com/example/wicket/internal/db"
	"github.com/example/wicket/internal/templates"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	var spec string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a wicket workspace",
		Long: `Initialize a wicket workspace in the current directory.

Creates .wicket/ with the configuration, the default playbook, and an
empty ledger database. The ledger stays empty until the first admitted
transition; nothing is seeded.

Examples:
  wicket init
  wicket init --spec docs/SPEC.md`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to resolve working directory: %w", err)
			}

			if _, err := os.Stat(config.ConfigPath(root)); err == nil {
				return fmt.Errorf("workspace already initialized at %s", config.WorkspaceDir(root))
			}

			cfg := config.Default()
			if spec != "" {
				cfg.SpecPath = spec
			}
			if err := config.Save(root, cfg); err != nil {
				return err
			}
			fmt.Printf("✓ Config written to %s\n", config.ConfigPath(root))

			playbookPath := config.DefaultPlaybookPath(root)
			if _, err := os.Stat(playbookPath); os.IsNotExist(err) {
				content, err := templates.DefaultPlaybook()
				if err != nil {
					return fmt.Errorf("failed to load default playbook: %w", err)
				}
				if err := os.WriteFile(playbookPath, []byte(content), 0644); err != nil {
					return fmt.Errorf("failed to write playbook: %w", err)
				}
				fmt.Printf("✓ Default playbook written to %s\n", playbookPath)
			}

			database, err := db.Open(config.DBPath(root))
			if err != nil {
				return fmt.Errorf("failed to initialize ledger database: %w", err)
			}
			defer database.Close()
			fmt.Printf("✓ Ledger database initialized at %s\n", config.DBPath(root))

			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Printf("  edit %s and declare the governing spec document\n", cfg.SpecPath)
			fmt.Println("  wicket status")
			fmt.Println("  wicket advance E2E_RED")

			return nil
		},
	}

	cmd.Flags().StringVar(&spec, "spec", "", "path to the governing spec document (default SPEC.md)")
	return cmd
}
