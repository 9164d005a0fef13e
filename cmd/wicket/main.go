package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/wicket/internal/cli"
	"github.com/example/wicket/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "wicket",
		Short:   "wicket - playbook progress gate",
		Version: version.String(),
		Long: `wicket enforces an ordered development playbook over a repository.
Advancement between steps and individual commits both pass through the
same gate: declared exit conditions evaluated against fresh evidence,
with every attempt recorded in an append-only ledger.`,
		SilenceUsage: true,
	}

	cli.AddActorFlag(rootCmd)

	// Add subcommands
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.DoctorCmd())
	rootCmd.AddCommand(cli.StatusCmd())
	rootCmd.AddCommand(cli.AdvanceCmd())
	rootCmd.AddCommand(cli.CommitCmd())
	rootCmd.AddCommand(cli.EvidenceCmd())
	rootCmd.AddCommand(cli.AmendmentCmd())
	rootCmd.AddCommand(cli.LedgerCmd())
	rootCmd.AddCommand(cli.GraphCmd())
	rootCmd.AddCommand(cli.NoteCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
