package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/wicket/internal/wire"
)

// EvidenceCmd returns the evidence command
func EvidenceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evidence",
		Short: "Work with evidence snapshots",
	}

	cmd.AddCommand(evidenceCollectCmd())
	return cmd
}

func evidenceCollectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collect",
		Short: "Collect and print a fresh evidence snapshot",
		Long:  `Collect a fresh evidence snapshot without evaluating anything. Useful for checking the configured evidence source.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := actorContext(cmd)

			snap, err := wire.GateService().CollectEvidence(ctx)
			if err != nil {
				return fmt.Errorf("evidence collection failed: %w", err)
			}

			fmt.Printf("Tests:     %d total, %d failed\n", snap.TestsTotal, snap.TestsFailed)
			fmt.Printf("Coverage:  %.1f%%\n", snap.Coverage)
			fmt.Printf("Mutation:  %.1f%%\n", snap.MutationScore)
			fmt.Printf("Spec hash: %s\n", orDash(snap.SpecHash))
			fmt.Printf("Collected: %s\n", snap.CollectedAt)
			return nil
		},
	}
}
