package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/wicket/internal/ports/primary"
	"github.com/example/wicket/internal/wire"
)

// AdvanceCmd returns the advance command
func AdvanceCmd() *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "advance [target-step]",
		Short: "Request advancement to the next step",
		Long: `Request advancement to a target step.

Fresh evidence is collected, the current step's exit conditions are
evaluated, and the attempt is recorded in the ledger. A rejection exits
nonzero so the command can gate scripts and hooks.

Examples:
  wicket advance E2E_RED
  wicket advance SPEC_DRAFT --note "regressing after amendment discussion"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := actorContext(cmd)

			result, err := wire.GateService().Advance(ctx, primary.AdvanceRequest{
				Target: args[0],
				Note:   note,
			})
			if err != nil {
				return fmt.Errorf("advance failed: %w", err)
			}

			printGateResult(result)
			if !result.Admitted {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&note, "note", "", "free-form note recorded with the attempt")
	return cmd
}

// printGateResult renders a gate decision. Shared by advance and commit
// check so the two surfaces read the same.
func printGateResult(result *primary.GateResult) {
	if result.Admitted {
		fmt.Printf("%s %s -> %s", color.GreenString("✓ admitted"), result.FromStep, result.ToStep)
		if result.Recorded {
			fmt.Printf(" (seq %d)", result.Seq)
		}
		fmt.Println()
		return
	}

	fmt.Printf("%s %s -> %s\n", color.RedString("✗ rejected"), result.FromStep, result.ToStep)
	fmt.Printf("  kind:   %s\n", result.RejectKind)
	if result.FailingCondition != "" {
		fmt.Printf("  failed: %s\n", result.FailingCondition)
	}
	fmt.Printf("  reason: %s\n", result.Reason)
	if result.Recorded {
		fmt.Printf("  recorded at seq %d\n", result.Seq)
	}
}
