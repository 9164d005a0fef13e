package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/wicket/internal/ports/primary"
	"github.com/example/wicket/internal/wire"
)

// CommitCmd returns the commit command
func CommitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Validate commits against the current step",
	}

	cmd.AddCommand(commitCheckCmd())
	return cmd
}

func commitCheckCmd() *cobra.Command {
	var message string
	var fromStdin bool
	var note string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check a commit message against the gate",
		Long: `Check a commit message against the current step.

Without --message or --stdin the HEAD commit of the configured repository
is read. The message must carry exactly one Playbook-Step trailer and one
Spec-Hash trailer; a step reached via amendment also requires the matching
Amendment trailer. Malformed metadata fails before any evidence is
collected.

Typical use is a commit-msg hook:
  wicket commit check --stdin < "$1"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := actorContext(cmd)

			if fromStdin {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("failed to read commit message from stdin: %w", err)
				}
				message = string(data)
			}

			result, err := wire.GateService().CheckCommit(ctx, primary.CommitCheckRequest{
				Message: message,
				Note:    note,
			})
			if err != nil {
				return fmt.Errorf("commit check failed: %w", err)
			}

			printGateResult(result)
			if !result.Admitted {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message to check instead of HEAD")
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "read the commit message from stdin")
	cmd.Flags().StringVar(&note, "note", "", "free-form note recorded with the attempt")
	return cmd
}
