package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/wicket/internal/wire"
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current playbook position",
		Long:  `Show the current step, the governing spec hash, and recent ledger activity.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := actorContext(cmd)

			status, err := wire.GateService().Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to read status: %w", err)
			}

			step := status.CurrentStep
			switch {
			case status.Terminal:
				step = color.GreenString("%s (terminal)", step)
			case !status.Initialized:
				step = fmt.Sprintf("%s (start, no admitted entries yet)", step)
			}

			fmt.Printf("Step:       %s\n", step)
			fmt.Printf("Spec hash:  %s\n", orDash(status.SpecHash))
			fmt.Printf("Head seq:   %d\n", status.HeadSeq)
			fmt.Printf("Last seq:   %d\n", status.LastSeq)
			if status.PendingAmendments > 0 {
				fmt.Printf("Amendments: %s\n", color.YellowString("%d pending", status.PendingAmendments))
			}

			if len(status.RecentEntries) > 0 {
				fmt.Println()
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
				fmt.Fprintln(w, "SEQ\tACTION\tOUTCOME\tFROM\tTO\tACTOR\tNOTE")
				for _, e := range status.RecentEntries {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
						e.Seq, e.Action, e.Outcome, e.FromStep, e.ToStep, e.Actor, truncate(e.Note, 32))
				}
				w.Flush()
			}
			return nil
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
