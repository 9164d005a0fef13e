package cli

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/wicket/internal/ports/primary"
	"github.com/example/wicket/internal/wire"
)

// LedgerCmd returns the ledger command
func LedgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect and verify the progress ledger",
	}

	cmd.AddCommand(ledgerListCmd())
	cmd.AddCommand(ledgerShowCmd())
	cmd.AddCommand(ledgerVerifyCmd())
	return cmd
}

func ledgerListCmd() *cobra.Command {
	var from, to int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ledger entries",
		Long:  `List ledger entries in ascending sequence order. Bound the range with --from and --to.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := actorContext(cmd)

			entries, err := wire.LedgerService().History(ctx, primary.HistoryRequest{FromSeq: from, ToSeq: to})
			if err != nil {
				return fmt.Errorf("failed to list ledger entries: %w", err)
			}

			if len(entries) == 0 {
				fmt.Println("Ledger is empty.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "SEQ\tACTION\tOUTCOME\tFROM\tTO\tACTOR\tCREATED")
			for _, e := range entries {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
					e.Seq, e.Action, e.Outcome, e.FromStep, e.ToStep, e.Actor, e.CreatedAt)
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().Int64Var(&from, "from", 0, "first sequence number to list")
	cmd.Flags().Int64Var(&to, "to", 0, "last sequence number to list (0 = to the end)")
	return cmd
}

func ledgerShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [seq]",
		Short: "Show one ledger entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := actorContext(cmd)

			seq, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid sequence number %q", args[0])
			}

			e, err := wire.LedgerService().Get(ctx, seq)
			if err != nil {
				return fmt.Errorf("entry not found: %w", err)
			}

			fmt.Printf("Seq:       %d\n", e.Seq)
			fmt.Printf("Action:    %s\n", e.Action)
			fmt.Printf("Outcome:   %s\n", e.Outcome)
			fmt.Printf("From:      %s\n", orDash(e.FromStep))
			fmt.Printf("To:        %s\n", e.ToStep)
			fmt.Printf("Spec hash: %s\n", orDash(e.SpecHash))
			if e.RejectKind != "" {
				fmt.Printf("Rejected:  %s\n", e.RejectKind)
			}
			if e.FailingCondition != "" {
				fmt.Printf("Failed:    %s\n", e.FailingCondition)
			}
			if e.Reason != "" {
				fmt.Printf("Reason:    %s\n", e.Reason)
			}
			if e.AmendmentID != "" {
				fmt.Printf("Amendment: %s\n", e.AmendmentID)
			}
			fmt.Printf("Actor:     %s\n", e.Actor)
			if e.Note != "" {
				fmt.Printf("Note:      %s\n", e.Note)
			}
			fmt.Printf("Created:   %s\n", e.CreatedAt)
			if e.Evidence != nil {
				fmt.Printf("Evidence:  %d tests (%d failed), coverage %.1f%%, mutation %.1f%%\n",
					e.Evidence.TestsTotal, e.Evidence.TestsFailed, e.Evidence.Coverage, e.Evidence.MutationScore)
			}
			return nil
		},
	}
}

func ledgerVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify the ledger against the append-only contract",
		Long:  `Replay the full history: gapless sequences, chained admitted transitions, and a head that matches the replay.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := actorContext(cmd)

			result, err := wire.LedgerService().Verify(ctx)
			if err != nil {
				return fmt.Errorf("verification failed to run: %w", err)
			}

			fmt.Printf("Entries: %d\n", result.Entries)
			fmt.Printf("Head:    seq %d, step %s\n", result.HeadSeq, orDash(result.CurrentStep))

			if result.OK {
				fmt.Println(color.GreenString("✓ ledger verified"))
				return nil
			}

			fmt.Println(color.RedString("✗ ledger verification failed:"))
			for _, p := range result.Problems {
				fmt.Printf("  - %s\n", p)
			}
			os.Exit(1)
			return nil
		},
	}
}
