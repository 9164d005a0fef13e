package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/wicket/internal/ports/primary"
	"github.com/example/wicket/internal/wire"
)

// AmendmentCmd returns the amendment command
func AmendmentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "amendment",
		Short: "Manage spec amendments",
		Long: `Manage the spec amendment lifecycle.

Mid-flow spec changes go through propose -> approve/reject -> apply.
Approval is always an explicit human decision; applying an approved
amendment moves the playbook to the landing step under the new spec hash
and writes an architectural decision record.`,
	}

	cmd.AddCommand(amendmentProposeCmd())
	cmd.AddCommand(amendmentListCmd())
	cmd.AddCommand(amendmentShowCmd())
	cmd.AddCommand(amendmentApproveCmd())
	cmd.AddCommand(amendmentRejectCmd())
	cmd.AddCommand(amendmentApplyCmd())
	cmd.AddCommand(adrListCmd())
	return cmd
}

func amendmentProposeCmd() *cobra.Command {
	var reason, specPath string

	cmd := &cobra.Command{
		Use:   "propose",
		Short: "Propose a spec amendment",
		Long: `Propose an amendment to the governing spec document.

The candidate document is hashed now, pinning exactly the content the
reviewer decides on.

Examples:
  wicket amendment propose --reason "rate limiting needs a burst allowance"
  wicket amendment propose --reason "..." --spec docs/SPEC-draft.md`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := actorContext(cmd)

			a, err := wire.AmendmentService().Propose(ctx, primary.ProposeAmendmentRequest{
				Reason:   reason,
				SpecPath: specPath,
			})
			if err != nil {
				return fmt.Errorf("failed to propose amendment: %w", err)
			}

			fmt.Printf("✓ Proposed %s\n", a.ID)
			fmt.Printf("  %s -> %s\n", orDash(a.PreviousSpecHash), a.ProposedSpecHash)
			fmt.Println()
			fmt.Println("Awaiting reviewer decision:")
			fmt.Printf("  wicket amendment approve %s --justification \"...\"\n", a.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "why the spec must change (required)")
	cmd.Flags().StringVar(&specPath, "spec", "", "candidate spec document (default: the configured spec path)")
	cmd.MarkFlagRequired("reason")
	return cmd
}

func amendmentListCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List amendments",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := actorContext(cmd)

			amendments, err := wire.AmendmentService().List(ctx, status)
			if err != nil {
				return fmt.Errorf("failed to list amendments: %w", err)
			}

			if len(amendments) == 0 {
				fmt.Println("No amendments found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tREASON\tACTOR\tCREATED")
			for _, a := range amendments {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					a.ID, a.Status, truncate(a.Reason, 48), a.Actor, a.CreatedAt)
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status (proposed, approved, rejected, applied)")
	return cmd
}

func amendmentShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [amendment-id]",
		Short: "Show amendment details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := actorContext(cmd)

			a, err := wire.AmendmentService().Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("amendment not found: %w", err)
			}

			fmt.Printf("Amendment: %s\n", a.ID)
			fmt.Printf("Status:    %s\n", a.Status)
			fmt.Printf("Reason:    %s\n", a.Reason)
			fmt.Printf("Before:    %s\n", orDash(a.PreviousSpecHash))
			fmt.Printf("After:     %s\n", a.ProposedSpecHash)
			fmt.Printf("Actor:     %s\n", a.Actor)
			fmt.Printf("Created:   %s\n", a.CreatedAt)
			if a.ReviewedBy != "" {
				fmt.Printf("Reviewer:  %s\n", a.ReviewedBy)
				fmt.Printf("Decision:  %s (%s)\n", a.Status, a.Justification)
				fmt.Printf("Decided:   %s\n", a.DecidedAt)
			}
			if a.ADRID != "" {
				fmt.Printf("ADR:       %s\n", a.ADRID)
				fmt.Printf("Applied:   %s\n", a.AppliedAt)
			}
			return nil
		},
	}
}

func amendmentApproveCmd() *cobra.Command {
	return amendmentDecideCmd("approve", "Approve a proposed amendment", true)
}

func amendmentRejectCmd() *cobra.Command {
	return amendmentDecideCmd("reject", "Reject a proposed amendment", false)
}

func amendmentDecideCmd(verb, short string, approve bool) *cobra.Command {
	var justification string

	cmd := &cobra.Command{
		Use:   verb + " [amendment-id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := actorContext(cmd)

			a, err := wire.AmendmentService().Decide(ctx, primary.DecideAmendmentRequest{
				ID:            args[0],
				Approve:       approve,
				Justification: justification,
			})
			if err != nil {
				return fmt.Errorf("failed to %s amendment: %w", verb, err)
			}

			if approve {
				fmt.Printf("%s %s approved\n", color.GreenString("✓"), a.ID)
				fmt.Printf("  wicket amendment apply %s\n", a.ID)
			} else {
				fmt.Printf("%s %s rejected\n", color.RedString("✗"), a.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&justification, "justification", "", "reviewer justification (required)")
	cmd.MarkFlagRequired("justification")
	return cmd
}

func amendmentApplyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply [amendment-id]",
		Short: "Apply an approved amendment",
		Long: `Apply an approved amendment.

The playbook moves to the current step's amendment landing under the new
spec hash, and an architectural decision record is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := actorContext(cmd)

			resp, err := wire.AmendmentService().Apply(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to apply amendment: %w", err)
			}

			fmt.Printf("%s Applied %s at seq %d\n", color.GreenString("✓"), resp.Amendment.ID, resp.LedgerSeq)
			fmt.Printf("  landed on %s\n", resp.LandedOn)
			fmt.Printf("  spec hash %s\n", resp.Amendment.ProposedSpecHash)
			fmt.Printf("  recorded  %s\n", resp.ADR.ID)
			return nil
		},
	}
}

func adrListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "adrs",
		Short: "List architectural decision records",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := actorContext(cmd)

			adrs, err := wire.AmendmentService().ListADRs(ctx)
			if err != nil {
				return fmt.Errorf("failed to list ADRs: %w", err)
			}

			if len(adrs) == 0 {
				fmt.Println("No decision records yet.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tAMENDMENT\tREASON\tCREATED")
			for _, adr := range adrs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					adr.ID, adr.AmendmentID, truncate(adr.Reason, 48), adr.CreatedAt)
			}
			w.Flush()
			return nil
		},
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
