package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/wicket/internal/wire"
)

// NoteCmd returns the note command
func NoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "note [text]",
		Short: "Append an annotation to the ledger",
		Long: `Append a pure annotation entry at the current position.

The note consumes a sequence number but never moves the head.

Examples:
  wicket note "pausing here until the reviewer is back"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := actorContext(cmd)

			entry, err := wire.GateService().Annotate(ctx, strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("failed to append note: %w", err)
			}

			fmt.Printf("✓ Noted at seq %d (step %s)\n", entry.Seq, entry.ToStep)
			return nil
		},
	}
}
