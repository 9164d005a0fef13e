package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/wicket/internal/core/graph"
	"github.com/example/wicket/internal/wire"
)

// GraphCmd returns the graph command
func GraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Inspect the playbook step graph",
	}

	cmd.AddCommand(graphShowCmd())
	cmd.AddCommand(graphValidateCmd())
	return cmd
}

func graphShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the loaded playbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			printGraph(wire.Playbook())
			return nil
		},
	}
}

func graphValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [playbook.yaml]",
		Short: "Validate a playbook file",
		Long: `Load and validate a playbook file without touching the workspace.

Checks the structural invariants: exactly one terminal step, every edge
resolves, the forward graph is acyclic, and every amendment landing is
reachable.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := graph.LoadFile(args[0])
			if err != nil {
				return fmt.Errorf("playbook invalid: %w", err)
			}

			fmt.Printf("%s %s is a valid playbook (%d steps)\n",
				color.GreenString("✓"), args[0], len(g.Steps()))
			return nil
		},
	}
}

func printGraph(g *graph.Graph) {
	fmt.Printf("Start:    %s\n", g.Start())
	fmt.Printf("Terminal: %s\n", g.Terminal())
	fmt.Println()

	for _, step := range g.Steps() {
		fmt.Printf("%s\n", color.New(color.Bold).Sprint(step.ID))
		if len(step.Next) > 0 {
			fmt.Printf("  next:    %v\n", step.Next)
		}
		if len(step.Regress) > 0 {
			fmt.Printf("  regress: %v\n", step.Regress)
		}
		if step.AmendmentLanding != "" {
			fmt.Printf("  landing: %s\n", step.AmendmentLanding)
		}
		for _, c := range step.ExitConditions {
			marker := ""
			if c.CommitBlocking {
				marker = " [commit-blocking]"
			}
			if c.Threshold > 0 {
				fmt.Printf("  - %s (%s >= %.0f)%s\n", c.Name, c.Kind, c.Threshold, marker)
			} else {
				fmt.Printf("  - %s (%s)%s\n", c.Name, c.Kind, marker)
			}
		}
	}
}
