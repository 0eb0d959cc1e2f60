package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robert-crandall/journal-app-sub006/internal/engine"
	"github.com/robert-crandall/journal-app-sub006/internal/ui"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List predefined stat templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconScroll, "Stat catalog"))
			for _, entry := range engine.Catalog() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s — %s\n",
					ui.Key.Render(entry.Code),
					ui.H2.Render(entry.Name),
					ui.Muted.Render(entry.Description))
				for _, a := range entry.Activities {
					fmt.Fprintf(cmd.OutOrStdout(), "  - %s %s\n",
						a.Description,
						ui.Muted.Render(fmt.Sprintf("(~%d XP)", a.SuggestedXP)))
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("\nAdd one with: lq stat add --from <code>"))
			return nil
		},
	}

	return cmd
}
