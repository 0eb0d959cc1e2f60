package root

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/robert-crandall/journal-app-sub006/internal/ui"
)

func newHistoryCmd() *cobra.Command {
	var limit int
	var offset int

	cmd := &cobra.Command{
		Use:   "history <stat_id>",
		Short: "Show a stat's grant history (most recent first)",
		Args:  statIDArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, userID, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			statID, _ := strconv.ParseInt(args[0], 10, 64)
			stat, err := svc.GetStat(ctx, userID, statID)
			if err != nil {
				return err
			}
			grants, err := svc.History(ctx, userID, statID, limit, offset)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconScroll, fmt.Sprintf("History — %s (%d XP, level %d)", stat.Name, stat.CumulativeXP, stat.CurrentLevel)))
			if len(grants) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("(no grants yet)"))
				return nil
			}
			for _, g := range grants {
				line := fmt.Sprintf("%s %s %+d XP %s",
					ui.Muted.Render(g.CreatedAt.Local().Format("2006-01-02 15:04")),
					ui.SourceIcon(g.SourceType),
					g.Amount,
					ui.Muted.Render("["+g.SourceType+"]"))
				if g.SourceRef != nil {
					line += " " + ui.Muted.Render("ref="+*g.SourceRef)
				}
				if g.Reason != nil {
					line += " — " + *g.Reason
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Max grants to show")
	cmd.Flags().IntVar(&offset, "offset", 0, "Skip this many grants (pagination)")

	return cmd
}
