package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robert-crandall/journal-app-sub006/internal/ui"
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show all stats with levels and progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, userID, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			progress, err := svc.Progress(ctx, userID)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconStat, "Stats — "+userID))
			if len(progress) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("(no stats yet — try `lq stat add` or `lq catalog`)"))
				return nil
			}

			for _, p := range progress {
				bar := ui.ProgressBar(p.Stat.CumulativeXP-p.LevelFloor, p.NextLevelAt-p.LevelFloor, 24)
				fmt.Fprintf(cmd.OutOrStdout(), "#%-3d %-16s %s %s %s\n",
					p.Stat.ID,
					p.Stat.Name,
					ui.Gold.Render(fmt.Sprintf("L%d", p.Stat.CurrentLevel)),
					bar,
					ui.Muted.Render(fmt.Sprintf("%d XP, %d to next", p.Stat.CumulativeXP, p.XPToNext)))
				if p.Stat.Description != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "     %s\n", ui.Muted.Render(*p.Stat.Description))
				}
			}
			return nil
		},
	}

	return cmd
}
