package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/robert-crandall/journal-app-sub006/internal/engine"
	"github.com/robert-crandall/journal-app-sub006/internal/ui"
)

func newAwardCmd() *cobra.Command {
	var source string
	var ref string
	var reason string

	cmd := &cobra.Command{
		Use:   "award <stat_id> <amount>",
		Short: "Grant XP to a stat (negative amounts deduct, floored at zero)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("stat_id and amount are required")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return errors.New("stat_id must be an integer")
			}
			if _, err := strconv.Atoi(args[1]); err != nil {
				return errors.New("amount must be an integer")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, userID, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			statID, _ := strconv.ParseInt(args[0], 10, 64)
			amount, _ := strconv.Atoi(args[1])
			src, err := engine.ParseSourceType(source)
			if err != nil {
				return err
			}

			res, err := svc.AwardXP(ctx, userID, engine.AwardInput{
				StatID:    statID,
				Amount:    amount,
				Source:    src,
				SourceRef: ref,
				Reason:    reason,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %+d XP → %s %s\n",
				ui.Good.Render(ui.IconBolt+" Granted"),
				amount,
				res.Stat.Name,
				ui.Muted.Render(fmt.Sprintf("(total %d)", res.Stat.CumulativeXP)))
			if res.LeveledUp {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
					ui.IconTrophy,
					ui.BadgeLevelUp,
					ui.Gold.Render(fmt.Sprintf("%s is now level %d", res.Stat.Name, res.NewLevel)))
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n",
					ui.LabelValue("Level", fmt.Sprintf("%d (%d XP to next)",
						res.Stat.CurrentLevel,
						engine.XPToNextLevel(res.Stat.CumulativeXP, res.Stat.CurrentLevel))))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "adhoc", "Source type (task|journal|adhoc|quest|experiment)")
	cmd.Flags().StringVar(&ref, "ref", "", "Opaque reference to the originating entity")
	cmd.Flags().StringVarP(&reason, "reason", "m", "", "Free-text reason recorded on the grant")

	return cmd
}
