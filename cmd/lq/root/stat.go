package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robert-crandall/journal-app-sub006/internal/engine"
	"github.com/robert-crandall/journal-app-sub006/internal/storage"
	"github.com/robert-crandall/journal-app-sub006/internal/ui"
)

func newStatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stat",
		Short: "Manage stats (add/edit/rm)",
	}
	cmd.AddCommand(newStatAddCmd(), newStatEditCmd(), newStatRmCmd())
	return cmd
}

func newStatAddCmd() *cobra.Command {
	var desc string
	var fromCode string
	var activities []string

	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a stat (custom, or --from a catalog template)",
		Args: func(cmd *cobra.Command, args []string) error {
			if fromCode == "" && len(args) != 1 {
				return errors.New("name is required (or use --from <code>)")
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

			var stat *storage.Stat
			if fromCode != "" {
				stat, err = svc.AddFromCatalog(ctx, userID, fromCode)
			} else {
				acts, perr := parseActivities(activities)
				if perr != nil {
					return perr
				}
				stat, err = svc.CreateStat(ctx, userID, engine.CreateStatInput{
					Name:        args[0],
					Description: desc,
					Activities:  acts,
				})
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
				ui.Good.Render(ui.IconPlus+" Added"),
				stat.Name,
				ui.Muted.Render(fmt.Sprintf("(#%d, level %d)", stat.ID, stat.CurrentLevel)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&desc, "desc", "d", "", "Stat description")
	cmd.Flags().StringVar(&fromCode, "from", "", "Create from a catalog template (see `lq catalog`)")
	cmd.Flags().StringArrayVar(&activities, "activity", nil, "Example activity as \"description:xp\" (repeatable)")

	return cmd
}

func newStatEditCmd() *cobra.Command {
	var name string
	var desc string
	var activities []string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a stat's name, description, or example activities",
		Args:  statIDArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, userID, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id, _ := strconv.ParseInt(args[0], 10, 64)

			in := engine.UpdateStatInput{}
			if cmd.Flags().Changed("name") {
				in.Name = &name
			}
			if cmd.Flags().Changed("desc") {
				in.Description = &desc
			}
			if cmd.Flags().Changed("activity") {
				acts, perr := parseActivities(activities)
				if perr != nil {
					return perr
				}
				in.Activities = acts
			}

			stat, err := svc.UpdateStat(ctx, userID, id, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
				ui.Good.Render(ui.IconSparkle+" Updated"),
				stat.Name,
				ui.Muted.Render(fmt.Sprintf("(#%d)", stat.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "New name")
	cmd.Flags().StringVarP(&desc, "desc", "d", "", "New description (empty clears it)")
	cmd.Flags().StringArrayVar(&activities, "activity", nil, "Replace example activities, \"description:xp\" (repeatable)")

	return cmd
}

func newStatRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a stat and its entire grant history",
		Args:  statIDArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, userID, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id, _ := strconv.ParseInt(args[0], 10, 64)
			deleted, err := svc.DeleteStat(ctx, userID, id)
			if err != nil {
				return err
			}
			if !deleted {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", ui.Muted.Render(fmt.Sprintf("stat %d was already gone", id)))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n",
				ui.Warn.Render(ui.IconTrash+" Deleted"),
				ui.Muted.Render(fmt.Sprintf("stat #%d and its grants", id)))
			return nil
		},
	}

	return cmd
}

func statIDArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("id is required")
	}
	if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
		return errors.New("id must be an integer")
	}
	return nil
}

// parseActivities parses repeated "description:xp" flags.
func parseActivities(raw []string) ([]storage.ExampleActivity, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]storage.ExampleActivity, 0, len(raw))
	for _, r := range raw {
		i := strings.LastIndex(r, ":")
		if i <= 0 {
			return nil, fmt.Errorf("invalid activity %q (want \"description:xp\")", r)
		}
		xp, err := strconv.Atoi(strings.TrimSpace(r[i+1:]))
		if err != nil {
			return nil, fmt.Errorf("invalid activity xp in %q", r)
		}
		out = append(out, storage.ExampleActivity{
			Description: strings.TrimSpace(r[:i]),
			SuggestedXP: xp,
		})
	}
	return out, nil
}
