package root

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/robert-crandall/journal-app-sub006/internal/tui"
)

func newBoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Open the TUI stats dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, userID, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			return tui.RunDashboard(ctx, svc, userID, cmd.OutOrStdout())
		},
	}

	return cmd
}
