package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/robert-crandall/journal-app-sub006/internal/ui"
)

const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:           "lq",
	Short:         "Life-quest XP tracker — stats, grants, levels",
	Long:          "lq tracks user-defined character stats that earn XP from tasks, journals, quests, and experiments, and level up automatically.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.AddCommand(
		newStatCmd(),
		newStatsCmd(),
		newAwardCmd(),
		newHistoryCmd(),
		newCatalogCmd(),
		newBoardCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
