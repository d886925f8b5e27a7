package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command; with no subcommand it runs the server.
var rootCmd = &cobra.Command{
	Use:   "curseforge-badges",
	Short: "Embeddable badge images for CurseForge projects",
	Long: `Serves dynamically rendered badge images for CurseForge projects,
backed by cached metadata from the cfwidget API.`,
	Run: func(cmd *cobra.Command, args []string) {
		runServe()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
