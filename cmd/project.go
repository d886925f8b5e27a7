package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"curseforge-badges/cfwidget"
	"curseforge-badges/logger"
	"curseforge-badges/ui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// projectCmd represents the project command
var projectCmd = &cobra.Command{
	Use:   "project <projectId>",
	Short: "Show cached metadata for a project",
	Long:  `Fetches a project through the metadata cache and prints a summary.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		projectID, err := strconv.Atoi(args[0])
		if err != nil || projectID <= 0 {
			logger.Log.Fatalw("Invalid project id", zap.String("arg", args[0]))
		}
		runProject(projectID)
	},
}

func init() {
	rootCmd.AddCommand(projectCmd)
}

func runProject(projectID int) {
	_, fetcher := bootstrap(".")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	p, err := fetcher.GetProject(ctx, projectID)
	if err != nil {
		logger.Log.Fatalw("Failed to fetch project", zap.Int("projectId", projectID), zap.Error(err))
	}

	fmt.Println(ui.Title(p.Title))
	fmt.Println(ui.Field("Owner", p.Owner()))
	fmt.Println(ui.Field("Downloads", cfwidget.FormatNumber(p.Downloads.Total)))
	if len(p.Categories) > 0 {
		fmt.Println(ui.Field("Categories", strings.Join(p.Categories, ", ")))
	}
	if latest := cfwidget.LatestFile(p); latest != nil {
		fmt.Println(ui.Field("Latest", latest.Version))
		fmt.Println(ui.Field("File", latest.FileName))
		fmt.Println(ui.Field("Size", cfwidget.FormatFileSize(latest.FileSize)))
		fmt.Println(ui.Field("Uploaded", cfwidget.FormatDate(latest.UploadedAt)))
		if len(latest.GameVersions) > 0 {
			fmt.Println(ui.Field("Game", strings.Join(latest.GameVersions, ", ")))
		}
	}
	if p.Summary != "" {
		fmt.Println()
		fmt.Println(p.Summary)
	}
}
