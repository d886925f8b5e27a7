package cmd

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"curseforge-badges/badge"
	"curseforge-badges/logger"
	"curseforge-badges/render"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// renderCmd represents the render command
var renderCmd = &cobra.Command{
	Use:   "render <projectId>",
	Short: "Render a badge once and write it to a file",
	Long: `Renders a single badge image outside the server, useful for checking
what an embed will look like.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		projectID, err := strconv.Atoi(args[0])
		if err != nil || projectID <= 0 {
			logger.Log.Fatalw("Invalid project id", zap.String("arg", args[0]))
		}

		query := url.Values{}
		for _, opt := range []string{"variant", "theme", "format", "quality", "showDownloads", "showVersion", "showButton", "showPadding"} {
			if v, _ := cmd.Flags().GetString(opt); v != "" {
				query.Set(opt, v)
			}
		}
		out, _ := cmd.Flags().GetString("out")
		runRender(projectID, query, out)
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().String("variant", "", "Badge variant: default, compact or full")
	renderCmd.Flags().String("theme", "", "Color theme: dark or light")
	renderCmd.Flags().String("format", "", "Output format: png or jpeg")
	renderCmd.Flags().String("quality", "", "JPEG quality (1-100)")
	renderCmd.Flags().String("showDownloads", "", "Show the download counter (true/false)")
	renderCmd.Flags().String("showVersion", "", "Show the latest version (true/false)")
	renderCmd.Flags().String("showButton", "", "Show the call-to-action button (true/false)")
	renderCmd.Flags().String("showPadding", "", "Pad the full variant (true/false)")
	renderCmd.Flags().StringP("out", "o", "badge.png", "Output file")
}

func runRender(projectID int, query url.Values, out string) {
	cfg, fetcher := bootstrap(".")

	opts, err := badge.ParseOptions(query)
	if err != nil {
		logger.Log.Fatalw("Invalid badge options", zap.Error(err))
	}

	renderer, release := newRenderer(cfg)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	p, err := fetcher.GetProject(ctx, projectID)
	if err != nil {
		logger.Log.Fatalw("Failed to fetch project", zap.Int("projectId", projectID), zap.Error(err))
	}

	client := &http.Client{Timeout: 10 * time.Second}
	icon, err := render.PrepareIcon(ctx, client, p.Thumbnail)
	if err != nil {
		logger.Log.Warnw("Failed to prepare thumbnail", zap.Error(err))
		icon = ""
	}

	img, err := renderer.Render(ctx, badge.Build(p, opts, icon))
	if err != nil {
		logger.Log.Fatalw("Failed to render badge", zap.Error(err))
	}

	if err := os.WriteFile(out, img, 0644); err != nil {
		logger.Log.Fatalw("Failed to write output file", zap.String("path", out), zap.Error(err))
	}
	logger.Log.Infow("Badge written", zap.String("path", out), zap.Int("bytes", len(img)))
}
