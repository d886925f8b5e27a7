package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"curseforge-badges/logger"
	"curseforge-badges/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the badge HTTP server",
	Long: `Starts the HTTP server that renders badge images and serves cached
project metadata.`,
	Run: func(cmd *cobra.Command, args []string) {
		runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() {
	cfg, fetcher := bootstrap(".")

	renderer, release := newRenderer(cfg)
	defer release()

	srv := server.New(cfg, fetcher, renderer, logger.Log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalw("Server failed", zap.Error(err))
		}
	case sig := <-stop:
		logger.Log.Infow("Shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Log.Warnw("Graceful shutdown failed", zap.Error(err))
		}
	}
}
