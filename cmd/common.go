package cmd

import (
	"curseforge-badges/cfwidget"
	"curseforge-badges/config"
	"curseforge-badges/logger"
	"curseforge-badges/render"
	"curseforge-badges/store"

	"go.uber.org/zap"
)

// bootstrap handles shared initialization logic for commands.
func bootstrap(path string) (config.Config, *store.Fetcher) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		logger.Log.Fatalw("Failed to load configuration", zap.Error(err))
	}

	s, err := store.Open(cfg.DatabasePath)
	if err != nil {
		logger.Log.Fatalw("Failed to open metadata cache", zap.Error(err))
	}
	logger.Log.Infow("Metadata cache opened", zap.String("path", cfg.DatabasePath))

	client, err := cfwidget.NewClient(cfg)
	if err != nil {
		logger.Log.Fatalw("Failed to create cfwidget client", zap.Error(err))
	}

	return cfg, store.NewFetcher(client, s, cfg, logger.Log)
}

// newRenderer builds the configured rendering backend. The returned release
// function tears down backend resources and is safe to call once at exit.
func newRenderer(cfg config.Config) (render.Renderer, func()) {
	switch cfg.RenderBackend {
	case "native":
		return render.Limit(render.NewNative(cfg, logger.Log), cfg.MaxConcurrentRenders), func() {}
	default:
		c := render.NewChromium(cfg, logger.Log)
		return render.Limit(c, cfg.MaxConcurrentRenders), c.Shutdown
	}
}
