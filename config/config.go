package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// Values are loaded by Viper from a config file and/or environment variables.
type Config struct {
	ListenAddr           string `mapstructure:"LISTEN_ADDR"`
	UpstreamURL          string `mapstructure:"UPSTREAM_URL"`
	UserAgent            string `mapstructure:"USERAGENT"`
	RevalidateSeconds    int    `mapstructure:"REVALIDATE_SECONDS"`
	StaleIfErrorSeconds  int    `mapstructure:"STALE_IF_ERROR_SECONDS"`
	RenderTimeoutSeconds int    `mapstructure:"RENDER_TIMEOUT_SECONDS"`
	RenderBackend        string `mapstructure:"RENDER_BACKEND"`
	MaxConcurrentRenders int    `mapstructure:"MAX_CONCURRENT_RENDERS"`
	CacheDir             string `mapstructure:"CACHE_DIR"`
	PopularityCache      bool   `mapstructure:"POPULARITY_CACHE"`
	JPEGQuality          int    `mapstructure:"JPEG_QUALITY"`
	FontPath             string `mapstructure:"FONT_PATH"`
	FontBoldPath         string `mapstructure:"FONT_BOLD_PATH"`
	DatabasePath         string `mapstructure:"-"` // Not from env, derived
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)   // Path to look for the config file in
	viper.SetConfigName(".env") // Name of config file (without extension)
	viper.SetConfigType("env")  // REQUIRED if the config file does not have the extension in the name

	vipErr := viper.ReadInConfig()
	if _, ok := vipErr.(viper.ConfigFileNotFoundError); ok {
		slog.Info("Config file (.env) not found, relying on environment variables.")
	} else if vipErr != nil {
		return Config{}, fmt.Errorf("fatal error config file: %w", vipErr)
	}

	// Bind environment variables automatically.
	// Viper will check for an environment variable matching the key name (e.g., UPSTREAM_URL)
	viper.AutomaticEnv()

	for _, key := range []string{
		"LISTEN_ADDR",
		"UPSTREAM_URL",
		"USERAGENT",
		"REVALIDATE_SECONDS",
		"STALE_IF_ERROR_SECONDS",
		"RENDER_TIMEOUT_SECONDS",
		"RENDER_BACKEND",
		"MAX_CONCURRENT_RENDERS",
		"CACHE_DIR",
		"POPULARITY_CACHE",
		"JPEG_QUALITY",
		"FONT_PATH",
		"FONT_BOLD_PATH",
	} {
		if bindErr := viper.BindEnv(key); bindErr != nil {
			slog.Warn("Unable to bind env var", "key", key, "error", bindErr)
		}
	}

	// Unmarshal the config
	if vipErr = viper.Unmarshal(&config); vipErr != nil {
		return Config{}, fmt.Errorf("unable to decode into struct, %w", vipErr)
	}

	// POPULARITY_CACHE is a bool coming from an env string; check the raw
	// value so empty means "off" instead of a parse warning.
	popStr := viper.GetString("POPULARITY_CACHE")
	if popStr == "" {
		config.PopularityCache = false
	} else if pop, parseErr := strconv.ParseBool(popStr); parseErr != nil {
		slog.Warn("Invalid value for POPULARITY_CACHE ('"+popStr+"'), defaulting to false.", "error", parseErr)
		config.PopularityCache = false
	} else {
		config.PopularityCache = pop
	}

	processConfigDefaults(&config)

	if err := validateAndEnsureDirectories(&config); err != nil {
		return Config{}, err
	}

	return config, nil
}

// processConfigDefaults fills in defaults for anything the environment left unset.
func processConfigDefaults(config *Config) {
	if config.ListenAddr == "" {
		config.ListenAddr = ":8080"
	}
	if config.UpstreamURL == "" {
		config.UpstreamURL = "https://api.cfwidget.com"
	}
	if config.UserAgent == "" {
		config.UserAgent = "curseforge-badges/dev (unknown-contact)"
		slog.Warn("USERAGENT not set in config or environment, using default.")
	}
	if config.RevalidateSeconds <= 0 {
		config.RevalidateSeconds = 3600
	}
	if config.StaleIfErrorSeconds <= 0 {
		config.StaleIfErrorSeconds = 7200
	}
	if config.RenderTimeoutSeconds <= 0 {
		config.RenderTimeoutSeconds = 9
	}
	if config.RenderBackend == "" {
		config.RenderBackend = "chromium"
	}
	if config.JPEGQuality <= 0 || config.JPEGQuality > 100 {
		config.JPEGQuality = 90
	}
	if config.FontPath == "" {
		config.FontPath = "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf"
	}
	if config.FontBoldPath == "" {
		config.FontBoldPath = "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf"
	}
	if config.CacheDir == "" {
		config.CacheDir = "data"
	}
}

// validateAndEnsureDirectories checks required settings and creates the cache directory.
func validateAndEnsureDirectories(config *Config) error {
	if config.RenderBackend != "chromium" && config.RenderBackend != "native" {
		slog.Error("RENDER_BACKEND must be 'chromium' or 'native'", "value", config.RenderBackend)
		return fmt.Errorf("invalid RENDER_BACKEND %q", config.RenderBackend)
	}

	if _, err := os.Stat(config.CacheDir); os.IsNotExist(err) {
		slog.Info("Cache directory does not exist, creating it", "path", config.CacheDir)
		if err := os.MkdirAll(config.CacheDir, 0755); err != nil {
			slog.Error("Failed to create cache directory", "path", config.CacheDir, "error", err)
			return err
		}
	} else if err != nil {
		slog.Error("Failed to check cache directory", "path", config.CacheDir, "error", err)
		return err
	}

	// Derive DatabasePath (metadata cache lives alongside any other cached state)
	config.DatabasePath = filepath.Join(config.CacheDir, "projects.db")

	return nil
}
