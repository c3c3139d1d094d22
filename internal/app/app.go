package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/chitlens/internal/common"
	"github.com/bobmcallan/chitlens/internal/interfaces"
	"github.com/bobmcallan/chitlens/internal/services/analytics"
	"github.com/bobmcallan/chitlens/internal/storage"
)

// App holds the initialized store and services.
// It is the shared core used by both cmd/chitlens-server and cmd/chitlens.
type App struct {
	Config      *common.Config
	Logger      *common.Logger
	Store       interfaces.FundStore
	Analytics   interfaces.AnalyticsService
	StartupTime time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// ResolveConfigPath picks the config file: the given path, then CHITLENS_CONFIG,
// then chitlens.toml next to the binary, then config/chitlens.toml.
func ResolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("CHITLENS_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "chitlens.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/chitlens.toml" // fallback for development
		}
	}
	return configPath
}

// NewApp loads configuration and initializes logging, storage and services.
// configPath may be empty, in which case ResolveConfigPath decides.
func NewApp(configPath string) (*App, error) {
	common.LoadVersionFromFile()

	config, err := common.LoadConfig(ResolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)
	return NewAppWithConfig(context.Background(), config, logger)
}

// NewAppWithConfig initializes the app from an already loaded config.
func NewAppWithConfig(ctx context.Context, config *common.Config, logger *common.Logger) (*App, error) {
	startupStart := time.Now()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	store, err := storage.NewFundStore(ctx, logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	a := &App{
		Config:      config,
		Logger:      logger,
		Store:       store,
		Analytics:   analytics.NewService(store, config.Analytics, logger),
		StartupTime: time.Now(),
	}

	logger.Info().
		Str("storage", config.Storage.Backend).
		Str("location", config.Storage.Location()).
		Dur("startup", time.Since(startupStart)).
		Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close fund store")
		}
		a.Store = nil
	}
}
