package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/DjordjeVuckovic/game-herald/internal/api/server"
	"github.com/DjordjeVuckovic/game-herald/internal/app"
	"github.com/DjordjeVuckovic/game-herald/internal/storage/factory"
	"github.com/DjordjeVuckovic/game-herald/pkg/config/env"
)

const defaultHTTPTimeout = 15 * time.Second

type AppConfig struct {
	ENV string
}

func NewAppConfig() *AppConfig {
	return &AppConfig{
		ENV: os.Getenv("ENV"),
	}
}

type DigestAPIConfig struct {
	LogLevel      slog.Level
	TrackingPath  string
	HTTPTimeout   time.Duration
	Server        server.Config
	StorageConfig factory.StorageConfig
}

func (as *AppConfig) Load() (*DigestAPIConfig, error) {
	err := env.LoadDotEnv(as.ENV, "cmd/digest_api/.env")
	if err != nil {
		slog.Info("Failed to .env load environment variables, continuing with existing environment variables", "error", err)
	}

	sCfg, err := server.LoadConfig()
	if err != nil {
		slog.Error("Failed to load server configuration", "error", err)
		return nil, err
	}

	timeout, err := app.ParseTimeout(os.Getenv("HTTP_TIMEOUT"), defaultHTTPTimeout)
	if err != nil {
		return nil, err
	}

	storageCfg, err := factory.LoadEnv()
	if err != nil {
		slog.Error("Failed to load storage configuration from environment", "error", err)
		return nil, err
	}

	return &DigestAPIConfig{
		LogLevel:      app.ParseLogLevel(os.Getenv("LOG_LEVEL")),
		TrackingPath:  env.GetOr("TRACKING_CONFIG_PATH", app.DefaultTrackingPath),
		HTTPTimeout:   timeout,
		Server:        *sCfg,
		StorageConfig: *storageCfg,
	}, nil
}
