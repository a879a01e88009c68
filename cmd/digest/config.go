package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/DjordjeVuckovic/game-herald/internal/app"
	"github.com/DjordjeVuckovic/game-herald/internal/report"
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

type DigestConfig struct {
	LogLevel      slog.Level
	TrackingPath  string
	HTTPTimeout   time.Duration
	Reporter      report.Kind
	SMTP          *report.SMTPConfig
	StorageConfig factory.StorageConfig
}

// Load reads the environment. reporter overrides REPORTER when non-empty.
func (as *AppConfig) Load(reporter string) (*DigestConfig, error) {
	err := env.LoadDotEnv(as.ENV, "cmd/digest/.env")
	if err != nil {
		slog.Info("Failed to .env load environment variables, continuing with existing environment variables", "error", err)
	}

	if reporter == "" {
		reporter = os.Getenv("REPORTER")
	}
	kind, err := report.ParseKind(reporter)
	if err != nil {
		return nil, err
	}

	timeout, err := app.ParseTimeout(os.Getenv("HTTP_TIMEOUT"), defaultHTTPTimeout)
	if err != nil {
		return nil, err
	}

	cfg := &DigestConfig{
		LogLevel:     app.ParseLogLevel(os.Getenv("LOG_LEVEL")),
		TrackingPath: env.GetOr("TRACKING_CONFIG_PATH", app.DefaultTrackingPath),
		HTTPTimeout:  timeout,
		Reporter:     kind,
	}

	if kind == report.Email {
		smtpCfg, err := report.LoadSMTPEnv()
		if err != nil {
			slog.Error("Failed to load SMTP configuration from environment", "error", err)
			return nil, err
		}
		cfg.SMTP = smtpCfg
	}

	storageCfg, err := factory.LoadEnv()
	if err != nil {
		slog.Error("Failed to load storage configuration from environment", "error", err)
		return nil, err
	}
	cfg.StorageConfig = *storageCfg

	return cfg, nil
}
