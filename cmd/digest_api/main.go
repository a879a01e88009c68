// Package main Game Herald API
// @title Game Herald API
// @version 1.0
// @description Previews the daily game update digest without sending mail
// @license.name Apache 2.0
// @license.url https://opensource.org/licenses/Apache-2.0
// @BasePath /
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/DjordjeVuckovic/game-herald/internal/api/router"
	"github.com/DjordjeVuckovic/game-herald/internal/api/server"
	"github.com/DjordjeVuckovic/game-herald/internal/app"
	"github.com/DjordjeVuckovic/game-herald/internal/apperr"
	"github.com/DjordjeVuckovic/game-herald/internal/processor"
	"github.com/DjordjeVuckovic/game-herald/internal/report"
	"github.com/DjordjeVuckovic/game-herald/internal/source"
	"github.com/DjordjeVuckovic/game-herald/internal/storage"
	"github.com/DjordjeVuckovic/game-herald/internal/storage/factory"
	pkgserver "github.com/DjordjeVuckovic/game-herald/pkg/server"
	"github.com/labstack/echo/v4"
)

func main() {
	cfg, err := NewAppConfig().Load()
	if err != nil {
		slog.Error("Failed to load app configuration", "error", err)
		os.Exit(1)
	}
	slog.SetLogLoggerLevel(cfg.LogLevel)

	tracking, err := app.LoadTracking(cfg.TrackingPath)
	if err != nil {
		slog.Error("Failed to load tracking configuration", "error", err, "path", cfg.TrackingPath)
		os.Exit(1)
	}

	history, err := factory.NewHistory(context.Background(), &cfg.StorageConfig)
	if err != nil {
		slog.Error("Failed to create history store", "error", err)
		os.Exit(1)
	}

	var checkers []pkgserver.HealthChecker
	if hc, ok := history.(pkgserver.HealthChecker); ok {
		checkers = append(checkers, hc)
	}

	s := server.New(&cfg.Server, pkgserver.NewCompositeHealthChecker(checkers...)).
		SetupMiddlewares().
		SetupErrorHandler().
		SetupHealthChecks("/health")

	s.Echo.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "game-herald API is running")
	})

	client := source.NewHTTPClient(cfg.HTTPTimeout)
	preview := func(ctx context.Context, games []string) (*processor.Outcome, error) {
		selected, err := tracking.Only(games)
		if err != nil {
			return nil, apperr.NewValidationWrap("invalid game selection", err)
		}

		opts := []processor.PipelineOption{processor.WithDryRun()}
		if history != nil {
			opts = append(opts, processor.WithHistory(readOnly{history}))
		}

		p, err := app.NewPipeline(selected, client, report.NewCaptureReporter(), opts...)
		if err != nil {
			return nil, err
		}
		return p.Execute(ctx)
	}

	router.NewDigestRouter(s.Echo, tracking.GameNames(), preview).Bind()

	go func() {
		<-s.ShutdownSignal()
		slog.Info("Shutdown started, cleaning up resources...")
	}()

	err = s.Start()
	if history != nil {
		if cerr := history.Close(); cerr != nil {
			slog.Error("Failed to close history store", "error", cerr)
		}
	}
	if err != nil {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}

// readOnly lets previews consult history without Stop closing the shared store.
type readOnly struct {
	storage.History
}

func (readOnly) Close() error { return nil }
