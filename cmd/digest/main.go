package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/DjordjeVuckovic/game-herald/internal/app"
	"github.com/DjordjeVuckovic/game-herald/internal/config"
	"github.com/DjordjeVuckovic/game-herald/internal/processor"
	"github.com/DjordjeVuckovic/game-herald/internal/report"
	"github.com/DjordjeVuckovic/game-herald/internal/source"
	"github.com/DjordjeVuckovic/game-herald/internal/storage/factory"
	"github.com/DjordjeVuckovic/game-herald/pkg/schema"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "digest",
		Short:        "Collect game update announcements and send a daily digest",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "Tracked games YAML (default $TRACKING_CONFIG_PATH or configs/tracking.yaml)")

	root.AddCommand(runCmd(), previewCmd(), schemaCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch, filter and report today's announcements",
		RunE: func(cmd *cobra.Command, args []string) error {
			reporter, _ := cmd.Flags().GetString("reporter")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			if dryRun && reporter == "" {
				reporter = string(report.Console)
			}
			return execute(cmd, reporter, dryRun, true)
		},
	}
	cmd.Flags().String("reporter", "", "email or console (default $REPORTER or email)")
	cmd.Flags().Bool("dry-run", false, "Print the digest to the console without sending it or recording history")
	return cmd
}

func previewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "Print the digest to the console without sending mail",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, string(report.Console), false, false)
		},
	}
}

func schemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Write the JSON schema of the tracking configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")

			doc, err := schema.NewGenerator().GenerateJSONSchema(config.Tracking{})
			if err != nil {
				return fmt.Errorf("failed to generate schema: %w", err)
			}

			if out == "" || out == "-" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), doc)
				return err
			}
			if err := os.WriteFile(out, []byte(doc+"\n"), 0o644); err != nil {
				return fmt.Errorf("failed to write schema: %w", err)
			}
			slog.Info("Schema generated", "path", out)
			return nil
		},
	}
	cmd.Flags().StringP("out", "o", "", "Output file (default stdout)")
	return cmd
}

func execute(cmd *cobra.Command, reporterKind string, dryRun, useHistory bool) error {
	cfg, err := NewAppConfig().Load(reporterKind)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	slog.SetLogLoggerLevel(cfg.LogLevel)

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg.TrackingPath = path
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracking, err := app.LoadTracking(cfg.TrackingPath)
	if err != nil {
		slog.Error("failed to load tracking configuration", "error", err, "path", cfg.TrackingPath)
		return err
	}

	var opts []processor.PipelineOption
	if dryRun {
		opts = append(opts, processor.WithDryRun(), processor.WithPreviewReporter(report.NewConsoleReporter()))
	}
	if useHistory {
		history, err := factory.NewHistory(ctx, &cfg.StorageConfig)
		if err != nil {
			slog.Error("failed to create history store", "error", err, "type", cfg.StorageConfig.Type)
			return err
		}
		if history != nil {
			opts = append(opts, processor.WithHistory(history))
		}
	}

	pipeline, err := app.NewPipeline(tracking, source.NewHTTPClient(cfg.HTTPTimeout), newReporter(cfg), opts...)
	if err != nil {
		slog.Error("failed to create pipeline", "error", err)
		return err
	}
	defer pipeline.Stop()

	if err := pipeline.Run(ctx); err != nil {
		slog.Error("failed to run pipeline", "error", err)
		return err
	}
	return nil
}

func newReporter(cfg *DigestConfig) report.Reporter {
	if cfg.Reporter == report.Console {
		return report.NewConsoleReporter()
	}
	return report.NewEmailReporter(*cfg.SMTP)
}
