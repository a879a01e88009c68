// Package app assembles the digest pipeline from configuration. Both the CLI
// and the preview API build their runs through it.
package app

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/DjordjeVuckovic/game-herald/internal/collector"
	"github.com/DjordjeVuckovic/game-herald/internal/config"
	"github.com/DjordjeVuckovic/game-herald/internal/dedup"
	"github.com/DjordjeVuckovic/game-herald/internal/filter"
	"github.com/DjordjeVuckovic/game-herald/internal/normalizer"
	"github.com/DjordjeVuckovic/game-herald/internal/processor"
	"github.com/DjordjeVuckovic/game-herald/internal/report"
	"github.com/go-resty/resty/v2"
)

const DefaultTrackingPath = "configs/tracking.yaml"

// LoadTracking reads and validates the tracked games file.
func LoadTracking(path string) (*config.Tracking, error) {
	if path == "" {
		path = DefaultTrackingPath
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open tracking config: %w", err)
	}
	defer file.Close()

	return config.NewYAMLConfigLoader(file).Load(true)
}

// NewPipeline wires collector, normalizer, filter and deduplicator for the
// given tracking configuration. The digest is dated in the configured timezone.
func NewPipeline(
	tracking *config.Tracking,
	client *resty.Client,
	reporter report.Reporter,
	opts ...processor.PipelineOption,
) (*processor.DigestPipeline, error) {
	loc, err := tracking.Location()
	if err != nil {
		return nil, err
	}

	n := normalizer.New(normalizer.WithLocation(loc))

	c, err := collector.NewAnnouncementCollector(tracking.Games, client, n)
	if err != nil {
		return nil, fmt.Errorf("failed to create collector: %w", err)
	}

	clock := func() time.Time { return time.Now().In(loc) }
	all := append([]processor.PipelineOption{processor.WithClock(clock)}, opts...)

	slog.Info("Creating pipeline",
		"games", tracking.GameNames(),
		"window", tracking.RecencyWindow,
		"dedup_prefix", tracking.DedupPrefix,
		"reporter", reporter.Name(),
	)

	return processor.NewPipeline(
		c,
		filter.NewRelevance(tracking.FilterConfig()),
		dedup.New(tracking.DedupPrefix),
		reporter,
		all...,
	), nil
}

// ParseLogLevel maps LOG_LEVEL values to slog levels, defaulting to info.
func ParseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseTimeout reads a duration such as "15s", falling back to def when empty.
func ParseTimeout(raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive: %q", raw)
	}
	return d, nil
}
