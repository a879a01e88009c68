package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/DjordjeVuckovic/game-herald/internal/collector"
	"github.com/DjordjeVuckovic/game-herald/internal/dedup"
	"github.com/DjordjeVuckovic/game-herald/internal/domain"
	"github.com/DjordjeVuckovic/game-herald/internal/filter"
	"github.com/DjordjeVuckovic/game-herald/internal/report"
	"github.com/DjordjeVuckovic/game-herald/internal/storage"
)

// Pipeline defines the interface for data processing pipelines
type Pipeline interface {
	// Run executes the pipeline with the given context
	Run(ctx context.Context) error

	// Stop gracefully stops the pipeline
	Stop()
}

// PipelineConfig defines configuration for pipelines
type PipelineConfig struct {
	Name string
	// DryRun builds the digest without handing it to the reporter or recording history.
	DryRun bool
}

// Stats counts what happened to announcements at each stage of a run.
type Stats struct {
	Sources         int                   `json:"sources"`
	FailedSources   int                   `json:"failedSources"`
	Fetched         int                   `json:"fetched"`
	Kept            int                   `json:"kept"`
	Rejected        map[filter.Reason]int `json:"rejected,omitempty"`
	Duplicates      int                   `json:"duplicates"`
	AlreadyReported int                   `json:"alreadyReported"`
	Reported        int                   `json:"reported"`
}

// Outcome is the result of one run.
type Outcome struct {
	Digest report.Digest `json:"digest"`
	Stats  Stats         `json:"stats"`
	Sent   bool          `json:"sent"`
}

// DigestPipeline runs fetch, normalize, filter, dedup, rank and report once.
type DigestPipeline struct {
	collector collector.Collector[collector.Batch]
	relevance *filter.Relevance
	dedup     *dedup.Deduplicator
	reporter  report.Reporter
	preview   report.Reporter
	history   storage.History
	config    *PipelineConfig
	now       func() time.Time
}

type PipelineOption func(pipeline *DigestPipeline)

// WithHistory skips announcements reported by earlier runs and records new ones.
func WithHistory(h storage.History) PipelineOption {
	return func(pipeline *DigestPipeline) {
		pipeline.history = h
	}
}

// WithConfig sets custom pipeline configuration
func WithConfig(config *PipelineConfig) PipelineOption {
	return func(pipeline *DigestPipeline) {
		pipeline.config = config
	}
}

func WithDryRun() PipelineOption {
	return func(pipeline *DigestPipeline) {
		pipeline.config.DryRun = true
	}
}

// WithPreviewReporter renders the digest of a dry run, typically to the console.
// The delivery reporter is never called in a dry run.
func WithPreviewReporter(r report.Reporter) PipelineOption {
	return func(pipeline *DigestPipeline) {
		pipeline.preview = r
	}
}

// WithClock sets the clock that dates the digest.
func WithClock(now func() time.Time) PipelineOption {
	return func(pipeline *DigestPipeline) {
		pipeline.now = now
	}
}

func NewPipeline(
	c collector.Collector[collector.Batch],
	relevance *filter.Relevance,
	d *dedup.Deduplicator,
	reporter report.Reporter,
	opts ...PipelineOption,
) *DigestPipeline {
	p := &DigestPipeline{
		collector: c,
		relevance: relevance,
		dedup:     d,
		reporter:  reporter,
		config: &PipelineConfig{
			Name: "digest-pipeline",
		},
		now: time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Run executes the pipeline
func (p *DigestPipeline) Run(ctx context.Context) error {
	_, err := p.Execute(ctx)
	return err
}

// Execute runs the pipeline and returns the digest it produced, sent or not.
func (p *DigestPipeline) Execute(ctx context.Context) (*Outcome, error) {
	start := time.Now()
	slog.Info("🛫 Starting pipeline run",
		"pipeline", p.config.Name,
		"dry_run", p.config.DryRun,
		"history", p.history != nil,
	)

	results, err := p.collector.Collect(ctx)
	if err != nil {
		slog.Error("Error collecting announcements", "error", err, "pipeline", p.config.Name)
		return nil, err
	}

	stats := Stats{Rejected: make(map[filter.Reason]int)}
	kept, failures, err := p.collect(ctx, results, &stats)
	if err != nil {
		return nil, err
	}

	ranked := p.dedup.Process(kept)
	stats.Duplicates = len(kept) - len(ranked)

	ranked = p.excludeReported(ctx, ranked, &stats)

	outcome := &Outcome{
		Digest: report.NewDigest(p.now(), ranked, failures),
	}

	defer func() {
		outcome.Stats = stats
		slog.Info("Pipeline run completed",
			"pipeline", p.config.Name,
			"duration", time.Since(start),
			"sources", stats.Sources,
			"failed_sources", stats.FailedSources,
			"fetched", stats.Fetched,
			"kept", stats.Kept,
			"duplicates", stats.Duplicates,
			"already_reported", stats.AlreadyReported,
			"reported", stats.Reported,
			"sent", outcome.Sent,
		)
	}()

	if outcome.Digest.Empty() {
		if stats.Sources > 0 && stats.FailedSources == stats.Sources {
			slog.Warn("No announcements: every source failed", "pipeline", p.config.Name, "failed_sources", stats.FailedSources)
		} else {
			slog.Info("今日无更新内容, skipping digest", "pipeline", p.config.Name, "failed_sources", stats.FailedSources)
		}
		return outcome, nil
	}

	stats.Reported = outcome.Digest.Count()

	if p.config.DryRun {
		if p.preview == nil {
			return outcome, nil
		}
		if err := p.preview.Report(ctx, outcome.Digest); err != nil {
			slog.Error("Error rendering dry run digest", "error", err, "pipeline", p.config.Name, "reporter", p.preview.Name())
			return outcome, fmt.Errorf("preview digest: %w", err)
		}
		return outcome, nil
	}

	if err := p.reporter.Report(ctx, outcome.Digest); err != nil {
		slog.Error("Error reporting digest", "error", err, "pipeline", p.config.Name, "reporter", p.reporter.Name())
		return outcome, fmt.Errorf("report digest: %w", err)
	}
	outcome.Sent = true

	p.record(ctx, ranked)

	return outcome, nil
}

// collect drains the collector, filtering every batch for its game as it arrives.
func (p *DigestPipeline) collect(ctx context.Context, results <-chan collector.Result[collector.Batch], stats *Stats) ([]domain.Announcement, []report.Failure, error) {
	var kept []domain.Announcement
	var failures []report.Failure

	for {
		select {
		case <-ctx.Done():
			slog.Info("Pipeline context cancelled, stopping collection",
				"pipeline", p.config.Name,
				"sources", stats.Sources,
			)
			return nil, nil, ctx.Err()
		case res, ok := <-results:
			if !ok {
				return kept, failures, nil
			}
			stats.Sources++

			if res.Err != nil {
				stats.FailedSources++
				failures = append(failures, toFailure(res.Err))
				slog.Warn("Source fetch failed", "error", res.Err, "pipeline", p.config.Name)
				continue
			}

			batch := res.Result
			stats.Fetched += len(batch.Announcements)
			for _, a := range batch.Announcements {
				reason := p.relevance.Evaluate(a, batch.Game.Name)
				if reason != filter.Kept {
					stats.Rejected[reason]++
					slog.Debug("Announcement filtered", "game", a.Game, "title", a.Title, "reason", reason)
					continue
				}
				kept = append(kept, a)
				stats.Kept++
			}
			slog.Debug("Source processed",
				"game", batch.Game.Name,
				"source", batch.Source,
				"items", len(batch.Announcements),
			)
		}
	}
}

// excludeReported drops announcements the history store already knows. A
// failing store is logged and ignored so the digest still goes out.
func (p *DigestPipeline) excludeReported(ctx context.Context, items []domain.Announcement, stats *Stats) []domain.Announcement {
	if p.history == nil || len(items) == 0 {
		return items
	}

	seen, err := p.history.Seen(ctx, storage.IDs(items))
	if err != nil {
		slog.Warn("History lookup failed, reporting without it", "error", err, "pipeline", p.config.Name)
		return items
	}

	fresh := make([]domain.Announcement, 0, len(items))
	for _, a := range items {
		if _, ok := seen[a.ID]; ok {
			stats.AlreadyReported++
			continue
		}
		fresh = append(fresh, a)
	}
	return fresh
}

func (p *DigestPipeline) record(ctx context.Context, items []domain.Announcement) {
	if p.history == nil {
		return
	}
	if err := p.history.SaveBulk(ctx, items); err != nil {
		slog.Error("Error recording reported announcements", "error", err, "count", len(items), "pipeline", p.config.Name)
		return
	}
	slog.Debug("Recorded reported announcements", "count", len(items), "pipeline", p.config.Name)
}

// Stop gracefully stops the pipeline
func (p *DigestPipeline) Stop() {
	slog.Info("Stopping pipeline...", "pipeline", p.config.Name)

	if p.history != nil {
		if err := p.history.Close(); err != nil {
			slog.Error("Error closing history store", "error", err, "pipeline", p.config.Name)
		}
		p.history = nil
	}

	slog.Info("Pipeline stopped", "pipeline", p.config.Name)
}

func toFailure(err error) report.Failure {
	var se *collector.SourceError
	if errors.As(err, &se) {
		return report.Failure{Game: se.Game, Source: se.Source, Reason: se.Err.Error()}
	}
	return report.Failure{Reason: err.Error()}
}
