package processor

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DjordjeVuckovic/game-herald/internal/collector"
	"github.com/DjordjeVuckovic/game-herald/internal/dedup"
	"github.com/DjordjeVuckovic/game-herald/internal/domain"
	"github.com/DjordjeVuckovic/game-herald/internal/filter"
	"github.com/DjordjeVuckovic/game-herald/internal/normalizer"
	"github.com/DjordjeVuckovic/game-herald/internal/report"
	"github.com/DjordjeVuckovic/game-herald/internal/source"
	"github.com/DjordjeVuckovic/game-herald/internal/storage/in_mem"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

type stubAdapter struct {
	name  string
	items []domain.RawItem
	err   error
}

func (s stubAdapter) Name() string { return s.name }

func (s stubAdapter) Fetch(_ context.Context, _ domain.Game) source.Result {
	if s.err != nil {
		return source.Failure(s.name, s.err)
	}
	return source.Success(s.name, s.items)
}

type failingReporter struct{}

func (failingReporter) Name() string { return "failing" }

func (failingReporter) Report(context.Context, report.Digest) error {
	return errors.New("smtp down")
}

func ago(d time.Duration) string {
	return now.Add(-d).Format(time.RFC3339)
}

func newTestPipeline(games []domain.Game, adapters map[string][]source.Adapter, r report.Reporter, opts ...PipelineOption) *DigestPipeline {
	n := normalizer.New(normalizer.WithClock(clock), normalizer.WithLocation(time.UTC))
	c := collector.NewAnnouncementCollectorWithAdapters(games, adapters, n)
	rel := filter.NewRelevance(filter.Config{
		Window:    24 * time.Hour,
		Keywords:  []string{"更新", "维护"},
		Blacklist: []string{"攻略"},
	}, filter.WithClock(clock))

	opts = append([]PipelineOption{WithClock(clock)}, opts...)
	return NewPipeline(c, rel, dedup.New(dedup.DefaultPrefixLen), r, opts...)
}

func TestDigestPipeline_EndToEnd(t *testing.T) {
	games := []domain.Game{{Name: "王者荣耀", OfficialDomains: []string{"qq.com"}}}
	adapters := map[string][]source.Adapter{
		"王者荣耀": {stubAdapter{name: "rss", items: []domain.RawItem{
			{Title: "王者荣耀更新公告", Link: "https://pvp.qq.com/1", Published: ago(2 * time.Hour)},
			{Title: "王者荣耀更新攻略", Link: "https://pvp.qq.com/2", Published: ago(time.Hour)},
			{Title: "和平精英更新公告", Link: "https://gp.qq.com/3", Published: ago(time.Hour)},
		}}},
	}
	capture := report.NewCaptureReporter()

	outcome, err := newTestPipeline(games, adapters, capture).Execute(context.Background())

	require.NoError(t, err)
	assert.True(t, outcome.Sent)

	digest, ok := capture.Last()
	require.True(t, ok)
	got := digest.Announcements()
	require.Len(t, got, 1)
	assert.Equal(t, "王者荣耀更新公告", got[0].Title)
	assert.True(t, got[0].IsOfficial)

	assert.Equal(t, 3, outcome.Stats.Fetched)
	assert.Equal(t, 1, outcome.Stats.Kept)
	assert.Equal(t, 1, outcome.Stats.Rejected[filter.Blacklisted])
	assert.Equal(t, 1, outcome.Stats.Rejected[filter.MissingGameRef])
	assert.Equal(t, "游戏更新汇总 - 2026-05-01", digest.Subject())
}

func TestDigestPipeline_DedupAndRankAcrossSources(t *testing.T) {
	games := []domain.Game{
		{Name: "王者荣耀", OfficialDomains: []string{"qq.com"}},
		{Name: "穿越火线", OfficialDomains: []string{"cf.qq.com"}},
	}
	adapters := map[string][]source.Adapter{
		"王者荣耀": {
			stubAdapter{name: "news", items: []domain.RawItem{
				{Title: "王者荣耀更新公告 新赛季", Link: "https://news.example.com/a", Published: ago(time.Hour)},
			}},
			stubAdapter{name: "official", items: []domain.RawItem{
				{Title: "王者荣耀更新公告 新赛季上线", Link: "https://pvp.qq.com/a", Published: ago(time.Hour)},
				{Title: "王者荣耀停服维护通知", Link: "https://pvp.qq.com/b", Published: ago(time.Hour)},
			}},
		},
		"穿越火线": {
			stubAdapter{name: "rss", items: []domain.RawItem{
				{Title: "穿越火线版本更新", Link: "https://cf.qq.com/c", Published: ago(time.Hour)},
			}},
		},
	}
	capture := report.NewCaptureReporter()

	outcome, err := newTestPipeline(games, adapters, capture).Execute(context.Background())
	require.NoError(t, err)

	titles := make([]string, 0)
	for _, a := range outcome.Digest.Announcements() {
		titles = append(titles, a.Title)
	}
	// the official duplicate loses to the earlier news item; the remaining official item ranks first
	assert.Equal(t, []string{"王者荣耀停服维护通知", "王者荣耀更新公告 新赛季", "穿越火线版本更新"}, titles)
	assert.Equal(t, 1, outcome.Stats.Duplicates)
}

func TestDigestPipeline_EmptyDigestIsNotReported(t *testing.T) {
	games := []domain.Game{{Name: "第五人格"}}
	adapters := map[string][]source.Adapter{
		"第五人格": {stubAdapter{name: "rss", items: []domain.RawItem{
			{Title: "第五人格更新", Published: ago(48 * time.Hour)},
		}}},
	}
	capture := report.NewCaptureReporter()

	outcome, err := newTestPipeline(games, adapters, capture).Execute(context.Background())

	require.NoError(t, err)
	assert.False(t, outcome.Sent)
	assert.True(t, outcome.Digest.Empty())
	_, reported := capture.Last()
	assert.False(t, reported)
	assert.Equal(t, 1, outcome.Stats.Rejected[filter.TooOld])
}

func TestDigestPipeline_SourceFailuresAreListed(t *testing.T) {
	games := []domain.Game{{Name: "和平精英"}}
	adapters := map[string][]source.Adapter{
		"和平精英": {
			stubAdapter{name: "weibo", err: errors.New("status 403")},
			stubAdapter{name: "rss", items: []domain.RawItem{
				{Title: "和平精英维护公告", Link: "https://gp.qq.com/x", Published: ago(time.Hour)},
			}},
		},
	}
	capture := report.NewCaptureReporter()

	outcome, err := newTestPipeline(games, adapters, capture).Execute(context.Background())

	require.NoError(t, err)
	assert.True(t, outcome.Sent)
	assert.Equal(t, 2, outcome.Stats.Sources)
	assert.Equal(t, 1, outcome.Stats.FailedSources)
	require.Len(t, outcome.Digest.Failures, 1)
	assert.Equal(t, report.Failure{Game: "和平精英", Source: "weibo", Reason: "status 403"}, outcome.Digest.Failures[0])
}

func TestDigestPipeline_AllSourcesFailed(t *testing.T) {
	games := []domain.Game{{Name: "和平精英"}}
	adapters := map[string][]source.Adapter{
		"和平精英": {stubAdapter{name: "weibo", err: errors.New("timeout")}},
	}

	outcome, err := newTestPipeline(games, adapters, report.NewCaptureReporter()).Execute(context.Background())

	require.NoError(t, err)
	assert.False(t, outcome.Sent)
	assert.Equal(t, 1, outcome.Stats.FailedSources)
}

func TestDigestPipeline_ReporterErrorIsReturned(t *testing.T) {
	games := []domain.Game{{Name: "王者荣耀"}}
	adapters := map[string][]source.Adapter{
		"王者荣耀": {stubAdapter{name: "rss", items: []domain.RawItem{
			{Title: "王者荣耀更新", Link: "https://a.example/1", Published: ago(time.Hour)},
		}}},
	}
	history := in_mem.NewInMemStorer()

	p := newTestPipeline(games, adapters, failingReporter{}, WithHistory(history))
	err := p.Run(context.Background())

	assert.Error(t, err)
	assert.Equal(t, 0, history.Len(), "nothing is recorded when the send fails")
}

func TestDigestPipeline_HistorySkipsReported(t *testing.T) {
	games := []domain.Game{{Name: "王者荣耀"}}
	items := []domain.RawItem{
		{Title: "王者荣耀更新公告", Link: "https://a.example/1", Published: ago(time.Hour)},
	}
	adapters := map[string][]source.Adapter{"王者荣耀": {stubAdapter{name: "rss", items: items}}}
	history := in_mem.NewInMemStorer()

	first, err := newTestPipeline(games, adapters, report.NewCaptureReporter(), WithHistory(history)).Execute(context.Background())
	require.NoError(t, err)
	assert.True(t, first.Sent)
	assert.Equal(t, 1, history.Len())

	second, err := newTestPipeline(games, adapters, report.NewCaptureReporter(), WithHistory(history)).Execute(context.Background())
	require.NoError(t, err)
	assert.False(t, second.Sent)
	assert.Equal(t, 1, second.Stats.AlreadyReported)
}

func TestDigestPipeline_DryRunDoesNotReport(t *testing.T) {
	games := []domain.Game{{Name: "王者荣耀"}}
	adapters := map[string][]source.Adapter{
		"王者荣耀": {stubAdapter{name: "rss", items: []domain.RawItem{
			{Title: "王者荣耀维护", Link: "https://a.example/1", Published: ago(time.Hour)},
		}}},
	}
	history := in_mem.NewInMemStorer()

	outcome, err := newTestPipeline(games, adapters, failingReporter{}, WithHistory(history), WithDryRun()).Execute(context.Background())

	require.NoError(t, err)
	assert.False(t, outcome.Sent)
	assert.Equal(t, 1, outcome.Digest.Count())
	assert.Equal(t, 0, history.Len())
}

func TestDigestPipeline_DryRunPrintsPreview(t *testing.T) {
	games := []domain.Game{{Name: "王者荣耀"}}
	adapters := map[string][]source.Adapter{
		"王者荣耀": {stubAdapter{name: "rss", items: []domain.RawItem{
			{Title: "王者荣耀维护公告", Link: "https://a.example/1", Published: ago(time.Hour)},
		}}},
	}
	history := in_mem.NewInMemStorer()
	var buf bytes.Buffer

	outcome, err := newTestPipeline(games, adapters, failingReporter{},
		WithHistory(history),
		WithDryRun(),
		WithPreviewReporter(report.NewConsoleReporter(report.WithWriter(&buf))),
	).Execute(context.Background())

	require.NoError(t, err)
	assert.False(t, outcome.Sent)
	assert.Contains(t, buf.String(), "王者荣耀维护公告")
	assert.Contains(t, buf.String(), "https://a.example/1")
	assert.Equal(t, 0, history.Len())
}

type brokenHistory struct{ *in_mem.InMemStorer }

func (brokenHistory) Seen(context.Context, []uuid.UUID) (map[uuid.UUID]struct{}, error) {
	return nil, errors.New("db unavailable")
}

func TestDigestPipeline_HistoryLookupFailureStillReports(t *testing.T) {
	games := []domain.Game{{Name: "王者荣耀"}}
	adapters := map[string][]source.Adapter{
		"王者荣耀": {stubAdapter{name: "rss", items: []domain.RawItem{
			{Title: "王者荣耀更新", Link: "https://a.example/1", Published: ago(time.Hour)},
		}}},
	}

	outcome, err := newTestPipeline(games, adapters, report.NewCaptureReporter(),
		WithHistory(brokenHistory{in_mem.NewInMemStorer()})).Execute(context.Background())

	require.NoError(t, err)
	assert.True(t, outcome.Sent)
}

func TestDigestPipeline_CancelledContext(t *testing.T) {
	games := []domain.Game{{Name: "王者荣耀"}}
	adapters := map[string][]source.Adapter{"王者荣耀": {stubAdapter{name: "rss"}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestPipeline(games, adapters, report.NewCaptureReporter()).Execute(ctx)

	// the producer may close the channel before the select observes cancellation
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}
