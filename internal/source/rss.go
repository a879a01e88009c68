package source

import (
	"context"
	"fmt"
	"time"

	"github.com/DjordjeVuckovic/game-herald/internal/domain"
	"github.com/go-resty/resty/v2"
	"github.com/mmcdole/gofeed"
)

// RSSAdapter reads RSS and Atom feeds, including RSSHub routes and Google News
// search feeds.
type RSSAdapter struct {
	cfg    domain.SourceConfig
	client *resty.Client
	parser *gofeed.Parser
}

func NewRSSAdapter(cfg domain.SourceConfig, client *resty.Client) *RSSAdapter {
	return &RSSAdapter{
		cfg:    cfg,
		client: client,
		parser: gofeed.NewParser(),
	}
}

func (a *RSSAdapter) Name() string {
	return labelOr(a.cfg.Label, "RSS")
}

func (a *RSSAdapter) Fetch(ctx context.Context, game domain.Game) Result {
	body, err := fetchBody(ctx, a.client, a.cfg.URL, map[string]string{
		"Accept": "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8",
	})
	if err != nil {
		return Failure(a.Name(), err)
	}

	feed, err := a.parser.ParseString(string(body))
	if err != nil {
		return Failure(a.Name(), fmt.Errorf("%w: %v", ErrUpstreamPayload, err))
	}

	fallback := a.cfg.BaseURL
	if fallback == "" {
		fallback = feed.Link
	}

	items := make([]domain.RawItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		published, layout := entryTime(entry)
		items = append(items, domain.RawItem{
			Title:           entry.Title,
			Link:            entry.Link,
			Published:       published,
			PublishedLayout: layout,
			SourceLabel:     entryLabel(entry, a.Name()),
			FallbackLink:    fallback,
		})
	}
	return Success(a.Name(), items)
}

// entryTime prefers the parsed timestamp, returned with its layout, and falls
// back to the raw text so the normalizer can still parse it.
func entryTime(entry *gofeed.Item) (string, string) {
	switch {
	case entry.PublishedParsed != nil:
		return entry.PublishedParsed.Format(time.RFC3339), time.RFC3339
	case entry.UpdatedParsed != nil:
		return entry.UpdatedParsed.Format(time.RFC3339), time.RFC3339
	case entry.Published != "":
		return entry.Published, ""
	default:
		return entry.Updated, ""
	}
}

func entryLabel(entry *gofeed.Item, fallback string) string {
	if entry.Author != nil && entry.Author.Name != "" {
		return entry.Author.Name
	}
	return fallback
}
