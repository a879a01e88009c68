package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/DjordjeVuckovic/game-herald/internal/domain"
	"github.com/DjordjeVuckovic/game-herald/pkg/stringsutil"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

var ErrMissingSelectors = errors.New("html source requires selectors.item and selectors.title")

// HTMLAdapter scrapes listing pages such as TapTap forums with CSS selectors.
type HTMLAdapter struct {
	cfg    domain.SourceConfig
	client *resty.Client
}

func NewHTMLAdapter(cfg domain.SourceConfig, client *resty.Client) (*HTMLAdapter, error) {
	if cfg.Selectors == nil || cfg.Selectors.Item == "" || cfg.Selectors.Title == "" {
		return nil, ErrMissingSelectors
	}
	return &HTMLAdapter{cfg: cfg, client: client}, nil
}

func (a *HTMLAdapter) Name() string {
	return labelOr(a.cfg.Label, "网页")
}

func (a *HTMLAdapter) Fetch(ctx context.Context, game domain.Game) Result {
	body, err := fetchBody(ctx, a.client, a.cfg.URL, map[string]string{
		"Accept": "text/html,application/xhtml+xml",
	})
	if err != nil {
		return Failure(a.Name(), err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Failure(a.Name(), fmt.Errorf("%w: %v", ErrUpstreamPayload, err))
	}

	fallback := firstNonEmpty(a.cfg.BaseURL, a.cfg.URL)
	sel := a.cfg.Selectors

	var items []domain.RawItem
	doc.Find(sel.Item).Each(func(_ int, s *goquery.Selection) {
		title := stringsutil.CollapseSpace(s.Find(sel.Title).First().Text())
		if title == "" {
			return
		}

		linkSel := s
		if sel.Link != "" {
			linkSel = s.Find(sel.Link).First()
		}
		link, _ := linkSel.Attr("href")

		published := ""
		if sel.Date != "" {
			dateSel := s.Find(sel.Date).First()
			published = firstNonEmpty(attr(dateSel, "datetime"), strings.TrimSpace(dateSel.Text()))
		}

		items = append(items, domain.RawItem{
			Title:           title,
			Link:            link,
			Published:       published,
			PublishedLayout: sel.DateLayout,
			SourceLabel:     a.Name(),
			FallbackLink:    fallback,
		})
	})

	return Success(a.Name(), items)
}

func attr(s *goquery.Selection, name string) string {
	v, _ := s.Attr(name)
	return v
}
