package source

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/DjordjeVuckovic/game-herald/internal/domain"
	"github.com/DjordjeVuckovic/game-herald/pkg/stringsutil"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const (
	weiboDetailURL = "https://m.weibo.cn/detail/"
	weiboTitleLen  = 60
)

type weiboResponse struct {
	OK   int `json:"ok"`
	Data struct {
		Cards []struct {
			CardType int         `json:"card_type"`
			Mblog    *weiboMblog `json:"mblog"`
		} `json:"cards"`
	} `json:"data"`
}

type weiboMblog struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
	User      struct {
		ScreenName string `json:"screen_name"`
	} `json:"user"`
}

// WeiboAdapter reads an account timeline from the Weibo mobile container API.
type WeiboAdapter struct {
	cfg    domain.SourceConfig
	client *resty.Client
}

func NewWeiboAdapter(cfg domain.SourceConfig, client *resty.Client) *WeiboAdapter {
	return &WeiboAdapter{cfg: cfg, client: client}
}

func (a *WeiboAdapter) Name() string {
	return labelOr(a.cfg.Label, "微博")
}

func (a *WeiboAdapter) Fetch(ctx context.Context, game domain.Game) Result {
	body, err := fetchBody(ctx, a.client, a.cfg.URL, map[string]string{
		"Accept":           "application/json, text/plain, */*",
		"X-Requested-With": "XMLHttpRequest",
		"MWeibo-Pwa":       "1",
	})
	if err != nil {
		return Failure(a.Name(), err)
	}

	var resp weiboResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Failure(a.Name(), fmt.Errorf("%w: %v", ErrUpstreamPayload, err))
	}
	if resp.OK != 1 {
		return Failure(a.Name(), fmt.Errorf("%w: ok=%d", ErrUpstreamPayload, resp.OK))
	}

	var items []domain.RawItem
	for _, card := range resp.Data.Cards {
		if card.CardType != 9 || card.Mblog == nil {
			continue
		}
		title := weiboTitle(card.Mblog.Text)
		if title == "" {
			continue
		}
		link := ""
		if card.Mblog.ID != "" {
			link = weiboDetailURL + card.Mblog.ID
		}
		items = append(items, domain.RawItem{
			Title:           title,
			Link:            link,
			Published:       card.Mblog.CreatedAt,
			PublishedLayout: time.RubyDate,
			SourceLabel:     labelOr(card.Mblog.User.ScreenName, a.Name()),
			FallbackLink:    a.cfg.BaseURL,
		})
	}
	return Success(a.Name(), items)
}

// weiboTitle turns the HTML body of a post into a one-line title.
func weiboTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("br").ReplaceWithHtml(" ")
	text := stringsutil.CollapseSpace(doc.Text())
	if p := stringsutil.Prefix(text, weiboTitleLen); p != text {
		return p + "…"
	}
	return text
}
