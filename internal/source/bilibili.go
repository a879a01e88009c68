package source

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/DjordjeVuckovic/game-herald/internal/domain"
	"github.com/DjordjeVuckovic/game-herald/pkg/stringsutil"
	"github.com/go-resty/resty/v2"
)

const bilibiliDynamicURL = "https://t.bilibili.com/"

type bilibiliResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Items []bilibiliItem `json:"items"`
	} `json:"data"`
}

type bilibiliItem struct {
	IDStr   string `json:"id_str"`
	Modules struct {
		Author struct {
			Name  string `json:"name"`
			PubTS int64  `json:"pub_ts"`
		} `json:"module_author"`
		Dynamic struct {
			Desc *struct {
				Text string `json:"text"`
			} `json:"desc"`
			Major *struct {
				Archive *struct {
					Title   string `json:"title"`
					JumpURL string `json:"jump_url"`
				} `json:"archive"`
				Opus *struct {
					Title   string `json:"title"`
					JumpURL string `json:"jump_url"`
					Summary struct {
						Text string `json:"text"`
					} `json:"summary"`
				} `json:"opus"`
			} `json:"major"`
		} `json:"module_dynamic"`
	} `json:"modules"`
}

// BilibiliAdapter reads the dynamics feed of an official Bilibili account.
type BilibiliAdapter struct {
	cfg    domain.SourceConfig
	client *resty.Client
}

func NewBilibiliAdapter(cfg domain.SourceConfig, client *resty.Client) *BilibiliAdapter {
	return &BilibiliAdapter{cfg: cfg, client: client}
}

func (a *BilibiliAdapter) Name() string {
	return labelOr(a.cfg.Label, "B站")
}

func (a *BilibiliAdapter) Fetch(ctx context.Context, game domain.Game) Result {
	body, err := fetchBody(ctx, a.client, a.cfg.URL, map[string]string{
		"Referer": "https://www.bilibili.com/",
		"Accept":  "application/json",
	})
	if err != nil {
		return Failure(a.Name(), err)
	}

	var resp bilibiliResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Failure(a.Name(), fmt.Errorf("%w: %v", ErrUpstreamPayload, err))
	}
	if resp.Code != 0 {
		return Failure(a.Name(), fmt.Errorf("%w: code=%d %s", ErrUpstreamPayload, resp.Code, resp.Message))
	}

	var items []domain.RawItem
	for _, it := range resp.Data.Items {
		title, link := bilibiliTitleLink(it)
		if title == "" {
			continue
		}
		published := ""
		if it.Modules.Author.PubTS > 0 {
			published = strconv.FormatInt(it.Modules.Author.PubTS, 10)
		}
		items = append(items, domain.RawItem{
			Title:        title,
			Link:         link,
			Published:    published,
			SourceLabel:  labelOr(it.Modules.Author.Name, a.Name()),
			FallbackLink: a.cfg.BaseURL,
		})
	}
	return Success(a.Name(), items)
}

func bilibiliTitleLink(it bilibiliItem) (string, string) {
	link := ""
	if it.IDStr != "" {
		link = bilibiliDynamicURL + it.IDStr
	}

	dyn := it.Modules.Dynamic
	if dyn.Major != nil {
		if ar := dyn.Major.Archive; ar != nil && ar.Title != "" {
			return ar.Title, firstNonEmpty(ar.JumpURL, link)
		}
		if op := dyn.Major.Opus; op != nil {
			if op.Title != "" {
				return op.Title, firstNonEmpty(op.JumpURL, link)
			}
			if op.Summary.Text != "" {
				return stringsutil.CollapseSpace(op.Summary.Text), firstNonEmpty(op.JumpURL, link)
			}
		}
	}
	if dyn.Desc != nil {
		return stringsutil.CollapseSpace(dyn.Desc.Text), link
	}
	return "", link
}
