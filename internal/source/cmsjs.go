package source

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/DjordjeVuckovic/game-herald/internal/domain"
	"github.com/go-resty/resty/v2"
)

// ErrNoMatch is returned when a script contains no recognizable records.
var ErrNoMatch = errors.New("no records found in script")

// CMS field names used by Tencent game sites.
const (
	cmsTitle    = "sTitle"
	cmsURL      = "sRedirectURL"
	cmsID       = "iNewsId"
	cmsIdxTime  = "sIdxTime"
	cmsCreated  = "sCreated"
	cmsCategory = "sCategoryName"
)

var (
	cmsBlock = regexp.MustCompile(`\{[^{}]*\}`)
	cmsPair  = regexp.MustCompile(`["']?([A-Za-z_]\w*)["']?\s*:\s*("(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*'|-?\d+(?:\.\d+)?)`)
)

// CMSRecord is one flat record lifted out of a script.
type CMSRecord map[string]string

// ParseCMSRecords extracts flat records from JavaScript that embeds CMS data.
//
// Expected grammar: the script holds one or more brace-delimited objects with
// no nested braces, each a comma separated list of field:value pairs. Field
// names are identifiers, optionally quoted. Values are single or double quoted
// strings or numbers. String values are returned without their quotes and with
// escape sequences left as-is. Objects lacking an sTitle field are ignored.
// When variable is set, parsing starts at its first assignment.
func ParseCMSRecords(script, variable string) ([]CMSRecord, error) {
	if variable != "" {
		idx := strings.Index(script, variable)
		if idx < 0 {
			return nil, fmt.Errorf("%w: variable %q not present", ErrNoMatch, variable)
		}
		script = script[idx:]
	}

	var records []CMSRecord
	for _, block := range cmsBlock.FindAllString(script, -1) {
		rec := CMSRecord{}
		for _, m := range cmsPair.FindAllStringSubmatch(block, -1) {
			rec[m[1]] = unquote(m[2])
		}
		if rec[cmsTitle] != "" {
			records = append(records, rec)
		}
	}

	if len(records) == 0 {
		return nil, ErrNoMatch
	}
	return records, nil
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') {
		return v[1 : len(v)-1]
	}
	return v
}

// CMSJSAdapter reads the news list scripts served by Tencent game sites.
type CMSJSAdapter struct {
	cfg    domain.SourceConfig
	client *resty.Client
}

func NewCMSJSAdapter(cfg domain.SourceConfig, client *resty.Client) *CMSJSAdapter {
	return &CMSJSAdapter{cfg: cfg, client: client}
}

func (a *CMSJSAdapter) Name() string {
	return labelOr(a.cfg.Label, "官网")
}

func (a *CMSJSAdapter) Fetch(ctx context.Context, game domain.Game) Result {
	body, err := fetchBody(ctx, a.client, a.cfg.URL, map[string]string{"Referer": a.cfg.BaseURL})
	if err != nil {
		return Failure(a.Name(), err)
	}

	records, err := ParseCMSRecords(string(body), a.cfg.Variable)
	if err != nil {
		return Failure(a.Name(), err)
	}

	items := make([]domain.RawItem, 0, len(records))
	for _, rec := range records {
		items = append(items, domain.RawItem{
			Title:        rec[cmsTitle],
			Link:         cmsLink(rec),
			Published:    firstNonEmpty(rec[cmsIdxTime], rec[cmsCreated]),
			SourceLabel:  labelOr(rec[cmsCategory], a.Name()),
			FallbackLink: a.cfg.BaseURL,
		})
	}
	return Success(a.Name(), items)
}

// cmsLink prefers the explicit redirect and otherwise builds the detail page
// path, which the normalizer resolves against the list page.
func cmsLink(rec CMSRecord) string {
	if u := strings.ReplaceAll(rec[cmsURL], `\/`, "/"); u != "" {
		return u
	}
	if id := rec[cmsID]; id != "" {
		return "newsdetail.shtml?tid=" + id
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
