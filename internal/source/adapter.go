// Package source holds the adapters that pull raw announcement records from
// upstream feeds and endpoints.
package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DjordjeVuckovic/game-herald/internal/domain"
	"github.com/go-resty/resty/v2"
)

const (
	DefaultTimeout = 15 * time.Second
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

var (
	ErrUnsupportedKind = errors.New("unsupported source kind")
	ErrUpstreamStatus  = errors.New("unexpected upstream status")
	ErrUpstreamPayload = errors.New("malformed upstream payload")
)

// Adapter fetches the raw records of one upstream for a game.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, game domain.Game) Result
}

// Result is the outcome of one adapter call. A failed fetch carries an error and
// no items; a successful fetch may legitimately carry zero items.
type Result struct {
	Source string
	Items  []domain.RawItem
	Err    error
}

func Success(source string, items []domain.RawItem) Result {
	return Result{Source: source, Items: items}
}

func Failure(source string, err error) Result {
	return Result{Source: source, Err: err}
}

func (r Result) OK() bool {
	return r.Err == nil
}

// NewHTTPClient builds the client shared by all adapters of a run.
func NewHTTPClient(timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("User-Agent", userAgent)
	return client
}

func fetchBody(ctx context.Context, client *resty.Client, url string, headers map[string]string) ([]byte, error) {
	resp, err := client.R().
		SetContext(ctx).
		SetHeaders(headers).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("%w: %d from %s", ErrUpstreamStatus, resp.StatusCode(), url)
	}
	return resp.Body(), nil
}

func labelOr(label, fallback string) string {
	if label != "" {
		return label
	}
	return fallback
}
