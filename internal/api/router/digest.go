package router

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/DjordjeVuckovic/game-herald/internal/apperr"
	"github.com/DjordjeVuckovic/game-herald/internal/processor"
	"github.com/DjordjeVuckovic/game-herald/internal/report"
	"github.com/DjordjeVuckovic/game-herald/pkg/stringsutil"
	"github.com/labstack/echo/v4"
)

// PreviewFunc runs the pipeline without sending, limited to games when non-empty.
type PreviewFunc func(ctx context.Context, games []string) (*processor.Outcome, error)

type DigestRouter struct {
	e       *echo.Echo
	games   []string
	preview PreviewFunc
	running sync.Mutex
}

func NewDigestRouter(e *echo.Echo, games []string, preview PreviewFunc) *DigestRouter {
	return &DigestRouter{
		e:       e,
		games:   games,
		preview: preview,
	}
}

func (r *DigestRouter) Bind() {
	g := r.e.Group("/api/v1/digest")
	g.GET("/games", r.gamesHandler)
	g.GET("/preview", r.previewHandler)
}

type PreviewResponse struct {
	Subject  string           `json:"subject"`
	Count    int              `json:"count"`
	Sections []report.Section `json:"sections"`
	Failures []report.Failure `json:"failures"`
	Stats    processor.Stats  `json:"stats"`
	Text     string           `json:"text,omitempty"`
}

// gamesHandler lists the tracked games
// @Summary List tracked games
// @Tags digest
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/v1/digest/games [get]
func (r *DigestRouter) gamesHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]string{"games": r.games})
}

// previewHandler accepts repeated or comma separated ?game= values and ?format=html.
// @Summary Preview today's digest
// @Description Runs the pipeline without sending mail or recording history
// @Tags digest
// @Produce json,html
// @Param game query []string false "Tracked game names" collectionFormat(multi)
// @Param format query string false "Response format" Enums(json, html)
// @Success 200 {object} PreviewResponse
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/digest/preview [get]
func (r *DigestRouter) previewHandler(c echo.Context) error {
	games, err := r.selectedGames(c.QueryParams()["game"])
	if err != nil {
		return err
	}

	format := c.QueryParam("format")
	if format != "" && format != "json" && format != "html" {
		return apperr.NewValidationf("unsupported format %q, expected json or html", format)
	}

	if !r.running.TryLock() {
		return apperr.NewUnavailable("a digest run is already in progress")
	}
	defer r.running.Unlock()

	outcome, err := r.preview(c.Request().Context(), games)
	if err != nil {
		return fmt.Errorf("preview digest: %w", err)
	}

	d := outcome.Digest
	if format == "html" {
		body, err := d.HTML()
		if err != nil {
			return err
		}
		return c.HTML(http.StatusOK, body)
	}

	resp := PreviewResponse{
		Subject:  d.Subject(),
		Count:    d.Count(),
		Sections: d.Sections,
		Failures: d.Failures,
		Stats:    outcome.Stats,
	}
	if !d.Empty() {
		resp.Text = d.PlainText()
	}
	if resp.Sections == nil {
		resp.Sections = []report.Section{}
	}
	if resp.Failures == nil {
		resp.Failures = []report.Failure{}
	}
	return c.JSON(http.StatusOK, resp)
}

func (r *DigestRouter) selectedGames(raw []string) ([]string, error) {
	var games []string
	for _, v := range raw {
		games = append(games, stringsutil.TrimAll(strings.Split(v, ","))...)
	}

	tracked := make(map[string]struct{}, len(r.games))
	for _, g := range r.games {
		tracked[g] = struct{}{}
	}
	for _, g := range games {
		if _, ok := tracked[g]; !ok {
			return nil, apperr.NewValidationf("game %q is not tracked", g)
		}
	}
	return games, nil
}
