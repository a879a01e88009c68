package collector

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/DjordjeVuckovic/game-herald/internal/domain"
	"github.com/DjordjeVuckovic/game-herald/internal/normalizer"
	"github.com/DjordjeVuckovic/game-herald/internal/source"
	"github.com/go-resty/resty/v2"
)

type gameSources struct {
	game     domain.Game
	adapters []source.Adapter
}

// AnnouncementCollector walks the tracked games in order and queries each of
// their sources one after another. Results are streamed from a single producer
// so their order matches the configuration.
type AnnouncementCollector struct {
	games      []gameSources
	normalizer *normalizer.Normalizer
}

func NewAnnouncementCollector(games []domain.Game, client *resty.Client, n *normalizer.Normalizer) (*AnnouncementCollector, error) {
	c := &AnnouncementCollector{normalizer: n}

	for _, g := range games {
		gs := gameSources{game: g}
		for _, cfg := range g.EnabledSources() {
			a, err := source.NewAdapter(cfg, client)
			if err != nil {
				return nil, fmt.Errorf("game %q: %w", g.Name, err)
			}
			gs.adapters = append(gs.adapters, a)
		}
		c.games = append(c.games, gs)
	}

	return c, nil
}

// NewAnnouncementCollectorWithAdapters wires prebuilt adapters, keyed by game name.
func NewAnnouncementCollectorWithAdapters(games []domain.Game, adapters map[string][]source.Adapter, n *normalizer.Normalizer) *AnnouncementCollector {
	c := &AnnouncementCollector{normalizer: n}
	for _, g := range games {
		c.games = append(c.games, gameSources{game: g, adapters: adapters[g.Name]})
	}
	return c
}

func (ac *AnnouncementCollector) Collect(ctx context.Context) (<-chan Result[Batch], error) {
	out := make(chan Result[Batch])

	go func() {
		defer close(out)

		for _, gs := range ac.games {
			for _, a := range gs.adapters {
				if ctx.Err() != nil {
					return
				}

				slog.Debug("Fetching source", "game", gs.game.Name, "source", a.Name())
				res := a.Fetch(ctx, gs.game)

				var r Result[Batch]
				if !res.OK() {
					r.Err = &SourceError{Game: gs.game.Name, Source: res.Source, Err: res.Err}
				} else {
					r.Result = Batch{
						Game:          gs.game,
						Source:        res.Source,
						Announcements: ac.normalizer.NormalizeAll(gs.game, res.Items),
					}
				}

				select {
				case <-ctx.Done():
					return
				case out <- r:
				}
			}
		}
	}()

	return out, nil
}
