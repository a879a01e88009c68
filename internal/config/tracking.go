package config

import (
	"errors"
	"fmt"
	"io"
	"time"
	_ "time/tzdata"

	"github.com/DjordjeVuckovic/game-herald/internal/dedup"
	"github.com/DjordjeVuckovic/game-herald/internal/domain"
	"github.com/DjordjeVuckovic/game-herald/internal/filter"
	"github.com/DjordjeVuckovic/game-herald/internal/normalizer"
	"gopkg.in/yaml.v3"
)

const DefaultRecencyWindow = 24 * time.Hour

var (
	ErrNoGames          = errors.New("at least one game is required")
	ErrGameMissingName  = errors.New("game name is required")
	ErrDuplicateGame    = errors.New("game names must be unique")
	ErrNoSources        = errors.New("game has no enabled sources")
	ErrSourceMissingURL = errors.New("source url is required")
	ErrSourceInvalidURL = errors.New("source url must be an absolute http(s) url")
	ErrInvalidBaseURL   = errors.New("source baseUrl must be an absolute http(s) url")
	ErrInvalidWindow    = errors.New("recencyWindow must be positive")
	ErrInvalidPrefix    = errors.New("dedupPrefix must not be negative")
	ErrInvalidTimezone  = errors.New("timezone is not a known location")
	ErrUnknownGame      = errors.New("game is not tracked")
)

// Tracking is the per-run configuration of what to watch and how to filter it.
type Tracking struct {
	Games         []domain.Game `yaml:"games" schema:"required,minItems=1"`
	RecencyWindow time.Duration `yaml:"recencyWindow" schema:"default=24h"`
	Keywords      []string      `yaml:"keywords"`
	Blacklist     []string      `yaml:"blacklist"`
	DedupPrefix   int           `yaml:"dedupPrefix" schema:"minimum=0,default=12"`
	Timezone      string        `yaml:"timezone" schema:"default=Asia/Shanghai"`
}

// ApplyDefaults fills unset optional fields.
func (t *Tracking) ApplyDefaults() {
	if t.RecencyWindow == 0 {
		t.RecencyWindow = DefaultRecencyWindow
	}
	if t.DedupPrefix == 0 {
		t.DedupPrefix = dedup.DefaultPrefixLen
	}
	if t.Timezone == "" {
		t.Timezone = normalizer.DefaultLocation
	}
}

func (t *Tracking) Validate() error {
	if len(t.Games) == 0 {
		return ErrNoGames
	}

	names := make(map[string]struct{}, len(t.Games))
	for i, g := range t.Games {
		if g.Name == "" {
			return fmt.Errorf("%w: games[%d]", ErrGameMissingName, i)
		}
		if _, dup := names[g.Name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateGame, g.Name)
		}
		names[g.Name] = struct{}{}

		enabled := g.EnabledSources()
		if len(enabled) == 0 {
			return fmt.Errorf("%w: %q", ErrNoSources, g.Name)
		}
		for j, s := range g.Sources {
			if s.URL == "" {
				return fmt.Errorf("%w: games[%d].sources[%d]", ErrSourceMissingURL, i, j)
			}
			if !normalizer.IsHTTPURL(s.URL) {
				return fmt.Errorf("%w: games[%d].sources[%d]: %q", ErrSourceInvalidURL, i, j, s.URL)
			}
			if s.BaseURL != "" && !normalizer.IsHTTPURL(s.BaseURL) {
				return fmt.Errorf("%w: games[%d].sources[%d]: %q", ErrInvalidBaseURL, i, j, s.BaseURL)
			}
		}
	}

	if t.RecencyWindow <= 0 {
		return ErrInvalidWindow
	}
	if t.DedupPrefix < 0 {
		return ErrInvalidPrefix
	}
	if _, err := t.Location(); err != nil {
		return err
	}
	return nil
}

func (t *Tracking) Location() (*time.Location, error) {
	name := t.Timezone
	if name == "" {
		name = normalizer.DefaultLocation
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTimezone, name, err)
	}
	return loc, nil
}

// FilterConfig projects the relevance settings.
func (t *Tracking) FilterConfig() filter.Config {
	return filter.Config{
		Window:    t.RecencyWindow,
		Keywords:  t.Keywords,
		Blacklist: t.Blacklist,
	}
}

// GameNames lists the tracked display names in configuration order.
func (t *Tracking) GameNames() []string {
	names := make([]string, 0, len(t.Games))
	for _, g := range t.Games {
		names = append(names, g.Name)
	}
	return names
}

// Only returns a copy restricted to the named games, kept in configuration
// order. An empty list selects every game.
func (t *Tracking) Only(names []string) (*Tracking, error) {
	out := *t
	if len(names) == 0 {
		return &out, nil
	}

	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}

	out.Games = nil
	for _, g := range t.Games {
		if _, ok := wanted[g.Name]; ok {
			out.Games = append(out.Games, g)
			delete(wanted, g.Name)
		}
	}
	for n := range wanted {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGame, n)
	}
	return &out, nil
}

// OfficialDomains maps each game to its first-party hostnames.
func (t *Tracking) OfficialDomains() map[string][]string {
	out := make(map[string][]string, len(t.Games))
	for _, g := range t.Games {
		out[g.Name] = g.OfficialDomains
	}
	return out
}

type YAMLConfigLoader struct {
	reader io.Reader
}

func NewYAMLConfigLoader(reader io.Reader) *YAMLConfigLoader {
	return &YAMLConfigLoader{
		reader: reader,
	}
}

func (cl *YAMLConfigLoader) Load(validate bool) (*Tracking, error) {
	decoder := yaml.NewDecoder(cl.reader)
	var tracking Tracking
	if err := decoder.Decode(&tracking); err != nil {
		return nil, fmt.Errorf("failed to parse tracking config: %w", err)
	}
	tracking.ApplyDefaults()
	if validate {
		if err := tracking.Validate(); err != nil {
			return nil, fmt.Errorf("invalid tracking config: %w", err)
		}
	}
	return &tracking, nil
}
