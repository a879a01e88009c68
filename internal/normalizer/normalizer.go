// Package normalizer turns raw adapter records into canonical announcements.
package normalizer

import (
	"strings"
	"time"

	"github.com/DjordjeVuckovic/game-herald/internal/domain"
	"github.com/DjordjeVuckovic/game-herald/pkg/stringsutil"
)

const DefaultLocation = "Asia/Shanghai"

type Normalizer struct {
	loc *time.Location
	now func() time.Time
}

type Option func(*Normalizer)

// WithLocation sets the zone used for timestamps that carry no offset.
func WithLocation(loc *time.Location) Option {
	return func(n *Normalizer) {
		if loc != nil {
			n.loc = loc
		}
	}
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		n.now = now
	}
}

func New(opts ...Option) *Normalizer {
	loc, err := time.LoadLocation(DefaultLocation)
	if err != nil {
		loc = time.FixedZone("CST", 8*3600)
	}
	n := &Normalizer{
		loc: loc,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize always yields an announcement. Every missing or malformed field is
// replaced by its documented fallback instead of failing.
func (n *Normalizer) Normalize(game domain.Game, raw domain.RawItem) domain.Announcement {
	title := stringsutil.CollapseSpace(DecodeText(raw.Title))
	link := ResolveLink(raw.Link, raw.FallbackLink, game.Name)

	label := strings.TrimSpace(raw.SourceLabel)
	if label == "" {
		label = domain.DefaultSourceLabel
	}

	return domain.Announcement{
		ID:          domain.NewAnnouncementID(game.Name, link, title),
		Game:        game.Name,
		Title:       title,
		Link:        link,
		PublishedAt: n.resolveTime(raw.Published, raw.PublishedLayout),
		SourceLabel: label,
		IsOfficial:  IsOfficial(link, game.OfficialDomains),
	}
}

// NormalizeAll normalizes a batch in order.
func (n *Normalizer) NormalizeAll(game domain.Game, items []domain.RawItem) []domain.Announcement {
	out := make([]domain.Announcement, 0, len(items))
	for _, item := range items {
		out = append(out, n.Normalize(game, item))
	}
	return out
}

func (n *Normalizer) resolveTime(value, layout string) time.Time {
	now := n.now()
	if t, ok := ParseTime(value, layout, n.loc, now); ok {
		return t
	}
	return now
}
