// Package filter decides whether an announcement is in scope for a tracked game.
//
// Matching is caseless: titles and terms are compared after NFKC normalization
// and Unicode case folding, which makes Latin keywords case-insensitive and
// leaves CJK text compared exactly.
package filter

import (
	"strings"
	"time"

	"github.com/DjordjeVuckovic/game-herald/internal/domain"
	"github.com/DjordjeVuckovic/game-herald/pkg/stringsutil"
)

// Reason explains a filter decision.
type Reason string

const (
	Kept           Reason = "kept"
	TooOld         Reason = "too_old"
	NoKeyword      Reason = "no_keyword"
	Blacklisted    Reason = "blacklisted"
	MissingGameRef Reason = "missing_game_name"
)

type Config struct {
	// Window is the recency window; items at or beyond it are dropped.
	Window    time.Duration
	Keywords  []string
	Blacklist []string
}

// Relevance is a pure predicate over announcements. The folded term lists are
// computed once at construction.
type Relevance struct {
	window    time.Duration
	keywords  []string
	blacklist []string
	now       func() time.Time
}

type Option func(*Relevance)

// WithClock replaces the wall clock used for the recency test.
func WithClock(now func() time.Time) Option {
	return func(r *Relevance) {
		r.now = now
	}
}

func NewRelevance(cfg Config, opts ...Option) *Relevance {
	r := &Relevance{
		window:    cfg.Window,
		keywords:  foldAll(cfg.Keywords),
		blacklist: foldAll(cfg.Blacklist),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Keep reports whether a passes every test.
func (r *Relevance) Keep(a domain.Announcement, gameName string) bool {
	return r.Evaluate(a, gameName) == Kept
}

// Evaluate runs the recency, blacklist, keyword and game-name tests and returns
// the first one that fails, or Kept. The blacklist wins over any keyword match.
// An empty keyword list disables the keyword test.
func (r *Relevance) Evaluate(a domain.Announcement, gameName string) Reason {
	if r.now().Sub(a.PublishedAt) >= r.window {
		return TooOld
	}

	title := stringsutil.Fold(a.Title)

	if containsAny(title, r.blacklist) {
		return Blacklisted
	}

	if len(r.keywords) > 0 && !containsAny(title, r.keywords) {
		return NoKeyword
	}

	if !stringsutil.ContainsFold(a.Title, gameName) {
		return MissingGameRef
	}

	return Kept
}

// Apply returns the announcements of one game that pass, in input order.
func (r *Relevance) Apply(items []domain.Announcement, gameName string) []domain.Announcement {
	var kept []domain.Announcement
	for _, a := range items {
		if r.Keep(a, gameName) {
			kept = append(kept, a)
		}
	}
	return kept
}

func foldAll(terms []string) []string {
	folded := make([]string, 0, len(terms))
	for _, t := range stringsutil.TrimAll(terms) {
		folded = append(folded, stringsutil.Fold(t))
	}
	return folded
}

func containsAny(folded string, terms []string) bool {
	for _, t := range terms {
		if t != "" && strings.Contains(folded, t) {
			return true
		}
	}
	return false
}
