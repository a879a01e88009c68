// Package dedup collapses near-duplicate announcements and orders the survivors.
package dedup

import (
	"sort"

	"github.com/DjordjeVuckovic/game-herald/internal/domain"
	"github.com/DjordjeVuckovic/game-herald/pkg/stringsutil"
)

const DefaultPrefixLen = 12

// Deduplicator treats two announcements of the same game as duplicates when the
// first PrefixLen characters of their titles match. This is an approximation:
// it absorbs truncated or suffixed copies from different sources and may also
// merge distinct notices that share a long prefix.
type Deduplicator struct {
	prefixLen int
}

func New(prefixLen int) *Deduplicator {
	if prefixLen <= 0 {
		prefixLen = DefaultPrefixLen
	}
	return &Deduplicator{prefixLen: prefixLen}
}

// Key is the identity used to detect duplicates.
func (d *Deduplicator) Key(a domain.Announcement) string {
	return a.Game + "\x00" + stringsutil.Prefix(stringsutil.Fold(a.Title), d.prefixLen)
}

// Dedup keeps the first occurrence of every key, preserving input order.
func (d *Deduplicator) Dedup(items []domain.Announcement) []domain.Announcement {
	seen := make(map[string]struct{}, len(items))
	out := make([]domain.Announcement, 0, len(items))

	for _, a := range items {
		k := d.Key(a)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, a)
	}
	return out
}

// Rank groups announcements by game in order of first appearance and puts
// official ones first inside each group. Relative order is otherwise kept.
func Rank(items []domain.Announcement) []domain.Announcement {
	gameOrder := make(map[string]int)
	for _, a := range items {
		if _, ok := gameOrder[a.Game]; !ok {
			gameOrder[a.Game] = len(gameOrder)
		}
	}

	out := make([]domain.Announcement, len(items))
	copy(out, items)

	sort.SliceStable(out, func(i, j int) bool {
		gi, gj := gameOrder[out[i].Game], gameOrder[out[j].Game]
		if gi != gj {
			return gi < gj
		}
		return out[i].IsOfficial && !out[j].IsOfficial
	})
	return out
}

// Process runs Dedup followed by Rank.
func (d *Deduplicator) Process(items []domain.Announcement) []domain.Announcement {
	return Rank(d.Dedup(items))
}
