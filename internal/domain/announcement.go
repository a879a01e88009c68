package domain

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultSourceLabel is shown when an upstream does not name its origin.
const DefaultSourceLabel = "网络"

// announcementNamespace seeds deterministic announcement IDs.
var announcementNamespace = uuid.MustParse("6f1c7a52-3d4e-4b8a-9c55-0f1e2d3c4b5a")

// RawItem is a single record as delivered by a source adapter.
type RawItem struct {
	Title string
	Link  string
	// Published is the upstream timestamp text, empty when the upstream has none.
	Published string
	// PublishedLayout is the Go time layout the adapter knows its upstream uses.
	PublishedLayout string
	SourceLabel     string
	// FallbackLink is the adapter's base page, used for empty or relative links.
	FallbackLink string
}

// Announcement is the canonical form of one game-update notice.
// It is a value type and is never mutated after the normalizer creates it.
type Announcement struct {
	ID          uuid.UUID `json:"id"`
	Game        string    `json:"game"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	PublishedAt time.Time `json:"publishedAt"`
	SourceLabel string    `json:"sourceLabel"`
	IsOfficial  bool      `json:"isOfficial"`
}

// NewAnnouncementID derives a stable identifier so the same notice maps to the
// same ID across runs.
func NewAnnouncementID(game, link, title string) uuid.UUID {
	return uuid.NewSHA1(announcementNamespace, []byte(game+"\x00"+link+"\x00"+title))
}

// Host returns the lower-cased host of the announcement link.
func (a Announcement) Host() string {
	u, err := url.Parse(a.Link)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
