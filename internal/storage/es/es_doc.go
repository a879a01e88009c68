package es

import (
	"time"

	"github.com/DjordjeVuckovic/game-herald/internal/domain"
	"github.com/google/uuid"
)

// Document is the indexed shape of a reported announcement.
type Document struct {
	ID          string    `json:"id"`
	Game        string    `json:"game"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	SourceLabel string    `json:"source_label"`
	IsOfficial  bool      `json:"is_official"`
	PublishedAt time.Time `json:"published_at"`
	ReportedAt  time.Time `json:"reported_at"`
}

func toDocument(a domain.Announcement, reportedAt time.Time) Document {
	id := a.ID
	if id == uuid.Nil {
		id = domain.NewAnnouncementID(a.Game, a.Link, a.Title)
	}
	return Document{
		ID:          id.String(),
		Game:        a.Game,
		Title:       a.Title,
		Link:        a.Link,
		SourceLabel: a.SourceLabel,
		IsOfficial:  a.IsOfficial,
		PublishedAt: a.PublishedAt,
		ReportedAt:  reportedAt,
	}
}
