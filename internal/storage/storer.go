package storage

import (
	"context"

	"github.com/DjordjeVuckovic/game-herald/internal/domain"
	"github.com/google/uuid"
)

// Storer records announcements that have been reported.
type Storer interface {
	Save(ctx context.Context, a domain.Announcement) (uuid.UUID, error)
	SaveBulk(ctx context.Context, announcements []domain.Announcement) error
}

// Reader answers which announcements were reported by an earlier run.
type Reader interface {
	Seen(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]struct{}, error)
}

// History is the cross-run memory used to avoid re-notifying.
type History interface {
	Storer
	Reader
	Close() error
}

type Type string

const (
	ES     Type = "es"
	PG     Type = "pg"
	SQLite Type = "sqlite"
	InMem  Type = "in_mem"
)

type StorerError string

const (
	ErrUnsupportedStorer StorerError = "unsupported storer type: %s"
)

func (e StorerError) Error() string {
	return string(e)
}

// IDs collects the identifiers of announcements.
func IDs(announcements []domain.Announcement) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(announcements))
	for _, a := range announcements {
		ids = append(ids, a.ID)
	}
	return ids
}
