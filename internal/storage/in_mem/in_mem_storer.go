package in_mem

import (
	"context"
	"log/slog"
	"sync"

	"github.com/DjordjeVuckovic/game-herald/internal/domain"
	"github.com/google/uuid"
)

type InMemStorer struct {
	storageLock sync.RWMutex
	storage     map[uuid.UUID]domain.Announcement
}

func NewInMemStorer() *InMemStorer {
	return &InMemStorer{
		storage: make(map[uuid.UUID]domain.Announcement),
	}
}

func (s *InMemStorer) Save(ctx context.Context, a domain.Announcement) (uuid.UUID, error) {
	s.storageLock.Lock()
	defer s.storageLock.Unlock()

	if a.ID == uuid.Nil {
		a.ID = domain.NewAnnouncementID(a.Game, a.Link, a.Title)
	}
	s.storage[a.ID] = a
	slog.Debug("Saved announcement to in-memory history", "title", a.Title, "id", a.ID)
	return a.ID, nil
}

func (s *InMemStorer) SaveBulk(ctx context.Context, announcements []domain.Announcement) error {
	for _, a := range announcements {
		if _, err := s.Save(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func (s *InMemStorer) Seen(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]struct{}, error) {
	s.storageLock.RLock()
	defer s.storageLock.RUnlock()

	seen := make(map[uuid.UUID]struct{})
	for _, id := range ids {
		if _, ok := s.storage[id]; ok {
			seen[id] = struct{}{}
		}
	}
	return seen, nil
}

func (s *InMemStorer) Len() int {
	s.storageLock.RLock()
	defer s.storageLock.RUnlock()
	return len(s.storage)
}

func (s *InMemStorer) Close() error {
	return nil
}
