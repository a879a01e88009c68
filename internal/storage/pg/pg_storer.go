package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/DjordjeVuckovic/game-herald/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const insertAnnouncement = `
	INSERT INTO announcements (id, game, title, link, source_label, is_official, published_at, reported_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (id) DO NOTHING
`

// HistoryStore keeps reported announcements in postgres.
type HistoryStore struct {
	pool *ConnectionPool
	db   *pgxpool.Pool
}

func NewHistoryStore(pool *ConnectionPool) *HistoryStore {
	return &HistoryStore{pool: pool, db: pool.conn}
}

func (s *HistoryStore) Save(ctx context.Context, a domain.Announcement) (uuid.UUID, error) {
	if a.ID == uuid.Nil {
		a.ID = domain.NewAnnouncementID(a.Game, a.Link, a.Title)
	}

	_, err := s.db.Exec(ctx, insertAnnouncement,
		a.ID, a.Game, a.Title, a.Link, a.SourceLabel, a.IsOfficial, a.PublishedAt, time.Now(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert announcement: %w", err)
	}
	return a.ID, nil
}

func (s *HistoryStore) SaveBulk(ctx context.Context, announcements []domain.Announcement) error {
	if len(announcements) == 0 {
		return nil
	}

	now := time.Now()
	batch := &pgx.Batch{}
	for _, a := range announcements {
		if a.ID == uuid.Nil {
			a.ID = domain.NewAnnouncementID(a.Game, a.Link, a.Title)
		}
		batch.Queue(insertAnnouncement,
			a.ID, a.Game, a.Title, a.Link, a.SourceLabel, a.IsOfficial, a.PublishedAt, now,
		)
	}

	if err := s.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to bulk insert announcements: %w", err)
	}
	return nil
}

func (s *HistoryStore) Seen(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]struct{}, error) {
	seen := make(map[uuid.UUID]struct{})
	if len(ids) == 0 {
		return seen, nil
	}

	params := make([]string, 0, len(ids))
	for _, id := range ids {
		params = append(params, id.String())
	}

	rows, err := s.db.Query(ctx, `SELECT id FROM announcements WHERE id = ANY($1::uuid[])`, params)
	if err != nil {
		return nil, fmt.Errorf("failed to query announcement history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan announcement id: %w", err)
		}
		seen[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read announcement history: %w", err)
	}
	return seen, nil
}

func (s *HistoryStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *HistoryStore) Healthy(ctx context.Context) bool {
	return NewHealthChecker(s.pool).Healthy(ctx)
}
