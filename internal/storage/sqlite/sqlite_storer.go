package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/DjordjeVuckovic/game-herald/internal/domain"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const DefaultPath = "game-herald.db"

const schema = `
CREATE TABLE IF NOT EXISTS announcements (
	id           TEXT PRIMARY KEY,
	game         TEXT NOT NULL,
	title        TEXT NOT NULL,
	link         TEXT NOT NULL,
	source_label TEXT NOT NULL DEFAULT '',
	is_official  INTEGER NOT NULL DEFAULT 0,
	published_at DATETIME NOT NULL,
	reported_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_announcements_game ON announcements (game, published_at);
`

const insertAnnouncement = `
	INSERT OR IGNORE INTO announcements (id, game, title, link, source_label, is_official, published_at, reported_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

// HistoryStore keeps reported announcements in a local sqlite file.
type HistoryStore struct {
	db *sql.DB
}

func Open(path string) (*HistoryStore, error) {
	if path == "" {
		path = DefaultPath
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// a single writer avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &HistoryStore{db: db}, nil
}

func (s *HistoryStore) Save(ctx context.Context, a domain.Announcement) (uuid.UUID, error) {
	if a.ID == uuid.Nil {
		a.ID = domain.NewAnnouncementID(a.Game, a.Link, a.Title)
	}

	_, err := s.db.ExecContext(ctx, insertAnnouncement,
		a.ID.String(), a.Game, a.Title, a.Link, a.SourceLabel, a.IsOfficial, a.PublishedAt.UTC(), time.Now().UTC(),
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

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertAnnouncement)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, a := range announcements {
		if a.ID == uuid.Nil {
			a.ID = domain.NewAnnouncementID(a.Game, a.Link, a.Title)
		}
		if _, err := stmt.ExecContext(ctx,
			a.ID.String(), a.Game, a.Title, a.Link, a.SourceLabel, a.IsOfficial, a.PublishedAt.UTC(), now,
		); err != nil {
			return fmt.Errorf("failed to insert announcement %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *HistoryStore) Seen(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]struct{}, error) {
	seen := make(map[uuid.UUID]struct{})
	if len(ids) == 0 {
		return seen, nil
	}

	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id.String())
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	rows, err := s.db.QueryContext(ctx, "SELECT id FROM announcements WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query announcement history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan announcement id: %w", err)
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		seen[id] = struct{}{}
	}
	return seen, rows.Err()
}

func (s *HistoryStore) Name() string {
	return "sqlite"
}

func (s *HistoryStore) Healthy(ctx context.Context) bool {
	return s.db.PingContext(ctx) == nil
}

func (s *HistoryStore) Close() error {
	return s.db.Close()
}
