package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/DjordjeVuckovic/game-herald/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *HistoryStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func announcement(title string) domain.Announcement {
	link := "https://cf.qq.com/" + title
	return domain.Announcement{
		ID:          domain.NewAnnouncementID("穿越火线", link, title),
		Game:        "穿越火线",
		Title:       title,
		Link:        link,
		PublishedAt: time.Now().Add(-time.Hour),
		SourceLabel: "官网",
		IsOfficial:  true,
	}
}

func TestHistoryStore_SaveAndSeen(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	a := announcement("版本更新")
	id, err := s.Save(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, a.ID, id)

	unknown := uuid.New()
	seen, err := s.Seen(ctx, []uuid.UUID{a.ID, unknown})
	require.NoError(t, err)
	assert.Len(t, seen, 1)
	assert.Contains(t, seen, a.ID)
}

func TestHistoryStore_SaveBulkIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	a := announcement("停机维护")
	b := announcement("新英雄")

	require.NoError(t, s.SaveBulk(ctx, []domain.Announcement{a, b}))
	require.NoError(t, s.SaveBulk(ctx, []domain.Announcement{a, b}))

	var count int
	require.NoError(t, s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM announcements").Scan(&count))
	assert.Equal(t, 2, count)
}

func TestHistoryStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := Open(path)
	require.NoError(t, err)
	a := announcement("周年庆")
	_, err = s.Save(ctx, a)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	seen, err := reopened.Seen(ctx, []uuid.UUID{a.ID})
	require.NoError(t, err)
	assert.Contains(t, seen, a.ID)
	assert.True(t, reopened.Healthy(ctx))
}

func TestHistoryStore_SeenEmpty(t *testing.T) {
	seen, err := newStore(t).Seen(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, seen)
}
