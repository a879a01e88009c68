package pg

import (
	"context"
	"flag"
	"os"
	"testing"
	"time"

	"github.com/DjordjeVuckovic/game-herald/internal/domain"
	pkgtesting "github.com/DjordjeVuckovic/game-herald/pkg/testing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
)

var (
	testCtx   context.Context
	testPool  *ConnectionPool
	testStore *HistoryStore
)

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() || os.Getenv("SKIP_CONTAINERS") != "" {
		os.Exit(0)
	}

	testCtx = context.Background()

	pg, err := pkgtesting.NewPGContainer(testCtx, pkgtesting.PGConfig{
		Database: "herald_test_db",
		Username: "test",
		Password: "test",
	})
	if err != nil {
		panic(err)
	}

	testPool, err = NewConnectionPool(testCtx, PoolConfig{ConnStr: pg.ConnString})
	if err != nil {
		_ = testcontainers.TerminateContainer(pg.Container)
		panic(err)
	}

	testStore = NewHistoryStore(testPool)

	code := m.Run()

	testPool.Close()
	_ = testcontainers.TerminateContainer(pg.Container)
	os.Exit(code)
}

func truncateTable(t *testing.T) {
	t.Helper()
	_, err := testPool.GetConn().Exec(testCtx, "TRUNCATE TABLE announcements")
	if err != nil {
		t.Fatalf("failed to truncate table: %v", err)
	}
}

func newAnnouncement(title string) domain.Announcement {
	link := "https://pvp.qq.com/" + title
	return domain.Announcement{
		ID:          domain.NewAnnouncementID("王者荣耀", link, title),
		Game:        "王者荣耀",
		Title:       title,
		Link:        link,
		PublishedAt: time.Now().Add(-time.Hour),
		SourceLabel: "官网",
		IsOfficial:  true,
	}
}

func TestHistoryStore_SaveAndSeen(t *testing.T) {
	truncateTable(t)
	defer truncateTable(t)

	a := newAnnouncement("更新公告")
	id, err := testStore.Save(testCtx, a)
	require.NoError(t, err)
	assert.Equal(t, a.ID, id)

	seen, err := testStore.Seen(testCtx, []uuid.UUID{a.ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, seen, 1)
	assert.Contains(t, seen, a.ID)
}

func TestHistoryStore_SaveBulkIgnoresDuplicates(t *testing.T) {
	truncateTable(t)
	defer truncateTable(t)

	a := newAnnouncement("维护公告")
	b := newAnnouncement("新赛季")

	require.NoError(t, testStore.SaveBulk(testCtx, []domain.Announcement{a, b}))
	require.NoError(t, testStore.SaveBulk(testCtx, []domain.Announcement{a}))

	var count int
	err := testPool.GetConn().QueryRow(testCtx, "SELECT COUNT(*) FROM announcements").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestHistoryStore_SeenEmpty(t *testing.T) {
	seen, err := testStore.Seen(testCtx, nil)

	require.NoError(t, err)
	assert.Empty(t, seen)
}

func TestHealthChecker(t *testing.T) {
	assert.True(t, NewHealthChecker(testPool).Healthy(testCtx))
	assert.False(t, NewHealthChecker(nil).Healthy(testCtx))
}
