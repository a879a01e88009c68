package dedup

import (
	"testing"

	"github.com/DjordjeVuckovic/game-herald/internal/domain"
	"github.com/stretchr/testify/assert"
)

func titles(items []domain.Announcement) []string {
	out := make([]string, 0, len(items))
	for _, a := range items {
		out = append(out, a.Title)
	}
	return out
}

func TestDedup_KeepsFirstOccurrence(t *testing.T) {
	a := domain.Announcement{Game: "王者荣耀", Title: "王者荣耀更新v1", Link: "https://a"}
	b := domain.Announcement{Game: "王者荣耀", Title: "王者荣耀更新v1", Link: "https://b"}
	c := domain.Announcement{Game: "王者荣耀", Title: "穿越火线维护", Link: "https://c"}

	out := New(8).Dedup([]domain.Announcement{a, b, c})

	assert.Equal(t, []domain.Announcement{a, c}, out)
}

func TestDedup_PrefixApproximation(t *testing.T) {
	d := New(12)

	out := d.Dedup([]domain.Announcement{
		{Game: "和平精英", Title: "和平精英10月19日停机维护公告"},
		{Game: "和平精英", Title: "和平精英10月19日停机维护公告（已完成）"},
		{Game: "和平精英", Title: "和平精英新赛季SS30上线"},
	})

	assert.Equal(t, []string{"和平精英10月19日停机维护公告", "和平精英新赛季SS30上线"}, titles(out))
}

func TestDedup_ScopedPerGame(t *testing.T) {
	out := New(4).Dedup([]domain.Announcement{
		{Game: "A", Title: "版本更新公告"},
		{Game: "B", Title: "版本更新公告"},
	})

	assert.Len(t, out, 2)
}

func TestDedup_CaselessLatin(t *testing.T) {
	out := New(6).Dedup([]domain.Announcement{
		{Game: "VALORANT", Title: "Patch Notes 9.08"},
		{Game: "VALORANT", Title: "PATCH notes 9.09"},
	})

	assert.Len(t, out, 1)
}

func TestNew_DefaultPrefix(t *testing.T) {
	assert.Equal(t, DefaultPrefixLen, New(0).prefixLen)
}

func TestRank_OfficialFirstStable(t *testing.T) {
	x := domain.Announcement{Game: "g", Title: "X", IsOfficial: false}
	y := domain.Announcement{Game: "g", Title: "Y", IsOfficial: true}
	z := domain.Announcement{Game: "g", Title: "Z", IsOfficial: false}

	out := Rank([]domain.Announcement{x, y, z})

	assert.Equal(t, []domain.Announcement{y, x, z}, out)
}

func TestRank_GroupsByGameInFirstAppearanceOrder(t *testing.T) {
	out := Rank([]domain.Announcement{
		{Game: "B", Title: "b1"},
		{Game: "A", Title: "a1"},
		{Game: "B", Title: "b2", IsOfficial: true},
		{Game: "A", Title: "a2", IsOfficial: true},
	})

	assert.Equal(t, []string{"b2", "b1", "a2", "a1"}, titles(out))
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	in := []domain.Announcement{{Game: "g", Title: "X"}, {Game: "g", Title: "Y", IsOfficial: true}}

	_ = Rank(in)

	assert.Equal(t, "X", in[0].Title)
}

func TestProcess(t *testing.T) {
	out := New(4).Process([]domain.Announcement{
		{Game: "g", Title: "更新公告一"},
		{Game: "g", Title: "更新公告二", IsOfficial: true},
		{Game: "g", Title: "维护通知", IsOfficial: true},
	})

	assert.Equal(t, []string{"维护通知", "更新公告一"}, titles(out))
}
