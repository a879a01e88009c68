package stringsutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	assert.Equal(t, Fold("season"), Fold("SEASON"))
	assert.Equal(t, Fold("season"), Fold("ＳＥＡＳＯＮ"))
	assert.Equal(t, "王者荣耀更新", Fold("王者荣耀更新"))
}

func TestContainsFold(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		substr string
		want   bool
	}{
		{name: "latin different case", s: "New Season S5 starts", substr: "season", want: true},
		{name: "full-width latin", s: "新ＳＥＡＳＯＮ开启", substr: "Season", want: true},
		{name: "cjk exact", s: "王者荣耀更新公告", substr: "更新", want: true},
		{name: "cjk missing", s: "王者荣耀活动公告", substr: "维护", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsFold(tt.s, tt.substr))
		})
	}
}

func TestPrefix(t *testing.T) {
	assert.Equal(t, "王者荣耀", Prefix("王者荣耀更新v1", 4))
	assert.Equal(t, "abc", Prefix("abc", 10))
	assert.Equal(t, "", Prefix("abc", 0))
	assert.Equal(t, "王者荣耀更新v1", Prefix("王者荣耀更新v1", 8))
}

func TestTrimAll(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, TrimAll([]string{" a ", "", "  ", "b"}))
}

func TestCollapseSpace(t *testing.T) {
	assert.Equal(t, "a b c", CollapseSpace("  a \n b\t\tc "))
}
