package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("HERALD_TEST_KEY=from-file\n"), 0o600))

	t.Setenv("ENV_PATH", "")
	t.Setenv("HERALD_TEST_KEY", "")
	require.NoError(t, os.Unsetenv("HERALD_TEST_KEY"))

	require.NoError(t, LoadDotEnv("local", path))
	assert.Equal(t, "from-file", os.Getenv("HERALD_TEST_KEY"))
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	t.Setenv("ENV_PATH", filepath.Join(t.TempDir(), "missing.env"))

	assert.Error(t, LoadDotEnv("local", ".env"))
	assert.NoError(t, LoadDotEnv("production", ".env"))
}

func TestGetOr(t *testing.T) {
	t.Setenv("HERALD_GETOR", "")
	assert.Equal(t, "def", GetOr("HERALD_GETOR", "def"))

	t.Setenv("HERALD_GETOR", "set")
	assert.Equal(t, "set", GetOr("HERALD_GETOR", "def"))
}
