package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kserrors "github.com/systmms/ksecret/internal/errors"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := LoadFrom(filepath.Join(t.TempDir(), "cache.json"))
	require.NoError(t, err)
	return c
}

func TestGetWithinTTL(t *testing.T) {
	c := newTestCache(t)

	base := time.Now()
	c.now = func() time.Time { return base }
	c.Set("dev", "db-password", "hunter2")

	// Observable right up to, but not at, the expiry instant.
	for _, offset := range []time.Duration{0, time.Second, TTL - time.Nanosecond} {
		c.now = func() time.Time { return base.Add(offset) }
		v, ok := c.Get("dev", "db-password")
		require.True(t, ok, "offset %v", offset)
		assert.Equal(t, "hunter2", v)
	}

	for _, offset := range []time.Duration{TTL, TTL + time.Second, 24 * time.Hour} {
		c.now = func() time.Time { return base.Add(offset) }
		_, ok := c.Get("dev", "db-password")
		assert.False(t, ok, "offset %v", offset)
	}
}

func TestExpiredEntriesSurviveUntilOverwritten(t *testing.T) {
	c := newTestCache(t)

	base := time.Now()
	c.now = func() time.Time { return base }
	c.Set("dev", "db-password", "old")

	c.now = func() time.Time { return base.Add(TTL + time.Minute) }
	_, ok := c.Get("dev", "db-password")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len(), "expired entries are not purged")

	c.Set("dev", "db-password", "new")
	v, ok := c.Get("dev", "db-password")
	require.True(t, ok)
	assert.Equal(t, "new", v)
}

func TestDeleteAndClear(t *testing.T) {
	c := newTestCache(t)

	c.Set("dev", "a", "1")
	c.Set("dev", "b", "2")
	c.Set("prod", "a", "3")

	c.Delete("dev", "a")
	_, ok := c.Get("dev", "a")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestEnvironmentsDoNotCollide(t *testing.T) {
	c := newTestCache(t)

	c.Set("dev", "db-password", "dev-secret")
	c.Set("prod", "db-password", "prod-secret")

	v, _ := c.Get("dev", "db-password")
	assert.Equal(t, "dev-secret", v)
	v, _ = c.Get("prod", "db-password")
	assert.Equal(t, "prod-secret", v)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "cache.json")

	c, err := LoadFrom(path)
	require.NoError(t, err)
	c.Set("dev", "db-password", "hunter2")
	require.NoError(t, c.Save())

	again, err := LoadFrom(path)
	require.NoError(t, err)
	v, ok := again.Get("dev", "db-password")
	require.True(t, ok)
	assert.Equal(t, "hunter2", v)
}

func TestLoadMissingFile(t *testing.T) {
	c, err := LoadFrom(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestLoadCorruptFileDegradesToEmpty(t *testing.T) {
	for _, content := range []string{"not json at all", `{"entries": "wrong shape"}`, ""} {
		path := filepath.Join(t.TempDir(), "cache.json")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		c, err := LoadFrom(path)
		require.NoError(t, err, "content %q", content)
		assert.Equal(t, 0, c.Len())

		// The cache stays usable and the next save repairs the file.
		c.Set("dev", "a", "1")
		require.NoError(t, c.Save())
	}
}

func TestPathEnvOverride(t *testing.T) {
	t.Setenv(EnvFile, "/tmp/elsewhere/cache.json")

	path, err := Path()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/elsewhere/cache.json", path)
}

func TestSaveFailureKind(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	c := newTestCache(t)
	c.Set("dev", "a", "1")
	// The parent "directory" is a regular file, so MkdirAll fails.
	c.path = filepath.Join(blocker, "sub", "cache.json")

	err := c.Save()
	require.Error(t, err)
	assert.Equal(t, kserrors.CachePersistence, kserrors.KindOf(err))
}
