package cache

import (
	"context"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestauk/createch/internal/records"
)

var sample = []records.NameRecord{
	{ID: "b", Name: "Beta Ltd"},
	{ID: "a", Name: "Alpha plc"},
}

// exerciseStore runs the shared Store contract against s.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	key := Key("gtr", "run-1")

	_, err := s.Get(ctx, key)
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, s.Put(ctx, key, sample))
	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, sample, got)

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Get(ctx, key)
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, s.Delete(ctx, key), "deleting a missing key is not an error")
}

func TestFileStore(t *testing.T) {
	fs := afero.NewMemMapFs()
	exerciseStore(t, NewFileStore(fs, "outputs/.cache"))
}

func TestFileStore_Layout(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewFileStore(fs, "cache")
	require.NoError(t, s.Put(context.Background(), Key("crunchbase", "2024"), sample))

	ok, err := afero.Exists(fs, "cache/crunchbase/2024.json")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFileStore_InvalidKey(t *testing.T) {
	s := NewFileStore(afero.NewMemMapFs(), "cache")
	for _, key := range []string{"", "../etc/passwd", "/abs"} {
		_, err := s.Get(context.Background(), key)
		assert.Error(t, err, key)
		assert.NotErrorIs(t, err, ErrCacheMiss, key)
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()

	s, err := New(ctx, DefaultConfig(), DefaultRedisConfig(), fs)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = New(ctx, Config{Backend: BackendNone}, RedisConfig{}, fs)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "k/v", sample))
	_, err = s.Get(ctx, "k/v")
	assert.ErrorIs(t, err, ErrCacheMiss)

	_, err = New(ctx, Config{Backend: "memcached"}, RedisConfig{}, fs)
	assert.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("CREATECH_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("CREATECH_TEST_REDIS_ADDR not set")
	}
	cfg := DefaultRedisConfig()
	cfg.Addr = addr

	s, err := NewRedisStore(context.Background(), cfg)
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}
