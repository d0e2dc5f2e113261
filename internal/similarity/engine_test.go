package similarity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	testLeft = []string{
		"acme",
		"british broadcasting corporation",
		"bbc",
		"marks and spencer",
		"tesco stores",
		"john lewis partnership",
		"acme widgets",
		"",
	}
	testRight = []string{
		"acme",
		"marks spencer",
		"british gas",
		"tesco",
		"john lewis",
		"acme widget company",
	}
)

func collect(t *testing.T, ix *Index) ([]Chunk, []Pair) {
	t.Helper()
	var chunks []Chunk
	var pairs []Pair
	err := ix.Stream(context.Background(), func(c Chunk) error {
		chunks = append(chunks, c)
		pairs = append(pairs, c.Pairs...)
		return nil
	})
	require.NoError(t, err)
	return chunks, pairs
}

func prepare(t *testing.T, cfg Config, left, right []string) *Index {
	t.Helper()
	e, err := NewEngine(cfg)
	require.NoError(t, err)
	ix, err := e.Prepare(left, right)
	require.NoError(t, err)
	return ix
}

func TestStream_IdenticalNamesScoreFull(t *testing.T) {
	ix := prepare(t, DefaultConfig(), []string{"acme"}, []string{"acme", "zenith"})
	_, pairs := collect(t, ix)

	require.Len(t, pairs, 1)
	assert.Equal(t, 0, pairs[0].Left)
	assert.Equal(t, 0, pairs[0].Right)
	assert.InDelta(t, 100, pairs[0].Score, 1e-9)
}

func TestStream_NoSharedNGramNoPair(t *testing.T) {
	ix := prepare(t, DefaultConfig(), []string{"bbc"}, []string{"british broadcasting corporation"})
	_, pairs := collect(t, ix)
	assert.Empty(t, pairs)
}

func TestStream_EmptyInputs(t *testing.T) {
	tests := []struct {
		name        string
		left, right []string
	}{
		{name: "empty left", right: []string{"acme"}},
		{name: "empty right", left: []string{"acme"}},
		{name: "both empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix := prepare(t, DefaultConfig(), tt.left, tt.right)
			assert.Equal(t, 0, ix.Chunks())
			chunks, _ := collect(t, ix)
			assert.Empty(t, chunks)
		})
	}
}

func TestStream_ChunkBoundaries(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ChunkSize = 3
	ix := prepare(t, cfg, testLeft, testRight)

	chunks, _ := collect(t, ix)
	require.Len(t, chunks, 3)
	for i, c := range chunks {
		assert.Equal(t, i, c.Seq)
		assert.Equal(t, i*3, c.Start)
		for _, p := range c.Pairs {
			assert.GreaterOrEqual(t, p.Left, c.Start)
			assert.Less(t, p.Left, c.End)
		}
	}
	assert.Equal(t, len(testLeft), chunks[2].End)
}

func TestStream_OrderedAndBounded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ChunkSize = 2
	cfg.Workers = 3
	ix := prepare(t, cfg, testLeft, testRight)

	_, pairs := collect(t, ix)
	require.NotEmpty(t, pairs)
	for i, p := range pairs {
		assert.GreaterOrEqual(t, p.Score, 0.0)
		assert.LessOrEqual(t, p.Score, 100.0)
		if i == 0 {
			continue
		}
		prev := pairs[i-1]
		ordered := prev.Left < p.Left || (prev.Left == p.Left && prev.Right < p.Right)
		assert.True(t, ordered, "pair %d out of order: %+v after %+v", i, p, prev)
	}
}

func TestStream_DeterministicAcrossWorkers(t *testing.T) {
	base := DefaultConfig()
	base.ChunkSize = 3

	_, want := collect(t, prepare(t, base, testLeft, testRight))

	for _, workers := range []int{2, 4, 16} {
		cfg := base
		cfg.Workers = workers
		_, got := collect(t, prepare(t, cfg, testLeft, testRight))
		assert.Equal(t, want, got, "workers=%d", workers)
	}
}

func TestStream_Restartable(t *testing.T) {
	ix := prepare(t, DefaultConfig(), testLeft, testRight)
	_, first := collect(t, ix)
	_, second := collect(t, ix)
	assert.Equal(t, first, second)
}

func TestStream_CandidateThresholdFilters(t *testing.T) {
	loose := DefaultConfig()
	loose.Cosine.Threshold = 0
	strict := DefaultConfig()
	strict.Cosine.Threshold = 0.5

	_, all := collect(t, prepare(t, loose, testLeft, testRight))
	_, some := collect(t, prepare(t, strict, testLeft, testRight))

	assert.Less(t, len(some), len(all))
	index := make(map[[2]int]float64, len(all))
	for _, p := range all {
		index[[2]int{p.Left, p.Right}] = p.Score
	}
	for _, p := range some {
		score, ok := index[[2]int{p.Left, p.Right}]
		require.True(t, ok, "pair %+v missing from looser run", p)
		assert.Equal(t, score, p.Score)
	}
}

func TestStream_CallbackErrorStops(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ChunkSize = 1
	ix := prepare(t, cfg, testLeft, testRight)

	boom := errors.New("boom")
	calls := 0
	err := ix.Stream(context.Background(), func(Chunk) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestStream_Cancelled(t *testing.T) {
	ix := prepare(t, DefaultConfig(), testLeft, testRight)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ix.Stream(ctx, func(Chunk) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestJaroWinklerRefiner(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Fuzzy.Refiner = RefinerJaroWinkler
	ix := prepare(t, cfg, []string{"acme widgets"}, []string{"acme widgets", "acme"})

	_, pairs := collect(t, ix)
	require.NotEmpty(t, pairs)
	assert.Equal(t, 0, pairs[0].Right)
	assert.InDelta(t, 100, pairs[0].Score, 1e-4)
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero ngram", func(c *Config) { c.Cosine.NGram = 0 }},
		{"threshold above one", func(c *Config) { c.Cosine.Threshold = 1.5 }},
		{"negative threshold", func(c *Config) { c.Cosine.Threshold = -0.1 }},
		{"zero permutations", func(c *Config) { c.Fuzzy.NumPerm = 0 }},
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := NewEngine(cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestPrepare_UnknownRefiner(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Fuzzy.Refiner = "levenshtein"
	e, err := NewEngine(cfg)
	require.NoError(t, err)

	_, err = e.Prepare([]string{"a"}, []string{"a"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
