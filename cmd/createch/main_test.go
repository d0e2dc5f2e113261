package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestauk/createch/internal/cache"
	"github.com/nestauk/createch/internal/match"
	"github.com/nestauk/createch/internal/metrics"
	"github.com/nestauk/createch/internal/records"
	"github.com/nestauk/createch/internal/sources"
)

func execute(t *testing.T, fs afero.Fs, args ...string) error {
	t.Helper()
	cmd := newRootCmd(fs)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

func TestMatchThenLinks(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, records.WriteJSON(fs, "in/gtr.json", []records.NameRecord{
		{ID: "g1", Name: "Acme Widgets Ltd"},
		{ID: "g2", Name: "BBC"},
	}))
	require.NoError(t, records.WriteJSON(fs, "in/ch.json", []records.NameRecord{
		{ID: "01", Name: "British Broadcasting Corporation"},
		{ID: "02", Name: "ACME WIDGETS LIMITED"},
	}))

	err := execute(t, fs, "match",
		"--names-y", "in/gtr.json",
		"--names-x", "in/ch.json",
		"--output", "out/gtr_ch.csv",
		"--clean-names",
		"--tmp-dir", t.TempDir(),
		"--log-level", "error",
	)
	require.NoError(t, err)

	rows, err := match.ReadCSV(fs, "out/gtr_ch.csv")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "g1", rows[0].LeftID)
	assert.Equal(t, "02", rows[0].RightID)
	assert.InDelta(t, 100, rows[0].Score, 1e-9)

	require.NoError(t, execute(t, fs, "links", "gtr", "out/gtr_ch.csv", "-o", "out/links.csv", "--log-level", "error"))
	data, err := afero.ReadFile(fs, "out/links.csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "gtr_id,gtr_name,company_number,ch_name,sim_mean", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "g1,acme widgets,02,acme widgets,"), lines[1])

	exists, err := afero.Exists(fs, "out/links.csv.tmp")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMatch_InvalidFlag(t *testing.T) {
	fs := afero.NewMemMapFs()
	err := execute(t, fs, "match", "--threshold", "150", "--tmp-dir", t.TempDir(), "--log-level", "error")
	assert.Error(t, err)
}

func TestMatch_ConfigFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "createch.yaml", []byte("fuzzy:\n  refiner: levenshtein\n"), 0o644))
	err := execute(t, fs, "--config", "createch.yaml", "match", "--log-level", "error")
	assert.Error(t, err)
}

func TestLinks_UnknownSource(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, match.WriteCSV(fs, "t.csv", nil))
	assert.Error(t, execute(t, fs, "links", "patents", "t.csv", "--log-level", "error"))
}

type staticFetcher map[string][]records.NameRecord

func (f staticFetcher) Names(_ context.Context, src sources.Source) ([]records.NameRecord, error) {
	return f[src.Name], nil
}

func TestExportNames_WritesCachesAndMetrics(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	fetcher := staticFetcher{
		sources.GtR:            {{ID: "g1", Name: "Acme"}},
		sources.CompaniesHouse: {{ID: "01", Name: "ACME LTD"}, {ID: "02", Name: "GLOBEX LTD"}},
	}
	m := metrics.New()
	getter := sources.NewGetter(fetcher, cache.NewFileStore(fs, "cache"), m)

	require.NoError(t, exportNames(ctx, fs, getter, sources.GtR, "run-1", "out", false))
	require.NoError(t, exportNames(ctx, fs, getter, sources.GtR, "run-1", "out", false))

	gtr, err := records.LoadJSON(fs, "out/gtr_names.json")
	require.NoError(t, err)
	assert.Equal(t, fetcher[sources.GtR], gtr)
	ch, err := records.LoadJSON(fs, "out/company_names.json")
	require.NoError(t, err)
	assert.Len(t, ch, 2)

	path := filepath.Join(t.TempDir(), "prepare.prom")
	require.NoError(t, m.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `createch_cache_lookups_total{result="hit"} 2`)
	assert.Contains(t, string(data), `createch_cache_lookups_total{result="miss"} 2`)
}
