package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/nestauk/createch/internal/cache"
	"github.com/nestauk/createch/internal/db"
	"github.com/nestauk/createch/internal/metrics"
	"github.com/nestauk/createch/internal/records"
	"github.com/nestauk/createch/internal/sources"
)

// createPrepareCmd creates the command that exports warehouse names to the
// JSON inputs of the match command
func createPrepareCmd(a *app) *cobra.Command {
	var (
		runID       string
		outDir      string
		refresh     bool
		metricsFile string
	)

	cmd := &cobra.Command{
		Use:   "prepare <source>",
		Short: "Export source and Companies House names from the warehouse",
		Long: `Reads the names of <source> (gtr or crunchbase) and Companies House from the
warehouse and writes them as {id: name} JSON files for the match command.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{sources.GtR, sources.Crunchbase},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			source := args[0]
			if source == sources.CompaniesHouse {
				return fmt.Errorf("%s is always exported; pass the source to match against it", source)
			}
			if _, err := sources.Lookup(source); err != nil {
				return err
			}

			conn, err := db.NewConnection(ctx, a.cfg.Postgres)
			if err != nil {
				return err
			}
			defer conn.Close()

			store, err := cache.New(ctx, a.cfg.Cache, a.cfg.Redis, a.fs)
			if err != nil {
				return err
			}
			if c, ok := store.(io.Closer); ok {
				defer c.Close()
			}

			m := metrics.New()
			getter := sources.NewGetter(sources.NewWarehouse(conn.DB), store, m)

			if err := exportNames(ctx, a.fs, getter, source, runID, outDir, refresh); err != nil {
				return err
			}

			if metricsFile != "" {
				return m.WriteTextfile(metricsFile)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run-id", "latest", "Cache namespace for this export")
	cmd.Flags().StringVar(&outDir, "out-dir", "outputs/.cache", "Directory for the exported JSON files")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Ignore cached names and re-read the warehouse")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write cache metrics to this node exporter textfile")

	return cmd
}

// exportNames writes the names of source and of Companies House to outDir,
// going through the getter's cache.
func exportNames(ctx context.Context, fs afero.Fs, getter *sources.Getter, source, runID, outDir string, refresh bool) error {
	exports := []struct {
		source string
		file   string
	}{
		{source, source + "_names.json"},
		{sources.CompaniesHouse, "company_names.json"},
	}
	for _, e := range exports {
		if refresh {
			if err := getter.Invalidate(ctx, e.source, runID); err != nil {
				return err
			}
		}
		recs, err := getter.Names(ctx, e.source, runID)
		if err != nil {
			return err
		}
		path := filepath.Join(outDir, e.file)
		if err := records.WriteJSON(fs, path, recs); err != nil {
			return err
		}
		log.Info().Str("source", e.source).Int("names", len(recs)).Str("path", path).Msg("exported names")
		fmt.Printf("%s: %d names -> %s\n", e.source, len(recs), path)
	}
	return nil
}
