package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/nestauk/createch/internal/links"
	"github.com/nestauk/createch/internal/sources"
)

// createLinksCmd creates the command that relabels a match table as
// source to company links
func createLinksCmd(a *app) *cobra.Command {
	var (
		minScore float64
		output   string
	)

	cmd := &cobra.Command{
		Use:       "links <source> <file>",
		Short:     "Write the confident links of a match table",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{sources.GtR, sources.Crunchbase},
		RunE: func(cmd *cobra.Command, args []string) error {
			source, path := args[0], args[1]

			all, err := links.Load(a.fs, path, source)
			if err != nil {
				return err
			}
			kept := links.FilterScore(all, minScore)
			log.Info().
				Str("source", source).
				Int("links", len(all)).
				Int("kept", len(kept)).
				Float64("min_score", minScore).
				Msg("filtered links")

			if output == "" || output == "-" {
				return links.Write(os.Stdout, source, kept)
			}
			return writeLinks(a.fs, output, source, kept)
		},
	}

	cmd.Flags().Float64Var(&minScore, "min-score", links.DefaultMinScore, "Minimum score for a link to be kept")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output CSV path (default stdout)")

	return cmd
}

// writeLinks writes the links CSV to a temporary file and renames it into
// place once it is complete.
func writeLinks(fs afero.Fs, path, source string, kept []links.Link) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp := path + ".tmp"
	f, err := fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}
	if err := links.Write(f, source, kept); err != nil {
		_ = f.Close()
		_ = fs.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = fs.Remove(tmp)
		return fmt.Errorf("failed to close %s: %w", tmp, err)
	}
	if err := fs.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}
