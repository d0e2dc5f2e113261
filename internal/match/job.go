package match

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/nestauk/createch/internal/records"
	"github.com/nestauk/createch/internal/spill"
)

// Job is one batch invocation: the y names are matched against the x names
// and the table is written to OutputPath.
type Job struct {
	Config     Config
	Fs         afero.Fs
	NamesY     string
	NamesX     string
	OutputPath string
	Options    []Option
}

// Run loads both name caches, runs the pipeline in a fresh workspace and
// writes the match table. Nothing is written if any step fails.
func (j *Job) Run(ctx context.Context) (*Summary, error) {
	fs := j.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	left, err := records.LoadJSON(fs, j.NamesY)
	if err != nil {
		return nil, err
	}
	right, err := records.LoadJSON(fs, j.NamesX)
	if err != nil {
		return nil, err
	}

	if j.Config.TestMode {
		left = records.Head(left, j.Config.TestModeRows)
		right = records.Head(right, j.Config.TestModeRows)
		log.Info().
			Int("rows", j.Config.TestModeRows).
			Int("left", len(left)).
			Int("right", len(right)).
			Msg("test mode: inputs truncated")
	}

	pipeline, err := NewPipeline(j.Config, j.Options...)
	if err != nil {
		return nil, err
	}

	ws, err := spill.NewWorkspace(j.Config.TmpDir, j.Config.KeepTmp)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := ws.Cleanup(); cerr != nil {
			log.Warn().Err(cerr).Msg("error removing workspace")
		}
	}()

	rows, summary, err := pipeline.Run(ctx, ws, left, right)
	if err != nil {
		return nil, fmt.Errorf("failed to match names: %w", err)
	}

	if err := WriteCSV(fs, j.OutputPath, rows); err != nil {
		return nil, err
	}
	log.Info().Str("path", j.OutputPath).Int("rows", len(rows)).Msg("match table written")
	return summary, nil
}
