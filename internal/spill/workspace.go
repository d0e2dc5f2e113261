// Package spill holds intermediate similarity pairs on disk between the
// scoring and selection stages of a run.
package spill

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Workspace is a run-private temporary directory.
type Workspace struct {
	RunID string
	Dir   string
	keep  bool
}

// NewWorkspace creates a fresh directory under base named after a new run
// id. When keep is true Cleanup leaves the directory in place.
func NewWorkspace(base string, keep bool) (*Workspace, error) {
	if base == "" {
		base = "."
	}
	id := uuid.NewString()
	dir := filepath.Join(base, "createch-"+id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return &Workspace{RunID: id, Dir: dir, keep: keep}, nil
}

// Path returns name joined to the workspace directory.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.Dir, name)
}

// Cleanup removes the workspace unless it is being kept.
func (w *Workspace) Cleanup() error {
	if w.keep {
		log.Info().Str("dir", w.Dir).Msg("keeping temporary workspace")
		return nil
	}
	if err := os.RemoveAll(w.Dir); err != nil {
		return fmt.Errorf("failed to remove workspace %s: %w", w.Dir, err)
	}
	return nil
}
