// Package workspace manages the scratch directory an archive is extracted
// into, and the in-place operations run on it before classification.
package workspace

import (
	"context"
	"fmt"
	"sync"

	"github.com/infracollect/dicomcheck/internal/engine"
	"github.com/spf13/afero"
)

// Workspace is a scratch directory exclusively owned by one run.
type Workspace struct {
	fs   afero.Fs
	path string

	once sync.Once
	err  error
}

// New creates a fresh, uniquely named directory under parent. An empty parent
// uses the OS temporary directory.
func New(fs afero.Fs, parent, prefix string) (*Workspace, error) {
	path, err := afero.TempDir(fs, parent, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return &Workspace{fs: fs, path: path}, nil
}

func (w *Workspace) Path() string {
	return w.path
}

func (w *Workspace) Fs() afero.Fs {
	return w.fs
}

// Close removes the workspace and everything under it. Only the first call
// does any work; later calls return the first result.
func (w *Workspace) Close(_ context.Context) error {
	w.once.Do(func() {
		if err := w.fs.RemoveAll(w.path); err != nil {
			w.err = &engine.CleanupError{Path: w.path, Err: err}
		}
	})
	return w.err
}
