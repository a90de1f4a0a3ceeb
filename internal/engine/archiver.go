package engine

import (
	"context"
	"io"
)

// Archiver bundles manifests into a single archive.
type Archiver interface {
	// AddFile adds a manifest to the bundle under the given filename.
	AddFile(ctx context.Context, filename string, data io.Reader) error

	// Close finalizes the bundle and returns a reader for the complete archive data.
	Close() (io.Reader, error)

	// Extension returns the file extension for this bundle type (e.g., ".tar.zst").
	Extension() string
}
