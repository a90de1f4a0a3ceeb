package engine

import (
	"context"
	"io"
)

// Encoder turns an ordered list of file paths into a manifest.
type Encoder interface {
	// EncodeManifest encodes paths, in order, to a reader.
	EncodeManifest(ctx context.Context, paths []string) (io.Reader, error)

	// FileExtension returns extension without dot (e.g., "csv").
	FileExtension() string
}
