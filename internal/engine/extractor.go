package engine

import "context"

// Extractor unpacks an archive into a destination directory, preserving the
// archive's internal directory structure.
type Extractor interface {
	Named

	// Extract unpacks archivePath into destDir. destDir must already exist.
	Extract(ctx context.Context, archivePath, destDir string) error

	// Suffix returns the lowercase filename suffix this extractor handles (e.g., ".zip").
	Suffix() string
}
