package sinks

import (
	"context"
	"fmt"
	"io"

	"github.com/infracollect/dicomcheck/internal/engine"
)

// ArchiveSink wraps a sink and bundles every manifest into one archive.
// On Close, it finalizes the archive and writes it to the inner sink as
// <baseName><archiver extension>.
type ArchiveSink struct {
	inner    engine.Sink
	archiver engine.Archiver
	baseName string
}

func NewArchiveSink(inner engine.Sink, archiver engine.Archiver, baseName string) *ArchiveSink {
	return &ArchiveSink{
		inner:    inner,
		archiver: archiver,
		baseName: baseName,
	}
}

// ArchiveName is the name the bundle is written under.
func (s *ArchiveSink) ArchiveName() string {
	return s.baseName + s.archiver.Extension()
}

func (s *ArchiveSink) Name() string {
	return fmt.Sprintf("archive(%s)->%s", s.ArchiveName(), s.inner.Name())
}

func (s *ArchiveSink) Kind() string {
	return "archive"
}

// Write adds a manifest to the archive.
func (s *ArchiveSink) Write(ctx context.Context, path string, data io.Reader) error {
	if err := s.archiver.AddFile(ctx, path, data); err != nil {
		return fmt.Errorf("failed to add file to archive: %w", err)
	}
	return nil
}

// Close finalizes the archive and writes it to the inner sink.
func (s *ArchiveSink) Close(ctx context.Context) error {
	reader, err := s.archiver.Close()
	if err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}

	if err := s.inner.Write(ctx, s.ArchiveName(), reader); err != nil {
		return fmt.Errorf("failed to write archive to sink: %w", err)
	}

	if err := s.inner.Close(ctx); err != nil {
		return fmt.Errorf("failed to close inner sink: %w", err)
	}

	return nil
}
