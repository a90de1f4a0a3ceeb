package runner

import (
	"context"
	"fmt"
	"os"
	"time"

	v1 "github.com/infracollect/dicomcheck/apis/v1"
	"github.com/infracollect/dicomcheck/internal/engine"
	"github.com/infracollect/dicomcheck/internal/engine/archivers"
	"github.com/infracollect/dicomcheck/internal/engine/sinks"
	"github.com/samber/lo"
)

// SinkFactory creates the sink manifests for one run are written to. base is
// the archive's base name.
type SinkFactory func(ctx context.Context, base string) (engine.Sink, error)

// newSinkFactory returns a factory honoring the output section of cfg.
// Sinks are created per run since writing closes them.
func newSinkFactory(cfg v1.CheckConfig) SinkFactory {
	return func(ctx context.Context, base string) (engine.Sink, error) {
		sink, err := buildInnerSink(ctx, cfg, base)
		if err != nil {
			return nil, err
		}

		if cfg.Spec.Output != nil && cfg.Spec.Output.Archive != nil {
			return wrapWithArchiveSink(cfg.Spec.Output.Archive, sink, base)
		}

		return sink, nil
	}
}

// buildInnerSink creates the underlying sink (filesystem, stdout, or S3).
func buildInnerSink(ctx context.Context, cfg v1.CheckConfig, base string) (engine.Sink, error) {
	out := cfg.Spec.Output
	if out == nil || out.Sink == nil || out.Sink.Filesystem != nil {
		return buildFilesystemSink(out)
	}

	if out.Sink.Stdout != nil {
		if out.Archive != nil {
			return nil, fmt.Errorf("stdout sink cannot be used with archive configuration")
		}
		return sinks.NewStreamSink(os.Stdout), nil
	}

	if out.Sink.S3 != nil {
		return buildS3Sink(ctx, cfg, base)
	}

	return nil, fmt.Errorf("invalid sink configuration: no sink type specified")
}

func buildFilesystemSink(out *v1.OutputSpec) (engine.Sink, error) {
	var path string
	if out != nil {
		path = out.Directory
	}

	if path == "" {
		dir, err := DefaultOutputDirectory()
		if err != nil {
			return nil, err
		}
		path = dir
	}

	return sinks.NewFilesystemSinkFromPath(path)
}

func buildS3Sink(ctx context.Context, cfg v1.CheckConfig, base string) (engine.Sink, error) {
	s3Spec := cfg.Spec.Output.Sink.S3

	s3Cfg := sinks.S3Config{
		Bucket:         s3Spec.Bucket,
		Region:         lo.FromPtr(s3Spec.Region),
		Endpoint:       lo.FromPtr(s3Spec.Endpoint),
		Prefix:         lo.FromPtr(s3Spec.Prefix),
		ForcePathStyle: s3Spec.ForcePathStyle,
		Metadata: map[string]string{
			"archive": base,
		},
	}

	if s3Spec.Credentials != nil {
		s3Cfg.AccessKeyID = s3Spec.Credentials.AccessKeyID
		s3Cfg.SecretAccessKey = s3Spec.Credentials.SecretAccessKey
	}

	sink, err := sinks.NewS3Sink(ctx, s3Cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 sink: %w", err)
	}

	return sink, nil
}

func wrapWithArchiveSink(archive *v1.ArchiveSpec, inner engine.Sink, base string) (engine.Sink, error) {
	compression := archive.Compression
	if compression == "" {
		compression = "gzip"
	}

	archiver, err := archivers.NewTarArchiver(compression, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to create tar archiver: %w", err)
	}

	name := archive.Name
	if name == "" {
		name = base
	}

	return sinks.NewArchiveSink(inner, archiver, name), nil
}
