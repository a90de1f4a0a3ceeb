// Package report partitions verdicts and writes the valid and corrupt
// manifests.
package report

import (
	"context"
	"fmt"

	"github.com/infracollect/dicomcheck/internal/engine"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Names are the manifest file names for one archive.
type Names struct {
	Valid   string
	Corrupt string
}

// ManifestNames returns <base>_valid_file.<ext> and <base>_corrupt_file.<ext>.
func ManifestNames(base, ext string) Names {
	return Names{
		Valid:   fmt.Sprintf("%s_valid_file.%s", base, ext),
		Corrupt: fmt.Sprintf("%s_corrupt_file.%s", base, ext),
	}
}

type Summary struct {
	Candidates     int `json:"candidates"`
	Valid          int `json:"valid"`
	Corrupt        int `json:"corrupt"`
	OracleFailures int `json:"oracle_failures"`
}

func (s Summary) Fields() []zap.Field {
	return []zap.Field{
		zap.Int("candidates", s.Candidates),
		zap.Int("valid", s.Valid),
		zap.Int("corrupt", s.Corrupt),
		zap.Int("oracle_failures", s.OracleFailures),
	}
}

// Partition splits verdicts into valid and corrupt paths, keeping their
// relative order. Every verdict lands in exactly one of the two lists.
func Partition(verdicts []engine.Verdict) (valid, corrupt []string, summary Summary) {
	validVerdicts, corruptVerdicts := lo.FilterReject(verdicts, func(v engine.Verdict, _ int) bool {
		return v.Valid
	})

	valid = lo.Map(validVerdicts, func(v engine.Verdict, _ int) string { return v.Path })
	corrupt = lo.Map(corruptVerdicts, func(v engine.Verdict, _ int) string { return v.Path })

	failures := lo.CountBy(verdicts, func(v engine.Verdict) bool {
		return v.Err != nil
	})
	summary = Summary{
		Candidates:     len(verdicts),
		Valid:          len(valid),
		Corrupt:        len(corrupt),
		OracleFailures: failures,
	}
	return valid, corrupt, summary
}

// Writer encodes manifests and hands them to a sink.
type Writer struct {
	logger  *zap.Logger
	encoder engine.Encoder
	sink    engine.Sink
}

func NewWriter(logger *zap.Logger, encoder engine.Encoder, sink engine.Sink) *Writer {
	return &Writer{logger: logger, encoder: encoder, sink: sink}
}

// Write writes the valid manifest, then the corrupt manifest, then closes
// the sink. The first failure is returned; a manifest already written is
// left in place.
func (w *Writer) Write(ctx context.Context, base string, valid, corrupt []string) (Names, error) {
	names := ManifestNames(base, w.encoder.FileExtension())

	if err := w.writeManifest(ctx, names.Valid, valid); err != nil {
		return names, err
	}
	if err := w.writeManifest(ctx, names.Corrupt, corrupt); err != nil {
		return names, err
	}

	if err := w.sink.Close(ctx); err != nil {
		return names, fmt.Errorf("failed to close sink %s: %w", w.sink.Name(), err)
	}

	return names, nil
}

func (w *Writer) writeManifest(ctx context.Context, name string, paths []string) error {
	reader, err := w.encoder.EncodeManifest(ctx, paths)
	if err != nil {
		return fmt.Errorf("failed to encode manifest %s: %w", name, err)
	}

	if err := w.sink.Write(ctx, name, reader); err != nil {
		return fmt.Errorf("failed to write manifest %s: %w", name, err)
	}

	w.logger.Info("wrote manifest",
		zap.String("manifest", name),
		zap.String("sink", w.sink.Name()),
		zap.Int("entries", len(paths)),
	)
	return nil
}
