package sinks

import (
	"context"
	"fmt"
	"io"

	"github.com/infracollect/dicomcheck/internal/engine"
)

// StreamSink writes every manifest to a single writer, each preceded by a
// "# <path>" line naming it.
type StreamSink struct {
	w io.Writer
}

func NewStreamSink(w io.Writer) engine.Sink {
	return &StreamSink{w: w}
}

func (s *StreamSink) Name() string {
	return "stream"
}

func (s *StreamSink) Kind() string {
	return "stream"
}

func (s *StreamSink) Write(ctx context.Context, path string, data io.Reader) error {
	if _, err := fmt.Fprintf(s.w, "# %s\n", path); err != nil {
		return fmt.Errorf("failed to write manifest name: %w", err)
	}
	if _, err := io.Copy(s.w, data); err != nil {
		return fmt.Errorf("failed to copy data: %w", err)
	}
	return nil
}

func (s *StreamSink) Close(ctx context.Context) error {
	return nil
}
