// Package encoders provides manifest encoders.
package encoders

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/infracollect/dicomcheck/internal/engine"
)

// ManifestColumn is the header of the single manifest column.
const ManifestColumn = "file_path"

// CSVEncoder writes manifests as single-column CSV with a header row.
type CSVEncoder struct{}

func NewCSVEncoder() engine.Encoder {
	return &CSVEncoder{}
}

func (e *CSVEncoder) EncodeManifest(ctx context.Context, paths []string) (io.Reader, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{ManifestColumn}); err != nil {
		return nil, fmt.Errorf("failed to write manifest header: %w", err)
	}
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled: %w", err)
		}
		if err := w.Write([]string{p}); err != nil {
			return nil, fmt.Errorf("failed to write manifest row %s: %w", p, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush manifest: %w", err)
	}

	return &buf, nil
}

// FileExtension returns "csv".
func (e *CSVEncoder) FileExtension() string {
	return "csv"
}
