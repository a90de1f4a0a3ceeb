package extractors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/infracollect/dicomcheck/internal/engine"
	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"
)

const ZipExtractorKind = "zip"

// ZipExtractor unpacks ZIP archives in process.
type ZipExtractor struct {
	logger *zap.Logger
}

func NewZipExtractor(logger *zap.Logger) *ZipExtractor {
	return &ZipExtractor{logger: logger}
}

func (e *ZipExtractor) Name() string   { return "zip" }
func (e *ZipExtractor) Kind() string   { return ZipExtractorKind }
func (e *ZipExtractor) Suffix() string { return ".zip" }

func (e *ZipExtractor) Extract(ctx context.Context, archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return &engine.ExtractionFailedError{Archive: archivePath, Err: err}
	}
	defer r.Close()

	e.logger.Debug("extracting zip archive",
		zap.String("archive", archivePath),
		zap.String("dest", destDir),
		zap.Int("entries", len(r.File)),
	)

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("context cancelled while extracting %s: %w", archivePath, err)
		}
		if err := extractZipEntry(f, destDir); err != nil {
			return &engine.ExtractionFailedError{Archive: archivePath, Err: err}
		}
	}

	return nil
}

func extractZipEntry(f *zip.File, destDir string) (err error) {
	target, err := safeJoin(destDir, f.Name)
	if err != nil {
		return err
	}

	info := f.FileInfo()
	if info.IsDir() {
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", target, err)
		}
		return nil
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("entry %s is not a regular file", f.Name)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(target), err)
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open entry %s: %w", f.Name, err)
	}
	defer src.Close()

	mode := info.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", target, err)
	}
	defer func() {
		err = errors.Join(err, dst.Close())
	}()

	if _, err = io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to write entry %s: %w", f.Name, err)
	}

	return nil
}

// safeJoin joins name under base and rejects names that escape base.
func safeJoin(base, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || filepath.VolumeName(clean) != "" {
		return "", fmt.Errorf("entry %s has an absolute path", name)
	}

	target := filepath.Join(base, clean)
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return "", fmt.Errorf("entry %s: %w", name, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("entry %s escapes the destination", name)
	}
	return target, nil
}
