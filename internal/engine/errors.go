package engine

import (
	"fmt"
	"strings"
)

// UnsupportedFormatError is returned when no extractor is registered for an
// archive's suffix.
type UnsupportedFormatError struct {
	Path      string
	Available []string // registered suffixes
}

func (e *UnsupportedFormatError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("unsupported archive type %q: no extractors registered", e.Path)
	}
	return fmt.Sprintf("unsupported archive type %q (available: %v)", e.Path, e.Available)
}

// ExtractionFailedError is returned when an archive could not be unpacked.
// Whatever was written to the destination must not be used.
type ExtractionFailedError struct {
	Archive string
	Stderr  string
	Err     error
}

func (e *ExtractionFailedError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "failed to extract %s", e.Archive)
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	if e.Stderr != "" {
		fmt.Fprintf(&sb, ": %s", e.Stderr)
	}
	return sb.String()
}

func (e *ExtractionFailedError) Unwrap() error {
	return e.Err
}

// OracleInvocationError describes a failure to obtain an answer from the
// validity oracle for one file. It never aborts a run.
type OracleInvocationError struct {
	Path   string
	Output string
	Err    error
}

func (e *OracleInvocationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("oracle gave no verdict for %s: %q", e.Path, e.Output)
	}
	return fmt.Sprintf("oracle invocation failed for %s: %v", e.Path, e.Err)
}

func (e *OracleInvocationError) Unwrap() error {
	return e.Err
}

// CleanupError is reported when a scratch workspace could not be removed.
type CleanupError struct {
	Path string
	Err  error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("failed to remove workspace %s: %v", e.Path, e.Err)
}

func (e *CleanupError) Unwrap() error {
	return e.Err
}

// NameCollisionError is returned when sanitizing a name would replace an
// existing entry.
type NameCollisionError struct {
	Source string
	Target string
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("cannot rename %s: %s already exists", e.Source, e.Target)
}
