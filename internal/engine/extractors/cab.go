package extractors

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/infracollect/dicomcheck/internal/engine"
	"go.uber.org/zap"
)

const CabExtractorKind = "cab"

var DefaultCabProgram = []string{"cabextract"}

type CabExtractorConfig struct {
	// Program is the extraction tool and any leading arguments. It is invoked
	// as <program...> -d <dest> <archive>.
	Program []string
}

// CabExtractor unpacks CAB archives through an external tool.
type CabExtractor struct {
	logger  *zap.Logger
	program []string
}

func NewCabExtractor(logger *zap.Logger, cfg CabExtractorConfig) (*CabExtractor, error) {
	program := cfg.Program
	if len(program) == 0 {
		program = DefaultCabProgram
	}
	if program[0] == "" {
		return nil, fmt.Errorf("program is required")
	}

	return &CabExtractor{logger: logger, program: program}, nil
}

func (e *CabExtractor) Name() string   { return fmt.Sprintf("cab(%s)", e.program[0]) }
func (e *CabExtractor) Kind() string   { return CabExtractorKind }
func (e *CabExtractor) Suffix() string { return ".cab" }

func (e *CabExtractor) Extract(ctx context.Context, archivePath, destDir string) error {
	if _, err := os.Stat(archivePath); err != nil {
		return &engine.ExtractionFailedError{Archive: archivePath, Err: err}
	}

	args := append(append([]string{}, e.program[1:]...), "-d", destDir, archivePath)
	cmd := exec.CommandContext(ctx, e.program[0], args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.logger.Debug("invoking cab extractor",
		zap.Strings("program", e.program),
		zap.String("archive", archivePath),
		zap.String("dest", destDir),
	)
	start := time.Now()
	err := cmd.Run()
	exitCode := -1
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}
	e.logger.Debug("cab extractor finished",
		zap.Int("exit_code", exitCode),
		zap.Duration("duration", time.Since(start)),
	)

	if err != nil {
		return &engine.ExtractionFailedError{
			Archive: archivePath,
			Stderr:  strings.TrimSpace(stderr.String()),
			Err:     err,
		}
	}

	return nil
}
