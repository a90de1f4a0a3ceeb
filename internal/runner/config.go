package runner

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	v1 "github.com/infracollect/dicomcheck/apis/v1"
	"github.com/infracollect/dicomcheck/internal/workspace"
	"github.com/samber/lo"
)

const (
	DefaultConcurrency = 1
	DefaultOutputDir   = "output"
)

var (
	defaultValidator = validator.New(validator.WithRequiredStructEnabled())
)

// ParseCheckConfig parses a YAML or JSON run configuration and validates it.
func ParseCheckConfig(data []byte) (v1.CheckConfig, error) {
	var cfg v1.CheckConfig
	if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.Strict()); err != nil {
		return v1.CheckConfig{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := ValidateCheckConfig(cfg); err != nil {
		return v1.CheckConfig{}, err
	}

	return cfg, nil
}

// ValidateCheckConfig checks struct constraints and the rules the struct tags
// cannot express.
func ValidateCheckConfig(cfg v1.CheckConfig) error {
	if err := defaultValidator.Struct(cfg); err != nil {
		return fmt.Errorf("failed to validate config: %w", err)
	}

	if out := cfg.Spec.Output; out != nil && out.Sink != nil {
		set := lo.Compact([]bool{out.Sink.Filesystem != nil, out.Sink.Stdout != nil, out.Sink.S3 != nil})
		if len(set) > 1 {
			return fmt.Errorf("failed to validate config: output.sink must set at most one of filesystem, stdout, s3")
		}
		if out.Sink.Stdout != nil && out.Archive != nil {
			return fmt.Errorf("failed to validate config: stdout sink cannot be used with archive configuration")
		}
	}

	return nil
}

// settings are the resolved scalar options of a run.
type settings struct {
	extension    string
	stripChars   string
	concurrency  int
	workspaceDir string
}

func resolveSettings(cfg v1.CheckConfig) settings {
	s := settings{
		extension:   workspace.DefaultExtension,
		stripChars:  workspace.DefaultStripChars,
		concurrency: DefaultConcurrency,
	}

	spec := cfg.Spec
	if spec.Extension != "" {
		s.extension = spec.Extension
	}
	if spec.Sanitize != nil && spec.Sanitize.Characters != nil {
		s.stripChars = *spec.Sanitize.Characters
	}
	if spec.Oracle != nil && spec.Oracle.Concurrency > 0 {
		s.concurrency = spec.Oracle.Concurrency
	}
	if spec.Workspace != nil {
		s.workspaceDir = spec.Workspace.Directory
	}

	return s
}

// DefaultOutputDirectory is the "output" directory next to the running
// executable.
func DefaultOutputDirectory() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), DefaultOutputDir), nil
}
