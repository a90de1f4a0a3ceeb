package runner

import (
	"context"
	"errors"
	"fmt"

	v1 "github.com/infracollect/dicomcheck/apis/v1"
	"github.com/infracollect/dicomcheck/internal/engine"
	"github.com/infracollect/dicomcheck/internal/engine/encoders"
	"github.com/infracollect/dicomcheck/internal/engine/extractors"
	"github.com/infracollect/dicomcheck/internal/engine/oracles"
	"github.com/infracollect/dicomcheck/internal/report"
	"github.com/infracollect/dicomcheck/internal/workspace"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Stage is the last step a run completed.
type Stage string

const (
	StageStart      Stage = "start"
	StageExtracted  Stage = "extracted"
	StageSanitized  Stage = "sanitized"
	StageDiscovered Stage = "discovered"
	StageClassified Stage = "classified"
	StageReported   Stage = "reported"
	StageCleanedUp  Stage = "cleaned_up"
)

const workspacePrefix = "dicomcheck-"

// Result describes a finished run. It is populated as far as the run got,
// so a failed run still reports its stage and workspace.
type Result struct {
	Stage     Stage
	Workspace string
	Manifests report.Names
	Sink      string
	Summary   report.Summary
}

type Runner struct {
	logger      *zap.Logger
	fs          afero.Fs
	registry    *engine.Registry
	checker     engine.Checker
	encoder     engine.Encoder
	sinkFactory SinkFactory
	settings    settings
}

type Option func(*Runner)

// WithChecker replaces the exec oracle.
func WithChecker(checker engine.Checker) Option {
	return func(r *Runner) { r.checker = checker }
}

// WithRegistry replaces the default ZIP and CAB extractors.
func WithRegistry(registry *engine.Registry) Option {
	return func(r *Runner) { r.registry = registry }
}

// WithSink writes manifests to sink instead of the configured output.
func WithSink(sink engine.Sink) Option {
	return func(r *Runner) {
		r.sinkFactory = func(context.Context, string) (engine.Sink, error) { return sink, nil }
	}
}

// New builds a runner from cfg. Templates in cfg must already be expanded.
func New(ctx context.Context, logger *zap.Logger, cfg v1.CheckConfig, opts ...Option) (*Runner, error) {
	if err := ValidateCheckConfig(cfg); err != nil {
		return nil, err
	}

	r := &Runner{
		logger:   logger,
		fs:       afero.NewOsFs(),
		encoder:  encoders.NewCSVEncoder(),
		settings: resolveSettings(cfg),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.registry == nil {
		registry, err := buildRegistry(logger.Named("extractors"), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to build extractor registry: %w", err)
		}
		r.registry = registry
	}

	if r.checker == nil {
		checker, err := buildChecker(logger.Named("oracle"), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to build oracle: %w", err)
		}
		r.checker = checker
	}

	if r.sinkFactory == nil {
		r.sinkFactory = newSinkFactory(cfg)
	}

	logger.Debug("created runner",
		zap.String("config_name", cfg.Metadata.Name),
		zap.Strings("extractors", r.registry.AvailableSuffixes()),
		zap.String("oracle", r.checker.Name()),
		zap.Int("concurrency", r.settings.concurrency),
	)

	return r, nil
}

func buildRegistry(logger *zap.Logger, cfg v1.CheckConfig) (*engine.Registry, error) {
	var extractCfg extractors.Config
	if cfg.Spec.Extract != nil && cfg.Spec.Extract.Cab != nil {
		extractCfg.Cab.Program = cfg.Spec.Extract.Cab.Program
	}

	registry := engine.NewRegistry(logger)
	if err := extractors.Register(registry, logger, extractCfg); err != nil {
		return nil, err
	}
	return registry, nil
}

func buildChecker(logger *zap.Logger, cfg v1.CheckConfig) (engine.Checker, error) {
	var oracleCfg oracles.ExecCheckerConfig
	if o := cfg.Spec.Oracle; o != nil {
		oracleCfg.Program = o.Program
		oracleCfg.Timeout = o.Timeout
		oracleCfg.Env = o.Env
	}
	return oracles.NewExecChecker(logger, oracleCfg)
}

// Run validates every candidate file in archivePath and writes the valid and
// corrupt manifests. The scratch workspace is removed on every exit path; a
// failure to remove it is logged and does not change the outcome.
func (r *Runner) Run(ctx context.Context, archivePath string) (result Result, err error) {
	result.Stage = StageStart
	base := BaseName(archivePath)
	logger := r.logger.With(zap.String("archive", archivePath))

	// Unsupported archives fail before anything touches the disk.
	extractor, err := r.registry.Extractor(archivePath)
	if err != nil {
		return result, err
	}

	ws, err := workspace.New(r.fs, r.settings.workspaceDir, workspacePrefix)
	if err != nil {
		return result, err
	}
	result.Workspace = ws.Path()
	logger.Debug("created workspace", zap.String("workspace", ws.Path()))

	defer func() {
		// Cleanup must run even if ctx was cancelled.
		if cerr := ws.Close(context.WithoutCancel(ctx)); cerr != nil {
			var cleanupErr *engine.CleanupError
			if errors.As(cerr, &cleanupErr) {
				logger.Warn("failed to remove workspace", zap.String("workspace", cleanupErr.Path), zap.Error(cleanupErr.Err))
			} else {
				logger.Warn("failed to remove workspace", zap.Error(cerr))
			}
			return
		}
		if result.Stage == StageReported {
			result.Stage = StageCleanedUp
		}
	}()

	if err := extractor.Extract(ctx, archivePath, ws.Path()); err != nil {
		return result, err
	}
	result.Stage = StageExtracted
	logger.Info("extracted archive", zap.String("extractor", extractor.Name()))

	renamed, err := workspace.Sanitize(ws.Fs(), ws.Path(), r.settings.stripChars)
	if err != nil {
		return result, fmt.Errorf("failed to sanitize workspace: %w", err)
	}
	result.Stage = StageSanitized
	logger.Debug("sanitized names", zap.Int("renamed", renamed))

	files, err := workspace.Discover(ws.Fs(), ws.Path(), r.settings.extension)
	if err != nil {
		return result, fmt.Errorf("failed to discover candidate files: %w", err)
	}
	result.Stage = StageDiscovered
	logger.Info("discovered candidate files", zap.Int("count", len(files)), zap.String("extension", r.settings.extension))

	verdicts, err := Classify(ctx, logger, r.checker, files, r.settings.concurrency)
	if err != nil {
		return result, err
	}
	result.Stage = StageClassified

	valid, corrupt, summary := report.Partition(verdicts)
	result.Summary = summary

	sink, err := r.sinkFactory(ctx, base)
	if err != nil {
		return result, fmt.Errorf("failed to build sink: %w", err)
	}
	result.Sink = sink.Name()

	writer := report.NewWriter(logger.Named("report"), r.encoder, sink)
	names, err := writer.Write(ctx, base, valid, corrupt)
	if err != nil {
		return result, fmt.Errorf("failed to write manifests: %w", err)
	}
	result.Manifests = names
	result.Stage = StageReported

	logger.Info("validation complete", summary.Fields()...)

	return result, nil
}
