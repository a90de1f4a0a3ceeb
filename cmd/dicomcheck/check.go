package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	v1 "github.com/infracollect/dicomcheck/apis/v1"
	"github.com/infracollect/dicomcheck/internal/runner"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// errUsage is returned after the usage line has been printed.
var errUsage = errors.New("usage")

func checkAction(ctx context.Context, command *cli.Command) error {
	if command.Args().Len() != 1 {
		fmt.Fprintf(os.Stdout, "Usage: %s %s\n", command.Name, command.ArgsUsage)
		return errUsage
	}

	logger := getLogger(ctx)
	archivePath := command.Args().First()

	cfg, err := loadConfig(command.String("config"))
	if err != nil {
		return err
	}

	variables, err := runner.BuildVariables(archivePath, time.Now(), command.StringSlice("allowed-env"))
	if err != nil {
		return fmt.Errorf("failed to build variables: %w", err)
	}

	if err := runner.ExpandTemplates(&cfg, variables); err != nil {
		return fmt.Errorf("failed to expand templates: %w", err)
	}

	r, err := runner.New(ctx, logger.Named("runner"), cfg)
	if err != nil {
		return fmt.Errorf("failed to create runner: %w", err)
	}

	result, err := r.Run(ctx, archivePath)
	if err != nil {
		return fmt.Errorf("failed to check archive '%s' (stage %s): %w", archivePath, result.Stage, err)
	}

	if isInteractive(ctx) {
		fmt.Fprintf(os.Stderr, "✓ %d valid, %d corrupt (%d oracle failures)\n",
			result.Summary.Valid, result.Summary.Corrupt, result.Summary.OracleFailures)
		fmt.Fprintf(os.Stderr, "  %s\n  %s\n  → %s\n", result.Manifests.Valid, result.Manifests.Corrupt, result.Sink)
	}

	logger.Debug("run finished", zap.String("stage", string(result.Stage)))
	return nil
}

// loadConfig reads the optional run configuration. An empty filename yields
// the default configuration.
func loadConfig(filename string) (v1.CheckConfig, error) {
	if filename == "" {
		return v1.CheckConfig{}, nil
	}

	data, err := readConfigFile(filename)
	if err != nil {
		return v1.CheckConfig{}, fmt.Errorf("failed to read config file '%s': %w", filename, err)
	}

	cfg, err := runner.ParseCheckConfig(data)
	if err != nil {
		return v1.CheckConfig{}, fmt.Errorf("config file '%s' is invalid: %w", filename, formatValidationError(err))
	}

	return cfg, nil
}

// readConfigFile reads filename, or standard input when filename is "-".
func readConfigFile(filename string) ([]byte, error) {
	if filename == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(filename)
}
