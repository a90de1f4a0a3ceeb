package oracles

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/infracollect/dicomcheck/internal/engine"
	"go.uber.org/zap"
)

const (
	ExecCheckerKind = "exec"

	ValidPrefix   = "yes: "
	InvalidPrefix = "no: "
)

var DefaultProgram = []string{"dcmftest"}

// waitDelay bounds how long a killed oracle's children may hold its pipes open.
const waitDelay = 2 * time.Second

type ExecCheckerConfig struct {
	// Program is the oracle and any leading arguments. The candidate path is
	// appended as the last argument.
	Program []string
	// Timeout bounds a single invocation. Nil means no timeout.
	Timeout *string
	Env     map[string]string
}

// NewExecChecker returns a Checker that asks an external process about each
// file and classifies its standard output.
func NewExecChecker(logger *zap.Logger, cfg ExecCheckerConfig) (engine.Checker, error) {
	program := cfg.Program
	if len(program) == 0 {
		program = DefaultProgram
	}
	if program[0] == "" {
		return nil, fmt.Errorf("program is required")
	}

	var timeout time.Duration
	if cfg.Timeout != nil {
		parsed, err := time.ParseDuration(*cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", *cfg.Timeout, err)
		}
		if parsed < 0 {
			return nil, fmt.Errorf("invalid timeout %q: must not be negative", *cfg.Timeout)
		}
		timeout = parsed
	}

	env := os.Environ()
	for k, v := range cfg.Env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}

	name := program[0]
	return engine.CheckFunction(name, ExecCheckerKind, func(ctx context.Context, path string) engine.Verdict {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		args := append(append([]string{}, program[1:]...), path)
		cmd := exec.CommandContext(ctx, program[0], args...)
		cmd.Env = env
		cmd.WaitDelay = waitDelay

		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		start := time.Now()
		err := cmd.Run()
		exitCode := -1
		if cmd.ProcessState != nil {
			exitCode = cmd.ProcessState.ExitCode()
		}
		output := strings.TrimSpace(stdout.String())

		logger.Debug("oracle finished",
			zap.String("file", path),
			zap.Int("exit_code", exitCode),
			zap.Duration("duration", time.Since(start)),
			zap.String("output", output),
		)

		if err != nil && timeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s: %w", timeout, err)
		}
		if err != nil {
			if stderrStr := strings.TrimSpace(stderr.String()); stderrStr != "" {
				err = fmt.Errorf("%w: %s", err, stderrStr)
			}
		}

		return Classify(path, output, err)
	}), nil
}

// Classify turns an oracle answer into a verdict. runErr is the error from
// running the oracle, if any. Only a clean run answering with ValidPrefix is
// valid; everything else is corrupt.
func Classify(path, output string, runErr error) engine.Verdict {
	v := engine.Verdict{Path: path, Output: output}

	switch {
	case strings.HasPrefix(output, InvalidPrefix):
	case runErr != nil:
		v.Err = &engine.OracleInvocationError{Path: path, Output: output, Err: runErr}
	case strings.HasPrefix(output, ValidPrefix):
		v.Valid = true
	default:
		v.Err = &engine.OracleInvocationError{Path: path, Output: output}
	}

	return v
}
