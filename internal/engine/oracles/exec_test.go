package oracles

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/infracollect/dicomcheck/internal/engine"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClassify(t *testing.T) {
	runErr := errors.New("exit status 1")

	tests := []struct {
		name      string
		output    string
		runErr    error
		wantValid bool
		wantErr   bool
	}{
		{name: "yes is valid", output: "yes: /w/a.dcm", wantValid: true},
		{name: "no is corrupt", output: "no: /w/a.dcm: bad preamble"},
		{name: "no with nonzero exit is a plain answer", output: "no: /w/a.dcm", runErr: runErr},
		{name: "yes with nonzero exit fails closed", output: "yes: /w/a.dcm", runErr: runErr, wantErr: true},
		{name: "empty output", output: "", wantErr: true},
		{name: "unknown answer", output: "maybe: /w/a.dcm", wantErr: true},
		{name: "prefix needs the trailing space", output: "yes:", wantErr: true},
		{name: "prefix is case sensitive", output: "Yes: /w/a.dcm", wantErr: true},
		{name: "crash without output", output: "", runErr: runErr, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Classify("/w/a.dcm", tt.output, tt.runErr)
			assert.Equal(t, "/w/a.dcm", v.Path)
			assert.Equal(t, tt.output, v.Output)
			assert.Equal(t, tt.wantValid, v.Valid)
			if tt.wantErr {
				var invocation *engine.OracleInvocationError
				require.True(t, errors.As(v.Err, &invocation))
				assert.Equal(t, "/w/a.dcm", invocation.Path)
				return
			}
			assert.NoError(t, v.Err)
		})
	}
}

func TestNewExecChecker_Validation(t *testing.T) {
	tests := []struct {
		name        string
		cfg         ExecCheckerConfig
		wantErr     bool
		errContains string
	}{
		{
			name:    "defaults to dcmftest",
			cfg:     ExecCheckerConfig{},
			wantErr: false,
		},
		{
			name:        "error when program is blank",
			cfg:         ExecCheckerConfig{Program: []string{""}},
			wantErr:     true,
			errContains: "program is required",
		},
		{
			name:        "error when timeout is invalid",
			cfg:         ExecCheckerConfig{Timeout: lo.ToPtr("soon")},
			wantErr:     true,
			errContains: "invalid timeout",
		},
		{
			name:        "error when timeout is negative",
			cfg:         ExecCheckerConfig{Timeout: lo.ToPtr("-1s")},
			wantErr:     true,
			errContains: "must not be negative",
		},
		{
			name:    "accepts valid timeout",
			cfg:     ExecCheckerConfig{Timeout: lo.ToPtr("5s")},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewExecChecker(zap.NewNop(), tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorContains(t, err, tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, ExecCheckerKind, c.Kind())
		})
	}
}

func newShellChecker(t *testing.T, script string, timeout *string) engine.Checker {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping on Windows")
	}
	c, err := NewExecChecker(zap.NewNop(), ExecCheckerConfig{
		Program: []string{"sh", "-c", script, "fakeoracle"},
		Timeout: timeout,
	})
	require.NoError(t, err)
	return c
}

func TestExecChecker_PassesPathAsSoleArgument(t *testing.T) {
	c := newShellChecker(t, `[ "$#" -eq 1 ] && echo "yes: $1"`, nil)

	v := c.Check(t.Context(), "/w/series/IMG0001.dcm")
	assert.True(t, v.Valid)
	assert.Equal(t, "yes: /w/series/IMG0001.dcm", v.Output)
	assert.NoError(t, v.Err)
}

func TestExecChecker_Verdicts(t *testing.T) {
	// The oracle answers by file name so one program can serve every case.
	script := `case "$1" in
  *good*) echo "yes: $1" ;;
  *bad*) echo "no: $1"; exit 1 ;;
  *garbled*) echo "I do not know" ;;
  *) exit 3 ;;
esac`
	c := newShellChecker(t, script, nil)

	tests := []struct {
		file      string
		wantValid bool
		wantErr   bool
	}{
		{file: "/w/good.dcm", wantValid: true},
		{file: "/w/bad.dcm"},
		{file: "/w/garbled.dcm", wantErr: true},
		{file: "/w/crash.dcm", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(filepath.Base(tt.file), func(t *testing.T) {
			v := c.Check(t.Context(), tt.file)
			assert.Equal(t, tt.file, v.Path)
			assert.Equal(t, tt.wantValid, v.Valid)
			if tt.wantErr {
				assert.Error(t, v.Err)
			} else {
				assert.NoError(t, v.Err)
			}
		})
	}
}

func TestExecChecker_LeadingWhitespaceIsTrimmed(t *testing.T) {
	c := newShellChecker(t, `printf '\n  yes: %s\n\n' "$1"`, nil)

	v := c.Check(t.Context(), "/w/a.dcm")
	assert.True(t, v.Valid)
}

func TestExecChecker_StderrIsCaptured(t *testing.T) {
	c := newShellChecker(t, `echo "dictionary not found" >&2; exit 2`, nil)

	v := c.Check(t.Context(), "/w/a.dcm")
	assert.False(t, v.Valid)
	require.Error(t, v.Err)
	assert.ErrorContains(t, v.Err, "dictionary not found")
}

func TestExecChecker_Timeout(t *testing.T) {
	c := newShellChecker(t, "exec sleep 10", lo.ToPtr("100ms"))

	v := c.Check(t.Context(), "/w/a.dcm")
	assert.False(t, v.Valid)
	require.Error(t, v.Err)
	assert.ErrorContains(t, v.Err, "timed out")
}

func TestExecChecker_ProgramNotFound(t *testing.T) {
	c, err := NewExecChecker(zap.NewNop(), ExecCheckerConfig{
		Program: []string{"nonexistent-dcmftest-xyz"},
	})
	require.NoError(t, err)

	v := c.Check(t.Context(), "/w/a.dcm")
	assert.False(t, v.Valid)

	var invocation *engine.OracleInvocationError
	require.True(t, errors.As(v.Err, &invocation))
}

func TestExecChecker_Environment(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping on Windows")
	}
	dict := filepath.Join(t.TempDir(), "dicom.dic")
	require.NoError(t, os.WriteFile(dict, nil, 0o644))

	c, err := NewExecChecker(zap.NewNop(), ExecCheckerConfig{
		Program: []string{"sh", "-c", `test -f "$DCMDICTPATH" && echo "yes: $1"`, "fakeoracle"},
		Env:     map[string]string{"DCMDICTPATH": dict},
	})
	require.NoError(t, err)

	v := c.Check(t.Context(), "/w/a.dcm")
	assert.True(t, v.Valid)
}
