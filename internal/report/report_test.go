package report

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/infracollect/dicomcheck/internal/engine"
	"github.com/infracollect/dicomcheck/internal/engine/encoders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSink struct {
	writes  []string
	content map[string]string
	failOn  string
	closed  bool
}

func newRecordingSink() *recordingSink {
	return &recordingSink{content: make(map[string]string)}
}

func (s *recordingSink) Name() string { return "recording" }
func (s *recordingSink) Kind() string { return "recording" }

func (s *recordingSink) Write(_ context.Context, path string, data io.Reader) error {
	if path == s.failOn {
		return errors.New("quota exceeded")
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	s.writes = append(s.writes, path)
	s.content[path] = string(b)
	return nil
}

func (s *recordingSink) Close(context.Context) error {
	s.closed = true
	return nil
}

func TestManifestNames(t *testing.T) {
	names := ManifestNames("CT_2026-10-19", "csv")
	assert.Equal(t, "CT_2026-10-19_valid_file.csv", names.Valid)
	assert.Equal(t, "CT_2026-10-19_corrupt_file.csv", names.Corrupt)
}

func TestPartition(t *testing.T) {
	verdicts := []engine.Verdict{
		{Path: "/w/1.dcm", Valid: true},
		{Path: "/w/2.dcm"},
		{Path: "/w/3.dcm", Valid: true},
		{Path: "/w/4.dcm", Err: errors.New("oracle missing")},
		{Path: "/w/5.dcm"},
	}

	valid, corrupt, summary := Partition(verdicts)

	assert.Equal(t, []string{"/w/1.dcm", "/w/3.dcm"}, valid)
	assert.Equal(t, []string{"/w/2.dcm", "/w/4.dcm", "/w/5.dcm"}, corrupt)
	assert.Equal(t, Summary{Candidates: 5, Valid: 2, Corrupt: 3, OracleFailures: 1}, summary)
}

func TestPartition_IsAPartition(t *testing.T) {
	var verdicts []engine.Verdict
	for i, valid := range []bool{true, false, false, true, true, false, true} {
		verdicts = append(verdicts, engine.Verdict{Path: string(rune('a' + i)), Valid: valid})
	}

	valid, corrupt, _ := Partition(verdicts)

	seen := make(map[string]int)
	for _, p := range append(append([]string{}, valid...), corrupt...) {
		seen[p]++
	}
	require.Len(t, seen, len(verdicts))
	for _, v := range verdicts {
		assert.Equal(t, 1, seen[v.Path], "path %s", v.Path)
	}
}

func TestPartition_Empty(t *testing.T) {
	valid, corrupt, summary := Partition(nil)
	assert.Empty(t, valid)
	assert.Empty(t, corrupt)
	assert.Zero(t, summary)
}

func TestWriter_Write(t *testing.T) {
	sink := newRecordingSink()
	w := NewWriter(zap.NewNop(), encoders.NewCSVEncoder(), sink)

	names, err := w.Write(t.Context(), "study", []string{"/w/a.dcm"}, []string{"/w/b.dcm", "/w/c.dcm"})
	require.NoError(t, err)

	assert.Equal(t, ManifestNames("study", "csv"), names)
	assert.Equal(t, []string{"study_valid_file.csv", "study_corrupt_file.csv"}, sink.writes)
	assert.Equal(t, "file_path\n/w/a.dcm\n", sink.content["study_valid_file.csv"])
	assert.Equal(t, "file_path\n/w/b.dcm\n/w/c.dcm\n", sink.content["study_corrupt_file.csv"])
	assert.True(t, sink.closed)
}

func TestWriter_EmptyManifestsStillHaveHeaders(t *testing.T) {
	sink := newRecordingSink()
	w := NewWriter(zap.NewNop(), encoders.NewCSVEncoder(), sink)

	_, err := w.Write(t.Context(), "empty", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "file_path\n", sink.content["empty_valid_file.csv"])
	assert.Equal(t, "file_path\n", sink.content["empty_corrupt_file.csv"])
}

func TestWriter_FailurePropagates(t *testing.T) {
	t.Run("valid manifest fails first", func(t *testing.T) {
		sink := newRecordingSink()
		sink.failOn = "study_valid_file.csv"
		w := NewWriter(zap.NewNop(), encoders.NewCSVEncoder(), sink)

		_, err := w.Write(t.Context(), "study", nil, nil)
		require.Error(t, err)
		assert.ErrorContains(t, err, "quota exceeded")
		assert.Empty(t, sink.writes, "corrupt manifest must not be attempted")
		assert.False(t, sink.closed)
	})

	t.Run("corrupt manifest fails, valid is kept", func(t *testing.T) {
		sink := newRecordingSink()
		sink.failOn = "study_corrupt_file.csv"
		w := NewWriter(zap.NewNop(), encoders.NewCSVEncoder(), sink)

		_, err := w.Write(t.Context(), "study", []string{"/w/a.dcm"}, nil)
		require.Error(t, err)
		assert.ErrorContains(t, err, "study_corrupt_file.csv")
		assert.Equal(t, []string{"study_valid_file.csv"}, sink.writes)
	})
}
