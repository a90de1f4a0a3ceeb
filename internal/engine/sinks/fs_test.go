package sinks

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestFilesystemSink_Write(t *testing.T) {
	fs := afero.NewMemMapFs()
	sink := NewFilesystemSink(fs)

	err := sink.Write(t.Context(), "study_valid_file.csv", bytes.NewBufferString("file_path\n/w/a.dcm\n"))
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, "study_valid_file.csv")
	require.NoError(t, err)
	assert.Equal(t, "file_path\n/w/a.dcm\n", string(data))
}

func TestFilesystemSink_WriteNested(t *testing.T) {
	fs := afero.NewMemMapFs()
	sink := NewFilesystemSink(fs)

	require.NoError(t, sink.Write(t.Context(), "2026/study_corrupt_file.csv", bytes.NewBufferString("file_path\n")))

	exists, err := afero.Exists(fs, "2026/study_corrupt_file.csv")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFilesystemSink_Overwrite(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "m.csv", []byte("old"), 0644))
	sink := NewFilesystemSink(fs)

	require.NoError(t, sink.Write(t.Context(), "m.csv", bytes.NewBufferString("new")))

	data, err := afero.ReadFile(fs, "m.csv")
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestFilesystemSink_FailedWriteLeavesNothing(t *testing.T) {
	fs := afero.NewMemMapFs()
	sink := NewFilesystemSink(fs)

	err := sink.Write(t.Context(), "out/m.csv", io.MultiReader(bytes.NewBufferString("file_path\n"), failingReader{}))
	require.Error(t, err)
	assert.ErrorContains(t, err, "disk on fire")

	entries, err := afero.ReadDir(fs, "out")
	require.NoError(t, err)
	assert.Empty(t, entries, "no manifest or temporary file may remain")
}

func TestFilesystemSink_ReadOnly(t *testing.T) {
	sink := NewFilesystemSink(afero.NewReadOnlyFs(afero.NewMemMapFs()))

	err := sink.Write(t.Context(), "m.csv", bytes.NewBufferString("x"))
	require.Error(t, err)
}

func TestNewFilesystemSinkFromPath(t *testing.T) {
	dir := t.TempDir() + "/output"
	sink, err := NewFilesystemSinkFromPath(dir)
	require.NoError(t, err)
	assert.DirExists(t, dir)
	assert.Equal(t, "filesystem", sink.Kind())

	require.NoError(t, sink.Write(t.Context(), "m.csv", bytes.NewBufferString("file_path\n")))
	assert.FileExists(t, dir+"/m.csv")
}
