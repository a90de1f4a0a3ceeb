package sinks

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamSink_Write(t *testing.T) {
	var out bytes.Buffer
	sink := NewStreamSink(&out)

	require.NoError(t, sink.Write(t.Context(), "s_valid_file.csv", bytes.NewBufferString("file_path\n/w/a.dcm\n")))
	require.NoError(t, sink.Write(t.Context(), "s_corrupt_file.csv", bytes.NewBufferString("file_path\n")))
	require.NoError(t, sink.Close(t.Context()))

	assert.Equal(t, "# s_valid_file.csv\nfile_path\n/w/a.dcm\n# s_corrupt_file.csv\nfile_path\n", out.String())
	assert.Equal(t, "stream", sink.Kind())
}
