package sinks

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockUploader struct {
	uploads []mockUpload
	err     error
}

type mockUpload struct {
	bucket      string
	key         string
	body        []byte
	contentType string
	metadata    map[string]string
}

func (m *mockUploader) Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	body, _ := io.ReadAll(input.Body)
	upload := mockUpload{
		bucket:   *input.Bucket,
		key:      *input.Key,
		body:     body,
		metadata: input.Metadata,
	}
	if input.ContentType != nil {
		upload.contentType = *input.ContentType
	}
	m.uploads = append(m.uploads, upload)
	return &manager.UploadOutput{}, nil
}

func TestS3Sink_Name(t *testing.T) {
	tests := []struct {
		name     string
		bucket   string
		prefix   string
		expected string
	}{
		{
			name:     "bucket only",
			bucket:   "my-bucket",
			prefix:   "",
			expected: "s3(my-bucket)",
		},
		{
			name:     "bucket with prefix",
			bucket:   "my-bucket",
			prefix:   "reports/site-a",
			expected: "s3(my-bucket/reports/site-a)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := NewS3SinkWithUploader(tt.bucket, tt.prefix, &mockUploader{})
			assert.Equal(t, tt.expected, sink.Name())
		})
	}
}

func TestS3Sink_Kind(t *testing.T) {
	sink := NewS3SinkWithUploader("bucket", "", &mockUploader{})
	assert.Equal(t, "s3", sink.Kind())
}

func TestS3Sink_Write(t *testing.T) {
	tests := []struct {
		name           string
		bucket         string
		prefix         string
		path           string
		data           string
		expectedKey    string
		expectedBucket string
	}{
		{
			name:           "write without prefix",
			bucket:         "my-bucket",
			prefix:         "",
			path:           "study_valid_file.csv",
			data:           "file_path\n/w/a.dcm\n",
			expectedKey:    "study_valid_file.csv",
			expectedBucket: "my-bucket",
		},
		{
			name:           "write with prefix",
			bucket:         "my-bucket",
			prefix:         "dicomcheck/2026",
			path:           "study_corrupt_file.csv",
			data:           "file_path\n",
			expectedKey:    "dicomcheck/2026/study_corrupt_file.csv",
			expectedBucket: "my-bucket",
		},
		{
			name:           "write nested path with prefix",
			bucket:         "my-bucket",
			prefix:         "reports",
			path:           "site-a/study.tar.zst",
			data:           "bundle",
			expectedKey:    "reports/site-a/study.tar.zst",
			expectedBucket: "my-bucket",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uploader := &mockUploader{}
			sink := NewS3SinkWithUploader(tt.bucket, tt.prefix, uploader)

			err := sink.Write(t.Context(), tt.path, bytes.NewBufferString(tt.data))
			require.NoError(t, err)

			require.Len(t, uploader.uploads, 1)
			assert.Equal(t, tt.expectedBucket, uploader.uploads[0].bucket)
			assert.Equal(t, tt.expectedKey, uploader.uploads[0].key)
			assert.Equal(t, tt.data, string(uploader.uploads[0].body))
		})
	}
}

func TestS3Sink_Write_ContentType(t *testing.T) {
	tests := []struct {
		name                string
		path                string
		expectedContentType string
	}{
		{
			name:                "csv manifest",
			path:                "study_valid_file.csv",
			expectedContentType: "text/csv",
		},
		{
			name:                "gzip bundle",
			path:                "study.tar.gz",
			expectedContentType: "application/gzip",
		},
		{
			name:                "zstd bundle",
			path:                "study.tar.zst",
			expectedContentType: "application/zstd",
		},
		{
			name:                "plain tar bundle",
			path:                "study.tar",
			expectedContentType: "application/x-tar",
		},
		{
			name:                "unknown extension",
			path:                "study.bin",
			expectedContentType: "",
		},
		{
			name:                "no extension",
			path:                "study",
			expectedContentType: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uploader := &mockUploader{}
			sink := NewS3SinkWithUploader("bucket", "", uploader)

			err := sink.Write(t.Context(), tt.path, bytes.NewBufferString("content"))
			require.NoError(t, err)

			require.Len(t, uploader.uploads, 1)
			assert.Equal(t, tt.expectedContentType, uploader.uploads[0].contentType)
		})
	}
}

func TestS3Sink_Write_UploadError(t *testing.T) {
	sink := NewS3SinkWithUploader("bucket", "runs", &mockUploader{err: errors.New("access denied")})

	err := sink.Write(t.Context(), "study_valid_file.csv", bytes.NewBufferString("file_path\n"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "s3://bucket/runs/study_valid_file.csv")
	assert.ErrorContains(t, err, "access denied")
}

func TestS3Sink_Write_Metadata(t *testing.T) {
	uploader := &mockUploader{}
	sink := NewS3SinkWithUploader("bucket", "", uploader).(*S3Sink)
	sink.metadata = map[string]string{"archive": "study.zip"}

	require.NoError(t, sink.Write(t.Context(), "study_valid_file.csv", bytes.NewBufferString("file_path\n")))

	require.Len(t, uploader.uploads, 1)
	assert.Equal(t, map[string]string{"archive": "study.zip"}, uploader.uploads[0].metadata)
}
