package storage

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestKey(t *testing.T) {
	schoolID := uuid.MustParse("5b0c9e1e-8d2a-4b52-9a8f-0f1d2c3b4a59")
	at := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)

	assert.Equal(t,
		"5b0c9e1e-8d2a-4b52-9a8f-0f1d2c3b4a59/exports/2026/03/students.xlsx",
		Key(schoolID, KindExports, "students.xlsx", at))

	t.Run("strips directories", func(t *testing.T) {
		key := Key(schoolID, KindAttachments, "../../other-school/secret.pdf", at)
		assert.True(t, strings.HasSuffix(key, "/attachments/2026/03/secret.pdf"))
		assert.True(t, BelongsTo(key, schoolID))

		key = Key(schoolID, KindAttachments, `..\..\evil.exe`, at)
		assert.True(t, strings.HasSuffix(key, "/evil.exe"))
	})

	t.Run("generates a name when empty", func(t *testing.T) {
		key := Key(schoolID, KindAttachments, "  ", at)
		assert.True(t, BelongsTo(key, schoolID))
		assert.Len(t, key[strings.LastIndex(key, "/")+1:], 36)
	})

	assert.False(t, BelongsTo("x/exports/a", schoolID))
}

func TestNew_DisabledWithoutBucket(t *testing.T) {
	s, err := New(context.Background(), config.StorageConfig{}, zap.NewNop())
	require.NoError(t, err)

	_, ok := s.(DisabledStorage)
	require.True(t, ok)

	ctx := context.Background()
	assert.ErrorIs(t, s.Upload(ctx, "k", nil, "text/plain"), ErrStorageDisabled)
	_, _, err = s.GenerateUploadURL(ctx, "k", "text/plain", 0)
	assert.ErrorIs(t, err, ErrStorageDisabled)
	_, _, err = s.GenerateDownloadURL(ctx, "k", 0)
	assert.ErrorIs(t, err, ErrStorageDisabled)
	assert.ErrorIs(t, s.DeleteObject(ctx, "k"), ErrStorageDisabled)
	_, err = s.ObjectExists(ctx, "k")
	assert.ErrorIs(t, err, ErrStorageDisabled)
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	_, err := NewS3ObjectStorage(nil)
	assert.Error(t, err)

	_, err = NewS3ObjectStorage(&config.StorageConfig{AccessKey: "k", SecretKey: "s"})
	assert.ErrorContains(t, err, "bucket is required")

	_, err = NewS3ObjectStorage(&config.StorageConfig{Bucket: "b"})
	assert.ErrorContains(t, err, "access key")

	s, err := NewS3ObjectStorage(&config.StorageConfig{Bucket: "b", AccessKey: "k", SecretKey: "s"})
	require.NoError(t, err)
	assert.Equal(t, "b", s.Bucket())
	assert.Equal(t, defaultPresignExpiration, s.presignExpiration)

	s, err = NewS3ObjectStorage(&config.StorageConfig{Bucket: "b", AccessKey: "k", SecretKey: "s"},
		WithPresignExpiration(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, time.Hour, s.presignExpiration)
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		in     string
		useSSL bool
		want   string
	}{
		{"", false, "http://localhost:9000"},
		{"minio:9000", false, "http://minio:9000"},
		{"s3.example.com", true, "https://s3.example.com"},
		{"https://s3.amazonaws.com", false, "https://s3.amazonaws.com"},
	}
	for _, tt := range tests {
		got, err := normalizeEndpoint(tt.in, tt.useSSL)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestS3ObjectStorage_PresignAndValidation(t *testing.T) {
	s, err := NewS3ObjectStorage(&config.StorageConfig{
		Endpoint: "localhost:9000", Bucket: "schoolhub", AccessKey: "k", SecretKey: "s", UsePathStyle: true,
	})
	require.NoError(t, err)
	ctx := context.Background()

	url, expires, err := s.GenerateUploadURL(ctx, "tenant/attachments/2026/01/a.pdf", "application/pdf", time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "schoolhub/tenant/attachments/2026/01/a.pdf")
	assert.Contains(t, url, "X-Amz-Signature")
	assert.WithinDuration(t, time.Now().Add(time.Minute), expires, 5*time.Second)

	url, _, err = s.GenerateDownloadURL(ctx, "tenant/exports/2026/01/students.xlsx", 0)
	require.NoError(t, err)
	assert.Contains(t, url, "X-Amz-Expires=900")

	_, _, err = s.GenerateUploadURL(ctx, "", "text/plain", 0)
	assert.Error(t, err)
	assert.Error(t, s.Upload(ctx, "", nil, "text/plain"))
	assert.Error(t, s.DeleteObject(ctx, ""))
	_, err = s.ObjectExists(ctx, "")
	assert.Error(t, err)
}

// Integration tests need a running S3-compatible server:
// SCHOOLHUB_TEST_S3_ENDPOINT=localhost:9000 go test ./internal/infrastructure/storage
func TestIntegration_UploadAndExists(t *testing.T) {
	endpoint := os.Getenv("SCHOOLHUB_TEST_S3_ENDPOINT")
	if testing.Short() || endpoint == "" {
		t.Skip("S3 integration test skipped")
	}

	s, err := NewS3ObjectStorage(&config.StorageConfig{
		Endpoint:     endpoint,
		Bucket:       "schoolhub-test",
		AccessKey:    envOr("SCHOOLHUB_TEST_S3_ACCESS_KEY", "minioadmin"),
		SecretKey:    envOr("SCHOOLHUB_TEST_S3_SECRET_KEY", "minioadmin"),
		UsePathStyle: true,
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.EnsureBucket(ctx))

	key := Key(uuid.New(), KindExports, "it.txt", time.Now())
	require.NoError(t, s.Upload(ctx, key, []byte("hello"), "text/plain"))

	exists, err := s.ObjectExists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, s.DeleteObject(ctx, key))
	exists, err = s.ObjectExists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
