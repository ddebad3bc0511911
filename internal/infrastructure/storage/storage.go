// Package storage stores exported reports, invoice PDFs and message
// attachments in S3-compatible object storage.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ObjectStorage is the object store used by reports and messaging
type ObjectStorage interface {
	// Upload writes data under key
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	// GenerateUploadURL presigns a PUT for direct browser uploads
	GenerateUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, time.Time, error)
	// GenerateDownloadURL presigns a GET
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
	// DeleteObject removes key
	DeleteObject(ctx context.Context, key string) error
	// ObjectExists reports whether key exists
	ObjectExists(ctx context.Context, key string) (bool, error)
}

// ErrStorageDisabled is returned by every operation when no bucket is configured
var ErrStorageDisabled = shared.NewDomainError("STORAGE_DISABLED", "Object storage is not configured")

// Object key namespaces
const (
	KindExports     = "exports"
	KindInvoices    = "invoices"
	KindReportCards = "report-cards"
	KindAttachments = "attachments"
)

// Key builds a school-scoped object key: <tenant>/<kind>/<yyyy>/<mm>/<name>.
// The file name is reduced to its base name so callers cannot escape the prefix.
func Key(tenantID uuid.UUID, kind, name string, at time.Time) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == ".." || name == "/" || name == "" {
		name = uuid.NewString()
	}
	at = at.UTC()
	return fmt.Sprintf("%s/%s/%04d/%02d/%s", tenantID, kind, at.Year(), int(at.Month()), name)
}

// BelongsTo reports whether key lives under the school's prefix
func BelongsTo(key string, tenantID uuid.UUID) bool {
	return strings.HasPrefix(key, tenantID.String()+"/")
}

// New returns S3 storage when a bucket is configured, the disabled stub otherwise
func New(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (ObjectStorage, error) {
	if !cfg.Enabled() {
		logger.Info("object storage disabled, no bucket configured")
		return DisabledStorage{}, nil
	}

	s3Storage, err := NewS3ObjectStorage(&cfg, WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := s3Storage.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	logger.Info("object storage ready", zap.String("bucket", cfg.Bucket))
	return s3Storage, nil
}

// DisabledStorage rejects every operation with ErrStorageDisabled
type DisabledStorage struct{}

// Upload fails
func (DisabledStorage) Upload(context.Context, string, []byte, string) error {
	return ErrStorageDisabled
}

// GenerateUploadURL fails
func (DisabledStorage) GenerateUploadURL(context.Context, string, string, time.Duration) (string, time.Time, error) {
	return "", time.Time{}, ErrStorageDisabled
}

// GenerateDownloadURL fails
func (DisabledStorage) GenerateDownloadURL(context.Context, string, time.Duration) (string, time.Time, error) {
	return "", time.Time{}, ErrStorageDisabled
}

// DeleteObject fails
func (DisabledStorage) DeleteObject(context.Context, string) error {
	return ErrStorageDisabled
}

// ObjectExists fails
func (DisabledStorage) ObjectExists(context.Context, string) (bool, error) {
	return false, ErrStorageDisabled
}

var _ ObjectStorage = DisabledStorage{}
