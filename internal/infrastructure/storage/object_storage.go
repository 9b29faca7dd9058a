// Package storage provides object storage for receipts, company logos
// and database backup archives.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ObjectStorage abstracts an S3-compatible bucket.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	GenerateUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, time.Time, error)
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, key string) error
	ObjectExists(ctx context.Context, key string) (bool, error)
	ListKeys(ctx context.Context, prefix string) ([]string, error)
}

// ReceiptKey builds the object key for an expense receipt. The original
// filename only contributes its extension; the key itself is derived
// from IDs so clients cannot collide or traverse.
func ReceiptKey(companyID, expenseID uuid.UUID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("receipts/%s/%s%s", companyID, expenseID, ext)
}

// LogoKey builds the object key for a company logo.
func LogoKey(companyID uuid.UUID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("logos/%s/logo%s", companyID, ext)
}

// BackupKey builds the object key for a backup archive taken at ts.
func BackupKey(prefix string, ts time.Time) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = "backups"
	}
	return fmt.Sprintf("%s/%s.sql.gz", prefix, ts.UTC().Format("20060102-150405"))
}

// allowedUploadTypes are the content types accepted for receipt and
// logo uploads.
var allowedUploadTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// IsAllowedUploadType reports whether a content type may be uploaded by
// end users.
func IsAllowedUploadType(contentType string) bool {
	return allowedUploadTypes[strings.ToLower(strings.TrimSpace(contentType))]
}
