package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiptKey(t *testing.T) {
	companyID := uuid.MustParse("7c9b2a55-3f10-4bb0-9a65-a4a1d3e9f001")
	expenseID := uuid.MustParse("0d8e1f22-6a41-4c7e-8f0b-b5c2e4d6a002")

	key := ReceiptKey(companyID, expenseID, "Scan of Receipt.PDF")
	assert.Equal(t,
		"receipts/7c9b2a55-3f10-4bb0-9a65-a4a1d3e9f001/0d8e1f22-6a41-4c7e-8f0b-b5c2e4d6a002.pdf",
		key)

	// No extension on the source file
	key = ReceiptKey(companyID, expenseID, "receipt")
	assert.Equal(t,
		"receipts/7c9b2a55-3f10-4bb0-9a65-a4a1d3e9f001/0d8e1f22-6a41-4c7e-8f0b-b5c2e4d6a002",
		key)
}

func TestLogoKey(t *testing.T) {
	companyID := uuid.MustParse("7c9b2a55-3f10-4bb0-9a65-a4a1d3e9f001")
	key := LogoKey(companyID, "brand.PNG")
	assert.Equal(t, "logos/7c9b2a55-3f10-4bb0-9a65-a4a1d3e9f001/logo.png", key)
}

func TestBackupKey(t *testing.T) {
	ts := time.Date(2026, 9, 1, 2, 0, 0, 0, time.UTC)

	assert.Equal(t, "backups/20260901-020000.sql.gz", BackupKey("", ts))
	assert.Equal(t, "nightly/20260901-020000.sql.gz", BackupKey("/nightly/", ts))
}

func TestIsAllowedUploadType(t *testing.T) {
	assert.True(t, IsAllowedUploadType("image/png"))
	assert.True(t, IsAllowedUploadType(" Application/PDF "))
	assert.False(t, IsAllowedUploadType("text/html"))
	assert.False(t, IsAllowedUploadType(""))
}

func TestInMemoryObjectStorage_RoundTrip(t *testing.T) {
	store := NewInMemoryObjectStorage()
	ctx := context.Background()

	require.NoError(t, store.Upload(ctx, "receipts/a/b.pdf", []byte("pdf bytes"), "application/pdf"))

	exists, err := store.ObjectExists(ctx, "receipts/a/b.pdf")
	require.NoError(t, err)
	assert.True(t, exists)

	keys, err := store.ListKeys(ctx, "receipts/")
	require.NoError(t, err)
	assert.Equal(t, []string{"receipts/a/b.pdf"}, keys)

	require.NoError(t, store.DeleteObject(ctx, "receipts/a/b.pdf"))
	exists, err = store.ObjectExists(ctx, "receipts/a/b.pdf")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestInMemoryObjectStorage_RejectsEmptyKey(t *testing.T) {
	store := NewInMemoryObjectStorage()
	ctx := context.Background()

	assert.Error(t, store.Upload(ctx, "", nil, ""))
	assert.Error(t, store.DeleteObject(ctx, ""))
	_, _, err := store.GenerateUploadURL(ctx, "", "image/png", time.Minute)
	assert.Error(t, err)
}
