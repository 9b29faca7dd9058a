package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubObjectStorage records presign calls and returns canned URLs.
type stubObjectStorage struct {
	uploadKey         string
	uploadContentType string
	uploadExpiry      time.Duration
	downloadKey       string
}

func (s *stubObjectStorage) EnsureBucket(ctx context.Context) error { return nil }

func (s *stubObjectStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	return nil
}

func (s *stubObjectStorage) GenerateUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	s.uploadKey = key
	s.uploadContentType = contentType
	s.uploadExpiry = expiresIn
	return "https://bucket.test/upload/" + key, time.Now().Add(expiresIn), nil
}

func (s *stubObjectStorage) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	s.downloadKey = key
	return "https://bucket.test/download/" + key, time.Now().Add(expiresIn), nil
}

func (s *stubObjectStorage) DeleteObject(ctx context.Context, key string) error { return nil }

func (s *stubObjectStorage) ObjectExists(ctx context.Context, key string) (bool, error) {
	return true, nil
}

func (s *stubObjectStorage) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	return nil, nil
}

func doExpenseRequest(t *testing.T, router *gin.Engine, token, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestExpenseHandler_ReceiptUploadURL(t *testing.T) {
	storage := &stubObjectStorage{}
	handler := NewExpenseHandler(nil, storage)
	router, token, companyID, _ := authedTestRouter(t, handler.RegisterRoutes)

	expenseID := uuid.New()
	w := doExpenseRequest(t, router, token, http.MethodPost,
		fmt.Sprintf("/api/v1/expenses/%s/receipt-upload-url", expenseID),
		receiptUploadRequest{Filename: "receipt.pdf", ContentType: "application/pdf"})

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})

	expectedKey := fmt.Sprintf("receipts/%s/%s.pdf", companyID, expenseID)
	assert.Equal(t, expectedKey, data["key"])
	assert.Contains(t, data["upload_url"], expectedKey)
	assert.NotEmpty(t, data["expires_at"])
	assert.Equal(t, expectedKey, storage.uploadKey)
	assert.Equal(t, "application/pdf", storage.uploadContentType)
	assert.Equal(t, presignTTL, storage.uploadExpiry)
}

func TestExpenseHandler_ReceiptUploadURL_RejectsContentType(t *testing.T) {
	storage := &stubObjectStorage{}
	handler := NewExpenseHandler(nil, storage)
	router, token, _, _ := authedTestRouter(t, handler.RegisterRoutes)

	w := doExpenseRequest(t, router, token, http.MethodPost,
		fmt.Sprintf("/api/v1/expenses/%s/receipt-upload-url", uuid.New()),
		receiptUploadRequest{Filename: "malware.exe", ContentType: "application/octet-stream"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, storage.uploadKey)
}
