package dto

import (
	"net/http"
	"strings"
)

// Transport-level error codes
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeRateLimited  = "RATE_LIMITED"
)

// errorCodeStatus maps domain error codes to HTTP status codes. Codes not
// listed here fall back to the suffix/prefix rules in HTTPStatusForCode.
var errorCodeStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeConflict:     http.StatusConflict,
	ErrCodeRateLimited:  http.StatusTooManyRequests,

	// Authentication
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"ACCOUNT_LOCKED":      http.StatusUnauthorized,
	"ACCOUNT_INACTIVE":    http.StatusUnauthorized,
	"TOKEN_EXPIRED":       http.StatusUnauthorized,
	"TOKEN_INVALID":       http.StatusUnauthorized,
	"TOKEN_REVOKED":       http.StatusUnauthorized,
	"TOKEN_MAX_REFRESH":   http.StatusUnauthorized,

	// Lifecycle conflicts
	"INVALID_STATE":           http.StatusUnprocessableEntity,
	"EMPTY_INVOICE":           http.StatusUnprocessableEntity,
	"NOT_RECURRING":           http.StatusUnprocessableEntity,
	"NOT_APPROVED":            http.StatusUnprocessableEntity,
	"EXCEEDS_BALANCE_DUE":     http.StatusUnprocessableEntity,
	"EXCEEDS_REFUNDABLE":      http.StatusUnprocessableEntity,
	"CREDIT_LIMIT_EXCEEDED":   http.StatusUnprocessableEntity,
	"OUTSTANDING_BALANCE":     http.StatusUnprocessableEntity,
	"CLIENT_HAS_INVOICES":     http.StatusUnprocessableEntity,
	"CATEGORY_IN_USE":         http.StatusUnprocessableEntity,
	"CATEGORY_CYCLE":          http.StatusUnprocessableEntity,
	"CLIENT_INACTIVE":         http.StatusUnprocessableEntity,
	"CATEGORY_INACTIVE":       http.StatusUnprocessableEntity,
	"COMPANY_INACTIVE":        http.StatusUnprocessableEntity,
	"CANNOT_DELETE":           http.StatusUnprocessableEntity,
	"CANNOT_DEACTIVATE":       http.StatusUnprocessableEntity,
	"OWNER_PROTECTED":         http.StatusUnprocessableEntity,
	"SAME_OWNER":              http.StatusUnprocessableEntity,
	"NUMBER_EXHAUSTED":        http.StatusUnprocessableEntity,
	"CONCURRENT_MODIFICATION": http.StatusConflict,
	"CONCURRENCY_CONFLICT":    http.StatusConflict,
	"OPTIMISTIC_LOCK_ERROR":   http.StatusConflict,
}

// HTTPStatusForCode resolves a domain error code to an HTTP status. Unknown
// codes are classified by naming convention: *_NOT_FOUND is 404, *_EXISTS
// and DUPLICATE_* are 409, INVALID_* is 400, ALREADY_* is 422. Anything
// else is treated as an internal error.
func HTTPStatusForCode(code string) int {
	if status, ok := errorCodeStatus[code]; ok {
		return status
	}

	switch {
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "_EXISTS"), strings.HasPrefix(code, "DUPLICATE_"):
		return http.StatusConflict
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "ALREADY_"):
		return http.StatusUnprocessableEntity
	}

	return http.StatusInternalServerError
}
