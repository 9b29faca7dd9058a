package csvimport

import (
	"errors"
	"fmt"
)

// Error codes surfaced to API clients and the admin CLI. They are stable
// identifiers; messages may change.
const (
	ErrCodeImportInvalidFile  = "ERR_IMPORT_INVALID_FILE"
	ErrCodeImportEmptyFile    = "ERR_IMPORT_EMPTY_FILE"
	ErrCodeImportFileTooLarge = "ERR_IMPORT_FILE_TOO_LARGE"

	ErrCodeImportInvalidEncoding = "ERR_IMPORT_INVALID_ENCODING"
	ErrCodeImportCSVParsing      = "ERR_IMPORT_CSV_PARSING"
	ErrCodeImportMissingHeader   = "ERR_IMPORT_MISSING_HEADER"

	ErrCodeImportValidation        = "ERR_IMPORT_VALIDATION"
	ErrCodeImportRequiredField     = "ERR_IMPORT_REQUIRED_FIELD"
	ErrCodeImportInvalidType       = "ERR_IMPORT_INVALID_TYPE"
	ErrCodeImportInvalidLength     = "ERR_IMPORT_INVALID_LENGTH"
	ErrCodeImportInvalidRange      = "ERR_IMPORT_INVALID_RANGE"
	ErrCodeImportDuplicateInFile   = "ERR_IMPORT_DUPLICATE_IN_FILE"
	ErrCodeImportDuplicateInDB     = "ERR_IMPORT_DUPLICATE_IN_DB"
	ErrCodeImportReferenceNotFound = "ERR_IMPORT_REFERENCE_NOT_FOUND"
)

var (
	// ErrEmptyFile means the upload had no content at all
	ErrEmptyFile = errors.New("CSV file is empty")

	// ErrInvalidEncoding means the file is not valid UTF-8
	ErrInvalidEncoding = errors.New("invalid file encoding")

	// ErrMissingHeader means the file has no header row
	ErrMissingHeader = errors.New("CSV file missing header row")

	// ErrFileTooLarge means the upload exceeds the configured size limit
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")
)

// RowError describes a problem with one row, optionally scoped to a column.
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// NewRowError builds a RowError without the offending value.
func NewRowError(row int, column, code, message string) RowError {
	return RowError{Row: row, Column: column, Code: code, Message: message}
}

// NewRowErrorWithValue builds a RowError carrying the offending value.
func NewRowErrorWithValue(row int, column, code, message, value string) RowError {
	return RowError{Row: row, Column: column, Code: code, Message: message, Value: value}
}

// ErrorCollection accumulates row errors up to a cap. Errors past the cap
// are counted but not retained, so a garbage file cannot balloon memory.
type ErrorCollection struct {
	errors []RowError
	cap    int
	total  int
}

// NewErrorCollection builds a collection retaining at most maxErrors entries.
func NewErrorCollection(maxErrors int) *ErrorCollection {
	if maxErrors <= 0 {
		maxErrors = 100
	}
	return &ErrorCollection{cap: maxErrors}
}

// Add records an error, retaining it only while under the cap.
func (c *ErrorCollection) Add(err RowError) {
	c.total++
	if len(c.errors) < c.cap {
		c.errors = append(c.errors, err)
	}
}

// Errors returns the retained errors.
func (c *ErrorCollection) Errors() []RowError {
	return c.errors
}

// TotalCount returns how many errors were recorded, including dropped ones.
func (c *ErrorCollection) TotalCount() int {
	return c.total
}

// HasErrors reports whether anything was recorded.
func (c *ErrorCollection) HasErrors() bool {
	return c.total > 0
}

// IsTruncated reports whether errors past the cap were dropped.
func (c *ErrorCollection) IsTruncated() bool {
	return c.total > c.cap
}

// Clear resets the collection for reuse.
func (c *ErrorCollection) Clear() {
	c.errors = c.errors[:0]
	c.total = 0
}

// ValidationResult summarizes a dry-run validation of an uploaded file.
type ValidationResult struct {
	ValidationID string           `json:"validation_id"`
	TotalRows    int              `json:"total_rows"`
	ValidRows    int              `json:"valid_rows"`
	ErrorRows    int              `json:"error_rows"`
	Errors       []RowError       `json:"errors,omitempty"`
	Preview      []map[string]any `json:"preview,omitempty"`
	IsTruncated  bool             `json:"is_truncated,omitempty"`
	TotalErrors  int              `json:"total_errors,omitempty"`
}

// IsValid reports whether every row passed validation.
func (r *ValidationResult) IsValid() bool {
	return r.ErrorRows == 0
}
