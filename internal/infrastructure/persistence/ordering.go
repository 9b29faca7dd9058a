package persistence

import (
	"strings"
)

// Sort fields arrive from query strings, so anything used in an ORDER BY
// clause must pass a whitelist before it reaches SQL.

// NormalizeSortOrder returns ASC or DESC, defaulting to DESC
func NormalizeSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// NormalizeSortField returns the field when whitelisted, otherwise defaultField
func NormalizeSortField(field string, allowed map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(field)
	if trimmed == "" || !allowed[trimmed] {
		return defaultField
	}
	return trimmed
}

// ClientSortFields contains allowed sort fields for clients
var ClientSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"email":      true,
	"status":     true,
}

// InvoiceSortFields contains allowed sort fields for invoices
var InvoiceSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"invoice_number": true,
	"issue_date":     true,
	"due_date":       true,
	"status":         true,
	"total_amount":   true,
	"amount_paid":    true,
}

// ExpenseSortFields contains allowed sort fields for expenses
var ExpenseSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"expense_date": true,
	"amount":       true,
	"vendor":       true,
	"description":  true,
}

// CategorySortFields contains allowed sort fields for expense categories
var CategorySortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
}

// CompanySortFields contains allowed sort fields for companies
var CompanySortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"status":     true,
}

func orderClause(field, dir string, allowed map[string]bool, defaultField string) string {
	return NormalizeSortField(field, allowed, defaultField) + " " + NormalizeSortOrder(dir)
}
