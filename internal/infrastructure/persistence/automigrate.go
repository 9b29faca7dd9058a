package persistence

import (
	"fmt"

	"github.com/expenseally/backend/internal/domain/client"
	"github.com/expenseally/backend/internal/domain/company"
	"github.com/expenseally/backend/internal/domain/expense"
	"github.com/expenseally/backend/internal/domain/invoicing"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates the schema from the domain models.
// Production deployments run versioned SQL migrations instead; this is
// for SQLite development databases and the admin CLI's seed command.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&company.Company{},
		&company.User{},
		&client.Client{},
		&invoicing.Invoice{},
		&expense.Category{},
		&expense.Expense{},
	); err != nil {
		return fmt.Errorf("auto-migrate schema: %w", err)
	}

	// Composite uniqueness is declared here rather than in struct tags:
	// the company_id column lives on the embedded aggregate root, and a
	// tag there would leak the index name into every table. These match
	// the versioned SQL migrations.
	for _, stmt := range []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_client_company_email ON clients(company_id, email)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_invoice_company_number ON invoices(company_id, invoice_number)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_category_company_name ON expense_categories(company_id, name)",
	} {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("auto-migrate indexes: %w", err)
		}
	}
	return nil
}
