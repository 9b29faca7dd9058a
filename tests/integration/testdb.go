// Package integration provides integration tests that exercise the
// application services against a real database. Tests run on an
// in-memory SQLite database with the full schema migrated, so they
// need no external services.
package integration

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/expenseally/backend/internal/domain/client"
	"github.com/expenseally/backend/internal/domain/company"
	"github.com/expenseally/backend/internal/domain/expense"
	"github.com/expenseally/backend/internal/infrastructure/persistence"
)

// TestDB wraps a migrated database for one test
type TestDB struct {
	DB *gorm.DB
	t  *testing.T
}

// NewTestDB creates a fresh in-memory database with the full schema.
// Each test gets its own database, providing complete isolation.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	db, err := persistence.NewSQLiteDatabase(":memory:")
	require.NoError(t, err, "Failed to open in-memory database")

	require.NoError(t, persistence.AutoMigrate(db.DB), "Failed to migrate schema")

	t.Cleanup(func() {
		_ = db.Close()
	})

	return &TestDB{DB: db.DB, t: t}
}

// CreateTestCompany creates a company with an owner user and returns both.
func (tdb *TestDB) CreateTestCompany(name, ownerEmail string) (*company.Company, *company.User) {
	tdb.t.Helper()
	ctx := context.Background()

	owner, err := company.NewActiveUser(uuid.New(), ownerEmail, "integration-pass-1", company.UserRoleOwner)
	require.NoError(tdb.t, err, "Failed to create owner")

	comp, err := company.NewCompany(name, owner.ID)
	require.NoError(tdb.t, err, "Failed to create company")
	owner.CompanyID = comp.ID

	companyRepo := persistence.NewGormCompanyRepository(tdb.DB)
	userRepo := persistence.NewGormUserRepository(tdb.DB)
	require.NoError(tdb.t, companyRepo.Save(ctx, comp), "Failed to save company")
	require.NoError(tdb.t, userRepo.Save(ctx, owner), "Failed to save owner")
	comp.ClearDomainEvents()

	return comp, owner
}

// CreateTestClient creates and saves a client for the company.
func (tdb *TestDB) CreateTestClient(companyID uuid.UUID, name, email string) *client.Client {
	tdb.t.Helper()

	cl, err := client.NewClient(companyID, name, email)
	require.NoError(tdb.t, err, "Failed to create client")

	repo := persistence.NewGormClientRepository(tdb.DB)
	require.NoError(tdb.t, repo.Save(context.Background(), cl), "Failed to save client")
	cl.ClearDomainEvents()

	return cl
}

// CreateTestCategory creates and saves an expense category.
func (tdb *TestDB) CreateTestCategory(companyID uuid.UUID, name string) *expense.Category {
	tdb.t.Helper()

	cat, err := expense.NewCategory(companyID, name, "")
	require.NoError(tdb.t, err, "Failed to create category")

	repo := persistence.NewGormCategoryRepository(tdb.DB)
	require.NoError(tdb.t, repo.Save(context.Background(), cat), "Failed to save category")
	cat.ClearDomainEvents()

	return cat
}
