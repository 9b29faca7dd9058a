package company

import (
	"testing"

	"github.com/expenseally/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers
func createTestCompany(t *testing.T) *Company {
	c, err := NewCompany("Riverside Plumbing", uuid.New())
	require.NoError(t, err)
	return c
}

// ============================================
// NewCompany Tests
// ============================================

func TestNewCompany_Success(t *testing.T) {
	owner := uuid.New()
	c, err := NewCompany("Riverside Plumbing", owner)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, c.ID)
	assert.Equal(t, owner, c.OwnerUserID)
	assert.Equal(t, CompanyStatusActive, c.Status)
	assert.Equal(t, valueobject.USD, c.Settings.Currency)
	assert.Equal(t, 30, c.Settings.DefaultPaymentTermsDays)
	assert.True(t, c.Settings.LateFeeMonthlyRate.IsZero())

	events := c.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "CompanyCreated", events[0].EventType())
}

func TestNewCompany_Validation(t *testing.T) {
	_, err := NewCompany("", uuid.New())
	assert.Error(t, err)

	_, err = NewCompany("Acme", uuid.Nil)
	assert.Error(t, err)
}

// ============================================
// Settings Tests
// ============================================

func TestCompany_SetCurrency(t *testing.T) {
	c := createTestCompany(t)

	require.NoError(t, c.SetCurrency(valueobject.EUR))
	assert.Equal(t, valueobject.EUR, c.Settings.Currency)

	assert.Error(t, c.SetCurrency(valueobject.Currency("XXX")))
}

func TestCompany_SetPaymentDefaults(t *testing.T) {
	c := createTestCompany(t)

	require.NoError(t, c.SetPaymentDefaults(14, decimal.NewFromFloat(8.25)))
	assert.Equal(t, 14, c.Settings.DefaultPaymentTermsDays)
	assert.True(t, c.Settings.DefaultTaxRate.Equal(decimal.NewFromFloat(8.25)))

	assert.Error(t, c.SetPaymentDefaults(-1, decimal.Zero))
	assert.Error(t, c.SetPaymentDefaults(400, decimal.Zero))
	assert.Error(t, c.SetPaymentDefaults(30, decimal.NewFromInt(-1)))
}

func TestCompany_SetLateFeeRate(t *testing.T) {
	c := createTestCompany(t)

	require.NoError(t, c.SetLateFeeRate(decimal.NewFromFloat(0.015)))
	assert.True(t, c.Settings.LateFeeMonthlyRate.Equal(decimal.NewFromFloat(0.015)))

	assert.Error(t, c.SetLateFeeRate(decimal.NewFromFloat(-0.01)))
	assert.Error(t, c.SetLateFeeRate(decimal.NewFromFloat(1.5)))
}

// ============================================
// Ownership and Status Tests
// ============================================

func TestCompany_TransferOwnership(t *testing.T) {
	c := createTestCompany(t)
	newOwner := uuid.New()

	require.NoError(t, c.TransferOwnership(newOwner))
	assert.Equal(t, newOwner, c.OwnerUserID)

	assert.Error(t, c.TransferOwnership(newOwner), "transferring to the current owner is rejected")
	assert.Error(t, c.TransferOwnership(uuid.Nil))
}

func TestCompany_StatusTransitions(t *testing.T) {
	c := createTestCompany(t)

	require.NoError(t, c.Suspend())
	assert.Equal(t, CompanyStatusSuspended, c.Status)
	assert.False(t, c.IsActive())
	assert.Error(t, c.Suspend())

	require.NoError(t, c.Activate())
	assert.True(t, c.IsActive())

	require.NoError(t, c.Deactivate())
	assert.Equal(t, CompanyStatusInactive, c.Status)
}
