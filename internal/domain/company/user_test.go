package company

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers
func createTestUser(t *testing.T) *User {
	u, err := NewActiveUser(uuid.New(), "owner@riverside.test", "correct-horse-battery", UserRoleOwner)
	require.NoError(t, err)
	return u
}

// ============================================
// UserRole Tests
// ============================================

func TestUserRole_Permissions(t *testing.T) {
	tests := []struct {
		role       UserRole
		canApprove bool
		canManage  bool
	}{
		{UserRoleOwner, true, true},
		{UserRoleAccountant, true, false},
		{UserRoleStaff, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.True(t, tt.role.IsValid())
			assert.Equal(t, tt.canApprove, tt.role.CanApproveExpenses())
			assert.Equal(t, tt.canManage, tt.role.CanManageCompany())
		})
	}

	assert.False(t, UserRole("admin").IsValid())
}

// ============================================
// NewUser Tests
// ============================================

func TestNewUser_Success(t *testing.T) {
	companyID := uuid.New()
	u, err := NewUser(companyID, "Staff@Riverside.Test", "secret-password", UserRoleStaff)
	require.NoError(t, err)

	assert.Equal(t, companyID, u.CompanyID)
	assert.Equal(t, "staff@riverside.test", u.Email)
	assert.Equal(t, UserStatusPending, u.Status)
	assert.NotEmpty(t, u.PasswordHash)
	assert.NotEqual(t, "secret-password", u.PasswordHash)
	assert.True(t, u.VerifyPassword("secret-password"))
	assert.False(t, u.VerifyPassword("wrong"))
}

func TestNewUser_Validation(t *testing.T) {
	tests := []struct {
		name     string
		company  uuid.UUID
		email    string
		password string
		role     UserRole
	}{
		{"nil company", uuid.Nil, "a@b.co", "longenough", UserRoleStaff},
		{"bad email", uuid.New(), "nope", "longenough", UserRoleStaff},
		{"short password", uuid.New(), "a@b.co", "short", UserRoleStaff},
		{"bad role", uuid.New(), "a@b.co", "longenough", UserRole("admin")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(tt.company, tt.email, tt.password, tt.role)
			assert.Error(t, err)
		})
	}
}

// ============================================
// Password Tests
// ============================================

func TestUser_ChangePassword(t *testing.T) {
	u := createTestUser(t)

	err := u.ChangePassword("wrong-password", "new-password-123")
	assert.Error(t, err)

	require.NoError(t, u.ChangePassword("correct-horse-battery", "new-password-123"))
	assert.True(t, u.VerifyPassword("new-password-123"))
	assert.False(t, u.VerifyPassword("correct-horse-battery"))
}

// ============================================
// Login and Lockout Tests
// ============================================

func TestUser_RecordLogin(t *testing.T) {
	u := createTestUser(t)
	u.FailedAttempts = 3

	now := time.Now()
	u.RecordLogin(now)

	require.NotNil(t, u.LastLoginAt)
	assert.Equal(t, 0, u.FailedAttempts)
	assert.Nil(t, u.LockedUntil)
}

func TestUser_LockoutAfterFailedAttempts(t *testing.T) {
	u := createTestUser(t)
	now := time.Now()

	for i := 0; i < 4; i++ {
		u.RecordFailedLogin(now)
		assert.False(t, u.IsLocked(now))
	}

	u.RecordFailedLogin(now)
	assert.True(t, u.IsLocked(now))
	assert.Equal(t, UserStatusLocked, u.Status)
	require.NotNil(t, u.LockedUntil)

	// Lock expires after the window
	assert.False(t, u.IsLocked(now.Add(31*time.Minute)))

	u.Unlock()
	assert.True(t, u.IsActive())
	assert.Equal(t, 0, u.FailedAttempts)
}
