package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"EXPENSEALLY_APP_NAME":                os.Getenv("EXPENSEALLY_APP_NAME"),
		"EXPENSEALLY_APP_ENV":                 os.Getenv("EXPENSEALLY_APP_ENV"),
		"EXPENSEALLY_APP_PORT":                os.Getenv("EXPENSEALLY_APP_PORT"),
		"EXPENSEALLY_DATABASE_HOST":           os.Getenv("EXPENSEALLY_DATABASE_HOST"),
		"EXPENSEALLY_DATABASE_PORT":           os.Getenv("EXPENSEALLY_DATABASE_PORT"),
		"EXPENSEALLY_DATABASE_USER":           os.Getenv("EXPENSEALLY_DATABASE_USER"),
		"EXPENSEALLY_DATABASE_PASSWORD":       os.Getenv("EXPENSEALLY_DATABASE_PASSWORD"),
		"EXPENSEALLY_DATABASE_DBNAME":         os.Getenv("EXPENSEALLY_DATABASE_DBNAME"),
		"EXPENSEALLY_DATABASE_SSLMODE":        os.Getenv("EXPENSEALLY_DATABASE_SSLMODE"),
		"EXPENSEALLY_DATABASE_MAX_OPEN_CONNS": os.Getenv("EXPENSEALLY_DATABASE_MAX_OPEN_CONNS"),
		"EXPENSEALLY_DATABASE_MAX_IDLE_CONNS": os.Getenv("EXPENSEALLY_DATABASE_MAX_IDLE_CONNS"),
		"EXPENSEALLY_JWT_SECRET":              os.Getenv("EXPENSEALLY_JWT_SECRET"),
		"EXPENSEALLY_SMTP_HOST":               os.Getenv("EXPENSEALLY_SMTP_HOST"),
		"EXPENSEALLY_SCHEDULER_ENABLED":       os.Getenv("EXPENSEALLY_SCHEDULER_ENABLED"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "expenseally-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "", cfg.Database.Password)
		assert.Equal(t, "expenseally", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "expenseally", cfg.JWT.Issuer)
		assert.Equal(t, "0 * * * *", cfg.Scheduler.OverdueSweepCron)
		assert.Equal(t, "0 2 * * *", cfg.Scheduler.BackupCron)
		assert.Equal(t, 587, cfg.SMTP.Port)
		assert.Equal(t, "USD", cfg.FX.BaseCurrency)
		assert.Equal(t, 30, cfg.Backup.RetentionDays)
	})

	t.Run("loads values from environment variables with EXPENSEALLY prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("EXPENSEALLY_APP_NAME", "test-app")
		os.Setenv("EXPENSEALLY_APP_ENV", "testing")
		os.Setenv("EXPENSEALLY_APP_PORT", "9000")
		os.Setenv("EXPENSEALLY_DATABASE_HOST", "testdb.local")
		os.Setenv("EXPENSEALLY_DATABASE_PORT", "5433")
		os.Setenv("EXPENSEALLY_DATABASE_USER", "testuser")
		os.Setenv("EXPENSEALLY_DATABASE_PASSWORD", "testpass")
		os.Setenv("EXPENSEALLY_DATABASE_DBNAME", "testdb")
		os.Setenv("EXPENSEALLY_DATABASE_SSLMODE", "require")
		os.Setenv("EXPENSEALLY_DATABASE_MAX_OPEN_CONNS", "50")
		os.Setenv("EXPENSEALLY_DATABASE_MAX_IDLE_CONNS", "10")
		os.Setenv("EXPENSEALLY_SMTP_HOST", "mail.example.com")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "testing", cfg.App.Env)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "testdb", cfg.Database.DBName)
		assert.Equal(t, "require", cfg.Database.SSLMode)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, "mail.example.com", cfg.SMTP.Host)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("EXPENSEALLY_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("EXPENSEALLY_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("zero MaxOpenConns uses default", func(t *testing.T) {
		clearEnv()
		os.Setenv("EXPENSEALLY_DATABASE_MAX_OPEN_CONNS", "0")

		cfg, err := Load()
		require.NoError(t, err)
		// 0 is treated as "not set", so default (25) is used
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		clearEnv()
		os.Setenv("EXPENSEALLY_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
	})

	t.Run("production requires jwt secret", func(t *testing.T) {
		clearEnv()
		os.Setenv("EXPENSEALLY_APP_ENV", "production")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")
	})

	t.Run("production requires long jwt secret", func(t *testing.T) {
		clearEnv()
		os.Setenv("EXPENSEALLY_APP_ENV", "production")
		os.Setenv("EXPENSEALLY_JWT_SECRET", "short")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 32 characters")
	})
}

func TestDatabaseConfigDSN(t *testing.T) {
	t.Run("builds postgres DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "db.example.com",
			Port:     5432,
			User:     "app",
			Password: "secret",
			DBName:   "expenseally",
			SSLMode:  "require",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "postgres://")
		assert.Contains(t, dsn, "app:secret@db.example.com:5432")
		assert.Contains(t, dsn, "expenseally")
		assert.Contains(t, dsn, "sslmode=require")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "app",
			Password: "p@ss/word#1",
			DBName:   "expenseally",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.NotContains(t, dsn, "p@ss/word#1@localhost")
	})
}

func TestRedisConfigAddr(t *testing.T) {
	cfg := RedisConfig{Host: "cache.local", Port: 6380}
	assert.Equal(t, "cache.local:6380", cfg.Addr())
}
