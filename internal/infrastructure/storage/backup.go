package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"os/exec"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/expenseally/backend/internal/infrastructure/config"
)

// dumpFunc produces a logical dump of the database.
type dumpFunc func(ctx context.Context, cfg config.DatabaseConfig) ([]byte, error)

// BackupService dumps the database, compresses the dump and uploads it
// to object storage, then prunes archives past the retention window.
type BackupService struct {
	dbCfg  config.DatabaseConfig
	cfg    config.BackupConfig
	store  ObjectStorage
	logger *zap.Logger
	dump   dumpFunc
}

// NewBackupService creates a backup service using pg_dump.
func NewBackupService(dbCfg config.DatabaseConfig, cfg config.BackupConfig, store ObjectStorage, logger *zap.Logger) *BackupService {
	return &BackupService{
		dbCfg:  dbCfg,
		cfg:    cfg,
		store:  store,
		logger: logger,
		dump:   pgDump,
	}
}

// Run takes one backup. Satisfies the scheduler's nightly backup hook
// and the admin CLI's backup command.
func (s *BackupService) Run(ctx context.Context, now time.Time) error {
	if !s.cfg.Enabled {
		s.logger.Info("Backups disabled by configuration")
		return nil
	}

	data, err := s.dump(ctx, s.dbCfg)
	if err != nil {
		return fmt.Errorf("database dump failed: %w", err)
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(data); err != nil {
		return fmt.Errorf("failed to compress dump: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to compress dump: %w", err)
	}

	key := BackupKey(s.cfg.Prefix, now)
	if err := s.store.Upload(ctx, key, buf.Bytes(), "application/gzip"); err != nil {
		return err
	}

	s.logger.Info("Backup uploaded",
		zap.String("key", key),
		zap.Int("compressed_bytes", buf.Len()),
	)

	return s.prune(ctx, now)
}

// prune deletes archives older than the retention window.
func (s *BackupService) prune(ctx context.Context, now time.Time) error {
	if s.cfg.RetentionDays <= 0 {
		return nil
	}

	prefix := strings.Trim(s.cfg.Prefix, "/")
	if prefix == "" {
		prefix = "backups"
	}

	keys, err := s.store.ListKeys(ctx, prefix+"/")
	if err != nil {
		return err
	}

	cutoff := now.AddDate(0, 0, -s.cfg.RetentionDays)
	removed := 0
	for _, key := range keys {
		taken, ok := backupTimestamp(key)
		if !ok {
			continue
		}
		if taken.Before(cutoff) {
			if err := s.store.DeleteObject(ctx, key); err != nil {
				s.logger.Warn("Failed to prune backup",
					zap.String("key", key),
					zap.Error(err),
				)
				continue
			}
			removed++
		}
	}

	if removed > 0 {
		s.logger.Info("Pruned expired backups", zap.Int("removed", removed))
	}
	return nil
}

// backupTimestamp extracts the capture time encoded in a backup key.
func backupTimestamp(key string) (time.Time, bool) {
	name := strings.TrimSuffix(path.Base(key), ".sql.gz")
	ts, err := time.Parse("20060102-150405", name)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// pgDump shells out to pg_dump for a plain-format logical dump.
func pgDump(ctx context.Context, cfg config.DatabaseConfig) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "pg_dump",
		"--no-owner",
		"--no-privileges",
		"--dbname", cfg.DSN(),
	)

	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pg_dump: %w: %s", err, strings.TrimSpace(errOut.String()))
	}
	return out.Bytes(), nil
}
