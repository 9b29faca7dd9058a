package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/expenseally/backend/internal/infrastructure/storage"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Run a database backup to object storage now",
	Long: `Backup dumps the configured PostgreSQL database and uploads it to
the configured storage bucket, then prunes dumps older than the
retention window. Requires storage and backup to be configured.`,
	RunE: runBackup,
}

func init() {
	rootCmd.AddCommand(backupCmd)
}

func runBackup(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	if cfg.Storage.Bucket == "" {
		return fmt.Errorf("no storage bucket configured")
	}

	store, err := storage.NewS3ObjectStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("initialize object storage: %w", err)
	}
	ctx := cmd.Context()
	if err := store.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("ensure storage bucket: %w", err)
	}

	backup := storage.NewBackupService(cfg.Database, cfg.Backup, store, log)
	start := time.Now()
	if err := backup.Run(ctx, start); err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	fmt.Printf("Backup completed in %s (bucket %s, prefix %s)\n",
		time.Since(start).Round(time.Second), cfg.Storage.Bucket, cfg.Backup.Prefix)
	return nil
}
