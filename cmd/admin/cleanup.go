package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/expenseally/backend/internal/domain/invoicing"
	"github.com/expenseally/backend/internal/domain/shared"
	"github.com/expenseally/backend/internal/infrastructure/persistence"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete cancelled invoices past the retention window",
	Long: `Cleanup permanently removes cancelled invoices whose last change is
older than the retention window. Cancelled invoices keep their void
reason in the audit trail until then; after the window they only add
noise to listings and exports.

Scope defaults to every active company; narrow it with --company-id.
Always run with --dry-run first.`,
	Example: `  # See what would be removed across all companies
  expenseally-admin cleanup --dry-run

  # Remove cancelled invoices older than two years for one company
  expenseally-admin cleanup --company-id <uuid> --older-than 730`,
	RunE: runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)

	cleanupCmd.Flags().String("company-id", "", "Limit cleanup to one company")
	cleanupCmd.Flags().Int("older-than", 365, "Retention window in days")
	cleanupCmd.Flags().Bool("dry-run", false, "List candidates without deleting")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	companyIDStr, _ := cmd.Flags().GetString("company-id")
	olderThan, _ := cmd.Flags().GetInt("older-than")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if olderThan < 30 {
		return fmt.Errorf("older-than must be at least 30 days")
	}

	cfg, _, err := bootstrap()
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg, "")
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	companyRepo := persistence.NewGormCompanyRepository(db.DB)

	var companyIDs []uuid.UUID
	if companyIDStr != "" {
		id, err := uuid.Parse(companyIDStr)
		if err != nil {
			return fmt.Errorf("invalid company-id: %w", err)
		}
		companyIDs = []uuid.UUID{id}
	} else {
		companies, err := companyRepo.FindActive(ctx)
		if err != nil {
			return err
		}
		for _, c := range companies {
			companyIDs = append(companyIDs, c.ID)
		}
	}

	cutoff := time.Now().AddDate(0, 0, -olderThan)
	total := 0
	for _, companyID := range companyIDs {
		n, err := cleanupCompany(ctx, invoiceRepo, companyID, cutoff, dryRun)
		if err != nil {
			return err
		}
		total += n
	}

	if dryRun {
		fmt.Printf("Dry run: %d cancelled invoices older than %s would be removed\n",
			total, cutoff.Format("2006-01-02"))
	} else {
		fmt.Printf("Removed %d cancelled invoices older than %s\n",
			total, cutoff.Format("2006-01-02"))
	}
	return nil
}

func cleanupCompany(ctx context.Context, repo invoicing.InvoiceRepository, companyID uuid.UUID, cutoff time.Time, dryRun bool) (int, error) {
	status := invoicing.InvoiceStatusCancelled
	filter := invoicing.InvoiceFilter{
		Filter: shared.Filter{Page: 1, PageSize: 100},
		Status: &status,
	}

	removed := 0
	for {
		page, err := repo.FindForCompany(ctx, companyID, filter)
		if err != nil {
			return removed, err
		}
		if len(page.Items) == 0 {
			return removed, nil
		}

		progressed := false
		for _, inv := range page.Items {
			if inv.UpdatedAt.After(cutoff) {
				continue
			}
			if dryRun {
				fmt.Printf("  %s  %s  voided, last change %s\n",
					inv.InvoiceNumber, inv.ClientName, inv.UpdatedAt.Format("2006-01-02"))
				removed++
				continue
			}
			if err := repo.Delete(ctx, inv.ID); err != nil {
				return removed, err
			}
			removed++
			progressed = true
		}

		if dryRun || !progressed {
			// In a dry run nothing is removed, so walk forward; after
			// deletes the next batch shifts into page one.
			if len(page.Items) < filter.PageSize {
				return removed, nil
			}
			filter.Page++
			continue
		}
		filter.Page = 1
	}
}
