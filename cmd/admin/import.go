package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	importapp "github.com/expenseally/backend/internal/application/import"
	csvimport "github.com/expenseally/backend/internal/infrastructure/import"
	"github.com/expenseally/backend/internal/infrastructure/persistence"
)

var importCmd = &cobra.Command{
	Use:   "import [clients|expenses]",
	Short: "Import clients or expenses from a CSV file",
	Long: `Import validates a CSV file against the entity's field rules and,
when validation passes, writes the rows into the company's data.

With --dry-run the file is only validated; nothing is written.
The --mode flag controls what happens when a row collides with an
existing record: skip it, update the record, or fail the import.`,
	Example: `  # Validate a client file without importing
  expenseally-admin import clients --file clients.csv --company-id <uuid> --user-id <uuid> --dry-run

  # Import expenses, updating duplicates
  expenseally-admin import expenses --file expenses.csv --company-id <uuid> --user-id <uuid> --mode update`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"clients", "expenses"},
	RunE:      runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().String("file", "", "Path to the CSV file (required)")
	importCmd.Flags().String("company-id", "", "Company UUID (required)")
	importCmd.Flags().String("user-id", "", "Acting user UUID (required)")
	importCmd.Flags().String("mode", "skip", "Conflict mode: skip, update or fail")
	importCmd.Flags().Bool("dry-run", false, "Validate only, do not import")
	_ = importCmd.MarkFlagRequired("file")
	_ = importCmd.MarkFlagRequired("company-id")
	_ = importCmd.MarkFlagRequired("user-id")
}

func runImport(cmd *cobra.Command, args []string) error {
	entity := args[0]
	filePath, _ := cmd.Flags().GetString("file")
	companyIDStr, _ := cmd.Flags().GetString("company-id")
	userIDStr, _ := cmd.Flags().GetString("user-id")
	modeStr, _ := cmd.Flags().GetString("mode")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	companyID, err := uuid.Parse(companyIDStr)
	if err != nil {
		return fmt.Errorf("invalid company-id: %w", err)
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return fmt.Errorf("invalid user-id: %w", err)
	}
	mode := importapp.ConflictMode(modeStr)
	if !mode.IsValid() {
		return fmt.Errorf("invalid mode %q: must be skip, update or fail", modeStr)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
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
	clientRepo := persistence.NewGormClientRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)

	var (
		entityType csvimport.EntityType
		rules      []csvimport.FieldRule
		clientSvc  *importapp.ClientImportService
		expenseSvc *importapp.ExpenseImportService
	)
	processorOpts := []csvimport.ProcessorOption{}

	switch entity {
	case "clients":
		entityType = csvimport.EntityClients
		clientSvc = importapp.NewClientImportService(clientRepo, nil)
		rules = clientSvc.GetValidationRules()
		processorOpts = append(processorOpts, csvimport.WithUniqueLookup(
			func(entityType, field, value string) (bool, error) {
				return clientSvc.LookupUnique(ctx, companyID, field, value)
			}))
	case "expenses":
		entityType = csvimport.EntityExpenses
		expenseSvc = importapp.NewExpenseImportService(expenseRepo, categoryRepo, nil)
		rules = expenseSvc.GetValidationRules()
		processorOpts = append(processorOpts, csvimport.WithReferenceLookup(
			func(refType, value string) (bool, error) {
				return expenseSvc.LookupCategory(ctx, companyID, value)
			}))
	}

	fileName := filepath.Base(filePath)
	session := csvimport.NewImportSession(companyID, userID, entityType, fileName, int64(len(data)))
	processor := csvimport.NewImportProcessor(processorOpts...)

	validation, err := processor.Validate(ctx, session, bytes.NewReader(data), rules)
	if err != nil {
		return fmt.Errorf("validate file: %w", err)
	}

	fmt.Printf("Validated %s: %d rows, %d valid, %d with errors\n",
		fileName, validation.TotalRows, validation.ValidRows, validation.ErrorRows)
	for _, rowErr := range validation.Errors {
		fmt.Printf("  line %d, %s: %s\n", rowErr.Row, rowErr.Column, rowErr.Message)
	}
	if validation.IsTruncated {
		fmt.Printf("  ... %d errors total\n", validation.TotalErrors)
	}

	if !validation.IsValid() {
		return fmt.Errorf("validation failed with %d error rows", validation.ErrorRows)
	}
	if dryRun {
		fmt.Println("Dry run: no rows imported")
		return nil
	}

	rows, err := readImportRows(data)
	if err != nil {
		return fmt.Errorf("read rows: %w", err)
	}

	switch entity {
	case "clients":
		result, err := clientSvc.Import(ctx, companyID, userID, session, rows, mode)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d clients (%d updated, %d skipped, %d errors)\n",
			result.ImportedRows, result.UpdatedRows, result.SkippedRows, result.ErrorRows)
		for _, rowErr := range result.Errors {
			fmt.Printf("  line %d, %s: %s\n", rowErr.Row, rowErr.Column, rowErr.Message)
		}
	case "expenses":
		result, err := expenseSvc.Import(ctx, companyID, userID, session, rows, mode)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d expenses (%d updated, %d skipped, %d errors)\n",
			result.ImportedRows, result.UpdatedRows, result.SkippedRows, result.ErrorRows)
		for _, rowErr := range result.Errors {
			fmt.Printf("  line %d, %s: %s\n", rowErr.Row, rowErr.Column, rowErr.Message)
		}
	}
	return nil
}

// readImportRows re-parses the file into rows for the import services,
// dropping empty lines the same way validation does.
func readImportRows(data []byte) ([]*csvimport.Row, error) {
	parser, err := csvimport.ParseFromBytes(data)
	if err != nil {
		return nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}
	all, err := parser.ReadAllRows()
	if err != nil {
		return nil, err
	}
	rows := make([]*csvimport.Row, 0, len(all))
	for _, row := range all {
		if row.IsEmpty() {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
