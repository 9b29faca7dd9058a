package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/expenseally/backend/internal/domain/client"
	"github.com/expenseally/backend/internal/domain/company"
	"github.com/expenseally/backend/internal/domain/expense"
	"github.com/expenseally/backend/internal/domain/invoicing"
	"github.com/expenseally/backend/internal/infrastructure/persistence"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create a demo company with sample clients, invoices and expenses",
	Long: `Seed creates a company with an owner account, a default expense
category tree, a handful of clients, and a spread of invoices and
expenses across the last three months. Intended for development and
demo environments; refuses to run if the owner email already exists.`,
	Example: `  # Seed against the configured database
  expenseally-admin seed --email owner@demo.test --password changeme

  # Seed a standalone SQLite file for local development
  expenseally-admin seed --sqlite dev.db --email owner@demo.test --password changeme`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().String("email", "owner@demo.test", "Owner account email")
	seedCmd.Flags().String("password", "", "Owner account password (required)")
	seedCmd.Flags().String("company", "Demo Consulting", "Company name")
	seedCmd.Flags().String("sqlite", "", "Seed a SQLite file instead of the configured database")
	seedCmd.Flags().Int("clients", 4, "Number of clients to create")
	_ = seedCmd.MarkFlagRequired("password")
}

func runSeed(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	companyName, _ := cmd.Flags().GetString("company")
	sqlitePath, _ := cmd.Flags().GetString("sqlite")
	clientCount, _ := cmd.Flags().GetInt("clients")
	if clientCount < 1 {
		return fmt.Errorf("clients must be positive")
	}

	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg, sqlitePath)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if sqlitePath != "" {
		if err := persistence.AutoMigrate(db.DB); err != nil {
			return fmt.Errorf("migrate sqlite schema: %w", err)
		}
	}

	ctx := cmd.Context()
	userRepo := persistence.NewGormUserRepository(db.DB)
	companyRepo := persistence.NewGormCompanyRepository(db.DB)
	clientRepo := persistence.NewGormClientRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)

	exists, err := userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("an account with email %s already exists", email)
	}

	owner, err := company.NewActiveUser(uuid.New(), email, password, company.UserRoleOwner)
	if err != nil {
		return err
	}
	comp, err := company.NewCompany(companyName, owner.ID)
	if err != nil {
		return err
	}
	owner.CompanyID = comp.ID

	if err := companyRepo.Save(ctx, comp); err != nil {
		return err
	}
	if err := userRepo.Save(ctx, owner); err != nil {
		return err
	}
	comp.ClearDomainEvents()

	log.Info("Company created",
		zap.String("company_id", comp.ID.String()),
		zap.String("owner_email", email))

	categories, err := seedCategories(ctx, categoryRepo, comp.ID)
	if err != nil {
		return err
	}

	clients, err := seedClients(ctx, clientRepo, comp.ID, owner.ID, clientCount)
	if err != nil {
		return err
	}

	invoiceTotal, err := seedInvoices(ctx, invoiceRepo, comp.ID, owner.ID, clients)
	if err != nil {
		return err
	}

	expenseTotal, err := seedExpenses(ctx, expenseRepo, comp.ID, owner.ID, categories)
	if err != nil {
		return err
	}

	fmt.Printf("Seeded company %q (%s)\n", companyName, comp.ID)
	fmt.Printf("  owner:      %s\n", email)
	fmt.Printf("  clients:    %d\n", len(clients))
	fmt.Printf("  categories: %d\n", len(categories))
	fmt.Printf("  invoices:   %d\n", invoiceTotal)
	fmt.Printf("  expenses:   %d\n", expenseTotal)
	return nil
}

func seedCategories(ctx context.Context, repo expense.CategoryRepository, companyID uuid.UUID) ([]*expense.Category, error) {
	specs := []struct{ name, description string }{
		{"Office", "Rent, utilities and supplies"},
		{"Travel", "Flights, hotels and mileage"},
		{"Software", "Subscriptions and licenses"},
		{"Meals", "Client meals and team events"},
	}

	categories := make([]*expense.Category, 0, len(specs))
	for _, s := range specs {
		cat, err := expense.NewCategory(companyID, s.name, s.description)
		if err != nil {
			return nil, err
		}
		if err := repo.Save(ctx, cat); err != nil {
			return nil, err
		}
		cat.ClearDomainEvents()
		categories = append(categories, cat)
	}
	return categories, nil
}

func seedClients(ctx context.Context, repo client.ClientRepository, companyID, userID uuid.UUID, count int) ([]*client.Client, error) {
	names := []string{"Northwind Traders", "Contoso Ltd", "Fabrikam Inc", "Adventure Works", "Wide World Importers", "Tailspin Toys"}

	clients := make([]*client.Client, 0, count)
	for i := 0; i < count; i++ {
		name := names[i%len(names)]
		if i >= len(names) {
			name = fmt.Sprintf("%s %d", name, i/len(names)+1)
		}
		cl, err := client.NewClient(companyID, name, fmt.Sprintf("billing%d@%s.test", i+1, "clients"))
		if err != nil {
			return nil, err
		}
		cl.SetCreatedBy(userID)
		if err := cl.SetPaymentTerms(30); err != nil {
			return nil, err
		}
		if i%2 == 0 {
			if err := cl.SetCreditLimit(decimal.NewFromInt(25000)); err != nil {
				return nil, err
			}
		}
		if err := repo.Save(ctx, cl); err != nil {
			return nil, err
		}
		cl.ClearDomainEvents()
		clients = append(clients, cl)
	}
	return clients, nil
}

// seedInvoices issues one invoice per client per month for the last
// three months. Older invoices are paid in full, the middle month is
// partially paid, and the current month stays outstanding.
func seedInvoices(ctx context.Context, repo invoicing.InvoiceRepository, companyID, userID uuid.UUID, clients []*client.Client) (int, error) {
	now := time.Now().UTC().Truncate(24 * time.Hour)
	seq := 0

	for monthsAgo := 2; monthsAgo >= 0; monthsAgo-- {
		issueDate := now.AddDate(0, -monthsAgo, 0)
		for _, cl := range clients {
			seq++
			inv, err := invoicing.NewInvoice(invoicing.NewInvoiceParams{
				CompanyID:     companyID,
				ClientID:      cl.ID,
				ClientName:    cl.Name,
				InvoiceNumber: fmt.Sprintf("INV-%s-%04d", issueDate.Format("2006"), seq),
				IssueDate:     issueDate,
				DueDate:       issueDate.AddDate(0, 0, 30),
				CreatedBy:     &userID,
			})
			if err != nil {
				return 0, err
			}

			if _, err := inv.AddItem(invoicing.ItemInput{
				Description: "Consulting services",
				Quantity:    decimal.NewFromInt(int64(8 + seq%5)),
				UnitPrice:   decimal.NewFromInt(150),
				TaxRate:     decimal.NewFromInt(10),
			}); err != nil {
				return 0, err
			}

			if err := inv.MarkSent(issueDate); err != nil {
				return 0, err
			}

			switch monthsAgo {
			case 2:
				if _, err := inv.RecordPayment(invoicing.RecordPaymentParams{
					Amount:      inv.BalanceDue(),
					PaymentDate: issueDate.AddDate(0, 0, 14),
					Method:      invoicing.PaymentMethodBankTransfer,
					ProcessedBy: &userID,
				}); err != nil {
					return 0, err
				}
			case 1:
				if _, err := inv.RecordPayment(invoicing.RecordPaymentParams{
					Amount:      inv.BalanceDue().Div(decimal.NewFromInt(2)).Round(2),
					PaymentDate: issueDate.AddDate(0, 0, 20),
					Method:      invoicing.PaymentMethodCreditCard,
					ProcessedBy: &userID,
				}); err != nil {
					return 0, err
				}
			}

			if err := repo.Save(ctx, inv); err != nil {
				return 0, err
			}
			inv.ClearDomainEvents()
		}
	}
	return seq, nil
}

func seedExpenses(ctx context.Context, repo expense.ExpenseRepository, companyID, userID uuid.UUID, categories []*expense.Category) (int, error) {
	now := time.Now().UTC().Truncate(24 * time.Hour)
	specs := []struct {
		description string
		amount      int64
		vendor      string
		method      expense.PaymentMethod
		deductible  bool
	}{
		{"Coworking space rent", 1200, "WeShare Spaces", expense.PaymentMethodBankTransfer, true},
		{"Flight to client site", 420, "Budget Air", expense.PaymentMethodCreditCard, true},
		{"CRM subscription", 89, "PipeDesk", expense.PaymentMethodCreditCard, true},
		{"Team lunch", 145, "La Trattoria", expense.PaymentMethodCash, false},
	}

	count := 0
	for monthsAgo := 2; monthsAgo >= 0; monthsAgo-- {
		for i, s := range specs {
			exp, err := expense.NewExpense(expense.NewExpenseParams{
				CompanyID:     companyID,
				CategoryID:    categories[i%len(categories)].ID,
				Description:   s.description,
				Amount:        decimal.NewFromInt(s.amount),
				ExpenseDate:   now.AddDate(0, -monthsAgo, -i),
				Vendor:        s.vendor,
				Method:        s.method,
				TaxDeductible: s.deductible,
				CreatedBy:     &userID,
			})
			if err != nil {
				return 0, err
			}
			if monthsAgo > 0 {
				if err := exp.Approve(userID, now.AddDate(0, -monthsAgo, 0)); err != nil {
					return 0, err
				}
			}
			if err := repo.Save(ctx, exp); err != nil {
				return 0, err
			}
			exp.ClearDomainEvents()
			count++
		}
	}
	return count, nil
}
