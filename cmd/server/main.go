package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appclient "github.com/expenseally/backend/internal/application/client"
	appcompany "github.com/expenseally/backend/internal/application/company"
	appexpense "github.com/expenseally/backend/internal/application/expense"
	appinvoicing "github.com/expenseally/backend/internal/application/invoicing"
	appreport "github.com/expenseally/backend/internal/application/report"
	"github.com/expenseally/backend/internal/infrastructure/auth"
	"github.com/expenseally/backend/internal/infrastructure/cache"
	"github.com/expenseally/backend/internal/infrastructure/config"
	"github.com/expenseally/backend/internal/infrastructure/event"
	"github.com/expenseally/backend/internal/infrastructure/fx"
	"github.com/expenseally/backend/internal/infrastructure/logger"
	"github.com/expenseally/backend/internal/infrastructure/notification"
	"github.com/expenseally/backend/internal/infrastructure/pdf"
	"github.com/expenseally/backend/internal/infrastructure/persistence"
	"github.com/expenseally/backend/internal/infrastructure/scheduler"
	"github.com/expenseally/backend/internal/infrastructure/storage"
	"github.com/expenseally/backend/internal/interfaces/http/handler"
	"github.com/expenseally/backend/internal/interfaces/http/router"
)

//	@title			ExpenseAlly API
//	@version		1.0
//	@description	Financial management backend for small businesses: clients, invoicing, expenses and reporting.

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting ExpenseAlly backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database, with SQL logs correlated to requests through zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Redis is optional; the server degrades to in-process fallbacks
	// (in-memory token blacklist and job leases) without it.
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Warn("Redis unreachable, falling back to in-memory stores", zap.Error(err))
			_ = redisClient.Close()
			redisClient = nil
		}
		cancel()
	}
	if redisClient != nil {
		defer func() {
			_ = redisClient.Close()
		}()
	}

	// Repositories
	companyRepo := persistence.NewGormCompanyRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	clientRepo := persistence.NewGormClientRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)

	// Auth
	jwtService := auth.NewJWTService(cfg.JWT)
	var blacklist auth.TokenBlacklist
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
	}

	// Object storage for receipts and company logos
	var objectStorage storage.ObjectStorage
	if cfg.Storage.Bucket != "" {
		s3Storage, err := storage.NewS3ObjectStorage(cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		ensureCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := s3Storage.EnsureBucket(ensureCtx); err != nil {
			log.Fatal("Failed to ensure storage bucket", zap.Error(err))
		}
		cancel()
		objectStorage = s3Storage
		log.Info("Object storage ready", zap.String("bucket", cfg.Storage.Bucket))
	} else {
		objectStorage = storage.NewInMemoryObjectStorage()
		log.Warn("No storage bucket configured, uploads are held in memory")
	}

	// Application services
	authService := appcompany.NewAuthService(userRepo, companyRepo, jwtService, blacklist, log)
	companyService := appcompany.NewCompanyService(companyRepo, userRepo)
	clientService := appclient.NewClientService(clientRepo, invoiceRepo)
	invoiceService := appinvoicing.NewInvoiceService(invoiceRepo, clientRepo, companyRepo)
	expenseService := appexpense.NewExpenseService(expenseRepo, categoryRepo, userRepo)
	categoryService := appexpense.NewCategoryService(categoryRepo, expenseRepo)
	reportService := appreport.NewReportService(invoiceRepo, expenseRepo, categoryRepo, clientRepo)

	// Event bus with the activity feed subscribed to every domain event
	serializer := event.NewSerializer()
	event.RegisterDomainEvents(serializer)

	eventBus := event.NewInMemoryEventBus(log)
	activityFeed := event.NewActivityFeed(serializer, 500)
	eventBus.Subscribe(activityFeed)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	clientService.SetEventPublisher(eventBus)
	invoiceService.SetEventPublisher(eventBus)
	expenseService.SetEventPublisher(eventBus)

	// PDF rendering is optional; invoice downloads return 503 without it.
	var documentService *pdf.InvoiceDocumentService
	if renderer, err := pdf.NewChromedpRenderer(&pdf.ChromedpConfig{
		NoSandbox: os.Getenv("CHROME_NO_SANDBOX") != "",
		Logger:    log,
	}); err != nil {
		log.Warn("PDF renderer unavailable, invoice downloads disabled", zap.Error(err))
	} else {
		documentService = pdf.NewInvoiceDocumentService(renderer)
		defer func() {
			_ = renderer.Close()
		}()
	}

	// Background jobs
	if cfg.Scheduler.Enabled {
		var leases cache.LeaseStore
		if redisClient != nil {
			leases = cache.NewRedisLeaseStoreWithClient(redisClient, "expenseally:jobs")
		} else {
			leases = cache.NewInMemoryLeaseStore()
			log.Warn("Using in-memory job leases; run a single instance only")
		}

		schedulerConfig := scheduler.DefaultConfig()
		schedulerConfig.MaxConcurrentJobs = cfg.Scheduler.MaxConcurrentJobs
		schedulerConfig.JobTimeout = cfg.Scheduler.JobTimeout
		schedulerConfig.LeaseTTL = cfg.Scheduler.LeaseTTL
		jobScheduler := scheduler.NewScheduler(schedulerConfig, leases, log)

		overdueService := appinvoicing.NewOverdueService(invoiceRepo, companyRepo, log)
		overdueService.SetEventPublisher(eventBus)
		recurringInvoices := appinvoicing.NewRecurringInvoiceService(invoiceRepo, log)
		recurringInvoices.SetEventPublisher(eventBus)
		recurringExpenses := appexpense.NewRecurringExpenseService(expenseRepo, log)
		recurringExpenses.SetEventPublisher(eventBus)
		creditMonitor := appclient.NewCreditMonitorService(clientRepo, invoiceRepo, log)
		creditMonitor.SetEventPublisher(eventBus)

		mailer := notification.NewMailer(cfg.SMTP, log)
		reminderService := appinvoicing.NewReminderService(
			invoiceRepo, clientRepo, notification.NewEmailReminderNotifier(mailer, log), log)
		digestService := notification.NewDigestService(companyRepo, userRepo, reportService, mailer, log)

		jobs := scheduler.StandardJobs{
			Overdue:           overdueService,
			RecurringInvoices: recurringInvoices,
			RecurringExpenses: recurringExpenses,
			Reminders:         reminderService,
			CreditMonitor:     creditMonitor,
			Digests:           digestService,
		}

		if cfg.FX.Enabled {
			var rateStore fx.RateStore
			if redisClient != nil {
				rateStore = fx.NewRedisRateStore(redisClient)
			} else {
				rateStore = fx.NewInMemoryRateStore()
			}
			jobs.Rates = fx.NewService(cfg.FX, fx.NewHTTPRateProvider(cfg.FX), rateStore, log)
		}

		if cfg.Backup.Enabled {
			jobs.Backup = storage.NewBackupService(cfg.Database, cfg.Backup, objectStorage, log)
		}

		if err := jobScheduler.RegisterStandardJobs(cfg.Scheduler, jobs); err != nil {
			log.Fatal("Failed to register scheduled jobs", zap.Error(err))
		}
		if err := jobScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
		defer func() {
			if err := jobScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping scheduler", zap.Error(err))
			}
		}()
		log.Info("Scheduler started",
			zap.Int("max_concurrent_jobs", schedulerConfig.MaxConcurrentJobs),
			zap.Duration("job_timeout", schedulerConfig.JobTimeout),
		)
	}

	// HTTP layer
	engine, err := router.New(router.Config{
		App:            cfg,
		Logger:         log,
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		Handlers: router.Handlers{
			Auth:     handler.NewAuthHandler(authService),
			Company:  handler.NewCompanyHandler(companyService, objectStorage),
			Client:   handler.NewClientHandler(clientService),
			Invoice:  handler.NewInvoiceHandler(invoiceService, invoiceRepo, companyRepo, documentService),
			Expense:  handler.NewExpenseHandler(expenseService, objectStorage),
			Category: handler.NewCategoryHandler(categoryService),
			Report:   handler.NewReportHandler(reportService),
			System:   handler.NewSystemHandler(db.DB, redisClient, activityFeed),
		},
	})
	if err != nil {
		log.Fatal("Failed to assemble router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
