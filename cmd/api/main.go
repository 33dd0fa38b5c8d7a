package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hatzaot-app/quotes-api/internal/accounting"
	"github.com/hatzaot-app/quotes-api/internal/auth"
	"github.com/hatzaot-app/quotes-api/internal/config"
	"github.com/hatzaot-app/quotes-api/internal/database"
	"github.com/hatzaot-app/quotes-api/internal/http/handler"
	"github.com/hatzaot-app/quotes-api/internal/http/middleware"
	"github.com/hatzaot-app/quotes-api/internal/http/router"
	"github.com/hatzaot-app/quotes-api/internal/jobs"
	"github.com/hatzaot-app/quotes-api/internal/logger"
	"github.com/hatzaot-app/quotes-api/internal/pdf"
	"github.com/hatzaot-app/quotes-api/internal/render"
	"github.com/hatzaot-app/quotes-api/internal/repository"
	"github.com/hatzaot-app/quotes-api/internal/service"
	"github.com/hatzaot-app/quotes-api/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Bootstrap config is loaded without secrets so the logger can come up
	// first; the full config (including vault-backed values) follows.
	bootCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&bootCfg.Logging, &bootCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load config with secrets: %w", err)
	}

	log.Info("starting quotes API",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
		zap.Int("port", cfg.App.Port),
	)

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("database connection established",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Name),
	)

	if cfg.App.Environment == "development" {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("auto-migration failed: %w", err)
		}
		log.Info("auto-migration completed")
	}

	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	// The accounting connection is optional. A failure here degrades the
	// customer import, not the API itself.
	var accountingClient *accounting.Client
	if cfg.Accounting.Enabled {
		accountingClient, err = accounting.NewClient(&cfg.Accounting, log)
		if err != nil {
			log.Warn("accounting connection unavailable, customer import disabled", zap.Error(err))
			accountingClient = nil
		}
	}
	if accountingClient != nil {
		defer func() { _ = accountingClient.Close() }()
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	productRepo := repository.NewProductRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	sequenceRepo := repository.NewQuoteSequenceRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	// Services
	auditLogService := service.NewAuditLogService(auditRepo, log)
	customerService := service.NewCustomerService(customerRepo, auditLogService, log)
	productService := service.NewProductService(productRepo, auditLogService, log)
	templateService := service.NewTemplateService(templateRepo, auditLogService, log)
	companyService := service.NewCompanyService(companyRepo, fileStorage, auditLogService, log, cfg.Public.BaseURL)
	quoteService := service.NewQuoteService(
		quoteRepo,
		customerRepo,
		templateRepo,
		productRepo,
		companyRepo,
		sequenceRepo,
		auditLogService,
		log,
		cfg.Public.DefaultValidityDays,
	)
	renderEngine := render.NewEngine()
	pdfClient := pdf.NewClient(&cfg.PDF)
	lifecycleService := service.NewQuoteLifecycleService(
		quoteRepo,
		companyRepo,
		quoteService,
		auditLogService,
		renderEngine,
		pdfClient,
		log,
		&cfg.Public,
	)
	importService := service.NewCustomerImportService(accountingClient, customerRepo, log, cfg.Accounting.ImportOwnerID)

	// Middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Handlers
	authHandler := handler.NewAuthHandler(authMiddleware.Validator(), userRepo, log)
	companyHandler := handler.NewCompanyHandler(companyService, log)
	customerHandler := handler.NewCustomerHandler(customerService, log)
	productHandler := handler.NewProductHandler(productService, log)
	templateHandler := handler.NewTemplateHandler(templateService, log)
	quoteHandler := handler.NewQuoteHandler(quoteService, lifecycleService, log)
	publicHandler := handler.NewPublicHandler(lifecycleService, companyService, &cfg.Public, log)
	auditHandler := handler.NewAuditHandler(auditLogService, log)

	rt := router.NewRouter(
		cfg,
		log,
		db,
		accountingClient,
		authMiddleware,
		rateLimiter,
		authHandler,
		companyHandler,
		customerHandler,
		productHandler,
		templateHandler,
		quoteHandler,
		publicHandler,
		auditHandler,
	)

	scheduler := jobs.NewScheduler(log)
	if accountingClient != nil && accountingClient.IsEnabled() {
		if err := jobs.RegisterAccountingSyncJob(
			scheduler,
			importService,
			log,
			cfg.Jobs.AccountingSyncSchedule,
			10*time.Minute,
			true,
		); err != nil {
			return fmt.Errorf("failed to register accounting sync job: %w", err)
		}
	}
	if err := jobs.RegisterExpiryReportJob(
		scheduler,
		&quoteExpiryAdapter{quoteService: quoteService},
		log,
		cfg.Jobs.ExpiryReportSchedule,
		5*time.Minute,
	); err != nil {
		return fmt.Errorf("failed to register expiry report job: %w", err)
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))

		// Let in-flight jobs finish before the server goes away.
		<-scheduler.Stop().Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		log.Info("server stopped")
	}

	return nil
}

// quoteExpiryAdapter feeds the expiry report job from the quote service
// without coupling the jobs package to the service layer.
type quoteExpiryAdapter struct {
	quoteService *service.QuoteService
}

func (a *quoteExpiryAdapter) ListExpiring(ctx context.Context, from, to time.Time) ([]jobs.ExpiringQuote, error) {
	quotes, err := a.quoteService.ListExpiringQuotes(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]jobs.ExpiringQuote, 0, len(quotes))
	for _, q := range quotes {
		name := ""
		if q.Customer != nil {
			name = q.Customer.Name
		}
		out = append(out, jobs.ExpiringQuote{
			QuoteNumber:  q.QuoteNumber,
			CustomerName: name,
			ValidUntil:   q.ValidUntil,
		})
	}
	return out, nil
}
