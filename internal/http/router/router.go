package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hatzaot-app/quotes-api/internal/accounting"
	"github.com/hatzaot-app/quotes-api/internal/auth"
	"github.com/hatzaot-app/quotes-api/internal/config"
	"github.com/hatzaot-app/quotes-api/internal/database"
	"github.com/hatzaot-app/quotes-api/internal/http/handler"
	"github.com/hatzaot-app/quotes-api/internal/http/middleware"
)

type Router struct {
	cfg              *config.Config
	logger           *zap.Logger
	db               *gorm.DB
	accountingClient *accounting.Client
	authMiddleware   *auth.Middleware
	rateLimiter      *middleware.RateLimiter
	authHandler      *handler.AuthHandler
	companyHandler   *handler.CompanyHandler
	customerHandler  *handler.CustomerHandler
	productHandler   *handler.ProductHandler
	templateHandler  *handler.TemplateHandler
	quoteHandler     *handler.QuoteHandler
	publicHandler    *handler.PublicHandler
	auditHandler     *handler.AuditHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	accountingClient *accounting.Client,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	authHandler *handler.AuthHandler,
	companyHandler *handler.CompanyHandler,
	customerHandler *handler.CustomerHandler,
	productHandler *handler.ProductHandler,
	templateHandler *handler.TemplateHandler,
	quoteHandler *handler.QuoteHandler,
	publicHandler *handler.PublicHandler,
	auditHandler *handler.AuditHandler,
) *Router {
	return &Router{
		cfg:              cfg,
		logger:           logger,
		db:               db,
		accountingClient: accountingClient,
		authMiddleware:   authMiddleware,
		rateLimiter:      rateLimiter,
		authHandler:      authHandler,
		companyHandler:   companyHandler,
		customerHandler:  customerHandler,
		productHandler:   productHandler,
		templateHandler:  templateHandler,
		quoteHandler:     quoteHandler,
		publicHandler:    publicHandler,
		auditHandler:     auditHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
			},
		})
	})

	// Combined readiness check (checks all dependencies)
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		// The accounting connection is optional; its state is informational
		// and never fails readiness.
		checks["accounting"] = rt.accountingClient.HealthCheck(r.Context())

		w.Header().Set("Content-Type", "application/json")
		status := "healthy"
		if !allHealthy {
			status = "unhealthy"
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": status,
			"checks": checks,
		})
	})

	// Customer-facing routes, addressed by public token.
	// No auth; a stricter per-IP rate limit guards token guessing.
	r.Route("/public", func(r chi.Router) {
		r.Use(rt.rateLimiter.LimitPublic)

		r.Route("/quotes/{token}", func(r chi.Router) {
			r.Get("/", rt.publicHandler.GetQuote)
			r.Get("/render", rt.publicHandler.Render)
			r.Get("/pdf", rt.publicHandler.GeneratePDF)
			r.Post("/verify-email", rt.publicHandler.VerifyEmail)
			r.Post("/sign", rt.publicHandler.Sign)
		})

		r.Get("/assets/*", rt.publicHandler.GetAsset)
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)

			// Auth
			r.Get("/auth/me", rt.authHandler.Me)
			r.With(rt.authMiddleware.RequireAdmin).Post("/auth/token", rt.authHandler.IssueToken)

			// Business profile
			r.Route("/company", func(r chi.Router) {
				r.Get("/", rt.companyHandler.Get)
				r.Put("/", rt.companyHandler.Update)
				r.Post("/logo", rt.companyHandler.UploadLogo)
			})

			// Customers
			r.Route("/customers", func(r chi.Router) {
				r.Get("/", rt.customerHandler.List)
				r.Post("/", rt.customerHandler.Create)
				r.Get("/{id}", rt.customerHandler.GetByID)
				r.Put("/{id}", rt.customerHandler.Update)
				r.Delete("/{id}", rt.customerHandler.Delete)
			})

			// Product catalog
			r.Route("/products", func(r chi.Router) {
				r.Get("/", rt.productHandler.List)
				r.Post("/", rt.productHandler.Create)
				r.Get("/{id}", rt.productHandler.GetByID)
				r.Put("/{id}", rt.productHandler.Update)
				r.Delete("/{id}", rt.productHandler.Delete)
			})

			// Quote templates
			r.Route("/templates", func(r chi.Router) {
				r.Get("/", rt.templateHandler.List)
				r.Post("/", rt.templateHandler.Create)
				r.Get("/variables", rt.templateHandler.Variables)
				r.Get("/{id}", rt.templateHandler.GetByID)
				r.Put("/{id}", rt.templateHandler.Update)
				r.Delete("/{id}", rt.templateHandler.Delete)
			})

			// Quotes
			r.Route("/quotes", func(r chi.Router) {
				r.Get("/", rt.quoteHandler.List)
				r.Post("/", rt.quoteHandler.Create)
				r.Get("/stats", rt.quoteHandler.Stats)
				r.Get("/{id}", rt.quoteHandler.GetByID)
				r.Put("/{id}", rt.quoteHandler.Update)
				r.Delete("/{id}", rt.quoteHandler.Delete)

				// Lifecycle endpoints
				r.Post("/{id}/status", rt.quoteHandler.SetStatus)
				r.Post("/{id}/public-link", rt.quoteHandler.IssuePublicLink)
				r.Get("/{id}/render", rt.quoteHandler.Render)
				r.Get("/{id}/pdf", rt.quoteHandler.GeneratePDF)
			})

			// Audit logs (admin only)
			r.Route("/audit-logs", func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireAdmin)
				r.Get("/", rt.auditHandler.List)
				r.Get("/entity/{entityType}/{entityId}", rt.auditHandler.ListByEntity)
			})
		})
	})

	return r
}
