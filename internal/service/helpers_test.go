package service_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hatzaot-app/quotes-api/internal/auth"
	"github.com/hatzaot-app/quotes-api/internal/config"
	"github.com/hatzaot-app/quotes-api/internal/database"
	"github.com/hatzaot-app/quotes-api/internal/domain"
	"github.com/hatzaot-app/quotes-api/internal/pdf"
	"github.com/hatzaot-app/quotes-api/internal/render"
	"github.com/hatzaot-app/quotes-api/internal/repository"
	"github.com/hatzaot-app/quotes-api/internal/service"
)

const testOwnerID = "owner-1"

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named in-memory database keeps all pooled connections on the same
	// data while the test runs.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	return db
}

func ownerContext() context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      testOwnerID,
		DisplayName: "בעל העסק",
		Email:       "owner@example.co.il",
		Roles:       []string{auth.RoleUser},
	})
}

type serviceEnv struct {
	db        *gorm.DB
	quotes    *service.QuoteService
	lifecycle *service.QuoteLifecycleService
	templates *service.TemplateService
}

func newServiceEnv(t *testing.T) *serviceEnv {
	t.Helper()

	db := openTestDB(t)
	log := zap.NewNop()

	customerRepo := repository.NewCustomerRepository(db)
	productRepo := repository.NewProductRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	sequenceRepo := repository.NewQuoteSequenceRepository(db)
	auditLog := service.NewAuditLogService(repository.NewAuditLogRepository(db), log)

	quotes := service.NewQuoteService(
		quoteRepo, customerRepo, templateRepo, productRepo,
		companyRepo, sequenceRepo, auditLog, log, 30,
	)
	publicCfg := &config.PublicConfig{
		BaseURL:             "https://quotes.example.test",
		VerificationTTLDays: 7,
		DefaultValidityDays: 30,
	}
	lifecycle := service.NewQuoteLifecycleService(
		quoteRepo, companyRepo, quotes, auditLog,
		render.NewEngine(),
		pdf.NewClient(&config.PDFConfig{GotenbergURL: "http://localhost:3000", Timeout: 5}),
		log, publicCfg,
	)
	templates := service.NewTemplateService(templateRepo, auditLog, log)

	return &serviceEnv{
		db:        db,
		quotes:    quotes,
		lifecycle: lifecycle,
		templates: templates,
	}
}

func (e *serviceEnv) seedCustomer(t *testing.T) *domain.Customer {
	t.Helper()
	customer := &domain.Customer{
		OwnerID: testOwnerID,
		Name:    "דנה לוי",
		Email:   "dana@example.co.il",
		Phone:   "050-1234567",
	}
	require.NoError(t, e.db.Create(customer).Error)
	return customer
}

func (e *serviceEnv) seedTemplate(t *testing.T) *domain.QuoteTemplate {
	t.Helper()
	template := &domain.QuoteTemplate{
		OwnerID:  testOwnerID,
		Name:     "תבנית שירותים",
		Type:     domain.TemplateTypeServices,
		Content:  "שלום {{clientName}}, {{productsTable}} לתשלום: {{quoteFinalTotal}}",
		IsActive: true,
	}
	require.NoError(t, e.db.Create(template).Error)
	return template
}

func (e *serviceEnv) seedProduct(t *testing.T, name string, price float64) *domain.Product {
	t.Helper()
	product := &domain.Product{
		OwnerID:  testOwnerID,
		Name:     name,
		Price:    price,
		IsActive: true,
	}
	require.NoError(t, e.db.Create(product).Error)
	return product
}

func (e *serviceEnv) seedCompany(t *testing.T, vatRate float64) *domain.Company {
	t.Helper()
	company := &domain.Company{
		OwnerID: testOwnerID,
		Name:    "העסק שלי",
		VATRate: vatRate,
	}
	require.NoError(t, e.db.Create(company).Error)
	return company
}

// createQuote issues a quote with a single 1000 shekel line item
func (e *serviceEnv) createQuote(t *testing.T, ctx context.Context) *domain.QuoteDTO {
	t.Helper()
	customer := e.seedCustomer(t)
	template := e.seedTemplate(t)

	dto, err := e.quotes.Create(ctx, &domain.CreateQuoteRequest{
		CustomerID: customer.ID,
		TemplateID: template.ID,
		Title:      "הצעת מחיר לשירותי ייעוץ",
		Items: []domain.QuoteItemRequest{
			{Name: "ייעוץ", Quantity: 2, UnitPrice: 500},
		},
	})
	require.NoError(t, err)
	return dto
}

func (e *serviceEnv) setQuoteStatus(t *testing.T, id uuid.UUID, status domain.QuoteStatus) {
	t.Helper()
	require.NoError(t, e.db.Model(&domain.Quote{}).Where("id = ?", id).Update("status", status).Error)
}
