package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hatzaot-app/quotes-api/internal/auth"
	"github.com/hatzaot-app/quotes-api/internal/config"
	"github.com/hatzaot-app/quotes-api/internal/database"
	"github.com/hatzaot-app/quotes-api/internal/domain"
	"github.com/hatzaot-app/quotes-api/internal/http/handler"
	"github.com/hatzaot-app/quotes-api/internal/pdf"
	"github.com/hatzaot-app/quotes-api/internal/render"
	"github.com/hatzaot-app/quotes-api/internal/repository"
	"github.com/hatzaot-app/quotes-api/internal/service"
	"github.com/hatzaot-app/quotes-api/internal/storage"
)

type publicEnv struct {
	db     *gorm.DB
	server *httptest.Server
	token  string
}

func newPublicEnv(t *testing.T) *publicEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	log := zap.NewNop()
	customerRepo := repository.NewCustomerRepository(db)
	productRepo := repository.NewProductRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	sequenceRepo := repository.NewQuoteSequenceRepository(db)
	auditLog := service.NewAuditLogService(repository.NewAuditLogRepository(db), log)

	publicCfg := &config.PublicConfig{
		BaseURL:             "https://quotes.example.test",
		VerificationTTLDays: 7,
		DefaultValidityDays: 30,
		CookieSecret:        "test-cookie-secret",
	}

	quotes := service.NewQuoteService(
		quoteRepo, customerRepo, templateRepo, productRepo,
		companyRepo, sequenceRepo, auditLog, log, 30,
	)
	lifecycle := service.NewQuoteLifecycleService(
		quoteRepo, companyRepo, quotes, auditLog,
		render.NewEngine(),
		pdf.NewClient(&config.PDFConfig{GotenbergURL: "http://localhost:3000", Timeout: 5}),
		log, publicCfg,
	)

	assets, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	companies := service.NewCompanyService(companyRepo, assets, auditLog, log, publicCfg.BaseURL)

	publicHandler := handler.NewPublicHandler(lifecycle, companies, publicCfg, log)

	r := chi.NewRouter()
	r.Route("/public/quotes/{token}", func(r chi.Router) {
		r.Get("/", publicHandler.GetQuote)
		r.Get("/render", publicHandler.Render)
		r.Post("/verify-email", publicHandler.VerifyEmail)
		r.Post("/sign", publicHandler.Sign)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	// Seed a sent quote with a public link.
	ctx := auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      "owner-1",
		DisplayName: "בעל העסק",
		Email:       "owner@example.co.il",
		Roles:       []string{auth.RoleUser},
	})
	customer := &domain.Customer{OwnerID: "owner-1", Name: "דנה לוי", Email: "dana@example.co.il"}
	require.NoError(t, db.Create(customer).Error)
	template := &domain.QuoteTemplate{
		OwnerID:  "owner-1",
		Name:     "תבנית",
		Type:     domain.TemplateTypeServices,
		Content:  "שלום {{clientName}}",
		IsActive: true,
	}
	require.NoError(t, db.Create(template).Error)

	dto, err := quotes.Create(ctx, &domain.CreateQuoteRequest{
		CustomerID: customer.ID,
		TemplateID: template.ID,
		Items:      []domain.QuoteItemRequest{{Name: "ייעוץ", Quantity: 1, UnitPrice: 1000}},
	})
	require.NoError(t, err)
	link, err := lifecycle.IssuePublicLink(ctx, dto.ID)
	require.NoError(t, err)

	return &publicEnv{db: db, server: srv, token: link.Token}
}

func (e *publicEnv) url(path string) string {
	return e.server.URL + "/public/quotes/" + e.token + path
}

func postJSON(t *testing.T, url string, body interface{}, cookies []*http.Cookie) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(string(payload)))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestPublicHandler_GetQuote(t *testing.T) {
	env := newPublicEnv(t)

	resp, err := http.Get(env.url(""))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view domain.PublicQuoteDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, "Q1", view.QuoteNumber)
	assert.Equal(t, "דנה לוי", view.CustomerName)
	assert.False(t, view.EmailVerified)
}

func TestPublicHandler_GetQuote_UnknownToken(t *testing.T) {
	env := newPublicEnv(t)

	resp, err := http.Get(env.server.URL + "/public/quotes/doesnotexist1234")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPublicHandler_Render(t *testing.T) {
	env := newPublicEnv(t)

	resp, err := http.Get(env.url("/render"))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestPublicHandler_VerifyEmail(t *testing.T) {
	env := newPublicEnv(t)

	resp := postJSON(t, env.url("/verify-email"), domain.VerifyEmailRequest{Email: "dana@example.co.il"}, nil)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if strings.HasPrefix(c.Name, "quote_") {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "verification cookie expected")
	assert.Equal(t, "quote_"+env.token+"_verified", cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 7*24*60*60, cookie.MaxAge)

	// The value is a signed claim bound to the quote token, not a flag the
	// client could fabricate.
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(cookie.Value, claims, func(tok *jwt.Token) (interface{}, error) {
		return []byte("test-cookie-secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, env.token, claims["sub"])
}

func TestPublicHandler_Sign_ForgedCookie(t *testing.T) {
	env := newPublicEnv(t)

	forged := &http.Cookie{Name: "quote_" + env.token + "_verified", Value: "1"}
	signReq := domain.SignQuoteRequest{Signature: "data:image/png;base64,aGVsbG8="}
	resp := postJSON(t, env.url("/sign"), signReq, []*http.Cookie{forged})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestPublicHandler_VerifyEmail_Mismatch(t *testing.T) {
	env := newPublicEnv(t)

	resp := postJSON(t, env.url("/verify-email"), domain.VerifyEmailRequest{Email: "wrong@example.com"}, nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Empty(t, resp.Cookies())
}

func TestPublicHandler_Sign_FullFlow(t *testing.T) {
	env := newPublicEnv(t)

	verifyResp := postJSON(t, env.url("/verify-email"), domain.VerifyEmailRequest{Email: "dana@example.co.il"}, nil)
	verifyResp.Body.Close()
	require.Equal(t, http.StatusOK, verifyResp.StatusCode)

	signReq := domain.SignQuoteRequest{
		Signature:  "data:image/png;base64,aGVsbG8=",
		SignerName: "דנה לוי",
	}
	resp := postJSON(t, env.url("/sign"), signReq, verifyResp.Cookies())
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view domain.PublicQuoteDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, domain.QuoteStatusSigned, view.Status)
	assert.Equal(t, "דנה לוי", view.SignerName)
}

func TestPublicHandler_Sign_WithoutVerification(t *testing.T) {
	env := newPublicEnv(t)

	signReq := domain.SignQuoteRequest{Signature: "data:image/png;base64,aGVsbG8="}
	resp := postJSON(t, env.url("/sign"), signReq, nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
