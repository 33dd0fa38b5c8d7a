package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hatzaot-app/quotes-api/internal/config"
	"github.com/hatzaot-app/quotes-api/internal/domain"
	"github.com/hatzaot-app/quotes-api/internal/mapper"
	"github.com/hatzaot-app/quotes-api/internal/pdf"
	"github.com/hatzaot-app/quotes-api/internal/render"
	"github.com/hatzaot-app/quotes-api/internal/repository"
)

const publicTokenLength = 32

const publicTokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// QuoteLifecycleService drives status transitions and everything the
// customer-facing public flow needs: link issuance, email verification,
// signing, and rendering.
type QuoteLifecycleService struct {
	quoteRepo    *repository.QuoteRepository
	companyRepo  *repository.CompanyRepository
	quoteService *QuoteService
	auditLog     *AuditLogService
	engine       *render.Engine
	pdfClient    *pdf.Client
	logger       *zap.Logger
	publicCfg    *config.PublicConfig
	now          func() time.Time
}

func NewQuoteLifecycleService(
	quoteRepo *repository.QuoteRepository,
	companyRepo *repository.CompanyRepository,
	quoteService *QuoteService,
	auditLog *AuditLogService,
	engine *render.Engine,
	pdfClient *pdf.Client,
	logger *zap.Logger,
	publicCfg *config.PublicConfig,
) *QuoteLifecycleService {
	return &QuoteLifecycleService{
		quoteRepo:    quoteRepo,
		companyRepo:  companyRepo,
		quoteService: quoteService,
		auditLog:     auditLog,
		engine:       engine,
		pdfClient:    pdfClient,
		logger:       logger,
		publicCfg:    publicCfg,
		now:          time.Now,
	}
}

// SetStatus performs a manual status transition. Signing is not available
// here; the signed state is only reachable through Sign.
func (s *QuoteLifecycleService) SetStatus(ctx context.Context, id uuid.UUID, target domain.QuoteStatus) (*domain.QuoteDTO, error) {
	if !target.IsValid() {
		return nil, fmt.Errorf("%w: invalid quote status %q", ErrInvalidInput, target)
	}

	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	if target == domain.QuoteStatusSigned {
		return nil, fmt.Errorf("%w: %s requires a signature", ErrInvalidTransition, target)
	}
	if !quote.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, quote.Status, target)
	}

	from := quote.Status
	quote.Status = target
	if target == domain.QuoteStatusSent && quote.SentAt == nil {
		now := s.now()
		quote.SentAt = &now
	}

	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		return nil, fmt.Errorf("failed to update quote status: %w", err)
	}

	s.auditLog.Record(ctx, domain.AuditActionStatusChange, "quote", &quote.ID, quote.QuoteNumber,
		fmt.Sprintf("%s -> %s", from, target))

	dto := mapper.ToQuoteDTO(quote, s.quoteService.Totals(ctx, quote))
	return &dto, nil
}

// IssuePublicLink creates the shareable customer link for a quote. The call
// is idempotent: a quote keeps the same token for its whole life. Issuing a
// link for a draft marks it sent.
func (s *QuoteLifecycleService) IssuePublicLink(ctx context.Context, id uuid.UUID) (*domain.PublicLinkDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	if quote.PublicToken == nil {
		token, err := generatePublicToken()
		if err != nil {
			return nil, fmt.Errorf("failed to generate public token: %w", err)
		}
		quote.PublicToken = &token
	}

	if quote.Status == domain.QuoteStatusDraft {
		quote.Status = domain.QuoteStatusSent
		now := s.now()
		quote.SentAt = &now
	}

	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		return nil, fmt.Errorf("failed to save public token: %w", err)
	}

	s.auditLog.Record(ctx, domain.AuditActionLinkIssued, "quote", &quote.ID, quote.QuoteNumber, "")

	token := *quote.PublicToken
	return &domain.PublicLinkDTO{
		Token:     token,
		PublicURL: fmt.Sprintf("%s/quotes/public/%s", strings.TrimRight(s.publicCfg.BaseURL, "/"), token),
	}, nil
}

// GetPublic resolves a quote by its public token for the customer-facing
// view. Expired quotes are reported as gone, not rendered.
func (s *QuoteLifecycleService) GetPublic(ctx context.Context, token string, emailVerified bool, ipAddress, userAgent string) (*domain.PublicQuoteDTO, error) {
	quote, company, err := s.loadPublic(ctx, token)
	if err != nil {
		return nil, err
	}

	if quote.IsExpired(s.now()) {
		return nil, ErrQuoteExpired
	}

	s.auditLog.RecordPublic(ctx, domain.AuditActionViewed, &quote.ID, quote.QuoteNumber, "", ipAddress, userAgent)

	totals := ComputeTotals(quote, companyVATRate(company))
	dto := mapper.ToPublicQuoteDTO(quote, company, totals, emailVerified)
	return &dto, nil
}

// VerifyEmail checks the address a customer typed against the quote's
// customer record. Matching is case-insensitive; the handler sets the
// verification cookie on success.
func (s *QuoteLifecycleService) VerifyEmail(ctx context.Context, token, email, ipAddress, userAgent string) error {
	quote, _, err := s.loadPublic(ctx, token)
	if err != nil {
		return err
	}

	if quote.Customer == nil || !strings.EqualFold(strings.TrimSpace(email), quote.Customer.Email) {
		return ErrEmailMismatch
	}

	s.auditLog.RecordPublic(ctx, domain.AuditActionEmailVerified, &quote.ID, quote.QuoteNumber, "", ipAddress, userAgent)
	return nil
}

// Sign applies the customer's signature. A quote can only be signed once,
// only while it is still valid, and only after email verification.
func (s *QuoteLifecycleService) Sign(ctx context.Context, token string, req *domain.SignQuoteRequest, emailVerified bool, ipAddress, userAgent string) (*domain.PublicQuoteDTO, error) {
	quote, company, err := s.loadPublic(ctx, token)
	if err != nil {
		return nil, err
	}

	if !emailVerified {
		return nil, ErrNotVerified
	}
	if quote.IsSigned() {
		return nil, ErrAlreadySigned
	}
	if quote.IsExpired(s.now()) {
		return nil, ErrQuoteExpired
	}
	if strings.TrimSpace(req.Signature) == "" {
		return nil, ErrEmptySignature
	}
	if !quote.Status.CanTransitionTo(domain.QuoteStatusSigned) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, quote.Status, domain.QuoteStatusSigned)
	}

	now := s.now()
	quote.Status = domain.QuoteStatusSigned
	quote.Signature = req.Signature
	quote.SignedAt = &now
	quote.SignerName = req.SignerName
	if quote.SignerName == "" && quote.Customer != nil {
		quote.SignerName = quote.Customer.Name
	}

	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		return nil, fmt.Errorf("failed to save signature: %w", err)
	}

	s.auditLog.RecordPublic(ctx, domain.AuditActionSigned, &quote.ID, quote.QuoteNumber, quote.SignerName, ipAddress, userAgent)
	s.logger.Info("quote signed",
		zap.String("quote_number", quote.QuoteNumber),
		zap.String("signer", quote.SignerName))

	totals := ComputeTotals(quote, companyVATRate(company))
	dto := mapper.ToPublicQuoteDTO(quote, company, totals, true)
	return &dto, nil
}

// RenderQuote renders the quote body with its variables substituted, for
// the authenticated owner view.
func (s *QuoteLifecycleService) RenderQuote(ctx context.Context, id uuid.UUID) (string, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to get quote: %w", err)
	}
	company, _ := s.companyRepo.GetByOwner(ctx, quote.OwnerID)

	totals := ComputeTotals(quote, companyVATRate(company))
	return s.engine.Render(quote.Content, quote, company, totals), nil
}

// RenderPublic renders the full standalone document for the customer link.
func (s *QuoteLifecycleService) RenderPublic(ctx context.Context, token string) (string, error) {
	quote, company, err := s.loadPublic(ctx, token)
	if err != nil {
		return "", err
	}
	if quote.IsExpired(s.now()) {
		return "", ErrQuoteExpired
	}

	totals := ComputeTotals(quote, companyVATRate(company))
	return s.engine.RenderDocument(quote.Content, quote, company, totals), nil
}

// GeneratePDF renders the quote document and converts it through Gotenberg.
// Returns the PDF bytes and a filename based on the quote number.
func (s *QuoteLifecycleService) GeneratePDF(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get quote: %w", err)
	}
	company, _ := s.companyRepo.GetByOwner(ctx, quote.OwnerID)
	return s.renderPDF(ctx, quote, company)
}

// GeneratePublicPDF is the token-addressed variant for the public flow.
func (s *QuoteLifecycleService) GeneratePublicPDF(ctx context.Context, token string) ([]byte, string, error) {
	quote, company, err := s.loadPublic(ctx, token)
	if err != nil {
		return nil, "", err
	}
	if quote.IsExpired(s.now()) {
		return nil, "", ErrQuoteExpired
	}
	return s.renderPDF(ctx, quote, company)
}

func (s *QuoteLifecycleService) renderPDF(ctx context.Context, quote *domain.Quote, company *domain.Company) ([]byte, string, error) {
	// On-screen rendering degrades gracefully without a profile; the printed
	// document does not go out without the issuing business on it.
	if company == nil {
		return nil, "", fmt.Errorf("%w: company profile not configured", ErrCompanyNotFound)
	}

	totals := ComputeTotals(quote, companyVATRate(company))
	html := s.engine.RenderDocument(quote.Content, quote, company, totals)

	data, err := s.pdfClient.RenderHTML(ctx, []byte(html))
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate pdf: %w", err)
	}
	return data, fmt.Sprintf("quote-%s.pdf", quote.QuoteNumber), nil
}

func (s *QuoteLifecycleService) loadPublic(ctx context.Context, token string) (*domain.Quote, *domain.Company, error) {
	if token == "" {
		return nil, nil, ErrNotFound
	}
	quote, err := s.quoteRepo.GetByPublicToken(ctx, token)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get quote by token: %w", err)
	}
	company, err := s.companyRepo.GetByOwner(ctx, quote.OwnerID)
	if err != nil {
		company = nil
	}
	return quote, company, nil
}

func companyVATRate(company *domain.Company) float64 {
	if company == nil {
		return DefaultVATRate
	}
	return company.VATRate
}

func generatePublicToken() (string, error) {
	var b strings.Builder
	b.Grow(publicTokenLength)
	max := big.NewInt(int64(len(publicTokenAlphabet)))
	for i := 0; i < publicTokenLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(publicTokenAlphabet[n.Int64()])
	}
	return b.String(), nil
}
