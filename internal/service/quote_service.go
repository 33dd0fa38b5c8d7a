package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hatzaot-app/quotes-api/internal/domain"
	"github.com/hatzaot-app/quotes-api/internal/mapper"
	"github.com/hatzaot-app/quotes-api/internal/render"
	"github.com/hatzaot-app/quotes-api/internal/repository"
)

// QuoteService manages quote creation and editing. Lifecycle transitions
// live in QuoteLifecycleService.
type QuoteService struct {
	quoteRepo           *repository.QuoteRepository
	customerRepo        *repository.CustomerRepository
	templateRepo        *repository.TemplateRepository
	productRepo         *repository.ProductRepository
	companyRepo         *repository.CompanyRepository
	sequenceRepo        *repository.QuoteSequenceRepository
	auditLog            *AuditLogService
	logger              *zap.Logger
	defaultValidityDays int
}

func NewQuoteService(
	quoteRepo *repository.QuoteRepository,
	customerRepo *repository.CustomerRepository,
	templateRepo *repository.TemplateRepository,
	productRepo *repository.ProductRepository,
	companyRepo *repository.CompanyRepository,
	sequenceRepo *repository.QuoteSequenceRepository,
	auditLog *AuditLogService,
	logger *zap.Logger,
	defaultValidityDays int,
) *QuoteService {
	return &QuoteService{
		quoteRepo:           quoteRepo,
		customerRepo:        customerRepo,
		templateRepo:        templateRepo,
		productRepo:         productRepo,
		companyRepo:         companyRepo,
		sequenceRepo:        sequenceRepo,
		auditLog:            auditLog,
		logger:              logger,
		defaultValidityDays: defaultValidityDays,
	}
}

// Totals computes the money figures for a quote. The stored total is always
// pre-tax; VAT is applied at presentation time from the owner's configured
// rate.
func (s *QuoteService) Totals(ctx context.Context, quote *domain.Quote) render.Totals {
	vatRate := DefaultVATRate
	if company, err := s.companyRepo.GetByOwner(ctx, quote.OwnerID); err == nil {
		vatRate = company.VATRate
	}
	return ComputeTotals(quote, vatRate)
}

// ComputeTotals derives a quote's figures from its line items at a VAT rate
func ComputeTotals(quote *domain.Quote, vatRate float64) render.Totals {
	var subtotal float64
	for i := range quote.Items {
		subtotal += quote.Items[i].LineTotal()
	}

	total := subtotal - quote.Discount
	if total < 0 {
		total = 0
	}
	vat := total * vatRate / 100

	return render.Totals{
		Total:       total,
		Discount:    quote.Discount,
		VATRate:     vatRate,
		VATAmount:   vat,
		FinalAmount: total + vat,
	}
}

func (s *QuoteService) Create(ctx context.Context, req *domain.CreateQuoteRequest) (*domain.QuoteDTO, error) {
	userCtx, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.GetByID(ctx, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	template, err := s.templateRepo.GetByID(ctx, req.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	if !template.IsActive {
		return nil, fmt.Errorf("%w: template %q is not active", ErrInvalidInput, template.Name)
	}
	// The quote's type always comes from the template; a caller that names a
	// different type picked the wrong template.
	if req.Type != "" && req.Type != template.Type {
		return nil, fmt.Errorf("%w: quote type %q, template type %q", ErrTemplateTypeMismatch, req.Type, template.Type)
	}

	items, err := s.buildItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	validUntil := time.Now().AddDate(0, 0, s.defaultValidityDays)
	if req.ValidUntil != nil {
		validUntil = *req.ValidUntil
	}

	seq, err := s.sequenceRepo.NextNumber(ctx, userCtx.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate quote number: %w", err)
	}

	quote := &domain.Quote{
		OwnerID:     userCtx.UserID,
		QuoteNumber: fmt.Sprintf("Q%d", seq),
		CustomerID:  customer.ID,
		TemplateID:  template.ID,
		Type:        template.Type,
		Status:      domain.QuoteStatusDraft,
		Title:       req.Title,
		Content:     template.Content, // snapshot: later template edits don't touch issued quotes
		Discount:    req.Discount,
		ValidUntil:  validUntil,
		Items:       items,
	}
	quote.TotalAmount = ComputeTotals(quote, 0).Total

	if err := s.quoteRepo.Create(ctx, quote); err != nil {
		return nil, fmt.Errorf("failed to create quote: %w", err)
	}

	s.auditLog.Record(ctx, domain.AuditActionCreate, "quote", &quote.ID, quote.QuoteNumber, "")

	created, err := s.quoteRepo.GetByID(ctx, quote.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload quote: %w", err)
	}

	dto := mapper.ToQuoteDTO(created, s.Totals(ctx, created))
	return &dto, nil
}

func (s *QuoteService) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuoteDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	dto := mapper.ToQuoteDTO(quote, s.Totals(ctx, quote))
	return &dto, nil
}

// Update edits a quote. Only drafts are editable; anything the customer may
// already have seen is immutable.
func (s *QuoteService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateQuoteRequest) (*domain.QuoteDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	if quote.Status != domain.QuoteStatusDraft {
		return nil, ErrQuoteNotEditable
	}

	if req.Title != "" {
		quote.Title = req.Title
	}
	if req.Discount != nil {
		quote.Discount = *req.Discount
	}
	if req.ValidUntil != nil {
		quote.ValidUntil = *req.ValidUntil
	}

	if req.Items != nil {
		items, err := s.buildItems(ctx, req.Items)
		if err != nil {
			return nil, err
		}
		if err := s.quoteRepo.ReplaceItems(ctx, quote.ID, items); err != nil {
			return nil, fmt.Errorf("failed to replace quote items: %w", err)
		}
		quote.Items = items
	}

	quote.TotalAmount = ComputeTotals(quote, 0).Total

	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		return nil, fmt.Errorf("failed to update quote: %w", err)
	}

	s.auditLog.Record(ctx, domain.AuditActionUpdate, "quote", &quote.ID, quote.QuoteNumber, "")

	updated, err := s.quoteRepo.GetByID(ctx, quote.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload quote: %w", err)
	}

	dto := mapper.ToQuoteDTO(updated, s.Totals(ctx, updated))
	return &dto, nil
}

func (s *QuoteService) Delete(ctx context.Context, id uuid.UUID) error {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get quote: %w", err)
	}

	if quote.Status == domain.QuoteStatusSigned {
		return fmt.Errorf("%w: signed quotes cannot be deleted", ErrConflict)
	}

	if err := s.quoteRepo.Delete(ctx, quote.ID); err != nil {
		return fmt.Errorf("failed to delete quote: %w", err)
	}

	s.auditLog.Record(ctx, domain.AuditActionDelete, "quote", &quote.ID, quote.QuoteNumber, "")
	return nil
}

func (s *QuoteService) List(ctx context.Context, page, pageSize int, customerID *uuid.UUID, status *domain.QuoteStatus, search string) (*domain.PaginatedResponse[domain.QuoteDTO], error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > repository.MaxPageSize {
		pageSize = 20
	}

	if status != nil && !status.IsValid() {
		return nil, fmt.Errorf("%w: invalid quote status %q", ErrInvalidInput, *status)
	}

	quotes, total, err := s.quoteRepo.List(ctx, page, pageSize, customerID, status, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}

	dtos := make([]domain.QuoteDTO, 0, len(quotes))
	for i := range quotes {
		dtos = append(dtos, mapper.ToQuoteDTO(&quotes[i], s.Totals(ctx, &quotes[i])))
	}

	return &domain.PaginatedResponse[domain.QuoteDTO]{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

// CountByStatus powers the dashboard status breakdown
func (s *QuoteService) CountByStatus(ctx context.Context) (map[domain.QuoteStatus]int64, error) {
	return s.quoteRepo.CountByStatus(ctx)
}

// ListExpiringQuotes returns open quotes whose validity ends in the window.
// Signed and rejected quotes are excluded.
func (s *QuoteService) ListExpiringQuotes(ctx context.Context, from, to time.Time) ([]domain.Quote, error) {
	return s.quoteRepo.ListExpiringBetween(ctx, from, to)
}

// buildItems resolves line item requests, filling name, price and discount
// from the product catalog when a product reference is given. The values are
// snapshots: later product edits never touch issued quotes.
func (s *QuoteService) buildItems(ctx context.Context, reqs []domain.QuoteItemRequest) ([]domain.QuoteItem, error) {
	var productIDs []uuid.UUID
	for _, item := range reqs {
		if item.ProductID != nil {
			productIDs = append(productIDs, *item.ProductID)
		}
	}

	products := make(map[uuid.UUID]*domain.Product)
	if len(productIDs) > 0 {
		loaded, err := s.productRepo.GetByIDs(ctx, productIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to load products: %w", err)
		}
		for i := range loaded {
			products[loaded[i].ID] = &loaded[i]
		}
	}

	items := make([]domain.QuoteItem, 0, len(reqs))
	for i, req := range reqs {
		item := domain.QuoteItem{
			ProductID:   req.ProductID,
			Name:        req.Name,
			Description: req.Description,
			Quantity:    req.Quantity,
			UnitPrice:   req.UnitPrice,
			Discount:    req.Discount,
			Position:    i,
		}
		if req.ProductID != nil {
			product, ok := products[*req.ProductID]
			if !ok {
				return nil, fmt.Errorf("%w: product %s not found", ErrInvalidInput, req.ProductID)
			}
			if item.Name == "" {
				item.Name = product.Name
			}
			if item.UnitPrice == 0 {
				item.UnitPrice = product.Price
			}
			if item.Discount == 0 {
				item.Discount = product.Discount
			}
		}
		items = append(items, item)
	}
	return items, nil
}
