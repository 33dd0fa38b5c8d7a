package mapper

import (
	"time"

	"github.com/hatzaot-app/quotes-api/internal/domain"
	"github.com/hatzaot-app/quotes-api/internal/render"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// ToCompanyDTO converts a Company model to its DTO
func ToCompanyDTO(company *domain.Company) domain.CompanyDTO {
	return domain.CompanyDTO{
		ID:          company.ID,
		Name:        company.Name,
		Logo:        company.Logo,
		Address:     company.Address,
		Phone:       company.Phone,
		Email:       company.Email,
		Website:     company.Website,
		Signature:   company.Signature,
		TaxID:       company.TaxID,
		BankName:    company.BankName,
		BankBranch:  company.BankBranch,
		BankAccount: company.BankAccount,
		VATRate:     company.VATRate,
		CreatedAt:   formatTime(company.CreatedAt),
		UpdatedAt:   formatTime(company.UpdatedAt),
	}
}

// ToCustomerDTO converts a Customer model to its DTO
func ToCustomerDTO(customer *domain.Customer, quoteCount int) domain.CustomerDTO {
	return domain.CustomerDTO{
		ID:          customer.ID,
		Name:        customer.Name,
		CompanyName: customer.CompanyName,
		Email:       customer.Email,
		Phone:       customer.Phone,
		Address:     customer.Address,
		City:        customer.City,
		ZipCode:     customer.ZipCode,
		Notes:       customer.Notes,
		QuoteCount:  quoteCount,
		CreatedAt:   formatTime(customer.CreatedAt),
		UpdatedAt:   formatTime(customer.UpdatedAt),
	}
}

// ToProductDTO converts a Product model to its DTO
func ToProductDTO(product *domain.Product) domain.ProductDTO {
	return domain.ProductDTO{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Category:    product.Category,
		Price:       product.Price,
		Discount:    product.Discount,
		Unit:        product.Unit,
		IsActive:    product.IsActive,
		CreatedAt:   formatTime(product.CreatedAt),
		UpdatedAt:   formatTime(product.UpdatedAt),
	}
}

// ToTemplateDTO converts a QuoteTemplate model to its DTO
func ToTemplateDTO(template *domain.QuoteTemplate) domain.QuoteTemplateDTO {
	return domain.QuoteTemplateDTO{
		ID:          template.ID,
		Name:        template.Name,
		Type:        template.Type,
		Description: template.Description,
		Content:     template.Content,
		IsActive:    template.IsActive,
		IsDefault:   template.IsDefault,
		CreatedAt:   formatTime(template.CreatedAt),
		UpdatedAt:   formatTime(template.UpdatedAt),
	}
}

// ToQuoteItemDTO converts a QuoteItem model to its DTO
func ToQuoteItemDTO(item *domain.QuoteItem) domain.QuoteItemDTO {
	return domain.QuoteItemDTO{
		ID:          item.ID,
		ProductID:   item.ProductID,
		Name:        item.Name,
		Description: item.Description,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		Discount:    item.Discount,
		Total:       item.LineTotal(),
		Position:    item.Position,
	}
}

// ToQuoteDTO converts a Quote model to its DTO, with the money figures the
// quote service computed for it.
func ToQuoteDTO(quote *domain.Quote, totals render.Totals) domain.QuoteDTO {
	dto := domain.QuoteDTO{
		ID:          quote.ID,
		QuoteNumber: quote.QuoteNumber,
		CustomerID:  quote.CustomerID,
		TemplateID:  quote.TemplateID,
		Type:        quote.Type,
		Status:      quote.Status,
		Title:       quote.Title,
		TotalAmount: totals.Total,
		Discount:    totals.Discount,
		VATAmount:   totals.VATAmount,
		FinalAmount: totals.FinalAmount,
		ValidUntil:  formatTime(quote.ValidUntil),
		IsExpired:   quote.IsExpired(time.Now()),
		SentAt:      formatTimePtr(quote.SentAt),
		SignedAt:    formatTimePtr(quote.SignedAt),
		SignerName:  quote.SignerName,
		Items:       make([]domain.QuoteItemDTO, 0, len(quote.Items)),
		CreatedAt:   formatTime(quote.CreatedAt),
		UpdatedAt:   formatTime(quote.UpdatedAt),
	}

	if quote.PublicToken != nil {
		dto.PublicToken = *quote.PublicToken
	}
	if quote.Customer != nil {
		dto.CustomerName = quote.Customer.Name
	}
	if quote.Template != nil {
		dto.TemplateName = quote.Template.Name
	}

	for i := range quote.Items {
		dto.Items = append(dto.Items, ToQuoteItemDTO(&quote.Items[i]))
	}

	return dto
}

// ToPublicQuoteDTO builds the customer-facing view of a quote
func ToPublicQuoteDTO(quote *domain.Quote, company *domain.Company, totals render.Totals, emailVerified bool) domain.PublicQuoteDTO {
	dto := domain.PublicQuoteDTO{
		QuoteNumber:   quote.QuoteNumber,
		Status:        quote.Status,
		StatusLabel:   quote.Status.DisplayName(),
		Title:         quote.Title,
		TotalAmount:   totals.Total,
		Discount:      totals.Discount,
		VATAmount:     totals.VATAmount,
		FinalAmount:   totals.FinalAmount,
		ValidUntil:    formatTime(quote.ValidUntil),
		SignedAt:      formatTimePtr(quote.SignedAt),
		SignerName:    quote.SignerName,
		EmailVerified: emailVerified,
		Items:         make([]domain.QuoteItemDTO, 0, len(quote.Items)),
	}

	if company != nil {
		dto.CompanyName = company.Name
		dto.CompanyLogo = company.Logo
	}
	if quote.Customer != nil {
		dto.CustomerName = quote.Customer.Name
	}

	for i := range quote.Items {
		dto.Items = append(dto.Items, ToQuoteItemDTO(&quote.Items[i]))
	}

	return dto
}

// ToAuditLogDTO converts an AuditLog model to its DTO
func ToAuditLogDTO(log *domain.AuditLog) domain.AuditLogDTO {
	return domain.AuditLogDTO{
		ID:          log.ID,
		UserID:      log.UserID,
		UserEmail:   log.UserEmail,
		Action:      log.Action,
		EntityType:  log.EntityType,
		EntityID:    log.EntityID,
		EntityName:  log.EntityName,
		Detail:      log.Detail,
		PerformedAt: formatTime(log.PerformedAt),
	}
}
