package service_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hatzaot-app/quotes-api/internal/domain"
	"github.com/hatzaot-app/quotes-api/internal/service"
)

func TestComputeTotals(t *testing.T) {
	quote := &domain.Quote{
		Items: []domain.QuoteItem{
			{Quantity: 2, UnitPrice: 100, Discount: 10}, // 180
			{Quantity: 1, UnitPrice: 50},                // 50
		},
		Discount: 30,
	}

	totals := service.ComputeTotals(quote, 17)

	assert.InDelta(t, 200, totals.Total, 0.001) // 230 - 30
	assert.InDelta(t, 30, totals.Discount, 0.001)
	assert.InDelta(t, 17, totals.VATRate, 0.001)
	assert.InDelta(t, 34, totals.VATAmount, 0.001)
	assert.InDelta(t, 234, totals.FinalAmount, 0.001)
}

func TestComputeTotals_DiscountFloorsAtZero(t *testing.T) {
	quote := &domain.Quote{
		Items:    []domain.QuoteItem{{Quantity: 1, UnitPrice: 100}},
		Discount: 500,
	}

	totals := service.ComputeTotals(quote, 17)

	assert.InDelta(t, 0, totals.Total, 0.001)
	assert.InDelta(t, 0, totals.VATAmount, 0.001)
	assert.InDelta(t, 0, totals.FinalAmount, 0.001)
}

func TestQuoteService_Create(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()
	env.seedCompany(t, 17)

	dto := env.createQuote(t, ctx)

	assert.Equal(t, "Q1", dto.QuoteNumber)
	assert.Equal(t, domain.QuoteStatusDraft, dto.Status)
	assert.Equal(t, domain.TemplateTypeServices, dto.Type)
	assert.InDelta(t, 1000, dto.TotalAmount, 0.001)
	assert.InDelta(t, 170, dto.VATAmount, 0.001)
	assert.InDelta(t, 1170, dto.FinalAmount, 0.001)
	assert.Len(t, dto.Items, 1)
	assert.NotEmpty(t, dto.ValidUntil)
}

func TestQuoteService_Create_TemplateTypeMismatch(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()
	customer := env.seedCustomer(t)
	template := env.seedTemplate(t) // services

	_, err := env.quotes.Create(ctx, &domain.CreateQuoteRequest{
		CustomerID: customer.ID,
		TemplateID: template.ID,
		Type:       domain.TemplateTypeWorkshops,
		Items:      []domain.QuoteItemRequest{{Name: "ייעוץ", Quantity: 1, UnitPrice: 100}},
	})
	assert.ErrorIs(t, err, service.ErrTemplateTypeMismatch)
}

func TestQuoteService_Create_SequentialNumbering(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()
	customer := env.seedCustomer(t)
	template := env.seedTemplate(t)

	for i, want := range []string{"Q1", "Q2", "Q3"} {
		dto, err := env.quotes.Create(ctx, &domain.CreateQuoteRequest{
			CustomerID: customer.ID,
			TemplateID: template.ID,
			Items:      []domain.QuoteItemRequest{{Name: "ייעוץ", Quantity: 1, UnitPrice: 100}},
		})
		require.NoError(t, err, "quote %d", i+1)
		assert.Equal(t, want, dto.QuoteNumber)
	}
}

func TestQuoteService_Create_SnapshotsTemplateContent(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()

	dto := env.createQuote(t, ctx)

	// Editing the template afterwards must not touch the issued quote.
	require.NoError(t, env.db.Model(&domain.QuoteTemplate{}).
		Where("id = ?", dto.TemplateID).
		Update("content", "תוכן חדש לגמרי").Error)

	var quote domain.Quote
	require.NoError(t, env.db.First(&quote, "id = ?", dto.ID).Error)
	assert.Contains(t, quote.Content, "{{clientName}}")
}

func TestQuoteService_Create_ItemFromProductCatalog(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()
	customer := env.seedCustomer(t)
	template := env.seedTemplate(t)
	product := env.seedProduct(t, "סדנת צילום", 1500)

	dto, err := env.quotes.Create(ctx, &domain.CreateQuoteRequest{
		CustomerID: customer.ID,
		TemplateID: template.ID,
		Items: []domain.QuoteItemRequest{
			{ProductID: &product.ID, Name: "סדנת צילום", Quantity: 2},
		},
	})
	require.NoError(t, err)

	require.Len(t, dto.Items, 1)
	assert.InDelta(t, 1500, dto.Items[0].UnitPrice, 0.001)
	assert.InDelta(t, 3000, dto.TotalAmount, 0.001)
}

func TestQuoteService_Create_ProductDefaultDiscount(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()
	customer := env.seedCustomer(t)
	template := env.seedTemplate(t)
	product := env.seedProduct(t, "סדנת צילום", 1000)
	product.Discount = 10
	require.NoError(t, env.db.Save(product).Error)

	dto, err := env.quotes.Create(ctx, &domain.CreateQuoteRequest{
		CustomerID: customer.ID,
		TemplateID: template.ID,
		Items: []domain.QuoteItemRequest{
			{ProductID: &product.ID, Name: "סדנת צילום", Quantity: 2},
		},
	})
	require.NoError(t, err)

	require.Len(t, dto.Items, 1)
	assert.InDelta(t, 10, dto.Items[0].Discount, 0.001)
	assert.InDelta(t, 1800, dto.TotalAmount, 0.001)
}

func TestQuoteService_Create_InactiveTemplate(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()
	customer := env.seedCustomer(t)
	template := env.seedTemplate(t)
	require.NoError(t, env.db.Model(template).Update("is_active", false).Error)

	_, err := env.quotes.Create(ctx, &domain.CreateQuoteRequest{
		CustomerID: customer.ID,
		TemplateID: template.ID,
		Items:      []domain.QuoteItemRequest{{Name: "ייעוץ", Quantity: 1, UnitPrice: 100}},
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestQuoteService_Create_UnknownProduct(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()
	customer := env.seedCustomer(t)
	template := env.seedTemplate(t)

	missing := uuid.New()
	_, err := env.quotes.Create(ctx, &domain.CreateQuoteRequest{
		CustomerID: customer.ID,
		TemplateID: template.ID,
		Items: []domain.QuoteItemRequest{
			{ProductID: &missing, Name: "לא קיים", Quantity: 1, UnitPrice: 10},
		},
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestQuoteService_Update_DraftOnly(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()
	dto := env.createQuote(t, ctx)

	newTitle := "כותרת מעודכנת"
	updated, err := env.quotes.Update(ctx, dto.ID, &domain.UpdateQuoteRequest{Title: newTitle})
	require.NoError(t, err)
	assert.Equal(t, newTitle, updated.Title)

	env.setQuoteStatus(t, dto.ID, domain.QuoteStatusSent)

	_, err = env.quotes.Update(ctx, dto.ID, &domain.UpdateQuoteRequest{Title: "עוד שינוי"})
	assert.ErrorIs(t, err, service.ErrQuoteNotEditable)
}

func TestQuoteService_Update_ReplacesItems(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()
	dto := env.createQuote(t, ctx)

	updated, err := env.quotes.Update(ctx, dto.ID, &domain.UpdateQuoteRequest{
		Items: []domain.QuoteItemRequest{
			{Name: "ליווי חודשי", Quantity: 3, UnitPrice: 400},
			{Name: "הדרכה", Quantity: 1, UnitPrice: 250},
		},
	})
	require.NoError(t, err)

	assert.Len(t, updated.Items, 2)
	assert.InDelta(t, 1450, updated.TotalAmount, 0.001)
}

func TestQuoteService_Delete_SignedBlocked(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()
	dto := env.createQuote(t, ctx)

	env.setQuoteStatus(t, dto.ID, domain.QuoteStatusSigned)

	err := env.quotes.Delete(ctx, dto.ID)
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestQuoteService_Delete(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()
	dto := env.createQuote(t, ctx)

	require.NoError(t, env.quotes.Delete(ctx, dto.ID))

	_, err := env.quotes.GetByID(ctx, dto.ID)
	assert.Error(t, err)
}

func TestQuoteService_List_InvalidStatus(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()

	bad := domain.QuoteStatus("expired")
	_, err := env.quotes.List(ctx, 1, 20, nil, &bad, "")
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestQuoteService_List_FilterByStatus(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()
	first := env.createQuote(t, ctx)
	env.setQuoteStatus(t, first.ID, domain.QuoteStatusSent)

	customer := env.seedCustomer(t)
	template := env.seedTemplate(t)
	_, err := env.quotes.Create(ctx, &domain.CreateQuoteRequest{
		CustomerID: customer.ID,
		TemplateID: template.ID,
		Items:      []domain.QuoteItemRequest{{Name: "ייעוץ", Quantity: 1, UnitPrice: 100}},
	})
	require.NoError(t, err)

	sent := domain.QuoteStatusSent
	page, err := env.quotes.List(ctx, 1, 20, nil, &sent, "")
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, first.ID, page.Data[0].ID)
	assert.Equal(t, int64(1), page.Total)
}

func TestQuoteService_CountByStatus(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()
	dto := env.createQuote(t, ctx)
	env.setQuoteStatus(t, dto.ID, domain.QuoteStatusApproved)

	counts, err := env.quotes.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[domain.QuoteStatusApproved])
}

func TestQuoteService_ListExpiringQuotes(t *testing.T) {
	env := newServiceEnv(t)
	ctx := ownerContext()
	dto := env.createQuote(t, ctx)

	soon := time.Now().Add(48 * time.Hour)
	require.NoError(t, env.db.Model(&domain.Quote{}).
		Where("id = ?", dto.ID).
		Updates(map[string]interface{}{"status": domain.QuoteStatusSent, "valid_until": soon}).Error)

	quotes, err := env.quotes.ListExpiringQuotes(ctx, time.Now(), time.Now().Add(7*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, dto.QuoteNumber, quotes[0].QuoteNumber)
}
