package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hatzaot-app/quotes-api/internal/domain"
)

func TestQuoteStatus_IsValid(t *testing.T) {
	valid := []domain.QuoteStatus{
		domain.QuoteStatusDraft,
		domain.QuoteStatusSent,
		domain.QuoteStatusPendingApproval,
		domain.QuoteStatusApproved,
		domain.QuoteStatusRejected,
		domain.QuoteStatusSigned,
	}
	for _, s := range valid {
		assert.True(t, s.IsValid(), "expected %q to be valid", s)
	}

	assert.False(t, domain.QuoteStatus("expired").IsValid())
	assert.False(t, domain.QuoteStatus("").IsValid())
}

func TestQuoteStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from    domain.QuoteStatus
		to      domain.QuoteStatus
		allowed bool
	}{
		{domain.QuoteStatusDraft, domain.QuoteStatusSent, true},
		{domain.QuoteStatusDraft, domain.QuoteStatusApproved, false},
		{domain.QuoteStatusDraft, domain.QuoteStatusSigned, false},
		{domain.QuoteStatusSent, domain.QuoteStatusPendingApproval, true},
		{domain.QuoteStatusSent, domain.QuoteStatusSigned, true},
		{domain.QuoteStatusSent, domain.QuoteStatusDraft, false},
		{domain.QuoteStatusPendingApproval, domain.QuoteStatusApproved, true},
		{domain.QuoteStatusPendingApproval, domain.QuoteStatusRejected, true},
		{domain.QuoteStatusPendingApproval, domain.QuoteStatusSigned, true},
		{domain.QuoteStatusApproved, domain.QuoteStatusSigned, true},
		{domain.QuoteStatusApproved, domain.QuoteStatusRejected, false},
		{domain.QuoteStatusRejected, domain.QuoteStatusDraft, false},
		{domain.QuoteStatusRejected, domain.QuoteStatusSigned, false},
		{domain.QuoteStatusSigned, domain.QuoteStatusDraft, false},
	}

	for _, tt := range tests {
		got := tt.from.CanTransitionTo(tt.to)
		assert.Equal(t, tt.allowed, got, "%s -> %s", tt.from, tt.to)
	}
}

func TestQuoteStatus_IsTerminal(t *testing.T) {
	assert.True(t, domain.QuoteStatusRejected.IsTerminal())
	assert.True(t, domain.QuoteStatusSigned.IsTerminal())
	assert.False(t, domain.QuoteStatusDraft.IsTerminal())
	assert.False(t, domain.QuoteStatusApproved.IsTerminal())
}

func TestQuoteStatus_DisplayName(t *testing.T) {
	assert.Equal(t, "טיוטה", domain.QuoteStatusDraft.DisplayName())
	assert.Equal(t, "נשלחה", domain.QuoteStatusSent.DisplayName())
	assert.Equal(t, "ממתינה לאישור", domain.QuoteStatusPendingApproval.DisplayName())
	assert.Equal(t, "נחתמה", domain.QuoteStatusSigned.DisplayName())
}

func TestQuote_IsExpired(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	quote := &domain.Quote{
		Status:     domain.QuoteStatusSent,
		ValidUntil: now.Add(24 * time.Hour),
	}
	assert.False(t, quote.IsExpired(now))

	quote.ValidUntil = now.Add(-time.Minute)
	assert.True(t, quote.IsExpired(now))

	// Expiry is a pure function of the validity window; status does not
	// factor in, signed included.
	quote.Status = domain.QuoteStatusSigned
	assert.True(t, quote.IsExpired(now))
}

func TestQuoteItem_LineTotal(t *testing.T) {
	item := &domain.QuoteItem{Quantity: 3, UnitPrice: 100}
	assert.InDelta(t, 300, item.LineTotal(), 0.001)

	item.Discount = 10
	assert.InDelta(t, 270, item.LineTotal(), 0.001)

	item.Discount = 100
	assert.InDelta(t, 0, item.LineTotal(), 0.001)
}

func TestCustomer_FullAddress(t *testing.T) {
	c := &domain.Customer{Address: "הרצל 10", City: "תל אביב", ZipCode: "6688210"}
	assert.Equal(t, "הרצל 10, תל אביב, 6688210", c.FullAddress())

	c = &domain.Customer{City: "חיפה"}
	assert.Equal(t, "חיפה", c.FullAddress())

	assert.Empty(t, (&domain.Customer{}).FullAddress())
}

func TestTemplateType_IsValid(t *testing.T) {
	assert.True(t, domain.TemplateTypeServices.IsValid())
	assert.True(t, domain.TemplateTypeWorkshops.IsValid())
	assert.True(t, domain.TemplateTypeProducts.IsValid())
	assert.False(t, domain.TemplateType("consulting").IsValid())
}
