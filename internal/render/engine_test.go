package render_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hatzaot-app/quotes-api/internal/domain"
	"github.com/hatzaot-app/quotes-api/internal/render"
)

func TestSubstitute(t *testing.T) {
	vars := map[string]string{
		"clientName":  "דנה לוי",
		"quoteNumber": "Q42",
	}

	out := render.Substitute("שלום {{clientName}}, הצעה {{quoteNumber}}", vars)
	assert.Equal(t, "שלום דנה לוי, הצעה Q42", out)
}

func TestSubstitute_WhitespaceInsidePlaceholder(t *testing.T) {
	out := render.Substitute("{{ clientName }}", map[string]string{"clientName": "דנה"})
	assert.Equal(t, "דנה", out)
}

func TestSubstitute_UnknownPlaceholderSurvives(t *testing.T) {
	out := render.Substitute("שלום {{noSuchVariable}}", map[string]string{"clientName": "דנה"})
	assert.Equal(t, "שלום {{noSuchVariable}}", out)
}

func TestSubstitute_EmptyValueRemovesPlaceholder(t *testing.T) {
	out := render.Substitute("לפני{{clientCompany}}אחרי", map[string]string{"clientCompany": ""})
	assert.Equal(t, "לפניאחרי", out)
}

func TestExtractVariables(t *testing.T) {
	content := "{{clientName}} {{quoteTotal}} {{clientName}} {{bogus}}"
	assert.Equal(t, []string{"clientName", "quoteTotal", "bogus"}, render.ExtractVariables(content))
}

func TestValidateContent(t *testing.T) {
	assert.NoError(t, render.ValidateContent("שלום {{clientName}}, סה\"כ {{quoteFinalTotal}}"))

	err := render.ValidateContent("{{clientName}} {{notInCatalog}}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notInCatalog")
}

func TestKnownVariables(t *testing.T) {
	names := render.KnownVariables()
	assert.Contains(t, names, "clientName")
	assert.Contains(t, names, "productsTable")
	assert.Contains(t, names, "companySignature")
	assert.True(t, render.IsKnownVariable("quoteVAT"))
	assert.False(t, render.IsKnownVariable("quoteVat"))
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "₪1,234.5", render.FormatCurrency(1234.5))
	assert.Equal(t, "₪0", render.FormatCurrency(0))
	assert.Equal(t, "₪100", render.FormatCurrency(100))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "17%", render.FormatPercent(17))
	assert.Equal(t, "7.5%", render.FormatPercent(7.5))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "5.1.2026", render.FormatDate(time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "31.12.2025", render.FormatDate(time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)))
}

func TestBuildProductsTable(t *testing.T) {
	items := []domain.QuoteItem{
		{Name: "סדנה <מתקדמת>", Quantity: 2, UnitPrice: 500, Discount: 10},
		{Name: "ייעוץ", Quantity: 1, UnitPrice: 300},
	}

	table := render.BuildProductsTable(items, 1200)

	assert.Contains(t, table, "<table>")
	// HTML in item names must not leak through.
	assert.Contains(t, table, "סדנה &lt;מתקדמת&gt;")
	assert.NotContains(t, table, "<מתקדמת>")
	assert.Contains(t, table, "₪900")   // 2 x 500 minus 10%
	assert.Contains(t, table, "₪1,200") // total row
	assert.Contains(t, table, "סה\"כ לתשלום:")
}

func fixedEngine() *render.Engine {
	return render.NewEngineAt(func() time.Time {
		return time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	})
}

func testQuote() *domain.Quote {
	return &domain.Quote{
		QuoteNumber: "Q7",
		ValidUntil:  time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
		Customer: &domain.Customer{
			Name:  "דנה לוי",
			Email: "dana@example.co.il",
		},
		Items: []domain.QuoteItem{
			{Name: "ייעוץ", Quantity: 1, UnitPrice: 1000},
		},
	}
}

func TestEngine_Render(t *testing.T) {
	engine := fixedEngine()
	company := &domain.Company{Name: "העסק שלי", Phone: "03-1234567"}
	totals := render.Totals{Total: 1000, VATRate: 17, VATAmount: 170, FinalAmount: 1170}

	content := "הצעה {{quoteNumber}} מתאריך {{quoteDate}} עבור {{clientName}} מאת {{companyName}}. לתשלום: {{quoteFinalTotal}}"
	out := engine.Render(content, testQuote(), company, totals)

	assert.Equal(t, "הצעה Q7 מתאריך 1.2.2026 עבור דנה לוי מאת העסק שלי. לתשלום: ₪1,170", out)
}

func TestEngine_Render_NoCompanyProfile(t *testing.T) {
	engine := fixedEngine()

	out := engine.Render("{{companyName}}תוכן", testQuote(), nil, render.Totals{})
	assert.Equal(t, "תוכן", out)
}

func TestEngine_Render_QuoteDiscount(t *testing.T) {
	engine := fixedEngine()
	quote := testQuote()
	// 2 x 500 with 10% off the line is 100 off, plus 50 off the quote.
	quote.Items = []domain.QuoteItem{
		{Name: "סדנה", Quantity: 2, UnitPrice: 500, Discount: 10},
	}
	totals := render.Totals{Total: 850, Discount: 50}

	out := engine.Render("הנחה: {{quoteDiscount}}", quote, nil, totals)
	assert.Equal(t, "הנחה: ₪150", out)
}

func TestEngine_RenderDocument(t *testing.T) {
	engine := fixedEngine()
	company := &domain.Company{Name: "העסק שלי"}

	doc := engine.RenderDocument("שלום {{clientName}}", testQuote(), company, render.Totals{})

	assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>"))
	assert.Contains(t, doc, `<html dir="rtl">`)
	assert.Contains(t, doc, "Heebo")
	assert.Contains(t, doc, "שלום דנה לוי")
}

func TestEngine_BuildVariables_Signature(t *testing.T) {
	engine := fixedEngine()
	quote := testQuote()
	signedAt := time.Date(2026, 2, 10, 15, 0, 0, 0, time.UTC)
	quote.Status = domain.QuoteStatusSigned
	quote.Signature = "data:image/png;base64,aGVsbG8="
	quote.SignedAt = &signedAt

	vars := engine.BuildVariables(quote, nil, render.Totals{})

	assert.Equal(t, "10.2.2026", vars["signatureDate"])
	assert.Contains(t, vars["clientSignature"], "data:image/png;base64,aGVsbG8=")
	assert.Contains(t, vars["clientSignature"], "<img")
}
