package render

import (
	"html"
	"strings"
	"time"

	"github.com/hatzaot-app/quotes-api/internal/domain"
)

// Totals carries the money figures computed by the quote service
type Totals struct {
	Total       float64
	Discount    float64
	VATRate     float64
	VATAmount   float64
	FinalAmount float64
}

// Engine turns template content into a customer-facing document
type Engine struct {
	now func() time.Time
}

// NewEngine creates a render engine
func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// NewEngineAt creates an engine with a fixed clock, for deterministic output
func NewEngineAt(now func() time.Time) *Engine {
	return &Engine{now: now}
}

// documentDiscount is the total amount taken off the quote as printed on
// the document: the per-line discounts plus the quote-level one.
func documentDiscount(items []domain.QuoteItem, quoteDiscount float64) float64 {
	total := quoteDiscount
	for i := range items {
		it := &items[i]
		total += it.Quantity * it.UnitPrice * it.Discount / 100
	}
	return total
}

// BuildVariables resolves every catalog variable for a quote.
// Missing data resolves to the empty string, matching what the customer
// would see on screen.
func (e *Engine) BuildVariables(quote *domain.Quote, company *domain.Company, totals Totals) map[string]string {
	vars := map[string]string{
		VarQuoteNumber:     quote.QuoteNumber,
		VarQuoteDate:       FormatDate(e.now()),
		VarQuoteValidUntil: FormatDate(quote.ValidUntil),
		VarQuoteTotal:      FormatCurrency(totals.Total),
		VarQuoteDiscount:   FormatCurrency(documentDiscount(quote.Items, totals.Discount)),
		VarQuoteVAT:        FormatCurrency(totals.VATAmount),
		VarQuoteFinalTotal: FormatCurrency(totals.FinalAmount),
		VarProductsTable:   BuildProductsTable(quote.Items, totals.FinalAmount),
	}

	if quote.SignedAt != nil {
		vars[VarSignatureDate] = FormatDate(*quote.SignedAt)
	} else {
		vars[VarSignatureDate] = ""
	}

	if quote.Signature != "" {
		vars[VarClientSignature] = signatureImg(quote.Signature, "חתימת הלקוח")
	} else {
		vars[VarClientSignature] = ""
	}

	if company != nil {
		vars[VarCompanyName] = html.EscapeString(company.Name)
		vars[VarCompanyAddress] = html.EscapeString(company.Address)
		vars[VarCompanyPhone] = html.EscapeString(company.Phone)
		vars[VarCompanyEmail] = html.EscapeString(company.Email)
		vars[VarCompanyWebsite] = html.EscapeString(company.Website)
		if company.Logo != "" {
			vars[VarCompanyLogo] = `<img src="` + html.EscapeString(company.Logo) + `" alt="לוגו החברה" class="company-logo" />`
		} else {
			vars[VarCompanyLogo] = ""
		}
		if company.Signature != "" {
			vars[VarCompanySignature] = signatureImg(company.Signature, "חתימת החברה")
		} else {
			vars[VarCompanySignature] = ""
		}
	} else {
		for _, name := range []string{VarCompanyName, VarCompanyLogo, VarCompanyAddress,
			VarCompanyPhone, VarCompanyEmail, VarCompanyWebsite, VarCompanySignature} {
			vars[name] = ""
		}
	}

	if quote.Customer != nil {
		vars[VarClientName] = html.EscapeString(quote.Customer.Name)
		vars[VarClientCompany] = html.EscapeString(quote.Customer.CompanyName)
		vars[VarClientAddress] = html.EscapeString(quote.Customer.FullAddress())
		vars[VarClientPhone] = html.EscapeString(quote.Customer.Phone)
		vars[VarClientEmail] = html.EscapeString(quote.Customer.Email)
	} else {
		for _, name := range []string{VarClientName, VarClientCompany, VarClientAddress,
			VarClientPhone, VarClientEmail} {
			vars[name] = ""
		}
	}

	return vars
}

// Render substitutes the quote's variables into content. Placeholders that
// resolve to an empty value are removed; placeholders outside the catalog
// are left untouched.
func (e *Engine) Render(content string, quote *domain.Quote, company *domain.Company, totals Totals) string {
	return Substitute(content, e.BuildVariables(quote, company, totals))
}

// RenderDocument wraps rendered content in the full RTL HTML page used for
// PDF generation. The Heebo font must be available to the renderer.
func (e *Engine) RenderDocument(content string, quote *domain.Quote, company *domain.Company, totals Totals) string {
	body := e.Render(content, quote, company, totals)

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString(`<html dir="rtl">` + "\n")
	b.WriteString("<head>\n")
	b.WriteString(`<meta charset="UTF-8">` + "\n")
	b.WriteString(`<link href="https://fonts.googleapis.com/css2?family=Heebo:wght@400;700&display=swap" rel="stylesheet">` + "\n")
	b.WriteString("<style>\n")
	b.WriteString("body { font-family: 'Heebo', sans-serif; padding: 20px; direction: rtl; }\n")
	b.WriteString(".prose { max-width: none; }\n")
	b.WriteString("table { width: 100%; border-collapse: collapse; margin: 1rem 0; }\n")
	b.WriteString("th, td { border: 1px solid #ddd; padding: 8px; text-align: right; }\n")
	b.WriteString("th { background-color: #f5f5f5; }\n")
	b.WriteString(".company-logo { max-height: 64px; }\n")
	b.WriteString(".signature { max-height: 64px; }\n")
	b.WriteString("</style>\n")
	b.WriteString("</head>\n")
	b.WriteString("<body>\n")
	b.WriteString(`<div class="prose">` + "\n")
	b.WriteString(body)
	b.WriteString("\n</div>\n")
	b.WriteString("</body>\n")
	b.WriteString("</html>\n")
	return b.String()
}

// Substitute replaces known placeholders in content with their values.
// Unknown placeholders survive verbatim.
func Substitute(content string, vars map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(content, func(match string) string {
		sub := placeholderPattern.FindStringSubmatch(match)
		if value, ok := vars[sub[1]]; ok {
			return value
		}
		return match
	})
}

func signatureImg(dataURL, alt string) string {
	return `<img src="` + html.EscapeString(dataURL) + `" alt="` + alt + `" class="signature" />`
}
