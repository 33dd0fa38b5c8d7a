package render

import (
	"fmt"
	"regexp"
	"sort"
)

// Variable names accepted in template content. The set is closed: templates
// referencing anything else are rejected at save time.
const (
	VarCompanyName      = "companyName"
	VarCompanyLogo      = "companyLogo"
	VarCompanyAddress   = "companyAddress"
	VarCompanyPhone     = "companyPhone"
	VarCompanyEmail     = "companyEmail"
	VarCompanyWebsite   = "companyWebsite"
	VarCompanySignature = "companySignature"
	VarQuoteNumber      = "quoteNumber"
	VarQuoteDate        = "quoteDate"
	VarQuoteValidUntil  = "quoteValidUntil"
	VarQuoteTotal       = "quoteTotal"
	VarQuoteDiscount    = "quoteDiscount"
	VarQuoteVAT         = "quoteVAT"
	VarQuoteFinalTotal  = "quoteFinalTotal"
	VarSignatureDate    = "signatureDate"
	VarClientName       = "clientName"
	VarClientCompany    = "clientCompany"
	VarClientAddress    = "clientAddress"
	VarClientPhone      = "clientPhone"
	VarClientEmail      = "clientEmail"
	VarClientSignature  = "clientSignature"
	VarProductsTable    = "productsTable"
)

var catalog = map[string]struct{}{
	VarCompanyName:      {},
	VarCompanyLogo:      {},
	VarCompanyAddress:   {},
	VarCompanyPhone:     {},
	VarCompanyEmail:     {},
	VarCompanyWebsite:   {},
	VarCompanySignature: {},
	VarQuoteNumber:      {},
	VarQuoteDate:        {},
	VarQuoteValidUntil:  {},
	VarQuoteTotal:       {},
	VarQuoteDiscount:    {},
	VarQuoteVAT:         {},
	VarQuoteFinalTotal:  {},
	VarSignatureDate:    {},
	VarClientName:       {},
	VarClientCompany:    {},
	VarClientAddress:    {},
	VarClientPhone:      {},
	VarClientEmail:      {},
	VarClientSignature:  {},
	VarProductsTable:    {},
}

var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z][a-zA-Z0-9]*)\s*\}\}`)

// IsKnownVariable reports whether name belongs to the catalog
func IsKnownVariable(name string) bool {
	_, ok := catalog[name]
	return ok
}

// KnownVariables returns the catalog names in stable order
func KnownVariables() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExtractVariables returns all placeholder names referenced by content,
// deduplicated, in order of first appearance.
func ExtractVariables(content string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(content, -1)
	seen := make(map[string]struct{}, len(matches))
	var names []string
	for _, m := range matches {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// ValidateContent checks content against the catalog and returns an error
// naming the first unknown placeholder, if any.
func ValidateContent(content string) error {
	for _, name := range ExtractVariables(content) {
		if !IsKnownVariable(name) {
			return fmt.Errorf("unknown template variable %q", name)
		}
	}
	return nil
}
