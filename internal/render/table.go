package render

import (
	"html"
	"strings"

	"github.com/hatzaot-app/quotes-api/internal/domain"
)

// BuildProductsTable renders the quote's line items as an RTL HTML table,
// closing with a bold total row. Item names come from user input and are
// escaped.
func BuildProductsTable(items []domain.QuoteItem, total float64) string {
	var b strings.Builder

	b.WriteString("<table>\n")
	b.WriteString("  <thead>\n")
	b.WriteString("    <tr>\n")
	b.WriteString("      <th>מוצר</th>\n")
	b.WriteString("      <th>כמות</th>\n")
	b.WriteString("      <th>מחיר ליחידה</th>\n")
	b.WriteString("      <th>הנחה</th>\n")
	b.WriteString("      <th>סה\"כ</th>\n")
	b.WriteString("    </tr>\n")
	b.WriteString("  </thead>\n")
	b.WriteString("  <tbody>\n")

	for i := range items {
		item := &items[i]
		b.WriteString("    <tr>\n")
		b.WriteString("      <td>" + html.EscapeString(item.Name) + "</td>\n")
		b.WriteString("      <td>" + FormatAmount(item.Quantity) + "</td>\n")
		b.WriteString("      <td>" + FormatCurrency(item.UnitPrice) + "</td>\n")
		b.WriteString("      <td>" + FormatPercent(item.Discount) + "</td>\n")
		b.WriteString("      <td>" + FormatCurrency(item.LineTotal()) + "</td>\n")
		b.WriteString("    </tr>\n")
	}

	b.WriteString("    <tr style=\"font-weight: bold;\">\n")
	b.WriteString("      <td colspan=\"4\">סה\"כ לתשלום:</td>\n")
	b.WriteString("      <td>" + FormatCurrency(total) + "</td>\n")
	b.WriteString("    </tr>\n")
	b.WriteString("  </tbody>\n")
	b.WriteString("</table>")

	return b.String()
}
