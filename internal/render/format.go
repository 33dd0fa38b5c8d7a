package render

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var hebrewPrinter = message.NewPrinter(language.Hebrew)

// FormatCurrency renders an amount the way the he-IL locale does,
// shekel sign first: ₪1,234.5
func FormatCurrency(amount float64) string {
	return "₪" + FormatAmount(amount)
}

// FormatAmount renders a number with he-IL digit grouping and at most two
// fraction digits, dropping trailing zeros.
func FormatAmount(amount float64) string {
	return hebrewPrinter.Sprint(number.Decimal(amount,
		number.MaxFractionDigits(2),
		number.MinFractionDigits(0),
	))
}

// FormatPercent renders a discount or VAT rate: 17%
func FormatPercent(rate float64) string {
	return FormatAmount(rate) + "%"
}

// FormatDate renders a date in the he-IL short form, day first without
// leading zeros: 5.1.2026
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d.%d.%d", t.Day(), int(t.Month()), t.Year())
}
