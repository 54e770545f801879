package pricing

import (
	"fmt"

	"github.com/jafarshop/restaurant/internal/domain"
)

// DefaultCurrencySymbol prefixes formatted amounts
const DefaultCurrencySymbol = "Rs."

// Formatter renders minor-unit amounts for display
type Formatter struct {
	Symbol string
}

// NewFormatter creates a formatter, falling back to DefaultCurrencySymbol
func NewFormatter(symbol string) Formatter {
	if symbol == "" {
		symbol = DefaultCurrencySymbol
	}
	return Formatter{Symbol: symbol}
}

// Money formats 12345 as "Rs. 123.45" and -5 as "-Rs. 0.05"
func (f Formatter) Money(minor int64) string {
	sign := ""
	abs := minor
	if minor < 0 {
		sign = "-"
		abs = -minor
	}
	return fmt.Sprintf("%s%s %d.%02d", sign, f.Symbol, abs/100, abs%100)
}

// Percent formats 15 as "15%"
func (f Formatter) Percent(v int64) string {
	return fmt.Sprintf("%d%%", v)
}

// FormattedTotals is Totals rendered for display
type FormattedTotals struct {
	Subtotal   string `json:"subtotal"`
	Discount   string `json:"discount"`
	Tax        string `json:"tax"`
	Fees       string `json:"fees"`
	GrandTotal string `json:"grand_total"`
}

// Totals formats every field of t. The discount is shown as a deduction.
func (f Formatter) Totals(t domain.Totals) FormattedTotals {
	return FormattedTotals{
		Subtotal:   f.Money(t.Subtotal),
		Discount:   f.Money(-t.Discount),
		Tax:        f.Money(t.Tax),
		Fees:       f.Money(t.Fees),
		GrandTotal: f.Money(t.GrandTotal),
	}
}

// FormatMoney formats with the default currency symbol
func FormatMoney(minor int64) string {
	return NewFormatter(DefaultCurrencySymbol).Money(minor)
}
