// Package templates renders the server-side HTML views: the printable
// report and the error page.
package templates

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var moneyPrinter = message.NewPrinter(language.MustParse("en-IN"))

// Money formats an amount the way staff write it, with the rupee sign and
// Indian digit grouping.
func Money(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-₹" + moneyPrinter.Sprint(number.Decimal(d.Neg().InexactFloat64(), number.MaxFractionDigits(2)))
	}
	return "₹" + moneyPrinter.Sprint(number.Decimal(d.InexactFloat64(), number.MaxFractionDigits(2)))
}

// Signed formats a short/excess amount. Zero is shown as a dash.
func Signed(d decimal.Decimal) string {
	switch {
	case d.IsZero():
		return "-"
	case d.IsPositive():
		return "+" + Money(d)
	default:
		return Money(d)
	}
}
