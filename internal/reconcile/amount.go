package reconcile

// amount.go converts user-entered money values to decimals.
//
// Values arrive from form fields and from spreadsheets kept by hand, so the
// parser tolerates:
//   - Rupee and other currency marks (₹, Rs, INR, $, €, £)
//   - Thousands separators, including Indian grouping (1,00,000)
//   - Accounting format for negatives: (123.45)
//   - The "/-" suffix used on Indian receipts (500/-)
//   - Excel formula wrappers (="123") and stray quotes

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a value cannot be read as money.
var ErrInvalidAmount = errors.New("invalid number")

// amountRegex validates a cleaned amount. Scientific notation is not money.
var amountRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// currencyMarks are removed before parsing. Longer marks come first so
// "Rs." is not left with a dangling dot.
var currencyMarks = []string{"₹", "INR", "Rs.", "Rs", "rs.", "rs", "$", "€", "£"}

// ParseAmount converts s to a decimal. Empty input is zero.
func ParseAmount(s string) (decimal.Decimal, error) {
	orig := s
	s = CleanCell(s)
	if s == "" {
		return decimal.Zero, nil
	}

	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.TrimSuffix(s, "/-")
	for _, mark := range currencyMarks {
		s = strings.ReplaceAll(s, mark, "")
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")

	if isNegative {
		s = "-" + s
	}

	if !amountRegex.MatchString(s) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, orig)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, orig)
	}
	return d, nil
}

// AmountOrZero is ParseAmount for data that is imported as-is: anything
// unreadable counts as zero.
func AmountOrZero(s string) decimal.Decimal {
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// CleanCell removes common spreadsheet artifacts from a cell value:
//   - Trims whitespace
//   - Removes Excel formula prefix (="...")
//   - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.TrimSpace(strings.Trim(s, `"'`))
}
