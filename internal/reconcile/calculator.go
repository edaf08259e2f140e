package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Input is what staff enter for a day. Sales.Cash is ignored.
type Input struct {
	Date          string
	TotalSale     decimal.Decimal
	Sales         Sales
	Expenses      []Expense
	Denominations Denominations
	Comment       string
}

// Figures are the values derived from an Input.
type Figures struct {
	CounterCash  decimal.Decimal `json:"counterCash"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	CashInHand   decimal.Decimal `json:"cashInHand"`
	PhysicalCash decimal.Decimal `json:"physicalCash"`
	Difference   decimal.Decimal `json:"difference"`
}

// ValidationError lists every problem found in an Input.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

// Calculator derives and validates entries for one outlet.
type Calculator struct {
	openingBalance decimal.Decimal
	notes          []int
}

// NewCalculator creates a Calculator with the outlet's opening float and the
// notes counted at close. A nil notes slice uses DefaultNotes.
func NewCalculator(openingBalance decimal.Decimal, notes []int) Calculator {
	if len(notes) == 0 {
		notes = DefaultNotes
	}
	sorted := append([]int(nil), notes...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	return Calculator{
		openingBalance: openingBalance,
		notes:          sorted,
	}
}

// OpeningBalance returns the outlet's opening float.
func (c Calculator) OpeningBalance() decimal.Decimal {
	return c.openingBalance
}

// Notes returns the counted note values, largest first.
func (c Calculator) Notes() []int {
	return append([]int(nil), c.notes...)
}

// Figures derives the reconciliation values of in. It does not validate.
func (c Calculator) Figures(in Input) Figures {
	counterCash := in.TotalSale.Sub(in.Sales.NonCounter())
	totalExpense := sumExpenses(in.Expenses)

	cashInHand := counterCash.
		Add(in.Sales.ZomatoCash).
		Add(in.Sales.UengageCash).
		Sub(totalExpense).
		Add(c.openingBalance)

	physicalCash := in.Denominations.Total()

	return Figures{
		CounterCash:  counterCash,
		TotalExpense: totalExpense,
		CashInHand:   cashInHand,
		PhysicalCash: physicalCash,
		Difference:   physicalCash.Sub(cashInHand),
	}
}

// Validate checks in and returns a *ValidationError listing every problem.
func (c Calculator) Validate(in Input) error {
	var problems []string

	if _, err := ParseDate(in.Date); err != nil {
		problems = append(problems, fmt.Sprintf("invalid date %q, use YYYY-MM-DD", in.Date))
	}

	if !in.TotalSale.IsPositive() {
		problems = append(problems, "Total Daily Sale must be greater than 0.")
	}

	s := in.Sales
	for _, v := range []decimal.Decimal{s.POS, s.Swiggy, s.UengageOnline, s.UengageCash, s.ZomatoOnline, s.ZomatoCash} {
		if v.IsNegative() {
			problems = append(problems, "Revenue sources cannot be negative.")
			break
		}
	}

	for _, e := range in.Expenses {
		if e.Amount.IsNegative() {
			problems = append(problems, "Expenses cannot be negative.")
			break
		}
	}

	if !withinPaisa(in) {
		problems = append(problems, "Amounts can have at most 2 decimal places.")
	}

	for _, note := range in.Denominations.Notes() {
		if !c.knownNote(note) {
			problems = append(problems, fmt.Sprintf("Unsupported denomination: %d.", note))
			continue
		}
		if in.Denominations[note] < 0 {
			problems = append(problems, fmt.Sprintf("Count of %d notes cannot be negative.", note))
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Entry validates in and builds the entry to persist. ID and CreatedAt are
// left for the store to assign.
func (c Calculator) Entry(in Input) (Entry, error) {
	if err := c.Validate(in); err != nil {
		return Entry{}, err
	}

	f := c.Figures(in)

	sales := in.Sales
	sales.Cash = f.CounterCash

	return Entry{
		Date:           in.Date,
		TotalSale:      in.TotalSale,
		Sales:          sales,
		Expenses:       recordedExpenses(in.Expenses),
		Denominations:  c.fullCount(in.Denominations),
		TotalExpense:   f.TotalExpense,
		OpeningBalance: c.openingBalance,
		CashInHand:     f.CashInHand,
		PhysicalCash:   f.PhysicalCash,
		Difference:     f.Difference,
		Comment:        in.Comment,
	}, nil
}

// LegacyRow is one data row of the spreadsheet the outlet kept before this
// system. NetPhysical is the counted cash without the opening float.
type LegacyRow struct {
	Date          string
	TotalSale     decimal.Decimal
	POS           decimal.Decimal
	Swiggy        decimal.Decimal
	ZomatoOnline  decimal.Decimal
	ZomatoCash    decimal.Decimal
	UengageOnline decimal.Decimal
	UengageCash   decimal.Decimal
	CounterCash   decimal.Decimal
	TotalExpense  decimal.Decimal
	NetPhysical   decimal.Decimal
	Difference    decimal.Decimal
	Comment       string
}

// FromLegacy builds an entry from a legacy row. The row's own figures are
// trusted; only physical cash and cash in hand are recomputed from them.
// Legacy sheets carry neither itemised expenses nor a note count.
func (c Calculator) FromLegacy(row LegacyRow) Entry {
	physicalCash := row.NetPhysical.Add(c.openingBalance)

	return Entry{
		Date:      row.Date,
		TotalSale: row.TotalSale,
		Sales: Sales{
			POS:           row.POS,
			Swiggy:        row.Swiggy,
			ZomatoOnline:  row.ZomatoOnline,
			ZomatoCash:    row.ZomatoCash,
			UengageOnline: row.UengageOnline,
			UengageCash:   row.UengageCash,
			Cash:          row.CounterCash,
		},
		Expenses:       []Expense{},
		Denominations:  Denominations{},
		TotalExpense:   row.TotalExpense,
		OpeningBalance: c.openingBalance,
		CashInHand:     physicalCash.Sub(row.Difference),
		PhysicalCash:   physicalCash,
		Difference:     row.Difference,
		Comment:        row.Comment,
	}
}

// withinPaisa reports whether every amount entered in in fits the stored
// precision of two decimal places.
func withinPaisa(in Input) bool {
	s := in.Sales
	amounts := []decimal.Decimal{in.TotalSale, s.POS, s.Swiggy, s.UengageOnline, s.UengageCash, s.ZomatoOnline, s.ZomatoCash}
	for _, e := range in.Expenses {
		amounts = append(amounts, e.Amount)
	}
	for _, v := range amounts {
		if !v.Equal(v.Round(2)) {
			return false
		}
	}
	return true
}

func (c Calculator) knownNote(note int) bool {
	for _, n := range c.notes {
		if n == note {
			return true
		}
	}
	return false
}

// fullCount returns a count for every configured note, zero when absent.
func (c Calculator) fullCount(d Denominations) Denominations {
	out := make(Denominations, len(c.notes))
	for _, note := range c.notes {
		out[note] = d[note]
	}
	return out
}

func sumExpenses(expenses []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// recordedExpenses drops rows without a description or amount and trims
// the descriptions it keeps. The total expense still counts every amount
// entered.
func recordedExpenses(expenses []Expense) []Expense {
	out := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		desc := strings.TrimSpace(e.Description)
		if desc == "" || e.Amount.IsZero() {
			continue
		}
		out = append(out, Expense{Description: desc, Amount: e.Amount})
	}
	return out
}
