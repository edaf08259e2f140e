package reconcile

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-day format used for entry dates.
const DateLayout = "2006-01-02"

// DefaultNotes are the currency notes counted at close, largest first.
var DefaultNotes = []int{500, 200, 100, 50, 20, 10, 5, 2, 1}

// DefaultOpeningBalance is the float left in the drawer every morning.
var DefaultOpeningBalance = decimal.NewFromInt(5100)

// Sales is the revenue of a day split by channel.
// Cash is the counter cash sale and is always derived, never entered.
type Sales struct {
	POS           decimal.Decimal `json:"pos"`
	Swiggy        decimal.Decimal `json:"swiggy"`
	ZomatoOnline  decimal.Decimal `json:"zomatoOnline"`
	ZomatoCash    decimal.Decimal `json:"zomatoCash"`
	UengageOnline decimal.Decimal `json:"uengageOnline"`
	UengageCash   decimal.Decimal `json:"uengageCash"`
	Cash          decimal.Decimal `json:"cash"`
}

// NonCounter is the sum of every channel except counter cash.
func (s Sales) NonCounter() decimal.Decimal {
	return decimal.Sum(s.POS, s.Swiggy, s.ZomatoOnline, s.ZomatoCash, s.UengageOnline, s.UengageCash)
}

// Zomato is online plus cash-on-delivery Zomato revenue.
func (s Sales) Zomato() decimal.Decimal {
	return s.ZomatoOnline.Add(s.ZomatoCash)
}

// Uengage is online plus cash Uengage revenue.
func (s Sales) Uengage() decimal.Decimal {
	return s.UengageOnline.Add(s.UengageCash)
}

// Online is revenue that never passes through the drawer.
func (s Sales) Online() decimal.Decimal {
	return decimal.Sum(s.POS, s.Swiggy, s.ZomatoOnline, s.UengageOnline)
}

// CashTotal is revenue that ends up in the drawer.
func (s Sales) CashTotal() decimal.Decimal {
	return decimal.Sum(s.Cash, s.ZomatoCash, s.UengageCash)
}

// Expense is a payment made out of the drawer.
type Expense struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// Denominations maps a note value to the number of notes counted.
type Denominations map[int]int64

// Total is the cash value of the counted notes.
func (d Denominations) Total() decimal.Decimal {
	total := decimal.Zero
	for note, count := range d {
		total = total.Add(decimal.NewFromInt(int64(note)).Mul(decimal.NewFromInt(count)))
	}
	return total
}

// Notes returns the note values present, largest first.
func (d Denominations) Notes() []int {
	notes := make([]int, 0, len(d))
	for note := range d {
		notes = append(notes, note)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(notes)))
	return notes
}

// Entry is the persisted daily sales report of one business day.
type Entry struct {
	ID             string          `json:"id"`
	Date           string          `json:"date"`
	TotalSale      decimal.Decimal `json:"totalSale"`
	Sales          Sales           `json:"sales"`
	Expenses       []Expense       `json:"expenses"`
	Denominations  Denominations   `json:"denominations"`
	TotalExpense   decimal.Decimal `json:"totalExpense"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	CashInHand     decimal.Decimal `json:"cashInHand"`
	PhysicalCash   decimal.Decimal `json:"physicalCash"`
	Difference     decimal.Decimal `json:"difference"`
	Comment        string          `json:"comment"`
	CreatedBy      string          `json:"createdBy,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// NetPhysical is the counted cash without the opening float.
func (e Entry) NetPhysical() decimal.Decimal {
	return e.PhysicalCash.Sub(e.OpeningBalance)
}

// IsShort reports whether the drawer held less than expected.
func (e Entry) IsShort() bool {
	return e.Difference.IsNegative()
}

// IsExcess reports whether the drawer held more than expected.
func (e Entry) IsExcess() bool {
	return e.Difference.IsPositive()
}

// ParseDate parses a calendar day in DateLayout.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
