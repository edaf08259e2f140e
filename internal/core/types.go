package core

import (
	"fmt"
	"time"

	"github.com/JonMunkholm/dsr/internal/reconcile"
	"github.com/shopspring/decimal"
)

// DateRange is an inclusive range of calendar days in reconcile.DateLayout.
// An empty bound is open.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// IsZero reports whether both bounds are open.
func (r DateRange) IsZero() bool {
	return r.Start == "" && r.End == ""
}

// Contains reports whether date falls inside the range. ISO dates compare
// correctly as strings.
func (r DateRange) Contains(date string) bool {
	if r.Start != "" && date < r.Start {
		return false
	}
	if r.End != "" && date > r.End {
		return false
	}
	return true
}

// Validate checks both bounds parse and are ordered.
func (r DateRange) Validate() error {
	for _, d := range []string{r.Start, r.End} {
		if d == "" {
			continue
		}
		if _, err := reconcile.ParseDate(d); err != nil {
			return fmt.Errorf("%w: invalid date %q", ErrInvalidRange, d)
		}
	}
	if r.Start != "" && r.End != "" && r.Start > r.End {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange, r.Start, r.End)
	}
	return nil
}

// MonthToDate returns the range from the first day of now's month to now.
func MonthToDate(now time.Time) DateRange {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return DateRange{
		Start: first.Format(reconcile.DateLayout),
		End:   now.Format(reconcile.DateLayout),
	}
}

// Summary is the set of totals shown on the dashboard cards.
type Summary struct {
	Count           int             `json:"count"`
	TotalSales      decimal.Decimal `json:"totalSales"`
	TotalExpenses   decimal.Decimal `json:"totalExpenses"`
	NetCash         decimal.Decimal `json:"netCash"`
	TotalPOS        decimal.Decimal `json:"totalPOS"`
	TotalSwiggy     decimal.Decimal `json:"totalSwiggy"`
	TotalZomato     decimal.Decimal `json:"totalZomato"`
	TotalUengage    decimal.Decimal `json:"totalUengage"`
	CashSales       decimal.Decimal `json:"cashSales"`
	TotalDifference decimal.Decimal `json:"totalDifference"`
	ShortDays       int             `json:"shortDays"`
	ExcessDays      int             `json:"excessDays"`
}

// ChartPoint is one day of the revenue trend and mix charts.
type ChartPoint struct {
	Day       string          `json:"day"`
	FullDate  string          `json:"fullDate"`
	TotalSale decimal.Decimal `json:"totalSale"`
	POS       decimal.Decimal `json:"pos"`
	Swiggy    decimal.Decimal `json:"swiggy"`
	Zomato    decimal.Decimal `json:"zomato"`
	Uengage   decimal.Decimal `json:"uengage"`
	Cash      decimal.Decimal `json:"cash"`
	Expenses  decimal.Decimal `json:"expenses"`
}

// Dashboard is the overview of a date range.
type Dashboard struct {
	Range   DateRange    `json:"range"`
	Summary Summary      `json:"summary"`
	Chart   []ChartPoint `json:"chart"`
}

// HistoryRow is an entry with the grouped totals of the history table.
type HistoryRow struct {
	reconcile.Entry
	TotalOnline decimal.Decimal `json:"totalOnline"`
	TotalCash   decimal.Decimal `json:"totalCash"`
	NetPhysical decimal.Decimal `json:"netPhysical"`
}

// History is the tabular view of a date range, oldest first.
type History struct {
	Range   DateRange    `json:"range"`
	Rows    []HistoryRow `json:"rows"`
	Summary Summary      `json:"summary"`
}

// ExpenseBreakdown is the expense drill-down of one entry.
type ExpenseBreakdown struct {
	EntryID  string              `json:"entryId"`
	Date     string              `json:"date"`
	Expenses []reconcile.Expense `json:"expenses"`
	Total    decimal.Decimal     `json:"total"`
}

// CreateOptions control how CreateEntry treats an existing entry on the
// same date.
type CreateOptions struct {
	ConfirmDuplicate bool
}

// ImportOptions control a legacy CSV import.
type ImportOptions struct {
	FileName       string
	SkipDuplicates bool
	DryRun         bool
}

// FailedRow is a data row that could not be imported.
type FailedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ImportResult reports what an import did.
type ImportResult struct {
	ImportID   string        `json:"importId"`
	FileName   string        `json:"fileName"`
	TotalLines int           `json:"totalLines"`
	Imported   int           `json:"imported"`
	Skipped    int           `json:"skipped"`
	Duplicates int           `json:"duplicates"`
	Failed     []FailedRow   `json:"failed,omitempty"`
	DryRun     bool          `json:"dryRun,omitempty"`
	Duration   time.Duration `json:"-"`
	DurationMS int64         `json:"durationMs"`
}

// ChangeKind names what happened to the entry collection.
type ChangeKind string

const (
	ChangeCreated  ChangeKind = "created"
	ChangeDeleted  ChangeKind = "deleted"
	ChangeImported ChangeKind = "imported"
)

// ChangeEvent is published to feed subscribers after every write.
type ChangeEvent struct {
	Kind    ChangeKind        `json:"kind"`
	Entries []reconcile.Entry `json:"entries,omitempty"`
	EntryID string            `json:"entryId,omitempty"`
	At      time.Time         `json:"at"`
}
