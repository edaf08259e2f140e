package reconcile

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleInput() Input {
	return Input{
		Date:      "2024-11-05",
		TotalSale: d("10000"),
		Sales: Sales{
			POS:           d("3000"),
			Swiggy:        d("1000"),
			ZomatoOnline:  d("500"),
			ZomatoCash:    d("200"),
			UengageOnline: d("300"),
			UengageCash:   d("100"),
		},
		Expenses: []Expense{
			{Description: "Milk", Amount: d("150")},
			{Description: "Gas refill", Amount: d("50")},
		},
		Denominations: Denominations{500: 20, 100: 1, 50: 1},
		Comment:       "Heavy rain",
	}
}

func TestFigures(t *testing.T) {
	calc := NewCalculator(DefaultOpeningBalance, nil)
	f := calc.Figures(sampleInput())

	checks := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"CounterCash", f.CounterCash, "4900"},
		{"TotalExpense", f.TotalExpense, "200"},
		{"CashInHand", f.CashInHand, "10100"},
		{"PhysicalCash", f.PhysicalCash, "10150"},
		{"Difference", f.Difference, "50"},
	}
	for _, c := range checks {
		if !c.got.Equal(d(c.want)) {
			t.Errorf("%s = %s, want %s", c.name, c.got, c.want)
		}
	}
}

func TestFigures_Invariants(t *testing.T) {
	calc := NewCalculator(d("2500"), nil)

	inputs := []Input{
		sampleInput(),
		{Date: "2024-01-01", TotalSale: d("1")},
		{
			Date:          "2024-01-02",
			TotalSale:     d("8123.75"),
			Sales:         Sales{POS: d("9000")},
			Expenses:      []Expense{{Description: "x", Amount: d("12.5")}},
			Denominations: Denominations{2: 3, 1: 7},
		},
	}

	for _, in := range inputs {
		f := calc.Figures(in)
		s := in.Sales

		wantCash := in.TotalSale.Sub(decimal.Sum(s.POS, s.Swiggy, s.ZomatoOnline, s.ZomatoCash, s.UengageOnline, s.UengageCash))
		if !f.CounterCash.Equal(wantCash) {
			t.Errorf("%s: CounterCash = %s, want %s", in.Date, f.CounterCash, wantCash)
		}

		wantInHand := f.CounterCash.Add(s.ZomatoCash).Add(s.UengageCash).Sub(f.TotalExpense).Add(d("2500"))
		if !f.CashInHand.Equal(wantInHand) {
			t.Errorf("%s: CashInHand = %s, want %s", in.Date, f.CashInHand, wantInHand)
		}

		if !f.Difference.Equal(f.PhysicalCash.Sub(f.CashInHand)) {
			t.Errorf("%s: Difference = %s, want physical - in hand", in.Date, f.Difference)
		}
	}
}

func TestFigures_NegativeCounterCash(t *testing.T) {
	calc := NewCalculator(DefaultOpeningBalance, nil)
	in := Input{Date: "2024-01-01", TotalSale: d("100"), Sales: Sales{POS: d("150")}}

	f := calc.Figures(in)
	if !f.CounterCash.Equal(d("-50")) {
		t.Errorf("CounterCash = %s, want -50", f.CounterCash)
	}
}

func TestValidate(t *testing.T) {
	calc := NewCalculator(DefaultOpeningBalance, nil)

	tests := []struct {
		name    string
		mutate  func(*Input)
		wantErr string
	}{
		{"valid", func(*Input) {}, ""},
		{"zero total sale", func(in *Input) { in.TotalSale = decimal.Zero }, "Total Daily Sale must be greater than 0."},
		{"negative total sale", func(in *Input) { in.TotalSale = d("-1") }, "Total Daily Sale must be greater than 0."},
		{"negative pos", func(in *Input) { in.Sales.POS = d("-1") }, "Revenue sources cannot be negative."},
		{"negative uengage cash", func(in *Input) { in.Sales.UengageCash = d("-0.01") }, "Revenue sources cannot be negative."},
		{"negative expense", func(in *Input) { in.Expenses[1].Amount = d("-5") }, "Expenses cannot be negative."},
		{"sub-paisa total sale", func(in *Input) { in.TotalSale = d("100.005") }, "Amounts can have at most 2 decimal places."},
		{"sub-paisa pos", func(in *Input) { in.Sales.POS = d("0.004") }, "Amounts can have at most 2 decimal places."},
		{"sub-paisa expense", func(in *Input) { in.Expenses[0].Amount = d("12.345") }, "Amounts can have at most 2 decimal places."},
		{"trailing zeros allowed", func(in *Input) { in.TotalSale = d("10000.500") }, ""},
		{"bad date", func(in *Input) { in.Date = "05/11/2024" }, "invalid date"},
		{"empty date", func(in *Input) { in.Date = "" }, "invalid date"},
		{"unknown note", func(in *Input) { in.Denominations[2000] = 1 }, "Unsupported denomination: 2000."},
		{"negative note count", func(in *Input) { in.Denominations[100] = -1 }, "Count of 100 notes cannot be negative."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := sampleInput()
			tt.mutate(&in)

			err := calc.Validate(in)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error type = %T, want *ValidationError", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	calc := NewCalculator(DefaultOpeningBalance, nil)
	in := Input{
		Date:      "bad",
		TotalSale: decimal.Zero,
		Sales:     Sales{Swiggy: d("-1")},
		Expenses:  []Expense{{Description: "x", Amount: d("-1")}},
	}

	err := calc.Validate(in)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Validate() error = %v, want *ValidationError", err)
	}
	if len(verr.Problems) != 4 {
		t.Errorf("len(Problems) = %d, want 4: %v", len(verr.Problems), verr.Problems)
	}
}

func TestEntry(t *testing.T) {
	calc := NewCalculator(DefaultOpeningBalance, nil)
	in := sampleInput()
	in.Expenses = append(in.Expenses,
		Expense{Description: "", Amount: d("25")},
		Expense{Description: "  Empty row  ", Amount: decimal.Zero},
	)

	e, err := calc.Entry(in)
	if err != nil {
		t.Fatalf("Entry() error = %v", err)
	}

	if !e.Sales.Cash.Equal(d("4900")) {
		t.Errorf("Sales.Cash = %s, want 4900", e.Sales.Cash)
	}
	if len(e.Expenses) != 2 {
		t.Errorf("len(Expenses) = %d, want 2", len(e.Expenses))
	}
	// Unlabelled amounts still count towards the total.
	if !e.TotalExpense.Equal(d("225")) {
		t.Errorf("TotalExpense = %s, want 225", e.TotalExpense)
	}
	if !e.OpeningBalance.Equal(d("5100")) {
		t.Errorf("OpeningBalance = %s, want 5100", e.OpeningBalance)
	}
	if len(e.Denominations) != len(DefaultNotes) {
		t.Errorf("len(Denominations) = %d, want %d", len(e.Denominations), len(DefaultNotes))
	}
	if e.Denominations[200] != 0 || e.Denominations[500] != 20 {
		t.Errorf("Denominations = %v, want 500:20 and 200:0", e.Denominations)
	}
	if !e.NetPhysical().Equal(d("5050")) {
		t.Errorf("NetPhysical() = %s, want 5050", e.NetPhysical())
	}
	if e.Comment != "Heavy rain" {
		t.Errorf("Comment = %q, want %q", e.Comment, "Heavy rain")
	}
}

func TestEntry_ExpenseDescriptions(t *testing.T) {
	calc := NewCalculator(DefaultOpeningBalance, nil)
	in := sampleInput()
	in.Expenses = []Expense{
		{Description: "  Milk ", Amount: d("40")},
		{Description: "   ", Amount: d("10")},
	}

	e, err := calc.Entry(in)
	if err != nil {
		t.Fatalf("Entry() error = %v", err)
	}
	if len(e.Expenses) != 1 || e.Expenses[0].Description != "Milk" {
		t.Errorf("Expenses = %+v, want one trimmed Milk row", e.Expenses)
	}
	if !e.TotalExpense.Equal(d("50")) {
		t.Errorf("TotalExpense = %s, want 50", e.TotalExpense)
	}
}

func TestEntry_Invalid(t *testing.T) {
	calc := NewCalculator(DefaultOpeningBalance, nil)
	in := sampleInput()
	in.TotalSale = decimal.Zero

	if _, err := calc.Entry(in); err == nil {
		t.Fatal("Entry() expected validation error")
	}
}

func TestFromLegacy(t *testing.T) {
	calc := NewCalculator(DefaultOpeningBalance, nil)
	row := LegacyRow{
		Date:         "2024-10-01",
		TotalSale:    d("12000"),
		POS:          d("4000"),
		CounterCash:  d("8000"),
		TotalExpense: d("300"),
		NetPhysical:  d("7650"),
		Difference:   d("-50"),
		Comment:      "old sheet",
	}

	e := calc.FromLegacy(row)

	if !e.PhysicalCash.Equal(d("12750")) {
		t.Errorf("PhysicalCash = %s, want 12750", e.PhysicalCash)
	}
	if !e.CashInHand.Equal(d("12800")) {
		t.Errorf("CashInHand = %s, want 12800", e.CashInHand)
	}
	if !e.Sales.Cash.Equal(d("8000")) {
		t.Errorf("Sales.Cash = %s, want 8000", e.Sales.Cash)
	}
	if len(e.Expenses) != 0 || len(e.Denominations) != 0 {
		t.Errorf("legacy entry should carry no expenses or notes, got %v %v", e.Expenses, e.Denominations)
	}
	if !e.IsShort() {
		t.Error("IsShort() = false, want true")
	}
}

func TestSalesGroupings(t *testing.T) {
	s := sampleInput().Sales
	s.Cash = d("4900")

	if got := s.Zomato(); !got.Equal(d("700")) {
		t.Errorf("Zomato() = %s, want 700", got)
	}
	if got := s.Uengage(); !got.Equal(d("400")) {
		t.Errorf("Uengage() = %s, want 400", got)
	}
	if got := s.Online(); !got.Equal(d("4800")) {
		t.Errorf("Online() = %s, want 4800", got)
	}
	if got := s.CashTotal(); !got.Equal(d("5200")) {
		t.Errorf("CashTotal() = %s, want 5200", got)
	}
}

func TestNewCalculator_SortsNotes(t *testing.T) {
	calc := NewCalculator(DefaultOpeningBalance, []int{10, 500, 100})
	got := calc.Notes()
	want := []int{500, 100, 10}

	if len(got) != len(want) {
		t.Fatalf("Notes() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Notes()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
