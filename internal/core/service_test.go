package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/dsr/internal/reconcile"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *MemoryStore) {
	t.Helper()

	store := NewMemoryStore()
	store.now = func() time.Time { return testNow }

	svc := NewService(store, ServiceConfig{
		Calculator:           reconcile.NewCalculator(reconcile.DefaultOpeningBalance, nil),
		Location:             time.UTC,
		MaxConcurrentImports: 1,
		MaxImportWait:        100 * time.Millisecond,
	})
	svc.now = func() time.Time { return testNow }
	return svc, store
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// sampleInput reconciles to a 100 short: counter cash 4900, cash in hand
// 9900, counted 9800.
func sampleInput(date string) reconcile.Input {
	return reconcile.Input{
		Date:      date,
		TotalSale: dec("10000"),
		Sales: reconcile.Sales{
			POS:           dec("3000"),
			Swiggy:        dec("1000"),
			ZomatoOnline:  dec("500"),
			ZomatoCash:    dec("200"),
			UengageOnline: dec("300"),
			UengageCash:   dec("100"),
		},
		Expenses:      []reconcile.Expense{{Description: "Milk", Amount: dec("400")}},
		Denominations: reconcile.Denominations{500: 19, 100: 3},
		Comment:       "evening shift",
	}
}

func TestCreateEntry(t *testing.T) {
	svc, store := newTestService(t)
	ctx := ContextWithUser(context.Background(), "staff@example.com")

	events, cancel := svc.Hub().Subscribe()
	defer cancel()

	e, err := svc.CreateEntry(ctx, sampleInput("2024-03-10"), CreateOptions{})
	if err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}

	if e.ID == "" {
		t.Error("CreateEntry() returned entry without ID")
	}
	if e.CreatedBy != "staff@example.com" {
		t.Errorf("CreatedBy = %q, want staff@example.com", e.CreatedBy)
	}

	checks := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"counter cash", e.Sales.Cash, "4900"},
		{"total expense", e.TotalExpense, "400"},
		{"cash in hand", e.CashInHand, "9900"},
		{"physical cash", e.PhysicalCash, "9800"},
		{"difference", e.Difference, "-100"},
		{"opening balance", e.OpeningBalance, "5100"},
	}
	for _, c := range checks {
		if !c.got.Equal(dec(c.want)) {
			t.Errorf("%s = %s, want %s", c.name, c.got, c.want)
		}
	}

	select {
	case ev := <-events:
		if ev.Kind != ChangeCreated || len(ev.Entries) != 1 || ev.Entries[0].ID != e.ID {
			t.Errorf("change event = %+v, want created %s", ev, e.ID)
		}
	default:
		t.Error("no change event published")
	}

	audit, _ := store.ListAudit(ctx, 10)
	if len(audit) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(audit))
	}
	if audit[0].Action != ActionEntryCreate || audit[0].Severity != SeverityHigh {
		t.Errorf("audit = %s/%s, want entry_create/high", audit[0].Action, audit[0].Severity)
	}
	if audit[0].UserEmail != "staff@example.com" || audit[0].EntryDate != "2024-03-10" {
		t.Errorf("audit user/date = %q/%q", audit[0].UserEmail, audit[0].EntryDate)
	}
}

func TestCreateEntry_DuplicateDate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateEntry(ctx, sampleInput("2024-03-10"), CreateOptions{}); err != nil {
		t.Fatal(err)
	}

	_, err := svc.CreateEntry(ctx, sampleInput("2024-03-10"), CreateOptions{})
	if !errors.Is(err, ErrDuplicateDate) {
		t.Fatalf("second CreateEntry() error = %v, want ErrDuplicateDate", err)
	}

	if _, err := svc.CreateEntry(ctx, sampleInput("2024-03-10"), CreateOptions{ConfirmDuplicate: true}); err != nil {
		t.Fatalf("confirmed CreateEntry() error = %v", err)
	}

	entries, _ := svc.ListEntries(ctx, DateRange{})
	if len(entries) != 2 {
		t.Errorf("entries = %d, want 2", len(entries))
	}
}

func TestCreateEntry_Validation(t *testing.T) {
	svc, store := newTestService(t)

	in := sampleInput("2024-03-10")
	in.TotalSale = decimal.Zero
	in.Sales.Swiggy = dec("-5")

	_, err := svc.CreateEntry(context.Background(), in, CreateOptions{})

	var verr *reconcile.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("CreateEntry() error = %v, want *ValidationError", err)
	}
	if len(verr.Problems) != 2 {
		t.Errorf("problems = %v, want 2", verr.Problems)
	}

	if n, _ := store.CountEntriesOnDate(context.Background(), "2024-03-10"); n != 0 {
		t.Errorf("invalid entry was saved")
	}
}

func TestCreateEntry_StoreFailure(t *testing.T) {
	svc, store := newTestService(t)
	store.FailInsert = errors.New("connection reset by peer")

	_, err := svc.CreateEntry(context.Background(), sampleInput("2024-03-10"), CreateOptions{})
	if err == nil {
		t.Fatal("CreateEntry() succeeded with failing store")
	}
	if got := MapError(err).Code; got != "DB005" {
		t.Errorf("MapError code = %s, want DB005", got)
	}

	audit, _ := store.ListAudit(context.Background(), 10)
	if len(audit) != 0 {
		t.Errorf("failed write was audited: %+v", audit)
	}
}

func TestPreviewEntry(t *testing.T) {
	svc, _ := newTestService(t)

	f := svc.PreviewEntry(sampleInput("2024-03-10"))
	if !f.Difference.Equal(dec("-100")) {
		t.Errorf("Difference = %s, want -100", f.Difference)
	}
	if !f.CounterCash.Equal(dec("4900")) {
		t.Errorf("CounterCash = %s, want 4900", f.CounterCash)
	}
}

func TestDeleteEntry(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	e, err := svc.CreateEntry(ctx, sampleInput("2024-03-10"), CreateOptions{})
	if err != nil {
		t.Fatal(err)
	}

	events, cancel := svc.Hub().Subscribe()
	defer cancel()

	if err := svc.DeleteEntry(ctx, e.ID); err != nil {
		t.Fatalf("DeleteEntry() error = %v", err)
	}

	if _, err := svc.GetEntry(ctx, e.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetEntry() after delete error = %v, want ErrNotFound", err)
	}

	select {
	case ev := <-events:
		if ev.Kind != ChangeDeleted || ev.EntryID != e.ID {
			t.Errorf("change event = %+v, want deleted %s", ev, e.ID)
		}
	default:
		t.Error("no change event published")
	}

	audit, _ := store.ListAudit(ctx, 1)
	if len(audit) != 1 || audit[0].Action != ActionEntryDelete || audit[0].EntryID != e.ID {
		t.Errorf("latest audit = %+v, want entry_delete of %s", audit, e.ID)
	}

	if err := svc.DeleteEntry(ctx, e.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteEntry() error = %v, want ErrNotFound", err)
	}
}

func TestEntryExpenses(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	in := sampleInput("2024-03-10")
	in.Expenses = append(in.Expenses, reconcile.Expense{Description: "  ", Amount: dec("50")})
	e, err := svc.CreateEntry(ctx, in, CreateOptions{})
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.EntryExpenses(ctx, e.ID)
	if err != nil {
		t.Fatalf("EntryExpenses() error = %v", err)
	}
	if len(got.Expenses) != 1 || got.Expenses[0].Description != "Milk" {
		t.Errorf("Expenses = %+v, want only Milk", got.Expenses)
	}
	if !got.Total.Equal(dec("450")) {
		t.Errorf("Total = %s, want 450", got.Total)
	}
	if got.Date != "2024-03-10" {
		t.Errorf("Date = %s", got.Date)
	}

	if _, err := svc.EntryExpenses(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("EntryExpenses(missing) error = %v, want ErrNotFound", err)
	}
}

func TestResolveRange(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name    string
		start   string
		end     string
		want    DateRange
		wantErr bool
	}{
		{"defaults to month to date", "", "", DateRange{Start: "2024-03-01", End: "2024-03-15"}, false},
		{"keeps given start", "2024-02-01", "", DateRange{Start: "2024-02-01", End: "2024-03-15"}, false},
		{"both given", "2024-01-01", "2024-01-31", DateRange{Start: "2024-01-01", End: "2024-01-31"}, false},
		{"reversed", "2024-03-10", "2024-03-01", DateRange{}, true},
		{"unparsable", "2024-02-30", "", DateRange{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ResolveRange(tt.start, tt.end)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRange) {
					t.Errorf("ResolveRange() error = %v, want ErrInvalidRange", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveRange() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveRange() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestToday_UsesLocation(t *testing.T) {
	svc, _ := newTestService(t)
	svc.loc = time.FixedZone("IST", 5*3600+1800)
	svc.now = func() time.Time { return time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC) }

	if got := svc.Today(); got != "2024-03-16" {
		t.Errorf("Today() = %s, want 2024-03-16", got)
	}
}

func TestAuditLog_ClampsLimit(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := ContextWithIPAddress(context.Background(), "10.0.0.7")
	ctx = ContextWithUserAgent(ctx, "test-agent")

	for i := 0; i < 3; i++ {
		if _, err := svc.LogAudit(ctx, AuditRecord{Action: ActionUserRegister, UserEmail: "a@b.c"}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := svc.AuditLog(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("AuditLog(0) = %d entries, want 3", len(got))
	}
	if got[0].IPAddress != "10.0.0.7" || got[0].UserAgent != "test-agent" {
		t.Errorf("context fields not recorded: %+v", got[0])
	}
	if got[0].Severity != SeverityLow {
		t.Errorf("Severity = %s, want low", got[0].Severity)
	}

	got, _ = svc.AuditLog(ctx, 2)
	if len(got) != 2 {
		t.Errorf("AuditLog(2) = %d entries, want 2", len(got))
	}
}
