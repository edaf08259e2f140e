package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/dsr/internal/core"
	"github.com/JonMunkholm/dsr/internal/reconcile"
)

func TestMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"500", "₹500"},
		{"1234.5", "₹1,234.5"},
		{"-100", "-₹100"},
		{"0", "₹0"},
	}
	for _, tt := range tests {
		if got := Money(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("Money(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSigned(t *testing.T) {
	if got := Signed(decimal.Zero); got != "-" {
		t.Errorf("Signed(0) = %q, want -", got)
	}
	if got := Signed(decimal.NewFromInt(25)); got != "+₹25" {
		t.Errorf("Signed(25) = %q, want +₹25", got)
	}
}

func TestPrintReport(t *testing.T) {
	entry := reconcile.Entry{
		Date:         "2024-03-10",
		TotalSale:    decimal.NewFromInt(900),
		Difference:   decimal.NewFromInt(-40),
		TotalExpense: decimal.NewFromInt(10),
		Comment:      `<script>alert("x")</script>`,
	}
	data := ReportData{
		Outlet:      "Koramangala & Co",
		Range:       core.DateRange{Start: "2024-03-01", End: "2024-03-31"},
		Rows:        core.HistoryRows([]reconcile.Entry{entry}),
		Summary:     core.Summarize([]reconcile.Entry{entry}),
		GeneratedAt: time.Date(2024, 4, 1, 9, 30, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	if err := PrintReport(data).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	html := buf.String()

	for _, want := range []string{
		"Koramangala &amp; Co Daily Sales Report",
		"2024-03-01 to 2024-03-31",
		"<td>2024-03-10</td>",
		`<td class="short">-₹40</td>`,
		"&lt;script&gt;",
		"<td>1 days</td>",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("report missing %q", want)
		}
	}
	if strings.Contains(html, "<script>") {
		t.Error("comment was not escaped")
	}
}

func TestPrintReport_Empty(t *testing.T) {
	var buf bytes.Buffer
	err := PrintReport(ReportData{Summary: core.Summarize(nil)}).Render(context.Background(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No entries found for this date range.") {
		t.Error("empty report has no placeholder row")
	}
}

func TestErrorPage(t *testing.T) {
	var buf bytes.Buffer
	if err := ErrorPage("Entry not found", "Refresh <now>", "ENT002").Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "Entry not found") || !strings.Contains(out, "Code: ENT002") {
		t.Errorf("ErrorPage() = %s", out)
	}
	if !strings.Contains(out, "Refresh &lt;now&gt;") {
		t.Error("action was not escaped")
	}
}
