package core

import (
	"context"
	"sort"
	"strings"

	"github.com/JonMunkholm/dsr/internal/reconcile"
	"github.com/shopspring/decimal"
)

// Summarize totals entries for the dashboard cards.
func Summarize(entries []reconcile.Entry) Summary {
	sum := Summary{
		TotalSales:      decimal.Zero,
		TotalExpenses:   decimal.Zero,
		NetCash:         decimal.Zero,
		TotalPOS:        decimal.Zero,
		TotalSwiggy:     decimal.Zero,
		TotalZomato:     decimal.Zero,
		TotalUengage:    decimal.Zero,
		CashSales:       decimal.Zero,
		TotalDifference: decimal.Zero,
	}

	for _, e := range entries {
		sum.Count++
		sum.TotalSales = sum.TotalSales.Add(e.TotalSale)
		sum.TotalExpenses = sum.TotalExpenses.Add(e.TotalExpense)
		sum.NetCash = sum.NetCash.Add(e.CashInHand)
		sum.TotalPOS = sum.TotalPOS.Add(e.Sales.POS)
		sum.TotalSwiggy = sum.TotalSwiggy.Add(e.Sales.Swiggy)
		sum.TotalZomato = sum.TotalZomato.Add(e.Sales.Zomato())
		sum.TotalUengage = sum.TotalUengage.Add(e.Sales.Uengage())
		sum.CashSales = sum.CashSales.Add(e.Sales.Cash)
		sum.TotalDifference = sum.TotalDifference.Add(e.Difference)

		switch {
		case e.IsShort():
			sum.ShortDays++
		case e.IsExcess():
			sum.ExcessDays++
		}
	}
	return sum
}

// SortAscending returns a copy of entries ordered oldest date first.
// Entries of the same date keep creation order.
func SortAscending(entries []reconcile.Entry) []reconcile.Entry {
	out := append([]reconcile.Entry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// ChartSeries builds one chart point per entry, oldest first.
func ChartSeries(entries []reconcile.Entry) []ChartPoint {
	sorted := SortAscending(entries)
	points := make([]ChartPoint, 0, len(sorted))
	for _, e := range sorted {
		points = append(points, ChartPoint{
			Day:       dayOfMonth(e.Date),
			FullDate:  e.Date,
			TotalSale: e.TotalSale,
			POS:       e.Sales.POS,
			Swiggy:    e.Sales.Swiggy,
			Zomato:    e.Sales.Zomato(),
			Uengage:   e.Sales.Uengage(),
			Cash:      e.Sales.Cash,
			Expenses:  e.TotalExpense,
		})
	}
	return points
}

// HistoryRows builds the history table rows, oldest first.
func HistoryRows(entries []reconcile.Entry) []HistoryRow {
	sorted := SortAscending(entries)
	rows := make([]HistoryRow, 0, len(sorted))
	for _, e := range sorted {
		rows = append(rows, HistoryRow{
			Entry:       e,
			TotalOnline: e.Sales.Online(),
			TotalCash:   e.Sales.CashTotal(),
			NetPhysical: e.NetPhysical(),
		})
	}
	return rows
}

// Dashboard returns the summary and chart of r.
func (s *Service) Dashboard(ctx context.Context, r DateRange) (Dashboard, error) {
	entries, err := s.ListEntries(ctx, r)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{
		Range:   r,
		Summary: Summarize(entries),
		Chart:   ChartSeries(entries),
	}, nil
}

// History returns the rows and summary of r, oldest first.
func (s *Service) History(ctx context.Context, r DateRange) (History, error) {
	entries, err := s.ListEntries(ctx, r)
	if err != nil {
		return History{}, err
	}
	return History{
		Range:   r,
		Rows:    HistoryRows(entries),
		Summary: Summarize(entries),
	}, nil
}

func dayOfMonth(date string) string {
	parts := strings.Split(date, "-")
	if len(parts) != 3 {
		return date
	}
	return parts[2]
}
