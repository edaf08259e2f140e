package core

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/dsr/internal/reconcile"
)

// ExportHeader is the column layout shared by the exports and the importer.
var ExportHeader = []string{
	"Date",
	"Total Sale",
	"POS (UPI/CC)",
	"Swiggy",
	"Zomato Online",
	"Zomato Cash",
	"Uengage Online",
	"Uengage Cash",
	"Counter Cash Sale",
	"Total Expenses",
	"Net Physical Cash (W/O Deposit)",
	"Short/Excess",
	"Comments",
}

const xlsxSheet = "DSR"

// ExportFileName names a download of r, e.g. dsr_report_2024-03-01_to_2024-03-31.csv.
func ExportFileName(r DateRange, ext string) string {
	return fmt.Sprintf("dsr_report_%s_to_%s.%s", r.Start, r.End, ext)
}

// exportAmounts returns the amount columns of e in header order.
func exportAmounts(e reconcile.Entry) []decimal.Decimal {
	return []decimal.Decimal{
		e.TotalSale,
		e.Sales.POS,
		e.Sales.Swiggy,
		e.Sales.ZomatoOnline,
		e.Sales.ZomatoCash,
		e.Sales.UengageOnline,
		e.Sales.UengageCash,
		e.Sales.Cash,
		e.TotalExpense,
		e.NetPhysical(),
		e.Difference,
	}
}

// WriteCSV writes entries oldest first. The comment is always quoted and
// lines are separated by a bare newline.
func WriteCSV(w io.Writer, entries []reconcile.Entry) error {
	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, strings.Join(ExportHeader, ","))

	for _, e := range SortAscending(entries) {
		fields := make([]string, 0, len(ExportHeader))
		fields = append(fields, e.Date)
		for _, d := range exportAmounts(e) {
			fields = append(fields, d.String())
		}
		fields = append(fields, quoteCSV(e.Comment))
		lines = append(lines, strings.Join(fields, ","))
	}

	_, err := io.WriteString(w, strings.Join(lines, "\n"))
	return err
}

func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// WriteXLSX writes entries oldest first as a workbook with a totals row.
func WriteXLSX(w io.Writer, entries []reconcile.Entry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}

	header := make([]interface{}, len(ExportHeader))
	for i, h := range ExportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return fmt.Errorf("xlsx header: %w", err)
	}

	totals := make([]decimal.Decimal, len(ExportHeader)-2)
	for i := range totals {
		totals[i] = decimal.Zero
	}

	sorted := SortAscending(entries)
	for i, e := range sorted {
		amounts := exportAmounts(e)
		row := make([]interface{}, 0, len(ExportHeader))
		row = append(row, e.Date)
		for j, d := range amounts {
			row = append(row, d.InexactFloat64())
			totals[j] = totals[j].Add(d)
		}
		row = append(row, e.Comment)

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx row %d: %w", i+2, err)
		}
	}

	totalRow := len(sorted) + 2
	row := make([]interface{}, 0, len(ExportHeader)-1)
	row = append(row, "Total")
	for _, d := range totals {
		row = append(row, d.InexactFloat64())
	}
	cell, err := excelize.CoordinatesToCellName(1, totalRow)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
		return fmt.Errorf("xlsx totals: %w", err)
	}

	if err := styleWorkbook(f, totalRow); err != nil {
		return err
	}

	return f.Write(w)
}

func styleWorkbook(f *excelize.File, totalRow int) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return fmt.Errorf("xlsx style: %w", err)
	}
	boldMoney, err := f.NewStyle(&excelize.Style{NumFmt: 4, Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx style: %w", err)
	}

	last, _ := excelize.ColumnNumberToName(len(ExportHeader))
	lastAmount, _ := excelize.ColumnNumberToName(len(ExportHeader) - 1)

	if err := f.SetCellStyle(xlsxSheet, "A1", last+"1", bold); err != nil {
		return err
	}
	if totalRow > 2 {
		if err := f.SetCellStyle(xlsxSheet, "B2", fmt.Sprintf("%s%d", lastAmount, totalRow-1), money); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(xlsxSheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("%s%d", lastAmount, totalRow), boldMoney); err != nil {
		return err
	}
	if err := f.SetColWidth(xlsxSheet, "A", lastAmount, 16); err != nil {
		return err
	}
	return f.SetColWidth(xlsxSheet, last, last, 40)
}

// ExportCSV writes the entries of r as CSV.
func (s *Service) ExportCSV(ctx context.Context, r DateRange, w io.Writer) error {
	entries, err := s.ListEntries(ctx, r)
	if err != nil {
		return err
	}
	return WriteCSV(w, entries)
}

// ExportXLSX writes the entries of r as an Excel workbook.
func (s *Service) ExportXLSX(ctx context.Context, r DateRange, w io.Writer) error {
	entries, err := s.ListEntries(ctx, r)
	if err != nil {
		return err
	}
	return WriteXLSX(w, entries)
}
