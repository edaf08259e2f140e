package core

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/dsr/internal/logging"
	"github.com/JonMunkholm/dsr/internal/reconcile"
)

// ErrNoValidRecords is returned when an import file holds no data row.
var ErrNoValidRecords = errors.New("no valid records found in file")

// ErrFileTooLarge is returned when an import file is over the size limit.
var ErrFileTooLarge = errors.New("file too large")

// legacyDatePattern identifies a data row by its first column.
var legacyDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// legacyRowStart matches a physical line that opens a data row.
var legacyRowStart = regexp.MustCompile(`^\d{4}-\d{2}-\d{2},`)

// legacyMinColumns is the width of the narrowest data row accepted.
const legacyMinColumns = 10

// Column positions of the legacy sheet. The exporter writes the same layout.
const (
	colDate = iota
	colTotalSale
	colPOS
	colSwiggy
	colZomatoOnline
	colZomatoCash
	colUengageOnline
	colUengageCash
	colCounterCash
	colTotalExpense
	colNetPhysical
	colDifference
	colComment
)

// LegacyLine is a data row with its line number in the file.
type LegacyLine struct {
	Line int
	Row  reconcile.LegacyRow
}

// LegacyFile is the result of parsing a legacy CSV.
type LegacyFile struct {
	Lines      []LegacyLine
	TotalLines int
	Skipped    int
	Failed     []FailedRow
}

// LimitImport reads all of r, failing with ErrFileTooLarge once it passes
// maxSize bytes.
func LimitImport(r io.Reader, maxSize int64) (io.Reader, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, maxSize)
	}
	return bytes.NewReader(data), nil
}

// ParseLegacyCSV reads a legacy DSR sheet. Lines that are not data rows
// (headers, notes, totals) are counted as skipped. Rows that look like data
// but cannot be read are reported in Failed.
func ParseLegacyCSV(r io.Reader) (LegacyFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return LegacyFile{}, fmt.Errorf("read import file: %w", err)
	}
	if len(data) == 0 {
		return LegacyFile{}, errors.New("empty file")
	}

	text, err := decodeLegacy(data)
	if err != nil {
		return LegacyFile{}, err
	}

	var file LegacyFile
	for _, ll := range splitLegacyLines(text) {
		if strings.TrimSpace(ll.text) == "" {
			continue
		}
		file.TotalLines++

		record, err := readLegacyRecord(ll.text)
		if err != nil {
			file.Failed = append(file.Failed, FailedRow{Line: ll.line, Reason: err.Error()})
			continue
		}

		if len(record) < legacyMinColumns || !legacyDatePattern.MatchString(strings.TrimSpace(record[colDate])) {
			file.Skipped++
			continue
		}

		date := strings.TrimSpace(record[colDate])
		if _, err := reconcile.ParseDate(date); err != nil {
			file.Failed = append(file.Failed, FailedRow{Line: ll.line, Reason: fmt.Sprintf("invalid date %q", date)})
			continue
		}

		file.Lines = append(file.Lines, LegacyLine{Line: ll.line, Row: legacyRow(record)})
	}

	return file, nil
}

// legacyLine is one record of a legacy sheet and the physical line it
// starts on.
type legacyLine struct {
	line int
	text string
}

// splitLegacyLines groups physical lines into records. A line with an odd
// number of quotes continues onto the next one, unless the next line starts
// a dated row, so a stray quote never swallows the rows after it.
func splitLegacyLines(text string) []legacyLine {
	physical := strings.Split(text, "\n")
	out := make([]legacyLine, 0, len(physical))
	for i := 0; i < len(physical); i++ {
		start := i
		cur := strings.TrimSuffix(physical[i], "\r")
		for strings.Count(cur, `"`)%2 == 1 && i+1 < len(physical) {
			next := strings.TrimSuffix(physical[i+1], "\r")
			if legacyRowStart.MatchString(next) {
				break
			}
			cur += "\n" + next
			i++
		}
		out = append(out, legacyLine{line: start + 1, text: cur})
	}
	return out
}

// readLegacyRecord splits one record into fields.
func readLegacyRecord(text string) ([]string, error) {
	cr := csv.NewReader(strings.NewReader(text))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	record, err := cr.Read()
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return nil, perr.Err
	}
	if err == io.EOF {
		return nil, nil
	}
	return record, err
}

// legacyRow maps a data record. Missing or unreadable amounts are zero and
// the rest are kept to the paisa.
func legacyRow(record []string) reconcile.LegacyRow {
	amount := func(i int) decimal.Decimal {
		if i >= len(record) {
			return decimal.Zero
		}
		return reconcile.AmountOrZero(record[i]).Round(2)
	}

	comment := ""
	if len(record) > colComment {
		comment = strings.ReplaceAll(strings.TrimSpace(record[colComment]), `"`, "")
	}

	return reconcile.LegacyRow{
		Date:          strings.TrimSpace(record[colDate]),
		TotalSale:     amount(colTotalSale),
		POS:           amount(colPOS),
		Swiggy:        amount(colSwiggy),
		ZomatoOnline:  amount(colZomatoOnline),
		ZomatoCash:    amount(colZomatoCash),
		UengageOnline: amount(colUengageOnline),
		UengageCash:   amount(colUengageCash),
		CounterCash:   amount(colCounterCash),
		TotalExpense:  amount(colTotalExpense),
		NetPhysical:   amount(colNetPhysical),
		Difference:    amount(colDifference),
		Comment:       comment,
	}
}

// Import reads a legacy CSV and writes every data row in one transaction.
// Rows whose date already has an entry, in the store or earlier in the
// file, are counted as duplicates and written unless opts.SkipDuplicates.
func (s *Service) Import(ctx context.Context, r io.Reader, opts ImportOptions) (ImportResult, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return ImportResult{}, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.importTimeout)
	defer cancel()

	start := time.Now()
	result := ImportResult{FileName: opts.FileName, DryRun: opts.DryRun}
	logger := logging.WithFields(ctx, "file", opts.FileName)

	file, err := ParseLegacyCSV(r)
	if err != nil {
		return result, err
	}
	result.TotalLines = file.TotalLines
	result.Skipped = file.Skipped
	result.Failed = file.Failed

	if len(file.Lines) == 0 {
		return result, ErrNoValidRecords
	}

	existing, err := s.store.EntryDates(ctx, fileRange(file.Lines))
	if err != nil {
		return result, fmt.Errorf("load existing dates: %w", err)
	}

	user := GetUserFromContext(ctx)
	entries := make([]reconcile.Entry, 0, len(file.Lines))
	seen := make(map[string]bool, len(file.Lines))
	for _, l := range file.Lines {
		date := l.Row.Date
		if existing[date] || seen[date] {
			result.Duplicates++
			if opts.SkipDuplicates {
				continue
			}
		}
		seen[date] = true

		e := s.calc.FromLegacy(l.Row)
		e.CreatedBy = user
		entries = append(entries, e)
	}

	result.Imported = len(entries)
	if opts.DryRun || len(entries) == 0 {
		result.Duration = time.Since(start)
		result.DurationMS = result.Duration.Milliseconds()
		return result, nil
	}

	importID := uuid.New().String()
	result.ImportID = importID

	saved, err := s.store.InsertEntries(ctx, entries, importID)
	if err != nil {
		result.Imported = 0
		return result, fmt.Errorf("write imported entries: %w", err)
	}

	result.Duration = time.Since(start)
	result.DurationMS = result.Duration.Milliseconds()

	logger.Info("import completed",
		"import_id", importID,
		"imported", result.Imported,
		"skipped", result.Skipped,
		"duplicates", result.Duplicates,
		"failed", len(result.Failed),
		"duration_ms", result.DurationMS,
	)

	s.LogAudit(ctx, AuditRecord{
		Action:       ActionEntryImport,
		RowsAffected: len(saved),
		ImportID:     importID,
		Details: map[string]any{
			"fileName":   opts.FileName,
			"duplicates": result.Duplicates,
			"skipped":    result.Skipped,
		},
	})

	s.hub.Publish(ChangeEvent{Kind: ChangeImported, Entries: saved, At: s.now()})

	return result, nil
}

// fileRange is the smallest range covering every line.
func fileRange(lines []LegacyLine) DateRange {
	r := DateRange{Start: lines[0].Row.Date, End: lines[0].Row.Date}
	for _, l := range lines[1:] {
		if l.Row.Date < r.Start {
			r.Start = l.Row.Date
		}
		if l.Row.Date > r.End {
			r.End = l.Row.Date
		}
	}
	return r
}
