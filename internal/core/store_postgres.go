package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	db "github.com/JonMunkholm/dsr/internal/database"
	"github.com/JonMunkholm/dsr/internal/reconcile"
)

// PostgresStore is the Store backed by PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// InsertEntry saves e with a fresh id.
func (s *PostgresStore) InsertEntry(ctx context.Context, e reconcile.Entry) (reconcile.Entry, error) {
	params, err := insertParams(e, pgtype.UUID{})
	if err != nil {
		return reconcile.Entry{}, err
	}
	row, err := db.New(s.pool).InsertEntry(ctx, params)
	if err != nil {
		return reconcile.Entry{}, err
	}
	return entryFromRow(row)
}

// InsertEntries saves all entries in one transaction tagged with importID.
func (s *PostgresStore) InsertEntries(ctx context.Context, entries []reconcile.Entry, importID string) ([]reconcile.Entry, error) {
	tag := toPgUUID(importID)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	q := db.New(s.pool).WithTx(tx)
	saved := make([]reconcile.Entry, 0, len(entries))
	for i, e := range entries {
		params, err := insertParams(e, tag)
		if err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i+1, e.Date, err)
		}
		row, err := q.InsertEntry(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i+1, e.Date, err)
		}
		out, err := entryFromRow(row)
		if err != nil {
			return nil, err
		}
		saved = append(saved, out)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return saved, nil
}

// GetEntry loads one entry.
func (s *PostgresStore) GetEntry(ctx context.Context, id string) (reconcile.Entry, error) {
	pgID, ok := parsePgUUID(id)
	if !ok {
		return reconcile.Entry{}, ErrNotFound
	}
	row, err := db.New(s.pool).GetEntry(ctx, pgID)
	if errors.Is(err, pgx.ErrNoRows) {
		return reconcile.Entry{}, ErrNotFound
	}
	if err != nil {
		return reconcile.Entry{}, err
	}
	return entryFromRow(row)
}

// ListEntries returns the entries of r, newest first.
func (s *PostgresStore) ListEntries(ctx context.Context, r DateRange) ([]reconcile.Entry, error) {
	q := db.New(s.pool)

	var rows []db.DsrEntry
	var err error
	if r.IsZero() {
		rows, err = q.ListAllEntries(ctx)
	} else {
		params, perr := rangeParams(r)
		if perr != nil {
			return nil, perr
		}
		rows, err = q.ListEntriesBetween(ctx, params)
	}
	if err != nil {
		return nil, err
	}

	entries := make([]reconcile.Entry, 0, len(rows))
	for _, row := range rows {
		e, err := entryFromRow(row)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// DeleteEntry removes one entry.
func (s *PostgresStore) DeleteEntry(ctx context.Context, id string) error {
	pgID, ok := parsePgUUID(id)
	if !ok {
		return ErrNotFound
	}
	n, err := db.New(s.pool).DeleteEntry(ctx, pgID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountEntriesOnDate counts the entries of one day.
func (s *PostgresStore) CountEntriesOnDate(ctx context.Context, date string) (int64, error) {
	d, err := toPgDate(date)
	if err != nil {
		return 0, err
	}
	return db.New(s.pool).CountEntriesOnDate(ctx, d)
}

// EntryDates returns the days of r that have an entry.
func (s *PostgresStore) EntryDates(ctx context.Context, r DateRange) (map[string]bool, error) {
	params, err := rangeParams(r)
	if err != nil {
		return nil, err
	}
	dates, err := db.New(s.pool).ListEntryDates(ctx, params)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(dates))
	for _, d := range dates {
		out[fromPgDate(d)] = true
	}
	return out, nil
}

// InsertAudit saves one audit record.
func (s *PostgresStore) InsertAudit(ctx context.Context, rec AuditRecord) (AuditEntry, error) {
	var details []byte
	if rec.Details != nil {
		var err error
		details, err = json.Marshal(rec.Details)
		if err != nil {
			details = nil
		}
	}

	var entryDate pgtype.Date
	if rec.EntryDate != "" {
		if d, err := toPgDate(rec.EntryDate); err == nil {
			entryDate = d
		}
	}

	id := uuid.New()
	createdAt, err := db.New(s.pool).InsertAuditLog(ctx, db.InsertAuditLogParams{
		ID:           pgtype.UUID{Bytes: id, Valid: true},
		Action:       string(rec.Action),
		Severity:     string(rec.Severity),
		EntryID:      toPgText(rec.EntryID),
		EntryDate:    entryDate,
		UserEmail:    toPgText(rec.UserEmail),
		IpAddress:    toPgText(rec.IPAddress),
		UserAgent:    toPgText(rec.UserAgent),
		RowsAffected: int32(rec.RowsAffected),
		ImportID:     toPgText(rec.ImportID),
		Details:      details,
	})
	if err != nil {
		return AuditEntry{}, err
	}

	return AuditEntry{
		ID:           id.String(),
		Action:       rec.Action,
		Severity:     rec.Severity,
		EntryID:      rec.EntryID,
		EntryDate:    rec.EntryDate,
		UserEmail:    rec.UserEmail,
		IPAddress:    rec.IPAddress,
		UserAgent:    rec.UserAgent,
		RowsAffected: rec.RowsAffected,
		ImportID:     rec.ImportID,
		Details:      rec.Details,
		CreatedAt:    createdAt.Time,
	}, nil
}

// ListAudit returns the newest audit entries.
func (s *PostgresStore) ListAudit(ctx context.Context, limit int) ([]AuditEntry, error) {
	rows, err := db.New(s.pool).ListAuditLogs(ctx, int32(limit))
	if err != nil {
		return nil, err
	}

	entries := make([]AuditEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, auditFromRow(row))
	}
	return entries, nil
}

// ArchiveAudit moves one batch of old audit entries to the archive table.
func (s *PostgresStore) ArchiveAudit(ctx context.Context, hotRetentionDays, batchSize int) (int64, error) {
	return db.New(s.pool).ArchiveOldAuditLogs(ctx, db.ArchiveOldAuditLogsParams{
		HotRetentionDays: int32(hotRetentionDays),
		BatchSize:        int32(batchSize),
	})
}

// PurgeArchive deletes archived entries older than retentionYears.
func (s *PostgresStore) PurgeArchive(ctx context.Context, retentionYears int) (int64, error) {
	return db.New(s.pool).PurgeOldArchives(ctx, int32(retentionYears))
}

func insertParams(e reconcile.Entry, importID pgtype.UUID) (db.InsertEntryParams, error) {
	date, err := toPgDate(e.Date)
	if err != nil {
		return db.InsertEntryParams{}, err
	}

	expenses := e.Expenses
	if expenses == nil {
		expenses = []reconcile.Expense{}
	}
	expensesJSON, err := json.Marshal(expenses)
	if err != nil {
		return db.InsertEntryParams{}, fmt.Errorf("encode expenses: %w", err)
	}

	denominations := e.Denominations
	if denominations == nil {
		denominations = reconcile.Denominations{}
	}
	denominationsJSON, err := json.Marshal(denominations)
	if err != nil {
		return db.InsertEntryParams{}, fmt.Errorf("encode denominations: %w", err)
	}

	return db.InsertEntryParams{
		ID:                 pgtype.UUID{Bytes: uuid.New(), Valid: true},
		EntryDate:          date,
		TotalSale:          toPgNumeric(e.TotalSale),
		SalesPos:           toPgNumeric(e.Sales.POS),
		SalesSwiggy:        toPgNumeric(e.Sales.Swiggy),
		SalesZomatoOnline:  toPgNumeric(e.Sales.ZomatoOnline),
		SalesZomatoCash:    toPgNumeric(e.Sales.ZomatoCash),
		SalesUengageOnline: toPgNumeric(e.Sales.UengageOnline),
		SalesUengageCash:   toPgNumeric(e.Sales.UengageCash),
		SalesCash:          toPgNumeric(e.Sales.Cash),
		Expenses:           expensesJSON,
		Denominations:      denominationsJSON,
		TotalExpense:       toPgNumeric(e.TotalExpense),
		OpeningBalance:     toPgNumeric(e.OpeningBalance),
		CashInHand:         toPgNumeric(e.CashInHand),
		PhysicalCash:       toPgNumeric(e.PhysicalCash),
		Difference:         toPgNumeric(e.Difference),
		Comment:            e.Comment,
		CreatedBy:          e.CreatedBy,
		ImportID:           importID,
	}, nil
}

func entryFromRow(row db.DsrEntry) (reconcile.Entry, error) {
	var expenses []reconcile.Expense
	if len(row.Expenses) > 0 {
		if err := json.Unmarshal(row.Expenses, &expenses); err != nil {
			return reconcile.Entry{}, fmt.Errorf("decode expenses: %w", err)
		}
	}
	if expenses == nil {
		expenses = []reconcile.Expense{}
	}

	denominations := reconcile.Denominations{}
	if len(row.Denominations) > 0 {
		if err := json.Unmarshal(row.Denominations, &denominations); err != nil {
			return reconcile.Entry{}, fmt.Errorf("decode denominations: %w", err)
		}
	}

	return reconcile.Entry{
		ID:        uuid.UUID(row.ID.Bytes).String(),
		Date:      fromPgDate(row.EntryDate),
		TotalSale: fromPgNumeric(row.TotalSale),
		Sales: reconcile.Sales{
			POS:           fromPgNumeric(row.SalesPos),
			Swiggy:        fromPgNumeric(row.SalesSwiggy),
			ZomatoOnline:  fromPgNumeric(row.SalesZomatoOnline),
			ZomatoCash:    fromPgNumeric(row.SalesZomatoCash),
			UengageOnline: fromPgNumeric(row.SalesUengageOnline),
			UengageCash:   fromPgNumeric(row.SalesUengageCash),
			Cash:          fromPgNumeric(row.SalesCash),
		},
		Expenses:       expenses,
		Denominations:  denominations,
		TotalExpense:   fromPgNumeric(row.TotalExpense),
		OpeningBalance: fromPgNumeric(row.OpeningBalance),
		CashInHand:     fromPgNumeric(row.CashInHand),
		PhysicalCash:   fromPgNumeric(row.PhysicalCash),
		Difference:     fromPgNumeric(row.Difference),
		Comment:        row.Comment,
		CreatedBy:      row.CreatedBy,
		CreatedAt:      row.CreatedAt.Time,
	}, nil
}

func auditFromRow(row db.AuditLog) AuditEntry {
	var details map[string]any
	if len(row.Details) > 0 {
		_ = json.Unmarshal(row.Details, &details)
	}

	var entryDate string
	if row.EntryDate.Valid {
		entryDate = fromPgDate(row.EntryDate)
	}

	return AuditEntry{
		ID:           uuid.UUID(row.ID.Bytes).String(),
		Action:       AuditAction(row.Action),
		Severity:     AuditSeverity(row.Severity),
		EntryID:      row.EntryID.String,
		EntryDate:    entryDate,
		UserEmail:    row.UserEmail.String,
		IPAddress:    row.IpAddress.String,
		UserAgent:    row.UserAgent.String,
		RowsAffected: int(row.RowsAffected),
		ImportID:     row.ImportID.String,
		Details:      details,
		CreatedAt:    row.CreatedAt.Time,
	}
}

func rangeParams(r DateRange) (db.ListEntriesBetweenParams, error) {
	start, end := r.Start, r.End
	if start == "" {
		start = "0001-01-01"
	}
	if end == "" {
		end = "9999-12-31"
	}
	s, err := toPgDate(start)
	if err != nil {
		return db.ListEntriesBetweenParams{}, err
	}
	e, err := toPgDate(end)
	if err != nil {
		return db.ListEntriesBetweenParams{}, err
	}
	return db.ListEntriesBetweenParams{Start: s, End: e}, nil
}

func toPgDate(date string) (pgtype.Date, error) {
	t, err := reconcile.ParseDate(date)
	if err != nil {
		return pgtype.Date{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return pgtype.Date{Time: t, Valid: true}, nil
}

func fromPgDate(d pgtype.Date) string {
	if !d.Valid {
		return ""
	}
	return d.Time.UTC().Format(reconcile.DateLayout)
}

// toPgNumeric converts through the decimal's exact string form.
func toPgNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	if err := n.Scan(d.String()); err != nil {
		return pgtype.Numeric{}
	}
	return n
}

func fromPgNumeric(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.NaN || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toPgUUID(s string) pgtype.UUID {
	u, _ := parsePgUUID(s)
	return u
}

func parsePgUUID(s string) (pgtype.UUID, bool) {
	u, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}, false
	}
	return pgtype.UUID{Bytes: u, Valid: true}, true
}

var _ Store = (*PostgresStore)(nil)

// pgTimeout bounds the liveness ping of the pool.
const pgTimeout = 2 * time.Second

// Ping checks the database is reachable.
func (s *PostgresStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pgTimeout)
	defer cancel()
	return s.pool.Ping(ctx)
}
