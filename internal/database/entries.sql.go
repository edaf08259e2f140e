package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const entryColumns = `id, entry_date, total_sale,
	sales_pos, sales_swiggy, sales_zomato_online, sales_zomato_cash,
	sales_uengage_online, sales_uengage_cash, sales_cash,
	expenses, denominations, total_expense, opening_balance,
	cash_in_hand, physical_cash, difference, comment, created_by,
	import_id, created_at`

func scanEntry(row pgx.Row) (DsrEntry, error) {
	var i DsrEntry
	err := row.Scan(
		&i.ID,
		&i.EntryDate,
		&i.TotalSale,
		&i.SalesPos,
		&i.SalesSwiggy,
		&i.SalesZomatoOnline,
		&i.SalesZomatoCash,
		&i.SalesUengageOnline,
		&i.SalesUengageCash,
		&i.SalesCash,
		&i.Expenses,
		&i.Denominations,
		&i.TotalExpense,
		&i.OpeningBalance,
		&i.CashInHand,
		&i.PhysicalCash,
		&i.Difference,
		&i.Comment,
		&i.CreatedBy,
		&i.ImportID,
		&i.CreatedAt,
	)
	return i, err
}

func scanEntries(rows pgx.Rows) ([]DsrEntry, error) {
	defer rows.Close()
	var items []DsrEntry
	for rows.Next() {
		i, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertEntry = `
INSERT INTO dsr_entries (
	id, entry_date, total_sale,
	sales_pos, sales_swiggy, sales_zomato_online, sales_zomato_cash,
	sales_uengage_online, sales_uengage_cash, sales_cash,
	expenses, denominations, total_expense, opening_balance,
	cash_in_hand, physical_cash, difference, comment, created_by, import_id
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
	$11, $12, $13, $14, $15, $16, $17, $18, $19, $20
)
RETURNING ` + entryColumns

type InsertEntryParams struct {
	ID                 pgtype.UUID
	EntryDate          pgtype.Date
	TotalSale          pgtype.Numeric
	SalesPos           pgtype.Numeric
	SalesSwiggy        pgtype.Numeric
	SalesZomatoOnline  pgtype.Numeric
	SalesZomatoCash    pgtype.Numeric
	SalesUengageOnline pgtype.Numeric
	SalesUengageCash   pgtype.Numeric
	SalesCash          pgtype.Numeric
	Expenses           []byte
	Denominations      []byte
	TotalExpense       pgtype.Numeric
	OpeningBalance     pgtype.Numeric
	CashInHand         pgtype.Numeric
	PhysicalCash       pgtype.Numeric
	Difference         pgtype.Numeric
	Comment            string
	CreatedBy          string
	ImportID           pgtype.UUID
}

func (q *Queries) InsertEntry(ctx context.Context, arg InsertEntryParams) (DsrEntry, error) {
	row := q.db.QueryRow(ctx, insertEntry,
		arg.ID,
		arg.EntryDate,
		arg.TotalSale,
		arg.SalesPos,
		arg.SalesSwiggy,
		arg.SalesZomatoOnline,
		arg.SalesZomatoCash,
		arg.SalesUengageOnline,
		arg.SalesUengageCash,
		arg.SalesCash,
		arg.Expenses,
		arg.Denominations,
		arg.TotalExpense,
		arg.OpeningBalance,
		arg.CashInHand,
		arg.PhysicalCash,
		arg.Difference,
		arg.Comment,
		arg.CreatedBy,
		arg.ImportID,
	)
	return scanEntry(row)
}

const getEntry = `SELECT ` + entryColumns + ` FROM dsr_entries WHERE id = $1`

func (q *Queries) GetEntry(ctx context.Context, id pgtype.UUID) (DsrEntry, error) {
	return scanEntry(q.db.QueryRow(ctx, getEntry, id))
}

const listEntriesBetween = `
SELECT ` + entryColumns + `
FROM dsr_entries
WHERE entry_date BETWEEN $1 AND $2
ORDER BY entry_date DESC, created_at DESC`

type ListEntriesBetweenParams struct {
	Start pgtype.Date
	End   pgtype.Date
}

func (q *Queries) ListEntriesBetween(ctx context.Context, arg ListEntriesBetweenParams) ([]DsrEntry, error) {
	rows, err := q.db.Query(ctx, listEntriesBetween, arg.Start, arg.End)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

const listAllEntries = `
SELECT ` + entryColumns + `
FROM dsr_entries
ORDER BY entry_date DESC, created_at DESC`

func (q *Queries) ListAllEntries(ctx context.Context) ([]DsrEntry, error) {
	rows, err := q.db.Query(ctx, listAllEntries)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

const deleteEntry = `DELETE FROM dsr_entries WHERE id = $1`

func (q *Queries) DeleteEntry(ctx context.Context, id pgtype.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteEntry, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const countEntriesOnDate = `SELECT count(*) FROM dsr_entries WHERE entry_date = $1`

func (q *Queries) CountEntriesOnDate(ctx context.Context, entryDate pgtype.Date) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countEntriesOnDate, entryDate).Scan(&count)
	return count, err
}

const listEntryDates = `
SELECT DISTINCT entry_date
FROM dsr_entries
WHERE entry_date BETWEEN $1 AND $2`

func (q *Queries) ListEntryDates(ctx context.Context, arg ListEntriesBetweenParams) ([]pgtype.Date, error) {
	rows, err := q.db.Query(ctx, listEntryDates, arg.Start, arg.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []pgtype.Date
	for rows.Next() {
		var d pgtype.Date
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
