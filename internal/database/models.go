package database

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// DsrEntry is a row of dsr_entries.
// Expenses and Denominations hold raw JSON.
type DsrEntry struct {
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
	CreatedAt          pgtype.Timestamptz
}

// DsrUser is a row of dsr_users.
type DsrUser struct {
	ID           pgtype.UUID
	Email        string
	PasswordHash string
	CreatedAt    pgtype.Timestamptz
}

// AuditLog is a row of audit_log.
type AuditLog struct {
	ID           pgtype.UUID
	Action       string
	Severity     string
	EntryID      pgtype.Text
	EntryDate    pgtype.Date
	UserEmail    pgtype.Text
	IpAddress    pgtype.Text
	UserAgent    pgtype.Text
	RowsAffected int32
	ImportID     pgtype.Text
	Details      []byte
	CreatedAt    pgtype.Timestamptz
}
