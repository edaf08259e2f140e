package core

import (
	"context"

	"github.com/JonMunkholm/dsr/internal/reconcile"
)

// EntryStore persists daily entries. Implementations assign ID and
// CreatedAt on insert and return ErrNotFound for unknown ids.
type EntryStore interface {
	InsertEntry(ctx context.Context, e reconcile.Entry) (reconcile.Entry, error)

	// InsertEntries writes all entries or none.
	InsertEntries(ctx context.Context, entries []reconcile.Entry, importID string) ([]reconcile.Entry, error)

	GetEntry(ctx context.Context, id string) (reconcile.Entry, error)

	// ListEntries returns entries inside r, newest date first. Entries of
	// the same date are ordered newest created first.
	ListEntries(ctx context.Context, r DateRange) ([]reconcile.Entry, error)

	DeleteEntry(ctx context.Context, id string) error
	CountEntriesOnDate(ctx context.Context, date string) (int64, error)

	// EntryDates returns the set of dates inside r that have an entry.
	EntryDates(ctx context.Context, r DateRange) (map[string]bool, error)
}

// AuditStore persists the audit trail.
type AuditStore interface {
	InsertAudit(ctx context.Context, rec AuditRecord) (AuditEntry, error)
	ListAudit(ctx context.Context, limit int) ([]AuditEntry, error)
	ArchiveAudit(ctx context.Context, hotRetentionDays, batchSize int) (int64, error)
	PurgeArchive(ctx context.Context, retentionYears int) (int64, error)
}

// Store is everything the Service needs from persistence.
type Store interface {
	EntryStore
	AuditStore
}
