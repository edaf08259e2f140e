package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const insertAuditLog = `
INSERT INTO audit_log (
	id, action, severity, entry_id, entry_date, user_email,
	ip_address, user_agent, rows_affected, import_id, details
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING created_at`

type InsertAuditLogParams struct {
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
}

func (q *Queries) InsertAuditLog(ctx context.Context, arg InsertAuditLogParams) (pgtype.Timestamptz, error) {
	row := q.db.QueryRow(ctx, insertAuditLog,
		arg.ID,
		arg.Action,
		arg.Severity,
		arg.EntryID,
		arg.EntryDate,
		arg.UserEmail,
		arg.IpAddress,
		arg.UserAgent,
		arg.RowsAffected,
		arg.ImportID,
		arg.Details,
	)
	var createdAt pgtype.Timestamptz
	err := row.Scan(&createdAt)
	return createdAt, err
}

const listAuditLogs = `
SELECT id, action, severity, entry_id, entry_date, user_email,
	ip_address, user_agent, rows_affected, import_id, details, created_at
FROM audit_log
ORDER BY created_at DESC
LIMIT $1`

func (q *Queries) ListAuditLogs(ctx context.Context, limit int32) ([]AuditLog, error) {
	rows, err := q.db.Query(ctx, listAuditLogs, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []AuditLog
	for rows.Next() {
		var i AuditLog
		if err := rows.Scan(
			&i.ID,
			&i.Action,
			&i.Severity,
			&i.EntryID,
			&i.EntryDate,
			&i.UserEmail,
			&i.IpAddress,
			&i.UserAgent,
			&i.RowsAffected,
			&i.ImportID,
			&i.Details,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const archiveOldAuditLogs = `
WITH moved AS (
	DELETE FROM audit_log
	WHERE id IN (
		SELECT id FROM audit_log
		WHERE created_at < now() - make_interval(days => $1::int)
		ORDER BY created_at
		LIMIT $2
	)
	RETURNING id, action, severity, entry_id, entry_date, user_email,
		ip_address, user_agent, rows_affected, import_id, details, created_at
)
INSERT INTO audit_log_archive (
	id, action, severity, entry_id, entry_date, user_email,
	ip_address, user_agent, rows_affected, import_id, details, created_at
)
SELECT id, action, severity, entry_id, entry_date, user_email,
	ip_address, user_agent, rows_affected, import_id, details, created_at
FROM moved`

type ArchiveOldAuditLogsParams struct {
	HotRetentionDays int32
	BatchSize        int32
}

func (q *Queries) ArchiveOldAuditLogs(ctx context.Context, arg ArchiveOldAuditLogsParams) (int64, error) {
	result, err := q.db.Exec(ctx, archiveOldAuditLogs, arg.HotRetentionDays, arg.BatchSize)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const purgeOldArchives = `
DELETE FROM audit_log_archive
WHERE created_at < now() - make_interval(years => $1::int)`

func (q *Queries) PurgeOldArchives(ctx context.Context, retentionYears int32) (int64, error) {
	result, err := q.db.Exec(ctx, purgeOldArchives, retentionYears)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
