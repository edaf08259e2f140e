package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/dsr/internal/logging"
)

// DefaultAuditLimit is the number of audit entries returned when no limit
// is given.
const DefaultAuditLimit = 100

// MaxAuditLimit caps a single audit log query.
const MaxAuditLimit = 1000

// AuditAction represents the type of action being audited.
type AuditAction string

const (
	ActionEntryCreate  AuditAction = "entry_create"
	ActionEntryDelete  AuditAction = "entry_delete"
	ActionEntryImport  AuditAction = "entry_import"
	ActionUserRegister AuditAction = "user_register"
)

// AuditSeverity represents the severity level of an audit entry.
type AuditSeverity string

const (
	SeverityLow    AuditSeverity = "low"
	SeverityMedium AuditSeverity = "medium"
	SeverityHigh   AuditSeverity = "high"
)

// AuditRecord is what callers supply for a new audit entry. IP address,
// user agent and user are filled from the context when left empty.
type AuditRecord struct {
	Action       AuditAction
	Severity     AuditSeverity
	EntryID      string
	EntryDate    string
	UserEmail    string
	IPAddress    string
	UserAgent    string
	RowsAffected int
	ImportID     string
	Details      map[string]any
}

// AuditEntry is a stored audit log entry.
type AuditEntry struct {
	ID           string         `json:"id"`
	Action       AuditAction    `json:"action"`
	Severity     AuditSeverity  `json:"severity"`
	EntryID      string         `json:"entryId,omitempty"`
	EntryDate    string         `json:"entryDate,omitempty"`
	UserEmail    string         `json:"userEmail,omitempty"`
	IPAddress    string         `json:"ipAddress,omitempty"`
	UserAgent    string         `json:"userAgent,omitempty"`
	RowsAffected int            `json:"rowsAffected"`
	ImportID     string         `json:"importId,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
}

func determineSeverity(action AuditAction) AuditSeverity {
	switch action {
	case ActionEntryCreate, ActionEntryDelete, ActionEntryImport:
		return SeverityHigh
	case ActionUserRegister:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// LogAudit records rec. A failure is logged and returned, but callers treat
// the audit trail as best effort and never undo the audited write.
func (s *Service) LogAudit(ctx context.Context, rec AuditRecord) (AuditEntry, error) {
	if rec.Severity == "" {
		rec.Severity = determineSeverity(rec.Action)
	}
	if rec.IPAddress == "" {
		rec.IPAddress = GetIPAddressFromContext(ctx)
	}
	if rec.UserAgent == "" {
		rec.UserAgent = GetUserAgentFromContext(ctx)
	}
	if rec.UserEmail == "" {
		rec.UserEmail = GetUserFromContext(ctx)
	}

	entry, err := s.store.InsertAudit(ctx, rec)
	if err != nil {
		logging.FromContext(ctx).Error("audit log write failed",
			"action", rec.Action,
			"entry_id", rec.EntryID,
			"error", err,
		)
		return AuditEntry{}, err
	}
	return entry, nil
}

// AuditLog returns the most recent audit entries, newest first.
func (s *Service) AuditLog(ctx context.Context, limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = DefaultAuditLimit
	}
	if limit > MaxAuditLimit {
		limit = MaxAuditLimit
	}
	return s.store.ListAudit(ctx, limit)
}
