package core

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/dsr/internal/reconcile"
)

// MemoryStore is a Store kept in process memory. It backs dry runs of the
// import tool and handler tests; nothing survives a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]reconcile.Entry
	audit   []AuditEntry
	seq     int
	now     func() time.Time

	// FailInsert makes every entry write fail with the given error.
	FailInsert error
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]reconcile.Entry),
		now:     time.Now,
	}
}

func (m *MemoryStore) InsertEntry(_ context.Context, e reconcile.Entry) (reconcile.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailInsert != nil {
		return reconcile.Entry{}, m.FailInsert
	}
	return m.insertLocked(e), nil
}

func (m *MemoryStore) InsertEntries(_ context.Context, entries []reconcile.Entry, _ string) ([]reconcile.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailInsert != nil {
		return nil, m.FailInsert
	}
	saved := make([]reconcile.Entry, 0, len(entries))
	for _, e := range entries {
		saved = append(saved, m.insertLocked(e))
	}
	return saved, nil
}

// insertLocked assigns strictly increasing creation times so ordering is
// deterministic within a burst.
func (m *MemoryStore) insertLocked(e reconcile.Entry) reconcile.Entry {
	e.ID = uuid.New().String()
	m.seq++
	e.CreatedAt = m.now().Add(time.Duration(m.seq) * time.Microsecond)
	m.entries[e.ID] = e
	return e
}

func (m *MemoryStore) GetEntry(_ context.Context, id string) (reconcile.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[id]
	if !ok {
		return reconcile.Entry{}, ErrNotFound
	}
	return e, nil
}

func (m *MemoryStore) ListEntries(_ context.Context, r DateRange) ([]reconcile.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]reconcile.Entry, 0, len(m.entries))
	for _, e := range m.entries {
		if r.Contains(e.Date) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryStore) DeleteEntry(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[id]; !ok {
		return ErrNotFound
	}
	delete(m.entries, id)
	return nil
}

func (m *MemoryStore) CountEntriesOnDate(_ context.Context, date string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, e := range m.entries {
		if e.Date == date {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) EntryDates(_ context.Context, r DateRange) (map[string]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]bool)
	for _, e := range m.entries {
		if r.Contains(e.Date) {
			out[e.Date] = true
		}
	}
	return out, nil
}

func (m *MemoryStore) InsertAudit(_ context.Context, rec AuditRecord) (AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := AuditEntry{
		ID:           uuid.New().String(),
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
		CreatedAt:    m.now(),
	}
	m.audit = append(m.audit, entry)
	return entry, nil
}

func (m *MemoryStore) ListAudit(_ context.Context, limit int) ([]AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]AuditEntry, 0, limit)
	for i := len(m.audit) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.audit[i])
	}
	return out, nil
}

// ArchiveAudit drops entries older than the hot retention; memory has no
// archive table.
func (m *MemoryStore) ArchiveAudit(_ context.Context, hotRetentionDays, batchSize int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().AddDate(0, 0, -hotRetentionDays)
	kept := m.audit[:0]
	var moved int64
	for _, a := range m.audit {
		if a.CreatedAt.Before(cutoff) && moved < int64(batchSize) {
			moved++
			continue
		}
		kept = append(kept, a)
	}
	m.audit = kept
	return moved, nil
}

func (m *MemoryStore) PurgeArchive(context.Context, int) (int64, error) {
	return 0, nil
}

var _ Store = (*MemoryStore)(nil)
