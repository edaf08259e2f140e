package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/dsr/internal/logging"
	"github.com/JonMunkholm/dsr/internal/reconcile"
)

var (
	// ErrNotFound is returned for an unknown entry id.
	ErrNotFound = errors.New("entry not found")

	// ErrDuplicateDate is returned by CreateEntry when the date already has
	// an entry and the caller did not confirm.
	ErrDuplicateDate = errors.New("an entry already exists for this date")

	// ErrInvalidRange is returned for unparsable or reversed date ranges.
	ErrInvalidRange = errors.New("invalid date range")
)

// ServiceConfig holds the outlet and import settings of a Service.
type ServiceConfig struct {
	Calculator           reconcile.Calculator
	Location             *time.Location
	MaxConcurrentImports int
	MaxImportWait        time.Duration
	ImportTimeout        time.Duration
}

// Service is the entry point for every DSR operation.
type Service struct {
	store         Store
	calc          reconcile.Calculator
	loc           *time.Location
	hub           *Hub
	limiter       *ImportLimiter
	importTimeout time.Duration
	now           func() time.Time
}

// NewService creates a Service on top of store.
func NewService(store Store, cfg ServiceConfig) *Service {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	timeout := cfg.ImportTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return &Service{
		store:         store,
		calc:          cfg.Calculator,
		loc:           loc,
		hub:           NewHub(),
		limiter:       NewImportLimiter(cfg.MaxConcurrentImports, cfg.MaxImportWait),
		importTimeout: timeout,
		now:           time.Now,
	}
}

// Calculator returns the outlet calculator.
func (s *Service) Calculator() reconcile.Calculator {
	return s.calc
}

// Hub returns the change feed.
func (s *Service) Hub() *Hub {
	return s.hub
}

// Limiter returns the limiter guarding imports.
func (s *Service) Limiter() *ImportLimiter {
	return s.limiter
}

// Today returns the current calendar day in the outlet time zone.
func (s *Service) Today() string {
	return s.now().In(s.loc).Format(reconcile.DateLayout)
}

// ResolveRange fills empty bounds with the month-to-date default and
// validates the result.
func (s *Service) ResolveRange(start, end string) (DateRange, error) {
	def := MonthToDate(s.now().In(s.loc))
	r := DateRange{Start: start, End: end}
	if r.Start == "" {
		r.Start = def.Start
	}
	if r.End == "" {
		r.End = def.End
	}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// PreviewEntry derives the live figures of a form without saving it.
func (s *Service) PreviewEntry(in reconcile.Input) reconcile.Figures {
	return s.calc.Figures(in)
}

// CreateEntry validates and saves the entry of one day.
func (s *Service) CreateEntry(ctx context.Context, in reconcile.Input, opts CreateOptions) (reconcile.Entry, error) {
	entry, err := s.calc.Entry(in)
	if err != nil {
		return reconcile.Entry{}, err
	}

	if !opts.ConfirmDuplicate {
		n, err := s.store.CountEntriesOnDate(ctx, entry.Date)
		if err != nil {
			return reconcile.Entry{}, fmt.Errorf("check existing entries: %w", err)
		}
		if n > 0 {
			return reconcile.Entry{}, fmt.Errorf("%w: %s", ErrDuplicateDate, entry.Date)
		}
	}

	entry.CreatedBy = GetUserFromContext(ctx)

	saved, err := s.store.InsertEntry(ctx, entry)
	if err != nil {
		return reconcile.Entry{}, fmt.Errorf("save entry: %w", err)
	}

	logging.FromContext(ctx).Info("entry saved",
		"entry_id", saved.ID,
		"date", saved.Date,
		"difference", saved.Difference.String(),
		"confirmed_duplicate", opts.ConfirmDuplicate,
	)

	s.LogAudit(ctx, AuditRecord{
		Action:       ActionEntryCreate,
		EntryID:      saved.ID,
		EntryDate:    saved.Date,
		RowsAffected: 1,
		Details: map[string]any{
			"totalSale":  saved.TotalSale.String(),
			"difference": saved.Difference.String(),
		},
	})

	s.hub.Publish(ChangeEvent{Kind: ChangeCreated, Entries: []reconcile.Entry{saved}, At: s.now()})

	return saved, nil
}

// GetEntry returns one entry.
func (s *Service) GetEntry(ctx context.Context, id string) (reconcile.Entry, error) {
	return s.store.GetEntry(ctx, id)
}

// EntryExpenses returns the expense drill-down of one entry.
func (s *Service) EntryExpenses(ctx context.Context, id string) (ExpenseBreakdown, error) {
	e, err := s.store.GetEntry(ctx, id)
	if err != nil {
		return ExpenseBreakdown{}, err
	}

	expenses := e.Expenses
	if expenses == nil {
		expenses = []reconcile.Expense{}
	}
	return ExpenseBreakdown{
		EntryID:  e.ID,
		Date:     e.Date,
		Expenses: expenses,
		Total:    e.TotalExpense,
	}, nil
}

// DeleteEntry removes one entry.
func (s *Service) DeleteEntry(ctx context.Context, id string) error {
	e, err := s.store.GetEntry(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteEntry(ctx, id); err != nil {
		return err
	}

	logging.FromContext(ctx).Info("entry deleted", "entry_id", id, "date", e.Date)

	s.LogAudit(ctx, AuditRecord{
		Action:       ActionEntryDelete,
		EntryID:      id,
		EntryDate:    e.Date,
		RowsAffected: 1,
	})

	s.hub.Publish(ChangeEvent{Kind: ChangeDeleted, EntryID: id, At: s.now()})
	return nil
}

// ListEntries returns the entries of r, newest first. A zero range lists
// every entry.
func (s *Service) ListEntries(ctx context.Context, r DateRange) ([]reconcile.Entry, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	entries, err := s.store.ListEntries(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}
