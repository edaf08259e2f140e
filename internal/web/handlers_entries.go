package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/dsr/internal/core"
	"github.com/JonMunkholm/dsr/internal/reconcile"
)

// entryRequest is the body of the entry form. Amounts may be sent as
// numbers or as the strings typed into the form.
type entryRequest struct {
	Date      string `json:"date"`
	TotalSale amount `json:"totalSale"`
	Sales     struct {
		POS           amount `json:"pos"`
		Swiggy        amount `json:"swiggy"`
		ZomatoOnline  amount `json:"zomatoOnline"`
		ZomatoCash    amount `json:"zomatoCash"`
		UengageOnline amount `json:"uengageOnline"`
		UengageCash   amount `json:"uengageCash"`
	} `json:"sales"`
	Expenses []struct {
		Description string `json:"description"`
		Amount      amount `json:"amount"`
	} `json:"expenses"`
	Denominations    reconcile.Denominations `json:"denominations"`
	Comment          string                  `json:"comment"`
	ConfirmDuplicate bool                    `json:"confirmDuplicate"`
}

// input converts the form to calculator input. An empty date is today in
// the outlet time zone.
func (req entryRequest) input(today string) reconcile.Input {
	date := req.Date
	if date == "" {
		date = today
	}

	expenses := make([]reconcile.Expense, 0, len(req.Expenses))
	for _, e := range req.Expenses {
		expenses = append(expenses, reconcile.Expense{
			Description: e.Description,
			Amount:      e.Amount.decimal(),
		})
	}

	return reconcile.Input{
		Date:      date,
		TotalSale: req.TotalSale.decimal(),
		Sales: reconcile.Sales{
			POS:           req.Sales.POS.decimal(),
			Swiggy:        req.Sales.Swiggy.decimal(),
			ZomatoOnline:  req.Sales.ZomatoOnline.decimal(),
			ZomatoCash:    req.Sales.ZomatoCash.decimal(),
			UengageOnline: req.Sales.UengageOnline.decimal(),
			UengageCash:   req.Sales.UengageCash.decimal(),
		},
		Expenses:      expenses,
		Denominations: req.Denominations,
		Comment:       req.Comment,
	}
}

// outletResponse describes the outlet to the entry form.
type outletResponse struct {
	Name           string          `json:"name"`
	Currency       string          `json:"currency"`
	TimeZone       string          `json:"timeZone"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	Notes          []int           `json:"notes"`
	Today          string          `json:"today"`
}

func (s *Server) handleOutlet(w http.ResponseWriter, r *http.Request) {
	calc := s.service.Calculator()
	writeJSON(w, outletResponse{
		Name:           s.cfg.Outlet.Name,
		Currency:       s.cfg.Outlet.Currency,
		TimeZone:       s.cfg.Outlet.TimeZone,
		OpeningBalance: calc.OpeningBalance(),
		Notes:          calc.Notes(),
		Today:          s.service.Today(),
	})
}

// handlePreviewEntry returns the live figures of an unsaved form.
func (s *Server) handlePreviewEntry(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, s.service.PreviewEntry(req.input(s.service.Today())))
}

// handleCreateEntry saves the entry of one day. A date that already has an
// entry is rejected with 409 until the form is resent with confirmDuplicate.
func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	entry, err := s.service.CreateEntry(ctx, req.input(s.service.Today()), core.CreateOptions{
		ConfirmDuplicate: req.ConfirmDuplicate,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, entry)
}

// handleListEntries lists the entries of a range, newest first.
// all=true lists every entry.
func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	var rng core.DateRange
	if !parseBoolParam(r, "all") {
		var err error
		if rng, err = s.dateRange(r); err != nil {
			s.respondError(w, r, err)
			return
		}
	}

	entries, err := s.service.ListEntries(r.Context(), rng)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if entries == nil {
		entries = []reconcile.Entry{}
	}
	writeJSON(w, map[string]any{
		"range":   rng,
		"entries": entries,
	})
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := s.service.GetEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, entry)
}

func (s *Server) handleEntryExpenses(w http.ResponseWriter, r *http.Request) {
	breakdown, err := s.service.EntryExpenses(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, breakdown)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	ctx := WithRequestMetadata(r.Context(), r)
	if err := s.service.DeleteEntry(ctx, chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
