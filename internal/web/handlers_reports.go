package web

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/dsr/internal/core"
	"github.com/JonMunkholm/dsr/internal/web/templates"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// exportFunc writes the entries of a range in one file format.
type exportFunc func(ctx context.Context, r core.DateRange, w io.Writer) error

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	rng, err := s.dateRange(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	dash, err := s.service.Dashboard(r.Context(), rng)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, dash)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	rng, err := s.dateRange(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	hist, err := s.service.History(r.Context(), rng)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, hist)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, "csv", "text/csv; charset=utf-8", s.service.ExportCSV)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, "xlsx", xlsxContentType, s.service.ExportXLSX)
}

// export renders the whole file before sending headers so a failed query
// still gets a proper error response.
func (s *Server) export(w http.ResponseWriter, r *http.Request, ext, contentType string, write exportFunc) {
	rng, err := s.dateRange(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := write(r.Context(), rng, &buf); err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", core.ExportFileName(rng, ext)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

// handlePrintReport renders the printable history of a range.
func (s *Server) handlePrintReport(w http.ResponseWriter, r *http.Request) {
	rng, err := s.dateRange(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	hist, err := s.service.History(r.Context(), rng)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	data := templates.ReportData{
		Outlet:      s.cfg.Outlet.Name,
		Range:       hist.Range,
		Rows:        hist.Rows,
		Summary:     hist.Summary,
		GeneratedAt: time.Now().In(s.cfg.Outlet.Location()),
	}

	var buf bytes.Buffer
	if err := templates.PrintReport(data).Render(r.Context(), &buf); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
