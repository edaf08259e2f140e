package web

import (
	"net/http"

	"github.com/JonMunkholm/dsr/internal/core"
)

// handleAuditLog returns the most recent audit entries, newest first.
func (s *Server) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", core.DefaultAuditLimit)

	entries, err := s.service.AuditLog(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if entries == nil {
		entries = []core.AuditEntry{}
	}
	writeJSON(w, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}
