package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/dsr/internal/core"
)

// handleImport loads a legacy CSV sent as the multipart field "file".
// skipDuplicates leaves out rows whose date already has an entry and
// dryRun reports what would be written without writing it.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			s.respondError(w, r, fmt.Errorf("%w: limit is %d bytes", errFileTooLarge, maxSize))
			return
		}
		s.respondError(w, r, fmt.Errorf("%w: %v", errBadJSON, err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, errNoFile)
		return
	}
	defer file.Close()

	ctx := WithRequestMetadata(r.Context(), r)
	result, err := s.service.Import(ctx, file, core.ImportOptions{
		FileName:       header.Filename,
		SkipDuplicates: parseBoolParam(r, "skipDuplicates"),
		DryRun:         parseBoolParam(r, "dryRun"),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	status := http.StatusOK
	if result.Imported > 0 && !result.DryRun {
		status = http.StatusCreated
	}
	writeJSONStatus(w, status, result)
}

// handleImportStatus returns the current state of the import limiter.
// Used for monitoring and to check if the system can accept more imports.
func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.Limiter().Status())
}
