package web

// This file contains shared utilities and helper functions used across handlers.

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/dsr/internal/core"
	"github.com/JonMunkholm/dsr/internal/reconcile"
)

// maxJSONBody caps JSON request bodies (1MB).
const maxJSONBody = 1 << 20

// decodeJSON reads the request body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		// Keep amount errors so staff see which value was wrong.
		if errors.Is(err, reconcile.ErrInvalidAmount) {
			return err
		}
		return fmt.Errorf("%w: %v", errBadJSON, err)
	}
	return nil
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// parseBoolParam reads a form or query flag such as dryRun=true.
func parseBoolParam(r *http.Request, name string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(r.FormValue(name)))
	return err == nil && b
}

// dateRange resolves the start and end query parameters. Missing bounds
// default to the current month.
func (s *Server) dateRange(r *http.Request) (core.DateRange, error) {
	q := r.URL.Query()
	return s.service.ResolveRange(q.Get("start"), q.Get("end"))
}

// amount is a money value that accepts both JSON numbers and the strings
// staff type into the form ("1,250", "₹300").
type amount decimal.Decimal

func (a *amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*a = amount(decimal.Zero)
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	d, err := reconcile.ParseAmount(s)
	if err != nil {
		return err
	}
	*a = amount(d)
	return nil
}

func (a amount) decimal() decimal.Decimal {
	return decimal.Decimal(a)
}
