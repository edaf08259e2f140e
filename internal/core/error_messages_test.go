package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/dsr/internal/reconcile"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "duplicate date maps to entry code",
			err:         fmt.Errorf("%w: 2024-03-10", ErrDuplicateDate),
			wantCode:    "ENT001",
			wantMessage: "An entry for this date already exists",
		},
		{
			name:        "not found maps correctly",
			err:         ErrNotFound,
			wantCode:    "ENT002",
			wantMessage: "Entry not found",
		},
		{
			name:        "range error wins over date error",
			err:         fmt.Errorf("%w: invalid date %q", ErrInvalidRange, "2024-13-01"),
			wantCode:    "VAL003",
			wantMessage: "The date range is not valid",
		},
		{
			name:        "no valid records maps correctly",
			err:         ErrNoValidRecords,
			wantCode:    "IMP001",
			wantMessage: "Could not find any valid records",
		},
		{
			name:        "import limiter maps correctly",
			err:         ErrTooManyImports,
			wantCode:    "IMP002",
			wantMessage: "Another import is still running",
		},
		{
			name:        "empty file maps correctly",
			err:         errors.New("empty file"),
			wantCode:    "FILE005",
			wantMessage: "The uploaded file is empty",
		},
		{
			name:        "duplicate key maps correctly",
			err:         errors.New("ERROR: duplicate key value violates unique constraint"),
			wantCode:    "DB001",
			wantMessage: "A record with this ID already exists",
		},
		{
			name:        "connection refused maps correctly",
			err:         errors.New("dial tcp: connection refused"),
			wantCode:    "DB004",
			wantMessage: "Unable to connect to database",
		},
		{
			name:        "deadline maps before generic timeout",
			err:         errors.New("context deadline exceeded (timeout)"),
			wantCode:    "REQ002",
			wantMessage: "Request timed out",
		},
		{
			name:        "rate limit maps correctly",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("UNAUTHORIZED"),
			wantCode:    "AUTH003",
			wantMessage: "You are not signed in",
		},
		{
			name:        "unreadable body",
			err:         errors.New("invalid request body: unexpected EOF"),
			wantCode:    "REQ003",
			wantMessage: "The request could not be read",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestMapError_ValidationError(t *testing.T) {
	err := fmt.Errorf("create entry: %w", &reconcile.ValidationError{
		Problems: []string{"Total Daily Sale must be greater than 0.", "Expenses cannot be negative."},
	})

	got := MapError(err)
	if got.Code != "VAL000" {
		t.Errorf("MapError() code = %q, want VAL000", got.Code)
	}
	want := "Total Daily Sale must be greater than 0. Expenses cannot be negative."
	if got.Message != want {
		t.Errorf("MapError() message = %q, want %q", got.Message, want)
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrNotFound)

	expected := "Entry not found (Code: ENT002). It may have been deleted. Refresh the page"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}

	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "known error is user facing",
			err:  ErrDuplicateDate,
			want: true,
		},
		{
			name: "validation error is user facing",
			err:  &reconcile.ValidationError{Problems: []string{"x"}},
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}
