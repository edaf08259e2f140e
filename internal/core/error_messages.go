package core

// error_messages.go maps technical errors to messages shown to staff.
//
// Codes are grouped by category so a code read out over the phone points
// support at the right place:
//
//	ENT001  entry already exists for the date (confirm to save anyway)
//	ENT002  entry not found
//	VAL001  invalid date
//	VAL002  invalid number
//	VAL003  invalid date range
//	IMP001  no valid records in the import file
//	IMP002  too many imports in progress
//	FILE001 file too large
//	FILE002 invalid CSV
//	FILE003 encoding error
//	FILE004 no file provided
//	FILE005 empty file
//	AUTH001 invalid email or password
//	AUTH002 email already registered
//	AUTH003 sign-in required or expired
//	AUTH004 malformed email
//	AUTH005 password too short
//	DB001-DB007 database constraint and connection errors
//	REQ001-REQ003 cancelled, timed out or unreadable request
//	RATE001 rate limited
//	ERR000  anything else; the technical error is in the logs
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come before general ones.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/dsr/internal/reconcile"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Entries
	{
		pattern: "already exists for this date",
		msg: UserMessage{
			Message: "An entry for this date already exists",
			Action:  "Check the history, or confirm to save a second entry for the same day",
			Code:    "ENT001",
		},
	},
	{
		pattern: "entry not found",
		msg: UserMessage{
			Message: "Entry not found",
			Action:  "It may have been deleted. Refresh the page",
			Code:    "ENT002",
		},
	},

	// Validation
	{
		pattern: "invalid date range",
		msg: UserMessage{
			Message: "The date range is not valid",
			Action:  "Pick a start date on or before the end date",
			Code:    "VAL003",
		},
	},
	{
		pattern: "invalid date",
		msg: UserMessage{
			Message: "Invalid date format detected",
			Action:  "Use YYYY-MM-DD",
			Code:    "VAL001",
		},
	},
	{
		pattern: "invalid number",
		msg: UserMessage{
			Message: "Invalid number format detected",
			Action:  "Enter amounts as plain numbers, e.g. 1250.50",
			Code:    "VAL002",
		},
	},

	// Import
	{
		pattern: "no valid records",
		msg: UserMessage{
			Message: "Could not find any valid records",
			Action:  "Each data row needs a YYYY-MM-DD date in the first column and at least 10 columns",
			Code:    "IMP001",
		},
	},
	{
		pattern: "too many imports",
		msg: UserMessage{
			Message: "Another import is still running",
			Action:  "Please wait a moment and try again",
			Code:    "IMP002",
		},
	},

	// Files
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the file into smaller date ranges",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Export the sheet again as CSV",
			Code:    "FILE002",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains invalid characters",
			Action:  "Save the file as UTF-8 CSV",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to import",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a CSV file with data rows",
			Code:    "FILE005",
		},
	},

	// Auth
	{
		pattern: "invalid credentials",
		msg: UserMessage{
			Message: "Invalid email or password",
			Action:  "Check your details and try again",
			Code:    "AUTH001",
		},
	},
	{
		pattern: "email already registered",
		msg: UserMessage{
			Message: "An account with this email already exists",
			Action:  "Sign in instead",
			Code:    "AUTH002",
		},
	},
	{
		pattern: "unauthorized",
		msg: UserMessage{
			Message: "You are not signed in",
			Action:  "Sign in and try again",
			Code:    "AUTH003",
		},
	},
	{
		pattern: "valid email address",
		msg: UserMessage{
			Message: "The email address is not valid",
			Action:  "Enter an address like name@example.com",
			Code:    "AUTH004",
		},
	},
	{
		pattern: "password should be at least",
		msg: UserMessage{
			Message: "Password should be at least 6 characters",
			Action:  "Choose a longer password",
			Code:    "AUTH005",
		},
	},

	// Database
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this ID already exists",
			Action:  "Please try again",
			Code:    "DB001",
		},
	},
	{
		pattern: "violates unique",
		msg: UserMessage{
			Message: "A duplicate value was found",
			Action:  "Please try again",
			Code:    "DB002",
		},
	},
	{
		pattern: "violates foreign key",
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Refresh the page and try again",
			Code:    "DB003",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},

	// Requests
	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "The request could not be read",
			Action:  "Check the submitted fields and try again",
			Code:    "REQ003",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or a shorter date range",
			Code:    "REQ002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB006",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Validation failures keep their own wording so staff see what to fix.
//
//	msg := MapError(fmt.Errorf("save: %w", ErrDuplicateDate))
//	// msg.Code == "ENT001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var verr *reconcile.ValidationError
	if errors.As(err, &verr) {
		return UserMessage{
			Message: strings.Join(verr.Problems, " "),
			Action:  "Correct the highlighted fields and save again",
			Code:    "VAL000",
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
