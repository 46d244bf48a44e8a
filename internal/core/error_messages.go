package core

// # Error Codes Reference
//
// Every error shown to a user carries a code that support staff can look up
// here.
//
// # Catalog Errors (CAT001-CAT099)
//
//	CAT001 - Missing catalog column: a reference catalog lacks a key column
//	         Action: Check the catalog headers (PRODUCT, EUR ITEM NO., ITEM NO.)
//	         Matches: catalog.ErrMissingColumn
//
//	CAT002 - Catalogs unavailable: a reference catalog is not loaded
//	         Action: Ask an administrator to load or reload the catalogs
//	         Matches: catalog.ErrUnavailable
//
// # Upload Layout Errors (EXT001-EXT099)
//
//	EXT001 - No article list: the upload has no "Article List" sheet
//	EXT002 - Too few columns: the sheet is narrower than the layout
//	EXT003 - Header not found: no header row names the article columns
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large            Patterns: "file too large"
//	FILE002 - Invalid CSV               Patterns: "invalid csv"
//	FILE003 - Encoding error            Patterns: "encoding error"
//	FILE004 - No file                   Patterns: "no file provided"
//	FILE005 - Empty file                Matches: tabular.ErrEmptyFile
//	FILE006 - Unsupported format        Matches: tabular.ErrUnsupportedFormat
//
// # Conversion Errors (UPL001-UPL099, ART001-ART099)
//
//	UPL002 - System busy                Matches: ErrBusy
//	UPL004 - Request cancelled          Matches: context.Canceled
//	UPL005 - Request timeout            Matches: context.DeadlineExceeded
//	ART001 - Unknown artifact           Patterns: "unknown artifact"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests         Patterns: "rate limit"
//
// # Authentication (AUTH001-AUTH002)
//
//	AUTH001 - Missing API key           Written by web/middleware.APIKeyAuth
//	AUTH002 - Invalid API key           Written by web/middleware.APIKeyAuth
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the application logs for the
// technical error, which is logged with the request and conversion ids.
//
// # Matching
//
// Sentinel errors are checked first with errors.Is, in table order. Error
// strings are then matched case-insensitively with strings.Contains; the
// first matching pattern wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/productlist/internal/catalog"
	"github.com/JonMunkholm/productlist/internal/extract"
	"github.com/JonMunkholm/productlist/internal/tabular"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

type errorSentinel struct {
	target error
	msg    UserMessage
}

var errorSentinels = []errorSentinel{
	{
		target: catalog.ErrMissingColumn,
		msg: UserMessage{
			Message: "A reference catalog is missing a required column",
			Action:  "Check the catalog headers (PRODUCT, EUR ITEM NO., ITEM NO.)",
			Code:    "CAT001",
		},
	},
	{
		target: catalog.ErrUnavailable,
		msg: UserMessage{
			Message: "The product catalogs are not available",
			Action:  "Ask an administrator to load or reload the catalogs",
			Code:    "CAT002",
		},
	},
	{
		target: extract.ErrSheetNotFound,
		msg: UserMessage{
			Message: "No 'Article List' sheet found in the uploaded file",
			Action:  "Export the product list from pCon as an Excel file and upload it unchanged",
			Code:    "EXT001",
		},
	},
	{
		target: extract.ErrTooFewColumns,
		msg: UserMessage{
			Message: "The article list has fewer columns than expected",
			Action:  "Use the standard pCon article list export",
			Code:    "EXT002",
		},
	},
	{
		target: extract.ErrHeaderNotFound,
		msg: UserMessage{
			Message: "Could not find the article list header row",
			Action:  "Make sure the sheet has ARTICLE NO. and QUANTITY columns",
			Code:    "EXT003",
		},
	},
	{
		target: tabular.ErrEmptyFile,
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a file with article rows",
			Code:    "FILE005",
		},
	},
	{
		target: tabular.ErrUnsupportedFormat,
		msg: UserMessage{
			Message: "This file type is not supported",
			Action:  "Upload an .xlsx workbook or a .csv file",
			Code:    "FILE006",
		},
	},
	{
		target: ErrBusy,
		msg: UserMessage{
			Message: "System is busy processing other conversions",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		target: context.Canceled,
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		target: context.DeadlineExceeded,
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "UPL005",
		},
	},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns cover errors that arrive without a sentinel, typically
// from the HTTP layer or third-party libraries.
var errorPatterns = []errorPattern{
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Remove unused sheets or split the article list",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure the file is delimited with consistent quoting",
			Code:    "FILE002",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains invalid characters",
			Action:  "Save the file as UTF-8",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select the pCon export to convert",
			Code:    "FILE004",
		},
	},
	{
		pattern: "unknown artifact",
		msg: UserMessage{
			Message: "Unknown download type",
			Action:  "Choose one of the listed downloads",
			Code:    "ART001",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Sentinels are checked before string patterns; ERR000 is the fallback.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, es := range errorSentinels {
		if errors.Is(err, es.target) {
			return es.msg
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

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
