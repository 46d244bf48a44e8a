package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/productlist/internal/catalog"
	"github.com/JonMunkholm/productlist/internal/extract"
	"github.com/JonMunkholm/productlist/internal/tabular"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error returns empty", nil, ""},
		{
			"missing catalog column",
			&catalog.ConfigError{Catalog: "master", Columns: []string{"ITEM NO."}, Err: catalog.ErrMissingColumn},
			"CAT001",
		},
		{
			"catalog unavailable wrapped",
			fmt.Errorf("convert: %w", &catalog.ConfigError{Catalog: "library", Err: catalog.ErrUnavailable}),
			"CAT002",
		},
		{"sheet not found", &extract.MalformedError{Sheet: "Article List", Err: extract.ErrSheetNotFound}, "EXT001"},
		{"too few columns", &extract.MalformedError{Err: extract.ErrTooFewColumns}, "EXT002"},
		{"header not found", &extract.MalformedError{Err: extract.ErrHeaderNotFound}, "EXT003"},
		{"empty file", fmt.Errorf("read x.csv: %w", tabular.ErrEmptyFile), "FILE005"},
		{"unsupported format", fmt.Errorf("%w: \".pdf\"", tabular.ErrUnsupportedFormat), "FILE006"},
		{"busy", ErrBusy, "UPL002"},
		{"cancelled", fmt.Errorf("reading upload: %w", context.Canceled), "UPL004"},
		{"deadline", context.DeadlineExceeded, "UPL005"},
		{"file too large pattern", errors.New("http: request body too large: file too large"), "FILE001"},
		{"case insensitive pattern", errors.New("INVALID CSV: bare quote"), "FILE002"},
		{"unknown artifact", errors.New(`unknown artifact "pdf"`), "ART001"},
		{"rate limit", errors.New("rate limit exceeded"), "RATE001"},
		{"unknown error returns default", errors.New("some random internal error"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestMapError_SentinelBeatsPattern(t *testing.T) {
	// The message mentions "rate limit" but the chain holds ErrBusy.
	err := fmt.Errorf("rate limit middleware: %w", ErrBusy)
	if got := MapError(err).Code; got != "UPL002" {
		t.Errorf("MapError() code = %q, want UPL002", got)
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(ErrBusy)
	want := "System is busy processing other conversions (Code: UPL002). Please wait a moment and try again"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
	if FormatUserError(nil) != "" {
		t.Error("FormatUserError(nil) should be empty")
	}
}

func TestIsUserFacing(t *testing.T) {
	if !IsUserFacing(&catalog.ConfigError{Catalog: "master", Err: catalog.ErrMissingColumn}) {
		t.Error("config error should be user facing")
	}
	if IsUserFacing(errors.New("boom")) {
		t.Error("unknown error should not be user facing")
	}
	if IsUserFacing(nil) {
		t.Error("nil should not be user facing")
	}
}
