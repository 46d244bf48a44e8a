package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks every catalog problem that makes a conversion
	// impossible. It is never produced for individual rows.
	ErrConfiguration = errors.New("catalog configuration error")

	// ErrMissingColumn means a required key column is absent from a catalog.
	ErrMissingColumn = errors.New("missing required catalog column")

	// ErrUnavailable means a catalog has not been loaded or its file is missing.
	ErrUnavailable = errors.New("catalog not available")
)

// ConfigError describes a fatal catalog problem. It matches both
// ErrConfiguration and its underlying cause with errors.Is.
type ConfigError struct {
	Catalog string   // "library" or "master"
	Columns []string // missing columns, for ErrMissingColumn
	Err     error
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s catalog: %v", e.Catalog, e.Err)
	if len(e.Columns) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Columns, ", "))
	}
	return b.String()
}

func (e *ConfigError) Unwrap() []error {
	return []error{ErrConfiguration, e.Err}
}

// IsConfigError reports whether err is (or wraps) a catalog configuration error.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}
