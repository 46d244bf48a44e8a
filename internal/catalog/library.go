package catalog

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jszwec/csvutil"
)

// Library column names, in normalized form.
const (
	ColProduct      = "PRODUCT"
	ColEURItemNo    = "EUR ITEM NO."
	ColGBPItemNo    = "GBP ITEM NO."
	ColAPMEAItemNo  = "APMEA ITEM NO."
	ColUSDPatternNo = "USD PATTERN NO."
	ColMatchStatus  = "MATCH STATUS"
)

// LibraryEntry is one sellable product.
type LibraryEntry struct {
	EURItemNo    string `csv:"EUR ITEM NO." json:"eurItemNo"`
	Product      string `csv:"PRODUCT" json:"product"`
	GBPItemNo    string `csv:"GBP ITEM NO." json:"gbpItemNo"`
	APMEAItemNo  string `csv:"APMEA ITEM NO." json:"apmeaItemNo"`
	USDPatternNo string `csv:"USD PATTERN NO." json:"usdPatternNo"`
	MatchStatus  string `csv:"MATCH STATUS" json:"matchStatus,omitempty"`
}

// Library indexes LibraryEntry values by normalized EUR item number.
// It is immutable once built.
type Library struct {
	entries        map[string]*LibraryEntry
	hasMatchStatus bool
	duplicates     int
}

// NewLibrary validates and indexes a library table.
// When a key repeats, the first occurrence wins and the rest are counted
// as duplicates.
func NewLibrary(t *Table) (*Library, error) {
	if t == nil {
		return nil, &ConfigError{Catalog: LibraryName, Err: ErrUnavailable}
	}
	if err := t.Require(ColProduct, ColEURItemNo); err != nil {
		return nil, err
	}

	dec, err := csvutil.NewDecoder(t.reader(), t.Columns...)
	if err != nil {
		return nil, fmt.Errorf("library catalog: %w", err)
	}

	lib := &Library{
		entries:        make(map[string]*LibraryEntry, len(t.Rows)),
		hasMatchStatus: t.HasColumn(ColMatchStatus),
	}

	for line := 2; ; line++ {
		var e LibraryEntry
		if err := dec.Decode(&e); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("library catalog row %d: %w", line, err)
		}

		e.EURItemNo = NormalizeKey(e.EURItemNo)
		if e.EURItemNo == "" {
			continue
		}
		e.Product = strings.TrimSpace(e.Product)
		e.GBPItemNo = strings.TrimSpace(e.GBPItemNo)
		e.APMEAItemNo = strings.TrimSpace(e.APMEAItemNo)
		e.USDPatternNo = strings.TrimSpace(e.USDPatternNo)
		e.MatchStatus = strings.TrimSpace(e.MatchStatus)

		if _, exists := lib.entries[e.EURItemNo]; exists {
			lib.duplicates++
			continue
		}
		lib.entries[e.EURItemNo] = &e
	}

	if lib.duplicates > 0 {
		slog.Warn("library catalog has duplicate keys, first occurrence kept",
			"column", ColEURItemNo,
			"duplicates", lib.duplicates,
		)
	}

	return lib, nil
}

// Lookup finds an entry by an already normalized key.
func (l *Library) Lookup(key string) (*LibraryEntry, bool) {
	e, ok := l.entries[key]
	return e, ok
}

// Len returns the number of distinct keys.
func (l *Library) Len() int { return len(l.entries) }

// Duplicates returns how many rows were ignored because their key repeated.
func (l *Library) Duplicates() int { return l.duplicates }

// HasMatchStatus reports whether the source carried a MATCH STATUS column.
func (l *Library) HasMatchStatus() bool { return l.hasMatchStatus }
