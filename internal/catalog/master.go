package catalog

import (
	"log/slog"
	"strings"
)

// ColItemNo is the master catalog key column.
const ColItemNo = "ITEM NO."

// Catalog names used in errors and logs.
const (
	LibraryName = "library"
	MasterName  = "master"
)

// MasterEntry is one canonical product record. Values line up with the
// owning Master's Columns.
type MasterEntry struct {
	ItemNo string
	Values []string
}

// Master indexes master data rows by normalized ITEM NO. and keeps every
// column in the catalog's native order.
type Master struct {
	columns    []string
	entries    map[string]*MasterEntry
	duplicates int
}

// NewMaster validates and indexes a master data table.
// Duplicate keys keep the first occurrence.
func NewMaster(t *Table) (*Master, error) {
	if t == nil {
		return nil, &ConfigError{Catalog: MasterName, Err: ErrUnavailable}
	}
	if err := t.Require(ColItemNo); err != nil {
		return nil, err
	}

	keyIdx, _ := t.ColumnIndex(ColItemNo)
	m := &Master{
		columns: append([]string(nil), t.Columns...),
		entries: make(map[string]*MasterEntry, len(t.Rows)),
	}

	for _, row := range t.Rows {
		key := NormalizeKey(row[keyIdx])
		if key == "" {
			continue
		}
		if _, exists := m.entries[key]; exists {
			m.duplicates++
			continue
		}

		values := make([]string, len(row))
		for i, v := range row {
			values[i] = strings.TrimSpace(v)
		}
		m.entries[key] = &MasterEntry{ItemNo: key, Values: values}
	}

	if m.duplicates > 0 {
		slog.Warn("master catalog has duplicate keys, first occurrence kept",
			"column", ColItemNo,
			"duplicates", m.duplicates,
		)
	}

	return m, nil
}

// Columns returns the catalog's column names in native order.
func (m *Master) Columns() []string { return m.columns }

// Lookup finds an entry by an already normalized key.
func (m *Master) Lookup(key string) (*MasterEntry, bool) {
	e, ok := m.entries[key]
	return e, ok
}

// Len returns the number of distinct keys.
func (m *Master) Len() int { return len(m.entries) }

// Duplicates returns how many rows were ignored because their key repeated.
func (m *Master) Duplicates() int { return m.duplicates }
