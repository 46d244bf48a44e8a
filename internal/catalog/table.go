package catalog

import (
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/productlist/internal/tabular"
	"golang.org/x/text/unicode/norm"
)

// Table is a catalog held in memory: normalized column names plus the data
// rows beneath them. Every row has exactly len(Columns) cells.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string

	index map[string]int
}

// NewTable builds a Table from a raw header and data rows.
// Header names are normalized with NormalizeHeader; blank headers become
// "COLUMN n" and repeated names get a " (2)", " (3)" ... suffix so every
// column stays addressable. Fully blank rows are dropped.
func NewTable(name string, header []string, rows [][]string) *Table {
	t := &Table{
		Name:    name,
		Columns: make([]string, len(header)),
		index:   make(map[string]int, len(header)),
	}

	seen := make(map[string]int, len(header))
	for i, h := range header {
		col := NormalizeHeader(h)
		if col == "" {
			col = fmt.Sprintf("COLUMN %d", i+1)
		}
		seen[col]++
		if n := seen[col]; n > 1 {
			col = fmt.Sprintf("%s (%d)", col, n)
		}
		t.Columns[i] = col
		t.index[col] = i
	}

	for _, row := range rows {
		if tabular.IsEmptyRow(row) {
			continue
		}
		fitted := make([]string, len(t.Columns))
		copy(fitted, row)
		t.Rows = append(t.Rows, fitted)
	}

	return t
}

// TableFromSheet uses the first non-blank row of s as the header.
func TableFromSheet(name string, s *tabular.Sheet) (*Table, error) {
	for i, row := range s.Rows {
		if tabular.IsEmptyRow(row) {
			continue
		}
		return NewTable(name, row, s.Rows[i+1:]), nil
	}
	return nil, fmt.Errorf("%s catalog: sheet %q has no header row: %w", name, s.Name, tabular.ErrEmptyFile)
}

// ColumnIndex returns the position of a column, matched after normalization.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[NormalizeHeader(name)]
	return i, ok
}

// HasColumn reports whether the table carries the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.ColumnIndex(name)
	return ok
}

// Require returns a ConfigError listing every named column the table lacks.
func (t *Table) Require(columns ...string) error {
	var missing []string
	for _, c := range columns {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &ConfigError{Catalog: t.Name, Columns: missing, Err: ErrMissingColumn}
	}
	return nil
}

// reader exposes the data rows through the Read method used by csvutil.
func (t *Table) reader() *rowReader {
	return &rowReader{rows: t.Rows}
}

type rowReader struct {
	rows [][]string
	next int
}

func (r *rowReader) Read() ([]string, error) {
	if r.next >= len(r.rows) {
		return nil, io.EOF
	}
	row := r.rows[r.next]
	r.next++
	return row, nil
}

// NormalizeHeader trims, applies NFKC and uppercases a column name, and
// collapses internal runs of whitespace to one space.
func NormalizeHeader(s string) string {
	s = norm.NFKC.String(CleanCell(s))
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

// NormalizeKey prepares an item or article number for lookup: spreadsheet
// artifacts removed, NFKC applied (non-breaking spaces become spaces),
// trimmed and uppercased. Internal spacing is preserved.
func NormalizeKey(s string) string {
	return strings.ToUpper(strings.TrimSpace(norm.NFKC.String(CleanCell(s))))
}

// CleanCell removes common spreadsheet artifacts from a cell value:
//   - surrounding whitespace
//   - an Excel formula wrapper (="...")
//   - surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.TrimSpace(strings.Trim(s, `"'`))
}
