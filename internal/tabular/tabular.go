// Package tabular reads spreadsheet and delimited-text files into plain rows
// of strings.
//
// Workbooks (.xlsx, .xlsm) are read with excelize; every sheet is returned.
// Delimited text (.csv, .tsv, .txt) is decoded to UTF-8 first, the delimiter
// is sniffed from the first non-empty line, and the file becomes a single
// sheet named after the file.
//
// All rows of a sheet are padded to the sheet's width so callers can index
// columns without bounds checks. Values are returned exactly as the source
// presents them; trimming and case handling belong to the caller.
package tabular

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format identifies how a workbook was read.
type Format string

const (
	FormatXLSX      Format = "xlsx"
	FormatDelimited Format = "delimited"
)

var (
	// ErrUnsupportedFormat is returned for file extensions no reader handles.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrEmptyFile is returned when the input holds no bytes or no rows.
	ErrEmptyFile = errors.New("empty file")
)

// Sheet is one named grid of cells.
type Sheet struct {
	Name string
	Rows [][]string
}

// Width returns the number of columns of the widest row.
func (s *Sheet) Width() int {
	w := 0
	for _, row := range s.Rows {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// Workbook is the result of reading one file.
type Workbook struct {
	Format Format
	Sheets []*Sheet
}

// Sheet finds a sheet by name, ignoring case and surrounding whitespace.
func (wb *Workbook) Sheet(name string) (*Sheet, bool) {
	want := strings.TrimSpace(name)
	for _, s := range wb.Sheets {
		if strings.EqualFold(strings.TrimSpace(s.Name), want) {
			return s, true
		}
	}
	return nil, false
}

// First returns the first sheet, or nil for an empty workbook.
func (wb *Workbook) First() *Sheet {
	if len(wb.Sheets) == 0 {
		return nil
	}
	return wb.Sheets[0]
}

// SheetNames lists sheet names in workbook order.
func (wb *Workbook) SheetNames() []string {
	names := make([]string, len(wb.Sheets))
	for i, s := range wb.Sheets {
		names[i] = s.Name
	}
	return names
}

// Read parses r according to the extension of fileName.
func Read(fileName string, r io.Reader) (*Workbook, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return readXLSX(r)
	case ".csv", ".tsv", ".txt":
		name := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
		return readDelimited(name, r)
	case ".xls":
		return nil, fmt.Errorf("%w: legacy .xls workbooks must be saved as .xlsx", ErrUnsupportedFormat)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// ReadFile opens path and reads it with Read.
func ReadFile(path string) (*Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	wb, err := Read(path, f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return wb, nil
}

// padRows extends every row to the width of the widest one.
func padRows(rows [][]string) [][]string {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	for i, row := range rows {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			rows[i] = padded
		}
	}
	return rows
}

// IsEmptyRow reports whether every cell in row is blank.
func IsEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
