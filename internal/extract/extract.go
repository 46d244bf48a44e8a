package extract

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/JonMunkholm/productlist/internal/catalog"
	"github.com/JonMunkholm/productlist/internal/tabular"
)

// VariantOff is the configurator's "no variant" value.
const VariantOff = "LIGHT OPTION: OFF"

var (
	// ErrMalformedUpload marks every upload problem that stops a conversion.
	ErrMalformedUpload = errors.New("malformed upload")

	ErrSheetNotFound  = errors.New("article list sheet not found")
	ErrTooFewColumns  = errors.New("too few columns")
	ErrHeaderNotFound = errors.New("header row not found")
)

// MalformedError reports why an upload could not be read. It matches both
// ErrMalformedUpload and its cause.
type MalformedError struct {
	Sheet  string
	Detail string
	Err    error
}

func (e *MalformedError) Error() string {
	msg := fmt.Sprintf("%v: sheet %q: %v", ErrMalformedUpload, e.Sheet, e.Err)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *MalformedError) Unwrap() []error {
	return []error{ErrMalformedUpload, e.Err}
}

// UserRow is one line item of the upload.
type UserRow struct {
	Line        int    `json:"line"` // 1-based sheet row
	ArticleNo   string `json:"articleNo"`
	Quantity    string `json:"quantity"`
	ShortText   string `json:"shortText"`
	VariantText string `json:"variantText"`
}

// HasVariant reports whether the variant text should be shown. Only the
// exact VariantOff marker hides it.
func (r UserRow) HasVariant() bool {
	return r.VariantText != "" && r.VariantText != VariantOff
}

// QuantityNumber parses Quantity. A decimal comma is accepted.
func (r UserRow) QuantityNumber() (float64, bool) {
	q := strings.TrimSpace(r.Quantity)
	if q == "" {
		return 0, false
	}
	if !strings.Contains(q, ".") {
		q = strings.Replace(q, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(q, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Extract reads the article list of wb. Rows without an article number are
// dropped. Any structural problem fails the whole upload.
func Extract(wb *tabular.Workbook, l Layout) ([]UserRow, error) {
	sheet := findSheet(wb, l.Sheet)
	if sheet == nil {
		return nil, &MalformedError{
			Sheet:  l.Sheet,
			Detail: "sheets: " + strings.Join(wb.SheetNames(), ", "),
			Err:    ErrSheetNotFound,
		}
	}

	cols, start, err := locate(sheet, l)
	if err != nil {
		return nil, err
	}

	var rows []UserRow
	for i := start; i < len(sheet.Rows); i++ {
		record := sheet.Rows[i]
		r := UserRow{
			Line:        i + 1,
			ArticleNo:   catalog.NormalizeKey(field(record, cols, FieldArticle)),
			Quantity:    catalog.CleanCell(field(record, cols, FieldQuantity)),
			ShortText:   strings.TrimSpace(field(record, cols, FieldShortText)),
			VariantText: strings.TrimSpace(field(record, cols, FieldVariantText)),
		}
		if r.ArticleNo == "" {
			continue
		}
		rows = append(rows, r)
	}

	return rows, nil
}

// findSheet selects the layout's sheet. A delimited upload has a single
// sheet named after the file, which always qualifies.
func findSheet(wb *tabular.Workbook, name string) *tabular.Sheet {
	if s, ok := wb.Sheet(name); ok {
		return s
	}
	if wb.Format == tabular.FormatDelimited && len(wb.Sheets) == 1 {
		return wb.First()
	}
	return nil
}

// locate resolves field positions and the first data row.
func locate(s *tabular.Sheet, l Layout) (map[Field]int, int, error) {
	if l.HeaderSearchRows > 0 {
		return locateByHeader(s, l)
	}

	if width, need := s.Width(), l.MinWidth(); width < need {
		return nil, 0, &MalformedError{
			Sheet:  s.Name,
			Detail: fmt.Sprintf("layout %s needs %d columns, sheet has %d", l, need, width),
			Err:    ErrTooFewColumns,
		}
	}

	start := l.SkipRows
	if l.HeaderRow {
		start++
	}
	return l.Columns, start, nil
}

// locateByHeader finds the first row within the search window that names
// every required field.
func locateByHeader(s *tabular.Sheet, l Layout) (map[Field]int, int, error) {
	limit := min(l.SkipRows+l.HeaderSearchRows, len(s.Rows))

	for i := l.SkipRows; i < limit; i++ {
		cols := matchHeader(s.Rows[i], l.Aliases)
		for f, col := range l.Columns {
			cols[f] = col
		}
		if hasAll(cols, l.Required) {
			return cols, i + 1, nil
		}
	}

	names := make([]string, len(l.Required))
	for i, f := range l.Required {
		names[i] = string(f)
	}
	return nil, 0, &MalformedError{
		Sheet:  s.Name,
		Detail: fmt.Sprintf("looked for %s in the first %d rows", strings.Join(names, ", "), l.HeaderSearchRows),
		Err:    ErrHeaderNotFound,
	}
}

func matchHeader(row []string, aliases map[Field][]string) map[Field]int {
	cols := make(map[Field]int, len(Fields))
	for idx, raw := range row {
		h := catalog.NormalizeHeader(raw)
		if h == "" {
			continue
		}
		for _, f := range Fields {
			if _, taken := cols[f]; taken {
				continue
			}
			if h == string(f) || containsString(aliases[f], h) {
				cols[f] = idx
				break
			}
		}
	}
	return cols
}

func hasAll(cols map[Field]int, required []Field) bool {
	for _, f := range required {
		if _, ok := cols[f]; !ok {
			return false
		}
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// field returns the value of f in record, or "" when the layout has no
// position for f or the row is shorter.
func field(record []string, cols map[Field]int, f Field) string {
	idx, ok := cols[f]
	if !ok || idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}
