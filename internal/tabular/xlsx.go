package tabular

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// readXLSX loads every worksheet of an Open XML workbook.
// excelize drops trailing blank cells per row, so rows are padded afterwards.
func readXLSX(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	wb := &Workbook{Format: FormatXLSX}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		wb.Sheets = append(wb.Sheets, &Sheet{Name: name, Rows: padRows(rows)})
	}

	if len(wb.Sheets) == 0 {
		return nil, ErrEmptyFile
	}
	return wb, nil
}
