package render

import (
	"fmt"
	"io"
	"math"

	"github.com/JonMunkholm/productlist/internal/core"
	"github.com/JonMunkholm/productlist/internal/extract"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func init() {
	Register(Definition{
		Key:         "order-import",
		Group:       GroupSpreadsheets,
		Order:       20,
		Label:       "Order import",
		Description: "Quantity and base article number per row, no header",
		FileName:    "order-import.xlsx",
		ContentType: xlsxContentType,
		Renderer:    RendererFunc(renderOrderImport),
	})
	Register(Definition{
		Key:         "sku-mapping",
		Group:       GroupSpreadsheets,
		Order:       40,
		Label:       "SKU mapping",
		Description: "Item number mapping and master data sheets",
		FileName:    "masterdata-SKUmapping.xlsx",
		ContentType: xlsxContentType,
		Renderer:    RendererFunc(renderSKUMapping),
	})
}

func renderOrderImport(w io.Writer, c *core.Conversion) error {
	f := excelize.NewFile()
	defer f.Close()

	// Order import lines follow c.Rows one to one.
	sheet := f.GetSheetName(0)
	for i, line := range c.OrderImport() {
		row := []any{quantityCell(c.Rows[i].UserRow), line.ArticleNo}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("order import row %d: %w", i+1, err)
		}
	}

	_, err := f.WriteTo(w)
	return err
}

func renderSKUMapping(w io.Writer, c *core.Conversion) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	tables := []core.OutputTable{c.ItemMapping(), c.MasterData()}
	for i, t := range tables {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), t.Name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(t.Name); err != nil {
			return err
		}
		if err := writeTable(f, t, bold); err != nil {
			return fmt.Errorf("sheet %s: %w", t.Name, err)
		}
	}

	_, err = f.WriteTo(w)
	return err
}

// writeTable writes a bold header row followed by the table rows.
func writeTable(f *excelize.File, t core.OutputTable, headerStyle int) error {
	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(t.Name, "A1", &header); err != nil {
		return err
	}
	if len(t.Columns) > 0 {
		last, err := excelize.CoordinatesToCellName(len(t.Columns), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(t.Name, "A1", last, headerStyle); err != nil {
			return err
		}
	}

	for i, rec := range t.Rows {
		row := make([]any, len(rec))
		for j, v := range rec {
			row[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(t.Name, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// quantityCell stores numeric quantities, decimal comma included, as
// numbers. Anything else is written as given.
func quantityCell(r extract.UserRow) any {
	n, ok := r.QuantityNumber()
	if !ok {
		return r.Quantity
	}
	if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
		return int64(n)
	}
	return n
}
