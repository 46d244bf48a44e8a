package render

import (
	"encoding/csv"
	"io"

	"github.com/JonMunkholm/productlist/internal/core"
	"github.com/jszwec/csvutil"
)

func init() {
	Register(Definition{
		Key:         "order-import-csv",
		Group:       GroupSpreadsheets,
		Order:       30,
		Label:       "Order import (CSV)",
		Description: "The order import as semicolon separated text",
		FileName:    "order-import.csv",
		ContentType: "text/csv; charset=utf-8",
		Renderer:    RendererFunc(renderOrderImportCSV),
	})
}

func renderOrderImportCSV(w io.Writer, c *core.Conversion) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	enc := csvutil.NewEncoder(cw)
	enc.AutoHeader = false

	for _, line := range c.OrderImport() {
		if err := enc.Encode(line); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
