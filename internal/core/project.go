package core

import (
	"sort"
	"strconv"
	"strings"

	"github.com/JonMunkholm/productlist/internal/catalog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Output table and sheet names.
const (
	ItemMappingName = "Item number mapping"
	MasterDataName  = "Masterdata"
)

// User-derived column names of the wide tables.
const (
	ColQuantity    = "QUANTITY"
	ColArticleNo   = "ARTICLE NO."
	ColShortText   = "SHORT TEXT"
	ColVariantText = "VARIANT TEXT"
)

// PresentationLine is one line of the presentation document.
type PresentationLine struct {
	Text    string `json:"text"`
	SortKey string `json:"sortKey"`
}

// OrderLine is one row of the order import file.
type OrderLine struct {
	Quantity  string `csv:"quantity"`
	ArticleNo string `csv:"article_no"`
}

// OutputTable is a named grid with a header row.
type OutputTable struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// ProjectPresentation builds the presentation lines, sorted by sort key
// ignoring case. Rows with equal keys keep their input order.
func ProjectPresentation(rows []ReconciledRow) []PresentationLine {
	upper := cases.Upper(language.Und)
	fold := cases.Fold()

	lines := make([]PresentationLine, len(rows))
	keys := make([]string, len(rows))
	for i, r := range rows {
		var text, sortKey string
		if r.Library != nil && r.Library.Product != "" {
			sortKey = r.Library.Product
			text = r.Quantity + " X " + r.Library.Product
		} else {
			sortKey = r.ShortText
			text = r.Quantity + " X " + r.ShortText
			if r.HasVariant() {
				text += " - " + r.VariantText
			}
		}
		lines[i] = PresentationLine{Text: upper.String(text), SortKey: sortKey}
		keys[i] = fold.String(sortKey)
	}

	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return keys[idx[a]] < keys[idx[b]]
	})

	sorted := make([]PresentationLine, len(idx))
	for i, j := range idx {
		sorted[i] = lines[j]
	}
	return sorted
}

// ProjectOrderImport pairs each row's quantity with its base key, in input
// order. The base key is used whatever tier matched.
func ProjectOrderImport(rows []ReconciledRow) []OrderLine {
	out := make([]OrderLine, len(rows))
	for i, r := range rows {
		out[i] = OrderLine{Quantity: r.Quantity, ArticleNo: BaseKey(r.ArticleNo)}
	}
	return out
}

// ProjectItemMapping builds the item number mapping table. The MATCH STATUS
// column is present only when the library carries one.
func ProjectItemMapping(rows []ReconciledRow, withMatchStatus bool) OutputTable {
	cols := []string{
		ColQuantity, ColArticleNo, ColShortText, ColVariantText,
		catalog.ColProduct, catalog.ColEURItemNo, catalog.ColGBPItemNo,
		catalog.ColAPMEAItemNo, catalog.ColUSDPatternNo,
	}
	if withMatchStatus {
		cols = append(cols, catalog.ColMatchStatus)
	}

	t := OutputTable{Name: ItemMappingName, Columns: cols, Rows: make([][]string, 0, len(rows))}
	for _, r := range rows {
		rec := []string{r.Quantity, r.ArticleNo, r.ShortText, r.VariantText}
		lib := r.Library
		if lib == nil {
			lib = &catalog.LibraryEntry{}
		}
		rec = append(rec, lib.Product, lib.EURItemNo, lib.GBPItemNo, lib.APMEAItemNo, lib.USDPatternNo)
		if withMatchStatus {
			rec = append(rec, lib.MatchStatus)
		}
		t.Rows = append(t.Rows, rec)
	}
	return t
}

// ProjectMasterData builds the master data table: the user fields followed
// by every master column in catalog order. Rows identical in every column
// are emitted once, at their first position.
func ProjectMasterData(rows []ReconciledRow, masterColumns []string) OutputTable {
	cols := make([]string, 0, 3+len(masterColumns))
	cols = append(cols, ColArticleNo, ColShortText, ColVariantText)
	cols = append(cols, masterColumns...)

	t := OutputTable{Name: MasterDataName, Columns: cols}
	seen := make(map[string]bool, len(rows))
	for _, r := range rows {
		rec := make([]string, len(cols))
		rec[0], rec[1], rec[2] = r.ArticleNo, r.ShortText, r.VariantText
		if r.Master != nil {
			copy(rec[3:], r.Master.Values)
		}

		key := recordKey(rec)
		if seen[key] {
			continue
		}
		seen[key] = true
		t.Rows = append(t.Rows, rec)
	}
	return t
}

// recordKey encodes rec so that two records share a key only when every
// cell is equal.
func recordKey(rec []string) string {
	var b strings.Builder
	for _, v := range rec {
		b.WriteString(strconv.Itoa(len(v)))
		b.WriteByte(':')
		b.WriteString(v)
	}
	return b.String()
}
