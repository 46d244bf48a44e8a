package core

import (
	"reflect"
	"strings"
	"testing"

	"github.com/JonMunkholm/productlist/internal/catalog"
	"github.com/JonMunkholm/productlist/internal/extract"
)

func row(article, qty, short, variant string) ReconciledRow {
	return ReconciledRow{UserRow: extract.UserRow{ArticleNo: article, Quantity: qty, ShortText: short, VariantText: variant}}
}

func withLibrary(r ReconciledRow, e *catalog.LibraryEntry, tier Tier) ReconciledRow {
	r.Library, r.LibraryTier, r.LibraryKey = e, tier, e.EURItemNo
	return r
}

func TestProjectPresentation_SortStable(t *testing.T) {
	rows := []ReconciledRow{
		row("A", "1", "lamp", ""),
		withLibrary(row("B", "2", "x", ""), &catalog.LibraryEntry{EURItemNo: "B", Product: "Chair"}, TierDirect),
		row("C", "3", "Lamp", "LIGHT OPTION: OFF"),
		row("D", "4", "bench", "oak"),
		row("E", "5", "LAMP", "white"),
	}

	got := ProjectPresentation(rows)
	want := []string{
		"4 X BENCH - OAK",
		"2 X CHAIR",
		"1 X LAMP",
		"3 X LAMP",
		"5 X LAMP - WHITE",
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Text != w {
			t.Errorf("line %d = %q, want %q", i, got[i].Text, w)
		}
	}
	if got[1].SortKey != "Chair" {
		t.Errorf("library sort key = %q, want product", got[1].SortKey)
	}
}

func TestProjectPresentation_SentinelSuppression(t *testing.T) {
	for _, variant := range []string{"", "LIGHT OPTION: OFF"} {
		got := ProjectPresentation([]ReconciledRow{row("X", "1", "Lamp", variant)})
		if strings.Contains(got[0].Text, " - ") {
			t.Errorf("variant %q produced %q", variant, got[0].Text)
		}
	}

	got := ProjectPresentation([]ReconciledRow{row("X", "1", "Lamp", "Light option: off")})
	if got[0].Text != "1 X LAMP - LIGHT OPTION: OFF" {
		t.Errorf("non-exact marker produced %q", got[0].Text)
	}
}

func TestProjectPresentation_UnicodeUpper(t *testing.T) {
	got := ProjectPresentation([]ReconciledRow{row("X", "1", "stol", "grå")})
	if got[0].Text != "1 X STOL - GRÅ" {
		t.Errorf("Text = %q", got[0].Text)
	}
}

func TestProjectPresentation_EmptyProductFallsBack(t *testing.T) {
	r := withLibrary(row("A", "1", "Sofa", "Blue"), &catalog.LibraryEntry{EURItemNo: "A"}, TierDirect)
	got := ProjectPresentation([]ReconciledRow{r})
	if got[0].Text != "1 X SOFA - BLUE" {
		t.Errorf("Text = %q", got[0].Text)
	}
}

func TestProjectOrderImport(t *testing.T) {
	rows := []ReconciledRow{
		row("1234-56", "2", "", ""),
		row("SPECIAL 99-A", "1", "", ""),
		row("XYZ", "3", "", ""),
	}
	got := ProjectOrderImport(rows)
	want := []OrderLine{
		{Quantity: "2", ArticleNo: "1234"},
		{Quantity: "1", ArticleNo: "SPECIAL 99"},
		{Quantity: "3", ArticleNo: "XYZ"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ProjectOrderImport() = %+v, want %+v", got, want)
	}
}

func TestProjectItemMapping(t *testing.T) {
	lib := &catalog.LibraryEntry{
		EURItemNo: "1234", Product: "Chair", GBPItemNo: "G1",
		APMEAItemNo: "A1", USDPatternNo: "U1", MatchStatus: "OK",
	}
	rows := []ReconciledRow{
		withLibrary(row("1234-56", "2", "CHAIR", "Black"), lib, TierBase),
		row("XYZ", "1", "LAMP", ""),
	}

	t.Run("without match status", func(t *testing.T) {
		tbl := ProjectItemMapping(rows, false)
		if tbl.Name != ItemMappingName || len(tbl.Columns) != 9 {
			t.Fatalf("table = %s %v", tbl.Name, tbl.Columns)
		}
		want := []string{"2", "1234-56", "CHAIR", "Black", "Chair", "1234", "G1", "A1", "U1"}
		if !reflect.DeepEqual(tbl.Rows[0], want) {
			t.Errorf("row 0 = %v, want %v", tbl.Rows[0], want)
		}
		if got := strings.Join(tbl.Rows[1][4:], ""); got != "" {
			t.Errorf("unmatched row has library values %v", tbl.Rows[1])
		}
	})

	t.Run("with match status", func(t *testing.T) {
		tbl := ProjectItemMapping(rows, true)
		if tbl.Columns[9] != catalog.ColMatchStatus || tbl.Rows[0][9] != "OK" || tbl.Rows[1][9] != "" {
			t.Errorf("columns %v rows %v", tbl.Columns, tbl.Rows)
		}
	})
}

func TestProjectMasterData(t *testing.T) {
	entry := &catalog.MasterEntry{ItemNo: "1234", Values: []string{"1234", "Black", "4kg"}}
	matched := row("1234-56", "2", "CHAIR", "Black")
	matched.Master, matched.MasterTier = entry, TierBase

	rows := []ReconciledRow{
		matched,
		row("XYZ", "1", "LAMP", ""),
		matched,
		row("XYZ", "9", "LAMP", ""),
		row("XYZ", "1", "LAMP", "Red"),
	}

	tbl := ProjectMasterData(rows, []string{"ITEM NO.", "COLOUR", "WEIGHT"})
	wantCols := []string{"ARTICLE NO.", "SHORT TEXT", "VARIANT TEXT", "ITEM NO.", "COLOUR", "WEIGHT"}
	if !reflect.DeepEqual(tbl.Columns, wantCols) {
		t.Errorf("Columns = %v", tbl.Columns)
	}

	want := [][]string{
		{"1234-56", "CHAIR", "Black", "1234", "Black", "4kg"},
		{"XYZ", "LAMP", "", "", "", ""},
		{"XYZ", "LAMP", "Red", "", "", ""},
	}
	if !reflect.DeepEqual(tbl.Rows, want) {
		t.Errorf("Rows = %v, want %v", tbl.Rows, want)
	}
}

func TestProjectMasterData_SeparatorInCells(t *testing.T) {
	rows := []ReconciledRow{
		row("A\x1fB", "1", "C", ""),
		row("A", "1", "B\x1fC", ""),
		row("A", "1", "B\x1fC", ""),
	}

	tbl := ProjectMasterData(rows, nil)
	want := [][]string{
		{"A\x1fB", "C", ""},
		{"A", "B\x1fC", ""},
	}
	if !reflect.DeepEqual(tbl.Rows, want) {
		t.Errorf("Rows = %q, want %q", tbl.Rows, want)
	}
}

func TestProjections_AllColorsNeverBound(t *testing.T) {
	lib := testLibrary(t, []string{"ALL COLORS-5", "Generic"})
	master := testMaster(t, []string{"ALL COLORS-5", "any"})
	e := testEngine(t, lib, master, DefaultMatchOptions())

	rows := e.ReconcileAll([]extract.UserRow{{ArticleNo: "ALL COLORS-5", Quantity: "1", ShortText: "Sofa"}})

	if got := ProjectPresentation(rows)[0].Text; strings.Contains(got, "GENERIC") {
		t.Errorf("presentation used placeholder: %q", got)
	}
	if got := ProjectItemMapping(rows, false).Rows[0]; got[4] != "" || got[5] != "" {
		t.Errorf("item mapping bound placeholder: %v", got)
	}
	if got := ProjectMasterData(rows, master.Columns()).Rows[0]; got[3] != "" {
		t.Errorf("master data bound placeholder: %v", got)
	}
}
