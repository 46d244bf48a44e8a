package tabular

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestRead_CSVComma(t *testing.T) {
	wb, err := Read("setting.csv", strings.NewReader("a,b,c\n1,2\n"))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if wb.Format != FormatDelimited {
		t.Errorf("Format = %q, want %q", wb.Format, FormatDelimited)
	}
	s := wb.First()
	if s.Name != "setting" {
		t.Errorf("sheet name = %q, want %q", s.Name, "setting")
	}
	if len(s.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(s.Rows))
	}
	if len(s.Rows[1]) != 3 {
		t.Errorf("short row not padded: len = %d, want 3", len(s.Rows[1]))
	}
}

func TestRead_CSVSemicolonAndBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("ARTICLE;QTY\n\"12;34\";2\n")...)
	wb, err := Read("export.csv", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	rows := wb.First().Rows
	if rows[0][0] != "ARTICLE" {
		t.Errorf("BOM not stripped: header = %q", rows[0][0])
	}
	if rows[1][0] != "12;34" || rows[1][1] != "2" {
		t.Errorf("row = %q, want [12;34 2]", rows[1])
	}
}

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		want     string
		encoding string
	}{
		{"plain utf-8", []byte("Fiber Chair"), "Fiber Chair", "utf-8"},
		{"utf-8 bom", []byte("\xEF\xBB\xBFOak"), "Oak", "utf-8-bom"},
		{"windows-1252", []byte("Caf\xe9"), "Café", "windows-1252"},
		{"utf-16le bom", []byte{0xFF, 0xFE, 'O', 0, 'k', 0}, "Ok", "utf-16"},
		{"utf-16be bom", []byte{0xFE, 0xFF, 0, 'O', 0, 'k'}, "Ok", "utf-16"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, enc, err := DecodeText(tt.input)
			if err != nil {
				t.Fatalf("DecodeText() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("DecodeText() = %q, want %q", got, tt.want)
			}
			if enc != tt.encoding {
				t.Errorf("encoding = %q, want %q", enc, tt.encoding)
			}
		})
	}
}

func TestSniffDelimiter(t *testing.T) {
	tests := []struct {
		input string
		want  rune
	}{
		{"a,b,c", ','},
		{"a;b;c", ';'},
		{"a\tb\tc", '\t'},
		{"\"a,b\";c;d", ';'},
		{"single", ','},
		{"\n\n  \na|b", '|'},
	}
	for _, tt := range tests {
		if got := sniffDelimiter([]byte(tt.input)); got != tt.want {
			t.Errorf("sniffDelimiter(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestRead_XLSX(t *testing.T) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", "Article List"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow("Article List", "A1", &[]any{"Pos", "Qty", "Article No."}); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow("Article List", "A2", &[]any{1, 2}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.NewSheet("Notes"); err != nil {
		t.Fatal(err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	wb, err := Read("pcon.xlsx", buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if wb.Format != FormatXLSX {
		t.Errorf("Format = %q, want %q", wb.Format, FormatXLSX)
	}
	s, ok := wb.Sheet("  article list ")
	if !ok {
		t.Fatalf("sheet lookup failed; sheets = %v", wb.SheetNames())
	}
	if s.Width() != 3 {
		t.Errorf("Width() = %d, want 3", s.Width())
	}
	if got := s.Rows[1]; len(got) != 3 || got[1] != "2" || got[2] != "" {
		t.Errorf("row 2 = %q, want [1 2 \"\"]", got)
	}
}

func TestRead_Unsupported(t *testing.T) {
	for _, name := range []string{"old.xls", "notes.pdf", "noext"} {
		_, err := Read(name, strings.NewReader("x"))
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("Read(%q) error = %v, want ErrUnsupportedFormat", name, err)
		}
	}
}

func TestRead_Empty(t *testing.T) {
	_, err := Read("empty.csv", strings.NewReader("  \n"))
	if !errors.Is(err, ErrEmptyFile) {
		t.Errorf("error = %v, want ErrEmptyFile", err)
	}
}

func TestIsEmptyRow(t *testing.T) {
	if !IsEmptyRow([]string{"", "  ", "\t"}) {
		t.Error("blank row reported non-empty")
	}
	if IsEmptyRow([]string{"", "x"}) {
		t.Error("row with value reported empty")
	}
	if !IsEmptyRow(nil) {
		t.Error("nil row reported non-empty")
	}
}
