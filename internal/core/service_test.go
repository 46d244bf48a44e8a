package core

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/productlist/internal/catalog"
	"github.com/JonMunkholm/productlist/internal/config"
	"github.com/JonMunkholm/productlist/internal/extract"
	"github.com/JonMunkholm/productlist/internal/tabular"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

type staticProvider struct{ set *catalog.Set }

func (p staticProvider) Current() *catalog.Set { return p.set }

// failReader fails the test if the upload is read.
type failReader struct{ t *testing.T }

func (r failReader) Read([]byte) (int, error) {
	r.t.Error("upload was read before the catalog check")
	return 0, errors.New("unexpected read")
}

func testConfig() *config.Config {
	return &config.Config{
		Upload: config.UploadConfig{MaxFileSize: 1 << 20, MaxConcurrent: 2, MaxWaitTime: time.Second},
		Extract: config.ExtractConfig{
			Layout: "pcon", SkipRows: -1,
			ArticleColumn: -1, QuantityColumn: -1, ShortTextColumn: -1, VariantTextColumn: -1,
		},
		Match: config.MatchConfig{
			BaseFallback: true, SpecialFallback: true,
			SpecialPrefix: "SPECIAL", RejectMarker: "ALL COLORS",
		},
	}
}

func testSet(t *testing.T) *catalog.Set {
	t.Helper()
	libTable := catalog.NewTable(catalog.LibraryName,
		[]string{"EUR item no.", "Product", "GBP item no.", "Match Status"},
		[][]string{
			{"1234", "Fiber Chair", "G-1234", "matched"},
			{"99", "Oak Table", "G-99", ""},
			{"ALL COLORS-5", "Generic", "", ""},
		})
	lib, err := catalog.NewLibrary(libTable)
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}
	master, err := catalog.NewMaster(catalog.NewTable(catalog.MasterName,
		[]string{"ITEM NO.", "COLOUR"},
		[][]string{{"1234-56", "Black"}}))
	if err != nil {
		t.Fatalf("NewMaster: %v", err)
	}
	return &catalog.Set{Library: lib, Master: master, LoadedAt: time.Now()}
}

func newTestService(t *testing.T, set *catalog.Set, cfg *config.Config) *Service {
	t.Helper()
	svc, err := NewService(staticProvider{set}, cfg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

// pconUpload builds an xlsx export in the pcon layout.
func pconUpload(t *testing.T, rows [][4]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Article List"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		t.Fatal(err)
	}
	put := func(r int, vals [4]string) {
		for i, col := range []string{"C", "E", "R", "AE"} {
			if err := f.SetCellValue(sheet, col+strconv.Itoa(r), vals[i]); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := f.SetCellValue(sheet, "A1", "pCon export"); err != nil {
		t.Fatal(err)
	}
	put(3, [4]string{"Article No.", "Quantity", "Short text", "Variant text"})
	for i, r := range rows {
		put(4+i, r)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf.Bytes()
}

func TestNewConversion(t *testing.T) {
	rows := []ReconciledRow{row("A", "1", "Sofa", ""), row("B", "2", "Lamp", "")}
	conv := NewConversion("conv-1", "export.csv", nil, rows)

	if conv.ID != "conv-1" || conv.FileName != "export.csv" {
		t.Errorf("ID, FileName = %q, %q", conv.ID, conv.FileName)
	}
	if conv.Stats.Rows != 2 || conv.Stats.Library.None != 2 {
		t.Errorf("Stats = %+v", conv.Stats)
	}
	if conv.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestService_Convert(t *testing.T) {
	set := testSet(t)
	svc := newTestService(t, set, testConfig())

	data := pconUpload(t, [][4]string{
		{"1234-56", "2", "CHAIR", ""},
		{"SPECIAL 99-A", "1", "TABLE", "OAK"},
		{"", "7", "no article", ""},
		{"XYZ", "3", "LAMP", "LIGHT OPTION: OFF"},
		{"ALL COLORS-5", "1", "SOFA", ""},
	})

	conv, err := svc.Convert(context.Background(), "setting.xlsx", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	if _, err := uuid.Parse(conv.ID); err != nil || conv.Layout != "pcon/v2" {
		t.Errorf("ID, Layout = %q, %q", conv.ID, conv.Layout)
	}
	if len(conv.Rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(conv.Rows))
	}

	wantTiers := []Tier{TierBase, TierSpecial, TierNone, TierNone}
	for i, want := range wantTiers {
		if conv.Rows[i].LibraryTier != want {
			t.Errorf("row %d library tier = %v, want %v", i, conv.Rows[i].LibraryTier, want)
		}
	}
	if conv.Rows[0].MasterTier != TierDirect {
		t.Errorf("row 0 master tier = %v, want DIRECT", conv.Rows[0].MasterTier)
	}
	if conv.Stats.Library.Matched() != 2 || conv.Stats.Master.Matched() != 1 {
		t.Errorf("Stats = %+v", conv.Stats)
	}

	var texts []string
	for _, l := range conv.Presentation() {
		texts = append(texts, l.Text)
	}
	wantTexts := "2 X FIBER CHAIR|3 X LAMP|1 X OAK TABLE|1 X SOFA"
	if got := strings.Join(texts, "|"); got != wantTexts {
		t.Errorf("presentation = %q, want %q", got, wantTexts)
	}

	order := conv.OrderImport()
	if order[1].ArticleNo != "SPECIAL 99" || order[1].Quantity != "1" {
		t.Errorf("order line 1 = %+v", order[1])
	}

	mapping := conv.ItemMapping()
	if mapping.Columns[len(mapping.Columns)-1] != catalog.ColMatchStatus {
		t.Errorf("mapping columns = %v", mapping.Columns)
	}
	if mapping.Rows[0][len(mapping.Columns)-1] != "matched" {
		t.Errorf("mapping row 0 = %v", mapping.Rows[0])
	}

	masterData := conv.MasterData()
	if masterData.Rows[0][4] != "Black" {
		t.Errorf("master row 0 = %v", masterData.Rows[0])
	}
}

func TestService_ConvertCSV(t *testing.T) {
	cfg := testConfig()
	cfg.Extract.Layout = "pcon-header"
	svc := newTestService(t, testSet(t), cfg)

	csv := "Article No.;Quantity;Short Text;Variant Text\n1234-56;2;Chair;\n"
	conv, err := svc.Convert(context.Background(), "export.csv", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if len(conv.Rows) != 1 || conv.Rows[0].LibraryTier != TierBase {
		t.Errorf("rows = %+v", conv.Rows)
	}
}

func TestService_ConfigErrorBeforeRows(t *testing.T) {
	svc := newTestService(t, nil, testConfig())

	_, err := svc.Convert(context.Background(), "x.xlsx", failReader{t})
	if !catalog.IsConfigError(err) {
		t.Fatalf("Convert() error = %v, want configuration error", err)
	}
	if MapError(err).Code != "CAT002" {
		t.Errorf("code = %q, want CAT002", MapError(err).Code)
	}
}

func TestService_MalformedUpload(t *testing.T) {
	svc := newTestService(t, testSet(t), testConfig())

	f := excelize.NewFile()
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.Convert(context.Background(), "wrong.xlsx", bytes.NewReader(buf.Bytes()))
	if !errors.Is(err, extract.ErrSheetNotFound) {
		t.Fatalf("Convert() error = %v, want ErrSheetNotFound", err)
	}
}

func TestService_UnsupportedFile(t *testing.T) {
	svc := newTestService(t, testSet(t), testConfig())

	_, err := svc.Convert(context.Background(), "legacy.xls", strings.NewReader("x"))
	if !errors.Is(err, tabular.ErrUnsupportedFormat) {
		t.Fatalf("Convert() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestService_FileTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.Upload.MaxFileSize = 8
	svc := newTestService(t, testSet(t), cfg)

	_, err := svc.Convert(context.Background(), "big.csv", strings.NewReader(strings.Repeat("a", 64)))
	if err == nil || MapError(err).Code != "FILE001" {
		t.Fatalf("Convert() error = %v, want FILE001", err)
	}
}

func TestService_Busy(t *testing.T) {
	cfg := testConfig()
	cfg.Upload.MaxConcurrent = 1
	cfg.Upload.MaxWaitTime = 20 * time.Millisecond
	svc := newTestService(t, testSet(t), cfg)

	if err := svc.limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer svc.limiter.Release()

	_, err := svc.Convert(context.Background(), "x.csv", strings.NewReader("a"))
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("Convert() error = %v, want ErrBusy", err)
	}
	if st := svc.LimiterStatus(); st.Active != 1 {
		t.Errorf("LimiterStatus = %+v", st)
	}
}

func TestNewService_BadLayout(t *testing.T) {
	cfg := testConfig()
	cfg.Extract.Layout = "legacy"
	if _, err := NewService(staticProvider{}, cfg); err == nil {
		t.Fatal("NewService() expected error for unknown layout")
	}
}
