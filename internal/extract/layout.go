// Package extract turns the article list of a configurator export into
// UserRows according to a named Layout.
package extract

import (
	"fmt"
	"sort"
	"strings"

	"github.com/JonMunkholm/productlist/internal/config"
)

// Field names one value read from an uploaded row. The value doubles as the
// header text header-based layouts look for.
type Field string

const (
	FieldArticle     Field = "ARTICLE NO."
	FieldQuantity    Field = "QUANTITY"
	FieldShortText   Field = "SHORT TEXT"
	FieldVariantText Field = "VARIANT TEXT"
)

// Fields lists every extracted field in output order.
var Fields = []Field{FieldArticle, FieldQuantity, FieldShortText, FieldVariantText}

// Layout describes where the fields live in an upload.
//
// A fixed layout (HeaderSearchRows == 0) skips SkipRows leading rows, drops
// one more row when HeaderRow is set, and reads every field from Columns.
// A header layout scans the first HeaderSearchRows rows for a row naming the
// fields; Columns entries, if any, pin a field to a position regardless of
// the header.
type Layout struct {
	Name    string
	Version int
	Sheet   string

	SkipRows  int
	HeaderRow bool
	Columns   map[Field]int

	HeaderSearchRows int
	Aliases          map[Field][]string
	Required         []Field
}

// DefaultHeaderSearchRows bounds the header scan of header layouts.
const DefaultHeaderSearchRows = 10

var presets = map[string]Layout{
	"pcon": {
		Name:      "pcon",
		Version:   2,
		Sheet:     "Article List",
		SkipRows:  2,
		HeaderRow: true,
		Columns: map[Field]int{
			FieldArticle:     2,
			FieldQuantity:    4,
			FieldShortText:   17,
			FieldVariantText: 30,
		},
		Required: []Field{FieldArticle},
	},
	"pcon-header": {
		Name:             "pcon-header",
		Version:          1,
		Sheet:            "Article List",
		HeaderSearchRows: DefaultHeaderSearchRows,
		Aliases: map[Field][]string{
			FieldArticle:     {"ARTICLE NUMBER", "ITEM NO.", "ITEM NUMBER"},
			FieldQuantity:    {"QTY", "QTY."},
			FieldShortText:   {"DESCRIPTION"},
			FieldVariantText: {"VARIANT"},
		},
		Required: []Field{FieldArticle, FieldQuantity},
	},
}

// Preset returns a copy of a named layout.
func Preset(name string) (Layout, error) {
	p, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Layout{}, fmt.Errorf("unknown extraction layout %q (known: %s)", name, strings.Join(PresetNames(), ", "))
	}
	return p.clone(), nil
}

// PresetNames lists the registered layouts, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// FromConfig resolves the configured preset and applies its overrides.
// Negative override values keep the preset's setting.
func FromConfig(cfg config.ExtractConfig) (Layout, error) {
	l, err := Preset(cfg.Layout)
	if err != nil {
		return Layout{}, err
	}

	if s := strings.TrimSpace(cfg.Sheet); s != "" {
		l.Sheet = s
	}
	if cfg.SkipRows >= 0 {
		l.SkipRows = cfg.SkipRows
	}
	for f, col := range map[Field]int{
		FieldArticle:     cfg.ArticleColumn,
		FieldQuantity:    cfg.QuantityColumn,
		FieldShortText:   cfg.ShortTextColumn,
		FieldVariantText: cfg.VariantTextColumn,
	} {
		if col >= 0 {
			l.Columns[f] = col
		}
	}

	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// Validate checks that a layout can locate every field.
func (l Layout) Validate() error {
	if l.Sheet == "" {
		return fmt.Errorf("layout %s: sheet name is empty", l.Name)
	}
	if l.SkipRows < 0 {
		return fmt.Errorf("layout %s: negative skip rows", l.Name)
	}
	if l.HeaderSearchRows > 0 {
		return nil
	}
	for _, f := range Fields {
		col, ok := l.Columns[f]
		if !ok {
			return fmt.Errorf("layout %s: no column for %s", l.Name, f)
		}
		if col < 0 {
			return fmt.Errorf("layout %s: negative column for %s", l.Name, f)
		}
	}
	return nil
}

// MinWidth is the narrowest sheet a fixed layout can read.
func (l Layout) MinWidth() int {
	width := 0
	for _, col := range l.Columns {
		if col+1 > width {
			width = col + 1
		}
	}
	return width
}

// String identifies the layout in logs.
func (l Layout) String() string {
	return fmt.Sprintf("%s/v%d", l.Name, l.Version)
}

func (l Layout) clone() Layout {
	c := l
	c.Columns = make(map[Field]int, len(l.Columns))
	for f, col := range l.Columns {
		c.Columns[f] = col
	}
	c.Required = append([]Field(nil), l.Required...)
	return c
}
