package core

import (
	"fmt"

	"github.com/JonMunkholm/productlist/internal/catalog"
	"github.com/JonMunkholm/productlist/internal/extract"
)

// Tier is the matching level that bound a catalog entry to a row.
type Tier int

const (
	TierNone Tier = iota
	TierDirect
	TierBase
	TierSpecial
)

var tierNames = map[Tier]string{
	TierNone:    "NONE",
	TierDirect:  "DIRECT",
	TierBase:    "FALLBACK_BASE",
	TierSpecial: "FALLBACK_SPECIAL",
}

func (t Tier) String() string {
	if s, ok := tierNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Tier(%d)", int(t))
}

// MarshalText encodes the tier by name.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ReconciledRow is a UserRow joined with its catalog matches. Library and
// Master are nil when the corresponding tier is TierNone. Values are never
// modified after reconciliation.
type ReconciledRow struct {
	extract.UserRow

	Library     *catalog.LibraryEntry `json:"library,omitempty"`
	LibraryTier Tier                  `json:"libraryTier"`
	LibraryKey  string                `json:"libraryKey,omitempty"`

	Master     *catalog.MasterEntry `json:"-"`
	MasterTier Tier                 `json:"masterTier"`
	MasterKey  string               `json:"masterKey,omitempty"`
}

// TierCounts tallies rows per tier for one catalog.
type TierCounts struct {
	Direct  int `json:"direct"`
	Base    int `json:"base"`
	Special int `json:"special"`
	None    int `json:"none"`
}

func (c *TierCounts) add(t Tier) {
	switch t {
	case TierDirect:
		c.Direct++
	case TierBase:
		c.Base++
	case TierSpecial:
		c.Special++
	default:
		c.None++
	}
}

// Matched returns the number of rows bound at any tier.
func (c TierCounts) Matched() int {
	return c.Direct + c.Base + c.Special
}

// Stats summarizes one reconciliation run.
type Stats struct {
	Rows    int        `json:"rows"`
	Library TierCounts `json:"library"`
	Master  TierCounts `json:"master"`
}

// Summarize counts tiers over rows.
func Summarize(rows []ReconciledRow) Stats {
	s := Stats{Rows: len(rows)}
	for _, r := range rows {
		s.Library.add(r.LibraryTier)
		s.Master.add(r.MasterTier)
	}
	return s
}
