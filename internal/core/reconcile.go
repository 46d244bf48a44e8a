package core

import (
	"github.com/JonMunkholm/productlist/internal/catalog"
	"github.com/JonMunkholm/productlist/internal/extract"
)

// Engine matches user rows against one Library and one Master catalog.
// It holds no mutable state; one Engine may serve any number of goroutines.
type Engine struct {
	library *catalog.Library
	master  *catalog.Master
	opts    MatchOptions
}

// NewEngine checks that both catalogs are present. Column problems were
// already rejected when the catalogs were built, so a returned Engine can
// reconcile every row.
func NewEngine(library *catalog.Library, master *catalog.Master, opts MatchOptions) (*Engine, error) {
	if library == nil {
		return nil, &catalog.ConfigError{Catalog: catalog.LibraryName, Err: catalog.ErrUnavailable}
	}
	if master == nil {
		return nil, &catalog.ConfigError{Catalog: catalog.MasterName, Err: catalog.ErrUnavailable}
	}
	return &Engine{library: library, master: master, opts: opts}, nil
}

// NewEngineForSet is NewEngine over a loaded catalog set.
func NewEngineForSet(set *catalog.Set, opts MatchOptions) (*Engine, error) {
	if set == nil {
		return nil, &catalog.ConfigError{Catalog: catalog.LibraryName, Err: catalog.ErrUnavailable}
	}
	return NewEngine(set.Library, set.Master, opts)
}

// Reconcile resolves one row against both catalogs independently.
func (e *Engine) Reconcile(row extract.UserRow) ReconciledRow {
	cands := Candidates(row.ArticleNo, e.opts)

	out := ReconciledRow{UserRow: row}
	out.Library, out.LibraryTier, out.LibraryKey = resolve(cands, e.library.Lookup, e.opts)
	out.Master, out.MasterTier, out.MasterKey = resolve(cands, e.master.Lookup, e.opts)
	return out
}

// ReconcileAll reconciles rows in order.
func (e *Engine) ReconcileAll(rows []extract.UserRow) []ReconciledRow {
	out := make([]ReconciledRow, len(rows))
	for i, r := range rows {
		out[i] = e.Reconcile(r)
	}
	return out
}

// resolve walks the candidates in tier order and returns the first hit
// whose key is not rejected.
func resolve[E any](cands []Candidate, lookup func(string) (*E, bool), opts MatchOptions) (*E, Tier, string) {
	for _, c := range cands {
		entry, ok := lookup(c.Key)
		if !ok {
			continue
		}
		if opts.rejected(c.Key) {
			continue
		}
		return entry, c.Tier, c.Key
	}
	return nil, TierNone, ""
}
