package catalog

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Set is one consistent, immutable pair of catalogs. Conversions hold on to
// the Set they started with, so a reload never changes a running conversion.
type Set struct {
	Library  *Library
	Master   *Master
	LoadedAt time.Time
}

// Status summarizes the active catalogs.
type Status struct {
	Loaded            bool      `json:"loaded"`
	LibrarySource     string    `json:"librarySource"`
	MasterSource      string    `json:"masterSource"`
	LibraryEntries    int       `json:"libraryEntries"`
	LibraryDuplicates int       `json:"libraryDuplicates"`
	MasterEntries     int       `json:"masterEntries"`
	MasterDuplicates  int       `json:"masterDuplicates"`
	MasterColumns     []string  `json:"masterColumns"`
	HasMatchStatus    bool      `json:"hasMatchStatus"`
	LoadedAt          time.Time `json:"loadedAt,omitzero"`
}

// Store owns the active catalog Set. Readers call Current without locking;
// Load swaps in a new Set only after both catalogs validated.
type Store struct {
	library Source
	master  Source

	current atomic.Pointer[Set]
	mu      sync.Mutex // serializes Load
}

// NewStore creates an empty store. Call Load before the first conversion.
func NewStore(library, master Source) *Store {
	return &Store{library: library, master: master}
}

// Load reads and validates both catalogs. On failure the previous Set stays
// active and the error is returned.
func (s *Store) Load(ctx context.Context) (*Set, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()

	libTable, err := s.library.Load(ctx)
	if err != nil {
		return nil, err
	}
	lib, err := NewLibrary(libTable)
	if err != nil {
		return nil, err
	}

	masterTable, err := s.master.Load(ctx)
	if err != nil {
		return nil, err
	}
	master, err := NewMaster(masterTable)
	if err != nil {
		return nil, err
	}

	set := &Set{Library: lib, Master: master, LoadedAt: time.Now()}
	s.current.Store(set)

	slog.Info("catalogs loaded",
		"library", s.library.String(),
		"library_entries", lib.Len(),
		"master", s.master.String(),
		"master_entries", master.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return set, nil
}

// Current returns the active Set, or nil before the first successful Load.
func (s *Store) Current() *Set {
	return s.current.Load()
}

// Status describes the active Set.
func (s *Store) Status() Status {
	st := Status{
		LibrarySource: s.library.String(),
		MasterSource:  s.master.String(),
	}
	set := s.Current()
	if set == nil {
		return st
	}

	st.Loaded = true
	st.LibraryEntries = set.Library.Len()
	st.LibraryDuplicates = set.Library.Duplicates()
	st.HasMatchStatus = set.Library.HasMatchStatus()
	st.MasterEntries = set.Master.Len()
	st.MasterDuplicates = set.Master.Duplicates()
	st.MasterColumns = set.Master.Columns()
	st.LoadedAt = set.LoadedAt
	return st
}
