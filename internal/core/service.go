package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/JonMunkholm/productlist/internal/catalog"
	"github.com/JonMunkholm/productlist/internal/config"
	"github.com/JonMunkholm/productlist/internal/extract"
	"github.com/JonMunkholm/productlist/internal/logging"
	"github.com/JonMunkholm/productlist/internal/tabular"
	"github.com/google/uuid"
)

// ErrFileTooLarge is returned when an upload exceeds the configured size.
var ErrFileTooLarge = errors.New("file too large")

// CatalogProvider hands out the catalog set a conversion runs against.
// *catalog.Store implements it.
type CatalogProvider interface {
	Current() *catalog.Set
}

// Service runs conversions: read the upload, extract its rows and
// reconcile them against the current catalogs.
type Service struct {
	catalogs    CatalogProvider
	layout      extract.Layout
	match       MatchOptions
	limiter     *Limiter
	maxFileSize int64
}

// NewService builds a Service from the extraction, matching and upload
// sections of cfg.
func NewService(catalogs CatalogProvider, cfg *config.Config) (*Service, error) {
	layout, err := extract.FromConfig(cfg.Extract)
	if err != nil {
		return nil, fmt.Errorf("extraction layout: %w", err)
	}

	return &Service{
		catalogs:    catalogs,
		layout:      layout,
		match:       MatchOptionsFromConfig(cfg.Match),
		limiter:     NewLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		maxFileSize: cfg.Upload.MaxFileSize,
	}, nil
}

// Layout returns the extraction layout in use.
func (s *Service) Layout() extract.Layout { return s.layout }

// MatchOptions returns the configured tiers.
func (s *Service) MatchOptions() MatchOptions { return s.match }

// LimiterStatus reports conversion slot usage.
func (s *Service) LimiterStatus() LimiterStatus { return s.limiter.Status() }

// WaitForConversions blocks until running conversions finish or ctx ends.
func (s *Service) WaitForConversions(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// Conversion is the reconciled content of one upload. It keeps the catalog
// set it was matched against, so projections stay consistent across a
// catalog reload.
type Conversion struct {
	ID        string          `json:"id"`
	FileName  string          `json:"fileName"`
	Layout    string          `json:"layout"`
	CreatedAt time.Time       `json:"createdAt"`
	Rows      []ReconciledRow `json:"rows"`
	Stats     Stats           `json:"stats"`

	catalogs *catalog.Set
}

// Convert reads an upload and reconciles every article row.
//
// Catalog problems are reported before the upload is read. A structurally
// unreadable upload fails as a whole; unmatched rows never fail.
func (s *Service) Convert(ctx context.Context, fileName string, r io.Reader) (*Conversion, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	start := time.Now()
	id := uuid.NewString()
	ctx = logging.WithConversionID(ctx, id)
	logger := logging.WithFields(ctx, "file", fileName)

	set := s.catalogs.Current()
	engine, err := NewEngineForSet(set, s.match)
	if err != nil {
		return nil, err
	}

	data, err := s.readUpload(r)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	wb, err := tabular.Read(fileName, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", fileName, err)
	}

	rows, err := extract.Extract(wb, s.layout)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conv := NewConversion(id, fileName, set, engine.ReconcileAll(rows))
	conv.Layout = s.layout.String()

	logger.Info("conversion completed",
		"layout", conv.Layout,
		"rows", conv.Stats.Rows,
		"library_matched", conv.Stats.Library.Matched(),
		"master_matched", conv.Stats.Master.Matched(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return conv, nil
}

// NewConversion wraps reconciled rows with the catalog set they were
// matched against.
func NewConversion(id, fileName string, set *catalog.Set, rows []ReconciledRow) *Conversion {
	return &Conversion{
		ID:        id,
		FileName:  fileName,
		CreatedAt: time.Now(),
		Rows:      rows,
		Stats:     Summarize(rows),
		catalogs:  set,
	}
}

// readUpload reads at most maxFileSize bytes.
func (s *Service) readUpload(r io.Reader) ([]byte, error) {
	if s.maxFileSize <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, s.maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxFileSize {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, s.maxFileSize)
	}
	return data, nil
}

// Presentation projects the presentation lines.
func (c *Conversion) Presentation() []PresentationLine {
	return ProjectPresentation(c.Rows)
}

// OrderImport projects the order import pairs.
func (c *Conversion) OrderImport() []OrderLine {
	return ProjectOrderImport(c.Rows)
}

// ItemMapping projects the item number mapping table.
func (c *Conversion) ItemMapping() OutputTable {
	withStatus := c.catalogs != nil && c.catalogs.Library != nil && c.catalogs.Library.HasMatchStatus()
	return ProjectItemMapping(c.Rows, withStatus)
}

// MasterData projects the master data table.
func (c *Conversion) MasterData() OutputTable {
	var cols []string
	if c.catalogs != nil && c.catalogs.Master != nil {
		cols = c.catalogs.Master.Columns()
	}
	return ProjectMasterData(c.Rows, cols)
}
