package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/productlist/internal/config"
	"github.com/JonMunkholm/productlist/internal/tabular"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Source produces a catalog Table on demand.
type Source interface {
	Load(ctx context.Context) (*Table, error)
	String() string
}

// FileSource reads a catalog from an xlsx or delimited file on disk.
type FileSource struct {
	Name  string // catalog name for errors and logs
	Path  string
	Sheet string // empty selects the first sheet
}

func (s *FileSource) String() string { return "file:" + s.Path }

// Load reads the file and uses the first non-blank row of the selected sheet
// as the header.
func (s *FileSource) Load(ctx context.Context) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Path == "" {
		return nil, &ConfigError{Catalog: s.Name, Err: ErrUnavailable}
	}

	wb, err := tabular.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ConfigError{Catalog: s.Name, Err: fmt.Errorf("%w: %s", ErrUnavailable, s.Path)}
		}
		return nil, fmt.Errorf("%s catalog %s: %w", s.Name, s.Path, err)
	}

	sheet := wb.First()
	if s.Sheet != "" {
		sheet, _ = wb.Sheet(s.Sheet)
	}
	if sheet == nil {
		return nil, &ConfigError{
			Catalog: s.Name,
			Err:     fmt.Errorf("%w: sheet %q not found in %s", ErrUnavailable, s.Sheet, s.Path),
		}
	}

	return TableFromSheet(s.Name, sheet)
}

// Querier is the subset of pgxpool.Pool used by PostgresSource.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource reads a catalog from a database table. Column names come
// from the result set, so the table may carry any extra columns.
type PostgresSource struct {
	Name  string
	DB    Querier
	Table string // optionally schema qualified
}

func (s *PostgresSource) String() string { return "postgres:" + s.Table }

// Load runs SELECT * against the table and renders every value as text.
func (s *PostgresSource) Load(ctx context.Context) (*Table, error) {
	if s.DB == nil || s.Table == "" {
		return nil, &ConfigError{Catalog: s.Name, Err: ErrUnavailable}
	}

	query := "SELECT * FROM " + pgx.Identifier(strings.Split(s.Table, ".")).Sanitize()
	rows, err := s.DB.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s catalog query %s: %w", s.Name, s.Table, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	header := make([]string, len(fields))
	for i, f := range fields {
		header[i] = f.Name
	}

	var data [][]string
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("%s catalog scan %s: %w", s.Name, s.Table, err)
		}
		record := make([]string, len(values))
		for i, v := range values {
			record[i] = formatValue(v)
		}
		data = append(data, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s catalog read %s: %w", s.Name, s.Table, err)
	}

	return NewTable(s.Name, header, data), nil
}

// formatValue renders a database value as catalog text.
func formatValue(v any) string {
	if v == nil {
		return ""
	}

	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)

	case pgtype.Numeric:
		if !val.Valid {
			return ""
		}
		f, err := val.Float64Value()
		if err != nil || !f.Valid {
			return ""
		}
		return strconv.FormatFloat(f.Float64, 'f', -1, 64)

	case pgtype.Text:
		if !val.Valid {
			return ""
		}
		return val.String

	case pgtype.Date:
		if !val.Valid {
			return ""
		}
		return val.Time.Format("2006-01-02")

	case pgtype.Bool:
		if !val.Valid {
			return ""
		}
		return strconv.FormatBool(val.Bool)

	case time.Time:
		if val.IsZero() {
			return ""
		}
		return val.Format("2006-01-02")

	case bool:
		return strconv.FormatBool(val)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)

	default:
		return fmt.Sprint(val)
	}
}

// NewSources builds the library and master sources described by cfg.
// For the postgres source it opens a pool; the returned close function
// releases it and is never nil.
func NewSources(ctx context.Context, cfg config.CatalogConfig) (library, master Source, closeFn func(), err error) {
	closeFn = func() {}

	switch strings.ToLower(cfg.Source) {
	case "file":
		library = &FileSource{Name: LibraryName, Path: cfg.LibraryPath, Sheet: cfg.LibrarySheet}
		master = &FileSource{Name: MasterName, Path: cfg.MasterPath, Sheet: cfg.MasterSheet}
		return library, master, closeFn, nil

	case "postgres":
		poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, closeFn, fmt.Errorf("parse database URL: %w", err)
		}
		poolConfig.MaxConns = int32(cfg.MaxConns)
		poolConfig.MinConns = int32(cfg.MinConns)
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, nil, closeFn, fmt.Errorf("connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, closeFn, fmt.Errorf("ping database: %w", err)
		}
		slog.Info("connected to catalog database",
			"database", poolConfig.ConnConfig.Database,
			"library_table", cfg.LibraryTable,
			"master_table", cfg.MasterTable,
		)

		library = &PostgresSource{Name: LibraryName, DB: pool, Table: cfg.LibraryTable}
		master = &PostgresSource{Name: MasterName, DB: pool, Table: cfg.MasterTable}
		return library, master, pool.Close, nil

	default:
		return nil, nil, closeFn, &ConfigError{
			Catalog: "catalog",
			Err:     fmt.Errorf("unknown source %q", cfg.Source),
		}
	}
}
