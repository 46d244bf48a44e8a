package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadFrom(func(string) string { return "" })
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Upload.MaxConcurrent != 4 {
		t.Errorf("Upload.MaxConcurrent = %d, want %d", cfg.Upload.MaxConcurrent, 4)
	}
	if cfg.Upload.MaxFileSize != 20971520 {
		t.Errorf("Upload.MaxFileSize = %d, want %d", cfg.Upload.MaxFileSize, 20971520)
	}
	if cfg.Catalog.Source != "file" {
		t.Errorf("Catalog.Source = %q, want %q", cfg.Catalog.Source, "file")
	}
	if cfg.Extract.Layout != "pcon" {
		t.Errorf("Extract.Layout = %q, want %q", cfg.Extract.Layout, "pcon")
	}
	if cfg.Extract.SkipRows != -1 || cfg.Extract.ArticleColumn != -1 {
		t.Errorf("Extract overrides = (%d, %d), want (-1, -1)", cfg.Extract.SkipRows, cfg.Extract.ArticleColumn)
	}
	if !cfg.Match.BaseFallback || !cfg.Match.SpecialFallback {
		t.Error("Match fallbacks should default to enabled")
	}
	if cfg.Match.RejectMarker != "ALL COLORS" {
		t.Errorf("Match.RejectMarker = %q, want %q", cfg.Match.RejectMarker, "ALL COLORS")
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("UPLOAD_MAX_CONCURRENT", "10")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MATCH_SPECIAL_FALLBACK", "false")
	t.Setenv("EXTRACT_SKIP_ROWS", "1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Upload.MaxConcurrent != 10 {
		t.Errorf("Upload.MaxConcurrent = %d, want %d", cfg.Upload.MaxConcurrent, 10)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Match.SpecialFallback {
		t.Error("Match.SpecialFallback = true, want false")
	}
	if cfg.Extract.SkipRows != 1 {
		t.Errorf("Extract.SkipRows = %d, want 1", cfg.Extract.SkipRows)
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	t.Setenv("CATALOG_SOURCE", "postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_URL", "postgres://localhost/alttest")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Catalog.DatabaseURL != "postgres://localhost/alttest" {
		t.Errorf("Catalog.DatabaseURL = %q, want %q", cfg.Catalog.DatabaseURL, "postgres://localhost/alttest")
	}
}

func TestLoad_PostgresRequiresURL(t *testing.T) {
	t.Setenv("CATALOG_SOURCE", "postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_URL", "")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for postgres source without DATABASE_URL")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("error %q should mention DATABASE_URL", err)
	}
}

func TestLoad_Duration(t *testing.T) {
	t.Setenv("SERVER_READ_TIMEOUT", "45s")
	t.Setenv("UPLOAD_MAX_WAIT_TIME", "1m30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.ReadTimeout != 45*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want %v", cfg.Server.ReadTimeout, 45*time.Second)
	}
	if cfg.Upload.MaxWaitTime != 90*time.Second {
		t.Errorf("Upload.MaxWaitTime = %v, want %v", cfg.Upload.MaxWaitTime, 90*time.Second)
	}
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("SERVER_PORT", "eighty")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for non-numeric SERVER_PORT")
	}
	if !strings.Contains(err.Error(), "SERVER_PORT") {
		t.Errorf("error %q should name the variable", err)
	}
}

func TestLoad_CommaSeparatedSlice(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 172.16.0.0/12 , 192.168.0.0/16")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	expected := []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}
	if len(cfg.Security.TrustedProxies) != len(expected) {
		t.Fatalf("TrustedProxies length = %d, want %d", len(cfg.Security.TrustedProxies), len(expected))
	}
	for i, v := range expected {
		if cfg.Security.TrustedProxies[i] != v {
			t.Errorf("TrustedProxies[%d] = %q, want %q", i, cfg.Security.TrustedProxies[i], v)
		}
	}
}

func validConfig() *Config {
	return &Config{
		Server:  ServerConfig{Port: 8080, ShutdownTimeout: time.Second, RequestTimeout: time.Second},
		Upload:  UploadConfig{MaxFileSize: 1, MaxConcurrent: 1, MaxWaitTime: time.Second},
		Catalog: CatalogConfig{Source: "file", LibraryPath: "lib.xlsx", MasterPath: "master.xlsx", LoadTimeout: time.Second},
		Extract: ExtractConfig{Layout: "pcon", SkipRows: -1, ArticleColumn: -1, QuantityColumn: -1, ShortTextColumn: -1, VariantTextColumn: -1},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"invalid port", func(c *Config) { c.Server.Port = 70000 }, "SERVER_PORT"},
		{"unknown catalog source", func(c *Config) { c.Catalog.Source = "s3" }, "CATALOG_SOURCE"},
		{"missing library path", func(c *Config) { c.Catalog.LibraryPath = "" }, "CATALOG_LIBRARY_PATH"},
		{"api key required", func(c *Config) { c.Security.RequireAPIKey = true }, "API_KEYS"},
		{"negative column", func(c *Config) { c.Extract.QuantityColumn = -5 }, "EXTRACT_QUANTITY_COLUMN"},
		{"empty layout", func(c *Config) { c.Extract.Layout = " " }, "EXTRACT_LAYOUT"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
		{"rate limit zero", func(c *Config) { c.Rate.Enabled = true }, "RATE_LIMIT_REQUESTS_PER_MINUTE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	for _, want := range []string{"SERVER_PORT", "LOG_LEVEL"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestServerConfig_Addr(t *testing.T) {
	c := ServerConfig{Host: "127.0.0.1", Port: 8081}
	if got := c.Addr(); got != "127.0.0.1:8081" {
		t.Errorf("Addr() = %q, want %q", got, "127.0.0.1:8081")
	}
	c.Host = ""
	if got := c.Addr(); got != ":8081" {
		t.Errorf("Addr() = %q, want %q", got, ":8081")
	}
}

func TestString_MasksSecrets(t *testing.T) {
	cfg := validConfig()
	cfg.Catalog.DatabaseURL = "postgres://user:secret@db/catalogs"
	cfg.Security.APIKeys = []string{"topsecret"}

	s := cfg.String()
	if strings.Contains(s, "secret@db") || strings.Contains(s, "topsecret") {
		t.Errorf("String() leaked a secret: %s", s)
	}
}
