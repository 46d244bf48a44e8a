package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/productlist/internal/catalog"
	"github.com/JonMunkholm/productlist/internal/render"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func env(vars map[string]string) func(string) string {
	return func(name string) string { return vars[name] }
}

// fixtures writes catalogs and an export into a temp dir.
func fixtures(t *testing.T) (dir, library, master, export string) {
	t.Helper()
	dir = t.TempDir()
	library = writeFile(t, dir, "library.csv", "EUR ITEM NO.;PRODUCT\n1234;Fiber Chair\n99;Oak Table\n")
	master = writeFile(t, dir, "master.csv", "ITEM NO.;COLOUR\n1234-56;Black\n")
	export = writeFile(t, dir, "export.csv",
		"Article No.;Quantity;Short Text;Variant Text\n1234-56;2;Chair;\nSPECIAL 99-A;1;Table;Oak\nXYZ;3;Lamp;\n")
	return dir, library, master, export
}

func TestConvertCommand(t *testing.T) {
	dir, library, master, export := fixtures(t)
	outDir := filepath.Join(dir, "out")

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(env(nil))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{
		export,
		"--library", library,
		"--master", master,
		"--layout", "pcon-header",
		"-o", outDir,
		"-a", "order-import-csv,presentation",
	})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v\nstderr: %s", err, stderr.String())
	}

	csvOut, err := os.ReadFile(filepath.Join(outDir, "order-import.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if got := string(csvOut); got != "2;1234\n1;SPECIAL 99\n3;XYZ\n" {
		t.Errorf("order-import.csv = %q", got)
	}
	if _, err := os.Stat(filepath.Join(outDir, "product-list_presentation.docx")); err != nil {
		t.Errorf("presentation not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "masterdata-SKUmapping.xlsx")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("unselected artifact written: %v", err)
	}

	summary := stdout.String()
	for _, want := range []string{"export.csv (pcon-header/v1): 3 rows", "library: 2 matched (direct 0, base 1, special 1), 1 unmatched"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
}

func TestConvertCommand_FallbackFlags(t *testing.T) {
	dir, library, master, export := fixtures(t)

	var stdout bytes.Buffer
	cmd := newRootCmd(env(map[string]string{
		"CATALOG_LIBRARY_PATH": library,
		"CATALOG_MASTER_PATH":  master,
		"EXTRACT_LAYOUT":       "pcon-header",
	}))
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{export, "-o", dir, "-a", "order-import", "--no-base-fallback", "--no-special-fallback"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(stdout.String(), "library: 0 matched") {
		t.Errorf("summary = %s", stdout.String())
	}
}

func TestConvertCommand_Errors(t *testing.T) {
	dir, library, master, export := fixtures(t)
	badLibrary := writeFile(t, dir, "bad.csv", "SKU;NAME\n1;x\n")

	tests := []struct {
		name  string
		args  []string
		check func(error) bool
	}{
		{
			name:  "unknown artifact",
			args:  []string{export, "--library", library, "--master", master, "-a", "pdf"},
			check: func(err error) bool { return errors.Is(err, render.ErrUnknownArtifact) },
		},
		{
			name:  "missing catalog column",
			args:  []string{export, "--library", badLibrary, "--master", master},
			check: func(err error) bool { return errors.Is(err, catalog.ErrMissingColumn) },
		},
		{
			name:  "missing catalog file",
			args:  []string{export, "--library", filepath.Join(dir, "nope.xlsx"), "--master", master},
			check: func(err error) bool { return errors.Is(err, catalog.ErrUnavailable) },
		},
		{
			name:  "bad layout",
			args:  []string{export, "--library", library, "--master", master, "--layout", "legacy"},
			check: func(err error) bool { return err != nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newRootCmd(env(nil))
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs(append(tt.args, "-o", filepath.Join(dir, "out")))

			err := cmd.Execute()
			if err == nil || !tt.check(err) {
				t.Errorf("Execute() error = %v", err)
			}
		})
	}
}

func TestArtifactsCommand(t *testing.T) {
	var stdout bytes.Buffer
	cmd := newRootCmd(env(nil))
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"artifacts"})

	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != len(render.All()) || !strings.HasPrefix(lines[0], "presentation") {
		t.Errorf("artifacts output:\n%s", stdout.String())
	}
}

func TestArtifactFlagUsage(t *testing.T) {
	usage := newRootCmd(env(nil)).Flags().Lookup("artifact").Usage
	for _, key := range render.Keys() {
		if !strings.Contains(usage, key) {
			t.Errorf("--artifact usage %q missing %q", usage, key)
		}
	}
}
