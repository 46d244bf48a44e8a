package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/productlist/internal/catalog"
	"github.com/JonMunkholm/productlist/internal/config"
	"github.com/JonMunkholm/productlist/internal/core"
	"github.com/JonMunkholm/productlist/internal/extract"
	"github.com/JonMunkholm/productlist/internal/logging"
	"github.com/JonMunkholm/productlist/internal/render"
	"github.com/spf13/cobra"
)

type convertOptions struct {
	outDir    string
	artifacts []string
}

// flagEnv maps flags onto the environment variables they override, so
// flag values pass through the same loading and validation as the server.
var flagEnv = map[string]string{
	"library":    "CATALOG_LIBRARY_PATH",
	"master":     "CATALOG_MASTER_PATH",
	"layout":     "EXTRACT_LAYOUT",
	"sheet":      "EXTRACT_SHEET",
	"log-level":  "LOG_LEVEL",
	"log-format": "LOG_FORMAT",
}

func newRootCmd(getenv config.Lookup) *cobra.Command {
	var opts convertOptions

	cmd := &cobra.Command{
		Use:   "convert <export.xlsx|export.csv>",
		Short: "Convert a configurator export into product list artifacts",
		Long: `Convert reads an article list exported from the configurator, matches every
article against the library and master data catalogs, and writes the
selected artifacts to the output directory.

Catalogs and layout come from the same environment variables as the server
(CATALOG_*, EXTRACT_*, MATCH_*); flags override them.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, getenv)
			if err != nil {
				return err
			}
			logging.SetupWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
			return runConvert(cmd.Context(), cfg, args[0], opts, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.outDir, "out", "o", ".", "Output directory")
	f.StringSliceVarP(&opts.artifacts, "artifact", "a", nil, "Artifacts to write: "+strings.Join(render.Keys(), ", ")+" (default: all)")
	f.String("library", "", "Library catalog file (implies file catalogs)")
	f.String("master", "", "Master data catalog file (implies file catalogs)")
	f.String("layout", "", "Upload layout preset: "+strings.Join(extract.PresetNames(), ", "))
	f.String("sheet", "", "Sheet holding the article list")
	f.Bool("no-base-fallback", false, "Disable matching on the code before the first '-'")
	f.Bool("no-special-fallback", false, "Disable matching with the special prefix removed")
	f.String("log-level", "", "Log level: debug, info, warn, error")
	f.String("log-format", "", "Log format: text or json")

	cmd.AddCommand(newArtifactsCmd())
	return cmd
}

func newArtifactsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "artifacts",
		Short: "List the artifacts convert can write",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, def := range render.All() {
				fmt.Fprintf(w, "%-18s %-32s %s\n", def.Key, def.FileName, def.Description)
			}
			return nil
		},
	}
}

// loadConfig layers changed flags over getenv and loads the config.
func loadConfig(cmd *cobra.Command, getenv config.Lookup) (*config.Config, error) {
	overrides := make(map[string]string)
	flags := cmd.Flags()

	for name, env := range flagEnv {
		if flags.Changed(name) {
			v, err := flags.GetString(name)
			if err != nil {
				return nil, err
			}
			overrides[env] = v
		}
	}
	if flags.Changed("library") || flags.Changed("master") {
		overrides["CATALOG_SOURCE"] = "file"
	}
	if off, _ := flags.GetBool("no-base-fallback"); off {
		overrides["MATCH_BASE_FALLBACK"] = "false"
	}
	if off, _ := flags.GetBool("no-special-fallback"); off {
		overrides["MATCH_SPECIAL_FALLBACK"] = "false"
	}

	return config.LoadFrom(func(name string) string {
		if v, ok := overrides[name]; ok {
			return v
		}
		return getenv(name)
	})
}

// runConvert loads the catalogs, converts input and writes the artifacts.
func runConvert(ctx context.Context, cfg *config.Config, input string, opts convertOptions, out io.Writer) error {
	defs, err := selectArtifacts(opts.artifacts)
	if err != nil {
		return err
	}

	library, master, closeSources, err := catalog.NewSources(ctx, cfg.Catalog)
	if err != nil {
		return err
	}
	defer closeSources()

	store := catalog.NewStore(library, master)
	loadCtx, cancel := context.WithTimeout(ctx, cfg.Catalog.LoadTimeout)
	_, err = store.Load(loadCtx)
	cancel()
	if err != nil {
		return err
	}

	service, err := core.NewService(store, cfg)
	if err != nil {
		return err
	}

	f, err := os.Open(input)
	if err != nil {
		return err
	}
	defer f.Close()

	conv, err := service.Convert(ctx, filepath.Base(input), f)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	var written []string
	for _, def := range defs {
		path := filepath.Join(opts.outDir, def.FileName)
		if err := writeArtifact(path, def, conv); err != nil {
			return err
		}
		written = append(written, path)
	}

	printSummary(out, conv, written)
	return nil
}

func selectArtifacts(keys []string) ([]render.Definition, error) {
	if len(keys) == 0 {
		return render.All(), nil
	}
	defs := make([]render.Definition, 0, len(keys))
	for _, k := range keys {
		def, err := render.Lookup(strings.TrimSpace(k))
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func writeArtifact(path string, def render.Definition, conv *core.Conversion) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	if err := def.Renderer.Render(f, conv); err != nil {
		return fmt.Errorf("render %s: %w", def.Key, err)
	}
	return nil
}

func printSummary(w io.Writer, conv *core.Conversion, written []string) {
	st := conv.Stats
	fmt.Fprintf(w, "%s (%s): %d rows\n", conv.FileName, conv.Layout, st.Rows)
	fmt.Fprintf(w, "  library: %d matched (direct %d, base %d, special %d), %d unmatched\n",
		st.Library.Matched(), st.Library.Direct, st.Library.Base, st.Library.Special, st.Library.None)
	fmt.Fprintf(w, "  master:  %d matched (direct %d, base %d, special %d), %d unmatched\n",
		st.Master.Matched(), st.Master.Direct, st.Master.Base, st.Master.Special, st.Master.None)
	for _, p := range written {
		fmt.Fprintf(w, "  wrote %s\n", p)
	}
}
