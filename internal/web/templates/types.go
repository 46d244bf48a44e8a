// Package templates holds the HTML components of the web UI. Components are
// written in .templ files; the _templ.go files are generated with
// `templ generate`.
package templates

import "fmt"

// ArtifactLink is one download option on the index page.
type ArtifactLink struct {
	Key         string
	Label       string
	Description string
	FileName    string
}

// ArtifactGroup is a titled list of download options.
type ArtifactGroup struct {
	Name      string
	Artifacts []ArtifactLink
}

// IndexData feeds the index page.
type IndexData struct {
	Title          string
	Layout         string
	CatalogsLoaded bool
	LibraryEntries int
	MasterEntries  int
	LoadedAt       string
	Groups         []ArtifactGroup
}

// CatalogSummary is the status line shown when catalogs are loaded.
func (d IndexData) CatalogSummary() string {
	return fmt.Sprintf("%d library entries, %d master data entries", d.LibraryEntries, d.MasterEntries)
}
