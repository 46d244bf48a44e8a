// Package render serializes conversions into downloadable artifacts.
//
// Each artifact is a Definition registered at init time under a stable key
// ("presentation", "order-import", ...). The web server and the CLI look
// artifacts up by key, so adding a format means registering one more
// Definition.
package render

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/JonMunkholm/productlist/internal/core"
)

// ErrUnknownArtifact is returned by Lookup for unregistered keys.
var ErrUnknownArtifact = errors.New("unknown artifact")

// Renderer writes one artifact for a conversion.
type Renderer interface {
	Render(w io.Writer, c *core.Conversion) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(w io.Writer, c *core.Conversion) error

func (f RendererFunc) Render(w io.Writer, c *core.Conversion) error { return f(w, c) }

// Definition describes one downloadable artifact.
type Definition struct {
	Key         string   `json:"key"`
	Group       string   `json:"group"`
	Order       int      `json:"-"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	FileName    string   `json:"fileName"`
	ContentType string   `json:"contentType"`
	Renderer    Renderer `json:"-"`
}

// Artifact groups.
const (
	GroupDocuments    = "Documents"
	GroupSpreadsheets = "Spreadsheets"
)

var (
	registry   = make(map[string]Definition)
	registryMu sync.RWMutex
)

// Register adds an artifact definition.
// Panics if the key is already registered.
func Register(def Definition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Key]; exists {
		panic(fmt.Sprintf("artifact already registered: %s", def.Key))
	}
	if def.Renderer == nil {
		panic(fmt.Sprintf("artifact %s has no renderer", def.Key))
	}
	registry[def.Key] = def
}

// Get returns a definition by key.
func Get(key string) (Definition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[key]
	return def, ok
}

// Lookup is Get with an error suitable for callers.
func Lookup(key string) (Definition, error) {
	def, ok := Get(key)
	if !ok {
		return Definition{}, fmt.Errorf("%w %q", ErrUnknownArtifact, key)
	}
	return def, nil
}

// All returns every definition, ordered by Order then key.
func All() []Definition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Definition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}
	sortDefinitions(result)
	return result
}

// ByGroup returns the definitions of one group.
func ByGroup(group string) []Definition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	var result []Definition
	for _, def := range registry {
		if def.Group == group {
			result = append(result, def)
		}
	}
	sortDefinitions(result)
	return result
}

// Groups returns the group names in display order.
func Groups() []string {
	seen := make(map[string]bool)
	var groups []string
	for _, def := range All() {
		if !seen[def.Group] {
			seen[def.Group] = true
			groups = append(groups, def.Group)
		}
	}
	return groups
}

// Keys lists registered keys in display order.
func Keys() []string {
	defs := All()
	keys := make([]string, len(defs))
	for i, d := range defs {
		keys[i] = d.Key
	}
	return keys
}

func sortDefinitions(defs []Definition) {
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].Order != defs[j].Order {
			return defs[i].Order < defs[j].Order
		}
		return defs[i].Key < defs[j].Key
	})
}
