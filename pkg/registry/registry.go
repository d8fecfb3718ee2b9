// Package registry holds the process-wide mapping from semantic ids to
// their registered selectors and hints. It is loaded once at framework
// setup and read-only thereafter.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/locator-resolver/pkg/core"
)

// Registry maps semantic ids to entries. Safe for concurrent reads;
// never mutated after Load.
type Registry struct {
	entries map[core.SemanticID]Entry
}

// New creates a Registry from a pre-built entry map (used by tests and
// programmatic setup).
func New(entries map[core.SemanticID]Entry) *Registry {
	m := make(map[core.SemanticID]Entry, len(entries))
	for id, e := range entries {
		m[id] = e
	}
	return &Registry{entries: m}
}

// Load loads a registry from a YAML file.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided registry file
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// LoadFromDir looks for elements.yaml or elements.yml in the directory.
func LoadFromDir(dir string) (*Registry, error) {
	for _, name := range []string{"elements.yaml", "elements.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	// No registry file found, return an empty registry.
	return New(nil), nil
}

// Parse parses registry YAML.
func Parse(data []byte) (*Registry, error) {
	var raw struct {
		Elements map[string]Entry `yaml:"elements"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("registry: parse: %w", err)
	}

	entries := make(map[core.SemanticID]Entry, len(raw.Elements))
	for name, e := range raw.Elements {
		id := core.SemanticID(name)
		if err := id.Validate(); err != nil {
			return nil, err
		}
		entries[id] = e
	}
	return &Registry{entries: entries}, nil
}

// Lookup returns the entry for a semantic id.
func (r *Registry) Lookup(id core.SemanticID) (Entry, bool) {
	e, ok := r.entries[id]
	return e, ok
}

// IDs returns all registered semantic ids in sorted order.
func (r *Registry) IDs() []core.SemanticID {
	ids := make([]core.SemanticID, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of registered ids.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Validate checks every entry and returns all problems found.
func (r *Registry) Validate() []error {
	var errs []error
	for _, id := range r.IDs() {
		e := r.entries[id]
		if e.IsEmpty() {
			errs = append(errs, fmt.Errorf("%s: entry has no selector, text, or description", id))
			continue
		}
		for i, a := range e.Anchors {
			if a.Selector == "" {
				errs = append(errs, fmt.Errorf("%s: anchor %d has no selector", id, i))
			}
			switch a.Relation {
			case "", RelationWithin, RelationNear:
			default:
				errs = append(errs, fmt.Errorf("%s: anchor %d has unknown relation %q", id, i, a.Relation))
			}
		}
	}
	return errs
}
