package notation

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// Registry maps adapter names to adapters. Callers own their registry;
// there is no package-level default state.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter. Duplicate names are an error so wiring
// mistakes fail loudly at startup instead of shadowing an adapter.
func (r *Registry) Register(a Adapter) error {
	name := a.Name()
	if name == "" {
		return fmt.Errorf("register adapter: empty name")
	}
	if _, exists := r.adapters[name]; exists {
		return fmt.Errorf("register adapter %q: already registered", name)
	}
	r.adapters[name] = a
	return nil
}

// Get returns the adapter registered under name.
func (r *Registry) Get(name string) (Adapter, error) {
	a, ok := r.adapters[name]
	if !ok {
		return nil, fmt.Errorf("unknown notation %q (have: %s)", name, strings.Join(r.Names(), ", "))
	}
	return a, nil
}

// Names returns registered adapter names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Detect picks the adapter for a file: filename extension first, content
// sniffing second. More than one claimant is an error rather than a guess;
// the caller can always name the notation explicitly.
func (r *Registry) Detect(filename string, src []byte) (Adapter, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	byExt := r.matching(func(d Detector) bool { return d.MatchesExtension(ext) })
	if len(byExt) == 1 {
		return byExt[0], nil
	}
	if len(byExt) > 1 {
		return nil, ambiguityError(filename, byExt)
	}

	bySniff := r.matching(func(d Detector) bool { return d.Sniff(src) })
	if len(bySniff) == 1 {
		return bySniff[0], nil
	}
	if len(bySniff) > 1 {
		return nil, ambiguityError(filename, bySniff)
	}

	return nil, fmt.Errorf("cannot detect notation for %q; name one explicitly (have: %s)",
		filename, strings.Join(r.Names(), ", "))
}

// matching collects adapters whose Detector accepts, in name order so
// detection is deterministic.
func (r *Registry) matching(accept func(Detector) bool) []Adapter {
	var matched []Adapter
	for _, name := range r.Names() {
		a := r.adapters[name]
		if d, ok := a.(Detector); ok && accept(d) {
			matched = append(matched, a)
		}
	}
	return matched
}

func ambiguityError(filename string, matched []Adapter) error {
	names := make([]string, len(matched))
	for i, a := range matched {
		names[i] = a.Name()
	}
	return fmt.Errorf("ambiguous notation for %q: matches %s", filename, strings.Join(names, ", "))
}
