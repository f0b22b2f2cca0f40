package relation

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Model is a normalized config model for one relation kind.
type Model interface {
	Kind() string
	Path() Path
}

// Factory builds and compares config models of one kind.
type Factory struct {
	// FromConfig builds the desired model from declared configuration.
	FromConfig func(Config, Policies) (Model, error)
	// FromResults builds the existing model from observed results.
	FromResults func(Results, Policies) (Model, error)
	// Diff compares existing against desired. A nil Changeset means no change.
	Diff func(existing, desired Model) (Changeset, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds a factory for a materialization kind.
// Called by kind packages in their init() functions; it panics on an empty
// kind, an incomplete factory or a duplicate registration.
func Register(kind string, f Factory) {
	if kind == "" {
		panic("relation: Register called with empty kind")
	}
	if f.FromConfig == nil || f.FromResults == nil || f.Diff == nil {
		panic(fmt.Sprintf("relation: incomplete factory for kind %q", kind))
	}

	kind = strings.ToLower(kind)
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[kind]; dup {
		panic(fmt.Sprintf("relation: kind %q registered twice", kind))
	}
	registry[kind] = f
}

// Get retrieves the factory for a kind. Lookup is case-insensitive.
func Get(kind string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[strings.ToLower(kind)]
	return f, ok
}

// Kinds returns all registered kinds (sorted).
func Kinds() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	kinds := make([]string, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

func lookup(kind string) (Factory, error) {
	f, ok := Get(kind)
	if !ok {
		return Factory{}, &UnsupportedKindError{Kind: kind, Available: Kinds()}
	}
	return f, nil
}

// FromConfig builds the desired model for cfg.Materialized.
func FromConfig(cfg Config, p Policies) (Model, error) {
	f, err := lookup(cfg.Materialized)
	if err != nil {
		return nil, err
	}
	return f.FromConfig(cfg, p)
}

// FromResults builds the existing model of the given kind.
func FromResults(kind string, results Results, p Policies) (Model, error) {
	f, err := lookup(kind)
	if err != nil {
		return nil, err
	}
	return f.FromResults(results, p)
}

// Compare builds both models for cfg.Materialized and diffs them.
// It returns a nil Changeset when the relation already matches cfg.
func Compare(results Results, cfg Config, p Policies) (Changeset, error) {
	f, err := lookup(cfg.Materialized)
	if err != nil {
		return nil, err
	}

	existing, err := f.FromResults(results, p)
	if err != nil {
		return nil, fmt.Errorf("failed to read existing %s: %w", cfg.Materialized, err)
	}
	desired, err := f.FromConfig(cfg, p)
	if err != nil {
		return nil, fmt.Errorf("failed to read declared %s: %w", cfg.Materialized, err)
	}
	return f.Diff(existing, desired)
}

// Relation types the warehouse can replace or rename in place.
var (
	replaceableKinds = map[string]bool{"dynamic_table": true, "table": true, "view": true}
	renameableKinds  = map[string]bool{"table": true, "view": true}
)

// IsReplaceable reports whether a relation of this kind can be swapped by
// CREATE OR REPLACE.
func IsReplaceable(kind string) bool {
	return replaceableKinds[strings.ToLower(kind)]
}

// IsRenameable reports whether a relation of this kind supports RENAME.
func IsRenameable(kind string) bool {
	return renameableKinds[strings.ToLower(kind)]
}
