// Package registry is the static catalog of materialized views: which
// analytic intents each view answers, which columns it exposes, and which
// filter dimensions it supports. The catalog is built once at process start
// and is read-only afterwards, so concurrent lookups need no locking.
package registry

import (
	"fmt"
	"sort"
	"sync"
)

// ErrViewNotFound is returned by Describe for unknown view names.
var ErrViewNotFound = fmt.Errorf("view not found")

// Registry holds the validated view catalog and the intent keyword tables.
type Registry struct {
	views    map[string]*ViewDescriptor
	byIntent map[Intent][]*ViewDescriptor
	patterns IntentPatterns
}

// New builds a registry from the given descriptors and intent patterns,
// validating the catalog invariants: unique view names, a district_id filter
// dimension on every non-global view, and no orphan intents (every intent
// with patterns must map to at least one view).
func New(views []*ViewDescriptor, patterns IntentPatterns) (*Registry, error) {
	r := &Registry{
		views:    make(map[string]*ViewDescriptor, len(views)),
		byIntent: make(map[Intent][]*ViewDescriptor),
		patterns: cloneIntentPatterns(patterns),
	}

	for _, v := range views {
		if v.Name == "" {
			return nil, fmt.Errorf("registry: view with empty name")
		}
		if _, dup := r.views[v.Name]; dup {
			return nil, fmt.Errorf("registry: duplicate view %q", v.Name)
		}
		if !v.Global && !v.HasFilter(TenantColumn) {
			return nil, fmt.Errorf("registry: view %q is district-scoped but declares no %s filter", v.Name, TenantColumn)
		}
		if v.Global && v.HasFilter(TenantColumn) {
			return nil, fmt.Errorf("registry: view %q is marked global but declares a %s filter", v.Name, TenantColumn)
		}
		r.views[v.Name] = v
		for _, in := range v.PrimaryIntents {
			r.byIntent[in] = append(r.byIntent[in], v)
		}
	}

	for in := range r.patterns {
		if len(r.byIntent[in]) == 0 {
			return nil, fmt.Errorf("registry: intent %q has keyword patterns but no view answers it", in)
		}
	}

	// Lower priority number wins; on a tie the more specific view (more
	// columns and filter dimensions) ranks first.
	for in := range r.byIntent {
		candidates := r.byIntent[in]
		sort.SliceStable(candidates, func(i, j int) bool {
			if candidates[i].Priority != candidates[j].Priority {
				return candidates[i].Priority < candidates[j].Priority
			}
			if candidates[i].specificity() != candidates[j].specificity() {
				return candidates[i].specificity() > candidates[j].specificity()
			}
			return candidates[i].Name < candidates[j].Name
		})
	}

	return r, nil
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
	defaultErr  error
)

// Default returns the process-wide registry built from the fixed view
// catalog. The catalog is compile-time data validated by the package tests,
// so a construction failure here is a programming error.
func Default() (*Registry, error) {
	defaultOnce.Do(func() {
		defaultReg, defaultErr = New(defaultViews, defaultIntentPatterns)
	})
	return defaultReg, defaultErr
}

// Lookup returns the views answering the given intent, best first.
// The returned slice is shared and must not be mutated.
func (r *Registry) Lookup(in Intent) []*ViewDescriptor {
	return r.byIntent[in]
}

// BestView returns the top-ranked view for an intent.
func (r *Registry) BestView(in Intent) (*ViewDescriptor, bool) {
	candidates := r.byIntent[in]
	if len(candidates) == 0 {
		return nil, false
	}
	return candidates[0], true
}

// Describe returns the descriptor for a view name.
func (r *Registry) Describe(name string) (*ViewDescriptor, error) {
	v, ok := r.views[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrViewNotFound, name)
	}
	return v, nil
}

// Patterns returns the keyword/phrase patterns for an intent.
func (r *Registry) Patterns(in Intent) []string {
	return r.patterns[in]
}

// Intents returns every intent with keyword patterns, sorted by name.
func (r *Registry) Intents() []Intent {
	out := make([]Intent, 0, len(r.patterns))
	for in := range r.patterns {
		out = append(out, in)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Views returns every descriptor, sorted by name.
func (r *Registry) Views() []*ViewDescriptor {
	out := make([]*ViewDescriptor, 0, len(r.views))
	for _, v := range r.views {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
