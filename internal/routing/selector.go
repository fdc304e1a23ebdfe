package routing

import (
	"sort"

	"districtlens/internal/access"
	"districtlens/internal/intent"
	"districtlens/internal/registry"
)

// Selection is the selector's output: candidate views ordered best-first.
// The best view answers the request; the rest serve as fallbacks.
type Selection struct {
	Views []*registry.ViewDescriptor
}

// Empty reports whether no view matched the ranked intents.
func (s Selection) Empty() bool { return len(s.Views) == 0 }

// Primary returns the best candidate.
func (s Selection) Primary() *registry.ViewDescriptor {
	if len(s.Views) == 0 {
		return nil
	}
	return s.Views[0]
}

// Selector ranks candidate views across every matched intent. Each view
// accumulates score from every intent it answers, weighted by the intent's
// rank and the view's registry priority, so a view answering the dominant
// intent at high priority beats a view that merely brushes several weak ones.
type Selector struct {
	reg *registry.Registry
}

func NewSelector(reg *registry.Registry) *Selector {
	return &Selector{reg: reg}
}

// Select scores candidate views for the ranked intents under the given
// scope. Views without a district filter are only selectable under elevated
// scope; under tenant scope they are skipped rather than served unfiltered.
// An empty ranked list yields an empty selection.
func (s *Selector) Select(ranked []intent.Score, scope access.Scope) Selection {
	if len(ranked) == 0 {
		return Selection{}
	}

	scores := make(map[string]int)
	byName := make(map[string]*registry.ViewDescriptor)
	var order []string

	for i, sc := range ranked {
		// The dominant intent carries the most weight.
		intentWeight := len(ranked) - i
		for _, v := range s.reg.Lookup(sc.Intent) {
			if v.Global && !scope.IsElevated() {
				continue
			}
			if _, seen := scores[v.Name]; !seen {
				order = append(order, v.Name)
				byName[v.Name] = v
			}
			scores[v.Name] += intentWeight * (4 - v.Priority)
		}
	}
	if len(order) == 0 {
		return Selection{}
	}

	sort.SliceStable(order, func(i, j int) bool {
		if scores[order[i]] != scores[order[j]] {
			return scores[order[i]] > scores[order[j]]
		}
		if byName[order[i]].Priority != byName[order[j]].Priority {
			return byName[order[i]].Priority < byName[order[j]].Priority
		}
		return order[i] < order[j]
	})

	views := make([]*registry.ViewDescriptor, len(order))
	for i, name := range order {
		views[i] = byName[name]
	}

	return Selection{Views: views}
}
