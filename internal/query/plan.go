// Package query builds and executes tenant-safe, read-only queries against
// the materialized views. A Plan always carries the caller's tenant
// predicate (or deliberately none under elevated scope), every value travels
// as a bound parameter, and executors re-verify the isolation invariant
// immediately before touching the store.
package query

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"districtlens/internal/access"
	"districtlens/internal/registry"
)

// DefaultRowCap bounds result size; exceeding it truncates rather than fails.
const DefaultRowCap = 100

// Predicate is one equality filter in a plan. Tenant marks the mandatory
// isolation predicate; advisory district filters under elevated scope do
// not set it.
type Predicate struct {
	Column string
	Value  any
	Tenant bool
}

// Plan is a fully resolved, parameterized read query.
type Plan struct {
	View       string
	Columns    []string
	Predicates []Predicate
	OrderBy    string
	Descending bool
	Limit      int
}

// Build constructs a plan for the given view under the given scope.
//
// Under tenant scope the district predicate is inserted first and cannot be
// overridden: an extra filter on district_id is ignored. Under elevated
// scope no tenant predicate is added; an extra district_id filter is
// honored as an advisory comparison filter, not an isolation boundary.
// Every other extra filter must name a dimension the view declares.
func Build(view *registry.ViewDescriptor, scope access.Scope, extraFilters map[string]string, limit int) (*Plan, error) {
	if !scope.Valid() {
		return nil, fmt.Errorf("query: invalid access scope")
	}
	if limit <= 0 {
		limit = DefaultRowCap
	}

	p := &Plan{
		View:    view.Name,
		Columns: append([]string(nil), view.KeyColumns...),
		Limit:   limit,
	}

	if tenantID, ok := scope.TenantID(); ok {
		if view.Global {
			return nil, &IsolationViolation{
				View:   view.Name,
				Detail: "view has no district dimension and cannot serve tenant scope",
			}
		}
		p.Predicates = append(p.Predicates, Predicate{
			Column: registry.TenantColumn,
			Value:  tenantID,
			Tenant: true,
		})
	}

	for _, column := range sortedKeys(extraFilters) {
		if column == registry.TenantColumn && !scope.IsElevated() {
			// The isolation predicate is already bound; callers cannot
			// narrow or redirect it.
			continue
		}
		if !view.HasFilter(column) {
			return nil, fmt.Errorf("%w: %q on view %s", ErrUnknownFilter, column, view.Name)
		}
		p.Predicates = append(p.Predicates, Predicate{Column: column, Value: extraFilters[column]})
	}

	if len(view.AggregationColumns) > 0 {
		p.OrderBy = view.AggregationColumns[0]
		p.Descending = true
	}

	return p, nil
}

// Verify checks the single most important correctness property of the
// subsystem: a plan built under Tenant(t) carries exactly one tenant
// predicate bound to t, and a plan built under Elevated carries none.
func (p *Plan) Verify(scope access.Scope) error {
	var tenantPreds []Predicate
	for _, pred := range p.Predicates {
		if pred.Tenant {
			tenantPreds = append(tenantPreds, pred)
		}
	}

	if tenantID, ok := scope.TenantID(); ok {
		if len(tenantPreds) != 1 {
			return &IsolationViolation{
				View:   p.View,
				Detail: fmt.Sprintf("expected exactly one tenant predicate, found %d", len(tenantPreds)),
			}
		}
		pred := tenantPreds[0]
		if pred.Column != registry.TenantColumn || pred.Value != tenantID {
			return &IsolationViolation{
				View:   p.View,
				Detail: fmt.Sprintf("tenant predicate bound to %s=%v, scope is %s", pred.Column, pred.Value, scope),
			}
		}
		if p.Predicates[0] != pred {
			return &IsolationViolation{
				View:   p.View,
				Detail: "tenant predicate is not the first filter",
			}
		}
		return nil
	}

	if len(tenantPreds) != 0 {
		return &IsolationViolation{
			View:   p.View,
			Detail: "elevated scope plan carries a tenant predicate",
		}
	}
	return nil
}

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// SQL renders the plan to a parameterized SELECT. Identifiers come only
// from registry descriptors and are still validated against a strict
// pattern; caller-supplied values never enter the statement text. The limit
// is rendered one past the row cap so executors can detect truncation.
func (p *Plan) SQL() (string, []any, error) {
	idents := append([]string{p.View}, p.Columns...)
	for _, pred := range p.Predicates {
		idents = append(idents, pred.Column)
	}
	if p.OrderBy != "" {
		idents = append(idents, p.OrderBy)
	}
	for _, id := range idents {
		if !identPattern.MatchString(id) {
			return "", nil, fmt.Errorf("query: unsafe identifier %q in plan for view %s", id, p.View)
		}
	}
	if len(p.Columns) == 0 {
		return "", nil, fmt.Errorf("query: plan for view %s selects no columns", p.View)
	}

	var b strings.Builder
	args := make([]any, 0, len(p.Predicates)+1)

	b.WriteString("SELECT ")
	b.WriteString(strings.Join(p.Columns, ", "))
	b.WriteString(" FROM ")
	b.WriteString(p.View)

	for i, pred := range p.Predicates {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		args = append(args, pred.Value)
		fmt.Fprintf(&b, "%s = $%d", pred.Column, len(args))
	}

	if p.OrderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(p.OrderBy)
		if p.Descending {
			b.WriteString(" DESC")
		}
	}

	args = append(args, p.Limit+1)
	fmt.Fprintf(&b, " LIMIT $%d", len(args))

	return b.String(), args, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
