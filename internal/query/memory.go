package query

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"districtlens/internal/access"
)

// MemoryExecutor serves plans from in-process fixtures. It backs the test
// suites and local development without a database, applying the same
// verification, filtering, ordering, and truncation semantics as the
// Postgres executor.
type MemoryExecutor struct {
	mu       sync.RWMutex
	data     map[string][]Row
	failures map[string]error
	maxRows  int
}

func NewMemoryExecutor(maxRows int) *MemoryExecutor {
	if maxRows <= 0 {
		maxRows = DefaultRowCap
	}
	return &MemoryExecutor{
		data:     make(map[string][]Row),
		failures: make(map[string]error),
		maxRows:  maxRows,
	}
}

// Load replaces the fixture rows for a view.
func (m *MemoryExecutor) Load(view string, rows []Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[view] = rows
}

// FailWith makes every Execute against the view return the given error,
// wrapped as an ExecutionError, until cleared with a nil err.
func (m *MemoryExecutor) FailWith(view string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, view)
		return
	}
	m.failures[view] = err
}

func (m *MemoryExecutor) Execute(ctx context.Context, plan *Plan, scope access.Scope) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ExecutionError{View: plan.View, Err: err}
	}
	if err := plan.Verify(scope); err != nil {
		return nil, err
	}
	stmt, _, err := plan.SQL()
	if err != nil {
		return nil, err
	}
	if err := guardReadOnly(stmt); err != nil {
		return nil, err
	}

	m.mu.RLock()
	failure := m.failures[plan.View]
	source := m.data[plan.View]
	m.mu.RUnlock()

	if failure != nil {
		return nil, &ExecutionError{View: plan.View, Err: failure}
	}

	var matched []Row
	for _, row := range source {
		if rowMatches(row, plan.Predicates) {
			matched = append(matched, cloneRow(row))
		}
	}

	if plan.OrderBy != "" {
		column, desc := plan.OrderBy, plan.Descending
		sort.SliceStable(matched, func(i, j int) bool {
			less := lessValue(matched[i][column], matched[j][column])
			if desc {
				return !less && !equalValue(matched[i][column], matched[j][column])
			}
			return less
		})
	}

	limit := m.maxRows
	if plan.Limit > 0 && plan.Limit < limit {
		limit = plan.Limit
	}

	result := &Result{}
	for _, row := range matched {
		if len(result.Rows) == limit {
			result.Truncated = true
			break
		}
		result.Rows = append(result.Rows, row)
	}
	return result, nil
}

func rowMatches(row Row, predicates []Predicate) bool {
	for _, pred := range predicates {
		have, ok := row[pred.Column]
		if !ok {
			return false
		}
		if fmt.Sprint(have) != fmt.Sprint(pred.Value) {
			return false
		}
	}
	return true
}

func cloneRow(row Row) Row {
	out := make(Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

func lessValue(a, b any) bool {
	af, bf := toFloat(a), toFloat(b)
	if af != bf {
		return af < bf
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func equalValue(a, b any) bool {
	return toFloat(a) == toFloat(b) && fmt.Sprint(a) == fmt.Sprint(b)
}
