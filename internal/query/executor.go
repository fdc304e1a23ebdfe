package query

import (
	"context"
	"strings"

	"districtlens/internal/access"
)

// Row is one result record keyed by column name.
type Row map[string]any

// Result is an executed plan's rows. Truncated is set when the row cap cut
// the result short.
type Result struct {
	Rows      []Row
	Truncated bool
}

// Executor runs a verified plan against a data store. Implementations are
// strictly read-only and must re-check the plan's tenant invariant before
// touching the store.
type Executor interface {
	Execute(ctx context.Context, plan *Plan, scope access.Scope) (*Result, error)
}

// forbiddenKeywords are statement shapes the executor refuses outright:
// anything write- or DDL-shaped fails before reaching the store.
var forbiddenKeywords = []string{
	"INSERT", "UPDATE", "DELETE", "DROP", "ALTER", "CREATE",
	"TRUNCATE", "GRANT", "REVOKE", "COPY", "EXECUTE",
}

// guardReadOnly fails fast on any statement that is not a plain read.
func guardReadOnly(stmt string) error {
	upper := strings.ToUpper(strings.TrimSpace(stmt))
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return ErrForbiddenOperation
	}
	for _, kw := range strings.FieldsFunc(upper, func(r rune) bool {
		return !(r >= 'A' && r <= 'Z' || r == '_')
	}) {
		for _, forbidden := range forbiddenKeywords {
			if kw == forbidden {
				return ErrForbiddenOperation
			}
		}
	}
	return nil
}
