package routing

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"districtlens/internal/access"
	"districtlens/internal/query"
	"districtlens/internal/registry"
)

// chain walks the candidate views in order until one answers. Empty results
// and store failures advance to the next candidate; tenant-isolation and
// forbidden-operation errors abort the whole request immediately because the
// defect is structural, not data-related.
type chain struct {
	exec query.Executor
	log  *zap.Logger
}

type outcome struct {
	result *query.Result
	view   string
	depth  int
}

func (c *chain) run(ctx context.Context, candidates []*registry.ViewDescriptor, scope access.Scope, extraFilters map[string]string, limit int) (*outcome, error) {
	var lastErr error

	for depth, view := range candidates {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, err
		}

		plan, err := query.Build(view, scope, narrowFilters(view, extraFilters), limit)
		if err != nil {
			var iso *query.IsolationViolation
			if errors.As(err, &iso) {
				return nil, err
			}
			c.log.Warn("skipping candidate view",
				zap.String("view", view.Name), zap.Error(err))
			lastErr = err
			continue
		}

		result, err := c.exec.Execute(ctx, plan, scope)
		if err != nil {
			var iso *query.IsolationViolation
			if errors.As(err, &iso) || errors.Is(err, query.ErrForbiddenOperation) {
				return nil, err
			}
			c.log.Warn("candidate view failed, trying next",
				zap.String("view", view.Name),
				zap.Int("depth", depth),
				zap.Error(err))
			lastErr = err
			continue
		}

		if len(result.Rows) > 0 {
			return &outcome{result: result, view: view.Name, depth: depth}, nil
		}
		c.log.Debug("candidate view returned no rows",
			zap.String("view", view.Name), zap.Int("depth", depth))
	}

	// Exhausted. A clean sweep of empty results is the "nothing matched"
	// answer; if any attempt failed, surface that instead.
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrNoData
}

// narrowFilters keeps only the filters the view declares. Callers may pass
// filters that apply to some candidates but not others; the ones a view does
// not support are advisory and simply dropped for that view.
func narrowFilters(view *registry.ViewDescriptor, extra map[string]string) map[string]string {
	if len(extra) == 0 {
		return nil
	}
	out := make(map[string]string, len(extra))
	for k, v := range extra {
		if view.HasFilter(k) {
			out[k] = v
		}
	}
	return out
}
