// Package routing is the front door of the subsystem: it classifies a
// free-text question, selects candidate views, and executes the best one
// under the caller's access scope, falling back through the ranked
// candidates until one answers or none can.
package routing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"districtlens/internal/access"
	"districtlens/internal/intent"
	"districtlens/internal/query"
	"districtlens/internal/registry"
	"districtlens/internal/session"
)

// ErrNoData is the terminal "nothing matched" answer: no intent was
// recognized, or every candidate view came back empty. It is a valid
// outcome, not a failure.
var ErrNoData = errors.New("routing: no data matched the question")

// Request is one routed question.
type Request struct {
	Query        string
	Scope        access.Scope
	ExtraFilters map[string]string
	Verbose      bool
	Limit        int
}

// Result is the answer handed to the response-formatting layer.
type Result struct {
	Intent        registry.Intent
	Intents       []intent.Score
	ViewUsed      string
	Rows          []query.Row
	Truncated     bool
	FallbackDepth int
	ExecutionTime time.Duration
}

// Options tune the router. Zero values fall back to the documented defaults.
type Options struct {
	MaxRows             int
	RequestTimeout      time.Duration
	ConfidenceThreshold int
	CacheSize           int
	DefaultView         string
}

func (o Options) withDefaults() Options {
	if o.MaxRows <= 0 {
		o.MaxRows = query.DefaultRowCap
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 30 * time.Second
	}
	if o.ConfidenceThreshold <= 0 {
		o.ConfidenceThreshold = 1
	}
	if o.CacheSize <= 0 {
		o.CacheSize = session.DefaultCacheSize
	}
	return o
}

// Router wires the classifier, selector, executor, and session cache.
// Safe for concurrent use.
type Router struct {
	reg        *registry.Registry
	classifier *intent.Classifier
	selector   *Selector
	exec       query.Executor
	sessions   *session.Cache
	log        *zap.Logger
	opts       Options
}

func New(reg *registry.Registry, exec query.Executor, log *zap.Logger, opts Options) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	opts = opts.withDefaults()
	return &Router{
		reg:        reg,
		classifier: intent.NewClassifier(reg),
		selector:   NewSelector(reg),
		exec:       exec,
		sessions:   session.NewCache(opts.CacheSize),
		log:        log,
		opts:       opts,
	}
}

// Sessions exposes the session cache for introspection.
func (r *Router) Sessions() *session.Cache { return r.sessions }

// RouteAndExecute classifies the question, picks candidate views, and runs
// the fallback chain under the request timeout. It returns ErrNoData when
// nothing matched, an IsolationViolation or ErrForbiddenOperation when the
// request tripped a structural guard, and the underlying execution or
// timeout error when every candidate failed.
func (r *Router) RouteAndExecute(ctx context.Context, req Request) (*Result, error) {
	if !req.Scope.Valid() {
		return nil, fmt.Errorf("routing: invalid access scope")
	}

	sess := r.sessions.GetOrCreate(req.Scope, req.Verbose)
	sess.Touch()

	ctx, cancel := context.WithTimeout(ctx, r.opts.RequestTimeout)
	defer cancel()

	start := time.Now()

	ranked := r.classifier.Classify(req.Query)
	if len(ranked) == 0 || ranked[0].Points < r.opts.ConfidenceThreshold {
		r.log.Info("no intent matched",
			zap.String("scope", req.Scope.String()),
			zap.Int("candidates", len(ranked)))
		return nil, ErrNoData
	}

	selection := r.selector.Select(ranked, req.Scope)
	candidates := r.withDefaultView(selection.Views, req.Scope)
	if len(candidates) == 0 {
		return nil, ErrNoData
	}

	limit := req.Limit
	if limit <= 0 || limit > r.opts.MaxRows {
		limit = r.opts.MaxRows
	}

	ch := &chain{exec: r.exec, log: r.log}
	out, err := ch.run(ctx, candidates, req.Scope, req.ExtraFilters, limit)
	if err != nil {
		return nil, err
	}

	view, derr := r.reg.Describe(out.view)
	if derr == nil && view.HasColumn("total_cost") && view.HasColumn("usage_compliance") {
		query.EnrichInvestmentFields(out.result.Rows)
	}

	r.log.Info("routed query",
		zap.String("scope", req.Scope.String()),
		zap.String("intent", string(ranked[0].Intent)),
		zap.String("view", out.view),
		zap.Int("rows", len(out.result.Rows)),
		zap.Int("fallback_depth", out.depth),
		zap.Duration("took", time.Since(start)))

	return &Result{
		Intent:        ranked[0].Intent,
		Intents:       ranked,
		ViewUsed:      out.view,
		Rows:          out.result.Rows,
		Truncated:     out.result.Truncated,
		FallbackDepth: out.depth,
		ExecutionTime: time.Since(start),
	}, nil
}

// withDefaultView appends the configured catch-all view as the last
// candidate, so a matched intent whose specific views come back empty still
// gets the comprehensive usage view before the chain gives up.
func (r *Router) withDefaultView(views []*registry.ViewDescriptor, scope access.Scope) []*registry.ViewDescriptor {
	if r.opts.DefaultView == "" {
		return views
	}
	for _, v := range views {
		if v.Name == r.opts.DefaultView {
			return views
		}
	}
	def, err := r.reg.Describe(r.opts.DefaultView)
	if err != nil {
		r.log.Warn("configured default view not in registry",
			zap.String("view", r.opts.DefaultView))
		return views
	}
	if def.Global && !scope.IsElevated() {
		return views
	}
	return append(views, def)
}
