package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"districtlens/internal/access"
	"districtlens/internal/config"
)

// PostgresExecutor runs plans against the materialized views over a pgx
// pool. Sessions are opened read-only at the server, so even a guard bypass
// could not mutate data.
type PostgresExecutor struct {
	pool    *pgxpool.Pool
	log     *zap.Logger
	maxRows int
}

// NewPostgresExecutor connects a read-only pool for the given connection
// settings.
func NewPostgresExecutor(ctx context.Context, cfg config.Postgres, maxRows int, log *zap.Logger) (*PostgresExecutor, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing postgres config: %w", err)
	}
	pc.ConnConfig.RuntimeParams["default_transaction_read_only"] = "on"

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	if maxRows <= 0 {
		maxRows = DefaultRowCap
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &PostgresExecutor{pool: pool, log: log, maxRows: maxRows}, nil
}

// Ping checks store connectivity.
func (e *PostgresExecutor) Ping(ctx context.Context) error {
	return e.pool.Ping(ctx)
}

// Close releases the pool.
func (e *PostgresExecutor) Close() {
	e.pool.Close()
}

// Execute verifies the plan's tenant invariant, renders it, and runs it.
// Connectivity failures are retried once against a fresh pool connection;
// everything else surfaces immediately.
func (e *PostgresExecutor) Execute(ctx context.Context, plan *Plan, scope access.Scope) (*Result, error) {
	if err := plan.Verify(scope); err != nil {
		e.log.Error("rejecting plan that failed tenant verification",
			zap.String("view", plan.View),
			zap.String("scope", scope.String()),
			zap.Error(err))
		return nil, err
	}

	stmt, args, err := plan.SQL()
	if err != nil {
		return nil, err
	}
	if err := guardReadOnly(stmt); err != nil {
		e.log.Error("rejecting non-read statement", zap.String("view", plan.View))
		return nil, err
	}

	result, err := e.run(ctx, plan, stmt, args)
	if err == nil {
		return result, nil
	}

	execErr := classify(plan.View, err)
	if execErr.Transient && ctx.Err() == nil {
		e.log.Warn("retrying after transient store error",
			zap.String("view", plan.View), zap.Error(err))
		if result, retryErr := e.run(ctx, plan, stmt, args); retryErr == nil {
			return result, nil
		}
	}
	return nil, execErr
}

func (e *PostgresExecutor) run(ctx context.Context, plan *Plan, stmt string, args []any) (*Result, error) {
	rows, err := e.pool.Query(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// The plan may ask for fewer rows than the configured cap; the smaller
	// bound wins.
	limit := e.maxRows
	if plan.Limit > 0 && plan.Limit < limit {
		limit = plan.Limit
	}

	fields := rows.FieldDescriptions()
	result := &Result{}
	for rows.Next() {
		if len(result.Rows) == limit {
			// The statement requests one row past the cap precisely so we
			// can tell "full page" from "more data exists".
			result.Truncated = true
			break
		}
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(Row, len(fields))
		for i, fd := range fields {
			row[string(fd.Name)] = values[i]
		}
		result.Rows = append(result.Rows, row)
	}
	if !result.Truncated {
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// classify maps store failures onto the fallback chain's taxonomy: server
// rejections are query-shaped (advance the chain, no same-view retry),
// anything else is treated as connectivity and retried once.
func classify(view string, err error) *ExecutionError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &ExecutionError{View: view, Transient: false, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &ExecutionError{View: view, Transient: false, Err: err}
	}
	return &ExecutionError{View: view, Transient: true, Err: err}
}
