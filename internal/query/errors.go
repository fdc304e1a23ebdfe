package query

import (
	"errors"
	"fmt"
)

var (
	// ErrForbiddenOperation marks an attempted non-read statement. It is
	// always fatal to the request and never retried.
	ErrForbiddenOperation = errors.New("forbidden operation: executor is read-only")

	// ErrUnknownFilter marks an extra filter naming a dimension the target
	// view does not support.
	ErrUnknownFilter = errors.New("unknown filter dimension")
)

// IsolationViolation reports a plan that failed the tenant-predicate
// invariant. It signals a structural defect in plan construction, so it
// aborts the whole request path: retrying against a different view cannot
// fix it and silently correcting it would hide the bug.
type IsolationViolation struct {
	View   string
	Detail string
}

func (e *IsolationViolation) Error() string {
	return fmt.Sprintf("tenant isolation violation on view %s: %s", e.View, e.Detail)
}

// ExecutionError wraps a failure from the underlying store. Transient
// failures (connectivity, timeouts) may be retried by the fallback chain;
// query-shaped rejections advance the chain without a same-view retry.
type ExecutionError struct {
	View      string
	Transient bool
	Err       error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("executing against view %s: %v", e.View, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }
