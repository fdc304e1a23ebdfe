package routing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"districtlens/internal/query"
	"districtlens/internal/registry"
)

func describeAll(t *testing.T, names ...string) []*registry.ViewDescriptor {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)
	out := make([]*registry.ViewDescriptor, len(names))
	for i, name := range names {
		v, err := reg.Describe(name)
		require.NoError(t, err)
		out[i] = v
	}
	return out
}

func TestChainAnswersAtFirstViewWithRows(t *testing.T) {
	exec := query.NewMemoryExecutor(100)
	exec.Load("mv_unauthorized_software_analytics_v3", []query.Row{
		{"district_id": "d1", "name": "GameSite", "total_usage_minutes": 40.0},
	})

	ch := &chain{exec: exec, log: zap.NewNop()}
	candidates := describeAll(t, "mv_unauthorized_software_analytics_v3", "mv_unauthorized_usage_dashboard")

	out, err := ch.run(context.Background(), candidates, tenantScope(t, "d1"), nil, 0)
	require.NoError(t, err)
	assert.Equal(t, "mv_unauthorized_software_analytics_v3", out.view)
	assert.Equal(t, 0, out.depth)
	assert.Len(t, out.result.Rows, 1)
}

func TestChainAdvancesPastEmptyView(t *testing.T) {
	exec := query.NewMemoryExecutor(100)
	exec.Load("mv_unauthorized_usage_dashboard", []query.Row{
		{"district_id": "d1", "software_name": "GameSite", "total_minutes": 15.0},
	})

	ch := &chain{exec: exec, log: zap.NewNop()}
	candidates := describeAll(t, "mv_unauthorized_software_analytics_v3", "mv_unauthorized_usage_dashboard")

	out, err := ch.run(context.Background(), candidates, tenantScope(t, "d1"), nil, 0)
	require.NoError(t, err)
	assert.Equal(t, "mv_unauthorized_usage_dashboard", out.view)
	assert.Equal(t, 1, out.depth)
}

func TestChainAdvancesPastFailedView(t *testing.T) {
	exec := query.NewMemoryExecutor(100)
	exec.FailWith("mv_unauthorized_software_analytics_v3", errors.New("connection reset"))
	exec.Load("mv_unauthorized_usage_dashboard", []query.Row{
		{"district_id": "d1", "software_name": "GameSite", "total_minutes": 15.0},
	})

	ch := &chain{exec: exec, log: zap.NewNop()}
	candidates := describeAll(t, "mv_unauthorized_software_analytics_v3", "mv_unauthorized_usage_dashboard")

	out, err := ch.run(context.Background(), candidates, tenantScope(t, "d1"), nil, 0)
	require.NoError(t, err)
	assert.Equal(t, "mv_unauthorized_usage_dashboard", out.view)
}

func TestChainSurfacesLastErrorWhenExhausted(t *testing.T) {
	exec := query.NewMemoryExecutor(100)
	exec.FailWith("mv_unauthorized_software_analytics_v3", context.DeadlineExceeded)
	exec.FailWith("mv_unauthorized_usage_dashboard", context.DeadlineExceeded)

	ch := &chain{exec: exec, log: zap.NewNop()}
	candidates := describeAll(t, "mv_unauthorized_software_analytics_v3", "mv_unauthorized_usage_dashboard")

	_, err := ch.run(context.Background(), candidates, tenantScope(t, "d1"), nil, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestChainNoDataWhenAllViewsEmpty(t *testing.T) {
	exec := query.NewMemoryExecutor(100)

	ch := &chain{exec: exec, log: zap.NewNop()}
	candidates := describeAll(t, "mv_unauthorized_software_analytics_v3", "mv_unauthorized_usage_dashboard")

	_, err := ch.run(context.Background(), candidates, tenantScope(t, "d1"), nil, 0)
	require.ErrorIs(t, err, ErrNoData)
}

func TestChainAbortsOnIsolationViolation(t *testing.T) {
	// A global view in the candidate list under tenant scope is a selector
	// bug; the chain must abort instead of trying the next view.
	exec := query.NewMemoryExecutor(100)
	exec.Load("mv_unauthorized_usage_dashboard", []query.Row{
		{"district_id": "d1", "software_name": "GameSite", "total_minutes": 15.0},
	})

	ch := &chain{exec: exec, log: zap.NewNop()}
	candidates := describeAll(t, "mv_unauthorized_software_by_school", "mv_unauthorized_usage_dashboard")

	_, err := ch.run(context.Background(), candidates, tenantScope(t, "d1"), nil, 0)
	var iso *query.IsolationViolation
	require.ErrorAs(t, err, &iso)
}

func TestChainDropsFiltersUnknownToAView(t *testing.T) {
	exec := query.NewMemoryExecutor(100)
	exec.Load("mv_dashboard_user_analytics", []query.Row{
		{"district_id": "d1", "user_type": "student", "grade": "3", "total_users": 40.0},
		{"district_id": "d1", "user_type": "teacher", "grade": "3", "total_users": 5.0},
	})

	ch := &chain{exec: exec, log: zap.NewNop()}
	candidates := describeAll(t, "mv_dashboard_user_analytics")

	// roi_status applies to the software views, not this one; it must be
	// dropped rather than failing the request.
	filters := map[string]string{"user_type": "student", "roi_status": "high"}
	out, err := ch.run(context.Background(), candidates, tenantScope(t, "d1"), filters, 0)
	require.NoError(t, err)
	require.Len(t, out.result.Rows, 1)
	assert.Equal(t, "student", out.result.Rows[0]["user_type"])
}

func TestChainStopsWhenContextCancelled(t *testing.T) {
	exec := query.NewMemoryExecutor(100)
	ch := &chain{exec: exec, log: zap.NewNop()}
	candidates := describeAll(t, "mv_unauthorized_software_analytics_v3")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ch.run(ctx, candidates, tenantScope(t, "d1"), nil, 0)
	require.ErrorIs(t, err, context.Canceled)
}
