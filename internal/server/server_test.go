package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"districtlens/internal/query"
	"districtlens/internal/registry"
	"districtlens/internal/routing"
)

type plainNarrator struct{}

func (plainNarrator) Narrate(_ context.Context, _ string, res *routing.Result) string {
	if len(res.Rows) == 0 {
		return "No matching data found."
	}
	return "answered"
}

func newTestServer(t *testing.T, exec query.Executor) *Server {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)
	router := routing.New(reg, exec, zap.NewNop(), routing.Options{
		RequestTimeout: 5 * time.Second,
		DefaultView:    "mv_software_usage_analytics_v4",
	})
	return New(router, plainNarrator{}, nil, zap.NewNop())
}

func postAsk(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAskReturnsTenantRows(t *testing.T) {
	exec := query.NewMemoryExecutor(100)
	exec.Load("mv_software_usage_rankings_v4", []query.Row{
		{"district_id": "D1", "name": "MathWorks", "total_minutes": 900.0},
		{"district_id": "D2", "name": "MathWorks", "total_minutes": 800.0},
	})

	h := newTestServer(t, exec).Handler()
	rec := postAsk(t, h, `{"query": "top used software", "district_id": "D1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp askResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "mv_software_usage_rankings_v4", resp.ViewUsed)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, "D1", resp.Rows[0]["district_id"])
	assert.Equal(t, "answered", resp.Answer)
}

func TestAskAllDistrictsSpansTenants(t *testing.T) {
	exec := query.NewMemoryExecutor(100)
	exec.Load("mv_dashboard_software_metrics", []query.Row{
		{"district_id": "D1", "name": "MathWorks", "active_users_30d": 50.0},
		{"district_id": "D2", "name": "MathWorks", "active_users_30d": 70.0},
	})

	h := newTestServer(t, exec).Handler()
	rec := postAsk(t, h, `{"query": "software usage", "all_districts": true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp askResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Rows, 2)
}

func TestAskNoDataIsOK(t *testing.T) {
	h := newTestServer(t, query.NewMemoryExecutor(100)).Handler()
	rec := postAsk(t, h, `{"query": "gibberish xyz123", "district_id": "D1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp askResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.NoData)
	assert.Empty(t, resp.Rows)
}

func TestAskMissingQueryIsBadRequest(t *testing.T) {
	h := newTestServer(t, query.NewMemoryExecutor(100)).Handler()
	rec := postAsk(t, h, `{"district_id": "D1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAskMissingDistrictIsBadRequest(t *testing.T) {
	h := newTestServer(t, query.NewMemoryExecutor(100)).Handler()
	rec := postAsk(t, h, `{"query": "top software"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAskMalformedBodyIsBadRequest(t *testing.T) {
	h := newTestServer(t, query.NewMemoryExecutor(100)).Handler()
	rec := postAsk(t, h, `{"query": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAskTimeoutIsGatewayTimeout(t *testing.T) {
	exec := query.NewMemoryExecutor(100)
	exec.FailWith("mv_unauthorized_software_analytics_v3", context.DeadlineExceeded)
	exec.FailWith("mv_unauthorized_usage_dashboard", context.DeadlineExceeded)

	h := newTestServer(t, exec).Handler()
	rec := postAsk(t, h, `{"query": "unauthorized unapproved blocked banned software", "district_id": "D1"}`)
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestAskVerboseIncludesIntentScores(t *testing.T) {
	exec := query.NewMemoryExecutor(100)
	exec.Load("mv_software_usage_rankings_v4", []query.Row{
		{"district_id": "D1", "name": "MathWorks", "total_minutes": 900.0},
	})

	h := newTestServer(t, exec).Handler()
	rec := postAsk(t, h, `{"query": "top used software", "district_id": "D1", "verbose": true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp askResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Intents)
	assert.Contains(t, resp.Intents, "software_usage")
}

func TestDashboardEndpoint(t *testing.T) {
	exec := query.NewMemoryExecutor(100)
	exec.Load("mv_dashboard_software_metrics", []query.Row{
		{"district_id": "D1", "name": "MathWorks", "active_users_30d": 50.0},
	})

	h := newTestServer(t, exec).Handler()
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/D1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp askResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Rows)
	assert.Equal(t, "D1", resp.Rows[0]["district_id"])
}

func TestHealthWithoutStore(t *testing.T) {
	h := newTestServer(t, query.NewMemoryExecutor(100)).Handler()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return context.DeadlineExceeded }

func TestHealthDegradedStore(t *testing.T) {
	reg, err := registry.Default()
	require.NoError(t, err)
	router := routing.New(reg, query.NewMemoryExecutor(100), zap.NewNop(), routing.Options{})
	s := New(router, nil, failingPinger{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
