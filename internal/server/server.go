// Package server exposes the routing subsystem over HTTP. It owns request
// parsing, scope construction, and the mapping from the routing error
// taxonomy onto status codes; everything else is delegated to the router.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"districtlens/internal/access"
	"districtlens/internal/query"
	"districtlens/internal/routing"
)

// Narrator turns a routed result into a human-readable answer. The AI
// composer implements it; a nil Narrator disables the answer field.
type Narrator interface {
	Narrate(ctx context.Context, question string, res *routing.Result) string
}

// Pinger is implemented by executors with a live store connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	router   *routing.Router
	narrator Narrator
	pinger   Pinger
	log      *zap.Logger
}

func New(router *routing.Router, narrator Narrator, pinger Pinger, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{router: router, narrator: narrator, pinger: pinger, log: log}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/ask", s.handleAsk)
	mux.HandleFunc("GET /api/dashboard/{district_id}", s.handleDashboard)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

type askRequest struct {
	Query        string            `json:"query"`
	DistrictID   string            `json:"district_id"`
	AllDistricts bool              `json:"all_districts"`
	Filters      map[string]string `json:"filters,omitempty"`
	Verbose      bool              `json:"verbose,omitempty"`
	Limit        int               `json:"limit,omitempty"`
}

type askResponse struct {
	Intent          string            `json:"intent,omitempty"`
	ViewUsed        string            `json:"view_used,omitempty"`
	Rows            []query.Row       `json:"rows"`
	Truncated       bool              `json:"truncated"`
	FallbackDepth   int               `json:"fallback_depth"`
	NoData          bool              `json:"no_data,omitempty"`
	ExecutionTimeMs int64             `json:"execution_time_ms"`
	Answer          string            `json:"answer,omitempty"`
	Intents         map[string]int    `json:"intents,omitempty"`
	Filters         map[string]string `json:"filters,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query is required"})
		return
	}

	scope, err := buildScope(req.DistrictID, req.AllDistricts)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	res, err := s.router.RouteAndExecute(r.Context(), routing.Request{
		Query:        req.Query,
		Scope:        scope,
		ExtraFilters: req.Filters,
		Verbose:      req.Verbose,
		Limit:        req.Limit,
	})
	if err != nil {
		s.writeRoutingError(w, err)
		return
	}

	resp := askResponse{
		Intent:          string(res.Intent),
		ViewUsed:        res.ViewUsed,
		Rows:            res.Rows,
		Truncated:       res.Truncated,
		FallbackDepth:   res.FallbackDepth,
		ExecutionTimeMs: res.ExecutionTime.Milliseconds(),
	}
	if req.Verbose {
		resp.Intents = make(map[string]int, len(res.Intents))
		for _, sc := range res.Intents {
			resp.Intents[string(sc.Intent)] = sc.Points
		}
		resp.Filters = req.Filters
	}
	if s.narrator != nil {
		resp.Answer = s.narrator.Narrate(r.Context(), req.Query, res)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleDashboard answers the fixed overview question for one district.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	scope, err := access.Tenant(r.PathValue("district_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	res, err := s.router.RouteAndExecute(r.Context(), routing.Request{
		Query: "dashboard overview summary",
		Scope: scope,
	})
	if err != nil {
		s.writeRoutingError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, askResponse{
		Intent:          string(res.Intent),
		ViewUsed:        res.ViewUsed,
		Rows:            res.Rows,
		Truncated:       res.Truncated,
		FallbackDepth:   res.FallbackDepth,
		ExecutionTimeMs: res.ExecutionTime.Milliseconds(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.pinger.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"store":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeRoutingError maps the routing taxonomy onto HTTP statuses. NoData is
// a valid empty answer, not an error status.
func (s *Server) writeRoutingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, routing.ErrNoData):
		writeJSON(w, http.StatusOK, askResponse{Rows: []query.Row{}, NoData: true})
	case isIsolationViolation(err):
		s.log.Error("tenant isolation violation surfaced to handler", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	case errors.Is(err, query.ErrForbiddenOperation):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden operation"})
	case errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusGatewayTimeout, errorResponse{Error: "query timed out"})
	case isExecutionError(err):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "data store unavailable"})
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
}

func buildScope(districtID string, allDistricts bool) (access.Scope, error) {
	if allDistricts {
		return access.Elevated(), nil
	}
	return access.Tenant(districtID)
}

func isIsolationViolation(err error) bool {
	var iso *query.IsolationViolation
	return errors.As(err, &iso)
}

func isExecutionError(err error) bool {
	var execErr *query.ExecutionError
	return errors.As(err, &execErr)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ListenAndServe runs the HTTP server until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
