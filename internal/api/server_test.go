// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ManuGH/eosgen/internal/cache"
	"github.com/ManuGH/eosgen/internal/catalog"
	"github.com/ManuGH/eosgen/internal/config"
	"github.com/ManuGH/eosgen/internal/dataset"
	"github.com/ManuGH/eosgen/internal/study"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	srv    *Server
	http   *httptest.Server
	store  *catalog.Store
	index  *dataset.Index
	runner *study.Runner
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := config.Defaults()
	cfg.DataDir = t.TempDir()
	cfg.Study.Points = 50

	store, err := catalog.Open(context.Background(), filepath.Join(cfg.DataDir, "catalog.db"))
	require.NoError(t, err)
	index, err := dataset.NewIndex(filepath.Join(cfg.DataDir, "tables"))
	require.NoError(t, err)
	runner := study.NewRunner(store, study.Options{
		OutputDir: index.Dir(),
		Points:    cfg.Study.Points,
		Workers:   2,
	})
	mem := cache.NewMemoryCache(0)

	srv := New(Deps{Config: cfg, Catalog: store, Index: index, Runner: runner, Cache: mem})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
		runner.Wait()
		_ = mem.Close()
		_ = store.Close()
	})
	return &testEnv{srv: srv, http: ts, store: store, index: index, runner: runner}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			rd = strings.NewReader(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			rd = bytes.NewReader(raw)
		}
	}
	req, err := http.NewRequest(method, e.http.URL+path, rd)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.http.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestKinds(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/api/v1/kinds", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[map[string][]map[string]any](t, resp)
	require.Len(t, body["kinds"], 2)
	assert.Equal(t, "schwarzschild-interior", body["kinds"][0]["kind"])
	assert.Equal(t, "tolman-iv", body["kinds"][1]["kind"])
}

func TestEvaluate_Cached(t *testing.T) {
	env := newTestEnv(t)
	req := map[string]any{"kind": "tolman-iv", "params": map[string]float64{"A": 1, "R": 1.5}, "points": 50}

	resp := env.do(t, http.MethodPost, "/api/v1/evaluate", req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "MISS", resp.Header.Get("X-Cache"))
	first := decode[map[string]any](t, resp)
	assert.Equal(t, "tolmanIV_A1.0_R1.5.csv", first["file"])
	assert.EqualValues(t, 50, first["points"])
	assert.Equal(t, true, first["report"].(map[string]any)["acceptable"])
	assert.NotContains(t, first, "rows")

	resp = env.do(t, http.MethodPost, "/api/v1/evaluate", map[string]any{
		"kind": "tolman-iv", "params": map[string]float64{"R": 1.5, "A": 1}, "points": 50,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "HIT", resp.Header.Get("X-Cache"))

	req["include_table"] = true
	resp = env.do(t, http.MethodPost, "/api/v1/evaluate", req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "MISS", resp.Header.Get("X-Cache"))
	withRows := decode[map[string]any](t, resp)
	assert.Len(t, withRows["rows"], 50)
}

func TestEvaluate_Incompressible(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodPost, "/api/v1/evaluate", map[string]any{
		"kind": "schwarzschild-interior", "params": map[string]float64{"R": 2, "rb": 1},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	report := body["report"].(map[string]any)
	assert.Equal(t, false, report["acceptable"])
	assert.Nil(t, report["max_cs2"])
	assert.EqualValues(t, 50, body["points"], "configured default")
}

func TestEvaluate_Errors(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		name string
		body any
		code int
	}{
		{"unknown kind", map[string]any{"kind": "kerr", "params": map[string]float64{"a": 1}}, http.StatusBadRequest},
		{"no boundary", map[string]any{"kind": "tolman-iv", "params": map[string]float64{"A": 2, "R": 1}}, http.StatusUnprocessableEntity},
		{"missing param", map[string]any{"kind": "tolman-iv", "params": map[string]float64{"A": 1}}, http.StatusUnprocessableEntity},
		{"too few points", map[string]any{"kind": "tolman-iv", "params": map[string]float64{"A": 1, "R": 2}, "points": 1}, http.StatusBadRequest},
		{"too many points", map[string]any{"kind": "tolman-iv", "params": map[string]float64{"A": 1, "R": 2}, "points": MaxEvaluatePoints + 1}, http.StatusBadRequest},
		{"unknown field", `{"kind":"tolman-iv","bogus":1}`, http.StatusBadRequest},
		{"malformed", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPost, "/api/v1/evaluate", tt.body)
			assert.Equal(t, tt.code, resp.StatusCode)
			body := decode[map[string]string](t, resp)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestStudyLifecycle(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodPost, "/api/v1/studies", map[string]any{
		"cases": []map[string]any{
			{"kind": "tolman-iv", "params": map[string]float64{"A": 1, "R": 1.5}},
			{"kind": "schwarzschild-interior", "params": map[string]float64{"R": 2, "rb": 1}},
		},
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	started := decode[startStudyResponse](t, resp)
	assert.Equal(t, 2, started.Cases)
	assert.Equal(t, "/api/v1/studies/"+started.ID, resp.Header.Get("Location"))

	require.Eventually(t, func() bool {
		st, err := env.store.GetStudy(context.Background(), started.ID)
		return err == nil && st.Status != catalog.StudyRunning
	}, 10*time.Second, 20*time.Millisecond)
	require.Eventually(t, func() bool { return len(env.index.List()) == 2 }, 5*time.Second, 20*time.Millisecond)

	resp = env.do(t, http.MethodGet, "/api/v1/studies/"+started.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	st := decode[catalog.Study](t, resp)
	assert.Equal(t, catalog.StudyOK, st.Status)
	assert.Equal(t, 1, st.Acceptable)

	resp = env.do(t, http.MethodGet, "/api/v1/studies", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/solutions?study="+started.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	all := decode[page[catalog.Record]](t, resp)
	assert.Equal(t, 2, all.Total)
	for _, rec := range all.Items {
		assert.Nil(t, rec.Report, "listing omits reports")
	}

	resp = env.do(t, http.MethodGet, "/api/v1/solutions?acceptable=true&limit=1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	accepted := decode[page[catalog.Record]](t, resp)
	require.Equal(t, 1, accepted.Total)
	require.Len(t, accepted.Items, 1)
	id := accepted.Items[0].ID

	resp = env.do(t, http.MethodGet, "/api/v1/solutions/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rec := decode[catalog.Record](t, resp)
	assert.NotEmpty(t, rec.Report)

	resp = env.do(t, http.MethodGet, "/api/v1/solutions/"+id+"/table", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "# kind=tolman-iv\n"))

	resp = env.do(t, http.MethodGet, "/api/v1/files", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	files := decode[struct {
		Items []dataset.Entry `json:"items"`
	}](t, resp)
	require.Len(t, files.Items, 2)

	resp = env.do(t, http.MethodGet, "/api/v1/files/tolmanIV_A1.0_R1.5.csv", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	file := decode[map[string]any](t, resp)
	assert.Equal(t, true, file["passed"])
	assert.Len(t, file["rows"], 50)

	resp = env.do(t, http.MethodGet, "/api/v1/solutions/sol-missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = env.do(t, http.MethodGet, "/api/v1/files/notes.txt", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = env.do(t, http.MethodGet, "/api/v1/files/missing.csv", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = env.do(t, http.MethodGet, "/api/v1/solutions?acceptable=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStartStudy_InvalidGrid(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodPost, "/api/v1/studies", map[string]any{
		"grids": []map[string]any{{"kind": "tolman-iv", "axes": map[string]any{"A": map[string]any{"values": []float64{1}}}}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

type busyRunner struct{}

func (busyRunner) Start(context.Context, []study.Case) (string, <-chan study.Result, error) {
	return "", nil, study.ErrRunning
}

func (busyRunner) Running() bool { return true }

func TestStartStudy_Running(t *testing.T) {
	cfg := config.Defaults()
	srv := New(Deps{Config: cfg, Runner: busyRunner{}})
	t.Cleanup(srv.Close)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/studies", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"study already running"}`, rec.Body.String())
}

func TestProbesAndMetrics(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = env.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	env.do(t, http.MethodGet, "/api/v1/kinds", nil)
	resp = env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `eosgen_http_request_duration_seconds_count{method="GET",path="/api/v1/kinds",status="200"}`)

	resp = env.do(t, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}
