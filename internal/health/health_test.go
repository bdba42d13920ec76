// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockChecker struct {
	name   string
	status Status
}

func (m *mockChecker) Name() string { return m.name }

func (m *mockChecker) Check(context.Context) CheckResult {
	return CheckResult{Status: m.status}
}

func TestManager_Health(t *testing.T) {
	m := NewManager("v1.0.0")
	m.RegisterChecker(&mockChecker{name: "healthy", status: StatusHealthy})
	m.RegisterChecker(&mockChecker{name: "degraded", status: StatusDegraded})

	resp := m.Health(context.Background(), false)
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, "v1.0.0", resp.Version)
	assert.Nil(t, resp.Checks)

	resp = m.Health(context.Background(), true)
	assert.Equal(t, StatusDegraded, resp.Status)
	assert.Len(t, resp.Checks, 2)
}

func TestManager_Ready(t *testing.T) {
	m := NewManager("v1")
	assert.True(t, m.Ready(context.Background()).Ready)

	m.RegisterChecker(&mockChecker{name: "degraded", status: StatusDegraded})
	resp := m.Ready(context.Background())
	assert.True(t, resp.Ready)
	assert.Equal(t, StatusDegraded, resp.Status)

	m.RegisterChecker(&mockChecker{name: "down", status: StatusUnhealthy})
	resp = m.Ready(context.Background())
	assert.False(t, resp.Ready)
	assert.Equal(t, StatusUnhealthy, resp.Status)
}

func TestServeReady_StatusCodes(t *testing.T) {
	m := NewManager("v1")
	rec := httptest.NewRecorder()
	m.ServeReady(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	m.RegisterChecker(NewPingChecker("catalog", func(context.Context) error { return errors.New("closed") }))
	rec = httptest.NewRecorder()
	m.ServeReady(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body ReadinessResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "closed", body.Checks["catalog"].Error)

	rec = httptest.NewRecorder()
	m.ServeHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDirChecker(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, StatusHealthy, NewDirChecker("data", dir).Check(context.Background()).Status)

	file := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	assert.Equal(t, StatusUnhealthy, NewDirChecker("data", file).Check(context.Background()).Status)
	assert.Equal(t, StatusUnhealthy, NewDirChecker("data", filepath.Join(dir, "missing")).Check(context.Background()).Status)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "probe file must be removed")
}

func TestLastStudyChecker(t *testing.T) {
	finished := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		status string
		err    error
		want   Status
	}{
		{"", nil, StatusHealthy},
		{"ok", nil, StatusHealthy},
		{"running", nil, StatusHealthy},
		{"degraded", nil, StatusDegraded},
		{"failed", nil, StatusDegraded},
		{"", errors.New("db"), StatusDegraded},
	}
	for _, tt := range tests {
		c := NewLastStudyChecker(func(context.Context) (string, time.Time, error) {
			return tt.status, finished, tt.err
		})
		assert.Equal(t, tt.want, c.Check(context.Background()).Status, tt.status)
	}
}
