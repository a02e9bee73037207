package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/haojie06/dallebot/internal/ledger"
	"github.com/haojie06/dallebot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStats struct {
	snapshot ledger.Snapshot
	err      error
}

func (f fakeStats) Snapshot(ctx context.Context) (ledger.Snapshot, error) {
	return f.snapshot, f.err
}

func do(t *testing.T, handler http.Handler, path, apiKey string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if apiKey != "" {
		req.Header.Set("API-KEY", apiKey)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	router := InitRouter("secret", nil)
	w := do(t, router, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.HealthHTTPResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.False(t, resp.LedgerEnabled)
}

func TestStatsRequiresAPIKey(t *testing.T) {
	router := InitRouter("secret", fakeStats{})
	assert.Equal(t, http.StatusUnauthorized, do(t, router, "/stats", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, router, "/stats", "wrong").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, router, "/metrics", "").Code)
}

func TestStats(t *testing.T) {
	router := InitRouter("secret", fakeStats{snapshot: ledger.Snapshot{
		Runs:    3,
		Spent:   0.39,
		Authors: []ledger.AuthorStats{{Author: "A", Runs: 2, Spent: 0.26}, {Author: "B", Runs: 1, Spent: 0.13}},
	}})
	w := do(t, router, "/stats", "secret")
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.StatsHTTPResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "completed", resp.Status)
	require.NotNil(t, resp.Stats)
	assert.Equal(t, 3, resp.Stats.Runs)
	assert.Equal(t, "A", resp.Stats.Authors[0].Author)
}

func TestStatsErrors(t *testing.T) {
	w := do(t, InitRouter("secret", nil), "/stats", "secret")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(t, InitRouter("secret", fakeStats{err: errors.New("db down")}), "/stats", "secret")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "db down")
}

func TestMetrics(t *testing.T) {
	w := do(t, InitRouter("secret", nil), "/metrics", "secret")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
