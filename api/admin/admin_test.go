// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binarybit/staking/api/admin/apilogs"
	"github.com/binarybit/staking/api/admin/loglevel"
	"github.com/binarybit/staking/health"
	"github.com/binarybit/staking/log"
)

type testAdmin struct {
	*httptest.Server
	level   *log.LevelVar
	apiLogs *atomic.Bool
	health  *health.Health
}

func newTestAdmin(t *testing.T) *testAdmin {
	_, level := log.NewLeveledLogger(log.JSONHandler(io.Discard), 3)
	ta := &testAdmin{level: level, apiLogs: &atomic.Bool{}, health: &health.Health{}}
	ta.Server = httptest.NewServer(New(ta.level, ta.apiLogs, ta.health, 5*time.Second))
	t.Cleanup(ta.Close)
	return ta
}

func (ta *testAdmin) do(t *testing.T, method, path, body string) (int, []byte) {
	req, err := http.NewRequest(method, ta.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, data
}

func TestLogLevel(t *testing.T) {
	ta := newTestAdmin(t)

	tests := []struct {
		name     string
		method   string
		body     string
		status   int
		expected string
	}{
		{"get", http.MethodGet, "", http.StatusOK, "info"},
		{"set debug", http.MethodPost, `{"level":"debug"}`, http.StatusOK, "debug"},
		{"set crit", http.MethodPost, `{"level":"crit"}`, http.StatusOK, "crit"},
		{"invalid level", http.MethodPost, `{"level":"loud"}`, http.StatusBadRequest, ""},
		{"invalid body", http.MethodPost, `{"lvl":"info"}`, http.StatusBadRequest, ""},
		{"get after set", http.MethodGet, "", http.StatusOK, "crit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := ta.do(t, tt.method, "/admin/loglevel", tt.body)
			assert.Equal(t, tt.status, status)
			if tt.expected == "" {
				return
			}
			var res loglevel.Response
			require.NoError(t, json.Unmarshal(body, &res))
			assert.Equal(t, tt.expected, res.CurrentLevel)
		})
	}
	assert.Equal(t, log.LevelCrit, ta.level.Level())
}

func TestAPILogs(t *testing.T) {
	ta := newTestAdmin(t)

	status, body := ta.do(t, http.MethodPost, "/admin/apilogs", `{"enabled":true}`)
	require.Equal(t, http.StatusOK, status)
	var res apilogs.LogStatus
	require.NoError(t, json.Unmarshal(body, &res))
	assert.True(t, res.Enabled)
	assert.True(t, ta.apiLogs.Load())

	status, _ = ta.do(t, http.MethodPost, "/admin/apilogs", `not json`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = ta.do(t, http.MethodGet, "/admin/apilogs", "")
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &res))
	assert.True(t, res.Enabled)
}

func TestHealth(t *testing.T) {
	ta := newTestAdmin(t)

	ta.health.OperationCommitted("stake", 1_700_000_000)
	status, body := ta.do(t, http.MethodGet, "/admin/health", "")
	require.Equal(t, http.StatusOK, status)
	var res health.Status
	require.NoError(t, json.Unmarshal(body, &res))
	assert.True(t, res.Healthy)
	require.NotNil(t, res.LastOperation)
	assert.Equal(t, "stake", res.LastOperation.Op)

	ta.health.ClockChecked(8 * time.Second)
	status, _ = ta.do(t, http.MethodGet, "/admin/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	status, _ = ta.do(t, http.MethodGet, "/admin/health?maxClockOffset=10s", "")
	assert.Equal(t, http.StatusOK, status)
	status, _ = ta.do(t, http.MethodGet, "/admin/health?maxClockOffset=soon", "")
	assert.Equal(t, http.StatusBadRequest, status)

	ta.health.ClockChecked(0)
	ta.health.EventsRecorded(errors.New("disk I/O error"))
	status, body = ta.do(t, http.MethodGet, "/admin/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, "disk I/O error", res.EventsError)
}

func TestStartServer(t *testing.T) {
	_, level := log.NewLeveledLogger(log.JSONHandler(io.Discard), 3)
	url, stop, err := StartServer("127.0.0.1:0", New(level, &atomic.Bool{}, &health.Health{}, time.Second))
	require.NoError(t, err)
	defer stop()

	res, err := http.Get(url + "/loglevel")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}
