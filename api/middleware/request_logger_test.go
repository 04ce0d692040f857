// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// mockLogger records the context of Info and Warn records
type mockLogger struct {
	loggedData []any
}

func (m *mockLogger) Trace(_ string, _ ...any) {}

func (m *mockLogger) Debug(_ string, _ ...any) {}

func (m *mockLogger) Error(_ string, _ ...any) {}

func (m *mockLogger) Info(_ string, ctx ...any) {
	m.loggedData = append(m.loggedData, ctx...)
}

func (m *mockLogger) Warn(_ string, ctx ...any) {
	m.loggedData = append(m.loggedData, ctx...)
}

func TestRequestLoggerHandler(t *testing.T) {
	tests := []struct {
		name                 string
		handler              http.HandlerFunc
		enabled              bool
		slowQueriesThreshold time.Duration
		log5xxErrors         bool
		expectedStatusCode   int
		shouldLog            bool
	}{
		{
			name: "all logging enabled",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte("OK"))
			},
			enabled:            true,
			expectedStatusCode: http.StatusOK,
			shouldLog:          true,
		},
		{
			name: "all logging disabled",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte("OK"))
			},
			expectedStatusCode: http.StatusOK,
			shouldLog:          false,
		},
		{
			name: "slow request",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				time.Sleep(15 * time.Millisecond)
				w.WriteHeader(http.StatusOK)
			},
			slowQueriesThreshold: 10 * time.Millisecond,
			expectedStatusCode:   http.StatusOK,
			shouldLog:            true,
		},
		{
			name: "fast request under threshold",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
			slowQueriesThreshold: time.Second,
			expectedStatusCode:   http.StatusOK,
			shouldLog:            false,
		},
		{
			name: "5xx logged",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			log5xxErrors:       true,
			expectedStatusCode: http.StatusInternalServerError,
			shouldLog:          true,
		},
		{
			name: "4xx not logged",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
			},
			log5xxErrors:       true,
			expectedStatusCode: http.StatusUnprocessableEntity,
			shouldLog:          false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &mockLogger{}
			enabled := &atomic.Bool{}
			enabled.Store(tt.enabled)

			handler := RequestLoggerMiddleware(logger, enabled, tt.slowQueriesThreshold, tt.log5xxErrors)(tt.handler)

			req := httptest.NewRequest(http.MethodPost, "/ledger/stake", strings.NewReader(`{"amount":"1"}`))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatusCode, rr.Code)
			if !tt.shouldLog {
				assert.Empty(t, logger.loggedData)
				return
			}
			assert.Contains(t, logger.loggedData, "URI")
			assert.Contains(t, logger.loggedData, "/ledger/stake")
			assert.Contains(t, logger.loggedData, `{"amount":"1"}`)
			assert.Contains(t, logger.loggedData, tt.expectedStatusCode)
		})
	}
}
