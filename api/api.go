// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api serves the staking ledger over http.
package api

import (
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/binarybit/staking/api/events"
	"github.com/binarybit/staking/api/ledger"
	"github.com/binarybit/staking/api/middleware"
	"github.com/binarybit/staking/api/restutil"
	"github.com/binarybit/staking/api/subscriptions"
	"github.com/binarybit/staking/api/token"
	"github.com/binarybit/staking/log"
	"github.com/binarybit/staking/metrics"
	"github.com/binarybit/staking/runtime"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins       string
	EventsLimit          uint64
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	Log5xxErrors         bool
	EnableMetrics        bool
}

// New return api router
func New(rt *runtime.Runtime, opts Options) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	ledger.New(rt).
		Mount(router, "/ledger")
	token.New(rt).
		Mount(router, "/token")
	events.New(rt, opts.EventsLimit).
		Mount(router, "/events")
	subs := subscriptions.New(rt, origins)
	subs.Mount(router, "/subscriptions")

	if opts.EnableMetrics {
		router.Path("/metrics").
			Methods(http.MethodGet).
			HandlerFunc(restutil.WrapHandlerFunc(func(w http.ResponseWriter, _ *http.Request) error {
				rt.UpdateMetrics()
				w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
				return metrics.WriteText(w)
			}))
		router.Use(metricsMiddleware)
	}

	enableReqLogger := opts.EnableReqLogger
	if enableReqLogger == nil {
		enableReqLogger = &atomic.Bool{}
	}
	router.Use(middleware.RequestLoggerMiddleware(logger, enableReqLogger, opts.SlowQueriesThreshold, opts.Log5xxErrors))

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	return handler.ServeHTTP, subs.Close // subscriptions handles hijacked conns, which need to be closed
}
