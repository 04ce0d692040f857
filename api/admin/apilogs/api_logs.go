// Copyright (c) 2024 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package apilogs toggles the request logger of the ledger API at runtime.
package apilogs

import (
	"net/http"
	"sync/atomic"

	"github.com/gorilla/mux"

	"github.com/binarybit/staking/api/restutil"
	"github.com/binarybit/staking/log"
)

var logger = log.WithContext("pkg", "apilogs")

type LogStatus struct {
	Enabled bool `json:"enabled"`
}

type APILogs struct {
	enabled *atomic.Bool
}

// New controls the flag shared with the request logger middleware.
func New(enabled *atomic.Bool) *APILogs {
	return &APILogs{enabled: enabled}
}

func (a *APILogs) handleGet(w http.ResponseWriter, _ *http.Request) error {
	return restutil.WriteJSON(w, LogStatus{Enabled: a.enabled.Load()})
}

func (a *APILogs) handleSet(w http.ResponseWriter, r *http.Request) error {
	var req LogStatus
	if err := restutil.ParseJSON(r.Body, &req); err != nil {
		return restutil.BadRequest(err)
	}
	if prev := a.enabled.Swap(req.Enabled); prev != req.Enabled {
		logger.Info("api request logs toggled", "enabled", req.Enabled)
	}
	return restutil.WriteJSON(w, req)
}

func (a *APILogs) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /admin/apilogs").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGet))
	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /admin/apilogs").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleSet))
}
