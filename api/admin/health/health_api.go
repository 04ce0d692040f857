// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/binarybit/staking/api/restutil"
	"github.com/binarybit/staking/health"
)

// API reports ledger health. Unhealthy answers carry 503 so load
// balancers and health checkers need not parse the body.
type API struct {
	health         *health.Health
	maxClockOffset time.Duration
}

func New(h *health.Health, maxClockOffset time.Duration) *API {
	return &API{health: h, maxClockOffset: maxClockOffset}
}

func (a *API) handleGetHealth(w http.ResponseWriter, r *http.Request) error {
	maxClockOffset := a.maxClockOffset
	if q := r.URL.Query().Get("maxClockOffset"); q != "" {
		d, err := time.ParseDuration(q)
		if err != nil || d < 0 {
			return restutil.BadRequest(errors.Errorf("maxClockOffset: invalid duration %q", q))
		}
		maxClockOffset = d
	}

	status := a.health.Status(maxClockOffset)
	w.Header().Set("Content-Type", restutil.JSONContentType)
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	return restutil.WriteJSON(w, status)
}

func (a *API) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /admin/health").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetHealth))
}
