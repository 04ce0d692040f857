// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"
	"math"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/binarybit/staking/api/restutil"
	"github.com/binarybit/staking/eventdb"
	"github.com/binarybit/staking/runtime"
)

// Events serves raw event records; amounts are in base units.
type Events struct {
	rt    *runtime.Runtime
	limit uint64
}

func New(rt *runtime.Runtime, limit uint64) *Events {
	return &Events{
		rt,
		limit,
	}
}

func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	var filter eventdb.Filter
	if err := restutil.ParseJSON(req.Body, &filter); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if filter.Options != nil && filter.Options.Limit > e.limit {
		return restutil.Forbidden(fmt.Errorf("options.limit exceeds the maximum allowed value of %d", e.limit))
	}
	if filter.Options != nil && filter.Options.Offset > math.MaxInt64 {
		return restutil.BadRequest(fmt.Errorf("options.offset exceeds the maximum allowed value of %d", int64(math.MaxInt64)))
	}
	// a zero To leaves the time range open ended
	if r := filter.Range; r != nil && r.To != 0 && r.To < r.From {
		return restutil.BadRequest(errors.New("range.to must be greater than or equal to range.from"))
	}
	if filter.Order != "" && filter.Order != eventdb.ASC && filter.Order != eventdb.DESC {
		return restutil.BadRequest(fmt.Errorf("order: must be %q or %q", eventdb.ASC, eventdb.DESC))
	}
	for i, criterion := range filter.CriteriaSet {
		if criterion == nil {
			return restutil.BadRequest(fmt.Errorf("criteriaSet[%d]: null not allowed", i))
		}
	}
	if filter.Options == nil {
		// one over the limit tells whether there are more events than allowed
		filter.Options = &eventdb.Options{
			Offset: 0,
			Limit:  e.limit + 1,
		}
	}

	events, err := e.rt.Events(req.Context(), &filter)
	if err != nil {
		return err
	}
	if len(events) > int(e.limit) {
		return restutil.Forbidden(fmt.Errorf("the number of filtered events exceeds the maximum allowed value of %d, please use pagination", e.limit))
	}
	if events == nil {
		events = []*eventdb.Event{}
	}
	return restutil.WriteJSON(w, events)
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /events").
		HandlerFunc(restutil.WrapHandlerFunc(e.handleFilter))
}
