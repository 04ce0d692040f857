// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"sync"
	"time"
)

type LastOperation struct {
	Op        string     `json:"op"`
	Time      uint64     `json:"time"`
	Timestamp *time.Time `json:"timestamp"`
}

type Clock struct {
	Checked bool   `json:"checked"`
	Offset  string `json:"offset"`
}

type Status struct {
	Healthy       bool           `json:"healthy"`
	LastOperation *LastOperation `json:"lastOperation"`
	Clock         *Clock         `json:"clock"`
	EventsError   string         `json:"eventsError,omitempty"`
}

// Health collects the liveness of the ledger. The zero value is ready to use.
type Health struct {
	lock         sync.RWMutex
	lastOp       string
	lastOpTime   uint64
	lastOpAt     time.Time
	clockChecked bool
	clockOffset  time.Duration
	eventsErr    error
}

func (h *Health) OperationCommitted(op string, now uint64) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.lastOp = op
	h.lastOpTime = now
	h.lastOpAt = time.Now()
}

// EventsRecorded keeps the last event db failure until a later insert succeeds.
func (h *Health) EventsRecorded(err error) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.eventsErr = err
}

func (h *Health) ClockChecked(offset time.Duration) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.clockChecked = true
	h.clockOffset = offset
}

// Status reports unhealthy when event recording is failing or the clock
// drifts beyond maxClockOffset.
func (h *Health) Status(maxClockOffset time.Duration) *Status {
	h.lock.RLock()
	defer h.lock.RUnlock()

	status := &Status{
		Healthy: true,
		Clock: &Clock{
			Checked: h.clockChecked,
			Offset:  h.clockOffset.String(),
		},
	}
	if h.lastOp != "" {
		at := h.lastOpAt
		status.LastOperation = &LastOperation{Op: h.lastOp, Time: h.lastOpTime, Timestamp: &at}
	}
	if h.eventsErr != nil {
		status.Healthy = false
		status.EventsError = h.eventsErr.Error()
	}
	if h.clockOffset > maxClockOffset || h.clockOffset < -maxClockOffset {
		status.Healthy = false
	}
	return status
}
