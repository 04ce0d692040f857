// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import "sync/atomic"

// Stats counts GetOrLoad lookups.
type Stats struct {
	hit, miss atomic.Int64
}

func (cs *Stats) Hit() int64 { return cs.hit.Add(1) }

func (cs *Stats) Miss() int64 { return cs.miss.Add(1) }

// Snapshot returns the counters and the hit rate in permille, 0 before any lookup.
func (cs *Stats) Snapshot() (hit, miss, permille int64) {
	hit, miss = cs.hit.Load(), cs.miss.Load()
	if lookups := hit + miss; lookups > 0 {
		permille = hit * 1000 / lookups
	}
	return
}
