// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"sync/atomic"
	"time"
)

// Clock returns the current unix time in seconds.
type Clock func() uint64

// SystemClock reads the local wall clock.
func SystemClock() uint64 {
	return uint64(time.Now().Unix())
}

// OffsetClock shifts base by an offset that can be adjusted later, e.g. by an NTP check.
type OffsetClock struct {
	base   Clock
	offset atomic.Int64
}

func NewOffsetClock(base Clock) *OffsetClock {
	if base == nil {
		base = SystemClock
	}
	return &OffsetClock{base: base}
}

// SetOffset sets the correction applied to the base clock.
func (c *OffsetClock) SetOffset(d time.Duration) {
	c.offset.Store(int64(d / time.Second))
}

func (c *OffsetClock) Offset() time.Duration {
	return time.Duration(c.offset.Load()) * time.Second
}

// Now is a Clock.
func (c *OffsetClock) Now() uint64 {
	now := int64(c.base()) + c.offset.Load()
	if now < 0 {
		return 0
	}
	return uint64(now)
}
