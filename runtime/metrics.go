// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"math/big"

	"github.com/binarybit/staking/metrics"
)

var (
	metricOpCounter    = metrics.LazyLoadCounterVec("operation_count", []string{"op", "status"})
	metricOpDuration   = metrics.LazyLoadHistogramVec("operation_duration_ms", []string{"op"}, metrics.BucketOpMillis)
	metricTotalStaked  = metrics.LazyLoadGauge("total_staked")
	metricTreasury     = metrics.LazyLoadGauge("treasury_balance")
	metricParticipants = metrics.LazyLoadGauge("participant_count")
)

// gaugeValue clamps amounts that do not fit a gauge.
func gaugeValue(v *big.Int) int64 {
	if v == nil {
		return 0
	}
	if !v.IsInt64() {
		if v.Sign() < 0 {
			return 0
		}
		return int64(^uint64(0) >> 1)
	}
	return v.Int64()
}
