// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"github.com/binarybit/staking/log"
	"github.com/binarybit/staking/metrics"
)

var (
	logger = log.WithContext("pkg", "lvldb")

	metricSize    = metrics.LazyLoadGauge("ledger_db_size_bytes")
	metricIOBytes = metrics.LazyLoadGaugeVec("ledger_db_io_bytes", []string{"op"})
)
