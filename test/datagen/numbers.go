// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"math/big"
	mathrand "math/rand/v2"

	"github.com/binarybit/staking/bnry"
)

func RandInt() int {
	return mathrand.Int() //#nosec G404
}

func RandIntN(n int) int {
	return mathrand.N(n) //#nosec G404
}

func RandUint64N(n uint64) uint64 {
	return mathrand.Uint64N(n) //#nosec G404
}

// RandAmount returns a random amount in smallest units between 1 satoshi and maxTokens whole tokens.
func RandAmount(maxTokens int64) *big.Int {
	limit := bnry.Tokens(maxTokens)
	n := new(big.Int).SetUint64(mathrand.Uint64N(limit.Uint64())) //#nosec G404
	return n.Add(n, big.NewInt(1))
}
