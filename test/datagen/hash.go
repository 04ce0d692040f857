// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/rand"

	"github.com/binarybit/staking/bnry"
)

func RandomHash() bnry.Bytes32 {
	var b32 bnry.Bytes32

	rand.Read(b32[:])
	return b32
}

func RandAddress() (addr bnry.Address) {
	rand.Read(addr[:])
	return
}

func RandAddresses(n int) []bnry.Address {
	addrs := make([]bnry.Address, n)
	for i := range addrs {
		addrs[i] = RandAddress()
	}
	return addrs
}
