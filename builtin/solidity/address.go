// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/binarybit/staking/bnry"
)

// Address is a wrapper for storage and retrieval of an address. Similar to storing an address in a smart contract.
type Address struct {
	context *Context
	pos     bnry.Bytes32
}

func NewAddress(context *Context, pos bnry.Bytes32) *Address {
	return &Address{context: context, pos: pos}
}

func (a *Address) Get() (bnry.Address, error) {
	storage, err := a.context.get(a.pos)
	if err != nil {
		return bnry.Address{}, err
	}
	return bnry.BytesToAddress(storage.Bytes()), nil
}

func (a *Address) Set(addr bnry.Address) {
	a.context.set(a.pos, bnry.BytesToBytes32(addr.Bytes()))
}
