// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/binarybit/staking/bnry"
)

// AddressList is an append only list of addresses, similar to address[] in Solidity.
// The length lives at pos, element i at keccak256(pos, i).
type AddressList struct {
	context *Context
	length  *Uint64
	pos     bnry.Bytes32
}

func NewAddressList(context *Context, pos bnry.Bytes32) *AddressList {
	return &AddressList{
		context: context,
		length:  NewUint64(context, pos),
		pos:     pos,
	}
}

func (l *AddressList) slot(i uint64) bnry.Bytes32 {
	var idx [8]byte
	binary.BigEndian.PutUint64(idx[:], i)
	return bnry.Keccak256(l.pos.Bytes(), idx[:])
}

func (l *AddressList) Len() (uint64, error) {
	return l.length.Get()
}

func (l *AddressList) At(i uint64) (bnry.Address, error) {
	n, err := l.Len()
	if err != nil {
		return bnry.Address{}, err
	}
	if i >= n {
		return bnry.Address{}, errors.Errorf("index %d out of range [0, %d)", i, n)
	}
	return NewAddress(l.context, l.slot(i)).Get()
}

func (l *AddressList) Append(addr bnry.Address) error {
	n, err := l.Len()
	if err != nil {
		return err
	}
	NewAddress(l.context, l.slot(n)).Set(addr)
	l.length.Set(n + 1)
	return nil
}

// All returns every element in insertion order.
func (l *AddressList) All() ([]bnry.Address, error) {
	n, err := l.Len()
	if err != nil {
		return nil, err
	}
	all := make([]bnry.Address, 0, n)
	for i := range n {
		addr, err := NewAddress(l.context, l.slot(i)).Get()
		if err != nil {
			return nil, err
		}
		all = append(all, addr)
	}
	return all, nil
}
