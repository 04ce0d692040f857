// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/binarybit/staking/bnry"
)

var (
	ErrUnderflow = errors.New("uint256 underflow")
	ErrOverflow  = errors.New("uint256 overflow")
)

// Uint256 is a wrapper for storage and retrieval of an uint256. Similar to storing an uint256 in a smart contract.
type Uint256 struct {
	context *Context
	pos     bnry.Bytes32
}

func NewUint256(context *Context, pos bnry.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: pos}
}

func (u *Uint256) Get() (*big.Int, error) {
	storage, err := u.context.get(u.pos)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(storage.Bytes()), nil
}

// Set stores value. Negative values and values wider than 256 bits are rejected.
func (u *Uint256) Set(value *big.Int) error {
	if value.Sign() < 0 {
		return ErrUnderflow
	}
	if value.BitLen() > 256 {
		return ErrOverflow
	}
	u.context.set(u.pos, bnry.BytesToBytes32(value.Bytes()))
	return nil
}

func (u *Uint256) Add(value *big.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	return u.Set(storage.Add(storage, value))
}

// Sub fails with ErrUnderflow instead of wrapping below zero.
func (u *Uint256) Sub(value *big.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	if storage.Cmp(value) < 0 {
		return errors.Wrapf(ErrUnderflow, "%v - %v", storage, value)
	}
	return u.Set(storage.Sub(storage, value))
}
