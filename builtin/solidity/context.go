// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/binarybit/staking/bnry"
	"github.com/binarybit/staking/state"
)

// Slot returns the position of a named top-level variable.
// Names must be unique within a contract and at most 32 bytes.
func Slot(name string) bnry.Bytes32 {
	return bnry.BytesToBytes32([]byte(name))
}

// Context scopes typed variables to one contract's storage.
type Context struct {
	address bnry.Address
	state   *state.State
}

func NewContext(address bnry.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) Address() bnry.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}

func (c *Context) get(pos bnry.Bytes32) (bnry.Bytes32, error) {
	return c.state.GetStorage(c.address, pos)
}

func (c *Context) set(pos, value bnry.Bytes32) {
	c.state.SetStorage(c.address, pos, value)
}
