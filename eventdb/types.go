// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"math/big"

	"github.com/binarybit/staking/bnry"
	"github.com/binarybit/staking/builtin/staking"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Event is a staking event as stored in the db.
type Event struct {
	Seq     int64        `json:"seq"`
	Name    string       `json:"name"`
	Account bnry.Address `json:"account"`
	Amount  *big.Int     `json:"amount"`
	Time    uint64       `json:"time"`
}

// NewEvent converts an emitted staking event, stamped with the operation time.
func NewEvent(ev staking.Event, time uint64) *Event {
	amount := new(big.Int)
	if ev.Amount != nil {
		amount.Set(ev.Amount)
	}
	return &Event{
		Name:    ev.Name,
		Account: ev.Account,
		Amount:  amount,
		Time:    time,
	}
}

// Range is an inclusive range of operation times. A To below From leaves the range open.
type Range struct {
	From uint64 `json:"from"`
	To   uint64 `json:"to"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// Criteria narrows events; nil fields match anything.
type Criteria struct {
	Name    *string       `json:"name"`
	Account *bnry.Address `json:"account"`
}

// Filter selects events matching any of CriteriaSet.
type Filter struct {
	CriteriaSet []*Criteria `json:"criteriaSet"`
	Range       *Range      `json:"range"`
	Options     *Options    `json:"options"`
	Order       Order       `json:"order"` // default asc
}
