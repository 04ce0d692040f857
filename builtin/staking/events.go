// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"encoding/json"
	"math/big"

	"github.com/binarybit/staking/bnry"
)

// Event names.
const (
	EventStake              = "Stake"
	EventWithdraw           = "Withdraw"
	EventFundTreasury       = "FundTreasury"
	EventAnnualYieldChanged = "AnnualYieldChanged"
)

// Event is emitted by a successful operation.
// Account is the customer or funder; AnnualYieldChanged leaves it zero and
// carries the new yield in Amount.
type Event struct {
	Name    string
	Account bnry.Address
	Amount  *big.Int
}

// MarshalJSON renders the event with its original argument names.
func (e Event) MarshalJSON() ([]byte, error) {
	amount := "0"
	if e.Amount != nil {
		amount = e.Amount.String()
	}
	out := map[string]string{"event": e.Name}
	switch e.Name {
	case EventStake, EventWithdraw:
		out["customer"] = e.Account.String()
		out["amount_wbnry"] = amount
	case EventFundTreasury:
		out["funder"] = e.Account.String()
		out["amount_wbnry"] = amount
	case EventAnnualYieldChanged:
		out["newAnnualYield"] = amount
	default:
		out["account"] = e.Account.String()
		out["amount"] = amount
	}
	return json.Marshal(out)
}

// Emitter receives events.
type Emitter interface {
	Emit(ev Event)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(ev Event)

func (f EmitterFunc) Emit(ev Event) { f(ev) }

type discardEmitter struct{}

func (discardEmitter) Emit(Event) {}
