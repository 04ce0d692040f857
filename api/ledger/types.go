// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/binarybit/staking/bnry"
	"github.com/binarybit/staking/builtin/staking"
	"github.com/binarybit/staking/builtin/staking/participant"
	"github.com/binarybit/staking/runtime"
)

// Status summarizes the ledger. Amounts are decimal WBNRY strings.
type Status struct {
	Owner            bnry.Address `json:"owner"`
	Token            bnry.Address `json:"token"`
	AnnualYield      uint64       `json:"annualYield"`
	TotalStaked      string       `json:"totalStaked"`
	TreasuryBalance  string       `json:"treasuryBalance"`
	ParticipantCount int          `json:"participantCount"`
	Time             uint64       `json:"time"`
}

type Participant struct {
	Address        bnry.Address `json:"address"`
	Principal      string       `json:"principal"`
	AccruedReward  string       `json:"accruedReward"`
	LastActionTime uint64       `json:"lastActionTime"`
	CurrentBalance string       `json:"currentBalance"`
}

func convertParticipant(addr bnry.Address, p *participant.Participant, current *big.Int) *Participant {
	return &Participant{
		Address:        addr,
		Principal:      bnry.FormatTokens(p.Principal),
		AccruedReward:  bnry.FormatTokens(p.AccruedReward),
		LastActionTime: p.LastActionTime,
		CurrentBalance: bnry.FormatTokens(current),
	}
}

// AmountRequest carries an account and a decimal WBNRY amount.
type AmountRequest struct {
	Account bnry.Address `json:"account"`
	Amount  string       `json:"amount"`
}

type YieldRequest struct {
	Caller  bnry.Address `json:"caller"`
	Percent uint64       `json:"percent"`
}

type TimestampRequest struct {
	Caller    bnry.Address `json:"caller"`
	Account   bnry.Address `json:"account"`
	Timestamp uint64       `json:"timestamp"`
}

// Receipt is the response of a committed operation.
type Receipt struct {
	Op     string  `json:"op"`
	Time   uint64  `json:"time"`
	Events []Event `json:"events"`
}

type Event struct {
	Seq     int64        `json:"seq"`
	Name    string       `json:"name"`
	Account bnry.Address `json:"account"`
	Amount  string       `json:"amount"`
}

func convertReceipt(r *runtime.Receipt) *Receipt {
	out := &Receipt{Op: r.Op, Time: r.Time, Events: make([]Event, 0, len(r.Events))}
	for _, ev := range r.Events {
		amount := ev.Amount.String()
		if ev.Name != staking.EventAnnualYieldChanged {
			amount = bnry.FormatTokens(ev.Amount)
		}
		out.Events = append(out.Events, Event{
			Seq:     ev.Seq,
			Name:    ev.Name,
			Account: ev.Account,
			Amount:  amount,
		})
	}
	return out
}

func parseAmount(s string) (*big.Int, error) {
	v, err := bnry.ParseTokens(s)
	if err != nil {
		return nil, errors.WithMessage(err, "amount")
	}
	return v, nil
}
