// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package participant

import (
	"math/big"

	"github.com/binarybit/staking/bnry"
)

// Participant is the ledger record of one staker.
type Participant struct {
	Owner          bnry.Address // the staker, zero until the first stake
	Principal      *big.Int     // tokens deposited and not yet withdrawn
	AccruedReward  *big.Int     // yield credited up to LastActionTime
	LastActionTime uint64       // unix seconds of the last accrual roll
}

// NewParticipant returns an empty record for owner, last touched at now.
func NewParticipant(owner bnry.Address, now uint64) *Participant {
	return &Participant{
		Owner:          owner,
		Principal:      new(big.Int),
		AccruedReward:  new(big.Int),
		LastActionTime: now,
	}
}

// IsEmpty returns whether the record was never written.
func (p *Participant) IsEmpty() bool {
	return p.Owner.IsZero() &&
		sign(p.Principal) == 0 &&
		sign(p.AccruedReward) == 0 &&
		p.LastActionTime == 0
}

// Total returns principal plus accrued reward.
func (p *Participant) Total() *big.Int {
	total := new(big.Int)
	if p.Principal != nil {
		total.Add(total, p.Principal)
	}
	if p.AccruedReward != nil {
		total.Add(total, p.AccruedReward)
	}
	return total
}

// normalize replaces nil amounts decoded from storage with zero.
func (p *Participant) normalize() *Participant {
	if p.Principal == nil {
		p.Principal = new(big.Int)
	}
	if p.AccruedReward == nil {
		p.AccruedReward = new(big.Int)
	}
	return p
}

func sign(v *big.Int) int {
	if v == nil {
		return 0
	}
	return v.Sign()
}
