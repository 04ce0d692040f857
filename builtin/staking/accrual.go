// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/binarybit/staking/bnry"
	"github.com/binarybit/staking/builtin/staking/participant"
	"github.com/binarybit/staking/builtin/staking/yield"
)

// growthFunc is yield.Compound or yield.Linear.
type growthFunc func(principal *big.Int, annualPercent uint64, elapsed uint64) (*big.Int, error)

// CalculateCurrentBalanceCompound returns principal plus compounded reward of account at now.
// Unknown accounts report zero. It does not modify the ledger.
func (s *Staking) CalculateCurrentBalanceCompound(account bnry.Address, now uint64) (*big.Int, error) {
	return s.currentBalance(account, now, yield.Compound)
}

// CalculateCurrentBalanceLinear is CalculateCurrentBalanceCompound without compounding.
func (s *Staking) CalculateCurrentBalanceLinear(account bnry.Address, now uint64) (*big.Int, error) {
	return s.currentBalance(account, now, yield.Linear)
}

func (s *Staking) currentBalance(account bnry.Address, now uint64, grow growthFunc) (*big.Int, error) {
	p, err := s.participants.Get(account)
	if err != nil {
		return nil, err
	}
	if p.IsEmpty() {
		return new(big.Int), nil
	}
	return s.grow(p, now, grow)
}

func (s *Staking) grow(p *participant.Participant, now uint64, grow growthFunc) (*big.Int, error) {
	rate, err := s.annualYield.Get()
	if err != nil {
		return nil, err
	}
	return grow(p.Total(), rate, elapsed(p.LastActionTime, now))
}

// rollAccrual folds the yield earned since the last action into AccruedReward
// and moves LastActionTime to now. The returned record is not persisted.
func (s *Staking) rollAccrual(account bnry.Address, now uint64) (*participant.Participant, error) {
	p, err := s.participants.Get(account)
	if err != nil {
		return nil, err
	}
	if p.IsEmpty() {
		return participant.NewParticipant(bnry.Address{}, now), nil
	}

	rate, err := s.annualYield.Get()
	if err != nil {
		return nil, err
	}
	growth, err := yield.Interest(p.Total(), rate, elapsed(p.LastActionTime, now))
	if err != nil {
		return nil, err
	}
	p.AccruedReward = growth.Add(growth, p.AccruedReward)
	if now > p.LastActionTime {
		p.LastActionTime = now
	}
	return p, nil
}

// settle rolls and stores the accrual of an existing record. Accounts that
// never staked keep no record.
func (s *Staking) settle(account bnry.Address, now uint64) error {
	p, err := s.participants.Get(account)
	if err != nil {
		return err
	}
	if p.IsEmpty() {
		return nil
	}
	if p, err = s.rollAccrual(account, now); err != nil {
		return err
	}
	return s.participants.Set(account, p)
}

// elapsed treats a clock behind the last action as no time passed.
func elapsed(last, now uint64) uint64 {
	if now <= last {
		return 0
	}
	return now - last
}
