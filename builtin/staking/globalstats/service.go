// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package globalstats

import (
	"math/big"

	"github.com/binarybit/staking/builtin/solidity"
)

var (
	slotTotalStaked = solidity.Slot("total-staked")
	slotTreasury    = solidity.Slot("treasury")
)

// Service manages contract-wide totals.
// Tracks the principal held for participants and the treasury that pays rewards.
type Service struct {
	totalStaked *solidity.Uint256
	treasury    *solidity.Uint256
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		totalStaked: solidity.NewUint256(sctx, slotTotalStaked),
		treasury:    solidity.NewUint256(sctx, slotTreasury),
	}
}

// TotalStaked returns the sum of every participant's principal.
func (s *Service) TotalStaked() (*big.Int, error) {
	return s.totalStaked.Get()
}

func (s *Service) AddStaked(amount *big.Int) error {
	return s.totalStaked.Add(amount)
}

func (s *Service) SubStaked(amount *big.Int) error {
	return s.totalStaked.Sub(amount)
}

// Treasury returns the tokens available to pay rewards.
func (s *Service) Treasury() (*big.Int, error) {
	return s.treasury.Get()
}

func (s *Service) AddTreasury(amount *big.Int) error {
	return s.treasury.Add(amount)
}

// SubTreasury fails with solidity.ErrUnderflow when amount exceeds the treasury.
// Callers decide TreasuryInsufficient before reaching here.
func (s *Service) SubTreasury(amount *big.Int) error {
	return s.treasury.Sub(amount)
}
