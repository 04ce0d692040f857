// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking implements the WBNRY staking ledger: deposits earn a
// compounding annual yield, rewards are paid from an owner-funded treasury.
package staking

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/binarybit/staking/bnry"
	"github.com/binarybit/staking/builtin/solidity"
	"github.com/binarybit/staking/builtin/staking/globalstats"
	"github.com/binarybit/staking/builtin/staking/participant"
	"github.com/binarybit/staking/builtin/staking/reverts"
	"github.com/binarybit/staking/log"
	"github.com/binarybit/staking/state"
)

var logger = log.WithContext("pkg", "staking")

// SetLogger sets the logger for the staking package.
func SetLogger(l log.Logger) {
	logger = l
}

var (
	ErrInvalidAmount             = reverts.New(reverts.InvalidAmount, "Token amount must be greater than zero")
	ErrInsufficientBalance       = reverts.New(reverts.InsufficientBalance, "Insufficient token balance")
	ErrInsufficientAllowance     = reverts.New(reverts.InsufficientAllowance, "Insufficient token allowance")
	ErrInsufficientStakedBalance = reverts.New(reverts.InsufficientStakedBalance, "Insufficient staked balance")
	ErrTreasuryInsufficient      = reverts.New(reverts.TreasuryInsufficient, "Insufficient treasury balance")
	ErrUnauthorized              = reverts.New(reverts.Unauthorized, "caller is not the owner")
	ErrTimestampOverrideDisabled = reverts.New(reverts.Unauthorized, "timestamp override is disabled")

	ErrAlreadyInitialized = errors.New("staking contract already initialized")
	ErrZeroOwner          = errors.New("owner must not be the zero address")
)

var (
	slotOwner       = solidity.Slot("owner")
	slotToken       = solidity.Slot("token")
	slotAnnualYield = solidity.Slot("annual-yield")
)

// Token is the fungible token the contract custodies.
type Token interface {
	Address() bnry.Address
	BalanceOf(addr bnry.Address) (*big.Int, error)
	Allowance(owner, spender bnry.Address) (*big.Int, error)
	Transfer(from, to bnry.Address, amount *big.Int) error
	TransferFrom(spender, from, to bnry.Address, amount *big.Int) error
}

// Staking implements native methods of the staking contract.
// It is not safe for concurrent use.
type Staking struct {
	addr         bnry.Address
	token        Token
	emitter      Emitter
	owner        *solidity.Address
	tokenAddr    *solidity.Address
	annualYield  *solidity.Uint64
	participants *participant.Service
	globalStats  *globalstats.Service

	timestampOverride bool
}

// New create a new instance. A nil emitter discards events.
func New(addr bnry.Address, state *state.State, token Token, emitter Emitter) *Staking {
	sctx := solidity.NewContext(addr, state)
	if emitter == nil {
		emitter = discardEmitter{}
	}

	return &Staking{
		addr:         addr,
		token:        token,
		emitter:      emitter,
		owner:        solidity.NewAddress(sctx, slotOwner),
		tokenAddr:    solidity.NewAddress(sctx, slotToken),
		annualYield:  solidity.NewUint64(sctx, slotAnnualYield),
		participants: participant.New(sctx),
		globalStats:  globalstats.New(sctx),

		timestampOverride: true,
	}
}

// Initialize writes the owner, the token address and the starting yield.
func (s *Staking) Initialize(owner bnry.Address, annualYield uint64) error {
	if owner.IsZero() {
		return ErrZeroOwner
	}
	current, err := s.owner.Get()
	if err != nil {
		return err
	}
	if !current.IsZero() {
		return ErrAlreadyInitialized
	}

	s.owner.Set(owner)
	s.tokenAddr.Set(s.token.Address())
	s.annualYield.Set(annualYield)
	logger.Info("initialized", "owner", owner, "token", s.token.Address(), "yield", annualYield)
	return nil
}

// SetTimestampOverride switches UpdateTimestamp on or off.
func (s *Staking) SetTimestampOverride(enabled bool) {
	s.timestampOverride = enabled
}

// Getters - no state change

func (s *Staking) Address() bnry.Address {
	return s.addr
}

func (s *Staking) Owner() (bnry.Address, error) {
	return s.owner.Get()
}

func (s *Staking) TokenAddress() (bnry.Address, error) {
	return s.tokenAddr.Get()
}

// AnnualYield returns the yield in whole percent per year.
func (s *Staking) AnnualYield() (uint64, error) {
	return s.annualYield.Get()
}

// TotalStaked returns the principal held for all participants.
func (s *Staking) TotalStaked() (*big.Int, error) {
	return s.globalStats.TotalStaked()
}

// TreasuryBalance returns the tokens available to pay rewards.
func (s *Staking) TreasuryBalance() (*big.Int, error) {
	return s.globalStats.Treasury()
}

// GetParticipant returns the stored record without rolling accrual.
func (s *Staking) GetParticipant(addr bnry.Address) (*participant.Participant, error) {
	return s.participants.Get(addr)
}

// ParticipantAddresses returns every address that ever staked, in first-stake order.
func (s *Staking) ParticipantAddresses() ([]bnry.Address, error) {
	return s.participants.Addresses()
}

func (s *Staking) ParticipantCount() (uint64, error) {
	return s.participants.Count()
}

func (s *Staking) ParticipantAt(i uint64) (bnry.Address, error) {
	return s.participants.At(i)
}

// Operations

// Stake moves amount from account into the contract and adds it to the principal.
func (s *Staking) Stake(account bnry.Address, amount *big.Int, now uint64) error {
	logger.Debug("staking", "account", account, "amount", amount, "now", now)

	if err := s.stake(account, amount, now); err != nil {
		logger.Info("stake failed", "account", account, "error", err)
		return err
	}

	logger.Info("staked", "account", account, "amount", amount)
	return nil
}

func (s *Staking) stake(account bnry.Address, amount *big.Int, now uint64) error {
	if !isPositive(amount) {
		return ErrInvalidAmount
	}
	if err := s.checkFunds(account, amount); err != nil {
		return err
	}
	registered, err := s.participants.IsRegistered(account)
	if err != nil {
		return err
	}
	p, err := s.rollAccrual(account, now)
	if err != nil {
		return err
	}

	p.Owner = account
	p.Principal = new(big.Int).Add(p.Principal, amount)
	if err := s.participants.Set(account, p); err != nil {
		return err
	}
	if err := s.globalStats.AddStaked(amount); err != nil {
		return err
	}
	if !registered {
		if err := s.participants.Register(account); err != nil {
			return err
		}
	}

	if err := s.token.TransferFrom(s.addr, account, s.addr, amount); err != nil {
		return err
	}
	s.emitter.Emit(Event{Name: EventStake, Account: account, Amount: new(big.Int).Set(amount)})
	return nil
}

// Withdraw pays amount to account, taken from the accrued reward first and
// from the principal for the rest.
func (s *Staking) Withdraw(account bnry.Address, amount *big.Int, now uint64) error {
	logger.Debug("withdrawing", "account", account, "amount", amount, "now", now)

	if err := s.withdraw(account, amount, now); err != nil {
		logger.Info("withdraw failed", "account", account, "error", err)
		return err
	}

	logger.Info("withdrew", "account", account, "amount", amount)
	return nil
}

func (s *Staking) withdraw(account bnry.Address, amount *big.Int, now uint64) error {
	if !isPositive(amount) {
		return ErrInvalidAmount
	}
	p, err := s.rollAccrual(account, now)
	if err != nil {
		return err
	}
	if total := p.Total(); total.Cmp(amount) < 0 {
		return reverts.Newf(reverts.InsufficientStakedBalance, "Insufficient staked balance: have %s, want %s", total, amount)
	}

	rewardPaid := new(big.Int).Set(amount)
	if rewardPaid.Cmp(p.AccruedReward) > 0 {
		rewardPaid.Set(p.AccruedReward)
	}
	principalPaid := new(big.Int).Sub(amount, rewardPaid)

	treasury, err := s.globalStats.Treasury()
	if err != nil {
		return err
	}
	if treasury.Cmp(rewardPaid) < 0 {
		return ErrTreasuryInsufficient
	}

	p.AccruedReward = new(big.Int).Sub(p.AccruedReward, rewardPaid)
	p.Principal = new(big.Int).Sub(p.Principal, principalPaid)
	if err := s.participants.Set(account, p); err != nil {
		return err
	}
	if err := s.globalStats.SubStaked(principalPaid); err != nil {
		return err
	}
	if err := s.globalStats.SubTreasury(rewardPaid); err != nil {
		return err
	}

	if err := s.token.Transfer(s.addr, account, amount); err != nil {
		return err
	}
	s.emitter.Emit(Event{Name: EventWithdraw, Account: account, Amount: new(big.Int).Set(amount)})
	return nil
}

// FundTreasury moves amount from the owner into the reward treasury.
func (s *Staking) FundTreasury(caller bnry.Address, amount *big.Int, now uint64) error {
	logger.Debug("funding treasury", "caller", caller, "amount", amount, "now", now)

	if err := s.fundTreasury(caller, amount); err != nil {
		logger.Info("fund treasury failed", "caller", caller, "error", err)
		return err
	}

	logger.Info("funded treasury", "amount", amount)
	return nil
}

func (s *Staking) fundTreasury(caller bnry.Address, amount *big.Int) error {
	if err := s.onlyOwner(caller); err != nil {
		return err
	}
	if !isPositive(amount) {
		return ErrInvalidAmount
	}
	if err := s.checkFunds(caller, amount); err != nil {
		return err
	}

	if err := s.globalStats.AddTreasury(amount); err != nil {
		return err
	}

	if err := s.token.TransferFrom(s.addr, caller, s.addr, amount); err != nil {
		return err
	}
	s.emitter.Emit(Event{Name: EventFundTreasury, Account: caller, Amount: new(big.Int).Set(amount)})
	return nil
}

// ChangeAnnualYield sets a new yield. Only the caller's own record is rolled
// first; every other participant accrues at the new rate from its last action.
func (s *Staking) ChangeAnnualYield(caller bnry.Address, percent uint64, now uint64) error {
	logger.Debug("changing annual yield", "caller", caller, "percent", percent, "now", now)

	if err := s.changeAnnualYield(caller, percent, now); err != nil {
		logger.Info("change annual yield failed", "caller", caller, "error", err)
		return err
	}

	logger.Info("changed annual yield", "percent", percent)
	return nil
}

func (s *Staking) changeAnnualYield(caller bnry.Address, percent uint64, now uint64) error {
	if err := s.onlyOwner(caller); err != nil {
		return err
	}
	if err := s.settle(caller, now); err != nil {
		return err
	}

	s.annualYield.Set(percent)
	s.emitter.Emit(Event{Name: EventAnnualYieldChanged, Amount: new(big.Int).SetUint64(percent)})
	return nil
}

// UpdateTimestamp rolls the accrual of account and then overwrites its last
// action time. It exists to rewind time in tests and rehearsals.
func (s *Staking) UpdateTimestamp(caller, account bnry.Address, timestamp uint64, now uint64) error {
	logger.Debug("updating timestamp", "caller", caller, "account", account, "timestamp", timestamp)

	if err := s.updateTimestamp(caller, account, timestamp, now); err != nil {
		logger.Info("update timestamp failed", "account", account, "error", err)
		return err
	}

	logger.Warn("last action time overridden", "account", account, "timestamp", timestamp)
	return nil
}

func (s *Staking) updateTimestamp(caller, account bnry.Address, timestamp uint64, now uint64) error {
	if !s.timestampOverride {
		return ErrTimestampOverrideDisabled
	}
	if err := s.onlyOwner(caller); err != nil {
		return err
	}
	p, err := s.rollAccrual(account, now)
	if err != nil {
		return err
	}
	p.LastActionTime = timestamp
	return s.participants.Set(account, p)
}

func (s *Staking) onlyOwner(caller bnry.Address) error {
	owner, err := s.owner.Get()
	if err != nil {
		return err
	}
	if owner.IsZero() || owner != caller {
		return ErrUnauthorized
	}
	return nil
}

// checkFunds verifies that from holds amount and has approved the contract for it.
func (s *Staking) checkFunds(from bnry.Address, amount *big.Int) error {
	balance, err := s.token.BalanceOf(from)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	allowance, err := s.token.Allowance(from, s.addr)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	return nil
}

func isPositive(v *big.Int) bool {
	return v != nil && v.Sign() > 0
}
