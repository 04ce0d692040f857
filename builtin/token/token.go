// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token implements the WBNRY fungible token ledger.
// Balances live in the same state as the staking contract, so a reverted
// operation also reverts the token moves it made.
package token

import (
	"math/big"

	"github.com/binarybit/staking/bnry"
	"github.com/binarybit/staking/builtin/solidity"
	"github.com/binarybit/staking/builtin/staking/reverts"
	"github.com/binarybit/staking/log"
)

var logger = log.WithContext("pkg", "token")

var (
	ErrInsufficientBalance   = reverts.New(reverts.InsufficientBalance, "Insufficient token balance")
	ErrInsufficientAllowance = reverts.New(reverts.InsufficientAllowance, "Insufficient token allowance")
	ErrExceedsMaxSupply      = reverts.New(reverts.InvalidAmount, "mint exceeds max supply")
	ErrInvalidAmount         = reverts.New(reverts.InvalidAmount, "Token amount must not be negative")
	ErrUnauthorized          = reverts.New(reverts.Unauthorized, "caller is not the token owner")
)

var (
	slotBalances    = solidity.Slot("balances")
	slotAllowances  = solidity.Slot("allowances")
	slotTotalSupply = solidity.Slot("total-supply")
	slotOwner       = solidity.Slot("owner")
)

// Hook observes transfers. It runs after balances have moved and may call back
// into other contracts; an error aborts the transfer.
type Hook interface {
	OnTransfer(from, to bnry.Address, amount *big.Int) error
}

// HookFunc adapts a function to Hook.
type HookFunc func(from, to bnry.Address, amount *big.Int) error

func (f HookFunc) OnTransfer(from, to bnry.Address, amount *big.Int) error { return f(from, to, amount) }

type Token struct {
	addr        bnry.Address
	balances    *solidity.Mapping[bnry.Address, *big.Int]
	allowances  *solidity.Mapping[bnry.Bytes32, *big.Int]
	totalSupply *solidity.Uint256
	owner       *solidity.Address
	maxSupply   *big.Int
	hook        Hook
}

// New binds the token to addr. maxSupply caps minting, nil means uncapped.
func New(sctx *solidity.Context, maxSupply *big.Int) *Token {
	return &Token{
		addr:        sctx.Address(),
		balances:    solidity.NewMapping[bnry.Address, *big.Int](sctx, slotBalances),
		allowances:  solidity.NewMapping[bnry.Bytes32, *big.Int](sctx, slotAllowances),
		totalSupply: solidity.NewUint256(sctx, slotTotalSupply),
		owner:       solidity.NewAddress(sctx, slotOwner),
		maxSupply:   maxSupply,
	}
}

// SetHook installs h, replacing any previous hook. nil removes it.
func (t *Token) SetHook(h Hook) {
	t.hook = h
}

func (t *Token) Address() bnry.Address { return t.addr }

func (t *Token) Name() string { return bnry.TokenName }

func (t *Token) Symbol() string { return bnry.TokenSymbol }

func (t *Token) Decimals() uint8 { return bnry.TokenDecimals }

// Initialize sets the minting owner.
func (t *Token) Initialize(owner bnry.Address) {
	t.owner.Set(owner)
}

func (t *Token) Owner() (bnry.Address, error) {
	return t.owner.Get()
}

func (t *Token) TotalSupply() (*big.Int, error) {
	return t.totalSupply.Get()
}

func (t *Token) BalanceOf(addr bnry.Address) (*big.Int, error) {
	return t.balances.Get(addr)
}

func (t *Token) Allowance(owner, spender bnry.Address) (*big.Int, error) {
	return t.allowances.Get(allowanceKey(owner, spender))
}

// Mint creates amount tokens for to. Only the owner may mint.
func (t *Token) Mint(caller, to bnry.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	owner, err := t.owner.Get()
	if err != nil {
		return err
	}
	if caller != owner {
		return ErrUnauthorized
	}

	supply, err := t.totalSupply.Get()
	if err != nil {
		return err
	}
	supply.Add(supply, amount)
	if t.maxSupply != nil && supply.Cmp(t.maxSupply) > 0 {
		return ErrExceedsMaxSupply
	}
	if err := t.totalSupply.Set(supply); err != nil {
		return err
	}
	if err := t.addBalance(to, amount); err != nil {
		return err
	}

	logger.Debug("minted", "to", to, "amount", amount)
	return nil
}

func (t *Token) Approve(owner, spender bnry.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	return t.allowances.Set(allowanceKey(owner, spender), amount)
}

// Transfer moves amount from from to to.
func (t *Token) Transfer(from, to bnry.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if err := t.move(from, to, amount); err != nil {
		return err
	}
	return t.notify(from, to, amount)
}

// TransferFrom moves amount from from to to on behalf of spender, consuming allowance.
func (t *Token) TransferFrom(spender, from, to bnry.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	key := allowanceKey(from, spender)
	allowance, err := t.allowances.Get(key)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	if err := t.move(from, to, amount); err != nil {
		return err
	}
	if err := t.allowances.Set(key, allowance.Sub(allowance, amount)); err != nil {
		return err
	}
	return t.notify(from, to, amount)
}

func (t *Token) move(from, to bnry.Address, amount *big.Int) error {
	if err := t.subBalance(from, amount); err != nil {
		return err
	}
	return t.addBalance(to, amount)
}

func (t *Token) notify(from, to bnry.Address, amount *big.Int) error {
	if t.hook == nil {
		return nil
	}
	return t.hook.OnTransfer(from, to, new(big.Int).Set(amount))
}

func (t *Token) addBalance(addr bnry.Address, amount *big.Int) error {
	bal, err := t.balances.Get(addr)
	if err != nil {
		return err
	}
	return t.balances.Set(addr, bal.Add(bal, amount))
}

func (t *Token) subBalance(addr bnry.Address, amount *big.Int) error {
	bal, err := t.balances.Get(addr)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	return t.balances.Set(addr, bal.Sub(bal, amount))
}

func allowanceKey(owner, spender bnry.Address) bnry.Bytes32 {
	return bnry.Keccak256(owner.Bytes(), spender.Bytes())
}
