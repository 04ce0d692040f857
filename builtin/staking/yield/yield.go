// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package yield computes interest on a principal over elapsed seconds.
//
// Whole years compound at (100+r)/100, evaluated in 18 decimal fixed point.
// The part of a year left over earns simple interest on the compounded balance.
// All math is 256-bit unsigned and every division truncates.
package yield

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/binarybit/staking/bnry"
	"github.com/binarybit/staking/builtin/staking/reverts"
)

var (
	ErrOverflow = reverts.New(reverts.ArithmeticOverflow, "arithmetic overflow")
	ErrNegative = reverts.New(reverts.InvalidAmount, "negative principal")
)

var (
	wad         = uint256.NewInt(1e18)
	hundred     = uint256.NewInt(100)
	yearPercent = new(uint256.Int).Mul(hundred, uint256.NewInt(bnry.SecondsPerYear))
)

// Compound returns principal grown at annualPercent for elapsed seconds.
func Compound(principal *big.Int, annualPercent uint64, elapsed uint64) (*big.Int, error) {
	bal, err := toUint256(principal)
	if err != nil {
		return nil, err
	}
	if elapsed == 0 || annualPercent == 0 || bal.IsZero() {
		return bal.ToBig(), nil
	}

	rate := uint256.NewInt(annualPercent)
	years := elapsed / bnry.SecondsPerYear
	rem := elapsed % bnry.SecondsPerYear

	if years > 0 {
		growth, err := growthFactor(rate, years)
		if err != nil {
			return nil, err
		}
		if _, overflow := bal.MulDivOverflow(bal, growth, wad); overflow {
			return nil, ErrOverflow
		}
	}

	if rem > 0 {
		interest, err := simpleInterest(bal, rate, rem)
		if err != nil {
			return nil, err
		}
		if _, overflow := bal.AddOverflow(bal, interest); overflow {
			return nil, ErrOverflow
		}
	}
	return bal.ToBig(), nil
}

// Linear returns principal plus simple interest, without compounding.
func Linear(principal *big.Int, annualPercent uint64, elapsed uint64) (*big.Int, error) {
	bal, err := toUint256(principal)
	if err != nil {
		return nil, err
	}
	if elapsed == 0 || annualPercent == 0 || bal.IsZero() {
		return bal.ToBig(), nil
	}

	interest, err := simpleInterest(bal, uint256.NewInt(annualPercent), elapsed)
	if err != nil {
		return nil, err
	}
	if _, overflow := bal.AddOverflow(bal, interest); overflow {
		return nil, ErrOverflow
	}
	return bal.ToBig(), nil
}

// Interest returns only the compounded growth, Compound(...) - principal.
// A nil principal grows nothing.
func Interest(principal *big.Int, annualPercent uint64, elapsed uint64) (*big.Int, error) {
	total, err := Compound(principal, annualPercent, elapsed)
	if err != nil {
		return nil, err
	}
	if principal == nil {
		return total, nil
	}
	return total.Sub(total, principal), nil
}

// growthFactor returns ((100+rate)/100)^years in wad, by square and multiply.
func growthFactor(rate *uint256.Int, years uint64) (*uint256.Int, error) {
	num, overflow := new(uint256.Int).AddOverflow(hundred, rate)
	if overflow {
		return nil, ErrOverflow
	}
	base, overflow := new(uint256.Int).MulDivOverflow(wad, num, hundred)
	if overflow {
		return nil, ErrOverflow
	}

	result := new(uint256.Int).Set(wad)
	for n := years; n > 0; n >>= 1 {
		if n&1 == 1 {
			if _, overflow := result.MulDivOverflow(result, base, wad); overflow {
				return nil, ErrOverflow
			}
		}
		// the last squaring is never used
		if n > 1 {
			if _, overflow := base.MulDivOverflow(base, base, wad); overflow {
				return nil, ErrOverflow
			}
		}
	}
	return result, nil
}

// simpleInterest returns bal * rate * seconds / (100 * SecondsPerYear).
func simpleInterest(bal, rate *uint256.Int, seconds uint64) (*uint256.Int, error) {
	scaled, overflow := new(uint256.Int).MulOverflow(rate, uint256.NewInt(seconds))
	if overflow {
		return nil, ErrOverflow
	}
	interest, overflow := new(uint256.Int).MulDivOverflow(bal, scaled, yearPercent)
	if overflow {
		return nil, ErrOverflow
	}
	return interest, nil
}

func toUint256(v *big.Int) (*uint256.Int, error) {
	if v == nil {
		return new(uint256.Int), nil
	}
	if v.Sign() < 0 {
		return nil, ErrNegative
	}
	u, overflow := uint256.FromBig(v)
	if overflow {
		return nil, ErrOverflow
	}
	return u, nil
}
