// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bnry

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/pkg/errors"
)

const (
	TokenName     = "Wrapped Binary Bit Token"
	TokenSymbol   = "WBNRY"
	TokenDecimals = 8

	// SecondsPerYear is the length of one compounding period. A year is 365 days.
	SecondsPerYear uint64 = 365 * 24 * 60 * 60

	DefaultAnnualYieldPercent uint64 = 80
)

var (
	// Satoshi is the number of smallest units in one whole token.
	Satoshi = big.NewInt(1e8)

	// MaxTokenSupply is 120,000,000 whole tokens.
	MaxTokenSupply = Tokens(120_000_000)
)

// Well known addresses of the built-in contracts.
var (
	StakingContractAddress = BytesToAddress([]byte("Staking"))
	TokenContractAddress   = BytesToAddress([]byte(TokenSymbol))
)

// Tokens converts whole tokens into smallest units.
func Tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), Satoshi)
}

// ParseTokens parses a decimal token amount with at most TokenDecimals fraction digits,
// e.g. "12.5", into smallest units.
func ParseTokens(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty amount")
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	if hasFrac && len(frac) > TokenDecimals {
		return nil, errors.Errorf("too many decimals in %q", s)
	}
	if whole == "" {
		whole = "0"
	}
	frac += strings.Repeat("0", TokenDecimals-len(frac))

	v, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok || v.Sign() < 0 {
		return nil, errors.Errorf("invalid amount %q", s)
	}
	return v, nil
}

// FormatTokens renders smallest units as a decimal token amount.
func FormatTokens(v *big.Int) string {
	if v == nil {
		return "0"
	}
	q, r := new(big.Int).QuoRem(v, Satoshi, new(big.Int))
	if r.Sign() == 0 {
		return q.String()
	}
	frac := strings.TrimRight(fmt.Sprintf("%08d", new(big.Int).Abs(r)), "0")
	return q.String() + "." + frac
}
