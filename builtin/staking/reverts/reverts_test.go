// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"fmt"
	"math/big"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func Test_Reverts(t *testing.T) {
	revert := New(InvalidAmount, "test")
	assert.Equal(t, "test", revert.message)
	assert.Equal(t, revert.Error(), revert.message)
	assert.Equal(t, InvalidAmount, revert.Kind())

	assert.True(t, IsRevertErr(revert))
	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr(fmt.Errorf("test")))
	assert.False(t, IsRevertErr(big.NewInt(0)))
}

func Test_RevertsIs(t *testing.T) {
	sentinel := New(TreasuryInsufficient, "treasury insufficient")
	detailed := Newf(TreasuryInsufficient, "treasury %d < reward %d", 1, 2)

	assert.True(t, errors.Is(detailed, sentinel))
	assert.False(t, errors.Is(detailed, New(Unauthorized, "x")))

	wrapped := pkgerrors.Wrap(detailed, "withdraw")
	assert.True(t, errors.Is(wrapped, sentinel))
	assert.True(t, IsRevertErr(wrapped))
	assert.Equal(t, TreasuryInsufficient, KindOf(wrapped))
	assert.Equal(t, Unknown, KindOf(errors.New("plain")))
}

func Test_KindString(t *testing.T) {
	assert.Equal(t, "InsufficientStakedBalance", InsufficientStakedBalance.String())
	assert.Equal(t, "ArithmeticOverflow", ArithmeticOverflow.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}
