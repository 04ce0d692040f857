// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"fmt"
)

// Kind classifies a revert.
type Kind uint8

const (
	Unknown Kind = iota
	InvalidAmount
	InsufficientAllowance
	InsufficientBalance
	InsufficientStakedBalance
	TreasuryInsufficient
	Unauthorized
	ArithmeticOverflow
)

var kindNames = [...]string{
	Unknown:                   "Unknown",
	InvalidAmount:             "InvalidAmount",
	InsufficientAllowance:     "InsufficientAllowance",
	InsufficientBalance:       "InsufficientBalance",
	InsufficientStakedBalance: "InsufficientStakedBalance",
	TreasuryInsufficient:      "TreasuryInsufficient",
	Unauthorized:              "Unauthorized",
	ArithmeticOverflow:        "ArithmeticOverflow",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ErrRevert aborts an operation. Nothing the operation did is kept.
type ErrRevert struct {
	kind    Kind
	message string
}

func New(kind Kind, message string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: message,
	}
}

func Newf(kind Kind, format string, args ...any) *ErrRevert {
	return New(kind, fmt.Sprintf(format, args...))
}

func (e *ErrRevert) Error() string {
	return e.message
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

// Is matches any revert of the same kind, so a sentinel compares equal to
// a revert created with a more detailed message.
func (e *ErrRevert) Is(target error) bool {
	t, ok := target.(*ErrRevert)
	return ok && t.kind == e.kind
}

// KindOf returns the kind of the revert wrapped in err, or Unknown.
func KindOf(err error) Kind {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.kind
	}
	return Unknown
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}
