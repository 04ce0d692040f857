// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package participant

import (
	"github.com/pkg/errors"

	"github.com/binarybit/staking/bnry"
	"github.com/binarybit/staking/builtin/solidity"
)

var (
	slotParticipants = solidity.Slot("participants")
	slotRegistered   = solidity.Slot("registered")
	slotCustomers    = solidity.Slot("customer-addresses")
)

type Storage struct {
	participants *solidity.Mapping[bnry.Address, *Participant]
	registered   *solidity.Mapping[bnry.Address, bool]
	customers    *solidity.AddressList
}

func NewStorage(sctx *solidity.Context) *Storage {
	return &Storage{
		participants: solidity.NewMapping[bnry.Address, *Participant](sctx, slotParticipants),
		registered:   solidity.NewMapping[bnry.Address, bool](sctx, slotRegistered),
		customers:    solidity.NewAddressList(sctx, slotCustomers),
	}
}

func (s *Storage) getParticipant(addr bnry.Address) (*Participant, error) {
	p, err := s.participants.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get participant")
	}
	return p.normalize(), nil
}

func (s *Storage) setParticipant(addr bnry.Address, p *Participant) error {
	if err := s.participants.Set(addr, p); err != nil {
		return errors.Wrap(err, "failed to set participant")
	}
	return nil
}

func (s *Storage) isRegistered(addr bnry.Address) (bool, error) {
	ok, err := s.registered.Get(addr)
	if err != nil {
		return false, errors.Wrap(err, "failed to get registration")
	}
	return ok, nil
}

func (s *Storage) register(addr bnry.Address) error {
	if err := s.customers.Append(addr); err != nil {
		return errors.Wrap(err, "failed to append customer")
	}
	if err := s.registered.Set(addr, true); err != nil {
		return errors.Wrap(err, "failed to set registration")
	}
	return nil
}
