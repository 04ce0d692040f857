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

var ErrAlreadyRegistered = errors.New("participant already registered")

// Service owns participant records and the registry of every address that ever staked.
// Records are never deleted and the registry only grows.
type Service struct {
	storage   *Storage
	customers *solidity.AddressList
}

func New(sctx *solidity.Context) *Service {
	storage := NewStorage(sctx)
	return &Service{
		storage:   storage,
		customers: storage.customers,
	}
}

// Get returns the record of addr. Unknown addresses yield an empty record.
func (s *Service) Get(addr bnry.Address) (*Participant, error) {
	return s.storage.getParticipant(addr)
}

func (s *Service) Set(addr bnry.Address, p *Participant) error {
	return s.storage.setParticipant(addr, p)
}

func (s *Service) IsRegistered(addr bnry.Address) (bool, error) {
	return s.storage.isRegistered(addr)
}

// Register appends addr to the registry. It fails if addr is already there.
func (s *Service) Register(addr bnry.Address) error {
	ok, err := s.storage.isRegistered(addr)
	if err != nil {
		return err
	}
	if ok {
		return errors.Wrap(ErrAlreadyRegistered, addr.String())
	}
	return s.storage.register(addr)
}

// Addresses returns the registry in insertion order.
func (s *Service) Addresses() ([]bnry.Address, error) {
	return s.customers.All()
}

func (s *Service) Count() (uint64, error) {
	return s.customers.Len()
}

func (s *Service) At(i uint64) (bnry.Address, error) {
	return s.customers.At(i)
}
