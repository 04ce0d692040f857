// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"
)

// Stage abstracts changes pending on the kv store.
type Stage struct {
	state   *State
	changes map[storageKey]rlp.RawValue
}

// Len returns the number of changed slots.
func (s *Stage) Len() int {
	return len(s.changes)
}

// Commit writes all changes in one batch, then starts a fresh journal.
// Checkpoints taken before Commit are invalid afterwards.
func (s *Stage) Commit() error {
	if len(s.changes) == 0 {
		return nil
	}

	batch := s.state.db.NewBatch()
	putter := storageBucket.NewBatch(batch)

	var puts, deletes int64
	for k, v := range s.changes {
		if err := saveStorage(putter, k, v); err != nil {
			return &Error{err}
		}
		if len(v) == 0 {
			deletes++
		} else {
			puts++
		}
	}
	if err := putter.Write(); err != nil {
		return &Error{err}
	}

	for k, v := range s.changes {
		s.state.cache.Add(k, v)
	}
	s.state.resetJournal()

	metricStorageCounter().AddWithLabel(puts, map[string]string{"type": "put"})
	metricStorageCounter().AddWithLabel(deletes, map[string]string{"type": "delete"})
	return nil
}
