// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/binarybit/staking/bnry"
	"github.com/binarybit/staking/cache"
	"github.com/binarybit/staking/kv"
	"github.com/binarybit/staking/stackedmap"
)

const defaultCacheSize = 4096

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Options options for creating state.
type Options struct {
	// CacheSize is the number of committed slots kept in memory.
	CacheSize int
}

// State manages contract storage with checkpoint and revert.
// It is not safe for concurrent use.
type State struct {
	db    kv.Store
	cache *cache.LRU             // committed slots
	sm    *stackedmap.StackedMap // keeps revisions of uncommitted slots
}

// New create state object.
func New(db kv.Store, opts Options) (*State, error) {
	size := opts.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	lru, err := cache.NewLRU(size)
	if err != nil {
		return nil, &Error{err}
	}

	s := &State{
		db:    db,
		cache: lru,
	}
	s.resetJournal()
	return s, nil
}

func (s *State) resetJournal() {
	s.sm = stackedmap.New(s.cacheGetter)
}

// cacheGetter implements stackedmap.MapGetter.
func (s *State) cacheGetter(key any) (value any, exist bool, err error) {
	switch k := key.(type) {
	case storageKey:
		v, err := s.cache.GetOrLoad(k, func(any) (any, error) {
			metricStorageCounter().AddWithLabel(1, map[string]string{"type": "load"})
			return loadStorage(s.db, k)
		})
		if err != nil {
			return nil, false, err
		}
		return v, true, nil
	}
	panic(fmt.Errorf("unexpected key type %+v", key))
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr bnry.Address, key bnry.Bytes32) (bnry.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return bnry.Bytes32{}, err
	}
	if len(raw) == 0 {
		return bnry.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return bnry.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// customized storage value, return hash of raw data
		return bnry.Keccak256(raw), nil
	}
	return bnry.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr bnry.Address, key, value bnry.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr bnry.Address, key bnry.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data.(rlp.RawValue), nil
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(addr bnry.Address, key bnry.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by end will be absorbed by State instance.
func (s *State) EncodeStorage(addr bnry.Address, key bnry.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr bnry.Address, key bnry.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// UpdateMetrics publishes the slot cache counters.
func (s *State) UpdateMetrics() {
	hit, miss, permille := s.cache.Stats().Snapshot()
	metricCacheLookups().SetWithLabel(hit, map[string]string{"result": "hit"})
	metricCacheLookups().SetWithLabel(miss, map[string]string{"result": "miss"})
	metricCacheHitRate().Set(permille)
}

// Stage collects the latest value of every slot written since the last commit.
// The state must not be written between Stage and Commit.
func (s *State) Stage() *Stage {
	changes := make(map[storageKey]rlp.RawValue)
	s.sm.Journal(func(k, v any) bool {
		if key, ok := k.(storageKey); ok {
			changes[key] = v.(rlp.RawValue)
		}
		return true
	})
	return &Stage{state: s, changes: changes}
}
