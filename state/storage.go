// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/binarybit/staking/bnry"
	"github.com/binarybit/staking/kv"
)

// storageBucket is the key prefix of contract storage in the kv store.
const storageBucket = kv.Bucket("s")

type storageKey struct {
	addr bnry.Address
	key  bnry.Bytes32
}

// dbKey is address || key.
func (k storageKey) dbKey() []byte {
	b := make([]byte, 0, len(k.addr)+len(k.key))
	b = append(b, k.addr[:]...)
	return append(b, k.key[:]...)
}

func loadStorage(db kv.Getter, k storageKey) (rlp.RawValue, error) {
	data, err := storageBucket.NewGetter(db).Get(k.dbKey())
	if err != nil {
		if db.IsNotFound(err) {
			return rlp.RawValue(nil), nil
		}
		return nil, err
	}
	return data, nil
}

func saveStorage(putter kv.Putter, k storageKey, data rlp.RawValue) error {
	if len(data) == 0 {
		return putter.Delete(k.dbKey())
	}
	return putter.Put(k.dbKey(), data)
}
