// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binarybit/staking/bnry"
	"github.com/binarybit/staking/lvldb"
)

func newTestState(t *testing.T) (*State, *lvldb.LevelDB) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st, err := New(db, Options{CacheSize: 16})
	require.NoError(t, err)
	return st, db
}

func TestStateReadWrite(t *testing.T) {
	st, _ := newTestState(t)

	addr := bnry.BytesToAddress([]byte("contract"))
	key := bnry.BytesToBytes32([]byte("key"))

	v, err := st.GetStorage(addr, key)
	assert.NoError(t, err)
	assert.True(t, v.IsZero())

	st.SetStorage(addr, key, bnry.BytesToBytes32([]byte{1, 2}))
	v, err = st.GetStorage(addr, key)
	assert.NoError(t, err)
	assert.Equal(t, bnry.BytesToBytes32([]byte{1, 2}), v)

	st.SetStorage(addr, key, bnry.Bytes32{})
	raw, err := st.GetRawStorage(addr, key)
	assert.NoError(t, err)
	assert.Empty(t, raw)
}

func TestStateRevert(t *testing.T) {
	st, _ := newTestState(t)

	addr := bnry.BytesToAddress([]byte("contract"))
	key := bnry.BytesToBytes32([]byte("key"))
	val := func(b byte) bnry.Bytes32 { return bnry.BytesToBytes32([]byte{b}) }
	get := func() bnry.Bytes32 {
		v, err := st.GetStorage(addr, key)
		require.NoError(t, err)
		return v
	}

	st.SetStorage(addr, key, val(1))

	outer := st.NewCheckpoint()
	st.SetStorage(addr, key, val(2))

	inner := st.NewCheckpoint()
	st.SetStorage(addr, key, val(3))
	assert.Equal(t, val(3), get())

	st.RevertTo(inner)
	assert.Equal(t, val(2), get())

	st.RevertTo(outer)
	assert.Equal(t, val(1), get())
}

func TestStateCommit(t *testing.T) {
	st, db := newTestState(t)

	addr := bnry.BytesToAddress([]byte("contract"))
	k1 := bnry.BytesToBytes32([]byte("k1"))
	k2 := bnry.BytesToBytes32([]byte("k2"))

	st.SetStorage(addr, k1, bnry.BytesToBytes32([]byte{1}))
	st.SetStorage(addr, k1, bnry.BytesToBytes32([]byte{9}))
	st.SetStorage(addr, k2, bnry.BytesToBytes32([]byte{2}))

	stage := st.Stage()
	assert.Equal(t, 2, stage.Len())
	require.NoError(t, stage.Commit())

	// a fresh state over the same db sees committed values
	st2, err := New(db, Options{})
	require.NoError(t, err)
	v, err := st2.GetStorage(addr, k1)
	assert.NoError(t, err)
	assert.Equal(t, bnry.BytesToBytes32([]byte{9}), v)

	// revert after commit does not undo committed writes
	cp := st.NewCheckpoint()
	st.SetStorage(addr, k2, bnry.Bytes32{})
	st.RevertTo(cp)
	v, err = st.GetStorage(addr, k2)
	assert.NoError(t, err)
	assert.Equal(t, bnry.BytesToBytes32([]byte{2}), v)

	// zero value deletes the slot
	st.SetStorage(addr, k2, bnry.Bytes32{})
	require.NoError(t, st.Stage().Commit())
	has, err := db.Has(append([]byte(storageBucket), storageKey{addr, k2}.dbKey()...))
	assert.NoError(t, err)
	assert.False(t, has)

	assert.Equal(t, 0, st.Stage().Len())
}

func TestStateEncodeDecode(t *testing.T) {
	st, _ := newTestState(t)

	addr := bnry.BytesToAddress([]byte("contract"))
	key := bnry.BytesToBytes32([]byte("amount"))

	require.NoError(t, st.EncodeStorage(addr, key, func() ([]byte, error) {
		return rlp.EncodeToBytes(big.NewInt(12345))
	}))

	var got big.Int
	require.NoError(t, st.DecodeStorage(addr, key, func(raw []byte) error {
		return rlp.DecodeBytes(raw, &got)
	}))
	assert.Equal(t, int64(12345), got.Int64())

	err := st.DecodeStorage(addr, key, func(raw []byte) error {
		var s []string
		return rlp.DecodeBytes(raw, &s)
	})
	assert.IsType(t, &Error{}, err)
}

func TestStateLoadError(t *testing.T) {
	st, db := newTestState(t)
	require.NoError(t, db.Close())

	_, err := st.GetStorage(bnry.BytesToAddress([]byte("a")), bnry.Bytes32{})
	assert.Error(t, err)
	assert.IsType(t, &Error{}, err)
}

func BenchmarkStorageSet(b *testing.B) {
	db, _ := lvldb.NewMem()
	st, _ := New(db, Options{})

	addr := bnry.BytesToAddress([]byte("acc"))
	key := bnry.BytesToBytes32([]byte("key"))
	for i := 0; i < b.N; i++ {
		st.SetStorage(addr, key, bnry.BytesToBytes32([]byte{1}))
	}
}

func TestStateCacheMetrics(t *testing.T) {
	st, db := newTestState(t)

	addr := bnry.BytesToAddress([]byte("contract"))
	key := bnry.BytesToBytes32([]byte("k"))
	st.SetStorage(addr, key, bnry.BytesToBytes32([]byte{7}))
	require.NoError(t, st.Stage().Commit())

	fresh, err := New(db, Options{})
	require.NoError(t, err)
	for range 4 {
		v, err := fresh.GetStorage(addr, key)
		require.NoError(t, err)
		assert.Equal(t, bnry.BytesToBytes32([]byte{7}), v)
	}

	hit, miss, permille := fresh.cache.Stats().Snapshot()
	assert.Equal(t, int64(3), hit)
	assert.Equal(t, int64(1), miss)
	assert.Equal(t, int64(750), permille)

	fresh.UpdateMetrics()
}
