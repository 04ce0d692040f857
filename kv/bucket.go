// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"sync"

	"github.com/syndtr/goleveldb/leveldb/util"
)

// Bucket provides logical bucket for kv store.
type Bucket string

func (b Bucket) withPrefix(key []byte, fn func([]byte)) {
	buf := bufPool.Get().(*buf)
	defer bufPool.Put(buf)
	buf.k = append(append(buf.k[:0], b...), key...)
	fn(buf.k)
}

// NewGetter creates a bucket getter from the source getter.
func (b Bucket) NewGetter(src Getter) Getter {
	return &struct {
		GetFunc
		HasFunc
		IsNotFoundFunc
	}{
		func(key []byte) (val []byte, err error) {
			b.withPrefix(key, func(k []byte) { val, err = src.Get(k) })
			return
		},
		func(key []byte) (has bool, err error) {
			b.withPrefix(key, func(k []byte) { has, err = src.Has(k) })
			return
		},
		src.IsNotFound,
	}
}

// NewPutter creates a bucket putter from the source putter.
func (b Bucket) NewPutter(src Putter) Putter {
	return &struct {
		PutFunc
		DeleteFunc
	}{
		func(key, val []byte) (err error) {
			b.withPrefix(key, func(k []byte) { err = src.Put(k, val) })
			return
		},
		func(key []byte) (err error) {
			b.withPrefix(key, func(k []byte) { err = src.Delete(k) })
			return
		},
	}
}

// NewBatch creates a bucket batch from the source batch.
func (b Bucket) NewBatch(src Batch) Batch {
	return &struct {
		Putter
		LenFunc
		WriteFunc
	}{
		b.NewPutter(src),
		src.Len,
		src.Write,
	}
}

// NewIterator iterates keys of the bucket in range r, with the bucket prefix stripped.
func (b Bucket) NewIterator(src Store, r Range) Iterator {
	start := append([]byte(b), r.Start...)
	var limit []byte
	if len(r.Limit) == 0 {
		limit = util.BytesPrefix([]byte(b)).Limit
	} else {
		limit = append([]byte(b), r.Limit...)
	}
	return &bucketIter{src.NewIterator(Range{Start: start, Limit: limit}), len(b)}
}

type bucketIter struct {
	Iterator
	prefixLen int
}

func (i *bucketIter) Key() []byte {
	return i.Iterator.Key()[i.prefixLen:]
}

type buf struct {
	k []byte
}

var bufPool = sync.Pool{
	New: func() any {
		return &buf{}
	},
}
