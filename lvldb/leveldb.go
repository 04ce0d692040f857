// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/binarybit/staking/kv"
)

var _ kv.StoreCloser = (*LevelDB)(nil)

// Options tunes the ledger database. Sizes below 16 are raised to 16.
type Options struct {
	CacheSize              int // MB, split between block cache and write buffer
	OpenFilesCacheCapacity int
}

// Stats is a point-in-time view of the database footprint.
type Stats struct {
	Size           int64  // approximate bytes on disk
	ReadBytes      uint64 // since open
	WriteBytes     uint64 // since open
	OpenedTables   int
	BlockCacheSize int
}

var (
	writeOpt = opt.WriteOptions{}
	syncOpt  = opt.WriteOptions{Sync: true}
	readOpt  = opt.ReadOptions{}
)

// LevelDB is the ledger store. Single writes are buffered; batches, which
// carry every committed operation, are fsynced.
type LevelDB struct {
	db   *leveldb.DB
	stg  storage.Storage // leveldb does not close a storage it was handed
	path string
}

// New opens the ledger database at path, creating it when missing.
func New(path string, opts Options) (*LevelDB, error) {
	stg, err := storage.OpenFile(path, false)
	if err != nil {
		return nil, errors.Wrapf(err, "open ledger storage %s", path)
	}
	ldb, err := open(stg, opts)
	if err != nil {
		return nil, err
	}
	ldb.path = path
	return ldb, nil
}

// NewMem opens a ledger database backed by memory.
func NewMem() (*LevelDB, error) {
	return open(storage.NewMemStorage(), Options{})
}

func open(stg storage.Storage, opts Options) (*LevelDB, error) {
	cacheSize := max(opts.CacheSize, 16)
	openFiles := max(opts.OpenFilesCacheCapacity, 16)

	db, err := leveldb.Open(stg, &opt.Options{
		OpenFilesCacheCapacity: openFiles,
		BlockCacheCapacity:     cacheSize / 2 * opt.MiB,
		WriteBuffer:            cacheSize / 4 * opt.MiB,
		Filter:                 filter.NewBloomFilter(10),
	})
	if err != nil {
		stg.Close()
		return nil, errors.Wrap(err, "open ledger db")
	}
	return &LevelDB{db: db, stg: stg}, nil
}

// IsNotFound reports whether err is the missing-key error of Get.
func (ldb *LevelDB) IsNotFound(err error) bool {
	return errors.Cause(err) == leveldb.ErrNotFound
}

func (ldb *LevelDB) Get(key []byte) ([]byte, error) {
	return ldb.db.Get(key, &readOpt)
}

func (ldb *LevelDB) Has(key []byte) (bool, error) {
	return ldb.db.Has(key, &readOpt)
}

func (ldb *LevelDB) Put(key, value []byte) error {
	return ldb.db.Put(key, value, &writeOpt)
}

func (ldb *LevelDB) Delete(key []byte) error {
	return ldb.db.Delete(key, &writeOpt)
}

// Close flushes and closes the database, then releases the storage lock so
// the same path can be opened again. Later calls fail.
func (ldb *LevelDB) Close() error {
	if err := ldb.db.Close(); err != nil {
		ldb.stg.Close()
		return errors.Wrap(err, "close ledger db")
	}
	if err := ldb.stg.Close(); err != nil {
		return errors.Wrap(err, "close ledger storage")
	}
	return nil
}

func (ldb *LevelDB) NewBatch() kv.Batch {
	return &batch{db: ldb.db, b: new(leveldb.Batch)}
}

func (ldb *LevelDB) NewIterator(r kv.Range) kv.Iterator {
	return ldb.db.NewIterator(&util.Range{Start: r.Start, Limit: r.Limit}, &readOpt)
}

// Stats reports the database footprint.
func (ldb *LevelDB) Stats() (*Stats, error) {
	var dbStats leveldb.DBStats
	if err := ldb.db.Stats(&dbStats); err != nil {
		return nil, errors.Wrap(err, "ledger db stats")
	}
	sizes, err := ldb.db.SizeOf([]util.Range{{}})
	if err != nil {
		return nil, errors.Wrap(err, "ledger db size")
	}
	return &Stats{
		Size:           sizes.Sum(),
		ReadBytes:      dbStats.IORead,
		WriteBytes:     dbStats.IOWrite,
		OpenedTables:   dbStats.OpenedTablesCount,
		BlockCacheSize: dbStats.BlockCacheSize,
	}, nil
}

// UpdateMetrics publishes Stats to the metrics gauges.
func (ldb *LevelDB) UpdateMetrics() {
	stats, err := ldb.Stats()
	if err != nil {
		logger.Warn("failed to read ledger db stats", "path", ldb.path, "err", err)
		return
	}
	metricSize().Set(stats.Size)
	metricIOBytes().SetWithLabel(int64(stats.ReadBytes), map[string]string{"op": "read"})
	metricIOBytes().SetWithLabel(int64(stats.WriteBytes), map[string]string{"op": "write"})
}

type batch struct {
	db *leveldb.DB
	b  *leveldb.Batch
}

func (b *batch) Put(key, value []byte) error {
	b.b.Put(key, value)
	return nil
}

func (b *batch) Delete(key []byte) error {
	b.b.Delete(key)
	return nil
}

func (b *batch) Len() int {
	return b.b.Len()
}

func (b *batch) Write() error {
	return b.db.Write(b.b, &syncOpt)
}
