// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package badger

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/blinklabs-io/ballot/database/types"
	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	DefaultValueLogFileSize = 1 << 28 // 256MB
	DefaultMemTableSize     = 1 << 26 // 64MB
	DefaultValueThreshold   = 1 << 10 // 1KB

	gcInterval = 5 * time.Minute
)

// badgerTxn wraps a badger transaction and implements types.Txn
type badgerTxn struct {
	store     *BlobStoreBadger
	tx        *badger.Txn
	finished  bool
	readWrite bool
}

func (t *badgerTxn) Commit() error {
	if t.finished {
		return nil
	}
	t.finished = true
	if t.tx == nil {
		return types.ErrBlobStoreUnavailable
	}
	if !t.readWrite {
		t.tx.Discard()
		return nil
	}
	return t.tx.Commit()
}

func (t *badgerTxn) Rollback() error {
	if t.finished {
		return nil
	}
	if t.tx != nil {
		t.tx.Discard()
	}
	t.finished = true
	return nil
}

// validateTxn checks that txn was created by this store and is still usable
func (d *BlobStoreBadger) validateTxn(txn types.Txn) (*badgerTxn, error) {
	if txn == nil {
		return nil, types.ErrNilTxn
	}
	bTxn, ok := txn.(*badgerTxn)
	if !ok || bTxn.store != d {
		return nil, types.ErrTxnWrongType
	}
	if bTxn.finished {
		return nil, types.ErrTxnFinished
	}
	if bTxn.tx == nil {
		return nil, types.ErrBlobStoreUnavailable
	}
	return bTxn, nil
}

type badgerIterator struct {
	iter *badger.Iterator
}

func (it *badgerIterator) Rewind()                      { it.iter.Rewind() }
func (it *badgerIterator) Seek(prefix []byte)           { it.iter.Seek(prefix) }
func (it *badgerIterator) Valid() bool                  { return it.iter.Valid() }
func (it *badgerIterator) ValidForPrefix(p []byte) bool { return it.iter.ValidForPrefix(p) }
func (it *badgerIterator) Next()                        { it.iter.Next() }
func (it *badgerIterator) Close()                       { it.iter.Close() }
func (it *badgerIterator) Err() error                   { return nil }

func (it *badgerIterator) Item() types.BlobItem {
	return &badgerItem{item: it.iter.Item()}
}

type errorIterator struct {
	err error
}

func (it *errorIterator) Rewind()                      {}
func (it *errorIterator) Seek(prefix []byte)           {}
func (it *errorIterator) Valid() bool                  { return false }
func (it *errorIterator) ValidForPrefix(p []byte) bool { return false }
func (it *errorIterator) Next()                        {}
func (it *errorIterator) Item() types.BlobItem         { return nil }
func (it *errorIterator) Close()                       {}
func (it *errorIterator) Err() error                   { return it.err }

type badgerItem struct {
	item *badger.Item
}

func (i *badgerItem) Key() []byte {
	return i.item.KeyCopy(nil)
}

func (i *badgerItem) ValueCopy(dst []byte) ([]byte, error) {
	return i.item.ValueCopy(dst)
}

// BlobStoreBadger keeps governance state in badger. With no data dir the
// store is in-memory and nothing is persisted.
type BlobStoreBadger struct {
	promRegistry     prometheus.Registerer
	db               *badger.DB
	logger           *slog.Logger
	gcStopCh         chan struct{}
	dataDir          string
	gcWg             sync.WaitGroup
	blockCacheSize   uint64
	indexCacheSize   uint64
	valueLogFileSize int64
	memTableSize     int64
	valueThreshold   int64
	gcEnabled        bool
}

// New creates a new store. The database is not opened until Start() is
// called.
func New(opts ...BlobStoreBadgerOptionFunc) (*BlobStoreBadger, error) {
	db := &BlobStoreBadger{
		gcEnabled:        true,
		blockCacheSize:   DefaultBlockCacheSize,
		indexCacheSize:   DefaultIndexCacheSize,
		valueLogFileSize: DefaultValueLogFileSize,
		memTableSize:     DefaultMemTableSize,
		valueThreshold:   DefaultValueThreshold,
	}
	for _, opt := range opts {
		opt(db)
	}
	if db.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		db.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return db, nil
}

func (d *BlobStoreBadger) badgerOptions() (badger.Options, error) {
	if d.dataDir == "" {
		return badger.DefaultOptions("").
			WithLogger(NewBadgerLogger(d.logger)).
			// The default INFO logging is a bit verbose
			WithLoggingLevel(badger.WARNING).
			WithInMemory(true).
			WithValueThreshold(d.valueThreshold), nil
	}
	// Make sure that we can read data dir, and create if it doesn't exist
	if _, err := os.Stat(d.dataDir); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return badger.Options{}, fmt.Errorf("failed to read data dir: %w", err)
		}
		if err := os.MkdirAll(d.dataDir, 0o755); err != nil {
			return badger.Options{}, fmt.Errorf("failed to create data dir: %w", err)
		}
	}
	return badger.DefaultOptions(filepath.Join(d.dataDir, "blob")).
		WithLogger(NewBadgerLogger(d.logger)).
		WithLoggingLevel(badger.WARNING).
		WithBlockCacheSize(int64(d.blockCacheSize)). //nolint:gosec
		WithIndexCacheSize(int64(d.indexCacheSize)). //nolint:gosec
		WithValueLogFileSize(d.valueLogFileSize).
		WithMemTableSize(d.memTableSize).
		WithValueThreshold(d.valueThreshold).
		WithCompression(options.Snappy), nil
}

// Start implements the plugin.Plugin interface
func (d *BlobStoreBadger) Start() error {
	if d.db != nil {
		return nil
	}
	badgerOpts, err := d.badgerOptions()
	if err != nil {
		return err
	}
	blobDb, err := badger.Open(badgerOpts)
	if err != nil {
		return err
	}
	d.db = blobDb
	if d.promRegistry != nil {
		d.registerBlobMetrics()
	}
	// Value log GC only matters for disk-backed stores
	if d.gcEnabled && d.dataDir != "" {
		d.gcStopCh = make(chan struct{})
		d.gcWg.Add(1)
		go d.blobGc(d.gcStopCh)
	}
	return nil
}

func (d *BlobStoreBadger) blobGc(stop <-chan struct{}) {
	defer d.gcWg.Done()
	ticker := time.NewTicker(gcInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			// Keep rewriting until there is nothing left to reclaim
			for {
				err := d.db.RunValueLogGC(0.5)
				if err == nil {
					continue
				}
				if !errors.Is(err, badger.ErrNoRewrite) {
					d.logger.Warn(
						fmt.Sprintf("blob DB: GC failure: %s", err),
						"component", "database",
					)
				}
				break
			}
		case <-stop:
			return
		}
	}
}

// Stop implements the plugin.Plugin interface
func (d *BlobStoreBadger) Stop() error {
	return d.Close()
}

// Close stops the GC goroutine and closes the database
func (d *BlobStoreBadger) Close() error {
	if d.gcStopCh != nil {
		close(d.gcStopCh)
		d.gcStopCh = nil
		d.gcWg.Wait()
	}
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

// DB returns the database handle
func (d *BlobStoreBadger) DB() *badger.DB {
	return d.db
}

// NewTransaction creates a new badger transaction
func (d *BlobStoreBadger) NewTransaction(readWrite bool) types.Txn {
	if d.db == nil {
		return &badgerTxn{store: d, readWrite: readWrite}
	}
	return &badgerTxn{
		store:     d,
		tx:        d.db.NewTransaction(readWrite),
		readWrite: readWrite,
	}
}

// Get retrieves a value from badger within a transaction
func (d *BlobStoreBadger) Get(txn types.Txn, key []byte) ([]byte, error) {
	bTxn, err := d.validateTxn(txn)
	if err != nil {
		return nil, err
	}
	item, err := bTxn.tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, types.ErrBlobKeyNotFound
		}
		return nil, err
	}
	return item.ValueCopy(nil)
}

// Set stores a key-value pair in badger within a transaction
func (d *BlobStoreBadger) Set(txn types.Txn, key, val []byte) error {
	bTxn, err := d.validateTxn(txn)
	if err != nil {
		return err
	}
	if !bTxn.readWrite {
		return types.ErrTxnReadOnly
	}
	return bTxn.tx.Set(key, val)
}

// Delete removes a key from badger within a transaction
func (d *BlobStoreBadger) Delete(txn types.Txn, key []byte) error {
	bTxn, err := d.validateTxn(txn)
	if err != nil {
		return err
	}
	if !bTxn.readWrite {
		return types.ErrTxnReadOnly
	}
	return bTxn.tx.Delete(key)
}

// NewIterator creates an iterator over the keys matching opts.Prefix. Only
// one iterator may be open at a time on a read-write transaction.
func (d *BlobStoreBadger) NewIterator(
	txn types.Txn,
	opts types.BlobIteratorOptions,
) types.BlobIterator {
	bTxn, err := d.validateTxn(txn)
	if err != nil {
		return &errorIterator{err: err}
	}
	iterOpts := badger.DefaultIteratorOptions
	iterOpts.Prefix = opts.Prefix
	iterOpts.Reverse = opts.Reverse
	return &badgerIterator{iter: bTxn.tx.NewIterator(iterOpts)}
}
