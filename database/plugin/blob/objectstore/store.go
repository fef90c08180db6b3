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

package objectstore

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/blinklabs-io/ballot/database/types"
	"github.com/prometheus/client_golang/prometheus"
)

const DefaultTimeout = 60 * time.Second

type Config struct {
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	// Backend names the object store in logs and metrics
	Backend string
	// Prefix is prepended to every object name
	Prefix  string
	Timeout time.Duration
}

// Store implements the blob store operations over a Client
type Store struct {
	client  Client
	logger  *slog.Logger
	metrics *storeMetrics
	backend string
	prefix  string
	timeout time.Duration
}

func New(cfg Config) *Store {
	s := &Store{
		logger:  cfg.Logger,
		backend: cfg.Backend,
		prefix:  cfg.Prefix,
		timeout: cfg.Timeout,
	}
	if s.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if s.timeout == 0 {
		s.timeout = DefaultTimeout
	}
	if cfg.PromRegistry != nil {
		s.metrics = &storeMetrics{}
		s.metrics.init(cfg.PromRegistry, s.backend)
	}
	return s
}

// SetClient attaches the bucket client. Operations fail with
// types.ErrBlobStoreUnavailable until a client is set.
func (s *Store) SetClient(client Client) {
	s.client = client
}

func (s *Store) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *Store) objectName(encodedKey string) string {
	return s.prefix + encodedKey
}

func encodeKey(key []byte) string {
	return hex.EncodeToString(key)
}

type pendingWrite struct {
	val     []byte
	deleted bool
}

type objectTxn struct {
	store     *Store
	writes    map[string]pendingWrite
	finished  bool
	readWrite bool
}

// NewTransaction returns a transaction that buffers writes until commit
func (s *Store) NewTransaction(readWrite bool) types.Txn {
	return &objectTxn{
		store:     s,
		writes:    make(map[string]pendingWrite),
		readWrite: readWrite,
	}
}

func (t *objectTxn) Commit() error {
	if t.finished {
		return nil
	}
	t.finished = true
	if len(t.writes) == 0 {
		return nil
	}
	if t.store.client == nil {
		return types.ErrBlobStoreUnavailable
	}
	ctx, cancel := t.store.opContext()
	defer cancel()
	keys := make([]string, 0, len(t.writes))
	for k := range t.writes {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		w := t.writes[k]
		name := t.store.objectName(k)
		if w.deleted {
			if err := t.store.client.Delete(ctx, name); err != nil {
				return fmt.Errorf("%s: delete %q: %w", t.store.backend, name, err)
			}
			t.store.metrics.op("delete", 0)
			continue
		}
		if err := t.store.client.Put(ctx, name, w.val); err != nil {
			return fmt.Errorf("%s: put %q: %w", t.store.backend, name, err)
		}
		t.store.metrics.op("put", len(w.val))
	}
	t.store.logger.Debug(
		fmt.Sprintf("%s: committed %d object write(s)", t.store.backend, len(keys)),
		"component", "database",
	)
	t.writes = nil
	return nil
}

func (t *objectTxn) Rollback() error {
	t.finished = true
	t.writes = nil
	return nil
}

func (s *Store) validateTxn(txn types.Txn) (*objectTxn, error) {
	if txn == nil {
		return nil, types.ErrNilTxn
	}
	t, ok := txn.(*objectTxn)
	if !ok || t.store != s {
		return nil, types.ErrTxnWrongType
	}
	if t.finished {
		return nil, types.ErrTxnFinished
	}
	if s.client == nil {
		return nil, types.ErrBlobStoreUnavailable
	}
	return t, nil
}

// Get returns the value for key, including writes pending in txn
func (s *Store) Get(txn types.Txn, key []byte) ([]byte, error) {
	t, err := s.validateTxn(txn)
	if err != nil {
		return nil, err
	}
	k := encodeKey(key)
	if w, ok := t.writes[k]; ok {
		if w.deleted {
			return nil, types.ErrBlobKeyNotFound
		}
		return bytes.Clone(w.val), nil
	}
	ctx, cancel := s.opContext()
	defer cancel()
	data, err := s.client.Get(ctx, s.objectName(k))
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, types.ErrBlobKeyNotFound
		}
		s.logger.Error(
			fmt.Sprintf("%s: get %q failed: %s", s.backend, k, err),
			"component", "database",
		)
		return nil, err
	}
	s.metrics.op("get", len(data))
	return data, nil
}

func (s *Store) Set(txn types.Txn, key, val []byte) error {
	t, err := s.validateTxn(txn)
	if err != nil {
		return err
	}
	if !t.readWrite {
		return types.ErrTxnReadOnly
	}
	t.writes[encodeKey(key)] = pendingWrite{val: bytes.Clone(val)}
	return nil
}

func (s *Store) Delete(txn types.Txn, key []byte) error {
	t, err := s.validateTxn(txn)
	if err != nil {
		return err
	}
	if !t.readWrite {
		return types.ErrTxnReadOnly
	}
	t.writes[encodeKey(key)] = pendingWrite{deleted: true}
	return nil
}

// NewIterator lists the keys matching opts.Prefix, merged with the writes
// pending in txn. Values are fetched lazily.
func (s *Store) NewIterator(
	txn types.Txn,
	opts types.BlobIteratorOptions,
) types.BlobIterator {
	t, err := s.validateTxn(txn)
	if err != nil {
		return &objectIterator{err: err}
	}
	keys, err := s.listKeys(t, opts.Prefix)
	if err != nil {
		return &objectIterator{err: err}
	}
	if opts.Reverse {
		slices.Reverse(keys)
	}
	return &objectIterator{
		store:   s,
		txn:     t,
		keys:    keys,
		reverse: opts.Reverse,
	}
}

func (s *Store) listKeys(t *objectTxn, prefix []byte) ([][]byte, error) {
	ctx, cancel := s.opContext()
	defer cancel()
	encodedPrefix := encodeKey(prefix)
	names, err := s.client.List(ctx, s.objectName(encodedPrefix))
	if err != nil {
		s.logger.Error(
			fmt.Sprintf("%s: list failed: %s", s.backend, err),
			"component", "database",
		)
		return nil, err
	}
	s.metrics.op("list", 0)
	found := make(map[string]struct{}, len(names))
	for _, name := range names {
		found[strings.TrimPrefix(name, s.prefix)] = struct{}{}
	}
	for k, w := range t.writes {
		if !strings.HasPrefix(k, encodedPrefix) {
			continue
		}
		if w.deleted {
			delete(found, k)
		} else {
			found[k] = struct{}{}
		}
	}
	ret := make([][]byte, 0, len(found))
	for k := range found {
		key, err := hex.DecodeString(k)
		if err != nil {
			// Not one of ours
			continue
		}
		ret = append(ret, key)
	}
	slices.SortFunc(ret, bytes.Compare)
	return ret, nil
}
