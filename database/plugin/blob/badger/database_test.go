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

package badger_test

import (
	"testing"

	"github.com/blinklabs-io/ballot/database/plugin/blob/badger"
	"github.com/blinklabs-io/ballot/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts ...badger.BlobStoreBadgerOptionFunc) *badger.BlobStoreBadger {
	t.Helper()
	store, err := badger.New(opts...)
	require.NoError(t, err)
	require.NoError(t, store.Start())
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestGetSetDelete(t *testing.T) {
	store := newTestStore(t)

	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("k1"), []byte("v1")))
	require.NoError(t, txn.Commit())

	txn = store.NewTransaction(false)
	val, err := store.Get(txn, []byte("k1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), val)
	_, err = store.Get(txn, []byte("missing"))
	require.ErrorIs(t, err, types.ErrBlobKeyNotFound)
	// Writes through a read-only transaction are rejected
	require.ErrorIs(t, store.Set(txn, []byte("k2"), nil), types.ErrTxnReadOnly)
	require.NoError(t, txn.Rollback())

	txn = store.NewTransaction(true)
	require.NoError(t, store.Delete(txn, []byte("k1")))
	require.NoError(t, txn.Commit())
	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	_, err = store.Get(txn, []byte("k1"))
	require.ErrorIs(t, err, types.ErrBlobKeyNotFound)
}

func TestRollbackDiscardsWrites(t *testing.T) {
	store := newTestStore(t)
	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("k"), []byte("v")))
	require.NoError(t, txn.Rollback())
	// Finished transactions can no longer be used
	_, err := store.Get(txn, []byte("k"))
	require.ErrorIs(t, err, types.ErrTxnFinished)

	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	_, err = store.Get(txn, []byte("k"))
	require.ErrorIs(t, err, types.ErrBlobKeyNotFound)
}

func TestTxnFromOtherStore(t *testing.T) {
	store1 := newTestStore(t)
	store2 := newTestStore(t)
	txn := store1.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	_, err := store2.Get(txn, []byte("k"))
	require.ErrorIs(t, err, types.ErrTxnWrongType)
	_, err = store2.Get(nil, []byte("k"))
	require.ErrorIs(t, err, types.ErrNilTxn)
}

func TestIteratorPrefixOrder(t *testing.T) {
	store := newTestStore(t)
	txn := store.NewTransaction(true)
	for _, id := range []uint32{300, 2, 65536, 0, 17} {
		require.NoError(t, store.Set(txn, types.ProposalKey(id), []byte{byte(id)}))
	}
	require.NoError(t, store.Set(txn, types.TallyKey(1), []byte("tally")))
	require.NoError(t, txn.Commit())

	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	prefix := types.ProposalKeyPrefixBytes()
	iter := store.NewIterator(txn, types.BlobIteratorOptions{Prefix: prefix})
	defer iter.Close()
	var ids []uint32
	for iter.Rewind(); iter.ValidForPrefix(prefix); iter.Next() {
		id, err := types.ProposalIdFromKey(iter.Item().Key())
		require.NoError(t, err)
		ids = append(ids, id)
		val, err := iter.Item().ValueCopy(nil)
		require.NoError(t, err)
		assert.Equal(t, []byte{byte(id)}, val)
	}
	require.NoError(t, iter.Err())
	assert.Equal(t, []uint32{0, 2, 17, 300, 65536}, ids)
}

func TestIteratorInvalidTxn(t *testing.T) {
	store := newTestStore(t)
	iter := store.NewIterator(nil, types.BlobIteratorOptions{})
	assert.False(t, iter.Valid())
	require.ErrorIs(t, iter.Err(), types.ErrNilTxn)
}

func TestCommitTimestamp(t *testing.T) {
	store := newTestStore(t)
	ts, err := store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(0), ts)

	txn := store.NewTransaction(true)
	require.NoError(t, store.SetCommitTimestamp(1700000000123, txn))
	require.NoError(t, txn.Commit())
	ts, err = store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000123), ts)

	require.ErrorIs(t, store.SetCommitTimestamp(1, nil), types.ErrNilTxn)
}

func TestPersistentStore(t *testing.T) {
	dataDir := t.TempDir()
	store, err := badger.New(badger.WithDataDir(dataDir), badger.WithGc(true))
	require.NoError(t, err)
	require.NoError(t, store.Start())
	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("durable"), []byte("yes")))
	require.NoError(t, txn.Commit())
	require.NoError(t, store.Close())

	store = newTestStore(t, badger.WithDataDir(dataDir))
	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	val, err := store.Get(txn, []byte("durable"))
	require.NoError(t, err)
	assert.Equal(t, []byte("yes"), val)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	newTestStore(t, badger.WithPromRegistry(reg))
	count, err := testutil.GatherAndCount(
		reg,
		"database_blob_badger_lsm_size_bytes",
		"database_blob_badger_vlog_size_bytes",
	)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
