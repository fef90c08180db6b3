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
	"sort"

	"github.com/blinklabs-io/ballot/database/types"
)

// objectIterator walks a snapshot of the key listing taken when it was
// created
type objectIterator struct {
	store   *Store
	txn     *objectTxn
	err     error
	keys    [][]byte
	pos     int
	reverse bool
}

func (it *objectIterator) Rewind() {
	it.pos = 0
}

func (it *objectIterator) Seek(key []byte) {
	it.pos = sort.Search(len(it.keys), func(i int) bool {
		if it.reverse {
			return bytes.Compare(it.keys[i], key) <= 0
		}
		return bytes.Compare(it.keys[i], key) >= 0
	})
}

func (it *objectIterator) Valid() bool {
	return it.err == nil && it.pos < len(it.keys)
}

func (it *objectIterator) ValidForPrefix(prefix []byte) bool {
	return it.Valid() && bytes.HasPrefix(it.keys[it.pos], prefix)
}

func (it *objectIterator) Next() {
	it.pos++
}

func (it *objectIterator) Item() types.BlobItem {
	if !it.Valid() {
		return nil
	}
	return &objectItem{store: it.store, txn: it.txn, key: it.keys[it.pos]}
}

func (it *objectIterator) Close() {}

func (it *objectIterator) Err() error {
	return it.err
}

type objectItem struct {
	store *Store
	txn   *objectTxn
	key   []byte
}

func (i *objectItem) Key() []byte {
	return bytes.Clone(i.key)
}

func (i *objectItem) ValueCopy(dst []byte) ([]byte, error) {
	data, err := i.store.Get(i.txn, i.key)
	if err != nil {
		return nil, err
	}
	return append(dst[:0], data...), nil
}
