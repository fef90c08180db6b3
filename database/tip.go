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

package database

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/blinklabs-io/ballot/database/types"
)

// GetTip returns the height of the last applied block, or 0 on an empty
// ledger
func (d *Database) GetTip(txn *Txn) (uint64, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	val, err := d.Blob().Get(txn.Blob(), types.TipKey())
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if len(val) != 8 {
		return 0, fmt.Errorf("invalid tip record %x", val)
	}
	return binary.BigEndian.Uint64(val), nil
}

// SetTip records the height of the last applied block in both stores
func (d *Database) SetTip(block uint64, txn *Txn) error {
	if txn == nil || !txn.ReadWrite() {
		return types.ErrTxnReadOnly
	}
	val := make([]byte, 8)
	binary.BigEndian.PutUint64(val, block)
	if err := d.Blob().Set(txn.Blob(), types.TipKey(), val); err != nil {
		return fmt.Errorf("set blob tip: %w", err)
	}
	if err := d.Metadata().SetTip(block, txn.Metadata()); err != nil {
		return fmt.Errorf("set metadata tip: %w", err)
	}
	return nil
}
