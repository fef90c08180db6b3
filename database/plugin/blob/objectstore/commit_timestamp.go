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
	"errors"
	"fmt"
	"math/big"

	"github.com/blinklabs-io/ballot/database/sops"
	"github.com/blinklabs-io/ballot/database/types"
)

const commitTimestampBlobKey = "metadata_commit_timestamp"

// GetCommitTimestamp reads the commit timestamp, decrypting it if it was
// stored encrypted
func (s *Store) GetCommitTimestamp() (int64, error) {
	txn := s.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck

	val, err := s.Get(txn, []byte(commitTimestampBlobKey))
	if err != nil {
		// Nothing committed yet
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if sops.IsEncrypted(val) {
		val, err = sops.Decrypt(val)
		if err != nil {
			return 0, fmt.Errorf("decrypt commit timestamp: %w", err)
		}
	}
	return new(big.Int).SetBytes(val).Int64(), nil
}

// SetCommitTimestamp writes the commit timestamp in txn. The value is
// encrypted with SOPS when KMS master keys are configured.
func (s *Store) SetCommitTimestamp(timestamp int64, txn types.Txn) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	val := new(big.Int).SetInt64(timestamp).Bytes()
	if sops.Enabled() {
		ciphertext, err := sops.Encrypt(val)
		if err != nil {
			return fmt.Errorf("encrypt commit timestamp: %w", err)
		}
		val = ciphertext
	}
	return s.Set(txn, []byte(commitTimestampBlobKey), val)
}
