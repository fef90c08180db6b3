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
	"sync"

	"github.com/fxamacker/cbor/v2"
)

var (
	cborEncMode     cbor.EncMode
	cborDecMode     cbor.DecMode
	cborModeOnce    sync.Once
	errCborModeInit error
)

func initCborModes() {
	cborModeOnce.Do(func() {
		// Core deterministic encoding gives every replica identical bytes
		// for the same record
		encMode, err := cbor.CoreDetEncOptions().EncMode()
		if err != nil {
			errCborModeInit = err
			return
		}
		decMode, err := cbor.DecOptions{
			DupMapKey:       cbor.DupMapKeyEnforcedAPF,
			MaxNestedLevels: 16,
		}.DecMode()
		if err != nil {
			errCborModeInit = err
			return
		}
		cborEncMode = encMode
		cborDecMode = decMode
	})
}

// encodeRecord returns the canonical CBOR encoding of a state record
func encodeRecord(v any) ([]byte, error) {
	initCborModes()
	if errCborModeInit != nil {
		return nil, errCborModeInit
	}
	return cborEncMode.Marshal(v)
}

// decodeRecord decodes a state record encoded with encodeRecord
func decodeRecord(data []byte, v any) error {
	initCborModes()
	if errCborModeInit != nil {
		return errCborModeInit
	}
	return cborDecMode.Unmarshal(data, v)
}
