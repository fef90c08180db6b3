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

package gormstore

import (
	"errors"

	"github.com/blinklabs-io/ballot/database/models"
	"github.com/blinklabs-io/ballot/database/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const tipRowId = 1

// GetTip returns the last indexed block, or 0 when nothing is indexed
func (s *Store) GetTip(txn types.Txn) (uint64, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return 0, err
	}
	var tmpTip models.Tip
	if result := db.First(&tmpTip); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, result.Error
	}
	return uint64(tmpTip.Block), nil
}

// SetTip records the last indexed block
func (s *Store) SetTip(block uint64, txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	tmpTip := models.Tip{
		ID:    tipRowId,
		Block: types.Uint64(block),
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"block"}),
	}).Create(&tmpTip)
	return result.Error
}
