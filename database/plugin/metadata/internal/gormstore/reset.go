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
	"github.com/blinklabs-io/ballot/database/models"
	"github.com/blinklabs-io/ballot/database/types"
	"gorm.io/gorm"
)

// ResetIndex removes every indexed vote and proposal and clears the tip
func (s *Store) ResetIndex(txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	for _, model := range []any{&models.Vote{}, &models.Proposal{}, &models.Tip{}} {
		result := db.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(model)
		if result.Error != nil {
			return result.Error
		}
	}
	return nil
}
