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

package models

import "github.com/blinklabs-io/ballot/database/types"

// Vote is a single recorded vote. Each account votes at most once per
// proposal.
type Vote struct {
	ID         uint         `gorm:"primarykey"`
	ProposalId uint32       `gorm:"uniqueIndex:idx_vote_unique,priority:1;not null"`
	Voter      []byte       `gorm:"index:idx_vote_voter;uniqueIndex:idx_vote_unique,priority:2;size:32;not null"`
	Vote       bool         `gorm:"not null"` // true = for
	Block      types.Uint64 `gorm:"not null"`
}

// TableName returns the table name
func (Vote) TableName() string {
	return "vote"
}
