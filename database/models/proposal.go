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

import (
	"errors"

	"github.com/blinklabs-io/ballot/database/types"
)

var ErrProposalNotFound = errors.New("proposal not found")

// Proposal is the indexed view of a governance proposal. The durable record
// lives in the blob store; this row is rebuilt from the notifications
// emitted while applying blocks.
type Proposal struct {
	ID           uint          `gorm:"primarykey"`
	ProposalId   uint32        `gorm:"uniqueIndex;not null"`
	Proposer     []byte        `gorm:"index;size:32;not null"`
	Description  []byte        `gorm:"size:256"`
	StartBlock   types.Uint64  `gorm:"not null"`
	EndBlock     types.Uint64  `gorm:"not null"`
	IsClosed     bool          `gorm:"index;not null"`
	ClosedBlock  *types.Uint64 // nil while open
	ForVotes     uint32        `gorm:"not null"`
	AgainstVotes uint32        `gorm:"not null"`
}

// TableName returns the table name
func (Proposal) TableName() string {
	return "proposal"
}

// ProposalFilter narrows a proposal listing. Results are always ordered by
// ascending proposal ID.
type ProposalFilter struct {
	Proposer []byte // only proposals by this account, when set
	OpenOnly bool
	AfterId  *uint32 // only IDs strictly greater than this
	Limit    int     // 0 means unlimited
}
