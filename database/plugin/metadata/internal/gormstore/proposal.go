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

// SetProposal creates or replaces the indexed proposal with the same
// proposal ID
func (s *Store) SetProposal(
	proposal *models.Proposal,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	onConflict := clause.OnConflict{
		Columns: []clause.Column{{Name: "proposal_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"proposer",
			"description",
			"start_block",
			"end_block",
			"is_closed",
			"closed_block",
			"for_votes",
			"against_votes",
		}),
	}
	return db.Clauses(onConflict).Create(proposal).Error
}

// GetProposal returns the indexed proposal, or nil if it is not indexed
func (s *Store) GetProposal(
	proposalId uint32,
	txn types.Txn,
) (*models.Proposal, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret models.Proposal
	if result := db.Where("proposal_id = ?", proposalId).First(&ret); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ret, nil
}

// GetProposals lists indexed proposals in ascending proposal ID order
func (s *Store) GetProposals(
	filter models.ProposalFilter,
	txn types.Txn,
) ([]models.Proposal, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	query := db.Model(&models.Proposal{})
	if len(filter.Proposer) > 0 {
		query = query.Where("proposer = ?", filter.Proposer)
	}
	if filter.OpenOnly {
		query = query.Where("is_closed = ?", false)
	}
	if filter.AfterId != nil {
		query = query.Where("proposal_id > ?", *filter.AfterId)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	var ret []models.Proposal
	if result := query.Order("proposal_id ASC").Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// SetProposalClosed marks an indexed proposal closed with its final tally
func (s *Store) SetProposalClosed(
	proposalId uint32,
	block uint64,
	forVotes uint32,
	againstVotes uint32,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	closedBlock := types.Uint64(block)
	result := db.Model(&models.Proposal{}).
		Where("proposal_id = ?", proposalId).
		Updates(map[string]any{
			"is_closed":     true,
			"closed_block":  closedBlock,
			"for_votes":     forVotes,
			"against_votes": againstVotes,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrProposalNotFound
	}
	return nil
}
