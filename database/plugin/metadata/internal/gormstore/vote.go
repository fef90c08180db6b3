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

// AddVote records a vote and bumps the matching counter on the indexed
// proposal
func (s *Store) AddVote(
	vote *models.Vote,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Create(vote); result.Error != nil {
		return result.Error
	}
	column := "against_votes"
	if vote.Vote {
		column = "for_votes"
	}
	result := db.Model(&models.Proposal{}).
		Where("proposal_id = ?", vote.ProposalId).
		Update(column, gorm.Expr(column+" + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrProposalNotFound
	}
	return nil
}

// GetVotes returns all votes on a proposal
func (s *Store) GetVotes(
	proposalId uint32,
	txn types.Txn,
) ([]models.Vote, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.Vote
	result := db.Where("proposal_id = ?", proposalId).
		Order("id ASC").
		Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// GetVotesByVoter returns every vote cast by an account, in proposal order
func (s *Store) GetVotesByVoter(
	voter []byte,
	txn types.Txn,
) ([]models.Vote, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.Vote
	result := db.Where("voter = ?", voter).
		Order("proposal_id ASC").
		Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}
