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
	"fmt"

	"github.com/blinklabs-io/ballot/database/models"
	"github.com/blinklabs-io/ballot/database/types"
	"github.com/blinklabs-io/ballot/governance"
)

// RebuildIndex discards the metadata index and rebuilds it from the blob
// state. The blob store is authoritative, so this resolves a commit
// timestamp mismatch between the two stores. The block at which a proposal
// was closed or a vote was cast is not kept in blob state and is left
// unset in the rebuilt index.
func (d *Database) RebuildIndex(txn *Txn) error {
	if txn == nil || !txn.ReadWrite() {
		return types.ErrTxnReadOnly
	}
	ms := d.Metadata()
	if err := ms.ResetIndex(txn.Metadata()); err != nil {
		return fmt.Errorf("reset index: %w", err)
	}
	var proposals []models.Proposal
	err := txn.Governance().IterateProposals(
		func(id governance.ProposalId, p *governance.Proposal) bool {
			proposals = append(proposals, models.Proposal{
				ProposalId:  uint32(id),
				Proposer:    p.Proposer.Bytes(),
				Description: p.Description,
				StartBlock:  types.Uint64(p.StartBlock),
				EndBlock:    types.Uint64(p.EndBlock),
				IsClosed:    p.IsClosed,
			})
			return true
		},
	)
	if err != nil {
		return err
	}
	for i := range proposals {
		if err := ms.SetProposal(&proposals[i], txn.Metadata()); err != nil {
			return fmt.Errorf("index proposal %d: %w", proposals[i].ProposalId, err)
		}
	}
	votes, err := d.blobVotes(txn)
	if err != nil {
		return err
	}
	for i := range votes {
		if err := ms.AddVote(&votes[i], txn.Metadata()); err != nil {
			return fmt.Errorf(
				"index vote on proposal %d: %w",
				votes[i].ProposalId,
				err,
			)
		}
	}
	tip, err := d.GetTip(txn)
	if err != nil {
		return err
	}
	if err := ms.SetTip(tip, txn.Metadata()); err != nil {
		return fmt.Errorf("set metadata tip: %w", err)
	}
	d.logger.Info(
		"rebuilt metadata index",
		"component", "database",
		"proposals", len(proposals),
		"votes", len(votes),
		"tip", tip,
	)
	return nil
}

func (d *Database) blobVotes(txn *Txn) ([]models.Vote, error) {
	prefix := []byte{types.VoteKeyPrefix}
	iter := d.Blob().NewIterator(
		txn.Blob(),
		types.BlobIteratorOptions{Prefix: prefix},
	)
	defer iter.Close()
	var ret []models.Vote
	for iter.Rewind(); iter.ValidForPrefix(prefix); iter.Next() {
		item := iter.Item()
		id, voter, err := types.VoterFromKey(item.Key())
		if err != nil {
			return nil, fmt.Errorf("vote key %x: %w", item.Key(), err)
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return nil, fmt.Errorf("read vote on proposal %d: %w", id, err)
		}
		if len(val) != 1 || val[0] > voteFor {
			return nil, fmt.Errorf("invalid vote record %x on proposal %d", val, id)
		}
		ret = append(ret, models.Vote{
			ProposalId: id,
			Voter:      voter,
			Vote:       val[0] == voteFor,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}
