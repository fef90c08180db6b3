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
	"bytes"
	"fmt"

	"github.com/blinklabs-io/ballot/database/models"
	"github.com/blinklabs-io/ballot/database/types"
	"github.com/blinklabs-io/ballot/event"
	"github.com/blinklabs-io/ballot/governance"
)

// IndexEvent updates the metadata index from a governance notification
// emitted at the given block. Notifications of other types are ignored.
func (d *Database) IndexEvent(evt event.Event, block uint64, txn *Txn) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	ms := d.Metadata()
	switch data := evt.Data.(type) {
	case governance.ProposalCreatedEvent:
		err := ms.SetProposal(
			&models.Proposal{
				ProposalId:  uint32(data.ProposalId),
				Proposer:    data.Proposer.Bytes(),
				Description: bytes.Clone(data.Description),
				StartBlock:  types.Uint64(block),
				EndBlock:    types.Uint64(data.EndBlock),
			},
			txn.Metadata(),
		)
		if err != nil {
			return fmt.Errorf("index proposal %d: %w", data.ProposalId, err)
		}
	case governance.VotedEvent:
		err := ms.AddVote(
			&models.Vote{
				ProposalId: uint32(data.ProposalId),
				Voter:      data.Voter.Bytes(),
				Vote:       data.Vote,
				Block:      types.Uint64(block),
			},
			txn.Metadata(),
		)
		if err != nil {
			return fmt.Errorf(
				"index vote on proposal %d: %w",
				data.ProposalId,
				err,
			)
		}
	case governance.ProposalClosedEvent:
		err := ms.SetProposalClosed(
			uint32(data.ProposalId),
			block,
			data.ForVotes,
			data.AgainstVotes,
			txn.Metadata(),
		)
		if err != nil {
			return fmt.Errorf("index close of proposal %d: %w", data.ProposalId, err)
		}
	}
	return nil
}

// IndexEvents indexes a batch of notifications in order
func (d *Database) IndexEvents(evts []event.Event, block uint64, txn *Txn) error {
	for _, evt := range evts {
		if err := d.IndexEvent(evt, block, txn); err != nil {
			return err
		}
	}
	return nil
}

// GetProposals lists indexed proposals in ascending ID order
func (d *Database) GetProposals(
	filter models.ProposalFilter,
	txn *Txn,
) ([]models.Proposal, error) {
	return d.Metadata().GetProposals(filter, metadataTxn(txn))
}

// GetIndexedProposal returns the indexed view of a proposal, or nil
func (d *Database) GetIndexedProposal(
	id uint32,
	txn *Txn,
) (*models.Proposal, error) {
	return d.Metadata().GetProposal(id, metadataTxn(txn))
}

// GetVotes returns the indexed votes on a proposal
func (d *Database) GetVotes(id uint32, txn *Txn) ([]models.Vote, error) {
	return d.Metadata().GetVotes(id, metadataTxn(txn))
}

// GetVotesByVoter returns the indexed votes cast by an account
func (d *Database) GetVotesByVoter(
	voter []byte,
	txn *Txn,
) ([]models.Vote, error) {
	return d.Metadata().GetVotesByVoter(voter, metadataTxn(txn))
}

func metadataTxn(txn *Txn) types.Txn {
	if txn == nil {
		return nil
	}
	return txn.Metadata()
}
