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

package ledger

import (
	"github.com/blinklabs-io/ballot/database/models"
	"github.com/blinklabs-io/ballot/governance"
)

// Proposal returns the proposal with the given ID, or nil
func (ls *LedgerState) Proposal(
	id governance.ProposalId,
) (*governance.Proposal, error) {
	txn := ls.db.Transaction(false)
	defer txn.Release()
	return ls.engine.Proposal(txn.Governance(), id)
}

// VoteOf returns the recorded vote of an account on a proposal, or nil if
// the account has not voted
func (ls *LedgerState) VoteOf(
	id governance.ProposalId,
	voter governance.AccountId,
) (*bool, error) {
	txn := ls.db.Transaction(false)
	defer txn.Release()
	return ls.engine.VoteOf(txn.Governance(), id, voter)
}

// Tally returns the current tally of a proposal, or nil
func (ls *LedgerState) Tally(
	id governance.ProposalId,
) (*governance.Tally, error) {
	txn := ls.db.Transaction(false)
	defer txn.Release()
	return ls.engine.TallyOf(txn.Governance(), id)
}

// NextProposalId returns the ID the next proposal will be assigned
func (ls *LedgerState) NextProposalId() (governance.ProposalId, error) {
	txn := ls.db.Transaction(false)
	defer txn.Release()
	return ls.engine.NextProposalId(txn.Governance())
}

// Proposals lists proposals from the metadata index
func (ls *LedgerState) Proposals(
	filter models.ProposalFilter,
) ([]models.Proposal, error) {
	return ls.db.GetProposals(filter, nil)
}

// Votes lists the indexed votes on a proposal
func (ls *LedgerState) Votes(id governance.ProposalId) ([]models.Vote, error) {
	return ls.db.GetVotes(uint32(id), nil)
}

// VotesByVoter lists the indexed votes cast by an account
func (ls *LedgerState) VotesByVoter(
	voter governance.AccountId,
) ([]models.Vote, error) {
	return ls.db.GetVotesByVoter(voter.Bytes(), nil)
}
