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

package governance

// ProposalStore maps proposal IDs to proposal records. There is no delete.
type ProposalStore interface {
	// Proposal returns the proposal with the given ID, or nil if absent
	Proposal(ProposalId) (*Proposal, error)
	// SetProposal inserts or overwrites the proposal at the given ID
	SetProposal(ProposalId, *Proposal) error
	// IterateProposals calls fn for every proposal in ascending ID order
	// until fn returns false. Implementations must not use any other order,
	// since the sweep result depends on it.
	IterateProposals(fn func(ProposalId, *Proposal) bool) error
}

// VoteLedger records one vote per (proposal, voter). Callers check HasVote
// before SetVote; the ledger does not arbitrate.
type VoteLedger interface {
	HasVote(ProposalId, AccountId) (bool, error)
	// Vote returns the recorded choice, or nil if the account has not voted
	Vote(ProposalId, AccountId) (*bool, error)
	SetVote(ProposalId, AccountId, bool) error
}

// TallyAggregator maintains the incremental for/against counters
type TallyAggregator interface {
	// InitTally creates a zeroed tally. It returns ErrTallyExists if one is
	// already present.
	InitTally(ProposalId) error
	// IncrementTally adds one vote to the appropriate counter, saturating.
	// It returns ErrTallyNotFound if no tally exists.
	IncrementTally(ProposalId, bool) error
	// Tally returns the tally, or nil if absent
	Tally(ProposalId) (*Tally, error)
}

// Store is the complete governance state the engine operates on
type Store interface {
	ProposalStore
	VoteLedger
	TallyAggregator
	NextProposalId() (ProposalId, error)
	SetNextProposalId(ProposalId) error
}
