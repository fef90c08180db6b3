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

import (
	"bytes"
	"slices"
)

type voteKey struct {
	proposalId ProposalId
	voter      AccountId
}

// MemoryStore is an in-memory Store. It is not safe for concurrent use.
type MemoryStore struct {
	proposals      map[ProposalId]Proposal
	votes          map[voteKey]bool
	tallies        map[ProposalId]Tally
	nextProposalId ProposalId
}

// NewMemoryStore returns an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		proposals: make(map[ProposalId]Proposal),
		votes:     make(map[voteKey]bool),
		tallies:   make(map[ProposalId]Tally),
	}
}

func (m *MemoryStore) Proposal(id ProposalId) (*Proposal, error) {
	p, ok := m.proposals[id]
	if !ok {
		return nil, nil
	}
	p.Description = bytes.Clone(p.Description)
	return &p, nil
}

func (m *MemoryStore) SetProposal(id ProposalId, p *Proposal) error {
	tmp := *p
	tmp.Description = bytes.Clone(p.Description)
	m.proposals[id] = tmp
	return nil
}

func (m *MemoryStore) IterateProposals(
	fn func(ProposalId, *Proposal) bool,
) error {
	ids := make([]ProposalId, 0, len(m.proposals))
	for id := range m.proposals {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		p, _ := m.Proposal(id)
		if !fn(id, p) {
			break
		}
	}
	return nil
}

func (m *MemoryStore) HasVote(id ProposalId, voter AccountId) (bool, error) {
	_, ok := m.votes[voteKey{proposalId: id, voter: voter}]
	return ok, nil
}

func (m *MemoryStore) Vote(id ProposalId, voter AccountId) (*bool, error) {
	v, ok := m.votes[voteKey{proposalId: id, voter: voter}]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (m *MemoryStore) SetVote(
	id ProposalId,
	voter AccountId,
	choice bool,
) error {
	m.votes[voteKey{proposalId: id, voter: voter}] = choice
	return nil
}

// VoteCount returns the number of distinct voters recorded for a proposal
func (m *MemoryStore) VoteCount(id ProposalId) int {
	var ret int
	for k := range m.votes {
		if k.proposalId == id {
			ret++
		}
	}
	return ret
}

func (m *MemoryStore) InitTally(id ProposalId) error {
	if _, ok := m.tallies[id]; ok {
		return ErrTallyExists
	}
	m.tallies[id] = Tally{}
	return nil
}

func (m *MemoryStore) IncrementTally(id ProposalId, choice bool) error {
	t, ok := m.tallies[id]
	if !ok {
		return ErrTallyNotFound
	}
	t.Add(choice)
	m.tallies[id] = t
	return nil
}

func (m *MemoryStore) Tally(id ProposalId) (*Tally, error) {
	t, ok := m.tallies[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m *MemoryStore) NextProposalId() (ProposalId, error) {
	return m.nextProposalId, nil
}

func (m *MemoryStore) SetNextProposalId(id ProposalId) error {
	m.nextProposalId = id
	return nil
}
