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
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/blinklabs-io/ballot/database/plugin/blob"
	"github.com/blinklabs-io/ballot/database/types"
	"github.com/blinklabs-io/ballot/governance"
)

const (
	voteFor     byte = 0x01
	voteAgainst byte = 0x00
)

// governanceStore implements governance.Store over a blob transaction
type governanceStore struct {
	blob blob.BlobStore
	txn  types.Txn
}

func newGovernanceStore(bs blob.BlobStore, txn types.Txn) *governanceStore {
	return &governanceStore{blob: bs, txn: txn}
}

// get returns nil without error for a missing key
func (s *governanceStore) get(key []byte) ([]byte, error) {
	if s.blob == nil || s.txn == nil {
		return nil, types.ErrBlobStoreUnavailable
	}
	val, err := s.blob.Get(s.txn, key)
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return val, nil
}

func (s *governanceStore) set(key []byte, val []byte) error {
	if s.blob == nil || s.txn == nil {
		return types.ErrBlobStoreUnavailable
	}
	return s.blob.Set(s.txn, key, val)
}

func (s *governanceStore) Proposal(
	id governance.ProposalId,
) (*governance.Proposal, error) {
	val, err := s.get(types.ProposalKey(uint32(id)))
	if err != nil || val == nil {
		return nil, err
	}
	var ret governance.Proposal
	if err := decodeRecord(val, &ret); err != nil {
		return nil, fmt.Errorf("decode proposal %d: %w", id, err)
	}
	return &ret, nil
}

func (s *governanceStore) SetProposal(
	id governance.ProposalId,
	p *governance.Proposal,
) error {
	val, err := encodeRecord(p)
	if err != nil {
		return fmt.Errorf("encode proposal %d: %w", id, err)
	}
	return s.set(types.ProposalKey(uint32(id)), val)
}

// IterateProposals walks the proposal key range. Keys hold big-endian IDs,
// so key order is ascending ID order.
func (s *governanceStore) IterateProposals(
	fn func(governance.ProposalId, *governance.Proposal) bool,
) error {
	if s.blob == nil || s.txn == nil {
		return types.ErrBlobStoreUnavailable
	}
	prefix := types.ProposalKeyPrefixBytes()
	iter := s.blob.NewIterator(
		s.txn,
		types.BlobIteratorOptions{Prefix: prefix},
	)
	defer iter.Close()
	for iter.Rewind(); iter.ValidForPrefix(prefix); iter.Next() {
		item := iter.Item()
		id, err := types.ProposalIdFromKey(item.Key())
		if err != nil {
			return fmt.Errorf("proposal key %x: %w", item.Key(), err)
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("read proposal %d: %w", id, err)
		}
		var p governance.Proposal
		if err := decodeRecord(val, &p); err != nil {
			return fmt.Errorf("decode proposal %d: %w", id, err)
		}
		if !fn(governance.ProposalId(id), &p) {
			break
		}
	}
	return iter.Err()
}

func (s *governanceStore) HasVote(
	id governance.ProposalId,
	voter governance.AccountId,
) (bool, error) {
	vote, err := s.Vote(id, voter)
	if err != nil {
		return false, err
	}
	return vote != nil, nil
}

func (s *governanceStore) Vote(
	id governance.ProposalId,
	voter governance.AccountId,
) (*bool, error) {
	val, err := s.get(types.VoteKey(uint32(id), voter.Bytes()))
	if err != nil || val == nil {
		return nil, err
	}
	if len(val) != 1 || val[0] > voteFor {
		return nil, fmt.Errorf("invalid vote record %x on proposal %d", val, id)
	}
	ret := val[0] == voteFor
	return &ret, nil
}

func (s *governanceStore) SetVote(
	id governance.ProposalId,
	voter governance.AccountId,
	choice bool,
) error {
	val := voteAgainst
	if choice {
		val = voteFor
	}
	return s.set(types.VoteKey(uint32(id), voter.Bytes()), []byte{val})
}

func (s *governanceStore) InitTally(id governance.ProposalId) error {
	existing, err := s.Tally(id)
	if err != nil {
		return err
	}
	if existing != nil {
		return governance.ErrTallyExists
	}
	return s.setTally(id, &governance.Tally{})
}

func (s *governanceStore) IncrementTally(
	id governance.ProposalId,
	choice bool,
) error {
	tally, err := s.Tally(id)
	if err != nil {
		return err
	}
	if tally == nil {
		return governance.ErrTallyNotFound
	}
	tally.Add(choice)
	return s.setTally(id, tally)
}

func (s *governanceStore) Tally(
	id governance.ProposalId,
) (*governance.Tally, error) {
	val, err := s.get(types.TallyKey(uint32(id)))
	if err != nil || val == nil {
		return nil, err
	}
	var ret governance.Tally
	if err := decodeRecord(val, &ret); err != nil {
		return nil, fmt.Errorf("decode tally %d: %w", id, err)
	}
	return &ret, nil
}

func (s *governanceStore) setTally(
	id governance.ProposalId,
	tally *governance.Tally,
) error {
	val, err := encodeRecord(tally)
	if err != nil {
		return fmt.Errorf("encode tally %d: %w", id, err)
	}
	return s.set(types.TallyKey(uint32(id)), val)
}

func (s *governanceStore) NextProposalId() (governance.ProposalId, error) {
	val, err := s.get(types.NextProposalIdKey())
	if err != nil || val == nil {
		return 0, err
	}
	if len(val) != 4 {
		return 0, fmt.Errorf("invalid next proposal id record %x", val)
	}
	return governance.ProposalId(binary.BigEndian.Uint32(val)), nil
}

func (s *governanceStore) SetNextProposalId(id governance.ProposalId) error {
	val := make([]byte, 4)
	binary.BigEndian.PutUint32(val, uint32(id))
	return s.set(types.NextProposalIdKey(), val)
}
