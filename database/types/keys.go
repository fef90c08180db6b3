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

package types

import (
	"encoding/binary"
	"errors"
	"slices"
)

// Governance state key prefixes. Numeric IDs are encoded big-endian so that
// byte order matches numeric order.
const (
	ProposalKeyPrefix       byte = 0x01
	VoteKeyPrefix           byte = 0x02
	TallyKeyPrefix          byte = 0x03
	NextProposalIdKeyPrefix byte = 0x04
	TipKeyPrefix            byte = 0x05
)

const (
	proposalIdSize = 4
	accountIdSize  = 32
)

var ErrInvalidKey = errors.New("invalid key")

func uint32ToBytes(v uint32) []byte {
	ret := make([]byte, proposalIdSize)
	binary.BigEndian.PutUint32(ret, v)
	return ret
}

// ProposalKey returns the key for a proposal record
func ProposalKey(proposalId uint32) []byte {
	return slices.Concat([]byte{ProposalKeyPrefix}, uint32ToBytes(proposalId))
}

// ProposalKeyPrefixBytes returns the prefix shared by all proposal keys
func ProposalKeyPrefixBytes() []byte {
	return []byte{ProposalKeyPrefix}
}

// ProposalIdFromKey extracts the proposal ID from a proposal key
func ProposalIdFromKey(key []byte) (uint32, error) {
	if len(key) != 1+proposalIdSize || key[0] != ProposalKeyPrefix {
		return 0, ErrInvalidKey
	}
	return binary.BigEndian.Uint32(key[1:]), nil
}

// VoteKey returns the key for the vote of an account on a proposal
func VoteKey(proposalId uint32, voter []byte) []byte {
	return slices.Concat(
		[]byte{VoteKeyPrefix},
		uint32ToBytes(proposalId),
		voter,
	)
}

// VoteKeyProposalPrefix returns the prefix shared by all votes on a proposal
func VoteKeyProposalPrefix(proposalId uint32) []byte {
	return slices.Concat([]byte{VoteKeyPrefix}, uint32ToBytes(proposalId))
}

// VoterFromKey extracts the proposal ID and voter from a vote key
func VoterFromKey(key []byte) (uint32, []byte, error) {
	if len(key) != 1+proposalIdSize+accountIdSize || key[0] != VoteKeyPrefix {
		return 0, nil, ErrInvalidKey
	}
	return binary.BigEndian.Uint32(key[1 : 1+proposalIdSize]),
		slices.Clone(key[1+proposalIdSize:]),
		nil
}

// TallyKey returns the key for a proposal tally
func TallyKey(proposalId uint32) []byte {
	return slices.Concat([]byte{TallyKeyPrefix}, uint32ToBytes(proposalId))
}

// NextProposalIdKey returns the key for the proposal ID counter
func NextProposalIdKey() []byte {
	return []byte{NextProposalIdKeyPrefix}
}

// TipKey returns the key for the ledger tip block height
func TipKey() []byte {
	return []byte{TipKeyPrefix}
}
