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
	"encoding/hex"
	"fmt"
	"math"
)

// DescriptionBound is the fixed upper bound on the stored description size
const DescriptionBound = 256

// AccountIdSize is the size of an account identity in bytes
const AccountIdSize = 32

// ProposalId uniquely identifies a proposal. IDs are assigned sequentially
// starting at 0 and are never reused.
type ProposalId uint32

// BlockNumber is a block height as supplied by the ledger clock
type BlockNumber uint64

// AccountId is the authenticated identity of a caller
type AccountId [AccountIdSize]byte

// NewAccountId builds an AccountId from a byte slice of the correct length
func NewAccountId(data []byte) (AccountId, error) {
	var ret AccountId
	if len(data) != AccountIdSize {
		return ret, fmt.Errorf(
			"invalid account id length: expected %d, got %d",
			AccountIdSize,
			len(data),
		)
	}
	copy(ret[:], data)
	return ret, nil
}

// ParseAccountId decodes a hex-encoded AccountId
func ParseAccountId(s string) (AccountId, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return AccountId{}, fmt.Errorf("decode account id: %w", err)
	}
	return NewAccountId(data)
}

func (a AccountId) Bytes() []byte {
	return a[:]
}

func (a AccountId) String() string {
	return hex.EncodeToString(a[:])
}

// Proposal is a single governance item open for voting during a fixed
// block window
type Proposal struct {
	_           struct{} `cbor:",toarray"`
	Proposer    AccountId
	Description []byte
	StartBlock  BlockNumber
	EndBlock    BlockNumber
	IsClosed    bool
}

// Expired returns true if the voting window is over at the given height
func (p *Proposal) Expired(height BlockNumber) bool {
	return height > p.EndBlock
}

// Tally is the running vote count for a proposal
type Tally struct {
	_            struct{} `cbor:",toarray"`
	ForVotes     uint32
	AgainstVotes uint32
}

// Total returns the number of votes recorded in the tally
func (t Tally) Total() uint64 {
	return uint64(t.ForVotes) + uint64(t.AgainstVotes)
}

// Add records a single vote in the tally using saturating arithmetic
func (t *Tally) Add(choice bool) {
	if choice {
		t.ForVotes = saturatingIncU32(t.ForVotes)
	} else {
		t.AgainstVotes = saturatingIncU32(t.AgainstVotes)
	}
}

func saturatingAddBlock(a, b BlockNumber) BlockNumber {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

func saturatingIncU32(v uint32) uint32 {
	if v == math.MaxUint32 {
		return v
	}
	return v + 1
}

func saturatingIncProposalId(id ProposalId) ProposalId {
	return ProposalId(saturatingIncU32(uint32(id)))
}
