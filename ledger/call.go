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
	"github.com/blinklabs-io/ballot/event"
	"github.com/blinklabs-io/ballot/governance"
)

type CallType int

const (
	CallTypePropose CallType = iota + 1
	CallTypeVote
	CallTypeClose
)

func (t CallType) String() string {
	switch t {
	case CallTypePropose:
		return "propose"
	case CallTypeVote:
		return "vote"
	case CallTypeClose:
		return "close"
	default:
		return "unknown"
	}
}

// Call is a single governance operation included in a block. The origin is
// supplied by whoever authenticated the caller.
type Call struct {
	Origin      governance.Origin
	Description []byte
	Type        CallType
	ProposalId  governance.ProposalId
	Vote        bool
}

// ProposeCall returns a call that creates a proposal
func ProposeCall(origin governance.Origin, description []byte) Call {
	return Call{
		Type:        CallTypePropose,
		Origin:      origin,
		Description: description,
	}
}

// VoteCall returns a call that votes on a proposal
func VoteCall(
	origin governance.Origin,
	proposalId governance.ProposalId,
	vote bool,
) Call {
	return Call{
		Type:       CallTypeVote,
		Origin:     origin,
		ProposalId: proposalId,
		Vote:       vote,
	}
}

// CloseCall returns a call that closes a proposal
func CloseCall(
	origin governance.Origin,
	proposalId governance.ProposalId,
) Call {
	return Call{
		Type:       CallTypeClose,
		Origin:     origin,
		ProposalId: proposalId,
	}
}

// CallResult is the outcome of one call. A failed call leaves no trace in
// governance state but is still charged its weight.
type CallResult struct {
	Err    error
	Call   Call
	Weight governance.Weight
	// ProposalId is the assigned ID for a successful propose call, and the
	// target ID otherwise
	ProposalId governance.ProposalId
}

func (r CallResult) Failed() bool {
	return r.Err != nil
}

// BlockResult describes a committed block
type BlockResult struct {
	Calls         []CallResult
	Events        []event.Event
	BlockNumber   governance.BlockNumber
	SweepClosures int
	Weight        governance.Weight
}

// FailedCalls returns the number of calls that returned an error
func (r *BlockResult) FailedCalls() int {
	ret := 0
	for _, c := range r.Calls {
		if c.Failed() {
			ret++
		}
	}
	return ret
}
