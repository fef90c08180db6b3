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
	"github.com/blinklabs-io/ballot/event"
)

const (
	ProposalCreatedEventType event.EventType = "governance.proposal_created"
	VotedEventType           event.EventType = "governance.voted"
	ProposalClosedEventType  event.EventType = "governance.proposal_closed"
)

// ProposalCreatedEvent is emitted when a proposal is created, including
// proposals seeded at genesis
type ProposalCreatedEvent struct {
	ProposalId  ProposalId
	Proposer    AccountId
	Description []byte
	EndBlock    BlockNumber
}

// VotedEvent is emitted when a vote is recorded
type VotedEvent struct {
	ProposalId ProposalId
	Voter      AccountId
	Vote       bool // true = for, false = against
}

// ProposalClosedEvent is emitted when a proposal is closed, either manually
// or by the per-block sweep
type ProposalClosedEvent struct {
	ProposalId   ProposalId
	ForVotes     uint32
	AgainstVotes uint32
}

// EventSink receives notifications from the engine. The engine never reads
// them back.
type EventSink interface {
	DepositEvent(event.Event)
}

// EventRecorder is an EventSink that keeps events in memory in the order
// they were deposited
type EventRecorder struct {
	events []event.Event
}

func (r *EventRecorder) DepositEvent(evt event.Event) {
	r.events = append(r.events, evt)
}

// Events returns the recorded events
func (r *EventRecorder) Events() []event.Event {
	return r.events
}

// Len returns the number of recorded events
func (r *EventRecorder) Len() int {
	return len(r.events)
}

// Truncate drops all events recorded after the first n
func (r *EventRecorder) Truncate(n int) {
	if n < len(r.events) {
		r.events = r.events[:n]
	}
}

// Reset drops all recorded events
func (r *EventRecorder) Reset() {
	r.events = nil
}
