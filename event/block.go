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

package event

// BlockAppliedEventType is the event type for blocks committed by the ledger
const BlockAppliedEventType = EventType("ledger.block_applied")

// BlockAppliedEvent is published after a block has been committed. The
// governance notifications produced by the block are published before it.
type BlockAppliedEvent struct {
	BlockNumber   uint64
	Calls         int
	FailedCalls   int
	SweepClosures int
	// Consumed weight of the sweep and all calls
	RefTime   uint64
	ProofSize uint64
}
