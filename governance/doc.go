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

// Package governance implements a deterministic proposal and voting state
// machine.
//
// Any signed account may create a proposal with a short description. Each
// proposal has a voting window of DefaultVotingPeriod blocks, during which
// every account may vote for or against it exactly once. After the window
// ends, anyone may close the proposal, and the per-block sweep closes
// expired proposals automatically, up to MaxProposalsPerBlock per block.
//
// All state is held in a Store. The engine validates every call before it
// writes anything, so a rejected call has no effect on the store. Every
// replica running the same calls against the same state must reach the
// same result, which is why Store implementations iterate proposals in
// ascending ID order.
package governance
