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

import "errors"

// Errors returned to callers of the governance operations. None of these
// are fatal to the ledger.
var (
	// ErrDescriptionTooLong is returned when the proposal description exceeds
	// the configured maximum or the storage bound
	ErrDescriptionTooLong = errors.New("description too long")
	// ErrProposalNotFound is returned when the proposal does not exist
	ErrProposalNotFound = errors.New("proposal not found")
	// ErrVotingPeriodNotEnded is returned when closing a proposal whose
	// voting window is still open
	ErrVotingPeriodNotEnded = errors.New("voting period not ended")
	// ErrAlreadyVoted is returned when the caller already voted on the proposal
	ErrAlreadyVoted = errors.New("already voted")
	// ErrProposalClosed is returned when the proposal is already closed
	ErrProposalClosed = errors.New("proposal closed")
	// ErrVotingPeriodEnded is returned when voting after the end block
	ErrVotingPeriodEnded = errors.New("voting period ended")
	// ErrBadOrigin is returned when the call does not carry a signed origin
	ErrBadOrigin = errors.New("bad origin: signed origin required")
	// ErrProposalIdExhausted is returned when the proposal id space is used up
	ErrProposalIdExhausted = errors.New("proposal id space exhausted")
)

// Store and configuration errors
var (
	ErrTallyExists               = errors.New("tally already exists")
	ErrTallyNotFound             = errors.New("tally not found")
	ErrInvalidParams             = errors.New("invalid governance parameters")
	ErrGenesisDescriptionTooLong = errors.New(
		"description too long in genesis config",
	)
)

// IsCallError returns true if err is one of the recoverable errors returned
// by a governance operation
func IsCallError(err error) bool {
	for _, callErr := range callErrors {
		if errors.Is(err, callErr) {
			return true
		}
	}
	return false
}

var callErrors = []error{
	ErrDescriptionTooLong,
	ErrProposalNotFound,
	ErrVotingPeriodNotEnded,
	ErrAlreadyVoted,
	ErrProposalClosed,
	ErrVotingPeriodEnded,
	ErrBadOrigin,
	ErrProposalIdExhausted,
}

// errorKind returns a short label for a call error, used for metrics
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrDescriptionTooLong):
		return "description_too_long"
	case errors.Is(err, ErrProposalNotFound):
		return "proposal_not_found"
	case errors.Is(err, ErrVotingPeriodNotEnded):
		return "voting_period_not_ended"
	case errors.Is(err, ErrAlreadyVoted):
		return "already_voted"
	case errors.Is(err, ErrProposalClosed):
		return "proposal_closed"
	case errors.Is(err, ErrVotingPeriodEnded):
		return "voting_period_ended"
	case errors.Is(err, ErrBadOrigin):
		return "bad_origin"
	case errors.Is(err, ErrProposalIdExhausted):
		return "proposal_id_exhausted"
	default:
		return "other"
	}
}
