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

import "fmt"

const (
	DefaultMaxDescriptionLength = DescriptionBound
	DefaultVotingPeriod         = 100
	DefaultMaxProposalsPerBlock = 10
)

// Params holds the per-deployment constants for the governance engine
type Params struct {
	// MaxDescriptionLength is the maximum accepted description length in
	// bytes. It must not exceed DescriptionBound.
	MaxDescriptionLength uint32 `yaml:"maxDescriptionLength" split_words:"true"`
	// DefaultVotingPeriod is the length of the voting window in blocks
	DefaultVotingPeriod BlockNumber `yaml:"defaultVotingPeriod"  split_words:"true"`
	// MaxProposalsPerBlock caps the number of auto-closures per block.
	// A value of 0 disables the sweep.
	MaxProposalsPerBlock uint32 `yaml:"maxProposalsPerBlock" split_words:"true"`
}

// DefaultParams returns the default governance parameters
func DefaultParams() Params {
	return Params{
		MaxDescriptionLength: DefaultMaxDescriptionLength,
		DefaultVotingPeriod:  DefaultVotingPeriod,
		MaxProposalsPerBlock: DefaultMaxProposalsPerBlock,
	}
}

// Validate checks the parameters for consistency. A configured maximum
// description length above the storage bound is rejected up front, so a
// description that passes the configured check always fits in storage.
func (p Params) Validate() error {
	if p.MaxDescriptionLength > DescriptionBound {
		return fmt.Errorf(
			"%w: max description length %d exceeds storage bound %d",
			ErrInvalidParams,
			p.MaxDescriptionLength,
			DescriptionBound,
		)
	}
	return nil
}

// checkDescription applies the configured maximum first and the storage
// bound second. Both failures are reported as ErrDescriptionTooLong.
func (p Params) checkDescription(description []byte) error {
	if len(description) > int(p.MaxDescriptionLength) {
		return ErrDescriptionTooLong
	}
	if len(description) > DescriptionBound {
		return ErrDescriptionTooLong
	}
	return nil
}
