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

import "math"

// Weight is the abstract execution cost charged to a block. RefTime is in
// picoseconds, ProofSize in bytes.
type Weight struct {
	RefTime   uint64
	ProofSize uint64
}

// Add returns the saturating sum of two weights
func (w Weight) Add(other Weight) Weight {
	return Weight{
		RefTime:   saturatingAddU64(w.RefTime, other.RefTime),
		ProofSize: saturatingAddU64(w.ProofSize, other.ProofSize),
	}
}

// IsZero returns true if both components are zero
func (w Weight) IsZero() bool {
	return w.RefTime == 0 && w.ProofSize == 0
}

// DbWeight is the cost of a single storage read and write
type DbWeight struct {
	Read  uint64
	Write uint64
}

// RocksDbWeight is the storage cost profile the benchmarks were taken with
var RocksDbWeight = DbWeight{
	Read:  25_000_000,
	Write: 100_000_000,
}

// Reads returns the weight of n reads
func (d DbWeight) Reads(n uint64) Weight {
	return Weight{RefTime: saturatingMulU64(d.Read, n)}
}

// Writes returns the weight of n writes
func (d DbWeight) Writes(n uint64) Weight {
	return Weight{RefTime: saturatingMulU64(d.Write, n)}
}

// WeightInfo provides the weight of each governance operation
type WeightInfo interface {
	Propose() Weight
	Vote() Weight
	CloseProposal() Weight
}

// BenchmarkedWeights carries the benchmarked execution costs for the
// governance operations on top of the configured storage costs
type BenchmarkedWeights struct {
	Db DbWeight
}

// Propose reads NextProposalId and the account, writes the proposal, the
// tally and the counter
func (b BenchmarkedWeights) Propose() Weight {
	return Weight{RefTime: 16_000_000, ProofSize: 3593}.
		Add(b.Db.Reads(2)).
		Add(b.Db.Writes(3))
}

// Vote reads the proposal, the account, the vote and the tally, and writes
// the vote and the tally
func (b BenchmarkedWeights) Vote() Weight {
	return Weight{RefTime: 19_000_000, ProofSize: 3777}.
		Add(b.Db.Reads(4)).
		Add(b.Db.Writes(2))
}

// CloseProposal reads the proposal, the account and the tally, and writes
// the proposal
func (b BenchmarkedWeights) CloseProposal() Weight {
	return Weight{RefTime: 13_000_000, ProofSize: 3777}.
		Add(b.Db.Reads(3)).
		Add(b.Db.Writes(1))
}

// DefaultWeights returns the benchmarked weights with RocksDB storage costs
func DefaultWeights() WeightInfo {
	return BenchmarkedWeights{Db: RocksDbWeight}
}

// ZeroWeights charges nothing. Useful for tests.
type ZeroWeights struct{}

func (ZeroWeights) Propose() Weight       { return Weight{} }
func (ZeroWeights) Vote() Weight          { return Weight{} }
func (ZeroWeights) CloseProposal() Weight { return Weight{} }

func saturatingAddU64(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

func saturatingMulU64(a, b uint64) uint64 {
	if a == 0 || b == 0 {
		return 0
	}
	if a > math.MaxUint64/b {
		return math.MaxUint64
	}
	return a * b
}
