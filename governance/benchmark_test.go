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

package governance_test

import (
	"bytes"
	"testing"

	"github.com/blinklabs-io/ballot/governance"
)

func newBenchEngine(b *testing.B, params governance.Params) *governance.Engine {
	b.Helper()
	engine, err := governance.NewEngine(governance.EngineConfig{
		Params: params,
	})
	if err != nil {
		b.Fatal(err)
	}
	return engine
}

func BenchmarkPropose(b *testing.B) {
	engine := newBenchEngine(b, governance.DefaultParams())
	env := governance.Env{Store: governance.NewMemoryStore(), Block: 1}
	description := bytes.Repeat([]byte("d"), governance.DescriptionBound)
	for b.Loop() {
		if _, err := engine.Propose(env, signed(1), description); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkVote(b *testing.B) {
	engine := newBenchEngine(b, governance.DefaultParams())
	env := governance.Env{Store: governance.NewMemoryStore(), Block: 1}
	id, err := engine.Propose(env, signed(1), []byte("bench"))
	if err != nil {
		b.Fatal(err)
	}
	var voter governance.AccountId
	var i uint64
	for b.Loop() {
		i++
		for j := range 8 {
			voter[j] = byte(i >> (8 * j))
		}
		if err := engine.Vote(env, governance.Signed(voter), id, i%2 == 0); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkOnInitialize(b *testing.B) {
	params := governance.DefaultParams()
	params.DefaultVotingPeriod = 0
	engine := newBenchEngine(b, params)
	store := governance.NewMemoryStore()
	var block governance.BlockNumber
	for b.Loop() {
		b.StopTimer()
		env := governance.Env{Store: store, Block: block}
		for range params.MaxProposalsPerBlock {
			if _, err := engine.Propose(env, signed(1), []byte("bench")); err != nil {
				b.Fatal(err)
			}
		}
		block++
		env.Block = block
		b.StartTimer()
		if _, err := engine.OnInitialize(env); err != nil {
			b.Fatal(err)
		}
	}
}
