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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blinklabs-io/ballot/governance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenesisConfigWorks(t *testing.T) {
	h := newTestHarness(t, governance.DefaultParams())
	h.block = governance.GenesisBlock
	cfg := &governance.GenesisConfig{
		Proposals: []governance.GenesisProposal{
			{Proposer: acct(1), Description: []byte("Genesis proposal 1")},
			{Proposer: acct(2), Description: []byte("Genesis proposal 2")},
		},
	}
	require.NoError(t, h.engine.BuildGenesis(h.env(), cfg))

	for i, gp := range cfg.Proposals {
		proposal, err := h.store.Proposal(governance.ProposalId(i))
		require.NoError(t, err)
		require.NotNil(t, proposal)
		assert.Equal(t, gp.Proposer, proposal.Proposer)
		assert.Equal(t, gp.Description, proposal.Description)
		assert.Equal(t, governance.BlockNumber(0), proposal.StartBlock)
		assert.Equal(t, governance.BlockNumber(100), proposal.EndBlock)
		tally, err := h.store.Tally(governance.ProposalId(i))
		require.NoError(t, err)
		assert.NotNil(t, tally)
	}
	next, err := h.store.NextProposalId()
	require.NoError(t, err)
	assert.Equal(t, governance.ProposalId(2), next)
	assert.Equal(t, 2, h.events.Len())
	for _, evt := range h.events.Events() {
		assert.Equal(t, governance.ProposalCreatedEventType, evt.Type)
	}
}

func TestGenesisDescriptionTooLong(t *testing.T) {
	h := newTestHarness(t, governance.DefaultParams())
	h.block = governance.GenesisBlock
	cfg := &governance.GenesisConfig{
		Proposals: []governance.GenesisProposal{
			{Proposer: acct(1), Description: []byte("fine")},
			{Proposer: acct(2), Description: bytes.Repeat([]byte("x"), 257)},
		},
	}
	err := h.engine.BuildGenesis(h.env(), cfg)
	require.ErrorIs(t, err, governance.ErrGenesisDescriptionTooLong)

	// Nothing from the valid entry may have been written
	proposal, err := h.store.Proposal(0)
	require.NoError(t, err)
	assert.Nil(t, proposal)
	next, err := h.store.NextProposalId()
	require.NoError(t, err)
	assert.Equal(t, governance.ProposalId(0), next)
	assert.Equal(t, 0, h.events.Len())
}

func TestGenesisEmpty(t *testing.T) {
	h := newTestHarness(t, governance.DefaultParams())
	require.NoError(t, h.engine.BuildGenesis(h.env(), nil))
	require.NoError(
		t,
		h.engine.BuildGenesis(h.env(), &governance.GenesisConfig{}),
	)
	assert.Equal(t, 0, h.events.Len())
}

func TestParseGenesisConfig(t *testing.T) {
	proposer := strings.Repeat("ab", governance.AccountIdSize)
	data := []byte(`
proposals:
  - proposer: ` + proposer + `
    description: Raise the treasury cap
  - proposer: ` + proposer + `
    description: Lower the fee
`)
	cfg, err := governance.ParseGenesisConfig(data)
	require.NoError(t, err)
	require.Len(t, cfg.Proposals, 2)
	assert.Equal(t, proposer, cfg.Proposals[0].Proposer.String())
	assert.Equal(t, []byte("Raise the treasury cap"), cfg.Proposals[0].Description)
	assert.Equal(t, []byte("Lower the fee"), cfg.Proposals[1].Description)
}

func TestParseGenesisConfigBadProposer(t *testing.T) {
	_, err := governance.ParseGenesisConfig([]byte(`
proposals:
  - proposer: abcd
    description: short id
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "genesis proposal 0")
}

func TestLoadGenesisConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	proposer := strings.Repeat("01", governance.AccountIdSize)
	require.NoError(
		t,
		os.WriteFile(
			path,
			[]byte("proposals:\n  - proposer: "+proposer+"\n    description: hello\n"),
			0o600,
		),
	)
	cfg, err := governance.LoadGenesisConfig(path)
	require.NoError(t, err)
	require.Len(t, cfg.Proposals, 1)
	assert.Equal(t, []byte("hello"), cfg.Proposals[0].Description)

	_, err = governance.LoadGenesisConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
