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

package ballot

import (
	"testing"
	"time"

	"github.com/blinklabs-io/ballot/governance"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	assert.NotNil(t, cfg.logger)
	assert.Equal(t, governance.DefaultParams(), cfg.governance)
	assert.Equal(t, DefaultMaxPendingCalls, cfg.maxPendingCalls)
	assert.Equal(t, DefaultMaxBlockCalls, cfg.maxBlockCalls)
	assert.Empty(t, cfg.dataDir)
	assert.Zero(t, cfg.blockInterval)
	assert.False(t, cfg.tracing)
}

func TestNewConfigOptions(t *testing.T) {
	reg := prometheus.NewRegistry()
	params := governance.Params{
		MaxDescriptionLength: 32,
		DefaultVotingPeriod:  5,
		MaxProposalsPerBlock: 2,
	}
	genesis := &governance.GenesisConfig{}
	cfg := NewConfig(
		WithDatabasePath("/tmp/ballot"),
		WithBlobPlugin("gcs"),
		WithMetadataPlugin("postgres"),
		WithPrometheusRegistry(reg),
		WithGovernanceParams(params),
		WithWeights(governance.ZeroWeights{}),
		WithGenesisConfig(genesis),
		WithBlockInterval(2*time.Second),
		WithMaxPendingCalls(10),
		WithMaxBlockCalls(3),
		WithTracing(true),
		WithTracingStdout(true),
		WithShutdownTimeout(5*time.Second),
	)
	assert.Equal(t, "/tmp/ballot", cfg.dataDir)
	assert.Equal(t, "gcs", cfg.blobPlugin)
	assert.Equal(t, "postgres", cfg.metadataPlugin)
	assert.Same(t, reg, cfg.promRegistry)
	assert.Equal(t, params, cfg.governance)
	assert.Equal(t, governance.ZeroWeights{}, cfg.weights)
	assert.Same(t, genesis, cfg.genesisConfig)
	assert.Equal(t, 2*time.Second, cfg.blockInterval)
	assert.Equal(t, 10, cfg.maxPendingCalls)
	assert.Equal(t, 3, cfg.maxBlockCalls)
	assert.True(t, cfg.tracing)
	assert.True(t, cfg.tracingStdout)
	assert.Equal(t, 5*time.Second, cfg.shutdownTimeout)
}

func TestConfigValidate(t *testing.T) {
	testCases := []struct {
		name    string
		opts    []ConfigOptionFunc
		wantErr bool
	}{
		{
			name: "defaults",
		},
		{
			name: "invalid governance params",
			opts: []ConfigOptionFunc{
				WithGovernanceParams(governance.Params{
					MaxDescriptionLength: governance.DescriptionBound + 1,
					DefaultVotingPeriod:  10,
				}),
			},
			wantErr: true,
		},
		{
			name:    "negative block interval",
			opts:    []ConfigOptionFunc{WithBlockInterval(-time.Second)},
			wantErr: true,
		},
		{
			name:    "zero pending calls",
			opts:    []ConfigOptionFunc{WithMaxPendingCalls(0)},
			wantErr: true,
		},
		{
			name:    "negative block calls",
			opts:    []ConfigOptionFunc{WithMaxBlockCalls(-1)},
			wantErr: true,
		},
		{
			name:    "stdout tracing without tracing",
			opts:    []ConfigOptionFunc{WithTracingStdout(true)},
			wantErr: true,
		},
		{
			name: "stdout tracing",
			opts: []ConfigOptionFunc{
				WithTracing(true),
				WithTracingStdout(true),
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			n, err := New(NewConfig(tc.opts...))
			if tc.wantErr {
				require.Error(t, err)
				assert.Nil(t, n)
				return
			}
			require.NoError(t, err)
			require.NoError(t, n.Stop())
		})
	}
}
