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

package sqlite

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/blinklabs-io/ballot/database/models"
	"github.com/blinklabs-io/ballot/database/plugin"
	"github.com/blinklabs-io/ballot/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	m, err := NewWithOptions(
		WithDataDir("/tmp/test"),
		WithLogger(logger),
		WithPromRegistry(reg),
		WithMaxConnections(4),
	)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/test", m.dataDir)
	assert.Same(t, logger, m.logger)
	assert.Same(t, reg, m.promRegistry)
	assert.Equal(t, 4, m.maxConnections)

	_, err = NewWithOptions(WithMaxConnections(-1))
	require.Error(t, err)
}

func TestInMemoryStoresAreIsolated(t *testing.T) {
	a, err := New("", nil, nil)
	require.NoError(t, err)
	require.NoError(t, a.Start())
	defer a.Close()
	b, err := New("", nil, nil)
	require.NoError(t, err)
	require.NoError(t, b.Start())
	defer b.Close()

	require.NoError(t, a.SetProposal(&models.Proposal{
		ProposalId: 0,
		Proposer:   make([]byte, 32),
		EndBlock:   types.Uint64(100),
	}, nil))
	p, err := b.GetProposal(0, nil)
	require.NoError(t, err)
	assert.Nil(t, p)
	p, err = a.GetProposal(0, nil)
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestOnDiskPersistence(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "nested")
	m, err := New(dataDir, nil, prometheus.NewRegistry())
	require.NoError(t, err)
	require.NoError(t, m.Start())
	require.NoError(t, m.SetTip(42, nil))
	require.NoError(t, m.SetCommitTimestamp(1000, nil))
	require.NoError(t, m.Close())

	_, err = os.Stat(filepath.Join(dataDir, "metadata.sqlite"))
	require.NoError(t, err)

	m, err = New(dataDir, nil, nil)
	require.NoError(t, err)
	require.NoError(t, m.Start())
	defer m.Close()
	tip, err := m.GetTip(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), tip)
	ts, err := m.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(1000), ts)
}

func TestCloseIsIdempotent(t *testing.T) {
	m, err := New("", nil, nil)
	require.NoError(t, err)
	require.NoError(t, m.Start())
	require.NoError(t, m.Close())
	require.NoError(t, m.Stop())
}

func TestRegisteredPlugin(t *testing.T) {
	require.NoError(
		t,
		plugin.SetPluginOption(plugin.PluginTypeMetadata, "sqlite", "data-dir", ""),
	)
	defer func() {
		_ = plugin.SetPluginOption(
			plugin.PluginTypeMetadata,
			"sqlite",
			"data-dir",
			DefaultDataDir,
		)
	}()
	p := plugin.GetPlugin(plugin.PluginTypeMetadata, "sqlite")
	require.NotNil(t, p)
	m, ok := p.(*MetadataStoreSqlite)
	require.True(t, ok)
	assert.Empty(t, m.dataDir)
}
