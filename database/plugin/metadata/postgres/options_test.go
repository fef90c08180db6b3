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

package postgres

import (
	"io"
	"log/slog"
	"testing"

	"github.com/blinklabs-io/ballot/database/plugin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	m, err := NewWithOptions(
		WithHost("db.local"),
		WithPort(6543),
		WithUser("ballot"),
		WithPassword("secret"),
		WithDatabase("governance"),
		WithSSLMode("require"),
		WithTimeZone("Europe/Berlin"),
		WithLogger(logger),
		WithPromRegistry(reg),
	)
	require.NoError(t, err)
	assert.Equal(t, "db.local", m.host)
	assert.Equal(t, uint(6543), m.port)
	assert.Equal(t, "ballot", m.user)
	assert.Equal(t, "secret", m.password)
	assert.Equal(t, "governance", m.database)
	assert.Equal(t, "require", m.sslMode)
	assert.Equal(t, "Europe/Berlin", m.timeZone)
	assert.Same(t, logger, m.logger)
	assert.Same(t, reg, m.promRegistry)
}

func TestDefaults(t *testing.T) {
	m, err := NewWithOptions()
	require.NoError(t, err)
	assert.Equal(
		t,
		"host=localhost user=postgres password= dbname=ballot port=5432 sslmode=disable TimeZone=UTC",
		m.buildDSN(),
	)
	assert.Nil(t, m.DB())
}

func TestDSNOverride(t *testing.T) {
	m, err := NewWithOptions(
		WithHost("ignored"),
		WithDSN("  host=pg dbname=other  "),
	)
	require.NoError(t, err)
	assert.Equal(t, "host=pg dbname=other", m.buildDSN())
}

func TestRegisteredPlugin(t *testing.T) {
	p := plugin.GetPlugin(plugin.PluginTypeMetadata, "postgres")
	require.NotNil(t, p)
	m, ok := p.(*MetadataStorePostgres)
	require.True(t, ok)
	assert.Equal(t, "ballot", m.database)
	// Nothing to close before Start()
	require.NoError(t, m.Stop())
}
