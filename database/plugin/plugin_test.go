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

package plugin_test

import (
	"errors"
	"testing"

	"github.com/blinklabs-io/ballot/database/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorPlugin(t *testing.T) {
	testErr := errors.New("boom")
	p := plugin.NewErrorPlugin(testErr)
	require.ErrorIs(t, p.Start(), testErr)
	require.NoError(t, p.Stop())
}

func TestStartPlugin(t *testing.T) {
	name := registerTestPlugin(t, &testOptions{})
	p, err := plugin.StartPlugin(plugin.PluginTypeBlob, name)
	require.NoError(t, err)
	mp, ok := p.(*mockPlugin)
	require.True(t, ok)
	assert.True(t, mp.started)

	_, err = plugin.StartPlugin(plugin.PluginTypeBlob, "nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	failName := "failing-" + t.Name()
	startErr := errors.New("cannot start")
	plugin.Register(plugin.PluginEntry{
		Type: plugin.PluginTypeMetadata,
		Name: failName,
		NewFromOptionsFunc: func() plugin.Plugin {
			return plugin.NewErrorPlugin(startErr)
		},
	})
	_, err = plugin.StartPlugin(plugin.PluginTypeMetadata, failName)
	require.ErrorIs(t, err, startErr)
}

func TestSetPluginOption(t *testing.T) {
	opts := &testOptions{}
	name := registerTestPlugin(t, opts)

	require.NoError(
		t,
		plugin.SetPluginOption(plugin.PluginTypeBlob, name, "data-dir", ""),
	)
	assert.Empty(t, opts.dataDir)
	require.NoError(
		t,
		plugin.SetPluginOption(plugin.PluginTypeBlob, name, "data-dir", t.TempDir()),
	)
	assert.NotEmpty(t, opts.dataDir)

	// Wrong value type
	require.Error(
		t,
		plugin.SetPluginOption(plugin.PluginTypeBlob, name, "data-dir", 123),
	)

	// Uint accepts uint64 and non-negative int
	require.NoError(
		t,
		plugin.SetPluginOption(plugin.PluginTypeBlob, name, "cache-size", uint64(100000000)),
	)
	assert.Equal(t, uint64(100000000), opts.cacheSize)
	require.NoError(
		t,
		plugin.SetPluginOption(plugin.PluginTypeBlob, name, "cache-size", 5),
	)
	assert.Equal(t, uint64(5), opts.cacheSize)
	require.Error(
		t,
		plugin.SetPluginOption(plugin.PluginTypeBlob, name, "cache-size", -1),
	)

	require.NoError(
		t,
		plugin.SetPluginOption(plugin.PluginTypeBlob, name, "gc", false),
	)
	assert.False(t, opts.gc)
	require.NoError(
		t,
		plugin.SetPluginOption(plugin.PluginTypeBlob, name, "workers", 3),
	)
	assert.Equal(t, 3, opts.workers)

	// Unknown option is a no-op
	require.NoError(
		t,
		plugin.SetPluginOption(plugin.PluginTypeBlob, name, "does-not-exist", "x"),
	)

	// Unknown plugin
	require.Error(
		t,
		plugin.SetPluginOption(plugin.PluginTypeMetadata, "nonexistent", "data-dir", "x"),
	)
}
