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

package aws

import (
	"testing"

	"github.com/blinklabs-io/ballot/database/plugin"
	"github.com/blinklabs-io/ballot/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromCmdlineOptions(t *testing.T) {
	require.NoError(t, plugin.SetPluginOption(plugin.PluginTypeBlob, "s3", "bucket", "test-bucket"))
	require.NoError(t, plugin.SetPluginOption(plugin.PluginTypeBlob, "s3", "region", "us-east-1"))
	require.NoError(t, plugin.SetPluginOption(plugin.PluginTypeBlob, "s3", "prefix", "test-prefix"))
	t.Cleanup(func() {
		_ = plugin.SetPluginOption(plugin.PluginTypeBlob, "s3", "bucket", "")
		_ = plugin.SetPluginOption(plugin.PluginTypeBlob, "s3", "region", "")
		_ = plugin.SetPluginOption(plugin.PluginTypeBlob, "s3", "prefix", "")
	})

	p := NewFromCmdlineOptions()
	store, ok := p.(*BlobStoreS3)
	require.True(t, ok)
	assert.Equal(t, "test-bucket", store.bucket)
	assert.Equal(t, "us-east-1", store.region)
	assert.Equal(t, "test-prefix/", store.prefix)
}

func TestNewFromDataDir(t *testing.T) {
	store, err := New("s3://my-bucket/some/prefix/", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "my-bucket", store.Bucket())
	assert.Equal(t, "some/prefix/", store.prefix)

	store, err = New("s3://bucket-only", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, store.prefix)

	_, err = New("gcs://wrong", nil, nil)
	require.Error(t, err)
	_, err = New("s3:///prefix", nil, nil)
	require.Error(t, err)
}

func TestStartRequiresBucket(t *testing.T) {
	store, err := NewWithOptions()
	require.NoError(t, err)
	require.Error(t, store.Start())
	// Unstarted stores refuse operations
	txn := store.NewTransaction(false)
	_, err = store.Get(txn, []byte("k"))
	require.ErrorIs(t, err, types.ErrBlobStoreUnavailable)
}
