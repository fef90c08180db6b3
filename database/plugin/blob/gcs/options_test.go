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

package gcs

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := prometheus.NewRegistry()
	b, err := NewWithOptions(
		WithLogger(logger),
		WithPromRegistry(registry),
		WithBucket("test-bucket"),
		WithPrefix("state"),
		WithCredentialsFile("/tmp/creds.json"),
		WithTimeout(5*time.Second),
	)
	require.NoError(t, err)
	assert.Same(t, logger, b.logger)
	assert.Same(t, registry, b.promRegistry)
	assert.Equal(t, "test-bucket", b.bucketName)
	assert.Equal(t, "state/", b.prefix)
	assert.Equal(t, "/tmp/creds.json", b.credentialsFile)
	assert.Equal(t, 5*time.Second, b.timeout)
}

func TestNewFromDataDir(t *testing.T) {
	b, err := New("gcs://bucket/pfx", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "bucket", b.bucketName)
	assert.Equal(t, "pfx/", b.prefix)

	_, err = New("gcs://", nil, nil)
	require.Error(t, err)
	_, err = New("s3://bucket", nil, nil)
	require.Error(t, err)
}

func TestCredentialValidation(t *testing.T) {
	tempDir := t.TempDir()
	existing := filepath.Join(tempDir, "credentials.json")
	require.NoError(t, os.WriteFile(existing, []byte("{}"), 0o600))

	require.NoError(t, validateCredentials(""))
	require.NoError(t, validateCredentials(existing))
	err := validateCredentials(filepath.Join(tempDir, "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GCS credentials file does not exist")
}

func TestStartValidation(t *testing.T) {
	b, err := NewWithOptions()
	require.NoError(t, err)
	require.Error(t, b.Start())

	b, err = NewWithOptions(
		WithBucket("bucket"),
		WithCredentialsFile(filepath.Join(t.TempDir(), "missing.json")),
	)
	require.NoError(t, err)
	require.Error(t, b.Start())
	require.NoError(t, b.Close())
}
