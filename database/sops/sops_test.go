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

package sops_test

import (
	"testing"

	"github.com/blinklabs-io/ballot/database/sops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnabled(t *testing.T) {
	t.Setenv(sops.EnvGcpKmsResourceId, "")
	t.Setenv(sops.EnvAwsKmsKeyArns, "")
	assert.False(t, sops.Enabled())
	t.Setenv(sops.EnvAwsKmsKeyArns, "arn:aws:kms:us-east-1:123456789012:key/test")
	assert.True(t, sops.Enabled())
}

func TestEncryptWithoutKeys(t *testing.T) {
	t.Setenv(sops.EnvGcpKmsResourceId, "")
	t.Setenv(sops.EnvAwsKmsKeyArns, "")
	_, err := sops.Encrypt([]byte{0x01, 0x02})
	require.ErrorIs(t, err, sops.ErrNoMasterKeys)
}

func TestIsEncrypted(t *testing.T) {
	assert.False(t, sops.IsEncrypted([]byte{0x01, 0x8f, 0x2a}))
	assert.False(t, sops.IsEncrypted([]byte(`{"data":"x"}`)))
	assert.True(
		t,
		sops.IsEncrypted([]byte(`{"data":"ENC[...]","sops":{"version":"3.11.0"}}`)),
	)
}
