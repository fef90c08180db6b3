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

package types_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/blinklabs-io/ballot/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUint64ScanValue(t *testing.T) {
	for _, v := range []uint64{0, 123, math.MaxUint64} {
		orig := types.Uint64(v)
		out, err := orig.Value()
		require.NoError(t, err)
		var scanned types.Uint64
		require.NoError(t, scanned.Scan(out))
		assert.Equal(t, orig, scanned)
		// Some drivers hand back []byte for text columns
		var fromBytes types.Uint64
		require.NoError(t, fromBytes.Scan([]byte(out.(string))))
		assert.Equal(t, orig, fromBytes)
	}
	var bad types.Uint64
	require.Error(t, bad.Scan(42))
	require.Error(t, bad.Scan("-1"))
}

func TestProposalKeyOrdering(t *testing.T) {
	ids := []uint32{0, 1, 255, 256, 65535, 65536, math.MaxUint32}
	for i := 1; i < len(ids); i++ {
		assert.Negative(
			t,
			bytes.Compare(types.ProposalKey(ids[i-1]), types.ProposalKey(ids[i])),
			"key for %d should sort before key for %d",
			ids[i-1],
			ids[i],
		)
	}
	for _, id := range ids {
		key := types.ProposalKey(id)
		assert.True(t, bytes.HasPrefix(key, types.ProposalKeyPrefixBytes()))
		got, err := types.ProposalIdFromKey(key)
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}
	_, err := types.ProposalIdFromKey(types.TallyKey(1))
	require.ErrorIs(t, err, types.ErrInvalidKey)
}

func TestVoteKey(t *testing.T) {
	voter := bytes.Repeat([]byte{0xab}, 32)
	key := types.VoteKey(7, voter)
	assert.True(t, bytes.HasPrefix(key, types.VoteKeyProposalPrefix(7)))
	assert.False(t, bytes.HasPrefix(key, types.VoteKeyProposalPrefix(8)))
	id, gotVoter, err := types.VoterFromKey(key)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), id)
	assert.Equal(t, voter, gotVoter)
	_, _, err = types.VoterFromKey(key[:10])
	require.ErrorIs(t, err, types.ErrInvalidKey)
}

func TestKeyPrefixesDistinct(t *testing.T) {
	keys := [][]byte{
		types.ProposalKey(1),
		types.VoteKey(1, make([]byte, 32)),
		types.TallyKey(1),
		types.NextProposalIdKey(),
		types.TipKey(),
	}
	seen := map[byte]bool{}
	for _, k := range keys {
		assert.False(t, seen[k[0]])
		seen[k[0]] = true
	}
}
