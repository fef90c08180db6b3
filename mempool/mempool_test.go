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

package mempool

import (
	"strings"
	"testing"
	"time"

	"github.com/blinklabs-io/ballot/event"
	"github.com/blinklabs-io/ballot/governance"
	"github.com/blinklabs-io/ballot/ledger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCall(b byte) ledger.Call {
	var account governance.AccountId
	account[0] = b
	return ledger.ProposeCall(governance.Signed(account), []byte{b})
}

func newTestMempool(t *testing.T, capacity int) (*Mempool, *event.EventBus, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	bus := event.NewEventBus(nil, nil)
	t.Cleanup(bus.Stop)
	m := NewMempool(MempoolConfig{
		PromRegistry: reg,
		EventBus:     bus,
		Capacity:     capacity,
	})
	return m, bus, reg
}

func TestMempool_AddAndDrainOrder(t *testing.T) {
	m, _, _ := newTestMempool(t, 10)
	for i := range 5 {
		id, err := m.AddCall(testCall(byte(i)))
		require.NoError(t, err)
		assert.Equal(t, uint64(i), id)
	}
	assert.Equal(t, 5, m.Len())

	calls := m.Drain(3)
	require.Len(t, calls, 3)
	for i, c := range calls {
		assert.Equal(t, []byte{byte(i)}, c.Description)
	}
	assert.Equal(t, 2, m.Len())

	calls = m.Drain(0)
	require.Len(t, calls, 2)
	assert.Equal(t, []byte{3}, calls[0].Description)
	assert.Equal(t, []byte{4}, calls[1].Description)
	assert.Nil(t, m.Drain(0))
}

func TestMempool_Capacity(t *testing.T) {
	m, _, _ := newTestMempool(t, 2)
	_, err := m.AddCall(testCall(1))
	require.NoError(t, err)
	_, err = m.AddCall(testCall(2))
	require.NoError(t, err)
	_, err = m.AddCall(testCall(3))
	require.ErrorIs(t, err, ErrMempoolFull)
	var fullErr *MempoolFullError
	require.ErrorAs(t, err, &fullErr)
	assert.Equal(t, 2, fullErr.CurrentSize)
	assert.Equal(t, 2, fullErr.Capacity)

	// Draining frees space
	m.Drain(1)
	_, err = m.AddCall(testCall(3))
	require.NoError(t, err)
}

func TestMempool_GetAndRemoveCall(t *testing.T) {
	m, _, _ := newTestMempool(t, 10)
	id0, err := m.AddCall(testCall(0))
	require.NoError(t, err)
	id1, err := m.AddCall(testCall(1))
	require.NoError(t, err)

	entry, ok := m.GetCall(id1)
	require.True(t, ok)
	assert.Equal(t, id1, entry.Id)
	assert.Equal(t, ledger.CallTypePropose, entry.Call.Type)
	assert.False(t, entry.Received.IsZero())

	assert.True(t, m.RemoveCall(id0))
	assert.False(t, m.RemoveCall(id0))
	_, ok = m.GetCall(id0)
	assert.False(t, ok)

	calls := m.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, id1, calls[0].Id)

	// IDs are not reused
	id2, err := m.AddCall(testCall(2))
	require.NoError(t, err)
	assert.Greater(t, id2, id1)
}

func TestMempool_Events(t *testing.T) {
	m, bus, _ := newTestMempool(t, 10)
	_, addCh := bus.Subscribe(AddCallEventType)
	_, removeCh := bus.Subscribe(RemoveCallEventType)

	id, err := m.AddCall(testCall(1))
	require.NoError(t, err)
	select {
	case evt := <-addCh:
		data, ok := evt.Data.(AddCallEvent)
		require.True(t, ok)
		assert.Equal(t, id, data.Id)
		assert.Equal(t, ledger.CallTypePropose, data.Type)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for add event")
	}

	m.Drain(0)
	select {
	case evt := <-removeCh:
		data, ok := evt.Data.(RemoveCallEvent)
		require.True(t, ok)
		assert.Equal(t, id, data.Id)
		assert.True(t, data.Included)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for remove event")
	}
}

func TestMempool_Metrics(t *testing.T) {
	m, _, reg := newTestMempool(t, 10)
	for i := range 3 {
		_, err := m.AddCall(testCall(byte(i)))
		require.NoError(t, err)
	}
	m.Drain(2)
	expected := `
# HELP ballot_mempool_calls current count of mempool calls
# TYPE ballot_mempool_calls gauge
ballot_mempool_calls 1
# HELP ballot_mempool_calls_processed_total total calls accepted into the mempool
# TYPE ballot_mempool_calls_processed_total counter
ballot_mempool_calls_processed_total 3
`
	require.NoError(
		t,
		testutil.GatherAndCompare(
			reg,
			strings.NewReader(expected),
			"ballot_mempool_calls",
			"ballot_mempool_calls_processed_total",
		),
	)
}

func TestMempool_NilEventBus(t *testing.T) {
	m := NewMempool(MempoolConfig{Capacity: 1})
	_, err := m.AddCall(testCall(1))
	require.NoError(t, err)
	assert.Len(t, m.Drain(0), 1)
}
