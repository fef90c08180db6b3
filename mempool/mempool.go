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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/blinklabs-io/ballot/event"
	"github.com/blinklabs-io/ballot/ledger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	AddCallEventType    event.EventType = "mempool.add_call"
	RemoveCallEventType event.EventType = "mempool.remove_call"
)

var ErrMempoolFull = errors.New("mempool is full")

type AddCallEvent struct {
	Type ledger.CallType
	Id   uint64
}

type RemoveCallEvent struct {
	Id uint64
	// Included is true when the call was taken for a block
	Included bool
}

// MempoolCall is a call waiting to be included in a block
type MempoolCall struct {
	Received time.Time
	Call     ledger.Call
	Id       uint64
}

type MempoolConfig struct {
	PromRegistry prometheus.Registerer
	Logger       *slog.Logger
	EventBus     *event.EventBus
	// Capacity is the maximum number of pending calls
	Capacity int
}

// Mempool holds submitted calls in arrival order until a block takes them
type Mempool struct {
	sync.Mutex
	config  MempoolConfig
	metrics struct {
		callsProcessedNum prometheus.Counter
		callsInMempool    prometheus.Gauge
	}
	logger *slog.Logger
	calls  []*MempoolCall
	nextId uint64
}

type MempoolFullError struct {
	CurrentSize int
	Capacity    int
}

func (e *MempoolFullError) Error() string {
	return fmt.Sprintf(
		"mempool full: current size=%d calls, capacity=%d calls",
		e.CurrentSize,
		e.Capacity,
	)
}

func (e *MempoolFullError) Unwrap() error {
	return ErrMempoolFull
}

func NewMempool(config MempoolConfig) *Mempool {
	m := &Mempool{
		config: config,
	}
	if config.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		m.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	} else {
		m.logger = config.Logger
	}
	// Init metrics
	promautoFactory := promauto.With(config.PromRegistry)
	m.metrics.callsProcessedNum = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "ballot_mempool_calls_processed_total",
			Help: "total calls accepted into the mempool",
		},
	)
	m.metrics.callsInMempool = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "ballot_mempool_calls",
		Help: "current count of mempool calls",
	})
	return m
}

// AddCall queues a call and returns its mempool ID
func (m *Mempool) AddCall(call ledger.Call) (uint64, error) {
	m.Lock()
	defer m.Unlock()
	// Enforce mempool capacity
	if len(m.calls) >= m.config.Capacity {
		return 0, &MempoolFullError{
			CurrentSize: len(m.calls),
			Capacity:    m.config.Capacity,
		}
	}
	entry := &MempoolCall{
		Id:       m.nextId,
		Call:     call,
		Received: time.Now(),
	}
	m.nextId++
	m.calls = append(m.calls, entry)
	m.logger.Debug(
		"added call",
		"component", "mempool",
		"call_id", entry.Id,
		"call_type", call.Type.String(),
	)
	m.metrics.callsProcessedNum.Inc()
	m.metrics.callsInMempool.Inc()
	// Generate event
	m.publish(
		AddCallEventType,
		AddCallEvent{
			Id:   entry.Id,
			Type: call.Type,
		},
	)
	return entry.Id, nil
}

// GetCall returns the pending call with the given ID
func (m *Mempool) GetCall(id uint64) (MempoolCall, bool) {
	m.Lock()
	defer m.Unlock()
	idx := m.callIndex(id)
	if idx < 0 {
		return MempoolCall{}, false
	}
	return *m.calls[idx], true
}

// Calls returns a copy of the pending calls in arrival order
func (m *Mempool) Calls() []MempoolCall {
	m.Lock()
	defer m.Unlock()
	ret := make([]MempoolCall, len(m.calls))
	for i := range m.calls {
		ret[i] = *m.calls[i]
	}
	return ret
}

// Len returns the number of pending calls
func (m *Mempool) Len() int {
	m.Lock()
	defer m.Unlock()
	return len(m.calls)
}

// RemoveCall drops a pending call. It returns false if no such call is pending.
func (m *Mempool) RemoveCall(id uint64) bool {
	m.Lock()
	defer m.Unlock()
	idx := m.callIndex(id)
	if idx < 0 {
		return false
	}
	m.calls = slices.Delete(m.calls, idx, idx+1)
	m.metrics.callsInMempool.Dec()
	m.logger.Debug(
		"removed call",
		"component", "mempool",
		"call_id", id,
	)
	m.publish(RemoveCallEventType, RemoveCallEvent{Id: id})
	return true
}

// Drain removes and returns up to limit of the oldest pending calls, in
// arrival order. A limit of 0 takes all of them.
func (m *Mempool) Drain(limit int) []ledger.Call {
	m.Lock()
	defer m.Unlock()
	count := len(m.calls)
	if limit > 0 && limit < count {
		count = limit
	}
	if count == 0 {
		return nil
	}
	taken := m.calls[:count]
	m.calls = slices.Clone(m.calls[count:])
	m.metrics.callsInMempool.Sub(float64(count))
	ret := make([]ledger.Call, 0, count)
	for _, entry := range taken {
		ret = append(ret, entry.Call)
		m.publish(
			RemoveCallEventType,
			RemoveCallEvent{Id: entry.Id, Included: true},
		)
	}
	return ret
}

func (m *Mempool) callIndex(id uint64) int {
	return slices.IndexFunc(m.calls, func(c *MempoolCall) bool {
		return c.Id == id
	})
}

func (m *Mempool) publish(eventType event.EventType, data any) {
	if m.config.EventBus == nil {
		return
	}
	m.config.EventBus.Publish(eventType, event.NewEvent(eventType, data))
}
