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

package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type stateMetrics struct {
	blockNum           prometheus.Gauge
	blocksApplied      prometheus.Counter
	blockApplyDuration prometheus.Histogram
	calls              *prometheus.CounterVec
	lastBlockRefTime   prometheus.Gauge
	lastBlockProofSize prometheus.Gauge
	sweepClosures      prometheus.Counter
}

func (m *stateMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.blockNum = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "ballot_ledger_block_height",
		Help: "current block height",
	})
	m.blocksApplied = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "ballot_ledger_blocks_applied_total",
		Help: "total number of blocks applied",
	})
	m.blockApplyDuration = promautoFactory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ballot_ledger_block_apply_seconds",
			Help:    "time taken to apply and commit a block",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15), // 0.5ms to ~8s
		},
	)
	m.calls = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ballot_ledger_calls_total",
			Help: "total number of calls applied, by call type and result",
		},
		[]string{"call", "result"},
	)
	m.lastBlockRefTime = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "ballot_ledger_last_block_ref_time",
		Help: "reference time weight consumed by the last block, in picoseconds",
	})
	m.lastBlockProofSize = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "ballot_ledger_last_block_proof_size",
		Help: "proof size weight consumed by the last block, in bytes",
	})
	m.sweepClosures = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "ballot_ledger_sweep_closures_total",
		Help: "total number of proposals closed at block initialization",
	})
}

func (m *stateMetrics) observeBlock(res *BlockResult, seconds float64) {
	m.blockNum.Set(float64(res.BlockNumber))
	m.blocksApplied.Inc()
	m.blockApplyDuration.Observe(seconds)
	m.lastBlockRefTime.Set(float64(res.Weight.RefTime))
	m.lastBlockProofSize.Set(float64(res.Weight.ProofSize))
	m.sweepClosures.Add(float64(res.SweepClosures))
	for _, c := range res.Calls {
		result := "ok"
		if c.Failed() {
			result = "error"
		}
		m.calls.WithLabelValues(c.Call.Type.String(), result).Inc()
	}
}
