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

package governance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	closeReasonManual = "manual"
	closeReasonSweep  = "sweep"
)

type engineMetrics struct {
	proposalsCreated prometheus.Counter
	votesCast        *prometheus.CounterVec
	proposalsClosed  *prometheus.CounterVec
	callErrors       *prometheus.CounterVec
	sweepBacklog     prometheus.Gauge
}

func (m *engineMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.proposalsCreated = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "ballot_governance_proposals_created_total",
		Help: "total number of proposals created",
	})
	m.votesCast = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ballot_governance_votes_total",
			Help: "total number of votes recorded, by choice",
		},
		[]string{"choice"},
	)
	m.proposalsClosed = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ballot_governance_proposals_closed_total",
			Help: "total number of proposals closed, by reason",
		},
		[]string{"reason"},
	)
	m.callErrors = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ballot_governance_call_errors_total",
			Help: "total number of rejected governance calls, by error",
		},
		[]string{"error"},
	)
	m.sweepBacklog = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "ballot_governance_sweep_cap_reached",
		Help: "1 if the last sweep stopped at the per-block cap, 0 otherwise",
	})
}

func (e *Engine) recordCallError(err error) {
	if e.metrics == nil || err == nil {
		return
	}
	e.metrics.callErrors.WithLabelValues(errorKind(err)).Inc()
}
