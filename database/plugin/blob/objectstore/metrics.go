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

package objectstore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const objectMetricNamePrefix = "database_blob_"

type storeMetrics struct {
	opsTotal   *prometheus.CounterVec
	bytesTotal *prometheus.CounterVec
}

func (m *storeMetrics) init(promRegistry prometheus.Registerer, backend string) {
	promautoFactory := promauto.With(promRegistry)
	labels := prometheus.Labels{"backend": backend}
	m.opsTotal = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name:        objectMetricNamePrefix + "ops_total",
			Help:        "Total number of object store operations",
			ConstLabels: labels,
		},
		[]string{"op"},
	)
	m.bytesTotal = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name:        objectMetricNamePrefix + "bytes_total",
			Help:        "Total bytes read/written for object store operations",
			ConstLabels: labels,
		},
		[]string{"op"},
	)
}

func (m *storeMetrics) op(name string, size int) {
	if m == nil {
		return
	}
	m.opsTotal.WithLabelValues(name).Inc()
	if size > 0 {
		m.bytesTotal.WithLabelValues(name).Add(float64(size))
	}
}
