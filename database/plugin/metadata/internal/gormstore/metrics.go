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

package gormstore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RegisterMetrics exposes connection pool statistics for the named backend
func (s *Store) RegisterMetrics(
	promRegistry prometheus.Registerer,
	backend string,
) {
	if promRegistry == nil {
		return
	}
	factory := promauto.With(promRegistry)
	constLabels := prometheus.Labels{"backend": backend}
	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name:        "database_metadata_open_connections",
			Help:        "number of established metadata database connections",
			ConstLabels: constLabels,
		},
		func() float64 {
			return float64(s.poolStat(func(open, _ int) int { return open }))
		},
	)
	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name:        "database_metadata_in_use_connections",
			Help:        "number of metadata database connections in use",
			ConstLabels: constLabels,
		},
		func() float64 {
			return float64(s.poolStat(func(_, inUse int) int { return inUse }))
		},
	)
}

func (s *Store) poolStat(fn func(open, inUse int) int) int {
	db := s.DB()
	if db == nil {
		return 0
	}
	sqlDB, err := db.DB()
	if err != nil {
		return 0
	}
	stats := sqlDB.Stats()
	return fn(stats.OpenConnections, stats.InUse)
}
