// Copyright 2025 KrakLabs
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
//
// SPDX-License-Identifier: Apache-2.0

package project

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsProject holds the Prometheus metrics registered once per process
// for the project lifecycle.
type metricsProject struct {
	once sync.Once

	filesIngested     prometheus.Counter
	decompileFailures prometheus.Counter
	queriesTotal      prometheus.Counter
	queryDuration     prometheus.Histogram
}

var projMetrics metricsProject

func (m *metricsProject) init() {
	m.once.Do(func() {
		m.filesIngested = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "csharp_analyzer_project_files_ingested_total",
			Help: "Files ingested into the symbol graph, source and dependency combined",
		})
		m.decompileFailures = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "csharp_analyzer_project_decompile_failures_total",
			Help: "Dependencies whose decompilation recorded a ResolveError",
		})
		m.queriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "csharp_analyzer_project_queries_total",
			Help: "Evaluate queries served",
		})

		buckets := []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}
		m.queryDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "csharp_analyzer_project_query_seconds",
			Help:    "Evaluate query latency",
			Buckets: buckets,
		})

		prometheus.MustRegister(
			m.filesIngested,
			m.decompileFailures,
			m.queriesTotal,
			m.queryDuration,
		)
	})
}
