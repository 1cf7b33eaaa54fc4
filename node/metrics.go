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

package node

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "prism"

type nodeMetrics struct {
	submitted prometheus.Counter
	rejected  *prometheus.CounterVec
	applied   prometheus.Counter
	failed    prometheus.Counter
	epochs    prometheus.Counter
	queued    prometheus.Gauge
}

// newNodeMetrics creates the node metrics. A nil registerer leaves them unregistered.
func newNodeMetrics(reg prometheus.Registerer) *nodeMetrics {
	factory := promauto.With(reg)
	return &nodeMetrics{
		submitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "node",
			Name:      "transactions_submitted_total",
			Help:      "Transactions accepted into the pending queue",
		}),
		rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "node",
			Name:      "transactions_rejected_total",
			Help:      "Transactions refused at submission",
		}, []string{"reason"}),
		applied: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "node",
			Name:      "transactions_applied_total",
			Help:      "Transactions applied to account state",
		}),
		failed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "node",
			Name:      "transactions_failed_total",
			Help:      "Queued transactions that failed during epoch finalization",
		}),
		epochs: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "node",
			Name:      "epochs_total",
			Help:      "Finalized epochs",
		}),
		queued: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "node",
			Name:      "transactions_pending",
			Help:      "Transactions waiting for the next epoch",
		}),
	}
}
