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
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/blinklabs-io/prism/pipeline"
)

const (
	DefaultEpochInterval = 10 * time.Second
	DefaultRateLimit     = 50
	DefaultRateBurst     = 100
)

type NodeOptionFunc func(*Node)

// WithLogger specifies the logger. slog.Default() is used when unset.
func WithLogger(logger *slog.Logger) NodeOptionFunc {
	return func(n *Node) {
		n.logger = logger
	}
}

// WithEpochInterval specifies how often the background loop started by Start finalizes an epoch
func WithEpochInterval(interval time.Duration) NodeOptionFunc {
	return func(n *Node) {
		if interval > 0 {
			n.epochInterval = interval
		}
	}
}

// WithRateLimit limits submissions per account to rps with the given burst.
// A non-positive rps disables rate limiting.
func WithRateLimit(rps float64, burst int) NodeOptionFunc {
	return func(n *Node) {
		n.rateLimit = rps
		n.rateBurst = burst
	}
}

// WithPipelineOptions passes options to the epoch pipeline
func WithPipelineOptions(opts ...pipeline.PipelineOption) NodeOptionFunc {
	return func(n *Node) {
		n.pipelineOpts = append(n.pipelineOpts, opts...)
	}
}

// WithPrometheusRegisterer registers the node metrics with reg
func WithPrometheusRegisterer(reg prometheus.Registerer) NodeOptionFunc {
	return func(n *Node) {
		n.registerer = reg
	}
}
